package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetrySucceedsFirstTry(t *testing.T) {
	calls := 0
	restarts := 0

	got, err := Retry(func() (string, error) {
		calls++
		return "ok", nil
	}, func() { restarts++ })

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, restarts)
}

func TestRetryRecoversAfterFailures(t *testing.T) {
	calls := 0
	restarts := 0

	got, err := Retry(func() (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("flaky")
		}
		return 42, nil
	}, func() { restarts++ })

	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 2, restarts)
}

func TestRetryGivesUp(t *testing.T) {
	calls := 0

	_, err := Retry(func() (int, error) {
		calls++
		return 0, errors.New("always broken")
	}, nil)

	require.Error(t, err)
	assert.Equal(t, RetryAttempts, calls)
	assert.Contains(t, err.Error(), "giving up after 3 attempts")
	assert.Contains(t, err.Error(), "always broken")
}
