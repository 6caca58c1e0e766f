package history

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	ledger, err := Open(filepath.Join(t.TempDir(), "fcobackup.db"))
	require.NoError(t, err)
	t.Cleanup(func() { ledger.Close() })
	return ledger
}

func TestRecordAndListRuns(t *testing.T) {
	ledger := openTestLedger(t)

	start := time.Now().Add(-time.Minute)
	require.NoError(t, ledger.RecordRun("initial_import", start, 226, nil))
	require.NoError(t, ledger.RecordRun("poll_feed_once", start.Add(time.Minute), 2, errors.New("push failed")))

	runs, err := ledger.RecentRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// Newest first
	assert.Equal(t, "poll_feed_once", runs[0].Command)
	assert.False(t, runs[0].OK)
	assert.Equal(t, "push failed", runs[0].Note)
	assert.Equal(t, 2, runs[0].Countries)

	assert.Equal(t, "initial_import", runs[1].Command)
	assert.True(t, runs[1].OK)
	assert.Empty(t, runs[1].Note)
	assert.Equal(t, 226, runs[1].Countries)
}

func TestRecentRunsLimit(t *testing.T) {
	ledger := openTestLedger(t)

	start := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, ledger.RecordRun("poll_feed_once", start.Add(time.Duration(i)*time.Second), 0, nil))
	}

	runs, err := ledger.RecentRuns(3)
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}

func TestRecentRunsEmpty(t *testing.T) {
	ledger := openTestLedger(t)

	runs, err := ledger.RecentRuns(0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
