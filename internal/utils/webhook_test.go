package utils

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendWebhookLogSkipsWhenUnconfigured(t *testing.T) {
	t.Setenv("DISCORD_WEBHOOK", "")
	assert.NoError(t, SendWebhookLog("ignored"))
}

func TestSendWebhookLogPostsContent(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	t.Setenv("DISCORD_WEBHOOK", srv.URL)
	require.NoError(t, SendWebhookLog("fco-backup: test message"))
	assert.Equal(t, "fco-backup: test message", got["content"])
}

func TestSendWebhookLogReportsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	t.Setenv("DISCORD_WEBHOOK", srv.URL)
	assert.Error(t, SendWebhookLog("boom"))
}
