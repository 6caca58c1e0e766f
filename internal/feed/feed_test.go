package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const atomFixture = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Foreign travel advice</title>
  <id>https://www.gov.uk/foreign-travel-advice</id>
  <updated>2026-08-20T11:00:00+01:00</updated>
  <entry>
    <id>https://www.gov.uk/foreign-travel-advice/spain#2</id>
    <title>Spain</title>
    <updated>2026-08-20T11:00:00+01:00</updated>
    <link rel="alternate" type="text/html" href="https://www.gov.uk/foreign-travel-advice/spain"/>
    <summary type="html">&lt;div class="summary"&gt;&lt;p&gt;Updated entry requirements&lt;/p&gt;&lt;/div&gt;</summary>
  </entry>
  <entry>
    <id>https://www.gov.uk/foreign-travel-advice/france#1</id>
    <title>France</title>
    <updated>2026-08-19T09:30:00+01:00</updated>
    <link rel="alternate" type="text/html" href="https://www.gov.uk/foreign-travel-advice/france"/>
    <summary type="html">&lt;div class="summary"&gt;&lt;p&gt;Strike action at airports&lt;/p&gt;&lt;/div&gt;</summary>
  </entry>
</feed>`

func serveFeed(t *testing.T, status int, body string) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, srv.Client())
}

func TestFetchParsesEntries(t *testing.T) {
	client := serveFeed(t, http.StatusOK, atomFixture)

	entries, err := client.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "Spain", entries[0].Title)
	assert.Equal(t, "https://www.gov.uk/foreign-travel-advice/spain", entries[0].URL)
	assert.Equal(t, "France", entries[1].Title)
	assert.True(t, entries[0].Updated.After(entries[1].Updated))
}

func TestFetchBadStatus(t *testing.T) {
	client := serveFeed(t, http.StatusBadGateway, "nope")

	_, err := client.Fetch(context.Background())
	assert.Error(t, err)
}

func TestNewSince(t *testing.T) {
	newest := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	older := newest.Add(-24 * time.Hour)
	entries := []Entry{
		{Title: "Spain", URL: "u1", Updated: newest},
		{Title: "France", URL: "u2", Updated: older},
	}

	t.Run("only newer entries qualify", func(t *testing.T) {
		fresh, allNew := NewSince(entries, older)
		require.Len(t, fresh, 1)
		assert.Equal(t, "Spain", fresh[0].Title)
		assert.False(t, allNew)
	})

	t.Run("oldest first", func(t *testing.T) {
		fresh, allNew := NewSince(entries, older.Add(-time.Hour))
		require.Len(t, fresh, 2)
		assert.Equal(t, "France", fresh[0].Title)
		assert.Equal(t, "Spain", fresh[1].Title)
		assert.True(t, allNew)
	})

	t.Run("nothing new", func(t *testing.T) {
		fresh, allNew := NewSince(entries, newest)
		assert.Empty(t, fresh)
		assert.False(t, allNew)
	})

	t.Run("empty feed counts as all new", func(t *testing.T) {
		fresh, allNew := NewSince(nil, newest)
		assert.Empty(t, fresh)
		assert.True(t, allNew)
	})
}

func TestHasDuplicateURLs(t *testing.T) {
	assert.False(t, HasDuplicateURLs([]Entry{{URL: "a"}, {URL: "b"}}))
	assert.True(t, HasDuplicateURLs([]Entry{{URL: "a"}, {URL: "b"}, {URL: "a"}}))
	assert.False(t, HasDuplicateURLs(nil))
}

func TestSummaryText(t *testing.T) {
	tests := []struct {
		name    string
		summary string
		want    string
	}{
		{"html summary", `<div class="summary"><p>Latest update: curfew lifted</p></div>`, "Latest update: curfew lifted"},
		{"plain text falls through", "just text", "just text"},
		{"empty summary", "", NoSummary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SummaryText(Entry{Summary: tt.summary}))
		})
	}
}
