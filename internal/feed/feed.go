// Package feed polls the gov.uk travel advice Atom feed and decides which
// countries changed since the last recorded fetch.
package feed

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed/atom"

	"github.com/fcobackup/fco-backup-fetcher/internal/utils"
)

// NoSummary is used when a feed entry carries no summary text
const NoSummary = "[No summary]"

// Entry is one travel advice update announced on the feed
type Entry struct {
	Title   string
	URL     string
	Summary string
	Updated time.Time
}

// Client fetches and parses the Atom feed
type Client struct {
	httpClient *http.Client
	url        string
}

// NewClient creates a feed client. A nil httpClient uses the shared
// pooled client.
func NewClient(url string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = utils.GetHTTPClient()
	}
	return &Client{httpClient: httpClient, url: url}
}

// Fetch downloads and parses the feed, retrying transient failures.
// Entries keep the feed's order (newest first).
func (c *Client) Fetch(ctx context.Context) ([]Entry, error) {
	return utils.Retry(func() ([]Entry, error) {
		return c.fetchOnce(ctx)
	}, nil)
}

func (c *Client) fetchOnce(ctx context.Context) ([]Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("error building feed request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching atom feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("got status %s for atom feed", resp.Status)
	}

	parsed, err := (&atom.Parser{}).Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error parsing atom feed: %w", err)
	}

	return convertEntries(parsed.Entries)
}

func convertEntries(raw []*atom.Entry) ([]Entry, error) {
	entries := make([]Entry, 0, len(raw))
	for _, e := range raw {
		if e.UpdatedParsed == nil {
			return nil, fmt.Errorf("error parsing date (%s) from feed", e.Updated)
		}
		url, err := htmlLink(e)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{
			Title:   e.Title,
			URL:     url,
			Summary: e.Summary,
			Updated: *e.UpdatedParsed,
		})
	}
	return entries, nil
}

func htmlLink(e *atom.Entry) (string, error) {
	for _, link := range e.Links {
		if link != nil && link.Type == "text/html" {
			return link.Href, nil
		}
	}
	return "", fmt.Errorf("entry %q has no text/html link", e.Title)
}

// NewSince returns the entries updated strictly after since, oldest first.
// allNew reports whether every feed entry qualified, which means updates
// scrolled off the feed unseen.
func NewSince(entries []Entry, since time.Time) (fresh []Entry, allNew bool) {
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Updated.After(since) {
			fresh = append(fresh, entries[i])
		}
	}
	return fresh, len(fresh) == len(entries)
}

// HasDuplicateURLs reports whether two entries point at the same country.
// Duplicates mean a country updated more than once while we were away.
func HasDuplicateURLs(entries []Entry) bool {
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.URL]; ok {
			return true
		}
		seen[e.URL] = struct{}{}
	}
	return false
}

// SummaryText extracts the human-readable summary from an entry's HTML
// summary fragment (the text of the first paragraph in the wrapping div),
// falling back to the raw value.
func SummaryText(e Entry) string {
	if e.Summary == "" {
		return NoSummary
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(e.Summary))
	if err != nil {
		return e.Summary
	}
	p := doc.Find("div > p").First()
	if p.Length() == 0 {
		return e.Summary
	}
	return strings.TrimSpace(p.Text())
}
