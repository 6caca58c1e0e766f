// Package advice crawls the gov.uk foreign travel advice pages. The country
// index links every country; each country splits its advice across one or
// more parts listed in an in-page navigation.
package advice

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/time/rate"
)

// Country is one entry in the gov.uk country index
type Country struct {
	Name string
	URL  string
}

// DirName returns the directory a country's pages are stored under: the
// final path segment of its URL. Segments that could escape the countries
// tree are rejected.
func (c Country) DirName() (string, error) {
	parts := strings.Split(c.URL, "/")
	dirName := parts[len(parts)-1]
	if dirName == "" || dirName == "." || dirName == ".." {
		return "", fmt.Errorf("bad path: %q", dirName)
	}
	if strings.ContainsAny(dirName, `/\`) {
		return "", fmt.Errorf("bad path: %q", dirName)
	}
	return dirName, nil
}

// Page is a single part of a country's travel advice
type Page struct {
	Title   string
	Content string
}

// FileName derives the on-disk file name from the page title: lowercased,
// whitespace collapsed to hyphens, dots and slashes replaced.
func (p Page) FileName() string {
	var b strings.Builder
	for i, part := range strings.Fields(strings.ToLower(p.Title)) {
		if i > 0 {
			b.WriteString("-")
		}
		part = strings.ReplaceAll(part, ".", "_")
		part = strings.ReplaceAll(part, "/", "_")
		b.WriteString(part)
	}
	return b.String()
}

// resolveURL resolves href against base, returning href unchanged when it is
// already absolute or the base is unparseable.
func resolveURL(base, href string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}

// newLimiter builds the politeness limiter used between page loads.
// A zero delay disables limiting.
func newLimiter(delay float64) *rate.Limiter {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(1/delay), 1)
}
