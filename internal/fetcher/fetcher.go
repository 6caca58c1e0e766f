// Package fetcher orchestrates the backup operations: full imports, feed
// polling and unannounced-change discovery.
package fetcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fcobackup/fco-backup-fetcher/internal/advice"
	"github.com/fcobackup/fco-backup-fetcher/internal/archive"
	"github.com/fcobackup/fco-backup-fetcher/internal/feed"
	"github.com/fcobackup/fco-backup-fetcher/internal/history"
	"github.com/fcobackup/fco-backup-fetcher/internal/utils"
)

// CatchUpReason is the commit subject used when feed updates were missed and
// a full re-fetch stands in for the lost entries.
const CatchUpReason = "Missed some updates as they happened, catching up"

// Crawler fetches countries and their advice pages
type Crawler interface {
	ListCountries(ctx context.Context) ([]advice.Country, error)
	FetchCountry(ctx context.Context, url string) ([]advice.Page, error)
}

// GitRepo is the slice of repository behavior the fetcher needs
type GitRepo interface {
	CountriesRoot() string
	Add(ctx context.Context, path string) error
	RemoveRecursive(ctx context.Context, path string) error
	Commit(ctx context.Context, subject string) error
	Push(ctx context.Context) error
	StagedFiles(ctx context.Context) ([]string, error)
	LastFetchedAt(ctx context.Context) (time.Time, error)
}

// FeedSource supplies the current feed entries
type FeedSource interface {
	Fetch(ctx context.Context) ([]feed.Entry, error)
}

// Fetcher ties the crawler, repository and feed together
type Fetcher struct {
	crawler Crawler
	repo    GitRepo
	feed    FeedSource
	ledger  *history.Ledger
}

// New creates a Fetcher. ledger may be nil, in which case runs are not
// recorded.
func New(crawler Crawler, repo GitRepo, feedSource FeedSource, ledger *history.Ledger) *Fetcher {
	return &Fetcher{crawler: crawler, repo: repo, feed: feedSource, ledger: ledger}
}

// InitialImport fetches every country and records the lot as one commit
func (f *Fetcher) InitialImport(ctx context.Context) error {
	start := time.Now()
	count, err := f.fetchAll(ctx, "Initial import")
	f.record("initial_import", start, count, err)
	return err
}

// PollOnce processes feed entries newer than the last recorded fetch.
// Each changed country becomes its own commit; a single push follows. When
// updates were missed entirely, a full re-fetch catches up instead.
func (f *Fetcher) PollOnce(ctx context.Context) error {
	start := time.Now()
	count, err := f.pollOnce(ctx)
	f.record("poll_feed_once", start, count, err)
	return err
}

// PollContinuous polls immediately and then on every interval tick until
// the context is cancelled.
func (f *Fetcher) PollContinuous(ctx context.Context, interval time.Duration) error {
	if err := f.PollOnce(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := f.PollOnce(ctx); err != nil {
				return err
			}
		}
	}
}

// DiscoverUnannounced polls first, then re-crawls everything and commits a
// message stating whether anything changed that the feed never announced.
func (f *Fetcher) DiscoverUnannounced(ctx context.Context) error {
	start := time.Now()
	count, err := f.discoverUnannounced(ctx)
	f.record("discover_unannounced", start, count, err)
	return err
}

func (f *Fetcher) pollOnce(ctx context.Context) (int, error) {
	fresh, allNew, err := f.newEntries(ctx)
	if err != nil {
		return 0, err
	}

	if len(fresh) == 0 {
		utils.GetLogger().Debug("No new feed entries")
		return 0, nil
	}

	if allNew || feed.HasDuplicateURLs(fresh) {
		return f.fetchAll(ctx, CatchUpReason)
	}

	for _, entry := range fresh {
		country := advice.Country{Name: entry.Title, URL: entry.URL}
		dirName, err := country.DirName()
		if err != nil {
			return 0, err
		}

		countryDir := filepath.Join(f.repo.CountriesRoot(), dirName)
		if _, err := os.Stat(countryDir); err == nil {
			if err := f.repo.RemoveRecursive(ctx, countryDir); err != nil {
				return 0, err
			}
		}

		dir, err := f.snapshotCountry(ctx, country)
		if err != nil {
			return 0, err
		}
		if err := f.repo.Add(ctx, dir); err != nil {
			return 0, err
		}
		subject := fmt.Sprintf("%s: %s", country.Name, feed.SummaryText(entry))
		if err := f.repo.Commit(ctx, subject); err != nil {
			return 0, err
		}
	}

	if err := f.repo.Push(ctx); err != nil {
		return 0, err
	}

	f.notify(fmt.Sprintf("Backed up %d updated countries from the feed", len(fresh)))
	return len(fresh), nil
}

func (f *Fetcher) discoverUnannounced(ctx context.Context) (int, error) {
	if _, err := f.pollOnce(ctx); err != nil {
		return 0, err
	}

	if _, err := os.Stat(f.repo.CountriesRoot()); err == nil {
		if err := f.repo.RemoveRecursive(ctx, f.repo.CountriesRoot()); err != nil {
			return 0, err
		}
	}

	countries, err := f.crawler.ListCountries(ctx)
	if err != nil {
		return 0, fmt.Errorf("error listing countries: %w", err)
	}
	for _, country := range countries {
		dir, err := f.snapshotCountry(ctx, country)
		if err != nil {
			return 0, err
		}
		if err := f.repo.Add(ctx, dir); err != nil {
			return 0, err
		}
	}

	// Changes announced mid-crawl would wrongly show up as unannounced.
	if fresh, _, err := f.newEntries(ctx); err == nil && len(fresh) > 0 {
		utils.GetLogger().Error("Changes were published while discovering unannounced changes")
	}

	staged, err := f.repo.StagedFiles(ctx)
	if err != nil {
		return 0, err
	}
	message := "No unannounced changes discovered"
	if len(staged) > 0 {
		message = "Changes discovered which weren't announced on the atom feed"
	}

	if err := f.repo.Commit(ctx, message); err != nil {
		return 0, err
	}
	if err := f.repo.Push(ctx); err != nil {
		return 0, err
	}

	f.notify(message)
	return len(countries), nil
}

func (f *Fetcher) fetchAll(ctx context.Context, reason string) (int, error) {
	if _, err := os.Stat(f.repo.CountriesRoot()); err == nil {
		if err := f.repo.RemoveRecursive(ctx, f.repo.CountriesRoot()); err != nil {
			return 0, err
		}
	}

	countries, err := f.crawler.ListCountries(ctx)
	if err != nil {
		return 0, fmt.Errorf("error listing countries: %w", err)
	}

	for _, country := range countries {
		dir, err := f.snapshotCountry(ctx, country)
		if err != nil {
			return 0, err
		}
		if err := f.repo.Add(ctx, dir); err != nil {
			return 0, err
		}
	}

	if err := f.repo.Commit(ctx, reason); err != nil {
		return 0, err
	}
	if err := f.repo.Push(ctx); err != nil {
		return 0, err
	}

	f.notify(fmt.Sprintf("%s: backed up %d countries", reason, len(countries)))
	return len(countries), nil
}

func (f *Fetcher) snapshotCountry(ctx context.Context, country advice.Country) (string, error) {
	utils.GetLogger().Infof("Fetching country %s", country.Name)
	pages, err := f.crawler.FetchCountry(ctx, country.URL)
	if err != nil {
		return "", fmt.Errorf("error fetching %s: %w", country.Name, err)
	}
	return archive.WriteCountry(f.repo.CountriesRoot(), country, pages)
}

// newEntries fetches the feed and filters it against HEAD's fetch trailer
func (f *Fetcher) newEntries(ctx context.Context) ([]feed.Entry, bool, error) {
	entries, err := f.feed.Fetch(ctx)
	if err != nil {
		return nil, false, err
	}
	since, err := f.repo.LastFetchedAt(ctx)
	if err != nil {
		return nil, false, err
	}
	fresh, allNew := feed.NewSince(entries, since)
	return fresh, allNew, nil
}

func (f *Fetcher) record(command string, start time.Time, countries int, err error) {
	if f.ledger == nil {
		return
	}
	if recErr := f.ledger.RecordRun(command, start, countries, err); recErr != nil {
		utils.GetLogger().Warnf("Failed to record run: %v", recErr)
	}
}

func (f *Fetcher) notify(message string) {
	if err := utils.SendWebhookLog("fco-backup: " + message); err != nil {
		utils.GetLogger().Warnf("Failed to send webhook: %v", err)
	}
}
