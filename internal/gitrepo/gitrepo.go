// Package gitrepo drives the backing git repository through the git CLI.
// Every snapshot commit carries a "Fetched at:" trailer; the most recent
// one is the high-water mark for feed polling.
package gitrepo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fcobackup/fco-backup-fetcher/internal/utils"
)

// FetchedAtPrefix marks the commit message trailer holding the fetch time
const FetchedAtPrefix = "Fetched at: "

// ErrNoFetchTimestamp is returned when HEAD's message has no usable trailer.
var ErrNoFetchTimestamp = fmt.Errorf("no %q trailer on HEAD", strings.TrimSpace(FetchedAtPrefix))

// Repo is a handle on the local backup repository
type Repo struct {
	dir         string
	runner      *utils.CommandRunner
	authorName  string
	authorEmail string
	branch      string
}

// Options configures a Repo handle
type Options struct {
	Dir         string
	Remote      string
	Branch      string
	AuthorName  string
	AuthorEmail string
	Timeout     time.Duration
}

// Open returns a handle on the repository at opts.Dir, cloning opts.Remote
// into it first when the directory does not exist.
func Open(ctx context.Context, opts Options) (*Repo, error) {
	runner := utils.NewCommandRunner(opts.Timeout)

	if _, err := os.Stat(opts.Dir); os.IsNotExist(err) {
		utils.GetLogger().Infof("Cloning %s into %s", opts.Remote, opts.Dir)
		cloneRunner := utils.NewCommandRunner(opts.Timeout)
		cloneRunner.Dir = "/"
		if _, err := cloneRunner.Run(ctx, "git", "clone", opts.Remote, opts.Dir); err != nil {
			return nil, fmt.Errorf("git clone failed: %w", err)
		}
	}

	runner.Dir = opts.Dir
	return &Repo{
		dir:         opts.Dir,
		runner:      runner,
		authorName:  opts.AuthorName,
		authorEmail: opts.AuthorEmail,
		branch:      opts.Branch,
	}, nil
}

// Dir returns the repository's working directory
func (r *Repo) Dir() string {
	return r.dir
}

// CountriesRoot returns the directory the country snapshots live under
func (r *Repo) CountriesRoot() string {
	return filepath.Join(r.dir, "countries")
}

// Add stages a path
func (r *Repo) Add(ctx context.Context, path string) error {
	_, err := r.run(ctx, nil, "add", path)
	return err
}

// RemoveRecursive removes a tracked path from the index and working tree
func (r *Repo) RemoveRecursive(ctx context.Context, path string) error {
	_, err := r.run(ctx, nil, "rm", "-r", path)
	return err
}

// Commit records the staged changes. The message is the subject followed by
// a blank line and the fetch-time trailer; empty commits are allowed so
// no-change discovery runs still leave a marker.
func (r *Repo) Commit(ctx context.Context, subject string) error {
	message := CommitMessage(subject, time.Now().UTC())
	_, err := r.run(ctx, r.identityConfig(),
		"commit",
		fmt.Sprintf("--author=%s <%s>", r.authorName, r.authorEmail),
		"--allow-empty",
		"-m", message,
	)
	return err
}

// Push pushes the configured branch to origin
func (r *Repo) Push(ctx context.Context) error {
	_, err := r.run(ctx, r.identityConfig(), "push", "origin", r.branch)
	return err
}

// StagedFiles lists paths with staged changes
func (r *Repo) StagedFiles(ctx context.Context) ([]string, error) {
	out, err := r.run(ctx, nil, "diff", "--name-only", "--cached")
	if err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(string(out))
	if trimmed == "" {
		return nil, nil
	}
	return strings.Split(trimmed, "\n"), nil
}

// LastFetchedAt reads the fetch-time trailer from HEAD's commit message
func (r *Repo) LastFetchedAt(ctx context.Context) (time.Time, error) {
	out, err := r.run(ctx, nil, "log", "--format=%B", "-n1", "HEAD")
	if err != nil {
		return time.Time{}, fmt.Errorf("error reading HEAD message: %w", err)
	}
	return ParseFetchedAt(string(out))
}

// CommitMessage builds a snapshot commit message with the trailer
func CommitMessage(subject string, fetchedAt time.Time) string {
	return fmt.Sprintf("%s\n\n%s%s", subject, FetchedAtPrefix, fetchedAt.Format(time.RFC3339))
}

// ParseFetchedAt extracts the most recent fetch-time trailer from a commit
// message, scanning from the last line upward.
func ParseFetchedAt(message string) (time.Time, error) {
	lines := strings.Split(message, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := lines[i]
		if !strings.HasPrefix(line, FetchedAtPrefix) {
			continue
		}
		t, err := time.Parse(time.RFC3339, strings.TrimSpace(line[len(FetchedAtPrefix):]))
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrNoFetchTimestamp
}

func (r *Repo) identityConfig() []string {
	return []string{
		fmt.Sprintf("user.name=%s", r.authorName),
		fmt.Sprintf("user.email=%s", r.authorEmail),
	}
}

func (r *Repo) run(ctx context.Context, configArgs []string, args ...string) ([]byte, error) {
	gitArgs := make([]string, 0, len(args)+2*len(configArgs))
	for _, cfg := range configArgs {
		gitArgs = append(gitArgs, "-c", cfg)
	}
	gitArgs = append(gitArgs, args...)
	out, err := r.runner.Run(ctx, "git", gitArgs...)
	if err != nil {
		return out, fmt.Errorf("error running git %s: %w", args[0], err)
	}
	return out, nil
}
