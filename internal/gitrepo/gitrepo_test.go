package gitrepo

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommitMessage(t *testing.T) {
	fetchedAt := time.Date(2026, 8, 20, 10, 30, 0, 0, time.UTC)
	message := CommitMessage("Spain: Updated entry requirements", fetchedAt)
	assert.Equal(t, "Spain: Updated entry requirements\n\nFetched at: 2026-08-20T10:30:00Z", message)
}

func TestParseFetchedAt(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    time.Time
		wantErr bool
	}{
		{
			name:    "trailer on last line",
			message: "Initial import\n\nFetched at: 2026-08-20T10:30:00Z\n",
			want:    time.Date(2026, 8, 20, 10, 30, 0, 0, time.UTC),
		},
		{
			name:    "latest trailer wins",
			message: "Fetched at: 2026-08-01T00:00:00Z\nsome text\nFetched at: 2026-08-20T10:30:00Z",
			want:    time.Date(2026, 8, 20, 10, 30, 0, 0, time.UTC),
		},
		{
			name:    "no trailer",
			message: "Merge branch 'master'",
			wantErr: true,
		},
		{
			name:    "malformed timestamp skipped",
			message: "subject\n\nFetched at: not-a-time",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFetchedAt(tt.message)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNoFetchTimestamp)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got))
		})
	}
}

// Round-trips a commit through a real git repository when git is installed.
func TestCommitAndLastFetchedAt(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	ctx := context.Background()
	dir := t.TempDir()

	init := exec.Command("git", "init", "-q", dir)
	require.NoError(t, init.Run())

	repo, err := Open(ctx, Options{
		Dir:         dir,
		Remote:      "unused",
		Branch:      "master",
		AuthorName:  "FCO Backup",
		AuthorEmail: "ukfcobackup@gmail.com",
		Timeout:     time.Minute,
	})
	require.NoError(t, err)

	path := filepath.Join(dir, "countries", "spain", "summary")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("advice\n"), 0644))

	require.NoError(t, repo.Add(ctx, filepath.Dir(path)))

	staged, err := repo.StagedFiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"countries/spain/summary"}, staged)

	before := time.Now().UTC().Add(-time.Second)
	require.NoError(t, repo.Commit(ctx, "Initial import"))

	fetchedAt, err := repo.LastFetchedAt(ctx)
	require.NoError(t, err)
	assert.True(t, fetchedAt.After(before))

	// Nothing staged after the commit
	staged, err = repo.StagedFiles(ctx)
	require.NoError(t, err)
	assert.Empty(t, staged)
}
