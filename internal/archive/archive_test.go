package archive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fcobackup/fco-backup-fetcher/internal/advice"
)

func TestWriteCountry(t *testing.T) {
	root := t.TempDir()
	country := advice.Country{Name: "Spain", URL: "https://www.gov.uk/foreign-travel-advice/spain"}
	pages := []advice.Page{
		{Title: "Summary", Content: "stay safe\n"},
		{Title: "Entry requirements", Content: "passport needed\n"},
	}

	dir, err := WriteCountry(root, country, pages)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "spain"), dir)

	content, err := os.ReadFile(filepath.Join(dir, "summary"))
	require.NoError(t, err)
	assert.Equal(t, "stay safe\n", string(content))

	content, err = os.ReadFile(filepath.Join(dir, "entry-requirements"))
	require.NoError(t, err)
	assert.Equal(t, "passport needed\n", string(content))
}

func TestWriteCountryReplacesStaleFiles(t *testing.T) {
	root := t.TempDir()
	country := advice.Country{Name: "Spain", URL: "https://www.gov.uk/foreign-travel-advice/spain"}

	stale := filepath.Join(root, "spain", "old-part")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0755))
	require.NoError(t, os.WriteFile(stale, []byte("stale\n"), 0644))

	_, err := WriteCountry(root, country, []advice.Page{{Title: "Summary", Content: "fresh\n"}})
	require.NoError(t, err)

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
}

func TestWriteCountryRejectsBadDirName(t *testing.T) {
	country := advice.Country{Name: "Bad", URL: "https://example.com/.."}
	_, err := WriteCountry(t.TempDir(), country, nil)
	assert.Error(t, err)
}
