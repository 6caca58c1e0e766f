// Package archive writes fetched country snapshots into the repository's
// working tree.
package archive

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fcobackup/fco-backup-fetcher/internal/advice"
)

// WriteCountry replaces the snapshot directory for a country with the given
// pages and returns the directory path. The directory is removed first so
// parts deleted upstream do not linger.
func WriteCountry(countriesRoot string, country advice.Country, pages []advice.Page) (string, error) {
	dirName, err := country.DirName()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(countriesRoot, dirName)

	if err := os.RemoveAll(dir); err != nil {
		return "", fmt.Errorf("error removing directory %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error creating directory %s: %w", dir, err)
	}

	for _, page := range pages {
		path := filepath.Join(dir, page.FileName())
		if err := os.WriteFile(path, []byte(page.Content), 0644); err != nil {
			return "", fmt.Errorf("error writing file %s: %w", path, err)
		}
	}

	return dir, nil
}
