package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/fcobackup/fco-backup-fetcher/internal/mirror"
)

func mirrorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mirror",
		Short: "Upload a tar.gz snapshot of the countries tree to S3",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			countriesRoot := filepath.Join(gitRepoPath, "countries")
			if _, err := os.Stat(countriesRoot); err != nil {
				return fmt.Errorf("no countries tree at %s: %w", countriesRoot, err)
			}

			uploader, err := mirror.NewUploader(ctx, cfg.Mirror)
			if err != nil {
				return err
			}

			key, err := uploader.Snapshot(ctx, countriesRoot)
			if err != nil {
				return err
			}
			color.Green("Snapshot uploaded: s3://%s/%s", cfg.Mirror.Bucket, key)
			return nil
		},
	}
}
