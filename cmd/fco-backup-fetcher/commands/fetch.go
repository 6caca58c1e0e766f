package commands

import (
	"context"
	"errors"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func initialImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "initial_import",
		Short: "Fetch every country and commit the lot as a single import",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			f, cleanup, err := buildFetcher(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := f.InitialImport(ctx); err != nil {
				return err
			}
			color.Green("Initial import complete")
			return nil
		},
	}
}

func pollFeedOnceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "poll_feed_once",
		Short: "Process feed entries newer than the last recorded fetch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			f, cleanup, err := buildFetcher(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			return f.PollOnce(ctx)
		},
	}
}

func pollFeedContinuousCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "poll_feed_continuous",
		Short: "Poll the feed on an interval until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			f, cleanup, err := buildFetcher(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			err = f.PollContinuous(ctx, cfg.PollInterval.Std())
			if errors.Is(err, context.Canceled) {
				// Interrupted; not a failure.
				return nil
			}
			return err
		},
	}
}

func discoverUnannouncedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "discover_unannounced",
		Short: "Re-crawl everything and flag changes the feed never announced",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			f, cleanup, err := buildFetcher(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			return f.DiscoverUnannounced(ctx)
		},
	}
}
