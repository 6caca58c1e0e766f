package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fcobackup/fco-backup-fetcher/internal/advice"
	"github.com/fcobackup/fco-backup-fetcher/internal/browser"
	"github.com/fcobackup/fco-backup-fetcher/internal/config"
	"github.com/fcobackup/fco-backup-fetcher/internal/envloader"
	"github.com/fcobackup/fco-backup-fetcher/internal/feed"
	"github.com/fcobackup/fco-backup-fetcher/internal/fetcher"
	"github.com/fcobackup/fco-backup-fetcher/internal/gitrepo"
	"github.com/fcobackup/fco-backup-fetcher/internal/history"
	"github.com/fcobackup/fco-backup-fetcher/internal/utils"
)

// gitTimeout bounds any single git invocation; pushes over slow links are
// the long pole.
const gitTimeout = 10 * time.Minute

var (
	gitRepoPath string
	configPath  string
	cfg         *config.Config
)

// Execute builds the command tree and runs it
func Execute() error {
	root := &cobra.Command{
		Use:           "fco-backup-fetcher",
		Short:         "Backs up gov.uk foreign travel advice into a git repository",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := envloader.LoadEnv(); err != nil {
				return err
			}

			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}

			logCfg := utils.DefaultLogConfig()
			logCfg.Level = cfg.LogLevel
			logCfg.FilePath = cfg.LogFile
			return utils.InitLogger(logCfg)
		},
	}

	root.PersistentFlags().StringVar(&gitRepoPath, "git-repo", "", "path to the backup git repository")
	root.PersistentFlags().StringVar(&configPath, "config", "fcobackup.yaml", "path to the config file")
	_ = root.MarkPersistentFlagRequired("git-repo")

	root.AddCommand(
		initialImportCmd(),
		pollFeedOnceCmd(),
		pollFeedContinuousCmd(),
		discoverUnannouncedCmd(),
		historyCmd(),
		mirrorCmd(),
	)

	err := root.Execute()
	if err != nil {
		utils.GetLogger().Error(err)
	}
	return err
}

// signalContext returns a context cancelled on SIGINT/SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// buildFetcher wires the browser, crawler, repository, feed client and
// ledger together. The returned cleanup closes the browser and ledger.
func buildFetcher(ctx context.Context) (*fetcher.Fetcher, func(), error) {
	repo, err := gitrepo.Open(ctx, gitrepo.Options{
		Dir:         gitRepoPath,
		Remote:      cfg.GitRemote,
		Branch:      cfg.Branch,
		AuthorName:  cfg.AuthorName,
		AuthorEmail: cfg.AuthorEmail,
		Timeout:     gitTimeout,
	})
	if err != nil {
		return nil, nil, err
	}

	chrome := browser.New()
	crawler := advice.NewCrawler(chrome, cfg.IndexURL, cfg.PageDelay.Std())
	feedClient := feed.NewClient(cfg.FeedURL, nil)

	var ledger *history.Ledger
	if cfg.HistoryDB != "" {
		ledger, err = history.Open(cfg.HistoryDB)
		if err != nil {
			// The ledger is best-effort; a broken one must not stop a fetch.
			utils.GetLogger().Warnf("Failed to open history ledger: %v", err)
			ledger = nil
		}
	}

	cleanup := func() {
		chrome.Close()
		if ledger != nil {
			if err := ledger.Close(); err != nil {
				utils.GetLogger().Warnf("Failed to close history ledger: %v", err)
			}
		}
	}

	return fetcher.New(crawler, repo, feedClient, ledger), cleanup, nil
}

// openLedger opens the configured history database, erroring when none is
// configured since the caller explicitly asked for it.
func openLedger() (*history.Ledger, error) {
	if cfg.HistoryDB == "" {
		return nil, fmt.Errorf("history_db is not configured")
	}
	return history.Open(cfg.HistoryDB)
}
