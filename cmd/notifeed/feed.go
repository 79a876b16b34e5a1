package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nhle/notifeed/internal/app"
	"github.com/nhle/notifeed/internal/feed"
	"github.com/nhle/notifeed/internal/logging"
	"github.com/nhle/notifeed/internal/ui/feedview"
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Open the interactive notification feed",
	Args:  cobra.NoArgs,
	RunE:  runFeed,
}

func init() {
	rootCmd.AddCommand(feedCmd)
}

func runFeed(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// The terminal belongs to the UI, so logs go to a file.
	log, err := logging.New(logging.Config{
		Level:   cfg.Log.Level,
		File:    cfg.Log.File,
		Command: "feed",
	})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	board := feedview.NewBoard()
	ctrl := feed.New(newClient(cfg, log), board,
		feed.WithLogger(log),
		feed.WithRollback(cfg.Feed.RollbackOnFailure),
	)

	log.Info("starting feed", zap.String("store", cfg.Store.BaseURL))
	return app.Run(cmd.Context(), ctrl, board)
}
