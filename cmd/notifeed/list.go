package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/notifeed/internal/feed"
	"github.com/nhle/notifeed/internal/logging"
	"github.com/nhle/notifeed/internal/model"
	"github.com/nhle/notifeed/internal/ui/feedview"
	"github.com/nhle/notifeed/internal/ui/plain"
)

var listType string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the notifications once and exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		log, err := logging.New(logging.Config{Level: "warn", Command: "list"})
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		// The board keeps only the final page, so one table is printed.
		board := feedview.NewBoard()
		ctrl := feed.New(newClient(cfg, log), board, feed.WithLogger(log))

		out := plain.NewWriter(cmd.OutOrStdout())
		if err := ctrl.Load(cmd.Context()); err != nil {
			// A failed load still renders an error page.
			if page, ok := board.Page(); ok {
				out.Render(page)
				return fmt.Errorf("%w: %w", errReported, err)
			}
			return err
		}
		if err := ctrl.FilterByType(strings.ToUpper(listType)); err != nil {
			return err
		}

		page, ok := board.Page()
		if !ok {
			return errors.New("nothing rendered")
		}
		out.Render(page)
		return nil
	},
}

// errReported marks an error already printed to the user.
var errReported = errors.New("reported")

func init() {
	listCmd.Flags().StringVarP(&listType, "type", "t", model.FilterAll,
		"only show notifications of this type (e.g. SECURITY)")
	rootCmd.AddCommand(listCmd)
}
