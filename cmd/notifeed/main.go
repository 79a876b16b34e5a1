package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nhle/notifeed/internal/client"
	"github.com/nhle/notifeed/internal/credential"
	"github.com/nhle/notifeed/internal/model"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "notifeed",
	Short: "Terminal notification center",
	Long: `notifeed shows the notifications of a banking account, lets you filter
them by type and mark them as read. Run without a subcommand to open the
interactive feed.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runFeed,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is ~/.config/notifeed/config.yaml)")
}

// configPath returns the --config value or the default location.
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return model.DefaultConfigPath()
}

func loadConfig() (*model.AppConfig, error) {
	return model.LoadConfig(configPath())
}

// newClient builds a store client from cfg. A keyring that cannot be
// opened is logged and the client proceeds without a token.
func newClient(cfg *model.AppConfig, log *zap.Logger) *client.Client {
	token, err := credential.Token()
	if err != nil {
		log.Warn("reading store token", zap.Error(err))
	}

	return client.NewClient(cfg.Store.BaseURL, token,
		client.WithTimeout(cfg.Store.Timeout()),
		client.WithMaxRetries(cfg.Store.MaxRetries),
		client.WithLogger(log),
	)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		stop()
		os.Exit(1)
	}
}
