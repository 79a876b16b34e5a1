package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nhle/notifeed/internal/ingest"
	"github.com/nhle/notifeed/internal/logging"
	"github.com/nhle/notifeed/internal/server"
	"github.com/nhle/notifeed/internal/store"
)

var (
	serveAddr   string
	serveDB     string
	servePretty bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a development Notification Store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}
		if serveDB != "" {
			cfg.Server.DBPath = serveDB
		}

		log, err := logging.New(logging.Config{
			Level:   cfg.Log.Level,
			Pretty:  servePretty,
			Command: "serve",
		})
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		if cfg.Server.DBPath != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.Server.DBPath), 0o755); err != nil {
				return fmt.Errorf("creating database directory: %w", err)
			}
		}
		st, err := store.NewSQLiteStore(cfg.Server.DBPath)
		if err != nil {
			return err
		}
		defer st.Close()
		log.Info("store opened", zap.String("db", cfg.Server.DBPath))

		g, ctx := errgroup.WithContext(cmd.Context())

		srv := server.New(st,
			server.WithToken(cfg.Server.Token),
			server.WithLogger(log),
		)
		g.Go(func() error { return srv.Run(ctx, cfg.Server.Addr) })

		if cfg.Kafka.Enabled {
			consumer := ingest.NewConsumer(ingest.Config{
				Brokers: cfg.Kafka.Brokers,
				Topic:   cfg.Kafka.Topic,
				GroupID: cfg.Kafka.GroupID,
			}, st, log)
			defer consumer.Close()

			g.Go(func() error {
				err := consumer.Run(ctx)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			})
		}

		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	serveCmd.Flags().StringVar(&serveDB, "db", "", "SQLite path (overrides server.db_path)")
	serveCmd.Flags().BoolVar(&servePretty, "pretty", false, "human-readable logs")
	rootCmd.AddCommand(serveCmd)
}
