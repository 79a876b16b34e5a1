package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nhle/notifeed/internal/client"
	"github.com/nhle/notifeed/internal/credential"
	"github.com/nhle/notifeed/internal/model"
	loginform "github.com/nhle/notifeed/internal/ui/config"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Configure the Notification Store URL and token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		values := &loginform.Values{
			BaseURL:  cfg.Store.BaseURL,
			Rollback: cfg.Feed.RollbackOnFailure,
		}
		if tok, err := credential.Token(); err == nil {
			values.Token = tok
		}

		if err := loginform.NewForm(values).RunWithContext(cmd.Context()); err != nil {
			return fmt.Errorf("login form: %w", err)
		}

		cfg.Store.BaseURL = strings.TrimRight(strings.TrimSpace(values.BaseURL), "/")
		cfg.Feed.RollbackOnFailure = values.Rollback
		if err := model.SaveConfig(configPath(), cfg); err != nil {
			return err
		}

		token := strings.TrimSpace(values.Token)
		if token == "" {
			err = credential.Delete(credential.TokenKey)
		} else {
			err = credential.Set(credential.TokenKey, token)
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Saved configuration to %s\n", configPath())

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		c := client.NewClient(cfg.Store.BaseURL, token, client.WithLogger(zap.NewNop()))
		list, err := c.FetchAll(ctx)
		switch {
		case client.IsUnauthorized(err):
			fmt.Fprintln(out, "Warning: the store rejected the token.")
		case err != nil:
			fmt.Fprintf(out, "Warning: could not reach the store: %v\n", err)
		default:
			fmt.Fprintf(out, "Connected: %d notifications.\n", len(list))
		}
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := credential.Delete(credential.TokenKey); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Token removed.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}
