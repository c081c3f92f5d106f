// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package cli implements the pantrykeeper command line: the API server and
// the one-shot import, export and maintenance commands.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"pantrykeeper/internal/app"
	"pantrykeeper/internal/config"
)

// options are the persistent flags shared by every command.
type options struct {
	configFile string
	verbose    bool
	cfg        *config.Config
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:   "pantrykeeper",
		Short: "pantrykeeper - groceries, recipes and meal plans",
		Long: `pantrykeeper keeps one catalogue of products that backs the shopping
list, the pantry and stock, plus recipes built from those products and a
weekly meal plan that feeds the shopping list.

Configuration comes from environment variables, with planner conventions
optionally read from a YAML file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			if opts.configFile != "" {
				if err := cfg.ApplyFile(opts.configFile); err != nil {
					return err
				}
				cfg.ConfigFile = opts.configFile
			}
			opts.cfg = cfg
			setupLogger(cfg, opts.verbose)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "YAML config file (default: $CONFIG_FILE)")
	rootCmd.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "enable debug logging")

	rootCmd.AddCommand(newServeCommand(opts))
	rootCmd.AddCommand(newImportCommand(opts))
	rootCmd.AddCommand(newExportCommand(opts))
	rootCmd.AddCommand(newBackupCommand(opts))
	rootCmd.AddCommand(newOrphansCommand(opts))
	rootCmd.AddCommand(newHashKeyCommand())

	return rootCmd
}

// setupLogger installs the default logger: text in development, JSON
// otherwise. Logs go to stderr so command output stays clean.
func setupLogger(cfg *config.Config, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	hopts := &slog.HandlerOptions{Level: level}
	var h slog.Handler = slog.NewJSONHandler(os.Stderr, hopts)
	if cfg.IsDev() {
		h = slog.NewTextHandler(os.Stderr, hopts)
	}
	slog.SetDefault(slog.New(h))
}

// withApp opens the app for a one-shot command. Changes still queued for
// the remote store are pushed before it closes.
func withApp(ctx context.Context, opts *options, fn func(*app.App) error) error {
	a, err := app.New(ctx, opts.cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	runErr := fn(a)
	if a.Mirror != nil {
		a.Mirror.Flush(ctx)
		if n := a.Mirror.Pending(); n > 0 {
			slog.Warn("changes not pushed to the remote store", "pending", n)
		}
	}
	return runErr
}
