// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pantrykeeper/internal/app"
	"pantrykeeper/internal/middleware"
	"pantrykeeper/internal/store"
)

func newBackupCommand(opts *options) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Archive a snapshot of every store",
		Long:  "Upload a JSON snapshot of every store to the S3 bucket, or write it to --output instead.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(commandContext(cmd), opts, func(a *app.App) error {
				if output != "" {
					data, err := json.MarshalIndent(a.Backup.Build(), "", "  ")
					if err != nil {
						return err
					}
					if err := os.WriteFile(output, data, 0o600); err != nil {
						return fmt.Errorf("write snapshot: %w", err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "snapshot written to %s\n", output)
					return nil
				}
				res, err := a.Backup.Upload(commandContext(cmd))
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the snapshot to this file instead of uploading it")
	return cmd
}

func newOrphansCommand(opts *options) *cobra.Command {
	var fix bool
	cmd := &cobra.Command{
		Use:   "orphans",
		Short: "List products whose category does not exist, and duplicate names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(commandContext(cmd), opts, func(a *app.App) error {
				orphans := a.Products.FindOrphaned()
				out := cmd.OutOrStdout()
				for _, p := range orphans {
					fmt.Fprintf(out, "%s\t%s\t%s\n", p.ID, p.Name, p.Category)
				}
				for _, group := range a.Products.FindDuplicates() {
					for _, p := range group {
						fmt.Fprintf(out, "duplicate\t%s\t%s\n", p.ID, p.Name)
					}
				}
				if !fix {
					fmt.Fprintf(out, "%d orphaned products\n", len(orphans))
					return nil
				}
				n, err := a.Products.ValidateCategories(commandContext(cmd))
				if err != nil && !store.IsSoft(err) {
					return err
				}
				fmt.Fprintf(out, "moved %d products to %s\n", n, a.Categories.OtherID())
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&fix, "fix", false, "move orphaned products to the fallback category")
	return cmd
}

func newHashKeyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-key KEY",
		Short: "Print the bcrypt hash of an API key for API_KEY_HASH",
		Args:  cobra.ExactArgs(1),
		// No configuration or logging needed.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := middleware.HashAPIKey(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
