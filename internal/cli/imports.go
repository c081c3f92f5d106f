// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"pantrykeeper/internal/app"
	"pantrykeeper/internal/csvimport"
)

func newImportCommand(opts *options) *cobra.Command {
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Import products or recipes from files",
	}

	var mode string
	productsCmd := &cobra.Command{
		Use:   "products FILE",
		Short: "Import products from a CSV or .xlsx file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := csvimport.ParseMode(mode)
			if err != nil {
				return err
			}
			return runImport(cmd, opts, func(a *app.App) (csvimport.Result, error) {
				if strings.EqualFold(filepath.Ext(args[0]), ".xlsx") {
					f, err := os.Open(args[0])
					if err != nil {
						return csvimport.Result{}, err
					}
					defer f.Close()
					return a.Importer.ImportProductsXLSX(commandContext(cmd), f, m)
				}
				text, err := readFile(args[0])
				if err != nil {
					return csvimport.Result{}, err
				}
				return a.Importer.ImportProducts(commandContext(cmd), text, m)
			})
		},
	}
	productsCmd.Flags().StringVar(&mode, "mode", string(csvimport.ModeReplace), "replace keeps existing products, update overwrites them")

	recipesCmd := &cobra.Command{
		Use:   "recipes FILE",
		Short: "Import recipes from a single CSV with one row per ingredient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, opts, func(a *app.App) (csvimport.Result, error) {
				text, err := readFile(args[0])
				if err != nil {
					return csvimport.Result{}, err
				}
				return a.Importer.ImportRecipes(commandContext(cmd), text)
			})
		},
	}

	pairCmd := &cobra.Command{
		Use:   "recipe-pair INFO INGREDIENTS",
		Short: "Import recipes from a recipe info CSV and an ingredients CSV",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, opts, func(a *app.App) (csvimport.Result, error) {
				info, err := readFile(args[0])
				if err != nil {
					return csvimport.Result{}, err
				}
				ings, err := readFile(args[1])
				if err != nil {
					return csvimport.Result{}, err
				}
				return a.Importer.ImportRecipePair(commandContext(cmd), info, ings)
			})
		},
	}

	textCmd := &cobra.Command{
		Use:   "recipes-text FILE",
		Short: "Import recipes whose ingredients are free text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, opts, func(a *app.App) (csvimport.Result, error) {
				text, err := readFile(args[0])
				if err != nil {
					return csvimport.Result{}, err
				}
				return a.Importer.ImportRecipesText(commandContext(cmd), text)
			})
		},
	}

	importCmd.AddCommand(productsCmd, recipesCmd, pairCmd, textCmd)
	return importCmd
}

// runImport opens the app, runs one importer and prints its result as
// indented JSON.
func runImport(cmd *cobra.Command, opts *options, fn func(*app.App) (csvimport.Result, error)) error {
	return withApp(commandContext(cmd), opts, func(a *app.App) error {
		res, err := fn(a)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), res)
	})
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
