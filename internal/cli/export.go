// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"pantrykeeper/internal/app"
	"pantrykeeper/internal/csvimport"
)

func newExportCommand(opts *options) *cobra.Command {
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export data in the import formats",
	}
	exportCmd.AddCommand(&cobra.Command{
		Use:   "products FILE",
		Short: "Export products as CSV, or as a workbook when FILE ends in .xlsx",
		Long:  "Export every product in the product import template. Use - to write CSV to stdout.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(commandContext(cmd), opts, func(a *app.App) error {
				return exportProducts(a, args[0], cmd.OutOrStdout())
			})
		},
	})
	return exportCmd
}

func exportProducts(a *app.App, path string, stdout io.Writer) error {
	products := a.Products.List()
	if path == "-" {
		return csvimport.ExportProductsCSV(stdout, products, a.Categories)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		err = csvimport.ExportProductsXLSX(f, products, a.Categories)
	} else {
		err = csvimport.ExportProductsCSV(f, products, a.Categories)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("export products: %w", err)
	}
	fmt.Fprintf(stdout, "exported %d products to %s\n", len(products), path)
	return nil
}
