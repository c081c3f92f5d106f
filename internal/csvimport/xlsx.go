// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package csvimport

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"pantrykeeper/internal/models"
)

const exportSheet = "Products"

// ImportProductsXLSX reads the product template from the first sheet of a
// workbook and applies it like ImportProducts.
func (im *Importer) ImportProductsXLSX(ctx context.Context, r io.Reader, mode Mode) (Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return newResult(), fmt.Errorf("open workbook: %v: %w", err, ErrParse)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return newResult(), fmt.Errorf("read sheet %q: %v: %w", sheet, err, ErrParse)
	}
	var kept [][]string
	for _, row := range rows {
		if !blank(row) {
			kept = append(kept, row)
		}
	}
	if len(kept) == 0 {
		return newResult(), fmt.Errorf("empty sheet %q: %w", sheet, ErrParse)
	}
	return im.importProductRows(ctx, kept, mode)
}

// exportRow renders p in ProductColumns order. The category is written by
// name so the file imports back.
func exportRow(p models.Product, cats Categories) []string {
	category := p.Category
	if c, ok := cats.Get(p.Category); ok {
		category = c.Name
	}
	return []string{
		p.Name,
		category,
		strconv.FormatBool(p.InShopping),
		strconv.FormatBool(p.Pantry),
		strconv.FormatBool(p.InStock),
		strconv.FormatBool(p.InSeason),
	}
}

// ExportProductsCSV writes products in the import template format.
func ExportProductsCSV(w io.Writer, products []models.Product, cats Categories) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ProductColumns); err != nil {
		return err
	}
	for _, p := range products {
		if err := cw.Write(exportRow(p, cats)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportProductsXLSX writes products to a single-sheet workbook in the
// import template format.
func ExportProductsXLSX(w io.Writer, products []models.Product, cats Categories) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return err
	}
	sw, err := f.NewStreamWriter(exportSheet)
	if err != nil {
		return err
	}
	header := make([]interface{}, len(ProductColumns))
	for i, c := range ProductColumns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}
	for i, p := range products {
		rec := exportRow(p, cats)
		row := make([]interface{}, len(rec))
		for j, v := range rec {
			row[j] = v
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}
	_, err = f.WriteTo(w)
	return err
}
