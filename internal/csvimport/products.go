// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package csvimport

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"pantrykeeper/internal/metrics"
	"pantrykeeper/internal/models"
	"pantrykeeper/internal/store"
)

// Mode decides what a product import does with names that already exist.
type Mode string

const (
	// ModeReplace keeps existing products and skips duplicate rows.
	ModeReplace Mode = "replace"
	// ModeUpdate overwrites existing products, keeping their id and
	// dateAdded.
	ModeUpdate Mode = "update"
)

// ParseMode validates a wire value. Empty means replace.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeReplace, nil
	case ModeReplace, ModeUpdate:
		return m, nil
	}
	return "", fmt.Errorf("unknown import mode %q", s)
}

// ProductColumns is the product template header, in export order.
var ProductColumns = []string{"name", "category", "inshopping", "inpantry", "instock", "inseason"}

// Skip explains why a row or recipe was not imported.
type Skip struct {
	Row    int    `json:"row,omitempty"`
	Recipe string `json:"recipe,omitempty"`
	Reason string `json:"reason"`
}

// Result summarizes an import.
type Result struct {
	Imported    int      `json:"imported"`
	Updated     int      `json:"updated"`
	Skipped     []Skip   `json:"skipped"`
	NewUnits    []string `json:"newUnits"`
	NewCuisines []string `json:"newCuisines"`
	NewSeasons  []string `json:"newSeasons"`
	// Warnings carries soft store errors, such as failed local writes.
	Warnings []string `json:"warnings,omitempty"`
}

func newResult() Result {
	return Result{Skipped: []Skip{}, NewUnits: []string{}, NewCuisines: []string{}, NewSeasons: []string{}}
}

func (r *Result) skip(kind string, s Skip) {
	r.Skipped = append(r.Skipped, s)
	metrics.ImportRows.WithLabelValues(kind, "skipped").Inc()
}

func (r *Result) warn(err error) {
	msg := err.Error()
	for _, w := range r.Warnings {
		if w == msg {
			return
		}
	}
	r.Warnings = append(r.Warnings, msg)
}

// Categories resolves category cells.
type Categories interface {
	Get(id string) (models.Category, bool)
	FindByName(name string) (models.Category, bool)
}

// Products is the product store surface the importers write through.
type Products interface {
	List() []models.Product
	FindByName(name string) (models.Product, bool)
	Insert(ctx context.Context, p models.Product) (models.Product, error)
	Edit(ctx context.Context, id string, patch store.ProductPatch) (models.Product, error)
}

// Recipes is the recipe store surface the importers write through.
type Recipes interface {
	FindByName(name string) (models.Recipe, bool)
	Insert(ctx context.Context, r models.Recipe) (models.Recipe, error)
	KnownUnit(unit string) bool
	RegisterUnit(ctx context.Context, unit string) (bool, error)
	RegisterCuisine(ctx context.Context, cuisine string) (bool, error)
	RegisterSeason(ctx context.Context, season string) (bool, error)
}

// Importer applies spreadsheet rows to the stores.
type Importer struct {
	cats     Categories
	products Products
	recipes  Recipes
}

// New returns an Importer over the given stores.
func New(cats Categories, products Products, recipes Recipes) *Importer {
	return &Importer{cats: cats, products: products, recipes: recipes}
}

// ImportProducts reads the product template. Names are stored lowercase.
// Rows with an unknown category or an empty name are skipped; duplicate
// names are skipped in replace mode and overwrite in update mode.
func (im *Importer) ImportProducts(ctx context.Context, text string, mode Mode) (Result, error) {
	rows := Parse(text)
	if len(rows) == 0 {
		return newResult(), fmt.Errorf("empty file: %w", ErrParse)
	}
	return im.importProductRows(ctx, rows, mode)
}

func (im *Importer) importProductRows(ctx context.Context, rows [][]string, mode Mode) (Result, error) {
	res := newResult()
	h := newHeader(rows[0])
	if err := h.require(ProductColumns...); err != nil {
		return res, err
	}

	seen := make(map[string]int)
	for i, row := range rows[1:] {
		line := i + 2
		name := strings.ToLower(h.get(row, "name"))
		if name == "" {
			res.skip("product", Skip{Row: line, Reason: "name is empty"})
			continue
		}
		cell := h.get(row, "category")
		cat, ok := im.cats.FindByName(cell)
		if !ok {
			cat, ok = im.cats.Get(cell)
		}
		if !ok {
			res.skip("product", Skip{Row: line, Reason: fmt.Sprintf("unknown category %q", cell)})
			continue
		}
		if first, dup := seen[name]; dup && mode == ModeReplace {
			res.skip("product", Skip{Row: line, Reason: fmt.Sprintf("duplicate of row %d", first)})
			continue
		}
		seen[name] = line

		p := models.Product{
			Name:       name,
			Category:   cat.ID,
			InShopping: ParseBoolean(h.get(row, "inshopping")),
			Pantry:     ParseBoolean(h.get(row, "inpantry")),
			InStock:    ParseBoolean(h.get(row, "instock")),
			InSeason:   ParseBoolean(h.get(row, "inseason")),
		}

		if existing, found := im.products.FindByName(name); found {
			if mode == ModeReplace {
				res.skip("product", Skip{Row: line, Reason: fmt.Sprintf("product %q already exists", name)})
				continue
			}
			_, err := im.products.Edit(ctx, existing.ID, store.ProductPatch{
				Category:   &p.Category,
				InShopping: &p.InShopping,
				Pantry:     &p.Pantry,
				InStock:    &p.InStock,
				InSeason:   &p.InSeason,
			})
			if err != nil && !store.IsSoft(err) {
				res.skip("product", Skip{Row: line, Reason: err.Error()})
				continue
			}
			if err != nil {
				res.warn(err)
			}
			res.Updated++
			metrics.ImportRows.WithLabelValues("product", "updated").Inc()
			continue
		}

		if _, err := im.products.Insert(ctx, p); err != nil {
			if !store.IsSoft(err) {
				res.skip("product", Skip{Row: line, Reason: err.Error()})
				continue
			}
			res.warn(err)
		}
		res.Imported++
		metrics.ImportRows.WithLabelValues("product", "imported").Inc()
	}
	slog.Info("products imported", "mode", mode, "imported", res.Imported, "updated", res.Updated, "skipped", len(res.Skipped))
	return res, nil
}
