// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ingredient

import (
	"strings"

	"pantrykeeper/internal/models"
)

// descriptors are dropped before the last matching step so "fresh basil"
// finds "basil" and "gehakte ui" finds "ui".
var descriptors = map[string]bool{
	"fresh": true, "dried": true, "chopped": true, "sliced": true,
	"ground": true, "whole": true, "raw": true, "cooked": true,
	"vers": true, "verse": true, "gedroogd": true, "gedroogde": true,
	"gehakt": true, "gehakte": true, "gesneden": true, "gemalen": true,
	"heel": true, "hele": true, "rauw": true, "rauwe": true,
	"gekookt": true, "gekookte": true,
}

func stripDescriptors(s string) string {
	words := strings.Fields(s)
	kept := words[:0]
	for _, w := range words {
		if !descriptors[w] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// FindProduct resolves name against products with a four step cascade,
// first hit wins: exact name ignoring case, product name contains the
// term, the term contains the product name, then the two containment
// checks again with descriptor words removed from both sides.
func FindProduct(name string, products []models.Product) (models.Product, bool) {
	term := strings.ToLower(strings.TrimSpace(name))
	if term == "" {
		return models.Product{}, false
	}
	lower := make([]string, len(products))
	for i, p := range products {
		lower[i] = strings.ToLower(strings.TrimSpace(p.Name))
	}

	steps := []func(candidate string) bool{
		func(c string) bool { return c == term },
		func(c string) bool { return strings.Contains(c, term) },
		func(c string) bool { return strings.Contains(term, c) },
	}
	for _, step := range steps {
		for i, c := range lower {
			if c != "" && step(c) {
				return products[i], true
			}
		}
	}

	bare := stripDescriptors(term)
	if bare == "" {
		return models.Product{}, false
	}
	for i, c := range lower {
		cb := stripDescriptors(c)
		if cb == "" {
			continue
		}
		if strings.Contains(cb, bare) || strings.Contains(bare, cb) {
			return products[i], true
		}
	}
	return models.Product{}, false
}

// Match is a parsed line together with the product it resolved to.
type Match struct {
	Line
	ProductID string `json:"productId"`
	// Product is the matched product's stored name.
	Product string `json:"product"`
}

// Result splits parsed lines into those that matched a product and those
// that did not. Unmatched lines are never turned into products here.
type Result struct {
	Matched []Match `json:"matched"`
	Skipped []Line  `json:"skipped"`
}

// Ingredients converts the matched lines to recipe ingredients.
func (r Result) Ingredients() []models.Ingredient {
	out := make([]models.Ingredient, 0, len(r.Matched))
	seen := make(map[string]bool)
	for _, m := range r.Matched {
		if seen[m.ProductID] {
			continue
		}
		seen[m.ProductID] = true
		out = append(out, models.Ingredient{ProductID: m.ProductID, ProductName: m.Product, Quantity: m.Quantity, Unit: m.Unit})
	}
	return out
}

// Analyze parses text and matches every line against products.
func Analyze(text string, products []models.Product) Result {
	res := Result{Matched: []Match{}, Skipped: []Line{}}
	for _, l := range Parse(text) {
		p, ok := FindProduct(l.ProductName, products)
		if !ok {
			res.Skipped = append(res.Skipped, l)
			continue
		}
		res.Matched = append(res.Matched, Match{Line: l, ProductID: p.ID, Product: p.Name})
	}
	return res
}
