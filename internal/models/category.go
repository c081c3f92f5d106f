// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"fmt"
	"strconv"
	"strings"
)

// OtherCategoryID is the fallback category that receives products whose
// category was deleted or never resolved.
const OtherCategoryID = "cat_007"

// categoryIDPrefix is the persisted id format: cat_ followed by a
// zero-padded sequence number.
const categoryIDPrefix = "cat_"

// Category groups products for display. Seeded categories are protected
// from rename and delete.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Emoji       string `json:"emoji"`
	Order       int    `json:"order"`
	IsDefault   bool   `json:"isDefault"`
}

// Label returns the display name, falling back to the canonical name.
func (c *Category) Label() string {
	if c.DisplayName != "" {
		return c.DisplayName
	}
	return c.Name
}

// CategoryID formats a sequence number as a category id ("cat_007").
func CategoryID(seq int) string {
	return fmt.Sprintf("%s%03d", categoryIDPrefix, seq)
}

// CategorySeq extracts the sequence number from a "cat_NNN" id.
// Returns false for ids that do not have that shape, such as legacy
// name-based ids.
func CategorySeq(id string) (int, bool) {
	if !strings.HasPrefix(id, categoryIDPrefix) {
		return 0, false
	}
	n, err := strconv.Atoi(id[len(categoryIDPrefix):])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// CanonicalName lowercases and trims a user supplied category name.
func CanonicalName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// DefaultCategories returns the seed categories created on first run.
func DefaultCategories() []Category {
	seeds := []struct{ name, display, emoji string }{
		{"produce", "Produce", "🥬"},
		{"dairy", "Dairy", "🥛"},
		{"meat", "Meat", "🥩"},
		{"pantry", "Pantry", "🥫"},
		{"frozen", "Frozen", "🧊"},
		{"bakery", "Bakery", "🍞"},
		{"other", "Other", "📦"},
	}
	cats := make([]Category, len(seeds))
	for i, s := range seeds {
		cats[i] = Category{
			ID:          CategoryID(i + 1),
			Name:        s.name,
			DisplayName: s.display,
			Emoji:       s.emoji,
			Order:       i,
			IsDefault:   true,
		}
	}
	return cats
}
