// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"pantrykeeper/internal/models"
	"pantrykeeper/internal/persist"
)

// Keys of the per-list arrays that predate the unified product model.
const (
	legacyShoppingKey = "shopping_items"
	legacyPantryKey   = "pantry_items"
)

// LegacyLists holds the old shopping and pantry arrays until they are
// folded into the product store. It takes part in category id migration so
// the folded items land in the right category.
type LegacyLists struct {
	mu       sync.Mutex
	p        *persist.Persister
	Shopping []models.LegacyItem
	Pantry   []models.LegacyItem
}

// LoadLegacyLists reads whatever legacy arrays are still persisted.
func LoadLegacyLists(ctx context.Context, p *persist.Persister) (*LegacyLists, error) {
	l := &LegacyLists{p: p}
	if _, err := p.Load(ctx, legacyShoppingKey, &l.Shopping); err != nil {
		return nil, fmt.Errorf("load legacy shopping list: %w", err)
	}
	if _, err := p.Load(ctx, legacyPantryKey, &l.Pantry); err != nil {
		return nil, fmt.Errorf("load legacy pantry list: %w", err)
	}
	return l, nil
}

// Empty reports whether there is nothing left to fold.
func (l *LegacyLists) Empty() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Shopping) == 0 && len(l.Pantry) == 0
}

// ReassignCategory moves legacy items in from to to.
func (l *LegacyLists) ReassignCategory(ctx context.Context, from, to string) (int, error) {
	return l.RemapCategories(ctx, map[string]string{from: to})
}

// RemapCategories rewrites legacy item categories and persists both lists.
func (l *LegacyLists) RemapCategories(ctx context.Context, mapping map[string]string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := remapItems(l.Shopping, mapping) + remapItems(l.Pantry, mapping)
	if n == 0 {
		return 0, nil
	}
	if len(l.Shopping) > 0 {
		if err := l.p.Save(ctx, legacyShoppingKey, l.Shopping); err != nil {
			return n, err
		}
	}
	if len(l.Pantry) > 0 {
		if err := l.p.Save(ctx, legacyPantryKey, l.Pantry); err != nil {
			return n, err
		}
	}
	return n, nil
}

func remapItems(items []models.LegacyItem, mapping map[string]string) int {
	n := 0
	for i := range items {
		if to, ok := mapping[items[i].Category]; ok {
			items[i].Category = to
			n++
		}
	}
	return n
}

// Retire deletes the legacy keys once their items live in the product
// store, so they are never folded twice.
func (l *LegacyLists) Retire(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, key := range []string{legacyShoppingKey, legacyPantryKey} {
		if err := l.p.Remove(ctx, key); err != nil {
			return err
		}
	}
	slog.Info("legacy lists retired", "shopping", len(l.Shopping), "pantry", len(l.Pantry))
	l.Shopping, l.Pantry = nil, nil
	return nil
}
