// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package app

import (
	"context"
	"fmt"
	"log/slog"

	"pantrykeeper/internal/store"
)

// bootstrap loads every store and repairs what older data left behind.
// The order matters: categories first so products can resolve theirs,
// products before recipes so sample recipes can reference them, legacy
// ids migrated before orphans are looked for.
func (a *App) bootstrap(ctx context.Context) error {
	if err := a.Categories.Load(ctx); err != nil && !store.IsSoft(err) {
		return fmt.Errorf("load categories: %w", err)
	}
	legacy, err := store.LoadLegacyLists(ctx, a.persister)
	if err != nil {
		return err
	}
	a.Legacy = legacy
	a.Categories.AddReferrer(a.Products)
	a.Categories.AddReferrer(a.Legacy)

	// Older installs have no products key yet but are not a first run.
	if !a.Legacy.Empty() || a.Categories.HasLegacyIDs() {
		a.Products.SkipSampleData()
		a.Recipes.SkipSampleData()
	}

	if err := a.Products.Load(ctx); err != nil && !store.IsSoft(err) {
		return fmt.Errorf("load products: %w", err)
	}
	if err := a.Recipes.Load(ctx); err != nil && !store.IsSoft(err) {
		return fmt.Errorf("load recipes: %w", err)
	}
	if err := a.Meals.Load(ctx); err != nil && !store.IsSoft(err) {
		return fmt.Errorf("load meal plan: %w", err)
	}

	if _, err := a.Categories.MigrateLegacyIDs(ctx); err != nil && !store.IsSoft(err) {
		return fmt.Errorf("migrate category ids: %w", err)
	}

	if !a.Legacy.Empty() {
		if _, _, err := a.Products.SyncExternal(ctx, a.Legacy.Shopping, a.Legacy.Pantry); err != nil && !store.IsSoft(err) {
			return fmt.Errorf("fold legacy lists: %w", err)
		}
		if err := a.Legacy.Retire(ctx); err != nil {
			slog.Warn("legacy lists not retired", "error", err)
		}
	}

	fixed, err := a.Products.ValidateCategories(ctx)
	if err != nil && !store.IsSoft(err) {
		return fmt.Errorf("validate categories: %w", err)
	}
	if fixed > 0 {
		slog.Info("orphaned products moved to the fallback category", "count", fixed)
	}

	if _, err := a.Recipes.UpgradeMetadata(ctx); err != nil && !store.IsSoft(err) {
		return fmt.Errorf("upgrade recipe metadata: %w", err)
	}

	if err := a.Products.RefreshRecipeCounts(ctx, a.Recipes.List()); err != nil {
		slog.Warn("recipe counts not saved", "error", err)
	}
	// Recipe edits from any source (API, imports, other instances) keep the
	// product counts current.
	a.Recipes.Subscribe(func(store.Change) {
		if err := a.Products.RefreshRecipeCounts(context.Background(), a.Recipes.List()); err != nil {
			slog.Warn("recipe counts not saved", "error", err)
		}
	})
	return nil
}
