// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// store_test.go provides shared fixtures for the store tests. Every test
// runs against an in-memory backend with a fixed clock.
package store

import (
	"context"
	"testing"
	"time"

	"pantrykeeper/internal/kv"
	"pantrykeeper/internal/persist"
)

var testNow = time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)

type fixture struct {
	mem   *kv.Memory
	p     *persist.Persister
	cats  *CategoryStore
	prods *ProductStore
	recs  *RecipeStore
	meals *MealPlanStore
}

// newFixture wires the stores the way the application does, without
// sample data, and loads them.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := kv.NewMemory()
	return loadFixture(t, mem)
}

func loadFixture(t *testing.T, mem *kv.Memory) *fixture {
	t.Helper()
	ctx := context.Background()
	p := persist.New(mem)
	f := &fixture{mem: mem, p: p}
	f.cats = NewCategoryStore(p)
	f.prods = NewProductStore(p, f.cats)
	f.prods.now = func() time.Time { return testNow }
	f.recs = NewRecipeStore(p)
	f.recs.now = func() time.Time { return testNow }
	f.meals = NewMealPlanStore(p)
	f.meals.now = func() time.Time { return testNow }
	f.cats.AddReferrer(f.prods)

	if err := f.cats.Load(ctx); err != nil {
		t.Fatalf("load categories: %v", err)
	}
	if err := f.prods.Load(ctx); err != nil {
		t.Fatalf("load products: %v", err)
	}
	if err := f.recs.Load(ctx); err != nil {
		t.Fatalf("load recipes: %v", err)
	}
	if err := f.meals.Load(ctx); err != nil {
		t.Fatalf("load meal plans: %v", err)
	}
	return f
}

func mustAddProduct(t *testing.T, s *ProductStore, name, category string) string {
	t.Helper()
	p, err := s.Add(context.Background(), name, category)
	if err != nil {
		t.Fatalf("Add(%q): %v", name, err)
	}
	return p.ID
}

func ptr[T any](v T) *T { return &v }
