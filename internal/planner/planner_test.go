// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package planner

import (
	"context"
	"testing"
	"time"

	"pantrykeeper/internal/kv"
	"pantrykeeper/internal/models"
	"pantrykeeper/internal/persist"
	"pantrykeeper/internal/store"
)

func TestWeekStartWednesday(t *testing.T) {
	wed := time.Date(2026, 3, 4, 15, 30, 0, 0, time.UTC)
	if wed.Weekday() != time.Wednesday {
		t.Fatalf("fixture is a %s", wed.Weekday())
	}
	got := WeekStart(wed)
	want := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("WeekStart = %v, want %v", got, want)
	}
	if got.Weekday() != time.Saturday {
		t.Errorf("week starts on %s, want Saturday", got.Weekday())
	}
	if key := WeekKey(got); key != "2026-02-28" {
		t.Errorf("WeekKey = %q, want %q", key, "2026-02-28")
	}
}

func TestWeekStartBoundaries(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{"saturday itself", time.Date(2026, 2, 28, 23, 59, 0, 0, time.UTC), "2026-02-28"},
		{"friday", time.Date(2026, 3, 6, 8, 0, 0, 0, time.UTC), "2026-02-28"},
		{"next saturday", time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC), "2026-03-07"},
		{"across a year", time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC), "2025-12-27"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WeekKey(WeekStart(tt.in)); got != tt.want {
				t.Errorf("WeekKey(WeekStart(%v)) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}

	monday := Settings{FirstDay: time.Monday, LunchFromHour: 11, DinnerFromHour: 17}
	if got := WeekKey(monday.WeekStart(time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC))); got != "2026-03-02" {
		t.Errorf("monday week = %q, want 2026-03-02", got)
	}
}

func TestMealIndex(t *testing.T) {
	s := DefaultSettings()
	tests := []struct {
		hour int
		want models.MealType
	}{
		{0, models.Breakfast}, {10, models.Breakfast},
		{11, models.Lunch}, {16, models.Lunch},
		{17, models.Dinner}, {23, models.Dinner},
	}
	for _, tt := range tests {
		at := time.Date(2026, 3, 4, tt.hour, 0, 0, 0, time.UTC)
		if got := s.MealIndex(at); got != tt.want.Index() {
			t.Errorf("MealIndex(%02d:00) = %d, want %d (%s)", tt.hour, got, tt.want.Index(), tt.want)
		}
	}
}

func TestParseWeekday(t *testing.T) {
	for in, want := range map[string]time.Weekday{"saturday": time.Saturday, "Mon": time.Monday, " SUNDAY ": time.Sunday} {
		got, err := ParseWeekday(in)
		if err != nil || got != want {
			t.Errorf("ParseWeekday(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseWeekday("someday"); err == nil {
		t.Error("expected error for unknown weekday")
	}
}

type harness struct {
	products *store.ProductStore
	recipes  *store.RecipeStore
	meals    *store.MealPlanStore
	svc      *Service
}

func newHarness(t *testing.T, now time.Time) *harness {
	t.Helper()
	ctx := context.Background()
	p := persist.New(kv.NewMemory())
	cats := store.NewCategoryStore(p)
	cats.Load(ctx)
	h := &harness{
		products: store.NewProductStore(p, cats),
		recipes:  store.NewRecipeStore(p),
		meals:    store.NewMealPlanStore(p),
	}
	h.products.Load(ctx)
	h.recipes.Load(ctx)
	h.meals.Load(ctx)
	h.svc = NewService(h.products, h.recipes, h.meals, DefaultSettings())
	h.svc.now = func() time.Time { return now }
	return h
}

func (h *harness) product(t *testing.T, name string) string {
	t.Helper()
	p, err := h.products.Add(context.Background(), name, "cat_004")
	if err != nil {
		t.Fatalf("Add(%q): %v", name, err)
	}
	return p.ID
}

func (h *harness) recipe(t *testing.T, name string, productIDs ...string) string {
	t.Helper()
	r := models.Recipe{Name: name}
	for _, id := range productIDs {
		r.Ingredients = append(r.Ingredients, models.Ingredient{ProductID: id, Quantity: 1, Unit: "pcs"})
	}
	created, err := h.recipes.Insert(context.Background(), r)
	if err != nil {
		t.Fatalf("Insert(%q): %v", name, err)
	}
	return created.ID
}

func TestResolve(t *testing.T) {
	h := newHarness(t, time.Now())
	eggs := h.product(t, "Eggs")
	omelette := h.recipe(t, "Omelette", eggs)

	got := h.svc.Resolve(models.RecipeMeal(omelette))
	if got.Name != "Omelette" || len(got.Ingredients) != 1 || got.Missing {
		t.Errorf("Resolve(recipe) = %+v", got)
	}

	got = h.svc.Resolve(models.RecipeMeal("deleted"))
	if got.Name != UnknownRecipe || !got.Missing || len(got.Ingredients) != 0 {
		t.Errorf("Resolve(dangling) = %+v", got)
	}

	got = h.svc.Resolve(models.SimpleMeal("Eggs on toast", eggs, "gone"))
	if got.Name != "Eggs on toast" || len(got.Ingredients) != 1 || got.Ingredients[0].ProductName != "Eggs" {
		t.Errorf("Resolve(simple) = %+v", got)
	}
}

func TestCollectIngredientsRanges(t *testing.T) {
	// Wednesday 12:00 is day 4 of a Saturday week, during lunch.
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	h := newHarness(t, now)
	ctx := context.Background()
	week := h.svc.CurrentWeek()

	a, b, c, d := h.product(t, "A"), h.product(t, "B"), h.product(t, "C"), h.product(t, "D")
	ra := h.recipe(t, "Past", a)
	rb := h.recipe(t, "Lunch today", b)
	rc := h.recipe(t, "Dinner today", c, a)
	rd := h.recipe(t, "Tomorrow", d)

	h.meals.SetMeal(ctx, week, 1, models.Dinner, models.RecipeMeal(ra))
	h.meals.SetMeal(ctx, week, 4, models.Lunch, models.RecipeMeal(rb))
	h.meals.SetMeal(ctx, week, 4, models.Dinner, models.RecipeMeal(rc))
	h.meals.SetMeal(ctx, week, 5, models.Breakfast, models.RecipeMeal(rd))

	tests := []struct {
		rng         Range
		meals       int
		ingredients []string
	}{
		{RangeAll, 4, []string{a, b, c, d}},
		{RangeFuture, 1, []string{d}},
		{RangeTodayFuture, 2, []string{c, a, d}},
	}
	for _, tt := range tests {
		t.Run(string(tt.rng), func(t *testing.T) {
			got := h.svc.CollectIngredients(tt.rng)
			if got.Week != "2026-02-28" {
				t.Errorf("week = %q", got.Week)
			}
			if len(got.Meals) != tt.meals {
				t.Errorf("meals = %d, want %d", len(got.Meals), tt.meals)
			}
			var ids []string
			for _, ing := range got.Ingredients {
				ids = append(ids, ing.ProductID)
			}
			if len(ids) != len(tt.ingredients) {
				t.Fatalf("ingredients = %v, want %v", ids, tt.ingredients)
			}
			for i := range ids {
				if ids[i] != tt.ingredients[i] {
					t.Errorf("ingredient %d = %s, want %s", i, ids[i], tt.ingredients[i])
				}
			}
		})
	}
}

func TestAddIngredientsToShopping(t *testing.T) {
	now := time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)
	h := newHarness(t, now)
	ctx := context.Background()
	week := h.svc.CurrentWeek()

	stocked, missing, listed := h.product(t, "Flour"), h.product(t, "Yeast"), h.product(t, "Salt")
	h.products.SetFlag(ctx, stocked, models.FlagInStock, true)
	h.products.SetShopping(ctx, listed, true)
	bread := h.recipe(t, "Bread", stocked, missing, listed)
	h.meals.SetMeal(ctx, week, 6, models.Dinner, models.RecipeMeal(bread))

	added, err := h.svc.AddIngredientsToShopping(ctx, RangeAll)
	if err != nil {
		t.Fatalf("AddIngredientsToShopping: %v", err)
	}
	if len(added) != 1 || added[0].ID != missing {
		t.Errorf("added = %+v, want only Yeast", added)
	}
	if p, _ := h.products.Get(missing); !p.InShopping {
		t.Error("Yeast should be on the shopping list")
	}
}

func TestParseRange(t *testing.T) {
	if r, err := ParseRange(""); err != nil || r != RangeAll {
		t.Errorf("ParseRange(\"\") = %q, %v", r, err)
	}
	if _, err := ParseRange("yesterday"); err == nil {
		t.Error("expected error for unknown range")
	}
}
