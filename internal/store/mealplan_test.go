package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"pantrykeeper/internal/kv"
	"pantrykeeper/internal/models"
	"pantrykeeper/internal/persist"
)

const testWeek = "2026-02-28"

func TestRemoveMealCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.meals.SetMeal(ctx, testWeek, 3, models.Dinner, models.RecipeMeal("r1")); err != nil {
		t.Fatalf("SetMeal: %v", err)
	}
	if err := f.meals.RemoveMeal(ctx, testWeek, 3, models.Dinner); err != nil {
		t.Fatalf("RemoveMeal: %v", err)
	}
	if _, ok := f.meals.All()[testWeek]; ok {
		t.Error("week key should be gone after its only meal was removed")
	}

	f.meals.SetMeal(ctx, testWeek, 1, models.Lunch, models.RecipeMeal("r1"))
	f.meals.SetMeal(ctx, testWeek, 2, models.Lunch, models.RecipeMeal("r2"))
	f.meals.SetMeal(ctx, testWeek, 2, models.Dinner, models.SimpleMeal("Leftovers", "p1"))

	f.meals.RemoveMeal(ctx, testWeek, 1, models.Lunch)
	week := f.meals.Week(testWeek)
	if _, ok := week[1]; ok {
		t.Error("day 1 should be removed once empty")
	}
	f.meals.RemoveMeal(ctx, testWeek, 2, models.Lunch)
	week = f.meals.Week(testWeek)
	if len(week[2]) != 1 {
		t.Errorf("day 2 should keep its dinner, got %v", week[2])
	}

	reloaded := loadFixture(t, f.mem)
	if a, ok := reloaded.meals.Get(testWeek, 2, models.Dinner); !ok || a.Name != "Leftovers" {
		t.Errorf("persisted dinner = %+v, %v", a, ok)
	}
}

func TestSetMealOverwrites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.meals.SetMeal(ctx, testWeek, 0, models.Breakfast, models.RecipeMeal("r1"))
	f.meals.SetMeal(ctx, testWeek, 0, models.Breakfast, models.SimpleMeal("Toast"))

	a, _ := f.meals.Get(testWeek, 0, models.Breakfast)
	if a.Type != models.AssignSimple || a.RecipeID != "" {
		t.Errorf("slot = %+v, want the simple meal", a)
	}
}

func TestSetMealRejectsBadSlots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tests := []struct {
		name string
		day  int
		meal models.MealType
		a    models.MealAssignment
	}{
		{"day too high", 7, models.Lunch, models.RecipeMeal("r1")},
		{"negative day", -1, models.Lunch, models.RecipeMeal("r1")},
		{"unknown meal", 0, "brunch", models.RecipeMeal("r1")},
		{"recipe without id", 0, models.Lunch, models.MealAssignment{Type: models.AssignRecipe}},
		{"empty simple meal", 0, models.Lunch, models.MealAssignment{Type: models.AssignSimple}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := f.meals.SetMeal(ctx, testWeek, tt.day, tt.meal, tt.a); !errors.Is(err, ErrInvalidSlot) {
				t.Errorf("expected ErrInvalidSlot, got %v", err)
			}
		})
	}
	if err := f.meals.RemoveMeal(ctx, testWeek, 0, models.Lunch); !errors.Is(err, ErrNotFound) {
		t.Errorf("removing an empty slot: expected ErrNotFound, got %v", err)
	}
}

func TestMealPlanLegacyAssignments(t *testing.T) {
	mem := kv.NewMemory()
	ctx := context.Background()
	raw := `{"2026-02-28":{"0":{"lunch":1700000000000,"dinner":{"type":"simple","name":"Salad","products":[5,"6"]}},"4":{}}}`
	mem.Set(ctx, "meal_plans", []byte(raw))
	f := loadFixture(t, mem)

	lunch, ok := f.meals.Get(testWeek, 0, models.Lunch)
	if !ok || lunch.Type != models.AssignRecipe || lunch.RecipeID != "1700000000000" {
		t.Errorf("legacy bare id = %+v", lunch)
	}
	dinner, _ := f.meals.Get(testWeek, 0, models.Dinner)
	if len(dinner.Products) != 2 || dinner.Products[0] != "5" {
		t.Errorf("simple meal products = %v", dinner.Products)
	}
	if _, ok := f.meals.Week(testWeek)[4]; ok {
		t.Error("empty day should be dropped on load")
	}
}

func TestMealPlanApplyRemote(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.meals.SetMeal(ctx, testWeek, 0, models.Lunch, models.RecipeMeal("local"))

	payload, _ := json.Marshal(models.WeekPlan{5: {models.Dinner: models.RecipeMeal("remote")}})
	n, err := f.meals.ApplyRemote(ctx, []RemoteRecord{
		{ID: testWeek, Version: 1, Modified: testNow.Add(-1), Payload: payload},
		{ID: "2026-03-07", Version: 3, Payload: payload},
	})
	if err != nil {
		t.Fatalf("ApplyRemote: %v", err)
	}
	if n != 1 {
		t.Errorf("applied = %d, want 1 (older week ignored)", n)
	}
	if a, _ := f.meals.Get(testWeek, 0, models.Lunch); a.RecipeID != "local" {
		t.Error("older remote week overwrote local state")
	}
	if a, _ := f.meals.Get("2026-03-07", 5, models.Dinner); a.RecipeID != "remote" {
		t.Errorf("new remote week not applied: %+v", a)
	}

	f.meals.ApplyRemote(ctx, []RemoteRecord{{ID: testWeek, Deleted: true, Version: 2, Modified: testNow}})
	if _, ok := f.meals.All()[testWeek]; ok {
		t.Error("newer tombstone should remove the week")
	}
}

func TestMealPlanWritesFailSoftly(t *testing.T) {
	mem := kv.NewMemory()
	ctx := context.Background()
	s := NewMealPlanStore(persist.New(mem))
	s.Load(ctx)
	mem.FailWrites = errors.New("quota exceeded")

	err := s.SetMeal(ctx, testWeek, 0, models.Lunch, models.RecipeMeal("r1"))
	if !IsSoft(err) {
		t.Fatalf("expected a soft storage error, got %v", err)
	}
	if _, ok := s.Get(testWeek, 0, models.Lunch); !ok {
		t.Error("meal should stay set in memory")
	}
}
