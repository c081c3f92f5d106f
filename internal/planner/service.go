// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package planner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"pantrykeeper/internal/models"
	"pantrykeeper/internal/store"
)

// UnknownRecipe names a slot whose recipe no longer exists.
const UnknownRecipe = "Unknown Recipe"

// Range selects which slots of the current week are collected.
type Range string

const (
	RangeAll         Range = "all"
	RangeFuture      Range = "future"
	RangeTodayFuture Range = "todayFuture"
)

// ParseRange validates a wire value. Empty means all.
func ParseRange(s string) (Range, error) {
	switch r := Range(s); r {
	case "":
		return RangeAll, nil
	case RangeAll, RangeFuture, RangeTodayFuture:
		return r, nil
	}
	return "", fmt.Errorf("unknown range %q", s)
}

// Products is what the service needs from the product store.
type Products interface {
	Get(id string) (models.Product, bool)
	SetShopping(ctx context.Context, id string, on bool) (models.Product, error)
}

// Recipes looks up recipes by id.
type Recipes interface {
	Get(id string) (models.Recipe, bool)
}

// Meals reads the calendar.
type Meals interface {
	Week(week string) models.WeekPlan
}

// Resolved is a meal slot with its references followed.
type Resolved struct {
	Name        string              `json:"name"`
	RecipeID    string              `json:"recipeId,omitempty"`
	Ingredients []models.Ingredient `json:"ingredients"`
	// Missing is set for recipe slots whose recipe was deleted.
	Missing bool `json:"missing,omitempty"`
}

// PlannedMeal is one filled slot of a collected week.
type PlannedMeal struct {
	Day  int             `json:"day"`
	Meal models.MealType `json:"meal"`
	Resolved
}

// Collection is the outcome of CollectIngredients.
type Collection struct {
	Week        string              `json:"week"`
	Range       Range               `json:"range"`
	Meals       []PlannedMeal       `json:"meals"`
	Ingredients []models.Ingredient `json:"ingredients"`
}

// Service answers questions about the meal plan that need products and
// recipes. The stores never reference each other; the service holds them.
type Service struct {
	products Products
	recipes  Recipes
	meals    Meals
	settings Settings
	now      func() time.Time
}

// NewService wires a Service.
func NewService(products Products, recipes Recipes, meals Meals, settings Settings) *Service {
	return &Service{products: products, recipes: recipes, meals: meals, settings: settings, now: time.Now}
}

// Settings returns the calendar conventions in use.
func (s *Service) Settings() Settings { return s.settings }

// CurrentWeek returns the key of the week containing now.
func (s *Service) CurrentWeek() string {
	return WeekKey(s.settings.WeekStart(s.now()))
}

// Resolve follows an assignment. A recipe that no longer exists yields the
// UnknownRecipe placeholder with no ingredients rather than an error.
func (s *Service) Resolve(a models.MealAssignment) Resolved {
	switch a.Type {
	case models.AssignSimple:
		r := Resolved{Name: a.Name, Ingredients: []models.Ingredient{}}
		for _, id := range a.Products {
			p, ok := s.products.Get(id)
			if !ok {
				continue
			}
			r.Ingredients = append(r.Ingredients, models.Ingredient{ProductID: p.ID, ProductName: p.Name, Quantity: 1, Unit: "pcs"})
		}
		if r.Name == "" {
			r.Name = "Simple meal"
		}
		return r
	default:
		rec, ok := s.recipes.Get(a.RecipeID)
		if !ok {
			return Resolved{Name: UnknownRecipe, RecipeID: a.RecipeID, Ingredients: []models.Ingredient{}, Missing: true}
		}
		return Resolved{Name: rec.Name, RecipeID: rec.ID, Ingredients: rec.Ingredients}
	}
}

// include applies the range rule to one slot of the current week.
func (s *Service) include(rng Range, day, meal, today, currentMeal int) bool {
	switch rng {
	case RangeFuture:
		return day > today
	case RangeTodayFuture:
		return day > today || (day == today && meal > currentMeal)
	default:
		return true
	}
}

// CollectIngredients walks the seven days and three meals of the current
// week and gathers the ingredients of the slots selected by rng,
// deduplicated by product.
func (s *Service) CollectIngredients(rng Range) Collection {
	now := s.now()
	week := WeekKey(s.settings.WeekStart(now))
	today := s.settings.DayIndex(now)
	currentMeal := s.settings.MealIndex(now)
	plan := s.meals.Week(week)

	c := Collection{Week: week, Range: rng, Meals: []PlannedMeal{}, Ingredients: []models.Ingredient{}}
	seen := make(map[string]bool)
	for day := 0; day < models.DaysPerWeek; day++ {
		for mi, mt := range models.MealTypes {
			a, ok := plan[day][mt]
			if !ok || !s.include(rng, day, mi, today, currentMeal) {
				continue
			}
			r := s.Resolve(a)
			c.Meals = append(c.Meals, PlannedMeal{Day: day, Meal: mt, Resolved: r})
			for _, ing := range r.Ingredients {
				key := ing.ProductID
				if key == "" {
					key = "name:" + strings.ToLower(ing.ProductName)
				}
				if seen[key] {
					continue
				}
				seen[key] = true
				c.Ingredients = append(c.Ingredients, ing)
			}
		}
	}
	return c
}

// AddIngredientsToShopping puts every collected product that is neither in
// stock nor already listed on the shopping list. It returns the products
// it added.
func (s *Service) AddIngredientsToShopping(ctx context.Context, rng Range) ([]models.Product, error) {
	var added []models.Product
	var warn error
	for _, ing := range s.CollectIngredients(rng).Ingredients {
		p, ok := s.products.Get(ing.ProductID)
		if !ok || p.InStock || p.InShopping {
			continue
		}
		updated, err := s.products.SetShopping(ctx, p.ID, true)
		if err != nil {
			if !store.IsSoft(err) {
				return added, fmt.Errorf("add %s to shopping: %w", p.Name, err)
			}
			warn = err
		}
		added = append(added, updated)
	}
	if len(added) > 0 {
		slog.Info("meal plan ingredients added to shopping", "range", rng, "count", len(added))
	}
	return added, warn
}
