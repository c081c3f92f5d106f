// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"pantrykeeper/internal/models"
	"pantrykeeper/internal/planner"
	"pantrykeeper/internal/store"
)

// weekKey normalizes a date to the key of the week containing it. Empty
// means the current week.
func (a *API) weekKey(raw string) (string, error) {
	if raw == "" {
		return a.planner.CurrentWeek(), nil
	}
	t, err := planner.ParseWeekKey(raw, time.Local)
	if err != nil {
		return "", fmt.Errorf("%v: %w", err, errBadRequest)
	}
	return planner.WeekKey(a.planner.Settings().WeekStart(t)), nil
}

// slot parses the {week}/{day}/{meal} path parameters.
func (a *API) slot(r *http.Request) (string, int, models.MealType, error) {
	week, err := a.weekKey(chi.URLParam(r, "week"))
	if err != nil {
		return "", 0, "", err
	}
	day, err := strconv.Atoi(chi.URLParam(r, "day"))
	if err != nil {
		return "", 0, "", fmt.Errorf("day %q: %w", chi.URLParam(r, "day"), store.ErrInvalidSlot)
	}
	return week, day, models.MealType(chi.URLParam(r, "meal")), nil
}

// weekView is a planned week with every filled slot resolved.
type weekView struct {
	Week  string                `json:"week"`
	Plan  models.WeekPlan       `json:"plan"`
	Meals []planner.PlannedMeal `json:"meals"`
}

// GetWeek returns the week named by ?week= (any date within it).
func (a *API) GetWeek(w http.ResponseWriter, r *http.Request) {
	week, err := a.weekKey(r.URL.Query().Get("week"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	plan := a.meals.Week(week)
	v := weekView{Week: week, Plan: plan, Meals: []planner.PlannedMeal{}}
	for day := 0; day < models.DaysPerWeek; day++ {
		for _, mt := range models.MealTypes {
			if as, ok := plan[day][mt]; ok {
				v.Meals = append(v.Meals, planner.PlannedMeal{Day: day, Meal: mt, Resolved: a.planner.Resolve(as)})
			}
		}
	}
	writeJSON(w, http.StatusOK, v)
}

// ListWeeks returns the keys of every planned week.
func (a *API) ListWeeks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.meals.Weeks())
}

// SetMeal fills one slot. Recipe assignments must reference an existing
// recipe.
func (a *API) SetMeal(w http.ResponseWriter, r *http.Request) {
	week, day, meal, err := a.slot(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var as models.MealAssignment
	if err := decodeJSON(w, r, &as); err != nil {
		writeError(w, r, err)
		return
	}
	if as.Type == models.AssignRecipe {
		if _, ok := a.recipes.Get(models.NormalizeID(as.RecipeID)); !ok {
			writeError(w, r, fmt.Errorf("recipe %q: %w", as.RecipeID, store.ErrInvalidReference))
			return
		}
	}
	err = a.meals.SetMeal(r.Context(), week, day, meal, as)
	stored, _ := a.meals.Get(week, day, meal)
	respond(w, r, http.StatusOK, stored, err)
}

// RemoveMeal clears one slot.
func (a *API) RemoveMeal(w http.ResponseWriter, r *http.Request) {
	week, day, meal, err := a.slot(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	noContent(w, r, a.meals.RemoveMeal(r.Context(), week, day, meal))
}

// MealIngredients collects the ingredients of the current week for
// ?range=all|future|todayFuture.
func (a *API) MealIngredients(w http.ResponseWriter, r *http.Request) {
	rng, err := planner.ParseRange(r.URL.Query().Get("range"))
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, a.planner.CollectIngredients(rng))
}

// MealShopping adds the collected ingredients that are not in stock to the
// shopping list.
func (a *API) MealShopping(w http.ResponseWriter, r *http.Request) {
	rng, err := planner.ParseRange(r.URL.Query().Get("range"))
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	added, err := a.planner.AddIngredientsToShopping(r.Context(), rng)
	if added == nil {
		added = []models.Product{}
	}
	respond(w, r, http.StatusOK, map[string]any{"added": added}, err)
}
