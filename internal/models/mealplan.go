// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MealType is a slot within a day.
type MealType string

const (
	Breakfast MealType = "breakfast"
	Lunch     MealType = "lunch"
	Dinner    MealType = "dinner"
)

// MealTypes lists the slots of a day in chronological order.
var MealTypes = []MealType{Breakfast, Lunch, Dinner}

// Index returns the chronological position of the meal type, or -1.
func (m MealType) Index() int {
	for i, mt := range MealTypes {
		if mt == m {
			return i
		}
	}
	return -1
}

// Valid reports whether m is one of the known meal types.
func (m MealType) Valid() bool {
	return m.Index() >= 0
}

// DaysPerWeek is the number of day slots in a plan week.
const DaysPerWeek = 7

// AssignmentKind tags a MealAssignment.
type AssignmentKind string

const (
	AssignRecipe AssignmentKind = "recipe"
	AssignSimple AssignmentKind = "simple"
)

// MealAssignment fills one meal slot, either with a recipe reference or
// with an ad-hoc list of products ("simple meal").
type MealAssignment struct {
	Type     AssignmentKind `json:"type"`
	RecipeID string         `json:"id,omitempty"`
	Name     string         `json:"name,omitempty"`
	Products []string       `json:"products,omitempty"`
}

// RecipeMeal builds a recipe assignment.
func RecipeMeal(recipeID string) MealAssignment {
	return MealAssignment{Type: AssignRecipe, RecipeID: recipeID}
}

// SimpleMeal builds a simple-meal assignment.
func SimpleMeal(name string, productIDs ...string) MealAssignment {
	return MealAssignment{Type: AssignSimple, Name: name, Products: productIDs}
}

// UnmarshalJSON decodes the tagged form as well as the legacy bare recipe
// id (a JSON number or string).
func (a *MealAssignment) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] != '{' {
		var id FlexID
		if err := id.UnmarshalJSON(data); err != nil {
			return fmt.Errorf("decode legacy meal: %w", err)
		}
		*a = RecipeMeal(string(id))
		return nil
	}
	var raw struct {
		Type     AssignmentKind `json:"type"`
		ID       FlexID         `json:"id"`
		Name     string         `json:"name"`
		Products []FlexID       `json:"products"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*a = MealAssignment{Type: raw.Type, RecipeID: string(raw.ID), Name: raw.Name}
	for _, p := range raw.Products {
		a.Products = append(a.Products, string(p))
	}
	if a.Type == "" {
		a.Type = AssignRecipe
		if a.RecipeID == "" && len(a.Products) > 0 {
			a.Type = AssignSimple
		}
	}
	return nil
}

// DayPlan holds the filled meal slots of one day.
type DayPlan map[MealType]MealAssignment

// WeekPlan holds the filled days of one week, keyed by day index 0..6.
// JSON object keys are the decimal day index.
type WeekPlan map[int]DayPlan

// MealPlans is keyed by week key (ISO date of the week's first day).
type MealPlans map[string]WeekPlan
