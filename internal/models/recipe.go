// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"time"
)

// DefaultPersons is the serving count assumed when a recipe omits it.
const DefaultPersons = 4

// Ingredient is one line of a recipe, referencing a Product.
// ProductName is kept for display and for records whose id reference was
// lost.
type Ingredient struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName,omitempty"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`
}

// UnmarshalJSON accepts numeric product ids.
func (i *Ingredient) UnmarshalJSON(data []byte) error {
	var raw struct {
		ProductID   FlexID  `json:"productId"`
		ProductName string  `json:"productName"`
		Quantity    float64 `json:"quantity"`
		Unit        string  `json:"unit"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*i = Ingredient{
		ProductID:   string(raw.ProductID),
		ProductName: raw.ProductName,
		Quantity:    raw.Quantity,
		Unit:        raw.Unit,
	}
	return nil
}

// RecipeMetadata classifies a recipe for filtering.
type RecipeMetadata struct {
	Cuisine        string `json:"cuisine"`
	MainIngredient string `json:"mainIngredient"`
	Season         string `json:"season"`
}

// Recipe is a named dish with structured ingredients and/or a free-text
// ingredient list.
type Recipe struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Preparation     string          `json:"preparation"`
	Ingredients     []Ingredient    `json:"ingredients"`
	IngredientsText string          `json:"ingredientsText,omitempty"`
	Persons         int             `json:"persons"`
	Image           string          `json:"image,omitempty"`
	Metadata        *RecipeMetadata `json:"metadata,omitempty"`
	DateCreated     time.Time       `json:"dateCreated"`
	LastModified    time.Time       `json:"lastModified"`
	Version         int64           `json:"version"`
}

// UnmarshalJSON accepts numeric recipe ids and defaults persons.
func (r *Recipe) UnmarshalJSON(data []byte) error {
	type plain Recipe
	var raw struct {
		plain
		ID FlexID `json:"id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Recipe(raw.plain)
	r.ID = string(raw.ID)
	if r.Persons <= 0 {
		r.Persons = DefaultPersons
	}
	if r.Ingredients == nil {
		r.Ingredients = []Ingredient{}
	}
	return nil
}

// Touch bumps the modification time and version after a mutation.
func (r *Recipe) Touch(now time.Time) {
	r.LastModified = now
	r.Version++
}

// Clone returns a deep copy so callers cannot alias store internals.
func (r Recipe) Clone() Recipe {
	out := r
	out.Ingredients = append([]Ingredient(nil), r.Ingredients...)
	if out.Ingredients == nil {
		out.Ingredients = []Ingredient{}
	}
	if r.Metadata != nil {
		md := *r.Metadata
		out.Metadata = &md
	}
	return out
}

// AvailabilityStatus summarises how many of a recipe's ingredients are in
// stock.
type AvailabilityStatus string

const (
	Available   AvailabilityStatus = "available"
	Partial     AvailabilityStatus = "partial"
	Unavailable AvailabilityStatus = "unavailable"
)

// Availability is the in-stock count for one recipe.
type Availability struct {
	AvailableCount int                `json:"availableCount"`
	TotalCount     int                `json:"totalCount"`
	Status         AvailabilityStatus `json:"status"`
}
