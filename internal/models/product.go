// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"time"
)

// Flag names a boolean membership field of a Product.
type Flag string

const (
	FlagPantry     Flag = "pantry"
	FlagInShopping Flag = "inShopping"
	FlagInStock    Flag = "inStock"
	FlagInSeason   Flag = "inSeason"
	FlagCompleted  Flag = "completed"
)

// ParseFlag maps a wire name to a Flag. The legacy "inPantry" name is
// accepted as an alias of "pantry".
func ParseFlag(s string) (Flag, bool) {
	switch s {
	case "pantry", "inPantry":
		return FlagPantry, true
	case "inShopping", "shopping":
		return FlagInShopping, true
	case "inStock", "stock":
		return FlagInStock, true
	case "inSeason", "season":
		return FlagInSeason, true
	case "completed":
		return FlagCompleted, true
	}
	return "", false
}

// Product is the single record behind shopping list entries, pantry
// entries and recipe ingredient references. Membership in each list is a
// boolean flag on the record.
type Product struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Category     string    `json:"category"`
	InShopping   bool      `json:"inShopping"`
	Pantry       bool      `json:"pantry"`
	InStock      bool      `json:"inStock"`
	InSeason     bool      `json:"inSeason"`
	Completed    bool      `json:"completed"`
	Bought       bool      `json:"bought"`
	RecipeCount  int       `json:"recipeCount"`
	DateAdded    time.Time `json:"dateAdded"`
	LastModified time.Time `json:"lastModified"`
	Version      int64     `json:"version"`
}

// Flag reports the value of a membership flag.
func (p *Product) Flag(f Flag) bool {
	switch f {
	case FlagPantry:
		return p.Pantry
	case FlagInShopping:
		return p.InShopping
	case FlagInStock:
		return p.InStock
	case FlagInSeason:
		return p.InSeason
	case FlagCompleted:
		return p.Completed
	}
	return false
}

// SetFlag assigns a membership flag. Leaving the shopping list clears the
// completed mark.
func (p *Product) SetFlag(f Flag, v bool) {
	switch f {
	case FlagPantry:
		p.Pantry = v
	case FlagInShopping:
		p.InShopping = v
		if !v {
			p.Completed = false
		}
	case FlagInStock:
		p.InStock = v
	case FlagInSeason:
		p.InSeason = v
	case FlagCompleted:
		p.Completed = v
	}
}

// Touch bumps the modification time and version after a mutation.
func (p *Product) Touch(now time.Time) {
	p.LastModified = now
	p.Version++
}

// productJSON mirrors Product on the wire but accepts the legacy fields
// written by older clients: numeric ids, "inPantry" and "created".
type productJSON struct {
	ID           FlexID     `json:"id"`
	Name         string     `json:"name"`
	Category     string     `json:"category"`
	InShopping   bool       `json:"inShopping"`
	Pantry       *bool      `json:"pantry"`
	InPantry     *bool      `json:"inPantry"`
	InStock      bool       `json:"inStock"`
	InSeason     *bool      `json:"inSeason"`
	Completed    bool       `json:"completed"`
	Bought       bool       `json:"bought"`
	RecipeCount  int        `json:"recipeCount"`
	DateAdded    *time.Time `json:"dateAdded"`
	Created      *time.Time `json:"created"`
	LastModified *time.Time `json:"lastModified"`
	Version      int64      `json:"version"`
}

// UnmarshalJSON folds the legacy inPantry field into Pantry. A record is
// in the pantry if either field says so. inSeason defaults to true.
func (p *Product) UnmarshalJSON(data []byte) error {
	var raw productJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Product{
		ID:          string(raw.ID),
		Name:        raw.Name,
		Category:    raw.Category,
		InShopping:  raw.InShopping,
		InStock:     raw.InStock,
		InSeason:    true,
		Completed:   raw.Completed,
		Bought:      raw.Bought,
		RecipeCount: raw.RecipeCount,
		Version:     raw.Version,
	}
	p.Pantry = (raw.Pantry != nil && *raw.Pantry) || (raw.InPantry != nil && *raw.InPantry)
	if raw.InSeason != nil {
		p.InSeason = *raw.InSeason
	}
	switch {
	case raw.DateAdded != nil:
		p.DateAdded = *raw.DateAdded
	case raw.Created != nil:
		p.DateAdded = *raw.Created
	}
	if raw.LastModified != nil {
		p.LastModified = *raw.LastModified
	}
	return nil
}

// LegacyItem is an entry of the per-list shopping and pantry arrays that
// predate the unified product model.
type LegacyItem struct {
	ID        FlexID `json:"id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Completed bool   `json:"completed"`
	InStock   bool   `json:"inStock"`
	InSeason  *bool  `json:"inSeason,omitempty"`
}
