// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import "pantrykeeper/internal/models"

type sampleProduct struct {
	name     string
	category string
	shopping bool
	pantry   bool
	inStock  bool
}

var sampleProducts = []sampleProduct{
	{"bananas", "cat_001", true, false, false},
	{"tomatoes", "cat_001", false, true, true},
	{"onion", "cat_001", false, true, true},
	{"garlic", "cat_001", false, true, true},
	{"milk", "cat_002", true, true, false},
	{"cheese", "cat_002", false, true, true},
	{"chicken breast", "cat_003", true, false, false},
	{"pasta", "cat_004", false, true, true},
	{"rice", "cat_004", false, true, true},
	{"olive oil", "cat_004", false, true, true},
	{"frozen peas", "cat_005", false, true, false},
	{"bread", "cat_006", true, false, false},
}

// SampleProducts returns the products seeded on the very first run. A
// sample whose default category is unknown goes to otherID.
func SampleProducts(cats CategoryResolver) []models.Product {
	out := make([]models.Product, 0, len(sampleProducts))
	for _, sp := range sampleProducts {
		category := sp.category
		if !cats.Exists(category) {
			category = cats.OtherID()
		}
		out = append(out, models.Product{
			ID:         models.NewID(),
			Name:       sp.name,
			Category:   category,
			InShopping: sp.shopping,
			Pantry:     sp.pantry,
			InStock:    sp.inStock,
			InSeason:   true,
		})
	}
	return out
}

// SampleRecipes returns the recipes seeded on the very first run. Each
// ingredient is linked to the product of the same name when one exists.
func SampleRecipes(products ProductLookup) []models.Recipe {
	ing := func(name string, qty float64, unit string) models.Ingredient {
		i := models.Ingredient{ProductName: name, Quantity: qty, Unit: unit}
		if p, ok := products.FindByName(name); ok {
			i.ProductID = p.ID
		}
		return i
	}
	return []models.Recipe{
		{
			ID:          models.NewID(),
			Name:        "Pasta Pomodoro",
			Description: "Quick weeknight pasta with a fresh tomato sauce.",
			Preparation: "Cook the pasta.\nSoften garlic in olive oil, add tomatoes and simmer 10 minutes.\nToss with the pasta and top with cheese.",
			Ingredients: []models.Ingredient{
				ing("pasta", 400, "g"),
				ing("tomatoes", 500, "g"),
				ing("garlic", 2, "clove"),
				ing("olive oil", 2, "tbsp"),
				ing("cheese", 50, "g"),
			},
			Persons: 4,
		},
		{
			ID:          models.NewID(),
			Name:        "Chicken Fried Rice",
			Description: "Leftover rice, chicken and peas.",
			Preparation: "Fry the chicken until golden.\nAdd onion, peas and the cooked rice.\nStir-fry until hot.",
			Ingredients: []models.Ingredient{
				ing("chicken breast", 300, "g"),
				ing("rice", 250, "g"),
				ing("frozen peas", 150, "g"),
				ing("onion", 1, "pcs"),
			},
			Persons: 2,
		},
	}
}
