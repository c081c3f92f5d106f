// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up the HTTP routes and middleware chains of the
// pantrykeeper API.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"pantrykeeper/internal/handlers"
	"pantrykeeper/internal/metrics"
	"pantrykeeper/internal/middleware"
)

// New creates and returns the configured Chi router. An empty apiKeyHash
// leaves the API open; a nil importLimiter disables import rate limiting.
func New(api *handlers.API, apiKeyHash string, importLimiter *middleware.RateLimiter) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	// Health check and metrics, no API key.
	r.Get("/health", healthHandler)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.APIKey(apiKeyHash))

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", api.ListCategories)
			r.Post("/", api.CreateCategory)
			r.Put("/order", api.ReorderCategories)
			r.Put("/{id}", api.UpdateCategory)
			r.Delete("/{id}", api.DeleteCategory)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", api.ListProducts)
			r.Post("/", api.CreateProduct)
			r.Get("/orphans", api.ListOrphans)
			r.Post("/orphans/validate", api.ValidateCategories)
			r.Put("/orphans/{id}", api.FixOrphan)
			r.Delete("/orphans/{id}", api.DeleteOrphan)
			r.Get("/duplicates", api.ListDuplicates)
			r.Get("/{id}", api.GetProduct)
			r.Put("/{id}", api.UpdateProduct)
			r.Delete("/{id}", api.DeleteProduct)
			r.Post("/{id}/toggle/{flag}", api.ToggleProduct)
		})

		r.Route("/shopping", func(r chi.Router) {
			r.Post("/", api.AddToShopping)
			r.Post("/clear-completed", api.ClearCompleted)
		})

		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", api.ListRecipes)
			r.Post("/", api.CreateRecipe)
			r.Get("/vocabulary", api.Vocabulary)
			r.Get("/{id}", api.GetRecipe)
			r.Put("/{id}", api.UpdateRecipe)
			r.Delete("/{id}", api.DeleteRecipe)
			r.Get("/{id}/preparation", api.RecipePreparation)
		})

		r.Post("/ingredients/analyze", api.AnalyzeIngredients)

		r.Route("/mealplan", func(r chi.Router) {
			r.Get("/", api.GetWeek)
			r.Get("/weeks", api.ListWeeks)
			r.Get("/ingredients", api.MealIngredients)
			r.Post("/shopping", api.MealShopping)
			r.Put("/{week}/{day}/{meal}", api.SetMeal)
			r.Delete("/{week}/{day}/{meal}", api.RemoveMeal)
		})

		// Imports parse whole files, so they are rate limited.
		r.Route("/import", func(r chi.Router) {
			if importLimiter != nil {
				r.Use(importLimiter.Middleware)
			}
			r.Post("/products", api.ImportProducts)
			r.Post("/recipes", api.ImportRecipes)
			r.Post("/recipes/text", api.ImportRecipesText)
			r.Post("/recipes/pair", api.ImportRecipePair)
		})

		r.Get("/export/products", api.ExportProducts)
		r.Post("/backup", api.Backup)
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
