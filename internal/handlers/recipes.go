// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"pantrykeeper/internal/ingredient"
	"pantrykeeper/internal/markdown"
	"pantrykeeper/internal/models"
	"pantrykeeper/internal/store"
)

// recipeView is a recipe together with what the pantry can cover of it.
type recipeView struct {
	models.Recipe
	Availability models.Availability `json:"availability"`
}

func (a *API) view(rec models.Recipe) recipeView {
	return recipeView{Recipe: rec, Availability: store.Availability(rec, a.products)}
}

// ListRecipes returns every recipe with its availability. ?cuisine= and
// ?season= narrow the list.
func (a *API) ListRecipes(w http.ResponseWriter, r *http.Request) {
	cuisine := r.URL.Query().Get("cuisine")
	season := r.URL.Query().Get("season")
	out := []recipeView{}
	for _, rec := range a.recipes.List() {
		md := store.InferMetadata(rec)
		if rec.Metadata != nil {
			md = *rec.Metadata
		}
		if cuisine != "" && !strings.EqualFold(md.Cuisine, cuisine) {
			continue
		}
		if season != "" && !strings.EqualFold(md.Season, season) {
			continue
		}
		out = append(out, a.view(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetRecipe returns one recipe with its availability.
func (a *API) GetRecipe(w http.ResponseWriter, r *http.Request) {
	rec, ok := a.recipes.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, r, store.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, a.view(rec))
}

// CreateRecipe adds a recipe. When only ingredientsText is given, its lines
// are matched against the products to fill the structured list.
func (a *API) CreateRecipe(w http.ResponseWriter, r *http.Request) {
	var rec models.Recipe
	if err := decodeJSON(w, r, &rec); err != nil {
		writeError(w, r, err)
		return
	}
	if msg := validateName(rec.Name); msg != "" {
		badRequest(w, msg)
		return
	}
	if msg := validateRecipeText(rec.Description, rec.Preparation, rec.IngredientsText); msg != "" {
		badRequest(w, msg)
		return
	}
	if len(rec.Ingredients) == 0 && strings.TrimSpace(rec.IngredientsText) != "" {
		rec.Ingredients = ingredient.Analyze(rec.IngredientsText, a.products.List()).Ingredients()
	}
	created, err := a.recipes.Insert(r.Context(), rec)
	respond(w, r, http.StatusCreated, a.view(created), err)
}

// UpdateRecipe applies a partial edit.
func (a *API) UpdateRecipe(w http.ResponseWriter, r *http.Request) {
	var patch store.RecipePatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	if patch.Name != nil {
		if msg := validateName(*patch.Name); msg != "" {
			badRequest(w, msg)
			return
		}
	}
	if msg := validateRecipeText(deref(patch.Description), deref(patch.Preparation), deref(patch.IngredientsText)); msg != "" {
		badRequest(w, msg)
		return
	}
	rec, err := a.recipes.Edit(r.Context(), chi.URLParam(r, "id"), patch)
	respond(w, r, http.StatusOK, a.view(rec), err)
}

// DeleteRecipe removes a recipe. Meal slots that referenced it resolve to
// a placeholder from then on.
func (a *API) DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	noContent(w, r, a.recipes.Delete(r.Context(), chi.URLParam(r, "id")))
}

// RecipePreparation renders the preparation text as HTML.
func (a *API) RecipePreparation(w http.ResponseWriter, r *http.Request) {
	rec, ok := a.recipes.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, r, store.ErrNotFound)
		return
	}
	html, err := markdown.ToHTML(rec.Preparation)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html))
}

// Vocabulary returns the known units, cuisines and seasons.
func (a *API) Vocabulary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.recipes.Vocabulary())
}

// AnalyzeIngredients parses {"text": "..."} and matches each line against
// the products. Unmatched lines are returned, never created.
func (a *API) AnalyzeIngredients(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if msg := validateRecipeText("", "", req.Text); msg != "" {
		badRequest(w, msg)
		return
	}
	writeJSON(w, http.StatusOK, ingredient.Analyze(req.Text, a.products.List()))
}
