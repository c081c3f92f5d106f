// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"pantrykeeper/internal/store"
)

// ListCategories returns the categories in display order.
func (a *API) ListCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.categories.List())
}

// CreateCategory adds a user category.
func (a *API) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		Emoji string `json:"emoji"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if msg := validateName(req.Name); msg != "" {
		badRequest(w, msg)
		return
	}
	if msg := validateEmoji(req.Emoji); msg != "" {
		badRequest(w, msg)
		return
	}
	c, err := a.categories.Add(r.Context(), req.Name, req.Emoji)
	respond(w, r, http.StatusCreated, c, err)
}

// UpdateCategory renames a category or changes its emoji.
func (a *API) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var patch store.CategoryPatch
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
	if msg := validateEmoji(deref(patch.Emoji)); msg != "" {
		badRequest(w, msg)
		return
	}
	c, err := a.categories.Edit(r.Context(), chi.URLParam(r, "id"), patch)
	respond(w, r, http.StatusOK, c, err)
}

// DeleteCategory removes a user category. Its products move to the
// fallback category.
func (a *API) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	moved, err := a.categories.Delete(r.Context(), chi.URLParam(r, "id"))
	respond(w, r, http.StatusOK, map[string]int{"reassigned": moved}, err)
}

// ReorderCategories accepts {"ids": [...]} or {"from": n, "to": m}.
func (a *API) ReorderCategories(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs  []string `json:"ids"`
		From *int     `json:"from"`
		To   *int     `json:"to"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	var err error
	switch {
	case len(req.IDs) > 0:
		err = a.categories.Reorder(r.Context(), req.IDs)
	case req.From != nil && req.To != nil:
		err = a.categories.Move(r.Context(), *req.From, *req.To)
	default:
		badRequest(w, "Either ids or from and to are required.")
		return
	}
	respond(w, r, http.StatusOK, a.categories.List(), err)
}
