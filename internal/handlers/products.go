// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"pantrykeeper/internal/models"
	"pantrykeeper/internal/store"
)

// productViews maps ?view= values to the product store's filtered views.
var productViews = map[string]func(*store.ProductStore) []models.Product{
	"":            (*store.ProductStore).List,
	"all":         (*store.ProductStore).List,
	"shopping":    (*store.ProductStore).Shopping,
	"completed":   (*store.ProductStore).CompletedShopping,
	"pantry":      (*store.ProductStore).Pantry,
	"instock":     func(s *store.ProductStore) []models.Product { return s.ByStock(true) },
	"outofstock":  func(s *store.ProductStore) []models.Product { return s.ByStock(false) },
	"inseason":    func(s *store.ProductStore) []models.Product { return s.BySeason(true) },
	"outofseason": func(s *store.ProductStore) []models.Product { return s.BySeason(false) },
}

// ListProducts returns one view over the products, selected by ?view=.
func (a *API) ListProducts(w http.ResponseWriter, r *http.Request) {
	view, ok := productViews[strings.ToLower(r.URL.Query().Get("view"))]
	if !ok {
		badRequest(w, "Unknown view.")
		return
	}
	writeJSON(w, http.StatusOK, view(a.products))
}

// GetProduct returns one product.
func (a *API) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, ok := a.products.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, r, store.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// CreateProduct adds a product. An unknown category places it in the
// fallback category and is reported as a warning.
func (a *API) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req store.ProductPatch
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if msg := validateName(deref(req.Name)); msg != "" {
		badRequest(w, msg)
		return
	}
	p := models.Product{Name: *req.Name, Category: deref(req.Category), InSeason: true}
	applyFlags(&p, req)
	created, err := a.products.Insert(r.Context(), p)
	respond(w, r, http.StatusCreated, created, err)
}

// applyFlags copies the flags set in patch onto p.
func applyFlags(p *models.Product, patch store.ProductPatch) {
	set := func(f models.Flag, v *bool) {
		if v != nil {
			p.SetFlag(f, *v)
		}
	}
	set(models.FlagPantry, patch.Pantry)
	set(models.FlagInStock, patch.InStock)
	set(models.FlagInSeason, patch.InSeason)
	set(models.FlagInShopping, patch.InShopping)
	set(models.FlagCompleted, patch.Completed)
	if patch.Bought != nil {
		p.Bought = *patch.Bought
	}
}

// UpdateProduct applies a partial edit.
func (a *API) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var patch store.ProductPatch
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
	p, err := a.products.Edit(r.Context(), chi.URLParam(r, "id"), patch)
	respond(w, r, http.StatusOK, p, err)
}

// DeleteProduct removes a product.
func (a *API) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	noContent(w, r, a.products.Delete(r.Context(), chi.URLParam(r, "id")))
}

// ToggleProduct flips the flag named in the path.
func (a *API) ToggleProduct(w http.ResponseWriter, r *http.Request) {
	flag, ok := models.ParseFlag(chi.URLParam(r, "flag"))
	if !ok {
		badRequest(w, "Unknown flag.")
		return
	}
	p, err := a.products.Toggle(r.Context(), chi.URLParam(r, "id"), flag)
	respond(w, r, http.StatusOK, p, err)
}

// AddToShopping puts a product on the shopping list by name, creating it
// when it does not exist yet.
func (a *API) AddToShopping(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Category string `json:"category"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if msg := validateName(req.Name); msg != "" {
		badRequest(w, msg)
		return
	}
	p, created, err := a.products.AddToShoppingByName(r.Context(), req.Name, req.Category)
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respond(w, r, status, p, err)
}

// ClearCompleted finishes the shopping trip.
func (a *API) ClearCompleted(w http.ResponseWriter, r *http.Request) {
	n, err := a.products.ClearCompleted(r.Context())
	respond(w, r, http.StatusOK, map[string]int{"cleared": n}, err)
}

// ListOrphans returns products whose category does not resolve.
func (a *API) ListOrphans(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.products.FindOrphaned())
}

// ListDuplicates returns groups of products sharing a name. They can only
// arrive from the remote store and are repaired with the usual edit and
// delete routes.
func (a *API) ListDuplicates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.products.FindDuplicates())
}

// FixOrphan moves one orphaned product into {"category": id}.
func (a *API) FixOrphan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category string `json:"category"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := a.products.FixOrphan(r.Context(), chi.URLParam(r, "id"), req.Category)
	respond(w, r, http.StatusOK, p, err)
}

// DeleteOrphan removes one orphaned product.
func (a *API) DeleteOrphan(w http.ResponseWriter, r *http.Request) {
	noContent(w, r, a.products.DeleteOrphan(r.Context(), chi.URLParam(r, "id")))
}

// ValidateCategories moves every orphan to the fallback category.
func (a *API) ValidateCategories(w http.ResponseWriter, r *http.Request) {
	n, err := a.products.ValidateCategories(r.Context())
	respond(w, r, http.StatusOK, map[string]int{"fixed": n}, err)
}
