// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the JSON API over the local stores, the meal
// planner and the importers.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"pantrykeeper/internal/backup"
	"pantrykeeper/internal/csvimport"
	"pantrykeeper/internal/planner"
	"pantrykeeper/internal/store"
)

// WarningHeader carries a soft error that accompanied a successful
// mutation, such as a failed disk write.
const WarningHeader = "X-Storage-Warning"

// errBadRequest marks malformed input detected by the handlers themselves.
var errBadRequest = errors.New("bad request")

// Deps are the collaborators the API serves.
type Deps struct {
	Categories *store.CategoryStore
	Products   *store.ProductStore
	Recipes    *store.RecipeStore
	Meals      *store.MealPlanStore
	Planner    *planner.Service
	Importer   *csvimport.Importer
	Backup     *backup.Service
}

// API groups the HTTP handlers.
type API struct {
	categories *store.CategoryStore
	products   *store.ProductStore
	recipes    *store.RecipeStore
	meals      *store.MealPlanStore
	planner    *planner.Service
	importer   *csvimport.Importer
	backup     *backup.Service
}

// New creates an API.
func New(d Deps) *API {
	return &API{
		categories: d.Categories,
		products:   d.Products,
		recipes:    d.Recipes,
		meals:      d.Meals,
		planner:    d.Planner,
		importer:   d.Importer,
		backup:     d.Backup,
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// statusFor maps store and import errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrDuplicateName):
		return http.StatusConflict
	case errors.Is(err, store.ErrProtectedDefault):
		return http.StatusForbidden
	case errors.Is(err, store.ErrInvalidReference), errors.Is(err, store.ErrInvalidCategory):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrEmptyName),
		errors.Is(err, store.ErrInvalidIngredient),
		errors.Is(err, store.ErrInvalidSlot),
		errors.Is(err, csvimport.ErrParse),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, backup.ErrDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes err as {"error": "..."}. Unexpected errors are logged
// and not shown to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

// respond writes data on success. A soft error keeps the success status
// and is reported in WarningHeader.
func respond(w http.ResponseWriter, r *http.Request, status int, data any, err error) {
	if err != nil && !store.IsSoft(err) {
		writeError(w, r, err)
		return
	}
	if err != nil {
		w.Header().Set(WarningHeader, err.Error())
	}
	writeJSON(w, status, data)
}

// noContent answers 204 unless err is a rejection.
func noContent(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil && !store.IsSoft(err) {
		writeError(w, r, err)
		return
	}
	if err != nil {
		w.Header().Set(WarningHeader, err.Error())
	}
	w.WriteHeader(http.StatusNoContent)
}

// badRequest writes a 400 with msg.
func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode body: %v: %w", err, errBadRequest)
	}
	return nil
}

// readText reads a bounded raw request body.
func readText(w http.ResponseWriter, r *http.Request) (string, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %v: %w", err, errBadRequest)
	}
	return string(data), nil
}
