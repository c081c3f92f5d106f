// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"pantrykeeper/internal/csvimport"
)

// xlsxContentType is the media type of workbook uploads and exports.
const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// isXLSX reports whether the request body is a workbook, either by
// Content-Type or by ?format=xlsx.
func isXLSX(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), xlsxContentType) ||
		strings.EqualFold(r.URL.Query().Get("format"), "xlsx")
}

// ImportProducts applies a product CSV or workbook. ?mode=replace keeps
// existing products; ?mode=update overwrites them.
func (a *API) ImportProducts(w http.ResponseWriter, r *http.Request) {
	mode, err := csvimport.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var res csvimport.Result
	if isXLSX(r) {
		res, err = a.importer.ImportProductsXLSX(r.Context(), http.MaxBytesReader(w, r.Body, maxImportBytes), mode)
	} else {
		var text string
		if text, err = readText(w, r); err == nil {
			res, err = a.importer.ImportProducts(r.Context(), text, mode)
		}
	}
	importResponse(w, r, res, err)
}

// ImportRecipes applies a single-file recipe CSV.
func (a *API) ImportRecipes(w http.ResponseWriter, r *http.Request) {
	text, err := readText(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := a.importer.ImportRecipes(r.Context(), text)
	importResponse(w, r, res, err)
}

// ImportRecipesText applies a CSV whose ingredients column is free text.
func (a *API) ImportRecipesText(w http.ResponseWriter, r *http.Request) {
	text, err := readText(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := a.importer.ImportRecipesText(r.Context(), text)
	importResponse(w, r, res, err)
}

// ImportRecipePair applies a recipe info file and an ingredients file sent
// as the multipart fields "info" and "ingredients".
func (a *API) ImportRecipePair(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		badRequest(w, "Expected a multipart form with info and ingredients files.")
		return
	}
	info, err := formFile(r, "info")
	if err != nil {
		writeError(w, r, err)
		return
	}
	ings, err := formFile(r, "ingredients")
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := a.importer.ImportRecipePair(r.Context(), info, ings)
	importResponse(w, r, res, err)
}

// formFile reads one uploaded file of a parsed multipart form.
func formFile(r *http.Request, field string) (string, error) {
	f, _, err := r.FormFile(field)
	if err != nil {
		return "", fmt.Errorf("file %q: %v: %w", field, err, errBadRequest)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("read file %q: %v: %w", field, err, errBadRequest)
	}
	return string(data), nil
}

// importResponse writes an import result. Row-level problems are part of
// the result; only a file that cannot be read at all is an error.
func importResponse(w http.ResponseWriter, r *http.Request, res csvimport.Result, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	if len(res.Warnings) > 0 {
		w.Header().Set(WarningHeader, res.Warnings[0])
	}
	writeJSON(w, http.StatusOK, res)
}

// ExportProducts writes every product as CSV, or as a workbook with
// ?format=xlsx. The body is streamed, so failures can only be logged.
func (a *API) ExportProducts(w http.ResponseWriter, r *http.Request) {
	products := a.products.List()
	if strings.EqualFold(r.URL.Query().Get("format"), "xlsx") {
		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="products.xlsx"`)
		if err := csvimport.ExportProductsXLSX(w, products, a.categories); err != nil {
			slog.Error("export products failed", "format", "xlsx", "error", err)
		}
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="products.csv"`)
	if err := csvimport.ExportProductsCSV(w, products, a.categories); err != nil {
		slog.Error("export products failed", "format", "csv", "error", err)
	}
}

// Backup archives a snapshot of every store in object storage.
func (a *API) Backup(w http.ResponseWriter, r *http.Request) {
	res, err := a.backup.Upload(r.Context())
	respond(w, r, http.StatusCreated, res, err)
}
