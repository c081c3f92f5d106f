// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package csvimport reads the product and recipe spreadsheet templates.
// Every importer reports per-row skips instead of failing the whole file.
package csvimport

import (
	"errors"
	"fmt"
	"strings"
)

// ErrParse is returned when a file cannot be imported at all, such as a
// missing header.
var ErrParse = errors.New("malformed import file")

// DetectSeparator picks ';' when the header line holds more semicolons
// than commas, ',' otherwise.
func DetectSeparator(headerLine string) rune {
	if strings.Count(headerLine, ";") > strings.Count(headerLine, ",") {
		return ';'
	}
	return ','
}

// Parse tokenizes text into rows. A quote opens a quoted field only at the
// start of a field; elsewhere it is literal. Quoted fields may span lines
// and a doubled quote inside one is a literal quote. Blank lines are
// dropped.
func Parse(text string) [][]string {
	text = strings.TrimPrefix(text, "\ufeff")
	first, _, _ := strings.Cut(text, "\n")
	sep := DetectSeparator(first)

	var (
		rows    [][]string
		row     []string
		field   strings.Builder
		inQuote bool
	)
	endRow := func() {
		row = append(row, field.String())
		field.Reset()
		if !blank(row) {
			rows = append(rows, row)
		}
		row = nil
	}

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case inQuote && r == '"':
			if i+1 < len(runes) && runes[i+1] == '"' {
				field.WriteRune('"')
				i++
			} else {
				inQuote = false
			}
		case inQuote:
			field.WriteRune(r)
		case r == '"' && strings.TrimSpace(field.String()) == "":
			field.Reset()
			inQuote = true
		case r == sep:
			row = append(row, field.String())
			field.Reset()
		case r == '\r':
			if i+1 < len(runes) && runes[i+1] == '\n' {
				i++
			}
			endRow()
		case r == '\n':
			endRow()
		default:
			field.WriteRune(r)
		}
	}
	if field.Len() > 0 || len(row) > 0 {
		endRow()
	}
	return rows
}

func blank(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// ParseBoolean accepts true, 1 and yes in any case. Everything else,
// including an empty cell, is false.
func ParseBoolean(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// header indexes the columns of the first row by lowercase name.
type header map[string]int

func newHeader(row []string) header {
	h := make(header, len(row))
	for i, name := range row {
		key := strings.ToLower(strings.TrimSpace(name))
		key = strings.ReplaceAll(key, " ", "")
		if _, dup := h[key]; !dup && key != "" {
			h[key] = i
		}
	}
	return h
}

// require fails with ErrParse naming every missing column.
func (h header) require(cols ...string) error {
	var missing []string
	for _, c := range cols {
		if _, ok := h[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing columns %s: %w", strings.Join(missing, ", "), ErrParse)
	}
	return nil
}

// get returns the trimmed cell for col, or "" when the row is short or the
// column is absent.
func (h header) get(row []string, col string) string {
	i, ok := h[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// splitHeader parses text and separates the header row. Row numbers in
// skip reports count the header as row 1.
func splitHeader(text string) (header, [][]string, error) {
	rows := Parse(text)
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("empty file: %w", ErrParse)
	}
	return newHeader(rows[0]), rows[1:], nil
}
