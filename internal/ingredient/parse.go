// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package ingredient turns freeform ingredient text such as "2 cups flour"
// or "Bloemkool 600 g" into structured lines and matches them to products.
package ingredient

import (
	"regexp"
	"strconv"
	"strings"
)

// Units applied when a line carries no unit.
const (
	UnitPieces = "pcs"
	UnitPinch  = "pinch"
)

// unitAliases maps lowercase spellings, plurals and Dutch terms to the
// canonical short unit.
var unitAliases = map[string]string{
	"cup": "cup", "cups": "cup",
	"tbsp": "tbsp", "tbs": "tbsp", "eetlepel": "tbsp", "eetlepels": "tbsp", "el": "tbsp",
	"tsp": "tsp", "theelepel": "tsp", "theelepels": "tsp", "tl": "tsp",
	"g": "g", "gr": "g", "gram": "g", "grams": "g",
	"kg": "kg", "kgs": "kg", "kilogram": "kg", "kilograms": "kg",
	"ml": "ml", "mls": "ml", "milliliter": "ml", "milliliters": "ml",
	"cl": "cl", "cls": "cl",
	"l": "l", "ls": "l", "liter": "l", "liters": "l",
	"pcs": "pcs", "pc": "pcs", "piece": "pcs", "pieces": "pcs",
	"pinch": "pinch", "pinches": "pinch",
}

// NormalizeUnit returns the canonical form of unit and whether it is known.
func NormalizeUnit(unit string) (string, bool) {
	u, ok := unitAliases[strings.ToLower(strings.TrimSpace(unit))]
	return u, ok
}

// Line is one parsed ingredient.
type Line struct {
	Source      string  `json:"source"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`
	ProductName string  `json:"productName"`
}

const qty = `(\d+(?:\.\d+)?(?:/\d+)?)`

// pattern is one step of the cascade. extract returns false when the line
// does not fit.
type pattern struct {
	name    string
	re      *regexp.Regexp
	extract func(m []string) (Line, bool)
}

// patterns run in this order; later ones are looser fallbacks for the
// earlier ones, so the order is significant.
var patterns = []pattern{
	{
		name: "quantity unit name",
		re:   regexp.MustCompile(`^` + qty + `\s*([[:alpha:]]+)\.?\s+(.+)$`),
		extract: func(m []string) (Line, bool) {
			return withUnit(m[1], m[2], m[3])
		},
	},
	{
		name: "name quantity unit",
		re:   regexp.MustCompile(`^(.+?)\s+` + qty + `\s*([[:alpha:]]+)\.?$`),
		extract: func(m []string) (Line, bool) {
			return withUnit(m[2], m[3], m[1])
		},
	},
	{
		name: "name quantity",
		re:   regexp.MustCompile(`^(.+?)\s+` + qty + `$`),
		extract: func(m []string) (Line, bool) {
			return withImplied(m[2], UnitPieces, m[1])
		},
	},
	{
		name: "quantity name",
		re:   regexp.MustCompile(`^` + qty + `\s+(.+)$`),
		extract: func(m []string) (Line, bool) {
			return withImplied(m[1], UnitPieces, m[2])
		},
	},
	{
		name: "name",
		re:   regexp.MustCompile(`^(.+)$`),
		extract: func(m []string) (Line, bool) {
			return withImplied("1", UnitPinch, m[1])
		},
	},
}

func withUnit(quantity, unit, name string) (Line, bool) {
	u, ok := NormalizeUnit(unit)
	if !ok {
		return Line{}, false
	}
	return withImplied(quantity, u, name)
}

func withImplied(quantity, unit, name string) (Line, bool) {
	q, ok := parseQuantity(quantity)
	if !ok {
		return Line{}, false
	}
	name = CleanName(name)
	if name == "" {
		return Line{}, false
	}
	return Line{Quantity: q, Unit: unit, ProductName: name}, true
}

func parseQuantity(s string) (float64, bool) {
	if num, den, frac := strings.Cut(s, "/"); frac {
		n, err1 := strconv.ParseFloat(num, 64)
		d, err2 := strconv.ParseFloat(den, 64)
		if err1 != nil || err2 != nil || d == 0 {
			return 0, false
		}
		return n / d, n > 0
	}
	q, err := strconv.ParseFloat(s, 64)
	return q, err == nil && q > 0
}

var (
	parenthetical = regexp.MustCompile(`\([^)]*\)`)
	spaces        = regexp.MustCompile(`\s+`)
	leadingFiller = []string{"of", "the", "de", "het"}
)

// CleanName strips a leading filler word ("of", "the", "de", "het"), any
// parenthetical and surrounding space.
func CleanName(name string) string {
	name = parenthetical.ReplaceAllString(name, " ")
	name = strings.TrimSpace(spaces.ReplaceAllString(name, " "))
	for {
		first, rest, ok := strings.Cut(name, " ")
		if !ok || !isFiller(first) {
			break
		}
		name = strings.TrimSpace(rest)
	}
	return name
}

func isFiller(word string) bool {
	for _, f := range leadingFiller {
		if strings.EqualFold(word, f) {
			return true
		}
	}
	return false
}

// Split breaks text into trimmed, non-empty lines. Commas, semicolons and
// line breaks all end a line.
func Split(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n' || r == '\r'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// ParseLine runs the pattern cascade over one line. The first pattern that
// fits wins.
func ParseLine(line string) (Line, bool) {
	line = strings.TrimSpace(line)
	for _, p := range patterns {
		m := p.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if l, ok := p.extract(m); ok {
			l.Source = line
			return l, true
		}
	}
	return Line{}, false
}

// Parse splits text and parses every line, dropping lines no pattern fits.
func Parse(text string) []Line {
	var out []Line
	for _, line := range Split(text) {
		if l, ok := ParseLine(line); ok {
			out = append(out, l)
		}
	}
	return out
}
