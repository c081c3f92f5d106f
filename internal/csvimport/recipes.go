// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package csvimport

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"pantrykeeper/internal/metrics"
	"pantrykeeper/internal/models"
	"pantrykeeper/internal/store"
)

// Headers of the recipe templates. The single-file and recipe info
// templates also read cuisine, mainingredient, season, image,
// ingredientstext and persons when present.
var (
	RecipeColumns           = []string{"recipename", "description", "preparation", "ingredientname", "quantity", "unit"}
	RecipeInfoColumns       = []string{"recipename"}
	RecipeIngredientColumns = []string{"recipename", "ingredientname", "quantity", "unit"}
	RecipeTextColumns       = []string{"recipename", "ingredientstext"}
)

// maxSuggestions bounds the similar product names listed for an
// unresolved ingredient.
const maxSuggestions = 3

// recipeRow is a recipe description row, from either template.
type recipeRow struct {
	line int
	h    header
	row  []string
}

func (r recipeRow) get(col string) string { return r.h.get(r.row, col) }

// ingredientRow is a row that names one ingredient of a recipe.
type ingredientRow struct {
	line int
	name string
	qty  string
	unit string
}

// group preserves the order in which recipe names first appear.
type group struct {
	name        string
	info        recipeRow
	ingredients []ingredientRow
}

func groupKey(name string) string { return strings.ToLower(strings.TrimSpace(name)) }

// ImportRecipes reads the single-file template: one row per recipe and
// ingredient pair, with the recipe fields repeated or taken from the first
// row of each recipe.
func (im *Importer) ImportRecipes(ctx context.Context, text string) (Result, error) {
	res := newResult()
	h, rows, err := splitHeader(text)
	if err != nil {
		return res, err
	}
	if err := h.require(RecipeColumns...); err != nil {
		return res, err
	}

	var order []string
	groups := make(map[string]*group)
	for i, row := range rows {
		line := i + 2
		name := h.get(row, "recipename")
		if name == "" {
			res.skip("recipe", Skip{Row: line, Reason: "recipe name is empty"})
			continue
		}
		key := groupKey(name)
		g, ok := groups[key]
		if !ok {
			g = &group{name: name, info: recipeRow{line: line, h: h, row: row}}
			groups[key] = g
			order = append(order, key)
		}
		if ing := h.get(row, "ingredientname"); ing != "" {
			g.ingredients = append(g.ingredients, ingredientRow{line: line, name: ing, qty: h.get(row, "quantity"), unit: h.get(row, "unit")})
		}
	}

	for _, key := range order {
		g := groups[key]
		im.createRecipe(ctx, &res, g, g.info.get("ingredientstext") != "")
	}
	im.logResult("single file", res)
	return res, nil
}

// ImportRecipePair reads the two-file template: recipe descriptions in
// info, ingredient rows in ingredients, joined on recipe name.
func (im *Importer) ImportRecipePair(ctx context.Context, info, ingredients string) (Result, error) {
	res := newResult()
	ih, infoRows, err := splitHeader(info)
	if err != nil {
		return res, fmt.Errorf("recipe info: %w", err)
	}
	if err := ih.require(RecipeInfoColumns...); err != nil {
		return res, fmt.Errorf("recipe info: %w", err)
	}
	gh, ingRows, err := splitHeader(ingredients)
	if err != nil {
		return res, fmt.Errorf("recipe ingredients: %w", err)
	}
	if err := gh.require(RecipeIngredientColumns...); err != nil {
		return res, fmt.Errorf("recipe ingredients: %w", err)
	}

	byRecipe := make(map[string][]ingredientRow)
	for i, row := range ingRows {
		line := i + 2
		key := groupKey(gh.get(row, "recipename"))
		name := gh.get(row, "ingredientname")
		if key == "" || name == "" {
			res.skip("recipe", Skip{Row: line, Reason: "ingredient row without recipe or ingredient name"})
			continue
		}
		byRecipe[key] = append(byRecipe[key], ingredientRow{line: line, name: name, qty: gh.get(row, "quantity"), unit: gh.get(row, "unit")})
	}

	seen := make(map[string]bool)
	for i, row := range infoRows {
		line := i + 2
		name := ih.get(row, "recipename")
		key := groupKey(name)
		if key == "" {
			res.skip("recipe", Skip{Row: line, Reason: "recipe name is empty"})
			continue
		}
		if seen[key] {
			res.skip("recipe", Skip{Row: line, Recipe: name, Reason: "listed twice in recipe info"})
			continue
		}
		seen[key] = true
		ings := byRecipe[key]
		if len(ings) == 0 {
			res.skip("recipe", Skip{Recipe: name, Reason: "no ingredients"})
			continue
		}
		im.createRecipe(ctx, &res, &group{name: name, info: recipeRow{line: line, h: ih, row: row}, ingredients: ings}, false)
	}
	im.logResult("two file", res)
	return res, nil
}

// ImportRecipesText reads the recipe-only template. Ingredients stay free
// text and the structured list is left empty.
func (im *Importer) ImportRecipesText(ctx context.Context, text string) (Result, error) {
	res := newResult()
	h, rows, err := splitHeader(text)
	if err != nil {
		return res, err
	}
	if err := h.require(RecipeTextColumns...); err != nil {
		return res, err
	}
	for i, row := range rows {
		line := i + 2
		name := h.get(row, "recipename")
		if name == "" {
			res.skip("recipe", Skip{Row: line, Reason: "recipe name is empty"})
			continue
		}
		if h.get(row, "ingredientstext") == "" {
			res.skip("recipe", Skip{Row: line, Recipe: name, Reason: "ingredientstext is empty"})
			continue
		}
		im.createRecipe(ctx, &res, &group{name: name, info: recipeRow{line: line, h: h, row: row}}, true)
	}
	im.logResult("text only", res)
	return res, nil
}

// createRecipe resolves the ingredient rows of g and inserts the recipe.
// With textOnly set a recipe without structured ingredients is accepted.
func (im *Importer) createRecipe(ctx context.Context, res *Result, g *group, textOnly bool) {
	if _, exists := im.recipes.FindByName(g.name); exists {
		res.skip("recipe", Skip{Recipe: g.name, Reason: "recipe already exists"})
		return
	}

	ings := make([]models.Ingredient, 0, len(g.ingredients))
	used := make(map[string]bool)
	for _, row := range g.ingredients {
		ing, reason := im.resolveIngredient(ctx, res, row)
		if reason != "" {
			res.skip("recipe", Skip{Row: row.line, Recipe: g.name, Reason: reason})
			continue
		}
		if used[ing.ProductID] {
			res.skip("recipe", Skip{Row: row.line, Recipe: g.name, Reason: fmt.Sprintf("ingredient %q listed twice", row.name)})
			continue
		}
		used[ing.ProductID] = true
		ings = append(ings, ing)
	}
	if len(ings) == 0 && !textOnly {
		res.skip("recipe", Skip{Recipe: g.name, Reason: "no ingredients could be matched to products"})
		return
	}

	r := models.Recipe{
		Name:            g.name,
		Description:     unescape(g.info.get("description")),
		Preparation:     unescape(g.info.get("preparation")),
		Ingredients:     ings,
		IngredientsText: unescape(g.info.get("ingredientstext")),
		Image:           g.info.get("image"),
		Persons:         models.DefaultPersons,
	}
	if n, err := strconv.Atoi(g.info.get("persons")); err == nil && n > 0 {
		r.Persons = n
	}
	md := models.RecipeMetadata{
		Cuisine:        g.info.get("cuisine"),
		MainIngredient: g.info.get("mainingredient"),
		Season:         g.info.get("season"),
	}
	if md == (models.RecipeMetadata{}) {
		md = store.InferMetadata(r)
	} else {
		im.register(ctx, res, md)
	}
	r.Metadata = &md

	if _, err := im.recipes.Insert(ctx, r); err != nil {
		if !store.IsSoft(err) {
			res.skip("recipe", Skip{Recipe: g.name, Reason: err.Error()})
			return
		}
		res.warn(err)
	}
	res.Imported++
	metrics.ImportRows.WithLabelValues("recipe", "imported").Inc()
}

func (im *Importer) register(ctx context.Context, res *Result, md models.RecipeMetadata) {
	if md.Cuisine != "" {
		if added, err := im.recipes.RegisterCuisine(ctx, md.Cuisine); added {
			res.NewCuisines = append(res.NewCuisines, md.Cuisine)
		} else if err != nil {
			res.warn(err)
		}
	}
	if md.Season != "" {
		if added, err := im.recipes.RegisterSeason(ctx, md.Season); added {
			res.NewSeasons = append(res.NewSeasons, md.Season)
		} else if err != nil {
			res.warn(err)
		}
	}
}

// resolveIngredient turns a row into an ingredient or returns the reason
// it was skipped. Unknown units of acceptable length are registered.
func (im *Importer) resolveIngredient(ctx context.Context, res *Result, row ingredientRow) (models.Ingredient, string) {
	p, ok := im.products.FindByName(row.name)
	if !ok {
		reason := fmt.Sprintf("ingredient %q not found", row.name)
		if similar := im.similar(row.name); len(similar) > 0 {
			reason += fmt.Sprintf(" (similar: %s)", strings.Join(similar, ", "))
		}
		return models.Ingredient{}, reason
	}
	qty, err := parseQuantity(row.qty)
	if err != nil {
		return models.Ingredient{}, fmt.Sprintf("ingredient %q: invalid quantity %q", row.name, row.qty)
	}
	unit := row.unit
	if unit != "" && !im.recipes.KnownUnit(unit) {
		if len([]rune(unit)) > store.MaxUnitLength {
			return models.Ingredient{}, fmt.Sprintf("ingredient %q: unit %q is longer than %d characters", row.name, unit, store.MaxUnitLength)
		}
		added, err := im.recipes.RegisterUnit(ctx, unit)
		if added {
			res.NewUnits = append(res.NewUnits, unit)
		}
		if err != nil {
			res.warn(err)
		}
	}
	return models.Ingredient{ProductID: p.ID, ProductName: p.Name, Quantity: qty, Unit: unit}, ""
}

// parseQuantity accepts a decimal comma as well as a point.
func parseQuantity(s string) (float64, error) {
	q, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
	if err != nil {
		return 0, err
	}
	if q <= 0 {
		return 0, fmt.Errorf("quantity %v is not positive", q)
	}
	return q, nil
}

// similar lists up to maxSuggestions product names that share a prefix
// with or contain the name.
func (im *Importer) similar(name string) []string {
	term := strings.ToLower(strings.TrimSpace(name))
	prefix := term
	if r := []rune(term); len(r) > 3 {
		prefix = string(r[:3])
	}
	var out []string
	for _, p := range im.products.List() {
		candidate := strings.ToLower(p.Name)
		if strings.Contains(candidate, term) || strings.Contains(term, candidate) || strings.HasPrefix(candidate, prefix) {
			out = append(out, p.Name)
			if len(out) == maxSuggestions {
				break
			}
		}
	}
	return out
}

// unescape turns literal \n sequences into line breaks.
func unescape(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}

func (im *Importer) logResult(kind string, res Result) {
	slog.Info("recipes imported", "template", kind, "imported", res.Imported, "skipped", len(res.Skipped), "new_units", len(res.NewUnits))
}
