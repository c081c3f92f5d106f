// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"pantrykeeper/internal/models"
	"pantrykeeper/internal/persist"
)

const (
	recipesKey    = "recipes"
	vocabularyKey = "recipe_vocabulary"

	// MaxUnitLength bounds units registered on the fly by imports.
	MaxUnitLength = 10
)

// Vocabulary is the set of units, cuisines and seasons the recipe forms
// offer. Imports extend it.
type Vocabulary struct {
	Units    []string `json:"units"`
	Cuisines []string `json:"cuisines"`
	Seasons  []string `json:"seasons"`
}

// DefaultVocabulary returns the built-in vocabulary.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Units:    []string{"g", "kg", "ml", "cl", "l", "cup", "tbsp", "tsp", "pcs", "pinch", "clove", "can", "bunch", "slice"},
		Cuisines: []string{"International", "Italian", "American", "Asian", "Mexican", "French", "Indian", "Dutch", "Mediterranean"},
		Seasons:  []string{"all-year", "spring", "summer", "autumn", "winter"},
	}
}

func (v Vocabulary) clone() Vocabulary {
	return Vocabulary{
		Units:    append([]string(nil), v.Units...),
		Cuisines: append([]string(nil), v.Cuisines...),
		Seasons:  append([]string(nil), v.Seasons...),
	}
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// RecipePatch carries editable recipe fields. Nil fields are unchanged;
// Ingredients and Metadata replace the stored value wholesale.
type RecipePatch struct {
	Name            *string                `json:"name"`
	Description     *string                `json:"description"`
	Preparation     *string                `json:"preparation"`
	Ingredients     *[]models.Ingredient   `json:"ingredients"`
	IngredientsText *string                `json:"ingredientsText"`
	Persons         *int                   `json:"persons"`
	Image           *string                `json:"image"`
	Metadata        *models.RecipeMetadata `json:"metadata"`
}

// RecipeStore owns recipes and the recipe vocabulary.
type RecipeStore struct {
	notifier

	mu      sync.RWMutex
	p       *persist.Persister
	recipes []models.Recipe
	vocab   Vocabulary
	now     func() time.Time

	// SampleData, when set, seeds the store on its first ever load.
	SampleData func() []models.Recipe
	skipSeed   bool
}

// NewRecipeStore returns an empty RecipeStore. Call Load before use.
func NewRecipeStore(p *persist.Persister) *RecipeStore {
	return &RecipeStore{p: p, vocab: DefaultVocabulary(), now: time.Now}
}

// SkipSampleData makes the next Load record the first run as done without
// seeding.
func (s *RecipeStore) SkipSampleData() {
	s.mu.Lock()
	s.skipSeed = true
	s.mu.Unlock()
}

// Load reads recipes and vocabulary, seeds samples on the first run and
// upgrades legacy records that lack metadata.
func (s *RecipeStore) Load(ctx context.Context) error {
	var recipes []models.Recipe
	found, err := s.p.Load(ctx, recipesKey, &recipes)
	if err != nil {
		return fmt.Errorf("load recipes: %w", err)
	}
	var vocab Vocabulary
	hasVocab, err := s.p.Load(ctx, vocabularyKey, &vocab)
	if err != nil {
		return fmt.Errorf("load recipe vocabulary: %w", err)
	}

	s.mu.Lock()
	s.recipes = recipes
	if hasVocab {
		s.mergeVocabLocked(vocab)
	}
	seeded, mark := false, false
	if !s.p.Initialized(ctx, recipesKey) {
		switch {
		case found:
			mark = true
		case s.skipSeed:
			mark = true
			slog.Info("existing data found, sample recipes skipped")
		case s.SampleData != nil:
			now := s.now()
			for _, r := range s.SampleData() {
				if r.ID == "" {
					r.ID = models.NewID()
				}
				r.DateCreated, r.LastModified, r.Version = now, now, 1
				s.recipes = append(s.recipes, r)
			}
			seeded = len(s.recipes) > 0
			mark = seeded
			slog.Info("seeded sample recipes", "count", len(s.recipes))
		}
	}
	var writeErr error
	if seeded {
		writeErr = s.saveLocked(ctx)
	}
	if mark && writeErr == nil {
		writeErr = s.p.MarkInitialized(ctx, recipesKey)
	}
	s.mu.Unlock()
	if writeErr != nil && !IsSoft(writeErr) {
		return writeErr
	}

	if _, err := s.UpgradeMetadata(ctx); err != nil {
		return err
	}
	return writeErr
}

func (s *RecipeStore) mergeVocabLocked(v Vocabulary) {
	for _, u := range v.Units {
		if !containsFold(s.vocab.Units, u) {
			s.vocab.Units = append(s.vocab.Units, u)
		}
	}
	for _, c := range v.Cuisines {
		if !containsFold(s.vocab.Cuisines, c) {
			s.vocab.Cuisines = append(s.vocab.Cuisines, c)
		}
	}
	for _, se := range v.Seasons {
		if !containsFold(s.vocab.Seasons, se) {
			s.vocab.Seasons = append(s.vocab.Seasons, se)
		}
	}
}

func (s *RecipeStore) saveLocked(ctx context.Context) error {
	return s.p.Save(ctx, recipesKey, s.recipes)
}

func (s *RecipeStore) indexLocked(id string) int {
	id = models.NormalizeID(id)
	for i := range s.recipes {
		if s.recipes[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *RecipeStore) nameTakenLocked(name, exceptID string) bool {
	for i := range s.recipes {
		if s.recipes[i].ID != exceptID && strings.EqualFold(s.recipes[i].Name, name) {
			return true
		}
	}
	return false
}

func recipeChange(r models.Recipe) Change {
	return Change{Collection: CollectionRecipes, ID: r.ID, Record: r.Clone(), Version: r.Version, Modified: r.LastModified}
}

// List returns copies of all recipes.
func (s *RecipeStore) List() []models.Recipe {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Recipe, len(s.recipes))
	for i, r := range s.recipes {
		out[i] = r.Clone()
	}
	return out
}

// Get returns the recipe with id.
func (s *RecipeStore) Get(id string) (models.Recipe, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.recipes[i].Clone(), true
	}
	return models.Recipe{}, false
}

// FindByName returns the recipe called name, ignoring case.
func (s *RecipeStore) FindByName(name string) (models.Recipe, bool) {
	name = strings.TrimSpace(name)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.recipes {
		if strings.EqualFold(r.Name, name) {
			return r.Clone(), true
		}
	}
	return models.Recipe{}, false
}

// Add creates an empty recipe called name.
func (s *RecipeStore) Add(ctx context.Context, name string) (models.Recipe, error) {
	return s.Insert(ctx, models.Recipe{Name: name})
}

// Insert creates a recipe from a populated record, as imports do.
func (s *RecipeStore) Insert(ctx context.Context, r models.Recipe) (models.Recipe, error) {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return models.Recipe{}, ErrEmptyName
	}
	ings, err := validateIngredients(r.Ingredients)
	if err != nil {
		return models.Recipe{}, err
	}
	r.Ingredients = ings
	if r.Persons <= 0 {
		r.Persons = models.DefaultPersons
	}

	s.mu.Lock()
	if s.nameTakenLocked(r.Name, "") {
		s.mu.Unlock()
		return models.Recipe{}, fmt.Errorf("recipe %q: %w", r.Name, ErrDuplicateName)
	}
	now := s.now()
	if r.ID == "" || s.indexLocked(r.ID) >= 0 {
		r.ID = models.NewID()
	}
	r.ID = models.NormalizeID(r.ID)
	if r.DateCreated.IsZero() {
		r.DateCreated = now
	}
	r.LastModified = now
	r.Version = 1
	s.recipes = append(s.recipes, r.Clone())
	err = s.saveLocked(ctx)
	s.mu.Unlock()

	s.emit(recipeChange(r))
	return r, err
}

// validateIngredients normalizes product ids and rejects non-positive
// quantities and repeated products.
func validateIngredients(in []models.Ingredient) ([]models.Ingredient, error) {
	out := make([]models.Ingredient, 0, len(in))
	seen := make(map[string]bool, len(in))
	for i, ing := range in {
		ing.ProductID = models.NormalizeID(ing.ProductID)
		ing.ProductName = strings.TrimSpace(ing.ProductName)
		ing.Unit = strings.TrimSpace(ing.Unit)
		if ing.ProductID == "" && ing.ProductName == "" {
			return nil, fmt.Errorf("ingredient %d has no product: %w", i+1, ErrInvalidIngredient)
		}
		if ing.Quantity <= 0 {
			return nil, fmt.Errorf("ingredient %d quantity %v: %w", i+1, ing.Quantity, ErrInvalidIngredient)
		}
		if ing.ProductID != "" {
			if seen[ing.ProductID] {
				return nil, fmt.Errorf("product %s listed twice: %w", ing.ProductID, ErrInvalidIngredient)
			}
			seen[ing.ProductID] = true
		}
		out = append(out, ing)
	}
	return out, nil
}

// Edit applies patch to the recipe with id.
func (s *RecipeStore) Edit(ctx context.Context, id string, patch RecipePatch) (models.Recipe, error) {
	var ings []models.Ingredient
	if patch.Ingredients != nil {
		var err error
		if ings, err = validateIngredients(*patch.Ingredients); err != nil {
			return models.Recipe{}, err
		}
	}

	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return models.Recipe{}, fmt.Errorf("recipe %s: %w", id, ErrNotFound)
	}
	r := s.recipes[i].Clone()
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			s.mu.Unlock()
			return models.Recipe{}, ErrEmptyName
		}
		if s.nameTakenLocked(name, r.ID) {
			s.mu.Unlock()
			return models.Recipe{}, fmt.Errorf("recipe %q: %w", name, ErrDuplicateName)
		}
		r.Name = name
	}
	if patch.Description != nil {
		r.Description = *patch.Description
	}
	if patch.Preparation != nil {
		r.Preparation = *patch.Preparation
	}
	if patch.Ingredients != nil {
		r.Ingredients = ings
	}
	if patch.IngredientsText != nil {
		r.IngredientsText = *patch.IngredientsText
	}
	if patch.Persons != nil && *patch.Persons > 0 {
		r.Persons = *patch.Persons
	}
	if patch.Image != nil {
		r.Image = strings.TrimSpace(*patch.Image)
	}
	if patch.Metadata != nil {
		md := *patch.Metadata
		r.Metadata = &md
	}
	r.Touch(s.now())
	s.recipes[i] = r
	err := s.saveLocked(ctx)
	s.mu.Unlock()

	s.emit(recipeChange(r))
	return r.Clone(), err
}

// Delete removes the recipe. Meal plan slots referencing it resolve to a
// placeholder afterwards.
func (s *RecipeStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("recipe %s: %w", id, ErrNotFound)
	}
	removed := s.recipes[i]
	s.recipes = append(s.recipes[:i], s.recipes[i+1:]...)
	err := s.saveLocked(ctx)
	s.mu.Unlock()

	s.emit(Change{
		Collection: CollectionRecipes, ID: removed.ID, Deleted: true,
		Version: removed.Version + 1, Modified: s.now(),
	})
	return err
}

// InferMetadata guesses cuisine, main ingredient and season from keywords
// in the recipe name and description.
func InferMetadata(r models.Recipe) models.RecipeMetadata {
	text := strings.ToLower(r.Name + " " + r.Description)
	has := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(text, w) {
				return true
			}
		}
		return false
	}
	switch {
	case has("pasta"):
		return models.RecipeMetadata{Cuisine: "Italian", MainIngredient: "pasta", Season: "all-year"}
	case has("chicken"):
		return models.RecipeMetadata{Cuisine: "American", MainIngredient: "chicken", Season: "all-year"}
	case has("rice"):
		return models.RecipeMetadata{Cuisine: "Asian", MainIngredient: "rice", Season: "all-year"}
	case has("soup", "vegetable"):
		season := "all-year"
		if has("winter") {
			season = "winter"
		}
		return models.RecipeMetadata{Cuisine: "International", MainIngredient: "vegetables", Season: season}
	}
	return models.RecipeMetadata{Cuisine: "International", MainIngredient: "mixed", Season: "all-year"}
}

// UpgradeMetadata fills metadata on every recipe that lacks it and
// persists the result. It returns how many recipes were upgraded.
func (s *RecipeStore) UpgradeMetadata(ctx context.Context) (int, error) {
	s.mu.Lock()
	n := 0
	for i := range s.recipes {
		if s.recipes[i].Metadata != nil {
			continue
		}
		md := InferMetadata(s.recipes[i])
		s.recipes[i].Metadata = &md
		n++
	}
	var err error
	if n > 0 {
		err = s.saveLocked(ctx)
		slog.Info("upgraded recipe metadata", "count", n)
	}
	s.mu.Unlock()
	return n, err
}

// ProductLookup resolves ingredient references.
type ProductLookup interface {
	Get(id string) (models.Product, bool)
	FindByName(name string) (models.Product, bool)
}

// Availability counts the ingredients of r whose product is in stock.
// Ingredients referencing a missing product count as unavailable.
func Availability(r models.Recipe, products ProductLookup) models.Availability {
	a := models.Availability{TotalCount: len(r.Ingredients)}
	for _, ing := range r.Ingredients {
		p, ok := products.Get(ing.ProductID)
		if !ok && ing.ProductName != "" {
			p, ok = products.FindByName(ing.ProductName)
		}
		if ok && p.InStock {
			a.AvailableCount++
		}
	}
	switch {
	case a.TotalCount > 0 && a.AvailableCount == a.TotalCount:
		a.Status = models.Available
	case a.AvailableCount == 0:
		a.Status = models.Unavailable
	default:
		a.Status = models.Partial
	}
	return a
}

// Vocabulary returns a copy of the known units, cuisines and seasons.
func (s *RecipeStore) Vocabulary() Vocabulary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vocab.clone()
}

// KnownUnit reports whether unit is in the vocabulary, ignoring case.
func (s *RecipeStore) KnownUnit(unit string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return containsFold(s.vocab.Units, strings.TrimSpace(unit))
}

// RegisterUnit adds unit to the vocabulary. It reports whether the unit
// was new; units longer than MaxUnitLength are refused.
func (s *RecipeStore) RegisterUnit(ctx context.Context, unit string) (bool, error) {
	unit = strings.TrimSpace(unit)
	if unit == "" || len([]rune(unit)) > MaxUnitLength {
		return false, fmt.Errorf("unit %q: %w", unit, ErrInvalidIngredient)
	}
	return s.register(ctx, func(v *Vocabulary) *[]string { return &v.Units }, unit)
}

// RegisterCuisine adds a cuisine to the vocabulary.
func (s *RecipeStore) RegisterCuisine(ctx context.Context, cuisine string) (bool, error) {
	return s.register(ctx, func(v *Vocabulary) *[]string { return &v.Cuisines }, strings.TrimSpace(cuisine))
}

// RegisterSeason adds a season to the vocabulary.
func (s *RecipeStore) RegisterSeason(ctx context.Context, season string) (bool, error) {
	return s.register(ctx, func(v *Vocabulary) *[]string { return &v.Seasons }, strings.TrimSpace(season))
}

func (s *RecipeStore) register(ctx context.Context, field func(*Vocabulary) *[]string, value string) (bool, error) {
	if value == "" {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list := field(&s.vocab)
	if containsFold(*list, value) {
		return false, nil
	}
	*list = append(*list, value)
	return true, s.p.Save(ctx, vocabularyKey, s.vocab)
}

// ApplyRemote merges remote recipe documents under last-writer-wins.
func (s *RecipeStore) ApplyRemote(ctx context.Context, recs []RemoteRecord) (int, error) {
	s.mu.Lock()
	var changes []Change
	for _, rec := range recs {
		id := models.NormalizeID(rec.ID)
		i := s.indexLocked(id)
		if rec.Deleted {
			if i >= 0 && newer(rec.Version, rec.Modified, s.recipes[i].Version, s.recipes[i].LastModified) {
				s.recipes = append(s.recipes[:i], s.recipes[i+1:]...)
				changes = append(changes, Change{Collection: CollectionRecipes, ID: id, Deleted: true, Version: rec.Version, Remote: true})
			}
			continue
		}
		var r models.Recipe
		if err := json.Unmarshal(rec.Payload, &r); err != nil {
			slog.Warn("remote recipe undecodable", "id", id, "error", err)
			continue
		}
		r.ID = id
		r.Version = rec.Version
		if i < 0 {
			s.recipes = append(s.recipes, r)
		} else if newer(rec.Version, r.LastModified, s.recipes[i].Version, s.recipes[i].LastModified) {
			s.recipes[i] = r
		} else {
			continue
		}
		c := recipeChange(r)
		c.Remote = true
		changes = append(changes, c)
	}
	var err error
	if len(changes) > 0 {
		err = s.saveLocked(ctx)
	}
	s.mu.Unlock()

	s.emit(changes...)
	return len(changes), err
}
