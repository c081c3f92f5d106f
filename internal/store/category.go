// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"pantrykeeper/internal/models"
	"pantrykeeper/internal/persist"
)

const categoriesKey = "categories"

// CategoryReferrer is anything holding category ids that must follow a
// category delete or id migration.
type CategoryReferrer interface {
	ReassignCategory(ctx context.Context, from, to string) (int, error)
	RemapCategories(ctx context.Context, mapping map[string]string) (int, error)
}

// CategoryPatch carries the editable fields of a category. Nil fields are
// left unchanged.
type CategoryPatch struct {
	Name  *string `json:"name"`
	Emoji *string `json:"emoji"`
}

// CategoryStore manages the ordered category list.
type CategoryStore struct {
	notifier

	mu        sync.RWMutex
	p         *persist.Persister
	cats      []models.Category
	referrers []CategoryReferrer
}

// NewCategoryStore returns an empty CategoryStore. Call Load before use.
func NewCategoryStore(p *persist.Persister) *CategoryStore {
	return &CategoryStore{p: p}
}

// AddReferrer registers a holder of category ids. Referrers are told about
// deletes and id migrations.
func (s *CategoryStore) AddReferrer(r CategoryReferrer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.referrers = append(s.referrers, r)
}

// Load reads the persisted categories, seeding the defaults when nothing
// has been stored yet.
func (s *CategoryStore) Load(ctx context.Context) error {
	var cats []models.Category
	found, err := s.p.Load(ctx, categoriesKey, &cats)
	if err != nil {
		return fmt.Errorf("load categories: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !found || len(cats) == 0 {
		s.cats = models.DefaultCategories()
		slog.Info("seeded default categories", "count", len(s.cats))
		return s.saveLocked(ctx)
	}
	s.cats = cats
	if s.ensureOtherLocked() {
		return s.saveLocked(ctx)
	}
	return nil
}

// ensureOtherLocked re-creates the fallback category if it is missing.
func (s *CategoryStore) ensureOtherLocked() bool {
	for _, c := range s.cats {
		if c.ID == models.OtherCategoryID {
			return false
		}
	}
	// A legacy list may still carry "other" under its name-based id; the
	// migration maps it, so only add when no such record exists at all.
	for _, c := range s.cats {
		if c.Name == "other" {
			return false
		}
	}
	other := models.DefaultCategories()[6]
	other.Order = s.nextOrderLocked()
	s.cats = append(s.cats, other)
	return true
}

func (s *CategoryStore) saveLocked(ctx context.Context) error {
	return s.p.Save(ctx, categoriesKey, s.cats)
}

// List returns all categories sorted by order. Ties keep insertion order.
func (s *CategoryStore) List() []models.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]models.Category(nil), s.cats...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// Get returns the category with id.
func (s *CategoryStore) Get(id string) (models.Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.cats[i], true
	}
	return models.Category{}, false
}

// Exists reports whether id resolves to a category.
func (s *CategoryStore) Exists(id string) bool {
	_, ok := s.Get(id)
	return ok
}

// FindByName matches the canonical name or the display name, ignoring case.
func (s *CategoryStore) FindByName(name string) (models.Category, bool) {
	want := models.CanonicalName(name)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.cats {
		if c.Name == want || strings.EqualFold(c.DisplayName, want) {
			return c, true
		}
	}
	return models.Category{}, false
}

// OtherID returns the id of the fallback category.
func (s *CategoryStore) OtherID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.cats {
		if c.ID == models.OtherCategoryID {
			return c.ID
		}
	}
	for _, c := range s.cats {
		if c.Name == "other" {
			return c.ID
		}
	}
	return models.OtherCategoryID
}

func (s *CategoryStore) indexLocked(id string) int {
	for i, c := range s.cats {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (s *CategoryStore) nameTakenLocked(name, exceptID string) bool {
	for _, c := range s.cats {
		if c.ID != exceptID && strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}

func (s *CategoryStore) nextOrderLocked() int {
	next := 0
	for _, c := range s.cats {
		if c.Order+1 > next {
			next = c.Order + 1
		}
	}
	return next
}

func (s *CategoryStore) nextIDLocked() string {
	maxSeq := 0
	for _, c := range s.cats {
		if n, ok := models.CategorySeq(c.ID); ok && n > maxSeq {
			maxSeq = n
		}
	}
	return models.CategoryID(maxSeq + 1)
}

// Add creates a user category with the next free cat_NNN id.
func (s *CategoryStore) Add(ctx context.Context, name, emoji string) (models.Category, error) {
	display := strings.TrimSpace(name)
	if display == "" {
		return models.Category{}, ErrEmptyName
	}
	canonical := models.CanonicalName(display)

	s.mu.Lock()
	if s.nameTakenLocked(canonical, "") {
		s.mu.Unlock()
		return models.Category{}, fmt.Errorf("category %q: %w", display, ErrDuplicateName)
	}
	c := models.Category{
		ID:          s.nextIDLocked(),
		Name:        canonical,
		DisplayName: display,
		Emoji:       strings.TrimSpace(emoji),
		Order:       s.nextOrderLocked(),
	}
	s.cats = append(s.cats, c)
	err := s.saveLocked(ctx)
	s.mu.Unlock()

	s.emit(Change{Collection: CollectionCategories, ID: c.ID, Record: c})
	return c, err
}

// Edit renames or re-emojis a user category. Defaults are protected.
func (s *CategoryStore) Edit(ctx context.Context, id string, patch CategoryPatch) (models.Category, error) {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return models.Category{}, fmt.Errorf("category %s: %w", id, ErrNotFound)
	}
	if s.cats[i].IsDefault {
		s.mu.Unlock()
		return models.Category{}, fmt.Errorf("category %s: %w", id, ErrProtectedDefault)
	}
	c := s.cats[i]
	if patch.Name != nil {
		display := strings.TrimSpace(*patch.Name)
		if display == "" {
			s.mu.Unlock()
			return models.Category{}, ErrEmptyName
		}
		canonical := models.CanonicalName(display)
		if s.nameTakenLocked(canonical, id) {
			s.mu.Unlock()
			return models.Category{}, fmt.Errorf("category %q: %w", display, ErrDuplicateName)
		}
		c.Name = canonical
		c.DisplayName = display
	}
	if patch.Emoji != nil {
		c.Emoji = strings.TrimSpace(*patch.Emoji)
	}
	s.cats[i] = c
	err := s.saveLocked(ctx)
	s.mu.Unlock()

	s.emit(Change{Collection: CollectionCategories, ID: c.ID, Record: c})
	return c, err
}

// Delete removes a user category after moving its products to the
// fallback category. It returns how many references were reassigned.
func (s *CategoryStore) Delete(ctx context.Context, id string) (int, error) {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return 0, fmt.Errorf("category %s: %w", id, ErrNotFound)
	}
	if s.cats[i].IsDefault {
		s.mu.Unlock()
		return 0, fmt.Errorf("category %s: %w", id, ErrProtectedDefault)
	}
	refs := append([]CategoryReferrer(nil), s.referrers...)
	s.mu.Unlock()

	other := s.OtherID()
	moved := 0
	var softErr error
	for _, r := range refs {
		n, err := r.ReassignCategory(ctx, id, other)
		moved += n
		if err != nil {
			if !IsSoft(err) {
				return moved, fmt.Errorf("reassign products of %s: %w", id, err)
			}
			softErr = err
		}
	}

	s.mu.Lock()
	if i = s.indexLocked(id); i >= 0 {
		s.cats = append(s.cats[:i], s.cats[i+1:]...)
	}
	err := s.saveLocked(ctx)
	s.mu.Unlock()

	slog.Info("category deleted", "id", id, "reassigned", moved)
	s.emit(Change{Collection: CollectionCategories, ID: id, Deleted: true})
	if err == nil {
		err = softErr
	}
	return moved, err
}

// Reorder assigns order by position in ids. Categories missing from ids
// keep their relative order after the listed ones.
func (s *CategoryStore) Reorder(ctx context.Context, ids []string) error {
	s.mu.Lock()
	for _, id := range ids {
		if s.indexLocked(id) < 0 {
			s.mu.Unlock()
			return fmt.Errorf("category %s: %w", id, ErrNotFound)
		}
	}
	position := make(map[string]int, len(ids))
	for i, id := range ids {
		if _, dup := position[id]; !dup {
			position[id] = i
		}
	}

	sorted := append([]models.Category(nil), s.cats...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })
	var listed, rest []models.Category
	for _, c := range sorted {
		if _, ok := position[c.ID]; ok {
			listed = append(listed, c)
		} else {
			rest = append(rest, c)
		}
	}
	sort.SliceStable(listed, func(i, j int) bool { return position[listed[i].ID] < position[listed[j].ID] })
	s.renumberLocked(append(listed, rest...))
	err := s.saveLocked(ctx)
	s.mu.Unlock()

	s.emit(Change{Collection: CollectionCategories, ID: ""})
	return err
}

// Move relocates the category at display position from to position to.
func (s *CategoryStore) Move(ctx context.Context, from, to int) error {
	s.mu.Lock()
	sorted := append([]models.Category(nil), s.cats...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })
	if from < 0 || from >= len(sorted) || to < 0 || to >= len(sorted) {
		s.mu.Unlock()
		return fmt.Errorf("move %d -> %d of %d categories: %w", from, to, len(sorted), ErrNotFound)
	}
	moved := sorted[from]
	sorted = append(sorted[:from], sorted[from+1:]...)
	sorted = append(sorted[:to], append([]models.Category{moved}, sorted[to:]...)...)
	s.renumberLocked(sorted)
	err := s.saveLocked(ctx)
	s.mu.Unlock()

	s.emit(Change{Collection: CollectionCategories, ID: moved.ID})
	return err
}

func (s *CategoryStore) renumberLocked(ordered []models.Category) {
	for i := range ordered {
		ordered[i].Order = i
	}
	s.cats = ordered
}

// HasLegacyIDs reports whether any category still carries a name-based id
// from before the cat_NNN scheme.
func (s *CategoryStore) HasLegacyIDs() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.cats {
		if isLegacyCategory(c) {
			return true
		}
	}
	return false
}

func isLegacyCategory(c models.Category) bool { return c.ID != "" && c.ID == c.Name }

// MigrateLegacyIDs replaces name-based ids (id == name) with cat_NNN ids
// and rewrites every referrer through the resulting mapping. A legacy
// category named like a default takes the default's id when it is free.
// Running it again is a no-op.
func (s *CategoryStore) MigrateLegacyIDs(ctx context.Context) (map[string]string, error) {
	s.mu.Lock()
	mapping := make(map[string]string)
	defaults := make(map[string]string)
	for _, d := range models.DefaultCategories() {
		defaults[d.Name] = d.ID
	}
	taken := func(id string) bool { return s.indexLocked(id) >= 0 }
	legacy := isLegacyCategory
	// Defaults first so they can claim their historical ids.
	for i, c := range s.cats {
		if d, ok := defaults[c.Name]; ok && legacy(c) && !taken(d) {
			mapping[c.ID] = d
			s.cats[i].ID = d
			s.cats[i].IsDefault = true
		}
	}
	for i, c := range s.cats {
		if !legacy(c) {
			continue
		}
		newID := s.nextIDLocked()
		mapping[c.ID] = newID
		s.cats[i].ID = newID
	}
	for i, c := range s.cats {
		if _, migrated := mapping[c.Name]; migrated && s.cats[i].DisplayName == "" {
			s.cats[i].DisplayName = titleCase(c.Name)
		}
	}
	if len(mapping) == 0 {
		s.mu.Unlock()
		return mapping, nil
	}
	s.ensureOtherLocked()
	refs := append([]CategoryReferrer(nil), s.referrers...)
	err := s.saveLocked(ctx)
	s.mu.Unlock()

	for _, r := range refs {
		if _, rerr := r.RemapCategories(ctx, mapping); rerr != nil && !IsSoft(rerr) {
			return mapping, fmt.Errorf("remap category references: %w", rerr)
		}
	}
	slog.Info("migrated legacy category ids", "count", len(mapping))
	return mapping, err
}

func titleCase(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
