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

const productsKey = "products"

// CategoryResolver is the part of the category store products need.
type CategoryResolver interface {
	Exists(id string) bool
	OtherID() string
}

// ProductPatch carries editable product fields. Nil fields are unchanged.
type ProductPatch struct {
	Name       *string `json:"name"`
	Category   *string `json:"category"`
	InShopping *bool   `json:"inShopping"`
	Pantry     *bool   `json:"pantry"`
	InStock    *bool   `json:"inStock"`
	InSeason   *bool   `json:"inSeason"`
	Completed  *bool   `json:"completed"`
	Bought     *bool   `json:"bought"`
}

// UnmarshalJSON accepts the legacy inPantry key as an alias of pantry.
func (pp *ProductPatch) UnmarshalJSON(data []byte) error {
	type plain ProductPatch
	var raw struct {
		plain
		InPantry *bool `json:"inPantry"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*pp = ProductPatch(raw.plain)
	if pp.Pantry == nil {
		pp.Pantry = raw.InPantry
	}
	return nil
}

// ProductStore is the single source of truth for products. The shopping
// list, pantry and stock views are filters over it.
type ProductStore struct {
	notifier

	mu       sync.RWMutex
	p        *persist.Persister
	cats     CategoryResolver
	products []models.Product
	now      func() time.Time

	// SampleData, when set, seeds the store on its first ever load.
	SampleData func() []models.Product
	skipSeed   bool
}

// NewProductStore returns an empty ProductStore. Call Load before use.
func NewProductStore(p *persist.Persister, cats CategoryResolver) *ProductStore {
	return &ProductStore{p: p, cats: cats, now: time.Now}
}

// SkipSampleData makes the next Load record the first run as done without
// seeding. Installs that carry older data call it before Load.
func (s *ProductStore) SkipSampleData() {
	s.mu.Lock()
	s.skipSeed = true
	s.mu.Unlock()
}

// Load reads persisted products. On the very first run it seeds sample
// data; the _initialized sentinel keeps it from re-seeding an emptied list.
func (s *ProductStore) Load(ctx context.Context) error {
	var products []models.Product
	found, err := s.p.Load(ctx, productsKey, &products)
	if err != nil {
		return fmt.Errorf("load products: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = products
	if s.p.Initialized(ctx, productsKey) {
		return nil
	}
	switch {
	case found:
		return s.p.MarkInitialized(ctx, productsKey)
	case s.skipSeed:
		slog.Info("existing data found, sample products skipped")
		return s.p.MarkInitialized(ctx, productsKey)
	case s.SampleData == nil:
		return nil
	}
	now := s.now()
	for _, sp := range s.SampleData() {
		if sp.ID == "" {
			sp.ID = models.NewID()
		}
		sp.DateAdded, sp.LastModified, sp.Version = now, now, 1
		s.products = append(s.products, sp)
	}
	slog.Info("seeded sample products", "count", len(s.products))
	if err := s.saveLocked(ctx); err != nil {
		return err
	}
	return s.p.MarkInitialized(ctx, productsKey)
}

func (s *ProductStore) saveLocked(ctx context.Context) error {
	return s.p.Save(ctx, productsKey, s.products)
}

func (s *ProductStore) indexLocked(id string) int {
	id = models.NormalizeID(id)
	for i := range s.products {
		if s.products[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *ProductStore) nameTakenLocked(name, exceptID string) bool {
	for i := range s.products {
		if s.products[i].ID != exceptID && strings.EqualFold(s.products[i].Name, name) {
			return true
		}
	}
	return false
}

func change(p models.Product) Change {
	return Change{Collection: CollectionProducts, ID: p.ID, Record: p, Version: p.Version, Modified: p.LastModified}
}

// List returns a copy of every product in insertion order.
func (s *ProductStore) List() []models.Product {
	return s.Filter(nil)
}

// Filter returns the products accepted by keep (all when keep is nil).
func (s *ProductStore) Filter(keep func(models.Product) bool) []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		if keep == nil || keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// Get returns the product with id.
func (s *ProductStore) Get(id string) (models.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.products[i], true
	}
	return models.Product{}, false
}

// FindByName returns the product whose name equals name, ignoring case.
func (s *ProductStore) FindByName(name string) (models.Product, bool) {
	name = strings.TrimSpace(name)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return models.Product{}, false
}

// Shopping returns the shopping list view.
func (s *ProductStore) Shopping() []models.Product {
	return s.Filter(func(p models.Product) bool { return p.InShopping })
}

// CompletedShopping returns checked-off shopping entries.
func (s *ProductStore) CompletedShopping() []models.Product {
	return s.Filter(func(p models.Product) bool { return p.InShopping && p.Completed })
}

// Pantry returns the pantry view.
func (s *ProductStore) Pantry() []models.Product {
	return s.Filter(func(p models.Product) bool { return p.Pantry })
}

// ByStock returns products whose inStock flag equals inStock.
func (s *ProductStore) ByStock(inStock bool) []models.Product {
	return s.Filter(func(p models.Product) bool { return p.InStock == inStock })
}

// BySeason returns products whose inSeason flag equals inSeason.
func (s *ProductStore) BySeason(inSeason bool) []models.Product {
	return s.Filter(func(p models.Product) bool { return p.InSeason == inSeason })
}

// Add creates a product with every flag clear except inSeason. An unknown
// category is replaced by the fallback category and reported with
// ErrInvalidCategory alongside the created product.
func (s *ProductStore) Add(ctx context.Context, name, categoryID string) (models.Product, error) {
	return s.Insert(ctx, models.Product{Name: name, Category: categoryID, InSeason: true})
}

// Insert creates a product from a fully populated record (imports, implicit
// creation). The name must be unique across the store.
func (s *ProductStore) Insert(ctx context.Context, p models.Product) (models.Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return models.Product{}, ErrEmptyName
	}
	if err := checkShopping(p); err != nil {
		return models.Product{}, err
	}
	var warn error
	if !s.cats.Exists(p.Category) {
		requested := p.Category
		p.Category = s.cats.OtherID()
		warn = fmt.Errorf("category %q: %w", requested, ErrInvalidCategory)
		slog.Warn("product category does not exist, using fallback", "product", p.Name, "category", requested)
	}

	s.mu.Lock()
	if s.nameTakenLocked(p.Name, "") {
		s.mu.Unlock()
		return models.Product{}, fmt.Errorf("product %q: %w", p.Name, ErrDuplicateName)
	}
	now := s.now()
	if p.ID == "" || s.indexLocked(p.ID) >= 0 {
		p.ID = models.NewID()
	}
	p.ID = models.NormalizeID(p.ID)
	if p.DateAdded.IsZero() {
		p.DateAdded = now
	}
	p.LastModified = now
	p.Version = 1
	s.products = append(s.products, p)
	err := s.saveLocked(ctx)
	s.mu.Unlock()

	s.emit(change(p))
	if err == nil {
		err = warn
	}
	return p, err
}

// Edit applies patch to the product with id, validating name uniqueness
// (excluding the product itself) and the category like Add.
func (s *ProductStore) Edit(ctx context.Context, id string, patch ProductPatch) (models.Product, error) {
	var warn error
	if patch.Category != nil && !s.cats.Exists(*patch.Category) {
		requested := *patch.Category
		other := s.cats.OtherID()
		patch.Category = &other
		warn = fmt.Errorf("category %q: %w", requested, ErrInvalidCategory)
	}

	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return models.Product{}, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	p := s.products[i]
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			s.mu.Unlock()
			return models.Product{}, ErrEmptyName
		}
		if s.nameTakenLocked(name, p.ID) {
			s.mu.Unlock()
			return models.Product{}, fmt.Errorf("product %q: %w", name, ErrDuplicateName)
		}
		p.Name = name
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	applyBool(&p, models.FlagInShopping, patch.InShopping)
	applyBool(&p, models.FlagPantry, patch.Pantry)
	applyBool(&p, models.FlagInStock, patch.InStock)
	applyBool(&p, models.FlagInSeason, patch.InSeason)
	applyBool(&p, models.FlagCompleted, patch.Completed)
	if patch.Bought != nil {
		p.Bought = *patch.Bought
	}
	touched := patch.Completed != nil || patch.InShopping != nil
	if err := checkShopping(p); touched && err != nil {
		s.mu.Unlock()
		return models.Product{}, err
	}
	p.Touch(s.now())
	s.products[i] = p
	err := s.saveLocked(ctx)
	s.mu.Unlock()

	s.emit(change(p))
	if err == nil {
		err = warn
	}
	return p, err
}

func applyBool(p *models.Product, f models.Flag, v *bool) {
	if v != nil {
		p.SetFlag(f, *v)
	}
}

// Delete removes the product. Every view drops it at once because views
// are filters over the same record.
func (s *ProductStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	removed := s.products[i]
	s.products = append(s.products[:i], s.products[i+1:]...)
	err := s.saveLocked(ctx)
	s.mu.Unlock()

	s.emit(Change{
		Collection: CollectionProducts, ID: removed.ID, Deleted: true,
		Version: removed.Version + 1, Modified: s.now(),
	})
	return err
}

// Toggle flips one membership flag.
func (s *ProductStore) Toggle(ctx context.Context, id string, flag models.Flag) (models.Product, error) {
	return s.update(ctx, id, func(p *models.Product) error {
		return setFlagChecked(p, flag, !p.Flag(flag))
	})
}

// SetFlag assigns one membership flag.
func (s *ProductStore) SetFlag(ctx context.Context, id string, flag models.Flag, v bool) (models.Product, error) {
	return s.update(ctx, id, func(p *models.Product) error {
		return setFlagChecked(p, flag, v)
	})
}

// setFlagChecked enforces the shopping state machine: only products on
// the shopping list can be checked off.
func setFlagChecked(p *models.Product, flag models.Flag, v bool) error {
	next := *p
	next.SetFlag(flag, v)
	if err := checkShopping(next); err != nil {
		return err
	}
	*p = next
	return nil
}

// checkShopping rejects a product that is checked off without being on
// the shopping list.
func checkShopping(p models.Product) error {
	if p.Completed && !p.InShopping {
		return fmt.Errorf("product %q is not on the shopping list: %w", p.Name, ErrInvalidReference)
	}
	return nil
}

func (s *ProductStore) update(ctx context.Context, id string, fn func(*models.Product) error) (models.Product, error) {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return models.Product{}, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	p := s.products[i]
	if err := fn(&p); err != nil {
		s.mu.Unlock()
		return models.Product{}, err
	}
	p.Touch(s.now())
	s.products[i] = p
	err := s.saveLocked(ctx)
	s.mu.Unlock()

	s.emit(change(p))
	return p, err
}

// SetShopping puts the product on or takes it off the shopping list.
// Taking it off clears completed.
func (s *ProductStore) SetShopping(ctx context.Context, id string, on bool) (models.Product, error) {
	return s.SetFlag(ctx, id, models.FlagInShopping, on)
}

// Complete checks off a shopping entry.
func (s *ProductStore) Complete(ctx context.Context, id string) (models.Product, error) {
	return s.SetFlag(ctx, id, models.FlagCompleted, true)
}

// AddToShoppingByName puts the named product on the shopping list,
// creating it when no product has that name.
func (s *ProductStore) AddToShoppingByName(ctx context.Context, name, categoryID string) (models.Product, bool, error) {
	return s.EnsureFlagByName(ctx, name, categoryID, models.FlagInShopping)
}

// EnsureFlagByName sets flag on the product called name, creating the
// product in categoryID first when no product has that name. It reports
// whether a product was created.
func (s *ProductStore) EnsureFlagByName(ctx context.Context, name, categoryID string, flag models.Flag) (models.Product, bool, error) {
	if existing, ok := s.FindByName(name); ok {
		p, err := s.SetFlag(ctx, existing.ID, flag, true)
		return p, false, err
	}
	p := models.Product{Name: name, Category: categoryID, InSeason: true}
	p.SetFlag(flag, true)
	created, err := s.Insert(ctx, p)
	if err != nil && !IsSoft(err) {
		return models.Product{}, false, err
	}
	return created, true, err
}

// ClearCompleted finishes a shopping trip: checked-off entries leave the
// list and are marked bought and in stock. It returns how many moved.
func (s *ProductStore) ClearCompleted(ctx context.Context) (int, error) {
	s.mu.Lock()
	now := s.now()
	var changes []Change
	for i := range s.products {
		p := &s.products[i]
		if !p.InShopping || !p.Completed {
			continue
		}
		p.SetFlag(models.FlagInShopping, false)
		p.Bought = true
		p.InStock = true
		p.Touch(now)
		changes = append(changes, change(*p))
	}
	var err error
	if len(changes) > 0 {
		err = s.saveLocked(ctx)
	}
	s.mu.Unlock()

	s.emit(changes...)
	return len(changes), err
}

// FindOrphaned returns products whose category does not resolve.
func (s *ProductStore) FindOrphaned() []models.Product {
	return s.Filter(func(p models.Product) bool { return !s.cats.Exists(p.Category) })
}

// FindDuplicates groups products that share a name, ignoring case. Local
// edits reject duplicates, but two devices can each add the same name and
// the remote store delivers both.
func (s *ProductStore) FindDuplicates() [][]models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	groups := make(map[string][]models.Product)
	var order []string
	for _, p := range s.products {
		key := strings.ToLower(p.Name)
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], p)
	}
	dups := [][]models.Product{}
	for _, key := range order {
		if len(groups[key]) > 1 {
			dups = append(dups, groups[key])
		}
	}
	return dups
}

// FixOrphan moves an orphaned product into categoryID.
func (s *ProductStore) FixOrphan(ctx context.Context, id, categoryID string) (models.Product, error) {
	if !s.cats.Exists(categoryID) {
		return models.Product{}, fmt.Errorf("category %q: %w", categoryID, ErrInvalidReference)
	}
	return s.update(ctx, id, func(p *models.Product) error {
		p.Category = categoryID
		return nil
	})
}

// DeleteOrphan removes an orphaned product. Products with a valid
// category are refused so the repair list cannot delete healthy records.
func (s *ProductStore) DeleteOrphan(ctx context.Context, id string) error {
	p, ok := s.Get(id)
	if !ok {
		return fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	if s.cats.Exists(p.Category) {
		return fmt.Errorf("product %s is not orphaned: %w", id, ErrInvalidReference)
	}
	return s.Delete(ctx, id)
}

// ValidateCategories moves every orphaned product to the fallback category.
// It runs at startup so every later view is well formed.
func (s *ProductStore) ValidateCategories(ctx context.Context) (int, error) {
	other := s.cats.OtherID()
	s.mu.Lock()
	now := s.now()
	var changes []Change
	for i := range s.products {
		p := &s.products[i]
		if s.cats.Exists(p.Category) {
			continue
		}
		slog.Warn("orphaned product reassigned", "product", p.Name, "category", p.Category, "to", other)
		p.Category = other
		p.Touch(now)
		changes = append(changes, change(*p))
	}
	var err error
	if len(changes) > 0 {
		err = s.saveLocked(ctx)
	}
	s.mu.Unlock()

	s.emit(changes...)
	return len(changes), err
}

// ReassignCategory moves every product in from to to.
func (s *ProductStore) ReassignCategory(ctx context.Context, from, to string) (int, error) {
	return s.RemapCategories(ctx, map[string]string{from: to})
}

// RemapCategories rewrites product categories through mapping.
func (s *ProductStore) RemapCategories(ctx context.Context, mapping map[string]string) (int, error) {
	s.mu.Lock()
	now := s.now()
	var changes []Change
	for i := range s.products {
		p := &s.products[i]
		to, ok := mapping[p.Category]
		if !ok {
			continue
		}
		p.Category = to
		p.Touch(now)
		changes = append(changes, change(*p))
	}
	var err error
	if len(changes) > 0 {
		err = s.saveLocked(ctx)
	}
	s.mu.Unlock()

	s.emit(changes...)
	return len(changes), err
}

// SyncExternal folds the legacy per-list shopping and pantry arrays into
// the product store. Items match products on (name ignoring case,
// category); matches get the membership flag ORed in, the rest are
// created. It returns how many products were created and merged.
func (s *ProductStore) SyncExternal(ctx context.Context, shopping, pantry []models.LegacyItem) (created, merged int, err error) {
	s.mu.Lock()
	now := s.now()
	var changes []Change
	fold := func(item models.LegacyItem, flag models.Flag) {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			return
		}
		category := item.Category
		if !s.cats.Exists(category) {
			category = s.cats.OtherID()
		}
		for i := range s.products {
			p := &s.products[i]
			if strings.EqualFold(p.Name, name) && p.Category == category {
				p.SetFlag(flag, true)
				if flag == models.FlagInShopping {
					p.Completed = p.Completed || item.Completed
				}
				p.InStock = p.InStock || item.InStock
				p.Touch(now)
				changes = append(changes, change(*p))
				merged++
				return
			}
		}
		p := models.Product{
			ID:           models.NewID(),
			Name:         name,
			Category:     category,
			InStock:      item.InStock,
			InSeason:     item.InSeason == nil || *item.InSeason,
			DateAdded:    now,
			LastModified: now,
			Version:      1,
		}
		p.SetFlag(flag, true)
		if flag == models.FlagInShopping {
			p.Completed = item.Completed
		}
		s.products = append(s.products, p)
		changes = append(changes, change(p))
		created++
	}
	for _, item := range shopping {
		fold(item, models.FlagInShopping)
	}
	for _, item := range pantry {
		fold(item, models.FlagPantry)
	}
	if len(changes) > 0 {
		err = s.saveLocked(ctx)
	}
	s.mu.Unlock()

	s.emit(changes...)
	if created+merged > 0 {
		slog.Info("legacy lists folded into products", "created", created, "merged", merged)
	}
	return created, merged, err
}

// RefreshRecipeCounts recomputes recipeCount for every product. An
// ingredient counts for a product when its productId matches, or, failing
// that, when its productName matches the product name ignoring case.
func (s *ProductStore) RefreshRecipeCounts(ctx context.Context, recipes []models.Recipe) error {
	s.mu.Lock()
	byID := make(map[string]int, len(s.products))
	byName := make(map[string]int, len(s.products))
	for i, p := range s.products {
		byID[p.ID] = i
		if _, dup := byName[strings.ToLower(p.Name)]; !dup {
			byName[strings.ToLower(p.Name)] = i
		}
	}
	counts := make([]int, len(s.products))
	for _, r := range recipes {
		seen := make(map[int]bool)
		for _, ing := range r.Ingredients {
			i, ok := byID[models.NormalizeID(ing.ProductID)]
			if !ok {
				i, ok = byName[strings.ToLower(strings.TrimSpace(ing.ProductName))]
			}
			if ok && !seen[i] {
				seen[i] = true
				counts[i]++
			}
		}
	}
	dirty := false
	for i := range s.products {
		if s.products[i].RecipeCount != counts[i] {
			s.products[i].RecipeCount = counts[i]
			dirty = true
		}
	}
	var err error
	if dirty {
		err = s.saveLocked(ctx)
	}
	s.mu.Unlock()
	return err
}

// ApplyRemote merges documents from the remote store under last-writer-wins.
// It returns how many documents changed local state.
func (s *ProductStore) ApplyRemote(ctx context.Context, recs []RemoteRecord) (int, error) {
	s.mu.Lock()
	var changes []Change
	for _, rec := range recs {
		id := models.NormalizeID(rec.ID)
		i := s.indexLocked(id)
		if rec.Deleted {
			if i >= 0 && newer(rec.Version, rec.Modified, s.products[i].Version, s.products[i].LastModified) {
				s.products = append(s.products[:i], s.products[i+1:]...)
				changes = append(changes, Change{Collection: CollectionProducts, ID: id, Deleted: true, Version: rec.Version, Remote: true})
			}
			continue
		}
		var p models.Product
		if err := json.Unmarshal(rec.Payload, &p); err != nil {
			slog.Warn("remote product undecodable", "id", id, "error", err)
			continue
		}
		p.ID = id
		p.Version = rec.Version
		if s.nameTakenLocked(p.Name, id) {
			slog.Warn("remote product duplicates a local name", "id", id, "name", p.Name)
		}
		if i < 0 {
			s.products = append(s.products, p)
		} else if newer(rec.Version, p.LastModified, s.products[i].Version, s.products[i].LastModified) {
			s.products[i] = p
		} else {
			continue
		}
		c := change(p)
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
