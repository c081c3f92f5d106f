package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"pantrykeeper/internal/kv"
	"pantrykeeper/internal/models"
	"pantrykeeper/internal/persist"
)

func TestCategoryLoadSeedsDefaults(t *testing.T) {
	f := newFixture(t)
	cats := f.cats.List()
	if len(cats) != 7 {
		t.Fatalf("expected 7 default categories, got %d", len(cats))
	}
	want := []string{"produce", "dairy", "meat", "pantry", "frozen", "bakery", "other"}
	for i, c := range cats {
		if c.Name != want[i] {
			t.Errorf("category %d = %q, want %q", i, c.Name, want[i])
		}
		if c.ID != models.CategoryID(i+1) {
			t.Errorf("category %q id = %q, want %q", c.Name, c.ID, models.CategoryID(i+1))
		}
		if !c.IsDefault {
			t.Errorf("category %q should be default", c.Name)
		}
	}
	if f.cats.OtherID() != "cat_007" {
		t.Errorf("OtherID = %q, want cat_007", f.cats.OtherID())
	}
}

func TestCategoryAdd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.cats.Add(ctx, "Snacks", "🍿")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if c.ID != "cat_008" {
		t.Errorf("id = %q, want cat_008", c.ID)
	}
	if c.Name != "snacks" || c.DisplayName != "Snacks" {
		t.Errorf("name = %q/%q, want snacks/Snacks", c.Name, c.DisplayName)
	}
	if c.Order != 7 {
		t.Errorf("order = %d, want 7", c.Order)
	}

	tests := []struct {
		name string
		in   string
		want error
	}{
		{"empty", "   ", ErrEmptyName},
		{"duplicate", "SNACKS", ErrDuplicateName},
		{"duplicate default", "Dairy", ErrDuplicateName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.cats.Add(ctx, tt.in, ""); !errors.Is(err, tt.want) {
				t.Errorf("Add(%q) error = %v, want %v", tt.in, err, tt.want)
			}
		})
	}
	if n := len(f.cats.List()); n != 8 {
		t.Errorf("rejected adds must not mutate: %d categories", n)
	}
}

func TestCategoryDefaultsAreProtected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.cats.Edit(ctx, "cat_001", CategoryPatch{Name: ptr("Fruit")}); !errors.Is(err, ErrProtectedDefault) {
		t.Errorf("Edit default: expected ErrProtectedDefault, got %v", err)
	}
	if _, err := f.cats.Delete(ctx, "cat_007"); !errors.Is(err, ErrProtectedDefault) {
		t.Errorf("Delete default: expected ErrProtectedDefault, got %v", err)
	}
	if _, err := f.cats.Delete(ctx, "cat_999"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete missing: expected ErrNotFound, got %v", err)
	}
}

func TestCategoryEdit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, _ := f.cats.Add(ctx, "Snacks", "🍿")
	f.cats.Add(ctx, "Drinks", "🥤")

	got, err := f.cats.Edit(ctx, c.ID, CategoryPatch{Name: ptr("Treats"), Emoji: ptr("🍬")})
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if got.Name != "treats" || got.Emoji != "🍬" {
		t.Errorf("edited = %+v", got)
	}
	if _, err := f.cats.Edit(ctx, c.ID, CategoryPatch{Name: ptr("drinks")}); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("expected ErrDuplicateName, got %v", err)
	}
	if _, err := f.cats.Edit(ctx, c.ID, CategoryPatch{Name: ptr("Treats")}); err != nil {
		t.Errorf("renaming to own name should succeed: %v", err)
	}
}

// Add "Snacks", put "Chips" in it, delete "Snacks": Chips lands in other.
func TestCategoryDeleteReassignsProducts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	snacks, err := f.cats.Add(ctx, "Snacks", "🍿")
	if err != nil {
		t.Fatalf("Add category: %v", err)
	}
	chips := mustAddProduct(t, f.prods, "Chips", snacks.ID)
	nuts := mustAddProduct(t, f.prods, "Nuts", snacks.ID)
	milk := mustAddProduct(t, f.prods, "Milk", "cat_002")

	var deleted []Change
	f.cats.Subscribe(func(c Change) {
		if c.Deleted {
			deleted = append(deleted, c)
		}
	})

	moved, err := f.cats.Delete(ctx, snacks.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if moved != 2 {
		t.Errorf("moved = %d, want 2", moved)
	}
	for _, id := range []string{chips, nuts} {
		p, _ := f.prods.Get(id)
		if p.Category != "cat_007" {
			t.Errorf("%s category = %q, want cat_007", p.Name, p.Category)
		}
	}
	if p, _ := f.prods.Get(milk); p.Category != "cat_002" {
		t.Errorf("unrelated product moved to %q", p.Category)
	}
	if _, ok := f.cats.Get(snacks.ID); ok {
		t.Error("Snacks still listed after delete")
	}
	if len(deleted) != 1 || deleted[0].ID != snacks.ID {
		t.Errorf("expected one delete event for %s, got %+v", snacks.ID, deleted)
	}
}

func TestCategoryReorderAndMove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.cats.Reorder(ctx, []string{"cat_007", "cat_003"}); err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	got := ids(f.cats.List())
	want := []string{"cat_007", "cat_003", "cat_001", "cat_002", "cat_004", "cat_005", "cat_006"}
	if !equal(got, want) {
		t.Errorf("after Reorder = %v, want %v", got, want)
	}
	for i, c := range f.cats.List() {
		if c.Order != i {
			t.Errorf("%s order = %d, want %d", c.ID, c.Order, i)
		}
	}

	if err := f.cats.Move(ctx, 0, 6); err != nil {
		t.Fatalf("Move: %v", err)
	}
	got = ids(f.cats.List())
	want = []string{"cat_003", "cat_001", "cat_002", "cat_004", "cat_005", "cat_006", "cat_007"}
	if !equal(got, want) {
		t.Errorf("after Move = %v, want %v", got, want)
	}

	if err := f.cats.Reorder(ctx, []string{"nope"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Reorder unknown id: expected ErrNotFound, got %v", err)
	}
	if err := f.cats.Move(ctx, 0, 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("Move out of range: expected ErrNotFound, got %v", err)
	}
}

func TestMigrateLegacyIDs(t *testing.T) {
	mem := kv.NewMemory()
	ctx := context.Background()
	p := persist.New(mem)

	legacy := []models.Category{
		{ID: "produce", Name: "produce", Emoji: "🥬", Order: 0},
		{ID: "snacks", Name: "snacks", Emoji: "🍿", Order: 1},
		{ID: "other", Name: "other", Emoji: "📦", Order: 2},
	}
	p.Save(ctx, "categories", legacy)
	p.Save(ctx, "products", []models.Product{
		{ID: "1", Name: "apples", Category: "produce", InSeason: true},
		{ID: "2", Name: "chips", Category: "snacks", InSeason: true},
	})
	p.Save(ctx, "shopping_items", []models.LegacyItem{{ID: "9", Name: "crisps", Category: "snacks"}})

	f := loadFixture(t, mem)
	lists, err := LoadLegacyLists(ctx, p)
	if err != nil {
		t.Fatalf("LoadLegacyLists: %v", err)
	}
	f.cats.AddReferrer(lists)

	mapping, err := f.cats.MigrateLegacyIDs(ctx)
	if err != nil {
		t.Fatalf("MigrateLegacyIDs: %v", err)
	}
	if mapping["produce"] != "cat_001" || mapping["other"] != "cat_007" {
		t.Errorf("defaults should reclaim their ids: %v", mapping)
	}
	snacksID := mapping["snacks"]
	if _, ok := models.CategorySeq(snacksID); !ok || snacksID == "cat_001" || snacksID == "cat_007" {
		t.Errorf("snacks id = %q", snacksID)
	}
	for _, c := range f.cats.List() {
		if c.ID == c.Name {
			t.Errorf("category %q still has a name-based id", c.Name)
		}
	}
	if p, _ := f.prods.Get("1"); p.Category != "cat_001" {
		t.Errorf("apples category = %q, want cat_001", p.Category)
	}
	if p, _ := f.prods.Get("2"); p.Category != snacksID {
		t.Errorf("chips category = %q, want %q", p.Category, snacksID)
	}
	if lists.Shopping[0].Category != snacksID {
		t.Errorf("legacy shopping item category = %q, want %q", lists.Shopping[0].Category, snacksID)
	}
	raw, _ := mem.Get(ctx, "shopping_items")
	var persisted []models.LegacyItem
	json.Unmarshal(raw, &persisted)
	if len(persisted) != 1 || persisted[0].Category != snacksID {
		t.Errorf("persisted legacy list not remapped: %s", raw)
	}

	again, err := f.cats.MigrateLegacyIDs(ctx)
	if err != nil || len(again) != 0 {
		t.Errorf("second run should be a no-op, got %v, %v", again, err)
	}
}

func ids(cats []models.Category) []string {
	out := make([]string, len(cats))
	for i, c := range cats {
		out[i] = c.ID
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
