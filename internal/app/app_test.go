package app

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pantrykeeper/internal/config"
	"pantrykeeper/internal/kv"
	"pantrykeeper/internal/models"
	"pantrykeeper/internal/persist"
)

func testConfig(t *testing.T, seed bool, remote string) *config.Config {
	t.Helper()
	for _, key := range []string{"CONFIG_FILE", "S3_ENDPOINT", "API_KEY_HASH", "APP_ENV"} {
		t.Setenv(key, "")
	}
	t.Setenv("LOCAL_STORE", config.LocalMemory)
	t.Setenv("REMOTE_STORE", remote)
	if seed {
		t.Setenv("SEED_SAMPLE_DATA", "true")
	} else {
		t.Setenv("SEED_SAMPLE_DATA", "false")
	}
	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg
}

func TestNewSeedsSampleData(t *testing.T) {
	a, err := New(context.Background(), testConfig(t, true, config.RemoteNone))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	assert.Len(t, a.Categories.List(), 7)
	assert.NotEmpty(t, a.Products.List())
	assert.NotEmpty(t, a.Recipes.List())
	assert.Nil(t, a.Mirror)
	assert.False(t, a.Backup.Enabled())

	counted := 0
	for _, p := range a.Products.List() {
		counted += p.RecipeCount
	}
	assert.Positive(t, counted, "sample recipes should count on their products")
	for _, r := range a.Recipes.List() {
		assert.NotNil(t, r.Metadata, "recipe %s has no metadata", r.Name)
	}
}

func TestNewWithRemoteMirror(t *testing.T) {
	a, err := New(context.Background(), testConfig(t, false, config.RemoteMemory))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	require.NotNil(t, a.Mirror)
	_, err = a.Products.Add(context.Background(), "oats", "cat_004")
	require.NoError(t, err)
	assert.Equal(t, 1, a.Mirror.Pending())
}

func TestBootstrapFoldsLegacyData(t *testing.T) {
	ctx := context.Background()
	backend := kv.NewMemory()
	p := persist.New(backend)
	require.NoError(t, p.Save(ctx, "categories", []models.Category{
		{ID: "produce", Name: "produce", Order: 0},
		{ID: "snacks", Name: "snacks", Order: 1},
		{ID: "other", Name: "other", Order: 2},
	}))
	require.NoError(t, p.Save(ctx, "shopping_items", []models.LegacyItem{{Name: "Chips", Category: "snacks"}}))
	require.NoError(t, p.Save(ctx, "pantry_items", []models.LegacyItem{{Name: "Apples", Category: "produce", InStock: true}}))

	a, err := assemble(ctx, testConfig(t, false, config.RemoteNone), backend)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	snacks, ok := a.Categories.FindByName("snacks")
	require.True(t, ok)
	assert.NotEqual(t, "snacks", snacks.ID, "legacy id should be migrated")

	chips, ok := a.Products.FindByName("chips")
	require.True(t, ok)
	assert.True(t, chips.InShopping)
	assert.Equal(t, snacks.ID, chips.Category)

	apples, ok := a.Products.FindByName("apples")
	require.True(t, ok)
	assert.True(t, apples.Pantry)
	assert.Equal(t, "cat_001", apples.Category)

	assert.True(t, a.Legacy.Empty())
	assert.Empty(t, a.Products.FindOrphaned())
}

func TestLegacyInstallIsNotSeeded(t *testing.T) {
	ctx := context.Background()
	backend := kv.NewMemory()
	p := persist.New(backend)
	require.NoError(t, p.Save(ctx, "categories", []models.Category{
		{ID: "produce", Name: "produce", Order: 0},
		{ID: "other", Name: "other", Order: 1},
	}))
	require.NoError(t, p.Save(ctx, "shopping_items", []models.LegacyItem{{Name: "Chips", Category: "produce"}}))

	a, err := assemble(ctx, testConfig(t, true, config.RemoteNone), backend)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	products := a.Products.List()
	require.Len(t, products, 1)
	assert.True(t, strings.EqualFold("chips", products[0].Name), "name = %q", products[0].Name)
	assert.Equal(t, "cat_001", products[0].Category)
	assert.Empty(t, a.Recipes.List())
	assert.True(t, p.Initialized(ctx, "products"))
	assert.True(t, p.Initialized(ctx, "recipes"))
}

func TestRecipeCountsFollowRecipes(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, testConfig(t, false, config.RemoteNone))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	leek, err := a.Products.Add(ctx, "leek", "cat_001")
	require.NoError(t, err)
	rec, err := a.Recipes.Insert(ctx, models.Recipe{Name: "Leek soup", Ingredients: []models.Ingredient{{ProductID: leek.ID, Quantity: 2, Unit: "pcs"}}})
	require.NoError(t, err)

	got, _ := a.Products.Get(leek.ID)
	assert.Equal(t, 1, got.RecipeCount)

	require.NoError(t, a.Recipes.Delete(ctx, rec.ID))
	got, _ = a.Products.Get(leek.ID)
	assert.Equal(t, 0, got.RecipeCount)
}
