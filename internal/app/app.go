// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package app constructs the stores and services from configuration and
// runs the startup bootstrap. The CLI commands and the HTTP server share
// one App.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"pantrykeeper/internal/backup"
	"pantrykeeper/internal/config"
	"pantrykeeper/internal/csvimport"
	"pantrykeeper/internal/database"
	"pantrykeeper/internal/kv"
	"pantrykeeper/internal/mirror"
	"pantrykeeper/internal/models"
	"pantrykeeper/internal/persist"
	"pantrykeeper/internal/planner"
	"pantrykeeper/internal/remote"
	"pantrykeeper/internal/storage"
	"pantrykeeper/internal/store"
)

// App holds every long-lived component.
type App struct {
	Config *config.Config

	Categories *store.CategoryStore
	Products   *store.ProductStore
	Recipes    *store.RecipeStore
	Meals      *store.MealPlanStore
	Legacy     *store.LegacyLists

	Planner  *planner.Service
	Importer *csvimport.Importer
	Backup   *backup.Service
	// Mirror is nil when no remote store is configured.
	Mirror *mirror.Mirror

	persister *persist.Persister
	closers   []func() error
}

// New opens the configured backends, wires the stores and runs the
// bootstrap sequence. Close releases what it opened.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	backend, err := openBackend(cfg)
	if err != nil {
		return nil, err
	}
	return assemble(ctx, cfg, backend)
}

// assemble builds the App over an open backend, which it takes ownership
// of.
func assemble(ctx context.Context, cfg *config.Config, backend kv.Backend) (*App, error) {
	a := &App{Config: cfg, closers: []func() error{backend.Close}}
	settings, err := cfg.PlannerSettings()
	if err != nil {
		a.Close()
		return nil, err
	}
	a.persister = persist.New(backend)

	a.Categories = store.NewCategoryStore(a.persister)
	a.Products = store.NewProductStore(a.persister, a.Categories)
	a.Recipes = store.NewRecipeStore(a.persister)
	a.Meals = store.NewMealPlanStore(a.persister)
	if cfg.SeedSampleData {
		a.Products.SampleData = func() []models.Product { return store.SampleProducts(a.Categories) }
		a.Recipes.SampleData = func() []models.Recipe { return store.SampleRecipes(a.Products) }
	}

	if err := a.bootstrap(ctx); err != nil {
		a.Close()
		return nil, err
	}

	a.Planner = planner.NewService(a.Products, a.Recipes, a.Meals, settings)
	a.Importer = csvimport.New(a.Categories, a.Products, a.Recipes)

	s3, err := storage.New(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket)
	if err != nil {
		a.Close()
		return nil, err
	}
	var up backup.Uploader
	if s3 != nil {
		up = s3
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", s3.Bucket())
	} else {
		slog.Warn("s3 storage not configured, snapshots disabled")
	}
	a.Backup = backup.New(a.Categories, a.Products, a.Recipes, a.Meals, up)

	docs, err := a.openRemote(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	if docs != nil {
		a.Mirror = mirror.New(docs)
		a.Mirror.Register(store.CollectionProducts, a.Products)
		a.Mirror.Register(store.CollectionRecipes, a.Recipes)
		a.Mirror.Register(store.CollectionMealPlan, a.Meals)
	}
	return a, nil
}

// openBackend returns the local key/value backend named by LOCAL_STORE.
func openBackend(cfg *config.Config) (kv.Backend, error) {
	switch cfg.LocalStore {
	case config.LocalMemory:
		slog.Warn("local store is in memory, data is lost on exit")
		return kv.NewMemory(), nil
	case config.LocalValkey:
		client, err := kv.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			return nil, fmt.Errorf("connect valkey: %w", err)
		}
		return kv.NewValkey(client, cfg.ValkeyPrefix), nil
	default:
		db, err := kv.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		slog.Info("local store opened", "path", db.Path())
		return db, nil
	}
}

// openRemote returns the remote document store named by REMOTE_STORE, or
// nil when mirroring is off.
func (a *App) openRemote(ctx context.Context) (remote.DocStore, error) {
	cfg := a.Config
	switch cfg.RemoteStore {
	case config.RemoteMemory:
		return remote.NewMemory(), nil
	case config.RemotePostgres:
		db, err := database.Connect(ctx, cfg.DSN())
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		if err := database.Migrate(db); err != nil {
			return nil, err
		}
		return remote.NewPostgres(db, database.DriverName, cfg.RemotePollInterval), nil
	default:
		return nil, nil
	}
}

// Close releases the backends in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
