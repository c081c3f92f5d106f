// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package backup bundles the local stores into one JSON snapshot and
// archives it in object storage.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"pantrykeeper/internal/models"
	"pantrykeeper/internal/store"
)

// ErrDisabled is returned by Upload when no object storage is configured.
var ErrDisabled = errors.New("object storage is not configured")

// Snapshot is the archived form of every local collection.
type Snapshot struct {
	TakenAt    time.Time         `json:"takenAt"`
	Categories []models.Category `json:"categories"`
	Products   []models.Product  `json:"products"`
	Recipes    []models.Recipe   `json:"recipes"`
	Vocabulary store.Vocabulary  `json:"vocabulary"`
	MealPlan   models.MealPlans  `json:"mealPlan"`
}

// Uploader writes a snapshot body and returns its key and a download link.
// *storage.Client satisfies it.
type Uploader interface {
	UploadSnapshot(ctx context.Context, t time.Time, data []byte) (key, url string, err error)
}

// Result describes an archived snapshot.
type Result struct {
	Key     string    `json:"key"`
	URL     string    `json:"url"`
	TakenAt time.Time `json:"takenAt"`
	Size    int       `json:"size"`
}

// Service reads the stores. A nil uploader disables Upload but Build still
// works.
type Service struct {
	categories *store.CategoryStore
	products   *store.ProductStore
	recipes    *store.RecipeStore
	meals      *store.MealPlanStore
	uploader   Uploader
	now        func() time.Time
}

// New wires a Service.
func New(cats *store.CategoryStore, products *store.ProductStore, recipes *store.RecipeStore, meals *store.MealPlanStore, up Uploader) *Service {
	return &Service{
		categories: cats,
		products:   products,
		recipes:    recipes,
		meals:      meals,
		uploader:   up,
		now:        time.Now,
	}
}

// Enabled reports whether snapshots can be uploaded.
func (s *Service) Enabled() bool {
	return s.uploader != nil
}

// Build captures the current state of every store.
func (s *Service) Build() Snapshot {
	return Snapshot{
		TakenAt:    s.now().UTC(),
		Categories: s.categories.List(),
		Products:   s.products.List(),
		Recipes:    s.recipes.List(),
		Vocabulary: s.recipes.Vocabulary(),
		MealPlan:   s.meals.All(),
	}
}

// Upload builds a snapshot and stores it.
func (s *Service) Upload(ctx context.Context) (Result, error) {
	if s.uploader == nil {
		return Result{}, ErrDisabled
	}
	snap := s.Build()
	data, err := json.Marshal(snap)
	if err != nil {
		return Result{}, fmt.Errorf("encode snapshot: %w", err)
	}
	key, url, err := s.uploader.UploadSnapshot(ctx, snap.TakenAt, data)
	if err != nil {
		return Result{}, fmt.Errorf("upload snapshot: %w", err)
	}
	slog.Info("snapshot uploaded", "key", key, "bytes", len(data),
		"products", len(snap.Products), "recipes", len(snap.Recipes))
	return Result{Key: key, URL: url, TakenAt: snap.TakenAt, Size: len(data)}, nil
}
