// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"pantrykeeper/internal/models"
	"pantrykeeper/internal/persist"
)

const (
	mealPlansKey    = "meal_plans"
	mealVersionsKey = "meal_plan_versions"
)

// weekStamp versions one week document for the remote mirror.
type weekStamp struct {
	Version  int64     `json:"version"`
	Modified time.Time `json:"modified"`
}

// MealPlanStore holds the week -> day -> meal calendar. Empty days and
// weeks are never kept.
type MealPlanStore struct {
	notifier

	mu     sync.RWMutex
	p      *persist.Persister
	plans  models.MealPlans
	stamps map[string]weekStamp
	now    func() time.Time
}

// NewMealPlanStore returns an empty MealPlanStore. Call Load before use.
func NewMealPlanStore(p *persist.Persister) *MealPlanStore {
	return &MealPlanStore{p: p, plans: models.MealPlans{}, stamps: map[string]weekStamp{}, now: time.Now}
}

// Load reads the persisted calendar and drops any empty containers an
// older client may have left behind.
func (s *MealPlanStore) Load(ctx context.Context) error {
	plans := models.MealPlans{}
	if _, err := s.p.Load(ctx, mealPlansKey, &plans); err != nil {
		return fmt.Errorf("load meal plans: %w", err)
	}
	stamps := map[string]weekStamp{}
	if _, err := s.p.Load(ctx, mealVersionsKey, &stamps); err != nil {
		return fmt.Errorf("load meal plan versions: %w", err)
	}
	if plans == nil {
		plans = models.MealPlans{}
	}
	if stamps == nil {
		stamps = map[string]weekStamp{}
	}
	for week, wp := range plans {
		for day, dp := range wp {
			if len(dp) == 0 {
				delete(wp, day)
			}
		}
		if len(wp) == 0 {
			delete(plans, week)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans = plans
	s.stamps = stamps
	return nil
}

func (s *MealPlanStore) saveLocked(ctx context.Context) error {
	if err := s.p.Save(ctx, mealPlansKey, s.plans); err != nil {
		return err
	}
	return s.p.Save(ctx, mealVersionsKey, s.stamps)
}

func (s *MealPlanStore) touchLocked(week string) Change {
	st := s.stamps[week]
	st.Version++
	st.Modified = s.now()
	s.stamps[week] = st
	c := Change{Collection: CollectionMealPlan, ID: week, Version: st.Version, Modified: st.Modified}
	if wp, ok := s.plans[week]; ok {
		c.Record = cloneWeek(wp)
	} else {
		c.Deleted = true
	}
	return c
}

func cloneWeek(wp models.WeekPlan) models.WeekPlan {
	out := make(models.WeekPlan, len(wp))
	for day, dp := range wp {
		d := make(models.DayPlan, len(dp))
		for mt, a := range dp {
			a.Products = append([]string(nil), a.Products...)
			d[mt] = a
		}
		out[day] = d
	}
	return out
}

func validSlot(day int, meal models.MealType) error {
	if day < 0 || day >= models.DaysPerWeek {
		return fmt.Errorf("day %d: %w", day, ErrInvalidSlot)
	}
	if !meal.Valid() {
		return fmt.Errorf("meal %q: %w", meal, ErrInvalidSlot)
	}
	return nil
}

// Weeks returns the keys of every planned week, sorted.
func (s *MealPlanStore) Weeks() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.plans))
	for k := range s.plans {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// All returns a copy of the whole calendar.
func (s *MealPlanStore) All() models.MealPlans {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(models.MealPlans, len(s.plans))
	for k, wp := range s.plans {
		out[k] = cloneWeek(wp)
	}
	return out
}

// Week returns a copy of one week; an unplanned week is empty, not nil.
func (s *MealPlanStore) Week(week string) models.WeekPlan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if wp, ok := s.plans[week]; ok {
		return cloneWeek(wp)
	}
	return models.WeekPlan{}
}

// Get returns the assignment in one slot.
func (s *MealPlanStore) Get(week string, day int, meal models.MealType) (models.MealAssignment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.plans[week][day][meal]
	return a, ok
}

// SetMeal fills a slot, replacing whatever was there.
func (s *MealPlanStore) SetMeal(ctx context.Context, week string, day int, meal models.MealType, a models.MealAssignment) error {
	if err := validSlot(day, meal); err != nil {
		return err
	}
	a.RecipeID = models.NormalizeID(a.RecipeID)
	switch a.Type {
	case models.AssignRecipe:
		if a.RecipeID == "" {
			return fmt.Errorf("recipe meal without recipe id: %w", ErrInvalidSlot)
		}
		a.Name, a.Products = "", nil
	case models.AssignSimple:
		if a.Name == "" && len(a.Products) == 0 {
			return fmt.Errorf("simple meal without name or products: %w", ErrInvalidSlot)
		}
		a.RecipeID = ""
		for i := range a.Products {
			a.Products[i] = models.NormalizeID(a.Products[i])
		}
	default:
		return fmt.Errorf("assignment type %q: %w", a.Type, ErrInvalidSlot)
	}

	s.mu.Lock()
	wp, ok := s.plans[week]
	if !ok {
		wp = models.WeekPlan{}
		s.plans[week] = wp
	}
	dp, ok := wp[day]
	if !ok {
		dp = models.DayPlan{}
		wp[day] = dp
	}
	dp[meal] = a
	c := s.touchLocked(week)
	err := s.saveLocked(ctx)
	s.mu.Unlock()

	s.emit(c)
	return err
}

// RemoveMeal clears a slot. A day left without meals is removed, and so
// is a week left without days.
func (s *MealPlanStore) RemoveMeal(ctx context.Context, week string, day int, meal models.MealType) error {
	if err := validSlot(day, meal); err != nil {
		return err
	}
	s.mu.Lock()
	if _, ok := s.plans[week][day][meal]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("meal %s/%d/%s: %w", week, day, meal, ErrNotFound)
	}
	delete(s.plans[week][day], meal)
	if len(s.plans[week][day]) == 0 {
		delete(s.plans[week], day)
	}
	if len(s.plans[week]) == 0 {
		delete(s.plans, week)
	}
	c := s.touchLocked(week)
	err := s.saveLocked(ctx)
	s.mu.Unlock()

	s.emit(c)
	return err
}

// ApplyRemote merges remote week documents under last-writer-wins.
func (s *MealPlanStore) ApplyRemote(ctx context.Context, recs []RemoteRecord) (int, error) {
	s.mu.Lock()
	var changes []Change
	for _, rec := range recs {
		local := s.stamps[rec.ID]
		if !newer(rec.Version, rec.Modified, local.Version, local.Modified) {
			continue
		}
		c := Change{Collection: CollectionMealPlan, ID: rec.ID, Version: rec.Version, Modified: rec.Modified, Remote: true}
		if rec.Deleted {
			delete(s.plans, rec.ID)
			c.Deleted = true
		} else {
			var wp models.WeekPlan
			if err := json.Unmarshal(rec.Payload, &wp); err != nil {
				slog.Warn("remote meal plan undecodable", "week", rec.ID, "error", err)
				continue
			}
			for day, dp := range wp {
				if len(dp) == 0 {
					delete(wp, day)
				}
			}
			if len(wp) == 0 {
				delete(s.plans, rec.ID)
				c.Deleted = true
			} else {
				s.plans[rec.ID] = wp
				c.Record = cloneWeek(wp)
			}
		}
		s.stamps[rec.ID] = weekStamp{Version: rec.Version, Modified: rec.Modified}
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
