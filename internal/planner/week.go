// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package planner holds the calendar rules of the meal plan and the
// service that turns planned meals into shopping.
package planner

import (
	"fmt"
	"strings"
	"time"

	"pantrykeeper/internal/models"
)

// WeekKeyLayout formats week keys.
const WeekKeyLayout = "2006-01-02"

// Settings are the calendar conventions. They default to a Saturday week
// start with lunch from 11:00 and dinner from 17:00.
type Settings struct {
	FirstDay       time.Weekday
	LunchFromHour  int
	DinnerFromHour int
}

// DefaultSettings returns the stock calendar conventions.
func DefaultSettings() Settings {
	return Settings{FirstDay: time.Saturday, LunchFromHour: 11, DinnerFromHour: 17}
}

// ParseWeekday accepts English day names, case-insensitively.
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || (len(s) == 3 && strings.HasPrefix(name, s)) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

// WeekStart returns midnight of the most recent week-start day on or
// before t, in t's location.
func (s Settings) WeekStart(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	back := (int(day.Weekday()) - int(s.FirstDay) + 7) % 7
	return day.AddDate(0, 0, -back)
}

// DayIndex returns the position of t within its week, 0..6.
func (s Settings) DayIndex(t time.Time) int {
	return (int(t.Weekday()) - int(s.FirstDay) + 7) % 7
}

// MealIndex returns the index of the meal that t falls in.
func (s Settings) MealIndex(t time.Time) int {
	switch h := t.Hour(); {
	case h < s.LunchFromHour:
		return models.Breakfast.Index()
	case h < s.DinnerFromHour:
		return models.Lunch.Index()
	default:
		return models.Dinner.Index()
	}
}

// WeekStart uses the default Saturday convention.
func WeekStart(t time.Time) time.Time {
	return DefaultSettings().WeekStart(t)
}

// WeekKey formats the date of weekStart as YYYY-MM-DD.
func WeekKey(weekStart time.Time) string {
	return weekStart.Format(WeekKeyLayout)
}

// ParseWeekKey parses a week key in loc.
func ParseWeekKey(key string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(WeekKeyLayout, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse week key %q: %w", key, err)
	}
	return t, nil
}
