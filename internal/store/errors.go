// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"errors"

	"pantrykeeper/internal/persist"
)

// Validation failures. A store returning one of these has not mutated.
var (
	ErrEmptyName         = errors.New("name is required")
	ErrDuplicateName     = errors.New("name already exists")
	ErrNotFound          = errors.New("not found")
	ErrProtectedDefault  = errors.New("default category cannot be changed")
	ErrInvalidReference  = errors.New("reference does not resolve")
	ErrInvalidIngredient = errors.New("invalid ingredient")
	ErrInvalidSlot       = errors.New("invalid meal slot")
)

// ErrInvalidCategory is returned together with a valid product when the
// requested category did not exist and the product was placed in the
// fallback category instead. It is a warning, not a rejection.
var ErrInvalidCategory = errors.New("category does not exist")

// ErrStorageWrite is returned together with a valid result when the
// mutation was applied in memory but could not be persisted.
var ErrStorageWrite = persist.ErrWrite

// IsSoft reports whether err is a warning that accompanies a successful
// mutation rather than a rejection.
func IsSoft(err error) bool {
	return errors.Is(err, ErrStorageWrite) || errors.Is(err, ErrInvalidCategory)
}
