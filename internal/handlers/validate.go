// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"strings"
	"unicode/utf8"
)

// Validation limits for request fields. The stores enforce the semantic
// rules; these only bound what a client may send.
const (
	maxNameLen        = 200
	maxEmojiLen       = 16
	maxDescriptionLen = 2_000
	maxPreparationLen = 100_000
	maxIngredientsLen = 20_000
	maxBodyBytes      = 1 << 20
	maxImportBytes    = 10 << 20
)

// validateName checks a product, category or recipe name and returns the
// first problem found.
func validateName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Name is required."
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "Name is too long (max 200 characters)."
	}
	return ""
}

// validateEmoji bounds a category emoji.
func validateEmoji(emoji string) string {
	if utf8.RuneCountInString(emoji) > maxEmojiLen {
		return "Emoji is too long (max 16 characters)."
	}
	return ""
}

// validateRecipeText checks the free-text fields of a recipe.
func validateRecipeText(description, preparation, ingredients string) string {
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return "Description is too long (max 2,000 characters)."
	}
	if utf8.RuneCountInString(preparation) > maxPreparationLen {
		return "Preparation is too long (max 100,000 characters)."
	}
	if utf8.RuneCountInString(ingredients) > maxIngredientsLen {
		return "Ingredients text is too long (max 20,000 characters)."
	}
	return ""
}

// deref returns the pointed-to string, or "" for nil.
func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
