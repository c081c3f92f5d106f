package handlers

import (
	"strings"
	"testing"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		wantError bool
	}{
		{"valid", "Greek yogurt", false},
		{"empty", "", true},
		{"whitespace", "   ", true},
		{"too long", strings.Repeat("a", 201), true},
		{"multibyte at limit", strings.Repeat("ä", 200), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validateName(tt.in)
			if tt.wantError && result == "" {
				t.Error("expected an error, got none")
			}
			if !tt.wantError && result != "" {
				t.Errorf("unexpected error: %s", result)
			}
		})
	}
}

func TestValidateRecipeText(t *testing.T) {
	tests := []struct {
		name        string
		description string
		preparation string
		ingredients string
		wantError   bool
	}{
		{"all empty", "", "", "", false},
		{"all valid", "Quick dinner", "1. Boil\n2. Serve", "200g pasta", false},
		{"description too long", strings.Repeat("a", 2001), "", "", true},
		{"preparation too long", "", strings.Repeat("a", 100_001), "", true},
		{"ingredients too long", "", "", strings.Repeat("a", 20_001), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validateRecipeText(tt.description, tt.preparation, tt.ingredients)
			if tt.wantError && result == "" {
				t.Error("expected an error, got none")
			}
			if !tt.wantError && result != "" {
				t.Errorf("unexpected error: %s", result)
			}
		})
	}
}

func TestValidateEmoji(t *testing.T) {
	if msg := validateEmoji("🥕"); msg != "" {
		t.Errorf("unexpected error: %s", msg)
	}
	if msg := validateEmoji(strings.Repeat("🥕", 17)); msg == "" {
		t.Error("expected an error, got none")
	}
}
