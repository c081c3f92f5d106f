package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// NewID returns a fresh entity id.
func NewID() string {
	return uuid.NewString()
}

// FlexID decodes an id stored either as a JSON number (older records used
// millisecond timestamps) or as a string, and always holds the string form.
type FlexID string

// UnmarshalJSON accepts numbers, strings and null.
func (f *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexID(NormalizeID(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode id %s: %w", data, err)
	}
	*f = FlexID(NormalizeID(n.String()))
	return nil
}

// NormalizeID trims an id and strips a trailing ".0" that numeric ids pick
// up when they pass through float formatting.
func NormalizeID(id string) string {
	id = strings.TrimSpace(id)
	if f, err := strconv.ParseFloat(id, 64); err == nil && strings.ContainsAny(id, ".eE") {
		if f == float64(int64(f)) {
			return strconv.FormatInt(int64(f), 10)
		}
	}
	return id
}
