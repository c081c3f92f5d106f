package middleware

import (
	"encoding/json"
	"net/http"
)

// writeError writes the JSON error body shared with the API handlers.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
