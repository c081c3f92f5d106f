// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"crypto/sha256"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// APIKeyHeader carries the client's API key.
const APIKeyHeader = "X-API-Key"

// APIKey rejects requests whose key does not match the bcrypt hash. An
// empty hash disables the check. Keys that verified once are remembered by
// digest so bcrypt runs once per distinct key.
func APIKey(hash string) func(http.Handler) http.Handler {
	var verified sync.Map // [sha256.Size]byte -> struct{}

	return func(next http.Handler) http.Handler {
		if hash == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(APIKeyHeader)
			if key == "" {
				if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
					key = strings.TrimPrefix(auth, "Bearer ")
				}
			}
			if key == "" {
				writeError(w, http.StatusUnauthorized, "missing API key")
				return
			}

			digest := sha256.Sum256([]byte(key))
			if _, ok := verified.Load(digest); !ok {
				if bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) != nil {
					writeError(w, http.StatusUnauthorized, "invalid API key")
					return
				}
				verified.Store(digest, struct{}{})
			}
			next.ServeHTTP(w, r)
		})
	}
}

// HashAPIKey returns the bcrypt hash to put in API_KEY_HASH.
func HashAPIKey(key string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
