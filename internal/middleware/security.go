// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import "net/http"

// SecureHeaders adds security-related HTTP headers to every response.
// The API serves JSON, spreadsheets and small HTML fragments, none of
// which may be framed or pull in other resources.
func SecureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()

		// Prevent the browser from MIME-sniffing the Content-Type.
		h.Set("X-Content-Type-Options", "nosniff")

		h.Set("X-Frame-Options", "DENY")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

		// Control what information is sent in the Referer header.
		h.Set("Referrer-Policy", "no-referrer")

		// Pantry state changes constantly; never serve it from a cache.
		h.Set("Cache-Control", "no-store")

		next.ServeHTTP(w, r)
	})
}
