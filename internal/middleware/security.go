package middleware

import (
	"net/http"
)

// SecurityHeaders adds response headers suited to a JSON-only API
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		h.Set("Referrer-Policy", "no-referrer")
		// responses are data, never documents
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		// question sets are per session and must not be cached by intermediaries
		h.Set("Cache-Control", "no-store")

		next.ServeHTTP(w, r)
	})
}
