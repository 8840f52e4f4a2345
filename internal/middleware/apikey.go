package middleware

import (
	"crypto/subtle"
	"net/http"
)

// APIKey returns middleware that requires a matching x-api-key header.
// An empty configured key disables the check (development mode).
func APIKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			got := r.Header.Get("x-api-key")
			if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error": "invalid API key"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
