package auth

import (
	"net/http"
	"strings"
)

// Middleware enforces bearer auth on every route except the excluded
// paths. Health and metrics endpoints stay open for probes and scrapers.
func Middleware(validator TokenValidator, excluded ...string) func(http.Handler) http.Handler {
	skip := make(map[string]bool, len(excluded))
	for _, p := range excluded {
		skip[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skip[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			if header == "" {
				unauthorized(w, "Missing Authorization header")
				return
			}

			token := strings.TrimPrefix(header, "Bearer ")
			if token == header {
				unauthorized(w, "Invalid Authorization format, expected: Bearer <token>")
				return
			}

			if err := validator.ValidateToken(r.Context(), token); err != nil {
				unauthorized(w, "Invalid token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"detail":"` + detail + `"}`))
}
