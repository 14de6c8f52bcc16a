package middleware

import (
	"log/slog"
	"net/http"
	"strings"
)

// TokenValidator validates a bearer token and returns an error for anything
// not acceptable.
type TokenValidator interface {
	ValidateToken(tokenString string) error
}

// RequireAdmin guards admin routes with a bearer token check.
func RequireAdmin(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			if err := validator.ValidateToken(token); err != nil {
				logger.Warn("admin token rejected", "error", err)
				w.WriteHeader(http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
