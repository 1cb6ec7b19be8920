package httpapi

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// requireAdmin admits requests whose bearer token matches the configured
// bcrypt hash.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.opts.AdminKeyHash == "" {
			respondError(w, http.StatusForbidden, "FORBIDDEN", "admin access is not configured")
			return
		}
		token := extractToken(r)
		if token == "" {
			respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(s.opts.AdminKeyHash), []byte(token)); err != nil {
			respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid admin key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func extractToken(r *http.Request) string {
	authz := r.Header.Get("Authorization")
	if strings.HasPrefix(authz, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
	}
	return ""
}
