package middleware

import (
	"net/http"
	"strings"

	"car-rental/pkg/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AdminToken checks the bearer token against a bcrypt hash of the admin token.
// With an empty hash every admin request is refused.
func AdminToken(tokenHash string, logger *zap.Logger) func(http.Handler) http.Handler {
	hash := []byte(tokenHash)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(hash) == 0 {
				logger.Warn("Admin access attempted but no admin token is configured",
					zap.String("path", r.URL.Path))
				utils.ResponseForbidden(w, "Admin access is disabled")
				return
			}

			// Extract token
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.ResponseUnauthorized(w, "Missing authorization token")
				return
			}

			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				utils.ResponseUnauthorized(w, "Invalid token format. Use: Bearer <token>")
				return
			}

			if err := bcrypt.CompareHashAndPassword(hash, []byte(token)); err != nil {
				logger.Warn("Admin check: invalid token",
					zap.String("path", r.URL.Path),
					zap.String("ip", r.RemoteAddr))
				utils.ResponseUnauthorized(w, "Invalid admin token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
