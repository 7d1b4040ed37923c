package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/trovehq/trove/internal/api/response"
)

type contextKey string

// UserIDContextKey is the context key holding the authenticated user's id.
const UserIDContextKey contextKey = "user_id"

// TokenValidator validates an access token and returns the user id it carries.
type TokenValidator interface {
	ValidateToken(tokenString string) (uuid.UUID, error)
}

// Auth middleware validates the Bearer access token and puts the user id in
// the request context.
func Auth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.RespondUnauthorized(w, "Missing Authorization header")
				return
			}

			// Expected format: "Bearer <token>"
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				response.RespondUnauthorized(w, "Invalid Authorization header format. Expected: Bearer <token>")
				return
			}

			userID, err := validator.ValidateToken(parts[1])
			if err != nil {
				response.RespondUnauthorized(w, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDContextKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext returns the authenticated user's id set by Auth.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(UserIDContextKey).(uuid.UUID)

	return id, ok
}
