// Package middleware provides HTTP middleware: request ids, auth, body limits.
package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/trovehq/trove/internal/observability"
)

const requestIDHeader = "X-Request-ID"

// RequestID guarantees every request carries an X-Request-ID, both in the
// context (for log correlation via the slog handler) and on the response
// header. A client-supplied id is kept; otherwise a v7 UUID is minted.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.Must(uuid.NewV7()).String()
		}

		ctx := context.WithValue(r.Context(), observability.RequestIDKey, id)
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
