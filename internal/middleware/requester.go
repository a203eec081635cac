package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

// requesterKey is the context key under which the requester's user ID is stored.
type requesterKey struct{}

// NewRequesterID returns a middleware that extracts the authenticated user's
// ID from the X-User-ID header and stores it on the request context.
//
// Authentication itself happens upstream (an API gateway verifies the token
// and injects the header); this backend only trusts and parses the result.
// Requests without a valid header never reach the handlers.
func NewRequesterID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := uuid.Parse(r.Header.Get("X-User-ID"))
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]string{
						"code":    "unauthorized",
						"message": "missing or invalid X-User-ID header",
					},
				})
				return
			}
			next.ServeHTTP(w, r.WithContext(WithRequesterID(r.Context(), id)))
		})
	}
}

// WithRequesterID returns a context carrying the requester's user ID.
// Exported for handler tests that bypass the middleware.
func WithRequesterID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, requesterKey{}, id)
}

// RequesterID returns the requester's user ID stored by NewRequesterID.
// The second return is false when the middleware did not run.
func RequesterID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(requesterKey{}).(uuid.UUID)
	return id, ok
}
