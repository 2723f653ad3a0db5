package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/kiranshivaraju/studentpulse/pkg/models"
)

type contextKey struct{}

var apiKeyCtxKey contextKey

// WithAPIKey marks ctx as authenticated by key. Authenticate calls it; tests
// use it to drive RateLimit and RequireScope directly.
func WithAPIKey(ctx context.Context, key *models.APIKey) context.Context {
	return context.WithValue(ctx, apiKeyCtxKey, key)
}

// APIKey returns the key that authenticated r.
func APIKey(r *http.Request) (*models.APIKey, bool) {
	key, ok := r.Context().Value(apiKeyCtxKey).(*models.APIKey)
	return key, ok && key != nil
}

// KeyID returns the ID of the API key that authenticated r.
func KeyID(r *http.Request) (uuid.UUID, bool) {
	key, ok := APIKey(r)
	if !ok {
		return uuid.Nil, false
	}
	return key.ID, true
}
