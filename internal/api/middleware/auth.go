package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/kiranshivaraju/studentpulse/internal/api/response"
	"github.com/kiranshivaraju/studentpulse/internal/service"
	"github.com/kiranshivaraju/studentpulse/internal/store"
)

// Auth provides authentication and scope-checking middleware.
type Auth struct {
	store store.Store
}

// NewAuth creates a new Auth middleware.
func NewAuth(s store.Store) *Auth {
	return &Auth{store: s}
}

// Authenticate validates the Bearer token and stores the matching key in the
// request context.
func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawKey := extractBearerToken(r)
		if rawKey == "" {
			response.Error(w, http.StatusUnauthorized,
				response.CodeInvalidToken, "Missing or invalid Authorization header", nil)
			return
		}

		if len(rawKey) < service.KeyPrefixLen {
			response.Error(w, http.StatusUnauthorized,
				response.CodeInvalidToken, "Invalid API key format", nil)
			return
		}

		prefix := rawKey[:service.KeyPrefixLen]

		keys, err := a.store.GetAPIKeyByPrefix(r.Context(), prefix)
		if err != nil {
			slog.Error("api key lookup failed", "prefix", prefix, "error", err)
			response.Error(w, http.StatusInternalServerError,
				response.CodeInternal, "Failed to validate API key", nil)
			return
		}

		// Prefixes are not unique; bcrypt decides.
		for _, key := range keys {
			if !key.Active() || bcrypt.CompareHashAndPassword([]byte(key.KeyHash), []byte(rawKey)) != nil {
				continue
			}
			go a.touch(key.ID)
			next.ServeHTTP(w, r.WithContext(WithAPIKey(r.Context(), key)))
			return
		}

		response.Error(w, http.StatusUnauthorized,
			response.CodeInvalidToken, "Invalid API key", nil)
	})
}

func (a *Auth) touch(id uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.store.UpdateAPIKeyLastUsed(ctx, id); err != nil {
		slog.Warn("update api key last_used_at failed", "key_id", id, "error", err)
	}
}

// RequireScope rejects requests whose key lacks scope with 403.
func (a *Auth) RequireScope(scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key, ok := APIKey(r); ok && key.HasScope(scope) {
				next.ServeHTTP(w, r)
				return
			}
			response.Error(w, http.StatusForbidden,
				response.CodeForbidden, "Insufficient permissions", nil)
		})
	}
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
