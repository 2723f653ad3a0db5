package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// API key scopes. Read routes need ScopeRead, admin routes ScopeAdmin.
const (
	ScopeRead  = "read"
	ScopeAdmin = "admin"
)

// APIKey is a stored credential. The raw key is printed once by
// `pulsectl keys create` or the admin endpoint; only its bcrypt hash and
// clear-text lookup prefix are persisted.
type APIKey struct {
	ID         uuid.UUID  `db:"id"           json:"id"`
	Name       string     `db:"name"         json:"name"`
	KeyHash    string     `db:"key_hash"     json:"-"`
	KeyPrefix  string     `db:"key_prefix"   json:"key_prefix"`
	Scopes     []string   `db:"scopes"       json:"scopes"`
	LastUsedAt *time.Time `db:"last_used_at" json:"last_used_at,omitempty"`
	DeletedAt  *time.Time `db:"deleted_at"   json:"-"`
	CreatedAt  time.Time  `db:"created_at"   json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at"   json:"updated_at"`
}

func (k *APIKey) HasScope(scope string) bool {
	return slices.Contains(k.Scopes, scope)
}

// Active reports whether the key has not been revoked.
func (k *APIKey) Active() bool {
	return k.DeletedAt == nil
}
