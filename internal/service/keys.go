package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/kiranshivaraju/studentpulse/internal/store"
	"github.com/kiranshivaraju/studentpulse/pkg/models"
)

const (
	// KeyPrefixLen is how much of a raw key is stored in clear for lookup.
	KeyPrefixLen = 8
	keyScheme    = "sp_"

	ScopeRead  = models.ScopeRead
	ScopeAdmin = models.ScopeAdmin
)

var (
	ErrInvalidKey  = errors.New("invalid api key request")
	ErrKeyNotFound = errors.New("api key not found")
)

// Keys manages API keys. Raw keys are only ever returned by Create.
type Keys struct {
	store store.Store
	cost  int
}

func NewKeys(st store.Store) *Keys {
	return &Keys{store: st, cost: bcrypt.DefaultCost}
}

// CreatedKey carries the raw key exactly once.
type CreatedKey struct {
	*models.APIKey
	RawKey string `json:"key"`
}

// Create generates a key named name with the given scopes (read when empty).
func (k *Keys) Create(ctx context.Context, name string, scopes []string) (*CreatedKey, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidKey)
	}
	if len(scopes) == 0 {
		scopes = []string{ScopeRead}
	}
	for _, s := range scopes {
		if s != ScopeRead && s != ScopeAdmin {
			return nil, fmt.Errorf("%w: unknown scope %q", ErrInvalidKey, s)
		}
	}
	scopes = slices.Compact(slices.Sorted(slices.Values(scopes)))

	raw, err := generateKey()
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), k.cost)
	if err != nil {
		return nil, fmt.Errorf("hash api key: %w", err)
	}

	now := time.Now().UTC()
	key := &models.APIKey{
		ID:        uuid.New(),
		Name:      name,
		KeyHash:   string(hash),
		KeyPrefix: raw[:KeyPrefixLen],
		Scopes:    scopes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := k.store.CreateAPIKey(ctx, key); err != nil {
		return nil, fmt.Errorf("create api key: %w", err)
	}
	return &CreatedKey{APIKey: key, RawKey: raw}, nil
}

func (k *Keys) List(ctx context.Context) ([]*models.APIKey, error) {
	keys, err := k.store.ListAPIKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	if keys == nil {
		keys = []*models.APIKey{}
	}
	return keys, nil
}

func (k *Keys) Revoke(ctx context.Context, id uuid.UUID) error {
	err := k.store.RevokeAPIKey(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrKeyNotFound
	}
	if err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}
	return nil
}

func generateKey() (string, error) {
	b := make([]byte, 20)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate api key: %w", err)
	}
	return keyScheme + hex.EncodeToString(b), nil
}
