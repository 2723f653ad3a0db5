package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kiranshivaraju/studentpulse/internal/api/response"
	"github.com/kiranshivaraju/studentpulse/internal/service"
	"github.com/kiranshivaraju/studentpulse/pkg/models"
)

// KeyManager is satisfied by *service.Keys.
type KeyManager interface {
	Create(ctx context.Context, name string, scopes []string) (*service.CreatedKey, error)
	List(ctx context.Context) ([]*models.APIKey, error)
	Revoke(ctx context.Context, id uuid.UUID) error
}

// Keys serves the /api/v1/admin/keys routes.
type Keys struct {
	keys KeyManager
}

func NewKeys(k KeyManager) *Keys {
	return &Keys{keys: k}
}

// Create handles POST /admin/keys. The raw key appears in this response only.
func (h *Keys) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name   string   `json:"name"`
		Scopes []string `json:"scopes"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	created, err := h.keys.Create(r.Context(), req.Name, req.Scopes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Created(w, created)
}

func (h *Keys) List(w http.ResponseWriter, r *http.Request) {
	keys, err := h.keys.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, keys)
}

func (h *Keys) Revoke(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "keyID"))
	if err != nil {
		invalidRequest(w, "Invalid key ID")
		return
	}
	if err := h.keys.Revoke(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	response.NoContent(w)
}
