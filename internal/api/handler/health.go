package handler

import (
	"context"
	"net/http"

	"github.com/kiranshivaraju/studentpulse/internal/api/response"
)

// Pinger is satisfied by store.Store and cache.Cache.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewHealthHandler checks database and cache connectivity.
func NewHealthHandler(db, cache Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"database": "ok",
			"cache":    "ok",
		}

		if err := db.Ping(r.Context()); err != nil {
			checks["database"] = "degraded"
		}
		if err := cache.Ping(r.Context()); err != nil {
			checks["cache"] = "degraded"
		}

		if checks["database"] != "ok" || checks["cache"] != "ok" {
			response.Error(w, http.StatusServiceUnavailable, response.CodeDegraded,
				"One or more services degraded", checks)
			return
		}

		response.JSON(w, map[string]any{
			"status":   "ok",
			"services": checks,
		})
	}
}
