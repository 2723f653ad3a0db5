package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	mw "github.com/kiranshivaraju/studentpulse/internal/api/middleware"
	"github.com/kiranshivaraju/studentpulse/internal/api/response"
	"github.com/kiranshivaraju/studentpulse/internal/metrics"
	"github.com/kiranshivaraju/studentpulse/internal/service"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Auth      *mw.Auth
	RateLimit *mw.RateLimit
	Metrics   *metrics.Recorder

	HealthHandler  http.HandlerFunc
	AnalyzeHandler http.HandlerFunc

	Performance      http.HandlerFunc
	Predictions      http.HandlerFunc
	ImprovementAreas http.HandlerFunc
	Trends           http.HandlerFunc
	Snapshots        http.HandlerFunc

	ImportHandler    http.HandlerFunc
	CreateKeyHandler http.HandlerFunc
	ListKeysHandler  http.HandlerFunc
	RevokeKeyHandler http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)
	r.Use(deps.Metrics.Middleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusNotFound, response.CodeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, response.CodeMethodNotAllowed, "Method not allowed", nil)
	})

	// Public
	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Authenticate)
		r.Use(deps.RateLimit.Limit)

		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.RequireScope(service.ScopeRead))

			r.Post("/api/v1/analyze", orNotImplemented(deps.AnalyzeHandler))

			r.Route("/api/v1/students/{studentID}", func(r chi.Router) {
				r.Get("/performance", orNotImplemented(deps.Performance))
				r.Get("/predictions", orNotImplemented(deps.Predictions))
				r.Get("/improvement-areas", orNotImplemented(deps.ImprovementAreas))
				r.Get("/trends", orNotImplemented(deps.Trends))
				r.Get("/snapshots", orNotImplemented(deps.Snapshots))
			})
		})

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.RequireScope(service.ScopeAdmin))

			r.Put("/api/v1/admin/students/{studentID}", orNotImplemented(deps.ImportHandler))
			r.Post("/api/v1/admin/keys", orNotImplemented(deps.CreateKeyHandler))
			r.Get("/api/v1/admin/keys", orNotImplemented(deps.ListKeysHandler))
			r.Delete("/api/v1/admin/keys/{keyID}", orNotImplemented(deps.RevokeKeyHandler))
		})
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, response.CodeNotImplemented, "Endpoint not yet implemented", nil)
	}
}
