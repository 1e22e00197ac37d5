// Package main provides the API router setup.
package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/omniretail-ai/support-engine/cmd/support-engine-api/handlers"
	"github.com/omniretail-ai/support-engine/cmd/support-engine-api/middleware"
	"github.com/omniretail-ai/support-engine/internal/config"
	"github.com/omniretail-ai/support-engine/internal/observability"
	"github.com/omniretail-ai/support-engine/internal/rpc"
	"github.com/omniretail-ai/support-engine/pkg/engine"
)

// NewRouter creates the main API router with all routes configured.
func NewRouter(logger *observability.Logger, cfg *config.Config, eng *engine.Engine) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))
	r.Use(chimiddleware.Timeout(cfg.Server.ReadTimeout))

	// Health checks (unauthenticated)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","service":"support-engine"}`))
	})

	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if eng.Snapshot() == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"warming"}`))
			return
		}
		w.Write([]byte(`{"status":"ready"}`))
	})

	supportHandler := handlers.NewSupportHandler(logger, eng)

	authCfg := middleware.AuthConfig{
		Enabled: cfg.Auth.Enabled,
		Token:   cfg.Auth.Token,
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(authCfg))

		r.Post("/lookup", supportHandler.Lookup)
		r.Post("/report", supportHandler.Report)
		r.Get("/operations", supportHandler.Operations)
		r.Get("/schema", supportHandler.Schema)
		r.Get("/audit", supportHandler.Audit)
	})

	// Connect RPC routes
	supportService := rpc.NewSupportService(logger, eng)
	r.Route("/rpc", func(r chi.Router) {
		r.Use(middleware.Auth(authCfg))

		for path, handler := range supportService.Routes() {
			r.Handle(path, handler)
		}
	})

	return r
}
