/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:     Unique ID per request, echoed in logs and errors
  2. RealIP:        Client address from X-Forwarded-For / X-Real-IP
  3. RequestLogger: zap request log and HTTP metrics (middleware.go)
  4. Recoverer:     Panic recovery (500 instead of crash)
  5. BodyLimit:     Caps request bodies (server.max_body_bytes)
  6. CORS:          Cross-origin requests (server.cors.allow_origins)

ROUTE GROUPS:
  /api/extract, /api/analyze, /api/roster-report   Stateless parsing
  /api/runs/*                                      Stored runs and exports
  /api/profiles/*                                  Department profiles
  /api/directory/*                                 Department directories
  /api/consolidate                                 Year workbook
  /healthz, /metrics                               Operations

SECURITY NOTE:
  No authentication middleware. Deploy behind an authenticating proxy.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/warp/attendance-engine/config"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, cfg config.ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(h.Logger, h.Metrics))
	r.Use(middleware.Recoverer)
	if cfg.MaxBodyBytes > 0 {
		r.Use(BodyLimit(cfg.MaxBodyBytes))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORS.AllowOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Content-Disposition", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/healthz", h.Healthz)
	r.Handle("/metrics", h.Metrics.Handler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Post("/extract", h.Extract)
		r.Post("/analyze", h.Analyze)
		r.Post("/roster-report", h.RosterReport)
		r.Post("/consolidate", h.Consolidate)

		// Run routes
		r.Route("/runs", func(r chi.Router) {
			r.Get("/", h.ListRuns)
			r.Post("/", h.CreateRun)
			r.Post("/compare", h.CompareRuns)
			r.Get("/{id}", h.GetRun)
			r.Delete("/{id}", h.DeleteRun)
			r.Get("/{id}/analysis", h.RunAnalysis)
			r.Get("/{id}/roster-report", h.RunRosterReport)
			r.Get("/{id}/export.xlsx", h.ExportXLSX)
			r.Get("/{id}/export.csv", h.ExportCSV)
		})

		// Profile routes
		r.Route("/profiles", func(r chi.Router) {
			r.Get("/", h.ListProfiles)
			r.Post("/", h.CreateProfile)
			r.Get("/{id}", h.GetProfile)
		})

		// Directory routes
		r.Route("/directory/{department}", func(r chi.Router) {
			r.Get("/", h.GetDirectory)
			r.Put("/", h.PutDirectory)
			r.Get("/{pn}", h.GetDirectoryEntry)
		})
	})

	return r
}
