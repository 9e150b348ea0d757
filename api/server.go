/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. Metrics:    Request counter by route pattern
  5. CORS:       Cross-origin requests for the frontend

ROUTE GROUPS:
  /api/curves          Curve construction
  /api/locks           Newest locks
  /api/locks/*         Single locks
  /api/tokens/*        Per-token views
  /api/addresses/*     Per-wallet views
  /api/watchlist/*     Watched tokens
  /api/profiles/*      Wallet profiles
  /healthz             Liveness
  /metrics             Prometheus

SECURITY NOTE:
  No authentication middleware. Every endpoint is public and read-only
  except the local watchlist and profiles.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/megascan/serve.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// DefaultAllowedOrigins are the local frontend dev servers.
var DefaultAllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}

// NewRouter creates a new router with all routes configured. An empty
// allowedOrigins uses DefaultAllowedOrigins.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	if len(allowedOrigins) == 0 {
		allowedOrigins = DefaultAllowedOrigins
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(h.Metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", h.Metrics.Handler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Post("/curves", h.BuildCurve)

		r.Get("/locks", h.ListLocks)

		r.Route("/locks/{id}", func(r chi.Router) {
			r.Get("/", h.GetLock)
			r.Get("/value", h.GetLockValue)
		})

		r.Route("/tokens/{address}", func(r chi.Router) {
			r.Get("/", h.GetToken)
			r.Get("/locks", h.GetTokenLocks)
			r.Get("/snapshot", h.GetTokenSnapshot)
			r.Get("/developer", h.GetTokenDeveloper)
			r.Get("/activity", h.GetTokenActivity)
		})

		r.Route("/addresses/{address}", func(r chi.Router) {
			r.Get("/locks", h.GetAddressLocks)
			r.Get("/burns", h.GetAddressBurns)
			r.Get("/positions", h.GetAddressPositions)
		})

		r.Route("/watchlist", func(r chi.Router) {
			r.Get("/", h.ListWatchlist)
			r.Post("/", h.AddWatch)
			r.Delete("/{address}", h.RemoveWatch)
		})

		r.Route("/profiles/{address}", func(r chi.Router) {
			r.Get("/", h.GetProfile)
			r.Put("/", h.SaveProfile)
		})
	})

	return r
}
