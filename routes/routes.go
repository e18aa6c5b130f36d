package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/upb/web-core/app"
	"github.com/upb/web-core/config"
	"github.com/upb/web-core/handlers"
	"github.com/upb/web-core/internal/bizerr"
	"github.com/upb/web-core/middleware"
	"github.com/upb/web-core/utils"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware. Recoverer sits inside the traffic logger so the
	// logged response is the 500 it writes.
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Trace(deps.Config.TrafficLog.TraceHeader))
	r.Use(deps.TrafficLogger.Handler)
	r.Use(chimw.Recoverer)

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(deps.Config),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", deps.Config.TrafficLog.TraceHeader},
		ExposedHeaders:   []string{"X-Request-ID", deps.Config.TrafficLog.TraceHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	health := handlers.NewHealthHandler(nil, deps.Logger)
	if deps.DB != nil {
		health = handlers.NewHealthHandler(deps.DB.DB, deps.Logger)
	}
	users := handlers.NewUserHandler(deps.Users, deps.Logger)

	// Actuator endpoints
	r.Route("/actuator", func(r chi.Router) {
		r.Get("/health", health.HandleHealth)
		r.Get("/health/liveness", health.HandleLiveness)
		r.Method(http.MethodGet, "/prometheus", deps.Metrics.Handler())
	})

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Get("/", users.HandleListUsers)
			r.Post("/", users.HandleCreateUser)
			r.Get("/{id}", users.HandleGetUser)
		})
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteBizError(w, bizerr.Newf(bizerr.CodeNotFound, "endpoint not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
	})

	return r
}

// allowedOrigins keeps local development origins out of production
func allowedOrigins(cfg *config.Config) []string {
	if cfg.IsProduction() {
		return []string{"https://*"}
	}
	return []string{"http://localhost:*", "https://*"}
}
