package router

import (
	"net/http"

	"github.com/agora-forum/agora/backend/internal/setup"
	mw "github.com/agora-forum/agora/shared/middleware"
	"github.com/agora-forum/agora/shared/middleware/metrics"
	"github.com/agora-forum/agora/shared/utils"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// New creates the chi router with all routes.
// Rate limiters set with Use count requests of every endpoint in that group combined.
func New(deps *setup.Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(mw.Logging)
	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(chimw.Compress(5))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: deps.Config.Public.CorsAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(mw.SecurityHeaders(deps.Config.Public.SecureHeaders))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSONError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	h := deps.Handler

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/users", func(r chi.Router) {
		// per client ip, counted before the token is checked, so admins are limited here too
		r.Use(mw.RateLimit(deps.IPLimiter, "ip", mw.GetIP))
		r.Use(deps.AuthMiddleware.NeedAuth())
		r.Use(mw.RateLimit(deps.UserLimiter, "user", mw.GetUserIDFromContext))

		r.Get("/saved", h.GetSavedItems)
		r.Get("/{userId}/content", h.GetUserContent)
		r.Get("/{userId}/liked-content", h.GetLikedContent)
	})

	return r
}
