package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-auth-core/internal/config"
	"go-auth-core/internal/handler"
	"go-auth-core/internal/metrics"
	"go-auth-core/internal/middleware"
)

type Handlers struct {
	Auth   *handler.AuthHandler
	Docs   *handler.DocsHandler
	Health *handler.HealthHandler
}

func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM, cfg.TrustProxyHeaders)

	// Logging runs outside Recovery so panic logs carry the request id.
	r.Use(middleware.Logging)
	r.Use(middleware.Recovery)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", h.Health.Check)
	if cfg.MetricsEnabled {
		r.Handle("/metrics", metrics.Handler())
	}
	if h.Docs != nil {
		r.Get("/openapi.yaml", h.Docs.OpenAPI)
		r.Get("/swagger", h.Docs.SwaggerUI)
	}

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/register", h.Auth.Register)
			auth.Post("/login", h.Auth.Login)
			auth.Post("/password-reset", h.Auth.RequestPasswordReset)
			auth.Post("/password-reset/confirm", h.Auth.ConfirmPasswordReset)

			auth.Group(func(protected chi.Router) {
				protected.Use(authMiddleware.RequireAuth)
				protected.Get("/me", h.Auth.Me)
				protected.Post("/refresh", h.Auth.Refresh)
				protected.Post("/logout", h.Auth.Logout)
			})
		})
	})

	return r
}
