// Package http wires the chi router for the reputation service.
package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/InfofriyendsTechnology/RateOn-sub000/pkg/health"
	"github.com/InfofriyendsTechnology/RateOn-sub000/pkg/middleware"
)

// RouterConfig carries everything the router needs.
type RouterConfig struct {
	ServiceName string
	Logger      *slog.Logger
	Health      *health.Handler

	Reviews    *ReviewHandler
	Businesses *BusinessHandler
	Items      *ItemHandler
	Users      *UserHandler
}

// NewRouter builds the service's HTTP routing tree.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))
	r.Use(CORS)

	r.Get("/healthz", cfg.Health.LivenessHandler())
	r.Get("/readyz", cfg.Health.ReadinessHandler())
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/reviews", cfg.Reviews.Routes)
		r.Route("/businesses", cfg.Businesses.Routes)
		r.Route("/items", cfg.Items.Routes)
		r.Route("/users", cfg.Users.Routes)
	})

	return r
}
