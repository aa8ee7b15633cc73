// Package api provides the HTTP API for area forecasts.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/areaforecast/areaforecast/internal/api/handler"
	"github.com/areaforecast/areaforecast/internal/api/middleware"
	"github.com/areaforecast/areaforecast/internal/api/response"
	"github.com/areaforecast/areaforecast/internal/provider/resilience"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version   string
	BuildTime string
	Logger    zerolog.Logger
	Metrics   *middleware.Metrics

	// RequireTLS rejects plain HTTP behind a load balancer.
	RequireTLS bool

	AreaService     handler.AreaForecaster
	HistoryResolver handler.HistoryResolver
	WeatherService  handler.WeatherService

	// Registry exposes upstream circuit state on /ops/status.
	Registry *resilience.Registry

	// Checks gate /ops/ready.
	Checks []handler.DependencyCheck
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware - order matters
	r.Use(middleware.RequestID) // Generate/propagate request ID first
	r.Use(middleware.Tracing())
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequireTLS(cfg.RequireTLS))
	r.Use(middleware.ContentTypeJSON)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		response.NotFound(w, req, "route not found")
	})

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Registry, cfg.Checks...)

	// Create rate limit middleware for different endpoint categories
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit)
	standardRateLimit := middleware.RateLimitByClient(middleware.StandardRateLimit)

	// Ops endpoints (public, not rate limited)
	r.Route("/ops", func(r chi.Router) {
		r.Get("/health", opsHandler.HealthCheck)
		r.Get("/ready", opsHandler.ReadinessCheck)
		r.Get("/status", opsHandler.SystemStatus)
	})

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.RequireJSON)

		// Area forecasts fan out to several upstream calls
		if cfg.AreaService != nil {
			areaHandler := handler.NewAreaHandler(cfg.AreaService, cfg.Logger)
			r.Route("/area-forecast", func(r chi.Router) {
				r.Use(expensiveRateLimit)
				r.Get("/", areaHandler.GetAreaForecast)
				r.Post("/", areaHandler.PostAreaForecast)
			})
		}

		// History may span up to thirty upstream days
		if cfg.HistoryResolver != nil {
			historyHandler := handler.NewHistoryHandler(cfg.HistoryResolver, cfg.Logger)
			r.With(expensiveRateLimit).Get("/history", historyHandler.GetHistory)
		}

		if cfg.WeatherService != nil {
			weatherHandler := handler.NewWeatherHandler(cfg.WeatherService, cfg.Logger)
			r.Group(func(r chi.Router) {
				r.Use(standardRateLimit)
				r.Get("/weather/current", weatherHandler.GetCurrent)
				r.Get("/weather/forecast", weatherHandler.GetForecast)
				r.Post("/weather/forecast", weatherHandler.PostForecast)
				r.Get("/locations/search", weatherHandler.SearchLocations)
			})
		}
	})

	return r
}
