package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/noah-isme/zenmarket/internal/config"
	"github.com/noah-isme/zenmarket/internal/health"
	"github.com/noah-isme/zenmarket/internal/obs"
	"github.com/noah-isme/zenmarket/internal/pricing"
	"github.com/noah-isme/zenmarket/internal/ratelimit"
	"github.com/noah-isme/zenmarket/internal/security"
)

type routerDeps struct {
	cfg     *config.Config
	logger  zerolog.Logger
	metrics *obs.HTTPMetrics
	tracing bool
	limiter ratelimit.Limiter
	checker health.Checker
}

func newRouter(d routerDeps) http.Handler {
	cfg := d.cfg

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if d.tracing {
		r.Use(obs.TracingMiddleware)
	}
	if d.metrics != nil {
		r.Use(obs.HTTPObs{Metrics: d.metrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: d.logger}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins(cfg),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{obs.ErrorCodeHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		MaxAge:         300,
	}))
	r.Use(security.Headers{Enable: cfg.SecureHeaders, EnableHSTS: cfg.AppEnv == "production"}.Middleware)

	if d.metrics != nil {
		r.Handle("/metrics", promhttp.Handler())
	}

	healthHandler := health.Handler{Checker: d.checker}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	pricingHandler := &pricing.Handler{Logger: d.logger.With().Str("component", "pricing").Logger()}
	r.Route("/api", func(api chi.Router) {
		api.Use(security.BodyLimit{Max: cfg.MaxBodyBytes}.Middleware)
		if cfg.RateLimitEnabled() && d.limiter != nil {
			api.Use(ratelimit.Handler{
				Limiter: d.limiter,
				Config: ratelimit.Config{
					Key:    ratelimit.ByClientIP,
					Window: cfg.RateLimitWindow,
					Max:    cfg.RateLimitMax,
				},
				OnError: func(err error) {
					d.logger.Warn().Err(err).Msg("rate limiter unavailable")
				},
			}.Middleware)
		}
		pricingHandler.Routes(api)
	})

	return r
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}
