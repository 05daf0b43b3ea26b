package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/computeledger/internal/adapter/http/handler"
	"github.com/iho/computeledger/internal/adapter/http/middleware"
	"github.com/iho/computeledger/internal/infrastructure/auth"
	"github.com/iho/computeledger/internal/infrastructure/metrics"
	"github.com/iho/computeledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
// Optional fields left nil disable the matching middleware.
type RouterConfig struct {
	ComputeHandler *handler.ComputeHandler
	WalletHandler  *handler.WalletHandler
	LedgerHandler  *handler.LedgerHandler
	HealthHandler  *handler.HealthHandler

	Logger         zerolog.Logger
	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
	RateLimiter    *middleware.RateLimiter
	TokenVerifier  middleware.TokenVerifier

	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RequestTimeout   time.Duration
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Limit)
		}
		if cfg.TokenVerifier != nil {
			r.Use(middleware.AuthMiddleware(cfg.TokenVerifier))
		}

		// Compute authorizations
		r.Group(func(r chi.Router) {
			r.Use(scope(cfg, auth.ScopeComputeAuthorize))
			if cfg.IdempotencyStore != nil {
				var onReplay func()
				if cfg.Metrics != nil {
					onReplay = cfg.Metrics.IdempotencyReplays.Inc
				}
				r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, onReplay).Wrap)
			}

			r.Post("/compute/request", cfg.ComputeHandler.Request)
		})

		// Audit reads
		r.Group(func(r chi.Router) {
			r.Use(scope(cfg, auth.ScopeLedgerRead))

			r.Get("/wallets/{id}", cfg.WalletHandler.Get)
			r.Get("/wallets/{id}/ledger", cfg.WalletHandler.ListLedger)
			r.Get("/ledger/consistency", cfg.LedgerHandler.CheckConsistency)
		})
	})

	return r
}

// scope enforces a token scope when authentication is enabled.
func scope(cfg RouterConfig, s string) func(http.Handler) http.Handler {
	if cfg.TokenVerifier == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return middleware.RequireScope(s)
}
