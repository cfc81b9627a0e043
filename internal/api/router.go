package api

import (
	"net/http"
	"time"

	"log/slog"

	"github.com/wavemarine/deckworth/internal/auth"
	"github.com/wavemarine/deckworth/internal/config"
	"github.com/wavemarine/deckworth/internal/database"
	"github.com/wavemarine/deckworth/internal/listings"
	"github.com/wavemarine/deckworth/internal/metrics"
	"github.com/wavemarine/deckworth/internal/valuation"
)

// Rate limits: a general per-IP ceiling plus a tighter window on estimate
// submissions, which fan out to paid upstreams.
const (
	generalRateLimit  = 60
	generalRateWindow = time.Minute

	submitRateLimit  = 10
	submitRateWindow = 5 * time.Minute
)

// Deps carries the collaborators the routes need. Repositories and the
// collector may be nil.
type Deps struct {
	Listings     *listings.Service
	Estimator    *valuation.Estimator
	Generator    valuation.Generator
	LeadRepo     *database.LeadRepository
	EstimateRepo *database.EstimateRepository
	Collector    *metrics.Collector
	AuthConfig   config.AuthConfig
	Logger       *slog.Logger
}

// SetupRoutes configures all API routes on the mux and returns the root
// handler with rate limiting and metrics instrumentation applied.
func SetupRoutes(mux *http.ServeMux, deps Deps) http.Handler {
	handler := NewHandler(deps.Listings, deps.Generator, deps.Logger)
	valuationHandler := NewValuationHandler(deps.Estimator, deps.Generator, deps.LeadRepo, deps.EstimateRepo, deps.Collector, deps.Logger)
	authHandler := NewAuthHandler(deps.AuthConfig, deps.Logger)

	authMiddleware := auth.Middleware(deps.AuthConfig)
	submitLimiter := NewRateLimiter(submitRateLimit, submitRateWindow)

	mux.HandleFunc("/api/health", handler.Health)
	mux.HandleFunc("/api/health/openai", handler.OpenAIHealth)

	mux.HandleFunc("/api/auth/login", authHandler.Login)

	mux.Handle("/api/estimate", submitLimiter.Middleware(http.HandlerFunc(valuationHandler.Estimate)))
	mux.Handle("/api/valuation", submitLimiter.Middleware(http.HandlerFunc(valuationHandler.Valuate)))

	mux.Handle("/api/listings/smoke", authMiddleware(http.HandlerFunc(handler.ListingsSmoke)))

	if deps.Collector != nil {
		mux.Handle("/metrics", deps.Collector.Handler())
	}

	var root http.Handler = mux
	generalLimiter := NewRateLimiter(generalRateLimit, generalRateWindow)
	root = generalLimiter.Middleware(root)
	if deps.Collector != nil {
		root = deps.Collector.InstrumentHandler(root)
	}
	return root
}
