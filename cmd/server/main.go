package main

import (
	"context"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"log/slog"

	"github.com/wavemarine/deckworth/internal/api"
	"github.com/wavemarine/deckworth/internal/config"
	"github.com/wavemarine/deckworth/internal/database"
	"github.com/wavemarine/deckworth/internal/listings"
	"github.com/wavemarine/deckworth/internal/logging"
	"github.com/wavemarine/deckworth/internal/metrics"
	"github.com/wavemarine/deckworth/internal/server"
	"github.com/wavemarine/deckworth/internal/valuation"
)

func main() {
	// Local development convenience; production injects real env vars.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to init logger", "error", err)
		os.Exit(1)
	}

	logger.Info("starting deckworth")

	// Database is optional: without it estimates still work, they are just
	// not recorded.
	var leadRepo *database.LeadRepository
	var estimateRepo *database.EstimateRepository
	if cfg.Database.URL != "" {
		dbCfg := database.DefaultConfig()
		dbCfg.URL = cfg.Database.URL
		dbCfg.MaxConnections = cfg.Database.MaxOpenConns
		dbCfg.MaxIdleConnections = cfg.Database.MaxIdleConns
		dbCfg.ConnMaxLifetime = cfg.Database.ConnMaxLifetime

		db, err := database.Connect(context.Background(), dbCfg)
		if err != nil {
			logger.Warn("database unavailable, continuing without persistence", "error", err)
		} else {
			defer db.Close()
			logger.Info("database connected")

			if err := database.RunMigrations(db, "./migrations", logger); err != nil {
				logger.Warn("failed to run migrations, continuing anyway", "error", err)
			}

			leadRepo = database.NewLeadRepository(db)
			estimateRepo = database.NewEstimateRepository(db)
		}
	} else {
		logger.Warn("DATABASE_URL not set, leads and estimates will not be stored")
	}

	listingsSvc := listings.NewService(listings.ConfigFromEnv(), logging.WithComponent(logger, "listings"))

	generatorCfg := valuation.GeneratorConfigFromEnv()
	generator := valuation.NewOpenAIGenerator(generatorCfg, logging.WithComponent(logger, "generation"))
	if !generator.Enabled() {
		logger.Warn("OPENAI_API_KEY not set, valuations fall back to modeled pricing")
	}

	synth := valuation.NewSyntheticGenerator(rand.New(rand.NewSource(time.Now().UnixNano())))
	estimator := valuation.NewEstimator(listingsSvc, generator, synth, logging.WithComponent(logger, "valuation"))

	collector, err := metrics.NewCollector()
	if err != nil {
		logger.Error("failed to init metrics", "error", err)
		os.Exit(1)
	}

	if cfg.Auth.JWTSecret == "" {
		logger.Warn("JWT_SECRET not set, admin endpoints are effectively disabled")
	}

	mux := http.NewServeMux()
	handler := api.SetupRoutes(mux, api.Deps{
		Listings:     listingsSvc,
		Estimator:    estimator,
		Generator:    generator,
		LeadRepo:     leadRepo,
		EstimateRepo: estimateRepo,
		Collector:    collector,
		AuthConfig:   cfg.Auth,
		Logger:       logger,
	})

	srv := server.New(cfg.Server, logger, handler)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	logger.Info("deckworth started", "port", cfg.Server.Port)

	waitForSignal(logger)

	logger.Info("shutting down")
	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	logger.Info("shutdown complete")
}

func waitForSignal(logger *slog.Logger) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	sig := <-c
	logger.Info("received signal", "signal", sig.String())
	signal.Stop(c)
	close(c)
}
