package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/schemesetu/matchengine/internal/api"
	"github.com/schemesetu/matchengine/internal/catalog"
	"github.com/schemesetu/matchengine/internal/config"
	"github.com/schemesetu/matchengine/internal/events"
	"github.com/schemesetu/matchengine/internal/ranking"
	"github.com/schemesetu/matchengine/internal/retrieval"
	"github.com/schemesetu/matchengine/internal/rules"
	"github.com/schemesetu/matchengine/internal/scoring"
	"github.com/schemesetu/matchengine/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger = newLogger(cfg.Logging)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	db, err := store.NewPostgresStore(ctx, cfg.Database.URL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("connected to database")

	// Events (optional)
	var eventsClient events.Client
	if cfg.Events.Enabled && cfg.Events.URL != "" {
		ec, err := events.NewNATSClient(ctx, cfg.Events.URL, logger)
		if err != nil {
			logger.Warn("failed to connect to event bus, running without events", "error", err)
		} else {
			eventsClient = ec
			defer ec.Close()
			logger.Info("connected to event bus")
		}
	}

	// Field mapping
	mapper, err := rules.LoadMappingFile(cfg.Mapping.Path)
	if err != nil {
		logger.Error("failed to load field mapping", "path", cfg.Mapping.Path, "error", err)
		os.Exit(1)
	}
	logger.Info("field mapping ready", "synonyms", mapper.Size())

	// Catalog
	cat := catalog.New(db, logger)
	if err := cat.Load(ctx); err != nil {
		logger.Error("failed to load catalog", "error", err)
		os.Exit(1)
	}
	api.SetCatalogGauge(cat.Size())

	// Retrieval
	embedder, err := retrieval.NewOpenAIEmbedder(cfg.Embedding.Host, cfg.Embedding.Model, cfg.Embedding.Token)
	if err != nil {
		logger.Error("failed to init embedder", "error", err)
		os.Exit(1)
	}
	entries := cat.All()
	ids := make([]string, len(entries))
	vectors := make([][]float64, len(entries))
	for i, e := range entries {
		ids[i] = e.SchemeID
		vectors[i] = e.Embedding
	}
	searcher := retrieval.NewSearcher(embedder, retrieval.NewIndex(ids, vectors))
	logger.Info("vector index built", "size", searcher.IndexSize())

	// Scoring and ranking
	evaluator := rules.NewEvaluator(mapper, cfg.Scoring.NeutralValue, logger)
	eligibility := scoring.NewEligibilityScorer(evaluator, cfg.RuleWeights())
	freshness := scoring.NewFreshnessScorer(cfg.Freshness.HalfLifeDays, cfg.Freshness.NeutralValue)
	ranker, err := ranking.NewRanker(eligibility, freshness, cfg.BlendWeights(), cfg.Ranking.PoolSize, logger)
	if err != nil {
		logger.Error("failed to start ranker", "error", err)
		os.Exit(1)
	}
	defer ranker.Release()

	// API server
	router := api.NewRouter(db, cat, searcher, ranker, mapper, eventsClient, api.RouterConfig{
		AdminToken:    cfg.Server.AdminToken,
		RateLimitRPM:  cfg.Server.RateLimitRPM,
		DefaultTopK:   cfg.Ranking.DefaultTopK,
		MaxCandidates: cfg.Ranking.MaxCandidates,
	}, logger)
	apiServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Metrics server
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler: api.NewMetricsRouter(),
	}

	go func() {
		logger.Info("API server starting", "port", cfg.Server.Port)
		if err := apiServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("API server error", "error", err)
		}
	}()

	go func() {
		logger.Info("metrics server starting", "port", cfg.Server.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = apiServer.Shutdown(shutdownCtx)
	_ = metricsServer.Shutdown(shutdownCtx)

	logger.Info("shutdown complete")
}

func newLogger(lc config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch lc.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if lc.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
