// Package main is the entrypoint for the OncoPilot API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/nmurthy/oncopilot/internal/api"
	"github.com/nmurthy/oncopilot/internal/api/handler"
	mw "github.com/nmurthy/oncopilot/internal/api/middleware"
	"github.com/nmurthy/oncopilot/internal/api/response"
	"github.com/nmurthy/oncopilot/internal/cache"
	"github.com/nmurthy/oncopilot/internal/config"
	"github.com/nmurthy/oncopilot/internal/knowledge"
	"github.com/nmurthy/oncopilot/internal/orchestrator"
	"github.com/nmurthy/oncopilot/internal/reasoning"
	"github.com/nmurthy/oncopilot/internal/store"
	"github.com/nmurthy/oncopilot/internal/trials"
)

const (
	shutdownTimeout = 30 * time.Second
	reapInterval    = 10 * time.Minute
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config — fail fast on invalid config
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "env", cfg.Server.Env,
		"mock_llm", cfg.LLM.UseMock, "mock_vector_store", cfg.Vector.UseMock,
		"mock_trials", cfg.Trials.UseMock, "rag_enabled", cfg.RAG.Enabled)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to database
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	// 3. Run migrations
	if err := store.RunMigrations(cfg.Database.URL, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	// 4. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	// 5. Create providers from config
	reasoner := reasoning.NewProvider(cfg.LLM)
	searcher := knowledge.NewSearcher(cfg.Vector)
	matcher := trials.NewMatcher(cfg.Trials)
	slog.Info("providers initialized",
		"reasoning", reasoner.Name(), "knowledge", searcher.Name(), "trials", matcher.Name())

	// 6. Create store and orchestrator
	pgStore := store.NewPostgresStore(pool)

	registry := orchestrator.NewRegistry()
	svc := orchestrator.NewService(registry, pgStore, searcher, reasoner, matcher, redisCache,
		orchestrator.RetryPolicy{
			MaxRetries:     cfg.Analysis.MaxRetries,
			AttemptTimeout: cfg.Analysis.StepTimeout,
		},
		orchestrator.Options{
			Workers:             cfg.Analysis.Workers,
			QueueDepth:          cfg.Analysis.QueueDepth,
			RAGEnabled:          cfg.RAG.Enabled,
			TopK:                cfg.RAG.TopK,
			SimilarityThreshold: cfg.RAG.SimilarityThreshold,
			TrialMaxResults:     cfg.Trials.MaxResults,
		})
	svc.Start(ctx)
	defer svc.Close()

	// Evict stale terminal jobs on a timer
	go reapLoop(ctx, registry, cfg.Analysis.JobRetention)

	// 7. Build router with dependencies
	deps := api.Dependencies{
		RateLimit: mw.NewRateLimit(redisCache, 60),

		HealthHandler: healthHandler(pgStore, redisCache),

		RunAnalysisHandler:     handler.NewRunAnalysisHandler(svc),
		AnalysisStatusHandler:  handler.NewAnalysisStatusHandler(svc),
		AnalysisResultsHandler: handler.NewAnalysisResultsHandler(svc),
		ListAnalysesHandler:    handler.NewListAnalysesHandler(svc),

		ListPatientsHandler:  handler.NewListPatientsHandler(pgStore),
		GetPatientHandler:    handler.NewGetPatientHandler(pgStore),
		CreatePatientHandler: handler.NewCreatePatientHandler(pgStore),
		DeletePatientHandler: handler.NewDeletePatientHandler(pgStore),
		ListNotesHandler:     handler.NewListNotesHandler(pgStore),
		CreateNoteHandler:    handler.NewCreateNoteHandler(pgStore),
	}

	router := api.NewRouter(deps)

	// 8. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// reapLoop evicts terminal jobs older than the retention window.
func reapLoop(ctx context.Context, registry *orchestrator.Registry, retention time.Duration) {
	ticker := time.NewTicker(reapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := registry.ReapOlderThan(retention); n > 0 {
				slog.Info("reaped stale analysis jobs", "count", n)
			}
		}
	}
}

// healthHandler checks database and cache connectivity.
func healthHandler(s store.Store, c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"database": "ok",
			"cache":    "ok",
		}

		if err := s.Ping(r.Context()); err != nil {
			checks["database"] = "degraded"
		}
		if err := c.Ping(r.Context()); err != nil {
			checks["cache"] = "degraded"
		}

		degraded := checks["database"] != "ok" || checks["cache"] != "ok"
		if degraded {
			response.Error(w, http.StatusServiceUnavailable, "DEGRADED",
				"One or more services degraded", checks)
			return
		}

		response.JSON(w, map[string]any{
			"status":   "ok",
			"services": checks,
		})
	}
}
