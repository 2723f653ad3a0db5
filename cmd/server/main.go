// Package main is the entrypoint for the StudentPulse API server.
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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/kiranshivaraju/studentpulse/internal/analysis"
	"github.com/kiranshivaraju/studentpulse/internal/api"
	"github.com/kiranshivaraju/studentpulse/internal/api/handler"
	mw "github.com/kiranshivaraju/studentpulse/internal/api/middleware"
	"github.com/kiranshivaraju/studentpulse/internal/cache"
	"github.com/kiranshivaraju/studentpulse/internal/config"
	"github.com/kiranshivaraju/studentpulse/internal/metrics"
	"github.com/kiranshivaraju/studentpulse/internal/service"
	"github.com/kiranshivaraju/studentpulse/internal/store"
)

const shutdownTimeout = 30 * time.Second

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
	// 1. Load config, fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded",
		"env", cfg.Server.Env,
		"cache_ttl", cfg.Analysis.CacheTTL.String(),
		"strict_records", cfg.Analysis.StrictRecords,
		"snapshots", cfg.Analysis.SnapshotsEnabled,
	)

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

	// 5. Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.New(reg)

	// 6. Build router
	router := newRouter(cfg, store.NewPostgresStore(pool), redisCache, recorder)

	// 7. Start HTTP server
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

// newRouter wires the service layer and handlers onto the API router.
func newRouter(cfg *config.Config, st store.Store, c cache.Cache, rec *metrics.Recorder) http.Handler {
	svc := service.New(st, c, analysis.NewEngine(), service.Options{
		CacheTTL:         cfg.Analysis.CacheTTL,
		StrictRecords:    cfg.Analysis.StrictRecords,
		SnapshotsEnabled: cfg.Analysis.SnapshotsEnabled,
		Metrics:          rec,
		Logger:           slog.Default(),
	})
	students := handler.NewStudents(svc)
	keys := handler.NewKeys(service.NewKeys(st))

	return api.NewRouter(api.Dependencies{
		Auth:      mw.NewAuth(st),
		RateLimit: mw.NewRateLimit(c, cfg.RateLimit.PerMinute),
		Metrics:   rec,

		HealthHandler:  handler.NewHealthHandler(st, c),
		AnalyzeHandler: handler.NewAnalyzeHandler(svc),

		Performance:      students.Performance,
		Predictions:      students.Predictions,
		ImprovementAreas: students.ImprovementAreas,
		Trends:           students.Trends,
		Snapshots:        students.Snapshots,

		ImportHandler:    students.Import,
		CreateKeyHandler: keys.Create,
		ListKeysHandler:  keys.List,
		RevokeKeyHandler: keys.Revoke,
	})
}
