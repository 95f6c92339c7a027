// Command api is the Scoracle site data API server.
//
// Usage:
//
//	scoracle-api
//	API_PORT=8080 SYNC_CRON="0 */6 * * *" scoracle-api
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/albapepper/scoracle-site/internal/api"
	"github.com/albapepper/scoracle-site/internal/api/handler"
	"github.com/albapepper/scoracle-site/internal/cache"
	"github.com/albapepper/scoracle-site/internal/config"
	"github.com/albapepper/scoracle-site/internal/db"
	"github.com/albapepper/scoracle-site/internal/ingest"
	"github.com/albapepper/scoracle-site/internal/schedule"
	"github.com/albapepper/scoracle-site/internal/snapshot"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Load .env if present
	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if cfg.SyncCron != "" {
		if err := schedule.Validate(cfg.SyncCron); err != nil {
			logger.Error("Invalid SYNC_CRON", "error", err)
			os.Exit(1)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	store := snapshot.New(cfg.DataDir, logger)

	appCache := cache.New(cfg.CacheEnabled)
	go appCache.EvictLoop(ctx, time.Minute)
	logger.Info("Cache initialized", "enabled", cfg.CacheEnabled)

	// The Postgres mirror is optional; without it /health/db reports
	// "not configured".
	var dbCheck handler.HealthChecker
	if cfg.DatabaseURL != "" {
		pool, err := db.New(ctx, cfg)
		if err != nil {
			logger.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		dbCheck = pool
		logger.Info("Database connected",
			"min_conns", cfg.DBPoolMinConns,
			"max_conns", cfg.DBPoolMaxConns)
	}

	if cfg.SyncCron != "" {
		pipeline := ingest.FromConfig(cfg, store, logger)
		job := func(ctx context.Context) (ingest.Result, error) {
			result, err := pipeline.RunAll(ctx)
			purged := appCache.Purge("")
			logger.Info("Cache purged after sync", "entries", purged)
			return result, err
		}
		go func() {
			if err := schedule.Start(ctx, cfg.SyncCron, job, logger); err != nil {
				logger.Error("Scheduler stopped", "error", err)
			}
		}()
		logger.Info("Scheduled sync enabled", "cron", cfg.SyncCron)
	}

	router := api.NewRouter(store, appCache, cfg, dbCheck)

	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting Scoracle Site API",
			"addr", addr,
			"environment", cfg.Environment,
			"data_dir", cfg.DataDir,
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}
