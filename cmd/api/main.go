// Command api is the VFL Data API server.
//
// Usage:
//
//	vfl-api
//	API_PORT=8080 STORE_BACKEND=mongo vfl-api

// @title VFL Data API
// @version 1.0.0
// @description Player identity reconciliation for the VFL fantasy league: mismatch scans, match suggestions, batched link repair, box-score CSV import and registry management.
// @host localhost:8000
// @BasePath /api/v1
// @schemes http https
// @contact.name VFL
// @license.name MIT
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

	"github.com/vflfantasy/vfl-data/internal/api"
	"github.com/vflfantasy/vfl-data/internal/cache"
	"github.com/vflfantasy/vfl-data/internal/config"
	"github.com/vflfantasy/vfl-data/internal/listener"
	"github.com/vflfantasy/vfl-data/internal/maintenance"
	"github.com/vflfantasy/vfl-data/internal/storeopen"

	_ "github.com/vflfantasy/vfl-data/docs" // swagger docs
)

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	st, err := storeopen.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open store", "backend", cfg.Backend, "error", err)
		os.Exit(1)
	}
	defer st.Close()

	// Initialize cache
	appCache := cache.New(cfg.CacheEnabled)
	defer appCache.Close()
	logger.Info("Cache initialized", "enabled", cfg.CacheEnabled)

	// Start LISTEN/NOTIFY consumer so registry writes from other processes
	// evict cached searches
	if cfg.Backend == config.BackendPostgres && cfg.CacheEnabled {
		go listener.Start(ctx, cfg.DatabaseURL, appCache, cache.PrefixRegistry, logger)
	}

	// Background link audit
	var auditor *maintenance.Auditor
	if cfg.AuditInterval > 0 {
		auditor = maintenance.NewAuditor(st, logger)
		sched, err := maintenance.Start(ctx, auditor, maintenance.Config{AuditInterval: cfg.AuditInterval}, logger)
		if err != nil {
			logger.Error("Failed to start maintenance scheduler", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := sched.Stop(); err != nil {
				logger.Error("Scheduler shutdown error", "error", err)
			}
		}()
	} else {
		logger.Info("Link audit disabled (AUDIT_INTERVAL=0)")
	}

	router := api.NewRouter(st, appCache, cfg, auditor, logger)

	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting VFL Data API",
			"addr", addr,
			"backend", cfg.Backend,
			"environment", cfg.Environment,
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// Wait for interrupt or listener failure
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		logger.Error("Server failed", "error", err)
	}
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}
