// Package main is the entry point for the pension reserve risk prediction
// service. It loads the classifier output and yearly indicator history into
// an in-process session store and serves the risk evaluation API over HTTP.
//
// Startup sequence:
//  1. Load configuration from environment variables (.env file)
//  2. Initialize structured logging
//  3. Wire dependencies via the DI container (session store, repositories,
//     importer, evaluation service)
//  4. Materialize the initial data session from the configured sources
//  5. Start the refresh scheduler when a cron schedule is configured
//  6. Start the HTTP server and wait for a shutdown signal
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chumjikim/retirement-risk-prediction/internal/config"
	"github.com/chumjikim/retirement-risk-prediction/internal/di"
	"github.com/chumjikim/retirement-risk-prediction/internal/scheduler"
	"github.com/chumjikim/retirement-risk-prediction/internal/server"
	"github.com/chumjikim/retirement-risk-prediction/pkg/logger"
)

// initialLoadTimeout bounds the first session load, including any object
// store downloads.
const initialLoadTimeout = 5 * time.Minute

func main() {
	// Load configuration first to get log level
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting pension risk prediction service")

	// Wire all dependencies using DI container
	ctx := context.Background()
	container, err := di.Wire(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer container.SessionDB.Close()

	// Materialize the initial session. The service refuses to start without
	// data; every API response is scoped to a loaded session.
	loadCtx, loadCancel := context.WithTimeout(ctx, initialLoadTimeout)
	info, err := container.Importer.Load(loadCtx)
	loadCancel()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load initial data session")
	}
	container.SessionManager.Swap(info)
	log.Info().
		Str("session_id", info.ID).
		Int("prediction_rows", info.PredictionRows).
		Int("indicator_rows", info.IndicatorRows).
		Int("rejected_rows", info.RejectedRows).
		Bool("from_snapshot", info.FromSnapshot).
		Msg("Initial data session loaded")

	// Periodic refresh is opt-in: without a schedule the session only
	// changes via the manual refresh endpoint.
	var sched *scheduler.Scheduler
	if cfg.RefreshSchedule != "" {
		sched = scheduler.New(log)
		refreshJob := scheduler.NewRefreshJob(container.Importer, container.SessionManager, log)
		if err := sched.AddJob(cfg.RefreshSchedule, refreshJob); err != nil {
			log.Fatal().Err(err).Str("schedule", cfg.RefreshSchedule).Msg("Failed to register refresh job")
		}
		sched.Start()
		log.Info().Str("schedule", cfg.RefreshSchedule).Msg("Refresh scheduler started")
	}

	srv := server.New(server.Config{
		Log:       log,
		Config:    cfg,
		Container: container,
		Port:      cfg.Port,
		DevMode:   cfg.DevMode,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	if sched != nil {
		sched.Stop()
		log.Info().Msg("Refresh scheduler stopped")
	}

	// Graceful shutdown with a bounded window for in-flight requests.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
