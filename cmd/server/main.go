/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the payroll engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration from the environment, then apply flags
  2. Configure logging
  3. Load the work policy
  4. Initialize SQLite store
  5. Create API handler and router
  6. Start the carryover scheduler
  7. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides SERVER_PORT)
  -db      SQLite database path (overrides DB_PATH)
           Use ":memory:" for in-memory database

ENVIRONMENT:
  SERVER_PORT, DB_PATH, LOG_LEVEL, LOG_PRETTY, CARRYOVER_ENABLED,
  CARRYOVER_INTERVAL, WORK_POLICY_FILE, CORS_ORIGINS (see config/).

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the carryover scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection

EXAMPLES:
  ./server -db="./data/payroll.db"
  LOG_PRETTY=true WORK_POLICY_FILE=policy.json ./server -port=3000

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Environment keys
*/
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/warp/payroll-engine/api"
	"github.com/warp/payroll-engine/config"
	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/logger"
	"github.com/warp/payroll-engine/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Flags
	port := flag.String("port", cfg.ServerPort, "HTTP server port")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path")
	flag.Parse()

	logger.Setup(cfg.LogLevel, cfg.LogPretty)

	policy, err := factory.LoadWorkPolicy(cfg.WorkPolicyFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.WorkPolicyFile).Msg("failed to load work policy")
	}
	log.Info().
		Str("policy", policy.Name).
		Int64("min_normal_seconds", policy.Thresholds.MinNormal).
		Int64("max_normal_seconds", policy.Thresholds.MaxNormal).
		Msg("work policy loaded")

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatal().Err(err).Str("db", *dbPath).Msg("failed to initialize database")
	}
	defer store.Close()

	handler := api.NewHandler(store, policy)
	router := api.NewRouter(handler, cfg.AllowedOrigins())

	scheduler := api.NewCarryoverScheduler(handler)
	scheduler.Enabled = cfg.CarryoverEnabled
	if cfg.CarryoverInterval > 0 {
		scheduler.CheckInterval = cfg.CarryoverInterval
	}
	scheduler.Start()

	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", server.Addr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return
	}

	log.Info().Msg("server stopped")
}
