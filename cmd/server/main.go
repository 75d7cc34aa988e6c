package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ndewijer/Stockbroker-Backend/internal/api"
	"github.com/ndewijer/Stockbroker-Backend/internal/app"
	"github.com/ndewijer/Stockbroker-Backend/internal/config"
	"github.com/ndewijer/Stockbroker-Backend/internal/jobs"
	"github.com/ndewijer/Stockbroker-Backend/internal/logging"
	"github.com/ndewijer/Stockbroker-Backend/internal/version"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	log.Logger = logger.Logger

	// Open database, apply migrations and build services
	a, err := app.Open(context.Background(), cfg, logger, nil)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialise application")
	}
	defer a.Close()

	logger.Info().
		Str("database", cfg.Database.Path).
		Str("provider", cfg.MarketData.Provider).
		Str("version", version.Version).
		Msg("Connected to database")

	scheduler := jobs.NewScheduler(logger)
	if cfg.Schedule.CatchUpCron != "" {
		if err := scheduler.AddCatchUp(cfg.Schedule.CatchUpCron, a.Strategies, nil); err != nil {
			logger.Fatal().Err(err).Msg("Failed to register catch-up job")
		}
	}
	scheduler.Start()

	// Create router
	router := api.NewRouter(a.APIServices(), cfg, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info().Str("addr", cfg.Server.Addr).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	scheduler.Stop(ctx)

	logger.Info().Msg("Server exited")
}
