package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lorryops/internal/config"
	"lorryops/internal/database"
	"lorryops/internal/handler"
	"lorryops/internal/media"
	"lorryops/internal/repository"
	"lorryops/internal/router"
	"lorryops/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger, "api")
	logger.Info().Msg("starting lorryops API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize repositories
	orderRepo := repository.NewOrderRepository(pool, logger)
	paymentRepo := repository.NewPaymentRepository(pool, logger)
	idemRepo := repository.NewIdempotencyRepository(pool, logger)
	shiftRepo := repository.NewShiftRepository(pool, logger)

	// Initialize services
	orderService := service.NewOrderService(orderRepo, paymentRepo, idemRepo, cfg.Order.AdjustmentCodeMaxProbes, logger)
	shiftService := service.NewShiftService(shiftRepo, cfg.Shift.HomeTZOffsetHours, cfg.Shift.CutoffHour, logger)

	// Initialize HTTP handlers
	orderHandler := handler.NewOrderHandler(orderService, logger)
	shiftHandler := handler.NewShiftHandler(shiftService, logger)

	// Proof-of-delivery uploads are optional; without S3 the route is absent
	var mediaHandler *handler.MediaHandler
	if cfg.Media.Enabled {
		uploader, err := media.NewS3Uploader(
			ctx,
			cfg.Media.Bucket,
			cfg.Media.Region,
			cfg.Media.Prefix,
			time.Duration(cfg.Media.UploadTimeout)*time.Second,
			logger,
		)
		if err != nil {
			return fmt.Errorf("failed to initialize media uploader: %w", err)
		}
		mediaHandler = handler.NewMediaHandler(orderService, uploader, logger)
	} else {
		logger.Info().Msg("media uploads disabled")
	}

	// Initialize router
	mux := router.New(orderHandler, shiftHandler, mediaHandler, cfg.Auth.APIKey, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
