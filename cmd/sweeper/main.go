package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lorryops/internal/config"
	"lorryops/internal/database"
	"lorryops/internal/repository"
	"lorryops/internal/service"

	"github.com/go-co-op/gocron/v2"
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
	logger := config.NewLogger(cfg.Logger, "sweeper")
	logger.Info().
		Int("interval_minutes", cfg.Shift.SweepIntervalMinutes).
		Msg("starting lorryops shift sweeper")

	// Set up signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	shiftRepo := repository.NewShiftRepository(pool, logger)
	shiftService := service.NewShiftService(shiftRepo, cfg.Shift.HomeTZOffsetHours, cfg.Shift.CutoffHour, logger)

	// Create a scheduler
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	sweep := func() {
		closed, err := shiftService.CloseStaleShifts(ctx, time.Now().UTC())
		if err != nil {
			logger.Error().Err(err).Msg("shift sweep failed")
			return
		}
		if closed > 0 {
			logger.Info().Int("closed", closed).Msg("shift sweep closed stale shifts")
		}
	}

	// Run immediately on startup, then on the configured interval
	_, err = scheduler.NewJob(
		gocron.DurationJob(time.Duration(cfg.Shift.SweepIntervalMinutes)*time.Minute),
		gocron.NewTask(sweep),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule sweep job: %w", err)
	}

	scheduler.Start()

	// Wait for context cancellation
	<-ctx.Done()

	logger.Info().Msg("shutdown signal received, stopping scheduler")
	if err := scheduler.Shutdown(); err != nil {
		return fmt.Errorf("failed to shutdown scheduler: %w", err)
	}

	logger.Info().Msg("sweeper shutdown completed")
	return nil
}
