package config

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger creates a zerolog logger based on the configuration. The service
// name is stamped on every event so the API and the shift sweeper can share
// one log stream.
func NewLogger(cfg LoggerConfig, service string) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var logger zerolog.Logger
	if cfg.Format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Str("service", service).Logger()
	} else {
		logger = zerolog.New(os.Stdout).With().Timestamp().Str("service", service).Logger()
	}

	return logger
}
