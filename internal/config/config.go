package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Order    OrderConfig
	Shift    ShiftConfig
	Media    MediaConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	APIKey string
}

// OrderConfig holds order lifecycle configuration.
type OrderConfig struct {
	// AdjustmentCodeMaxProbes bounds the candidate search when deriving an
	// adjustment order code from its parent's code.
	AdjustmentCodeMaxProbes int
}

// ShiftConfig holds driver shift closure configuration. The home timezone is
// a fixed UTC offset; the cutoff is the local hour at which open shifts are
// considered stale.
type ShiftConfig struct {
	HomeTZOffsetHours    int
	CutoffHour           int
	SweepIntervalMinutes int
}

// MediaConfig holds S3 configuration for proof-of-delivery photos.
type MediaConfig struct {
	Enabled       bool
	Bucket        string
	Region        string
	Prefix        string // Path prefix within bucket (e.g., "pod/")
	UploadTimeout int    // seconds
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "lorryops"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 5),
			MaxConnLifetime: getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			APIKey: getEnv("API_KEY", ""),
		},
		Order: OrderConfig{
			AdjustmentCodeMaxProbes: getEnvAsInt("ADJUSTMENT_CODE_MAX_PROBES", 25),
		},
		Shift: ShiftConfig{
			HomeTZOffsetHours:    getEnvAsInt("HOME_TZ_OFFSET_HOURS", 8),
			CutoffHour:           getEnvAsInt("SHIFT_CUTOFF_HOUR", 3),
			SweepIntervalMinutes: getEnvAsInt("SHIFT_SWEEP_INTERVAL_MINUTES", 60),
		},
		Media: MediaConfig{
			Enabled:       getEnvAsBool("MEDIA_S3_ENABLED", false),
			Bucket:        getEnv("MEDIA_S3_BUCKET", ""),
			Region:        getEnv("MEDIA_S3_REGION", "ap-southeast-1"),
			Prefix:        getEnv("MEDIA_S3_PREFIX", "pod/"),
			UploadTimeout: getEnvAsInt("MEDIA_UPLOAD_TIMEOUT", 10),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.Database.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	if c.Auth.APIKey == "" {
		return fmt.Errorf("API key is required")
	}

	if c.Order.AdjustmentCodeMaxProbes < 1 {
		return fmt.Errorf("adjustment code max probes must be at least 1")
	}

	if c.Shift.HomeTZOffsetHours < -12 || c.Shift.HomeTZOffsetHours > 14 {
		return fmt.Errorf("invalid home timezone offset: %d", c.Shift.HomeTZOffsetHours)
	}

	if c.Shift.CutoffHour < 0 || c.Shift.CutoffHour > 23 {
		return fmt.Errorf("invalid shift cutoff hour: %d", c.Shift.CutoffHour)
	}

	if c.Shift.SweepIntervalMinutes < 1 {
		return fmt.Errorf("shift sweep interval must be at least 1 minute")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.Media.Enabled {
		if c.Media.Bucket == "" {
			return fmt.Errorf("media S3 bucket is required when media upload is enabled")
		}
		if c.Media.Region == "" {
			return fmt.Errorf("media S3 region is required when media upload is enabled")
		}
		if c.Media.UploadTimeout < 1 {
			return fmt.Errorf("media upload timeout must be at least 1 second")
		}
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
