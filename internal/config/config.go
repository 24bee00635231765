// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir           string // Base directory for the session store, downloads and snapshots
	PredictionsSource string // Classifier output CSV: local path or s3:// URI
	HistorySource     string // Yearly indicator CSV: local path or s3:// URI
	RefreshSchedule   string // Optional cron expression for scheduled data refresh
	LogLevel          string
	Port              int
	DevMode           bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Resolve data directory to an absolute path and make sure it exists
	dataDir := getEnv("PENSION_DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory to absolute path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	port, err := strconv.Atoi(getEnv("PORT", "8090"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT value: %w", err)
	}

	cfg := &Config{
		DataDir:           absDataDir,
		PredictionsSource: getEnv("PREDICTIONS_SOURCE", filepath.Join(absDataDir, "prediction_2024_extended.csv")),
		HistorySource:     getEnv("HISTORY_SOURCE", filepath.Join(absDataDir, "pension_indicators_2014_2024.csv")),
		RefreshSchedule:   getEnv("REFRESH_SCHEDULE", ""),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		Port:              port,
		DevMode:           getEnv("DEV_MODE", "false") == "true",
	}

	return cfg, nil
}

// SessionDBPath returns the session store location inside the data directory.
func (c *Config) SessionDBPath() string {
	return filepath.Join(c.DataDir, "session.db")
}

// getEnv retrieves an environment variable value, returning a fallback if
// the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
