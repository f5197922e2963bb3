package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabasePath string

	// Dataset layout
	DataDir        string // one subdirectory per user
	LabeledIDsPath string // global file enumerating labeled user ids

	// Ingestion configuration
	IngestWorkers int

	// Report defaults
	DistanceUser string
	DistanceMode string
	DistanceYear int

	// Metrics configuration
	MetricsEnabled bool
	MetricsHost    string
	MetricsPort    int

	// Logging configuration
	LogLevel string
}

// Load reads configuration from the environment, after loading a .env file
// if one is present. It fails fast if required variables are missing.
func Load() (*Config, error) {
	// Load .env into the environment (ignore if missing)
	_ = godotenv.Load()

	cfg := &Config{
		// Optional values with defaults
		DatabasePath:   getEnv("DATABASE_PATH", "./geolife.db"),
		IngestWorkers:  getEnvInt("INGEST_WORKERS", 4),
		DistanceUser:   getEnv("DISTANCE_USER", "112"),
		DistanceMode:   getEnv("DISTANCE_MODE", "walk"),
		DistanceYear:   getEnvInt("DISTANCE_YEAR", 2008),
		MetricsEnabled: getEnvBool("METRICS_ENABLED", false),
		MetricsHost:    getEnv("METRICS_HOST", "localhost"),
		MetricsPort:    getEnvInt("METRICS_PORT", 9181),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}

	// Required values
	var missingVars []string

	cfg.DataDir = os.Getenv("DATA_DIR")
	if cfg.DataDir == "" {
		missingVars = append(missingVars, "DATA_DIR")
	}

	cfg.LabeledIDsPath = os.Getenv("LABELED_IDS_PATH")
	if cfg.LabeledIDsPath == "" {
		missingVars = append(missingVars, "LABELED_IDS_PATH")
	}

	if len(missingVars) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %v", missingVars)
	}

	if cfg.IngestWorkers < 1 {
		return nil, fmt.Errorf("INGEST_WORKERS must be at least 1, got %d", cfg.IngestWorkers)
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt gets an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvBool gets a boolean environment variable or returns a default value
func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}
