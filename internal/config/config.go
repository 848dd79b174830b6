package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"fintrack/internal/crypto"
)

type Config struct {
	// Storage
	DataDir string

	// Encryption
	Encrypted     bool
	KDFIterations int

	// Dashboard
	TrendMonths int

	// Logging
	LogLevel string
}

func Load() *Config {
	return &Config{
		DataDir:       getEnv("FINTRACK_DATA_DIR", ""),
		Encrypted:     getEnvBool("FINTRACK_ENCRYPTED", false),
		KDFIterations: getEnvInt("FINTRACK_KDF_ITERATIONS", crypto.DefaultIterations),
		TrendMonths:   getEnvInt("FINTRACK_TREND_MONTHS", 6),
		LogLevel:      getEnv("FINTRACK_LOG_LEVEL", "info"),
	}
}

// Validate collects every configuration problem into a single error.
func (c *Config) Validate() error {
	var errors []string

	if c.DataDir != "" {
		parent := filepath.Dir(c.DataDir)
		if info, err := os.Stat(parent); err == nil && !info.IsDir() {
			errors = append(errors, fmt.Sprintf("data directory parent '%s' is not a directory", parent))
		}
	}

	if c.KDFIterations < 1 {
		errors = append(errors, fmt.Sprintf("invalid KDF iteration count %d: must be at least 1", c.KDFIterations))
	}

	if c.TrendMonths < 1 {
		errors = append(errors, fmt.Sprintf("invalid trend window %d: must be at least 1 month", c.TrendMonths))
	} else if c.TrendMonths > 120 {
		errors = append(errors, fmt.Sprintf("invalid trend window %d: must be at most 120 months", c.TrendMonths))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
