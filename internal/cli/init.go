// Package cli provides common startup utilities for the fintrack binary:
// logging, .env loading, configuration, and the passphrase prompt.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/term"

	"fintrack/internal/config"
	"fintrack/internal/log"
)

// SetupLogger initializes structured logging at the configured level and
// installs it as the slog default.
func SetupLogger(level string) *log.Logger {
	logger := log.New(log.Config{Level: parseLevel(level)})
	log.SetDefault(logger)
	return logger
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LoadEnvFile loads the .env file for local development. Errors are
// ignored: the file is optional.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration or exits on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// ReadPassphrase prompts for the store passphrase without echo. An empty
// passphrase is rejected here, before key derivation ever sees it.
func ReadPassphrase() (string, error) {
	fmt.Fprint(os.Stderr, "Passphrase: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read passphrase: %w", err)
	}
	passphrase := string(raw)
	if passphrase == "" {
		return "", fmt.Errorf("empty passphrase")
	}
	return passphrase, nil
}
