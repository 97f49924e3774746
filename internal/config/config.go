package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	DBPath       string
	APIPort      string
	PDFOutputDir string

	// OpenAIAPIKey is the environment fallback credential. The primary
	// source is the encrypted setting stored in the database.
	OpenAIAPIKey string

	// AutosaveDelay is the quiet period before buffered chapter edits
	// are flushed to the database.
	AutosaveDelay time.Duration

	LogLevel  slog.Level
	LogFormat string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates the rest.
// If a .env file exists in the current directory or project root, it will be loaded automatically.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	// Check current directory first, then walk up to find project root (where go.mod is)
	_ = godotenv.Load() // Try current directory

	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ { // Limit search depth
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break // Reached filesystem root
			}
			dir = parent
		}
	}

	cfg := &Config{
		DBPath:       getEnv("DB_PATH", "./data/booklab.db"),
		APIPort:      getEnv("API_PORT", "9000"),
		PDFOutputDir: getEnv("PDF_OUTPUT_DIR", "./exports"),
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		LogFormat:    getEnv("LOG_FORMAT", "text"),
	}

	delayStr := getEnv("AUTOSAVE_DELAY_MS", "2000")
	delayMS, err := strconv.Atoi(delayStr)
	if err != nil {
		return nil, fmt.Errorf("AUTOSAVE_DELAY_MS must be a valid integer: %w", err)
	}
	if delayMS <= 0 {
		return nil, fmt.Errorf("AUTOSAVE_DELAY_MS must be greater than 0")
	}
	cfg.AutosaveDelay = time.Duration(delayMS) * time.Millisecond

	switch getEnv("LOG_LEVEL", "info") {
	case "debug":
		cfg.LogLevel = slog.LevelDebug
	case "info":
		cfg.LogLevel = slog.LevelInfo
	case "warn":
		cfg.LogLevel = slog.LevelWarn
	case "error":
		cfg.LogLevel = slog.LevelError
	default:
		return nil, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error")
	}

	// Create directories for the database file and PDF exports
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := os.MkdirAll(cfg.PDFOutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create PDF output directory: %w", err)
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
