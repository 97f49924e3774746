package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"booklab/internal/autosave"
	"booklab/internal/config"
	"booklab/internal/http"
	"booklab/internal/llm"
	"booklab/internal/pdf"
	"booklab/internal/pipeline"
	"booklab/internal/secret"
	"booklab/internal/storage"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	// Create repository instances
	codec, err := secret.NewCodec()
	if err != nil {
		log.Fatalf("Failed to initialize settings codec: %v", err)
	}
	bookRepo := storage.NewBookRepo(db)
	chapterRepo := storage.NewChapterRepo(db)
	noteRepo := storage.NewNoteRepo(db)
	topicRepo := storage.NewTopicRepo(db)
	settingsRepo := storage.NewSettingsRepo(db, codec)

	// Build the LLM provider from stored settings. A missing or broken
	// configuration must not stop the server: everything except
	// generation still works, and the settings API can repair it.
	ctx := context.Background()
	switcher := llm.NewSwitcher()
	if err := switcher.Reload(ctx, settingsRepo, cfg.OpenAIAPIKey); err != nil {
		slog.Warn("LLM provider not ready", "error", err)
	} else {
		slog.Info("LLM provider initialized", "provider", switcher.Name())
	}

	pipe := pipeline.New(switcher, noteRepo, topicRepo)

	saver := autosave.New(chapterRepo, cfg.AutosaveDelay)
	defer saver.Close()
	slog.Info("Autosave configured", "delay", cfg.AutosaveDelay)

	renderer := pdf.NewRenderer(bookRepo, chapterRepo, cfg.PDFOutputDir)

	// Create router with dependencies
	deps := &http.Deps{
		DB:        db,
		DBPath:    cfg.DBPath,
		Books:     bookRepo,
		Chapters:  chapterRepo,
		Notes:     noteRepo,
		Topics:    topicRepo,
		Settings:  settingsRepo,
		Switcher:  switcher,
		Pipeline:  pipe,
		Saver:     saver,
		Renderer:  renderer,
		EnvAPIKey: cfg.OpenAIAPIKey,
	}
	router := http.NewRouter(deps)

	// Start API server
	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
