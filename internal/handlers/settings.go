package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"booklab/internal/contextutil"
	"booklab/internal/llm"
	"booklab/internal/storage"
)

// SettingsHandler handles HTTP requests for application settings.
type SettingsHandler struct {
	settings storage.SettingsStore
	switcher *llm.Switcher
	// Fallback API key from the environment, used when no key is stored.
	envAPIKey string
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(settings storage.SettingsStore, switcher *llm.Switcher, envAPIKey string) *SettingsHandler {
	return &SettingsHandler{
		settings:  settings,
		switcher:  switcher,
		envAPIKey: envAPIKey,
	}
}

// SettingResponse represents a single setting.
type SettingResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SetSettingRequest carries a setting value.
type SetSettingRequest struct {
	Value string `json:"value"`
}

// providerKeys are the settings whose change requires rebuilding the
// active LLM provider.
var providerKeys = map[string]bool{
	storage.SettingLLMProvider:  true,
	storage.SettingOpenAIAPIKey: true,
	storage.SettingOllamaURL:    true,
	storage.SettingOllamaModel:  true,
}

// Get returns a setting's value, decrypted when the key is the stored
// API key. An absent key responds 200 with an empty value so clients
// can probe keys like onboarding_complete without special-casing 404.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key := chi.URLParam(r, "key")

	value, err := h.settings.GetDecrypted(ctx, key)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		handleError(ctx, w, err, "Failed to get setting")
		return
	}
	respondJSON(w, http.StatusOK, SettingResponse{Key: key, Value: value})
}

// Set upserts a setting and, when the key affects the LLM provider,
// rebuilds the active provider from the new configuration. A provider
// rebuild failure does not undo the write; the error surfaces on the
// next generation request.
func (h *SettingsHandler) Set(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)
	key := chi.URLParam(r, "key")

	var req SetSettingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.settings.Set(ctx, key, req.Value); err != nil {
		handleError(ctx, w, err, "Failed to save setting")
		return
	}

	if providerKeys[key] {
		if err := h.switcher.Reload(ctx, h.settings, h.envAPIKey); err != nil {
			logger.WarnContext(ctx, "provider reload failed after settings change",
				"key", key, "error", err)
		}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"provider": h.switcher.Name(),
	})
}
