package llm

import (
	"context"
	"errors"
	"fmt"

	"booklab/internal/storage"
)

// FromSettings builds the configured provider from persisted settings.
//
// Returns ErrNotConfigured when no provider has been selected (onboarding
// incomplete). For the hosted backend the credential is resolved from the
// encrypted setting first, then from the environment fallback; an absent
// credential is ErrMissingCredential. The local backend applies its URL and
// model defaults when those settings are unset.
func FromSettings(ctx context.Context, settings storage.SettingsStore, envAPIKey string) (Provider, error) {
	provider, err := settings.Get(ctx, storage.SettingLLMProvider)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && provider == "") {
		return nil, ErrNotConfigured
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read provider setting: %w", err)
	}

	switch provider {
	case "openai":
		apiKey, err := settings.GetDecrypted(ctx, storage.SettingOpenAIAPIKey)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("failed to read API key setting: %w", err)
		}
		if apiKey == "" {
			apiKey = envAPIKey
		}
		if apiKey == "" {
			return nil, ErrMissingCredential
		}
		return NewOpenAIClient(DefaultOpenAIBaseURL, apiKey), nil

	case "ollama":
		baseURL, err := settings.Get(ctx, storage.SettingOllamaURL)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("failed to read ollama URL setting: %w", err)
		}
		model, err := settings.Get(ctx, storage.SettingOllamaModel)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("failed to read ollama model setting: %w", err)
		}
		return NewOllamaClient(baseURL, model), nil

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}
