package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_settings_store.go -package=mocks booklab/internal/storage SettingsStore

import (
	"context"
	"database/sql"
	"fmt"

	"booklab/internal/secret"
)

// Recognized setting keys. Unknown keys are accepted and stored opaquely.
const (
	SettingLLMProvider        = "llm_provider"
	SettingOpenAIAPIKey       = "openai_api_key"
	SettingOllamaURL          = "ollama_url"
	SettingOllamaModel        = "ollama_model"
	SettingOnboardingComplete = "onboarding_complete"
	SettingAuthorName         = "author_name"
)

// SettingsStore defines the interface for the key/value settings table.
//
// The openai_api_key value is encrypted before it touches the database and
// decrypted only by GetDecrypted; every other key stores the raw value.
type SettingsStore interface {
	// Get returns the stored value for key as-is (encrypted for the
	// secret key). Returns "" and ErrNotFound when the key is absent.
	Get(ctx context.Context, key string) (string, error)
	// Set upserts a value. The secret key's value is encrypted first.
	Set(ctx context.Context, key, value string) error
	// GetDecrypted returns the value with the secret key decrypted.
	// Returns "" and ErrNotFound when the key is absent.
	GetDecrypted(ctx context.Context, key string) (string, error)
}

// SettingsRepo provides methods for settings operations.
// It implements the SettingsStore interface.
type SettingsRepo struct {
	db    *sql.DB
	codec *secret.Codec
}

// NewSettingsRepo creates a new SettingsRepo.
func NewSettingsRepo(db *sql.DB, codec *secret.Codec) *SettingsRepo {
	return &SettingsRepo{db: db, codec: codec}
}

// Get returns the stored value for key.
// Returns "" and ErrNotFound when the key is absent.
func (r *SettingsRepo) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query setting: %w", err)
	}
	return value, nil
}

// Set upserts a value for key. The openai_api_key value is passed through
// the secret codec before storage.
func (r *SettingsRepo) Set(ctx context.Context, key, value string) error {
	finalValue := value
	if key == SettingOpenAIAPIKey && value != "" {
		encrypted, err := r.codec.Encrypt(value)
		if err != nil {
			return fmt.Errorf("failed to encrypt setting %s: %w", key, err)
		}
		finalValue = encrypted
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, finalValue,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert setting: %w", err)
	}
	return nil
}

// GetDecrypted returns the value for key, decrypting only the secret key.
// Returns "" and ErrNotFound when the key is absent.
func (r *SettingsRepo) GetDecrypted(ctx context.Context, key string) (string, error) {
	value, err := r.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if key == SettingOpenAIAPIKey && value != "" {
		decrypted, err := r.codec.Decrypt(value)
		if err != nil {
			return "", fmt.Errorf("failed to decrypt setting %s: %w", key, err)
		}
		return decrypted, nil
	}
	return value, nil
}
