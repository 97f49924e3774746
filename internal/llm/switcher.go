package llm

import (
	"context"
	"sync"

	"booklab/internal/storage"
)

// Switcher holds the currently configured Provider and swaps it when the
// user reconfigures the backend. A failed configuration does not take the
// application down; it just makes generation calls fail with the
// configuration error until a reload succeeds.
//
// Switcher itself implements Provider, so callers never see the swap.
type Switcher struct {
	mu       sync.RWMutex
	provider Provider
	err      error
}

// NewSwitcher creates a Switcher with no provider configured.
func NewSwitcher() *Switcher {
	return &Switcher{err: ErrNotConfigured}
}

// Reload rebuilds the provider from persisted settings. On failure the
// previous provider is discarded and the error is returned (and repeated by
// subsequent Complete calls).
func (s *Switcher) Reload(ctx context.Context, settings storage.SettingsStore, envAPIKey string) error {
	provider, err := FromSettings(ctx, settings, envAPIKey)

	s.mu.Lock()
	s.provider = provider
	s.err = err
	s.mu.Unlock()

	return err
}

// Complete delegates to the current provider, or fails with the stored
// configuration error before any network I/O.
func (s *Switcher) Complete(ctx context.Context, messages []Message, temperature float64, maxTokens int) (string, error) {
	s.mu.RLock()
	provider, err := s.provider, s.err
	s.mu.RUnlock()

	if err != nil {
		return "", err
	}
	return provider.Complete(ctx, messages, temperature, maxTokens)
}

// Name identifies the current backend, or "none" when unconfigured.
func (s *Switcher) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.provider == nil {
		return "none"
	}
	return s.provider.Name()
}
