package llm

import (
	"context"
	"errors"
	"fmt"
)

// Message represents a single message in a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider is the uniform chat-completion capability behind all language
// generation. One request per call, response fully buffered; no retry, no
// streaming.
type Provider interface {
	// Complete sends the message sequence and returns the generated text.
	Complete(ctx context.Context, messages []Message, temperature float64, maxTokens int) (string, error)
	// Name identifies the backend for logging.
	Name() string
}

var (
	// ErrNotConfigured is returned when no provider has been selected yet.
	ErrNotConfigured = errors.New("no LLM provider configured: complete the onboarding process in Settings")
	// ErrMissingCredential is returned when the selected provider has no
	// usable credential at the moment of use.
	ErrMissingCredential = errors.New("OpenAI API key not found: configure it in Settings or set OPENAI_API_KEY")
	// ErrProviderUnavailable is returned when the backend cannot be
	// reached or answers with a non-success status.
	ErrProviderUnavailable = errors.New("LLM provider unavailable")
)

// unavailable wraps a transport or HTTP failure in ErrProviderUnavailable
// with the upstream detail embedded.
func unavailable(provider string, detail error) error {
	return fmt.Errorf("%w: %s: %s", ErrProviderUnavailable, provider, detail)
}

// unavailableStatus reports a non-success upstream HTTP response.
func unavailableStatus(provider string, status int, body string) error {
	return fmt.Errorf("%w: %s returned status %d: %s", ErrProviderUnavailable, provider, status, body)
}
