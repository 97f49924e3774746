package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// DefaultOpenAIBaseURL is the hosted API endpoint.
const DefaultOpenAIBaseURL = "https://api.openai.com"

// openAIModel is the chat model used for all hosted completions.
const openAIModel = "gpt-4"

// OpenAIClient is a Provider backed by the hosted OpenAI chat completions API.
type OpenAIClient struct {
	BaseURL string
	APIKey  string
	client  *http.Client
}

// NewOpenAIClient creates a new hosted-API provider. baseURL is
// parameterized for tests; pass DefaultOpenAIBaseURL in production.
func NewOpenAIClient(baseURL, apiKey string) *OpenAIClient {
	return &OpenAIClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		client:  http.DefaultClient,
	}
}

// Name identifies the backend.
func (c *OpenAIClient) Name() string { return "openai" }

// openAIRequest is the chat completions request payload.
type openAIRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

// openAIResponse is the chat completions response payload.
type openAIResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Complete sends a single chat completion request and returns the reply text.
func (c *OpenAIClient) Complete(ctx context.Context, messages []Message, temperature float64, maxTokens int) (string, error) {
	if c.APIKey == "" {
		return "", ErrMissingCredential
	}

	url := fmt.Sprintf("%s/v1/chat/completions", c.BaseURL)

	payload := openAIRequest{
		Model:       openAIModel,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", unavailable(c.Name(), err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return "", unavailableStatus(c.Name(), resp.StatusCode, string(raw))
	}

	var completion openAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}

	return completion.Choices[0].Message.Content, nil
}
