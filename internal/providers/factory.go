package providers

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Config selects and configures the generative client.
type Config struct {
	Provider string // "gemini" (default), "openai", "mock"
	Endpoint string
	Model    string
	APIKey   string
	Timeout  time.Duration

	// MockResponse is returned by the mock provider.
	MockResponse string
}

// New builds the configured client wrapped with the call timeout.
// An empty APIKey yields ErrNotConfigured for real providers.
func New(ctx context.Context, cfg Config) (GenerativeClient, error) {
	var (
		client GenerativeClient
		err    error
	)
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", GeminiName:
		client, err = NewGeminiClient(ctx, GeminiConfig{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.Endpoint,
		})
	case OpenAIName:
		client, err = NewOpenAIClient(OpenAIConfig{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.Endpoint,
		})
	case MockClientName:
		client = NewMockClient(cfg.MockResponse)
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return WithTimeout(client, cfg.Timeout), nil
}
