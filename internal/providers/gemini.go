package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

const (
	GeminiName         = "gemini"
	geminiDefaultModel = "gemini-2.5-flash"
)

// GeminiConfig holds configuration for the Gemini client.
type GeminiConfig struct {
	APIKey     string
	Model      string       // "gemini-2.5-flash" (default)
	BaseURL    string       // Optional (tests, proxies)
	HTTPClient *http.Client // Optional (tests)
}

// GeminiClient generates text with the Gemini API through the official SDK.
type GeminiClient struct {
	model  string
	client *genai.Client
}

// NewGeminiClient creates a Gemini client. The SDK performs no network I/O
// at construction time.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}
	if cfg.Model == "" {
		cfg.Model = geminiDefaultModel
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiClient{model: cfg.Model, client: client}, nil
}

func (c *GeminiClient) Name() string  { return GeminiName }
func (c *GeminiClient) Model() string { return c.model }

// Generate sends prompt as a single user turn and returns the first
// candidate's text. JSON output is requested but not relied upon.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	)
	if err != nil {
		return "", mapGeminiError(ctx, err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", &UpstreamError{Kind: KindEmptyResponse, Provider: GeminiName}
	}
	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && !part.Thought {
			text.WriteString(part.Text)
		}
	}
	return emptyResponse(GeminiName, text.String())
}

func mapGeminiError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return geminiStatusError(apiErr)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return geminiStatusError(*apiErrPtr)
	}
	return &UpstreamError{Kind: KindTransport, Provider: GeminiName, Err: err}
}

func geminiStatusError(apiErr genai.APIError) error {
	return &UpstreamError{
		Kind:       KindStatus,
		Provider:   GeminiName,
		StatusCode: apiErr.Code,
		Err:        errors.New(apiErr.Message),
	}
}
