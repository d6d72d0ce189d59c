package providers

import (
	"context"
	"errors"
	"net/http"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	OpenAIName         = "openai"
	openAIDefaultModel = "gpt-4o-mini"
)

// OpenAIConfig holds configuration for an OpenAI-compatible chat client.
// Setting BaseURL points it at any compatible endpoint, including Gemini's
// OpenAI surface or OpenRouter.
type OpenAIConfig struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// OpenAIClient generates text through the chat completions API.
type OpenAIClient struct {
	model  string
	client openai.Client
}

// NewOpenAIClient creates an OpenAI-compatible client.
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}
	if cfg.Model == "" {
		cfg.Model = openAIDefaultModel
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		// One attempt per call; callers see every upstream failure.
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIClient{model: cfg.Model, client: openai.NewClient(opts...)}, nil
}

func (c *OpenAIClient) Name() string  { return OpenAIName }
func (c *OpenAIClient) Model() string { return c.model }

func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
	})
	if err != nil {
		return "", mapOpenAIError(ctx, err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", &UpstreamError{Kind: KindEmptyResponse, Provider: OpenAIName}
	}
	return emptyResponse(OpenAIName, resp.Choices[0].Message.Content)
}

func mapOpenAIError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = http.StatusText(apiErr.StatusCode)
		}
		return &UpstreamError{
			Kind:       KindStatus,
			Provider:   OpenAIName,
			StatusCode: apiErr.StatusCode,
			Err:        errors.New(msg),
		}
	}
	return &UpstreamError{Kind: KindTransport, Provider: OpenAIName, Err: err}
}
