package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenAIGenerateSuccess(t *testing.T) {
	var payload map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o-mini",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"[\"a\",\"b\"]"}}]}`))
	}))
	defer server.Close()

	client, err := NewOpenAIClient(OpenAIConfig{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatal(err)
	}

	text, err := client.Generate(context.Background(), "recommend")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if text != `["a","b"]` {
		t.Errorf("Generate() = %q", text)
	}
	if got, _ := payload["model"].(string); got != openAIDefaultModel {
		t.Errorf("model = %q, want %q", got, openAIDefaultModel)
	}
}

func TestOpenAIGenerateFailureKinds(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantKind   UpstreamKind
		wantStatus int
	}{
		{
			name:       "rate limited",
			status:     http.StatusTooManyRequests,
			body:       `{"error":{"message":"rate limit","type":"rate_limit_error","param":"","code":"rate_limit"}}`,
			wantKind:   KindStatus,
			wantStatus: http.StatusTooManyRequests,
		},
		{
			name:     "no choices",
			status:   http.StatusOK,
			body:     `{"id":"c1","object":"chat.completion","created":1,"model":"m","choices":[]}`,
			wantKind: KindEmptyResponse,
		},
		{
			name:     "blank content",
			status:   http.StatusOK,
			body:     `{"id":"c1","object":"chat.completion","created":1,"model":"m","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"  "}}]}`,
			wantKind: KindEmptyResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client, _ := NewOpenAIClient(OpenAIConfig{APIKey: "k", BaseURL: server.URL})
			_, err := client.Generate(context.Background(), "p")
			ue, ok := IsUpstream(err)
			if !ok {
				t.Fatalf("expected UpstreamError, got %T: %v", err, err)
			}
			if ue.Kind != tt.wantKind || ue.StatusCode != tt.wantStatus {
				t.Errorf("got kind=%s status=%d, want kind=%s status=%d", ue.Kind, ue.StatusCode, tt.wantKind, tt.wantStatus)
			}
		})
	}
}

func TestOpenAIGenerateTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client, _ := NewOpenAIClient(OpenAIConfig{APIKey: "k", BaseURL: url})
	_, err := client.Generate(context.Background(), "p")
	ue, ok := IsUpstream(err)
	if !ok || ue.Kind != KindTransport {
		t.Fatalf("expected transport UpstreamError, got %v", err)
	}
}

func TestNewOpenAIClientRequiresKey(t *testing.T) {
	if _, err := NewOpenAIClient(OpenAIConfig{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("error = %v, want ErrNotConfigured", err)
	}
}
