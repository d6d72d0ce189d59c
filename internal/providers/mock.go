package providers

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

const MockClientName = "mock"

// MockClient is a GenerativeClient for tests and offline development.
// It returns Response (or Err) after Latency and records every prompt.
type MockClient struct {
	Response string
	Err      error
	Latency  time.Duration

	// Respond, when set, overrides Response and Err.
	Respond func(prompt string) (string, error)

	calls   atomic.Int64
	mu      sync.Mutex
	prompts []string
}

// NewMockClient creates a mock that answers with response.
func NewMockClient(response string) *MockClient {
	return &MockClient{Response: response}
}

func (c *MockClient) Name() string  { return MockClientName }
func (c *MockClient) Model() string { return "mock" }

func (c *MockClient) Generate(ctx context.Context, prompt string) (string, error) {
	c.calls.Add(1)
	c.mu.Lock()
	c.prompts = append(c.prompts, prompt)
	c.mu.Unlock()

	if c.Latency > 0 {
		select {
		case <-time.After(c.Latency):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if c.Respond != nil {
		return c.Respond(prompt)
	}
	if c.Err != nil {
		return "", c.Err
	}
	return emptyResponse(MockClientName, c.Response)
}

// Calls returns how many times Generate was invoked.
func (c *MockClient) Calls() int {
	return int(c.calls.Load())
}

// LastPrompt returns the most recent prompt, or "" if none.
func (c *MockClient) LastPrompt() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.prompts) == 0 {
		return ""
	}
	return c.prompts[len(c.prompts)-1]
}
