// Package providers talks to external text-generation services. Every
// client returns raw model text; interpreting that text is left to the
// structured package.
package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// GenerativeClient sends one prompt and returns the model's raw text.
// Implementations make a single attempt and never stream.
type GenerativeClient interface {
	// Name returns the provider identifier (e.g. "gemini").
	Name() string

	// Model returns the model the client generates with.
	Model() string

	// Generate blocks until the model answers, the call fails, or ctx is done.
	Generate(ctx context.Context, prompt string) (string, error)
}

// ErrNotConfigured is returned when AI features are disabled because no
// credential was configured.
var ErrNotConfigured = errors.New("AI features are not configured")

// UpstreamKind distinguishes operator-visible failure modes of a provider call.
type UpstreamKind string

const (
	KindTransport     UpstreamKind = "transport"
	KindStatus        UpstreamKind = "status"
	KindTimeout       UpstreamKind = "timeout"
	KindEmptyResponse UpstreamKind = "empty_response"
)

// UpstreamError reports a failed call to a generative service.
type UpstreamError struct {
	Kind       UpstreamKind
	Provider   string
	StatusCode int // set for KindStatus
	Err        error
}

func (e *UpstreamError) Error() string {
	switch e.Kind {
	case KindStatus:
		return fmt.Sprintf("%s: upstream status %d: %v", e.Provider, e.StatusCode, e.Err)
	case KindEmptyResponse:
		return fmt.Sprintf("%s: model returned no text", e.Provider)
	default:
		return fmt.Sprintf("%s: upstream %s: %v", e.Provider, e.Kind, e.Err)
	}
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// IsUpstream reports whether err is an UpstreamError and returns it.
func IsUpstream(err error) (*UpstreamError, bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}

// emptyResponse returns text unchanged, or an empty_response error when the
// model produced nothing but whitespace.
func emptyResponse(provider, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", &UpstreamError{Kind: KindEmptyResponse, Provider: provider}
	}
	return text, nil
}

// timeoutClient bounds every call of the wrapped client.
type timeoutClient struct {
	next    GenerativeClient
	timeout time.Duration
}

// WithTimeout wraps c so each Generate call is abandoned after d. Expiry is
// reported as a KindTimeout UpstreamError. Cancellation of the caller's
// context is returned as the context error, not as an upstream failure.
func WithTimeout(c GenerativeClient, d time.Duration) GenerativeClient {
	if d <= 0 {
		return c
	}
	return &timeoutClient{next: c, timeout: d}
}

func (t *timeoutClient) Name() string  { return t.next.Name() }
func (t *timeoutClient) Model() string { return t.next.Model() }

func (t *timeoutClient) Generate(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		text, err := t.next.Generate(callCtx, prompt)
		done <- result{text, err}
	}()

	// Waiting on callCtx as well means a client that ignores its context
	// still cannot hold the request past the deadline.
	select {
	case r := <-done:
		if r.err != nil && ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return "", t.expired()
		}
		return r.text, r.err
	case <-callCtx.Done():
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return "", t.expired()
	}
}

func (t *timeoutClient) expired() error {
	return &UpstreamError{
		Kind:     KindTimeout,
		Provider: t.next.Name(),
		Err:      fmt.Errorf("no response within %s", t.timeout),
	}
}
