package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
)

// getAttempts bounds retries of idempotent requests that failed before any
// response arrived, e.g. while `cinemind serve` is still binding its port.
const getAttempts = 3

// Client calls the CineMind JSON API on behalf of CLI commands.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	backoff time.Duration
}

// NewClient returns a client for the server at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		// AI endpoints wait on the model.
		http:    &http.Client{Timeout: 2 * time.Minute},
		backoff: 300 * time.Millisecond,
	}
}

// WithToken returns a copy of the client that sends token as a bearer credential.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

func (c *Client) Get(ctx context.Context, path string, result any) error {
	return c.call(ctx, http.MethodGet, path, nil, result)
}

func (c *Client) Post(ctx context.Context, path string, body, result any) error {
	return c.call(ctx, http.MethodPost, path, body, result)
}

func (c *Client) Put(ctx context.Context, path string, body, result any) error {
	return c.call(ctx, http.MethodPut, path, body, result)
}

func (c *Client) Delete(ctx context.Context, path string, result any) error {
	return c.call(ctx, http.MethodDelete, path, nil, result)
}

// Raw GETs path and returns the body unparsed. The caller closes it.
func (c *Client) Raw(ctx context.Context, path string) (io.ReadCloser, error) {
	resp, err := c.send(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		return nil, decode(resp, nil)
	}
	return resp.Body, nil
}

func (c *Client) call(ctx context.Context, method, path string, body, result any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("failed to marshal body: %w", err)
		}
	}
	resp, err := c.send(ctx, method, path, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decode(resp, result)
}

// send performs one request. GETs are retried on transport errors; a
// response of any status ends the retries.
func (c *Client) send(ctx context.Context, method, path string, payload []byte) (*http.Response, error) {
	attempts := uint(1)
	if method == http.MethodGet {
		attempts = getAttempts
	}
	return retry.DoWithData(
		func() (*http.Response, error) {
			req, err := c.newRequest(ctx, method, path, payload)
			if err != nil {
				return nil, retry.Unrecoverable(err)
			}
			resp, err := c.http.Do(req)
			if err != nil {
				return nil, fmt.Errorf("request failed: %w", err)
			}
			return resp, nil
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(c.backoff),
		retry.LastErrorOnly(true),
	)
}

func (c *Client) newRequest(ctx context.Context, method, path string, payload []byte) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// decode turns a 4xx/5xx into a *StatusError and otherwise unmarshals the
// body into result when both are non-empty.
func decode(resp *http.Response, result any) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		se := &StatusError{Code: resp.StatusCode, Message: strings.TrimSpace(string(body))}
		var er ErrorResponse
		if json.Unmarshal(body, &er) == nil && er.Error != "" {
			se.Message = er.Error
		}
		return se
	}
	if result == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// ErrorResponse is the server's error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusError is returned for responses with a 4xx or 5xx status.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.Code, e.Message)
}

// IsStatus reports whether err is a *StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}
