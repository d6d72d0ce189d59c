package defra

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"
)

// ErrUnhealthy is returned when the DefraDB health check fails.
var ErrUnhealthy = errors.New("defra health check failed")

const (
	graphqlPath = "/api/v0/graphql"
	schemaPath  = "/api/v0/schema"
	healthPath  = "/health-check"
)

// Client talks to a DefraDB node over its HTTP API.
type Client struct {
	url  string
	http *http.Client
}

// NewClient returns a client for the node at url.
func NewClient(url string) *Client {
	return &Client{
		url:  strings.TrimRight(url, "/"),
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

// URL returns the base URL the client talks to.
func (c *Client) URL() string { return c.url }

// GQLRequest is the body of a GraphQL POST.
type GQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// GQLResponse is a decoded GraphQL reply.
type GQLResponse struct {
	Data   map[string]any `json:"data,omitempty"`
	Errors []GQLError     `json:"errors,omitempty"`
}

type GQLError struct {
	Message string `json:"message"`
	Path    []any  `json:"path,omitempty"`
}

// Error returns the first error message, or "" when the reply has none.
func (r *GQLResponse) Error() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// Docs returns the documents listed under key in the response data.
// Entries that are not objects are skipped.
func (r *GQLResponse) Docs(key string) []map[string]any {
	raw, _ := r.Data[key].([]any)
	var docs []map[string]any
	for _, d := range raw {
		if m, ok := d.(map[string]any); ok {
			docs = append(docs, m)
		}
	}
	return docs
}

// HealthCheck returns nil when the node answers its health endpoint with 200.
func (c *Client) HealthCheck(ctx context.Context) error {
	status, _, err := c.do(ctx, http.MethodGet, healthPath, "", nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnhealthy, err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, status)
	}
	return nil
}

// Execute posts a GraphQL document. GraphQL-level errors are returned in the
// response, not as err.
func (c *Client) Execute(ctx context.Context, query string, variables map[string]any) (*GQLResponse, error) {
	body, err := json.Marshal(GQLRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	status, raw, err := c.do(ctx, http.MethodPost, graphqlPath, "application/json", body)
	if err != nil {
		return nil, err
	}
	switch {
	case status >= 500:
		return nil, fmt.Errorf("defra server error (status %d): %s", status, raw)
	case len(raw) == 0:
		return nil, fmt.Errorf("defra returned empty response (status %d)", status)
	}

	var out GQLResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w (body: %s)", err, raw)
	}
	return &out, nil
}

// AddSchema registers an SDL schema with the node.
func (c *Client) AddSchema(ctx context.Context, sdl string) error {
	status, raw, err := c.do(ctx, http.MethodPost, schemaPath, "text/plain", []byte(sdl))
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("schema error (status %d): %s", status, raw)
	}
	return nil
}

// Create inserts a document and returns the selected fields of the new document.
func (c *Client) Create(ctx context.Context, collection string, input map[string]any, fields ...string) (map[string]any, error) {
	in, err := literal(input)
	if err != nil {
		return nil, fmt.Errorf("failed to build input: %w", err)
	}
	docs, err := c.mutate(ctx, "create_"+collection,
		fmt.Sprintf("input: %s", in), fields)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("create_%s returned no document", collection)
	}
	return docs[0], nil
}

// Update patches a document and returns the selected fields after the write.
// A nil map with no error means no document matched docID.
func (c *Client) Update(ctx context.Context, collection, docID string, input map[string]any, fields ...string) (map[string]any, error) {
	if err := ValidateID(docID); err != nil {
		return nil, err
	}
	in, err := literal(input)
	if err != nil {
		return nil, fmt.Errorf("failed to build input: %w", err)
	}
	docs, err := c.mutate(ctx, "update_"+collection,
		fmt.Sprintf("docID: %q, input: %s", docID, in), fields)
	if err != nil || len(docs) == 0 {
		return nil, err
	}
	return docs[0], nil
}

// Delete removes a document and reports whether anything was removed.
func (c *Client) Delete(ctx context.Context, collection, docID string) (bool, error) {
	if err := ValidateID(docID); err != nil {
		return false, err
	}
	docs, err := c.mutate(ctx, "delete_"+collection, fmt.Sprintf("docID: %q", docID), nil)
	return len(docs) > 0, err
}

// mutate runs `mutation { name(args) { fields } }` and returns the documents
// listed under name.
func (c *Client) mutate(ctx context.Context, name, args string, fields []string) ([]map[string]any, error) {
	sel := "_docID"
	if len(fields) > 0 {
		sel = strings.Join(fields, " ")
	}
	resp, err := c.Execute(ctx, fmt.Sprintf("mutation { %s(%s) { %s } }", name, args, sel), nil)
	if err != nil {
		return nil, err
	}
	if msg := resp.Error(); msg != "" {
		return nil, fmt.Errorf("%s: %s", name, msg)
	}
	return resp.Docs(name), nil
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body []byte) (int, []byte, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.url+path, rd)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, raw, nil
}

// literal renders v as a GraphQL input value. Object keys are sorted so the
// same input always yields the same document.
func literal(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "null", nil
	case string:
		// JSON string escapes are a subset of what GraphQL accepts; %q is not.
		b, err := json.Marshal(val)
		return string(b), err
	case int:
		return strconv.Itoa(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64), nil
	case bool:
		return strconv.FormatBool(val), nil
	case []string:
		items := make([]any, len(val))
		for i, s := range val {
			items[i] = s
		}
		return literal(items)
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			s, err := literal(item)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return "[" + strings.Join(parts, ", ") + "]", nil
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			s, err := literal(val[k])
			if err != nil {
				return "", fmt.Errorf("field %q: %w", k, err)
			}
			parts[i] = k + ": " + s
		}
		return "{" + strings.Join(parts, ", ") + "}", nil
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return "", fmt.Errorf("failed to marshal value: %w", err)
		}
		return string(b), nil
	}
}
