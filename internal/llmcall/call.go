// Package llmcall records generative model calls for traceability. Each
// call keeps its prompt key, the hash of the exact prompt sent, the raw
// response and how the response was judged.
package llmcall

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxResponseRunes bounds the stored response text.
const MaxResponseRunes = 2000

// Call represents a recorded model call.
type Call struct {
	ID string `json:"id"`

	// Timing
	Timestamp time.Time `json:"timestamp"`
	LatencyMs int64     `json:"latency_ms"`

	// Operation is mood_search or metadata_synthesis.
	Operation string `json:"operation"`

	// Prompt traceability
	PromptKey  string `json:"prompt_key"`
	PromptHash string `json:"prompt_hash"`

	// Model info
	Provider string `json:"provider"`
	Model    string `json:"model"`

	Response string `json:"response,omitempty"`

	// Outcome is the validation status of the response (ok, partial,
	// malformed) or upstream_error.
	Outcome string `json:"outcome,omitempty"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// RecordOptions identifies the call being recorded.
type RecordOptions struct {
	Operation  string
	PromptKey  string
	PromptHash string
	Provider   string
	Model      string
}

// New builds a Call from one Generate round trip.
func New(opts RecordOptions, response string, latency time.Duration, err error) *Call {
	c := &Call{
		ID:         uuid.New().String(),
		Timestamp:  time.Now().UTC(),
		LatencyMs:  latency.Milliseconds(),
		Operation:  opts.Operation,
		PromptKey:  opts.PromptKey,
		PromptHash: opts.PromptHash,
		Provider:   opts.Provider,
		Model:      opts.Model,
		Response:   truncate(response, MaxResponseRunes),
		Success:    err == nil,
	}
	if err != nil {
		c.Error = err.Error()
	}
	return c
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "…"
}
