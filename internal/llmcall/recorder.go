package llmcall

import (
	"errors"
	"sync"
)

// DefaultCapacity is the number of calls kept when none is configured.
const DefaultCapacity = 200

// ErrNotFound is returned by Get for an unknown or evicted call.
var ErrNotFound = errors.New("llm call not found")

// Recorder keeps the most recent calls in a fixed-size ring. A nil
// Recorder discards everything.
type Recorder struct {
	mu    sync.RWMutex
	calls []*Call
	next  int
	full  bool
}

// NewRecorder creates a recorder holding up to capacity calls.
func NewRecorder(capacity int) *Recorder {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Recorder{calls: make([]*Call, capacity)}
}

// Record stores a call, evicting the oldest when full.
func (r *Recorder) Record(c *Call) {
	if r == nil || c == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[r.next] = c
	r.next = (r.next + 1) % len(r.calls)
	if r.next == 0 {
		r.full = true
	}
}

// QueryFilter specifies filters for listing calls.
type QueryFilter struct {
	Operation string
	PromptKey string
	Success   *bool
	Limit     int
}

// List returns matching calls, newest first.
func (r *Recorder) List(f QueryFilter) []Call {
	out := []Call{}
	if r == nil {
		return out
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := r.next
	if r.full {
		n = len(r.calls)
	}
	for i := 0; i < n; i++ {
		c := r.calls[(r.next-1-i+len(r.calls))%len(r.calls)]
		if f.Operation != "" && c.Operation != f.Operation {
			continue
		}
		if f.PromptKey != "" && c.PromptKey != f.PromptKey {
			continue
		}
		if f.Success != nil && c.Success != *f.Success {
			continue
		}
		out = append(out, *c)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out
}

// Get returns a call by ID.
func (r *Recorder) Get(id string) (Call, error) {
	if r == nil {
		return Call{}, ErrNotFound
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.calls {
		if c != nil && c.ID == id {
			return *c, nil
		}
	}
	return Call{}, ErrNotFound
}
