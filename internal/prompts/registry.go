package prompts

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds the embedded prompts by key.
type Registry struct {
	mu      sync.RWMutex
	prompts map[string]EmbeddedPrompt
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{prompts: make(map[string]EmbeddedPrompt)}
}

// Register adds a prompt, filling in its hash and variables.
func (r *Registry) Register(p EmbeddedPrompt) {
	if p.Hash == "" {
		p.Hash = HashText(p.Text)
	}
	if p.Variables == nil {
		p.Variables = ExtractVariables(p.Text)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompts[p.Key] = p
}

// Get returns the prompt registered under key.
func (r *Registry) Get(key string) (EmbeddedPrompt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.prompts[key]
	if !ok {
		return EmbeddedPrompt{}, fmt.Errorf("prompt not found: %s", key)
	}
	return p, nil
}

// List returns all prompts sorted by key.
func (r *Registry) List() []EmbeddedPrompt {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]EmbeddedPrompt, 0, len(r.prompts))
	for _, p := range r.prompts {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
