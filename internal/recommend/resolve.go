package recommend

import (
	"context"
	"fmt"

	"github.com/cinemind/cinemind/internal/catalog"
)

// Resolver turns ranked ids into catalog records.
type Resolver struct {
	store catalog.Store
}

// NewResolver creates a resolver reading from store.
func NewResolver(store catalog.Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve looks up ids in one batch and returns the matching movies in the
// order of ids. Ids with no matching record are skipped, as are repeats.
// The returned slice is never nil. The second result is the number of ids
// that could not be resolved.
func (r *Resolver) Resolve(ctx context.Context, ids []string) ([]catalog.Movie, int, error) {
	if len(ids) == 0 {
		return []catalog.Movie{}, 0, nil
	}

	found, err := r.store.FindByIDs(ctx, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to resolve recommendations: %w", err)
	}

	byID := make(map[string]catalog.Movie, len(found))
	for _, m := range found {
		byID[m.ID] = m
	}

	out := make([]catalog.Movie, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	unknown := 0
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		m, ok := byID[id]
		if !ok {
			unknown++
			continue
		}
		out = append(out, m)
	}
	return out, unknown, nil
}
