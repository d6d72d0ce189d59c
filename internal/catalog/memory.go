package catalog

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps the catalog in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	movies map[string]Movie
	now    func() time.Time
}

// NewMemoryStore creates an empty in-memory catalog.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		movies: make(map[string]Movie),
		now:    time.Now,
	}
}

func (s *MemoryStore) Backend() string { return "memory" }

func (s *MemoryStore) HealthCheck(ctx context.Context) error { return nil }

// ListProjection returns projections ordered by creation time.
func (s *MemoryStore) ListProjection(ctx context.Context) ([]SnapshotEntry, error) {
	all, err := s.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]SnapshotEntry, len(all))
	for i, m := range all {
		out[i] = m.Snapshot()
	}
	return out, nil
}

// FindByIDs returns matches sorted by id, mirroring how a storage index
// would hand them back rather than in request order.
func (s *MemoryStore) FindByIDs(ctx context.Context, ids []string) ([]Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool, len(ids))
	out := make([]Movie, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if m, ok := s.movies[id]; ok {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) FindAll(ctx context.Context) ([]Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Movie, 0, len(s.movies))
	for _, m := range s.movies {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.movies[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &m, nil
}

func (s *MemoryStore) Create(ctx context.Context, in MovieInput) (*Movie, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	m := Movie{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now}
	in.Apply(&m)
	s.movies[m.ID] = m
	return &m, nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, in MovieInput) (*Movie, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.movies[id]
	if !ok {
		return nil, ErrNotFound
	}
	in.Apply(&m)
	m.UpdatedAt = s.now().UTC()
	s.movies[id] = m
	return &m, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.movies[id]; !ok {
		return ErrNotFound
	}
	delete(s.movies, id)
	return nil
}

func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.movies), nil
}

var _ Store = (*MemoryStore)(nil)
