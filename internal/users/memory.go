package users

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps accounts in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	users   map[string]User
	byEmail map[string]string
}

// NewMemoryStore creates an empty account store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[string]User),
		byEmail: make(map[string]string),
	}
}

func (s *MemoryStore) Create(ctx context.Context, u User) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u.Email = strings.ToLower(u.Email)
	if _, ok := s.byEmail[u.Email]; ok {
		return nil, ErrEmailTaken
	}
	u.ID = uuid.NewString()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	u.Watchlist = []string{}
	s.users[u.ID] = u
	s.byEmail[u.Email] = u.ID
	return clone(u), nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(u), nil
}

func (s *MemoryStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(s.users[id]), nil
}

func (s *MemoryStore) AddToWatchlist(ctx context.Context, userID, movieID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	if !slices.Contains(u.Watchlist, movieID) {
		u.Watchlist = append(slices.Clone(u.Watchlist), movieID)
		s.users[userID] = u
	}
	return clone(u).Watchlist, nil
}

func (s *MemoryStore) RemoveFromWatchlist(ctx context.Context, userID, movieID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	u.Watchlist = slices.DeleteFunc(slices.Clone(u.Watchlist), func(id string) bool { return id == movieID })
	s.users[userID] = u
	return clone(u).Watchlist, nil
}

func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), nil
}

func clone(u User) *User {
	u.Watchlist = slices.Clone(u.Watchlist)
	if u.Watchlist == nil {
		u.Watchlist = []string{}
	}
	return &u
}

var _ Store = (*MemoryStore)(nil)
