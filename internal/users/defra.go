package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cinemind/cinemind/internal/defra"
	"github.com/cinemind/cinemind/internal/schema"
)

var userFields = []string{"_docID", "firstName", "lastName", "email", "passwordHash", "role", "watchlist", "createdAt"}

type defraUser struct {
	DocID        string    `json:"_docID"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	Role         string    `json:"role"`
	Watchlist    []string  `json:"watchlist"`
	CreatedAt    time.Time `json:"createdAt"`
}

// DefraStore persists accounts in the DefraDB User collection.
type DefraStore struct {
	client *defra.Client

	// Watchlist edits are read-modify-write on the array field.
	mu sync.Mutex
}

// NewDefraStore creates an account store backed by client.
func NewDefraStore(client *defra.Client) *DefraStore {
	return &DefraStore{client: client}
}

func (s *DefraStore) Create(ctx context.Context, u User) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u.Email = strings.ToLower(u.Email)
	if _, err := s.getByEmail(ctx, u.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	doc, err := s.client.Create(ctx, schema.User, map[string]any{
		"firstName":    u.FirstName,
		"lastName":     u.LastName,
		"email":        u.Email,
		"passwordHash": u.PasswordHash,
		"role":         string(u.Role),
		"watchlist":    []string{},
		"createdAt":    u.CreatedAt.Format(time.RFC3339Nano),
	}, userFields...)
	if err != nil {
		if strings.Contains(err.Error(), "unique") {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return decodeUser(doc)
}

func (s *DefraStore) Get(ctx context.Context, id string) (*User, error) {
	if defra.ValidateID(id) != nil {
		return nil, ErrNotFound
	}
	return s.findOne(ctx, defra.NewQuery(schema.User).Filter("_docID", id))
}

func (s *DefraStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.getByEmail(ctx, strings.ToLower(email))
}

func (s *DefraStore) getByEmail(ctx context.Context, email string) (*User, error) {
	return s.findOne(ctx, defra.NewQuery(schema.User).Filter("email", email))
}

func (s *DefraStore) findOne(ctx context.Context, q *defra.QueryBuilder) (*User, error) {
	resp, err := q.Fields(userFields...).Limit(1).Execute(ctx, s.client)
	if err != nil {
		return nil, err
	}
	docs := resp.Docs(schema.User)
	if len(docs) == 0 {
		return nil, ErrNotFound
	}
	return decodeUser(docs[0])
}

func (s *DefraStore) AddToWatchlist(ctx context.Context, userID, movieID string) ([]string, error) {
	return s.editWatchlist(ctx, userID, func(list []string) []string {
		if slices.Contains(list, movieID) {
			return list
		}
		return append(list, movieID)
	})
}

func (s *DefraStore) RemoveFromWatchlist(ctx context.Context, userID, movieID string) ([]string, error) {
	return s.editWatchlist(ctx, userID, func(list []string) []string {
		return slices.DeleteFunc(list, func(id string) bool { return id == movieID })
	})
}

func (s *DefraStore) editWatchlist(ctx context.Context, userID string, edit func([]string) []string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	before := len(u.Watchlist)
	list := edit(slices.Clone(u.Watchlist))
	if len(list) == before {
		return u.Watchlist, nil
	}

	doc, err := s.client.Update(ctx, schema.User, userID, map[string]any{"watchlist": list}, userFields...)
	if err != nil {
		return nil, fmt.Errorf("failed to update watchlist: %w", err)
	}
	if doc == nil {
		return nil, ErrNotFound
	}
	updated, err := decodeUser(doc)
	if err != nil {
		return nil, err
	}
	return updated.Watchlist, nil
}

func (s *DefraStore) Count(ctx context.Context) (int, error) {
	return defra.Count(ctx, s.client, schema.User)
}

func decodeUser(doc map[string]any) (*User, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode user: %w", err)
	}
	var d defraUser
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	return clone(User{
		ID:           d.DocID,
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         Role(d.Role),
		Watchlist:    d.Watchlist,
		CreatedAt:    d.CreatedAt,
	}), nil
}

var _ Store = (*DefraStore)(nil)
