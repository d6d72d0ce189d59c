package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cinemind/cinemind/internal/defra"
	"github.com/cinemind/cinemind/internal/schema"
)

var movieFields = []string{
	"_docID", "title", "description", "genre", "releaseDate", "rating",
	"image", "telegramLink", "trailerLink", "createdAt", "updatedAt",
}

// defraMovie mirrors the Movie collection as DefraDB returns it.
type defraMovie struct {
	DocID        string    `json:"_docID"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Genre        string    `json:"genre"`
	ReleaseDate  string    `json:"releaseDate"`
	Rating       float64   `json:"rating"`
	Image        string    `json:"image"`
	TelegramLink string    `json:"telegramLink"`
	TrailerLink  string    `json:"trailerLink"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (d defraMovie) movie() Movie {
	return Movie{
		ID:           d.DocID,
		Title:        d.Title,
		Description:  d.Description,
		Genre:        d.Genre,
		ReleaseDate:  d.ReleaseDate,
		Rating:       d.Rating,
		Image:        d.Image,
		TelegramLink: d.TelegramLink,
		TrailerLink:  d.TrailerLink,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// DefraStore persists the catalog in the DefraDB Movie collection.
type DefraStore struct {
	client *defra.Client
	now    func() time.Time
}

// NewDefraStore creates a store backed by client. The Movie schema must
// already be applied (see schema.Initialize).
func NewDefraStore(client *defra.Client) *DefraStore {
	return &DefraStore{client: client, now: time.Now}
}

func (s *DefraStore) Backend() string { return "defra" }

func (s *DefraStore) HealthCheck(ctx context.Context) error {
	return s.client.HealthCheck(ctx)
}

func (s *DefraStore) ListProjection(ctx context.Context) ([]SnapshotEntry, error) {
	resp, err := defra.NewQuery(schema.Movie).
		Fields("_docID", "title", "genre", "description").
		OrderBy("createdAt", defra.Asc).
		Execute(ctx, s.client)
	if err != nil {
		return nil, err
	}
	movies, err := decodeMovies(resp.Docs(schema.Movie))
	if err != nil {
		return nil, err
	}
	out := make([]SnapshotEntry, len(movies))
	for i, m := range movies {
		out[i] = m.Snapshot()
	}
	return out, nil
}

func (s *DefraStore) FindByIDs(ctx context.Context, ids []string) ([]Movie, error) {
	safe := make([]string, 0, len(ids))
	for _, id := range ids {
		// An id that could never name a document simply has no match.
		if defra.ValidateID(id) == nil {
			safe = append(safe, id)
		}
	}
	if len(safe) == 0 {
		return []Movie{}, nil
	}

	resp, err := defra.NewQuery(schema.Movie).
		FilterIn("_docID", safe).
		Fields(movieFields...).
		Execute(ctx, s.client)
	if err != nil {
		return nil, err
	}
	return decodeMovies(resp.Docs(schema.Movie))
}

func (s *DefraStore) FindAll(ctx context.Context) ([]Movie, error) {
	resp, err := defra.NewQuery(schema.Movie).
		Fields(movieFields...).
		OrderBy("createdAt", defra.Asc).
		Execute(ctx, s.client)
	if err != nil {
		return nil, err
	}
	return decodeMovies(resp.Docs(schema.Movie))
}

func (s *DefraStore) Get(ctx context.Context, id string) (*Movie, error) {
	if defra.ValidateID(id) != nil {
		return nil, ErrInvalidID
	}
	movies, err := s.FindByIDs(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	if len(movies) == 0 {
		return nil, ErrNotFound
	}
	return &movies[0], nil
}

func (s *DefraStore) Create(ctx context.Context, in MovieInput) (*Movie, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}
	now := s.now().UTC().Format(time.RFC3339Nano)
	input := movieInputDoc(in)
	input["createdAt"] = now
	input["updatedAt"] = now

	doc, err := s.client.Create(ctx, schema.Movie, input, movieFields...)
	if err != nil {
		return nil, fmt.Errorf("failed to create movie: %w", err)
	}
	return decodeMovie(doc)
}

func (s *DefraStore) Update(ctx context.Context, id string, in MovieInput) (*Movie, error) {
	if defra.ValidateID(id) != nil {
		return nil, ErrInvalidID
	}
	if err := Validate(in); err != nil {
		return nil, err
	}
	input := movieInputDoc(in)
	input["updatedAt"] = s.now().UTC().Format(time.RFC3339Nano)

	doc, err := s.client.Update(ctx, schema.Movie, id, input, movieFields...)
	if err != nil {
		return nil, fmt.Errorf("failed to update movie: %w", err)
	}
	if doc == nil {
		return nil, ErrNotFound
	}
	return decodeMovie(doc)
}

func (s *DefraStore) Delete(ctx context.Context, id string) error {
	if defra.ValidateID(id) != nil {
		return ErrInvalidID
	}
	deleted, err := s.client.Delete(ctx, schema.Movie, id)
	if err != nil {
		return fmt.Errorf("failed to delete movie: %w", err)
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

func (s *DefraStore) Count(ctx context.Context) (int, error) {
	return defra.Count(ctx, s.client, schema.Movie)
}

func movieInputDoc(in MovieInput) map[string]any {
	return map[string]any{
		"title":        in.Title,
		"description":  in.Description,
		"genre":        in.Genre,
		"releaseDate":  in.ReleaseDate,
		"rating":       in.Rating,
		"image":        in.Image,
		"telegramLink": in.TelegramLink,
		"trailerLink":  in.TrailerLink,
	}
}

func decodeMovie(doc map[string]any) (*Movie, error) {
	var d defraMovie
	if err := remarshal(doc, &d); err != nil {
		return nil, err
	}
	m := d.movie()
	return &m, nil
}

func decodeMovies(docs []map[string]any) ([]Movie, error) {
	out := make([]Movie, 0, len(docs))
	for _, doc := range docs {
		m, err := decodeMovie(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, nil
}

func remarshal(doc map[string]any, v any) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("failed to decode document: %w", err)
	}
	return nil
}

var _ Store = (*DefraStore)(nil)
