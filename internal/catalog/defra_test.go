package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cinemind/cinemind/internal/defra"
)

// fakeDefra answers GraphQL requests with the result of reply.
func fakeDefra(t *testing.T, reply func(req defra.GQLRequest) string) *DefraStore {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health-check" {
			return
		}
		var req defra.GQLRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		_, _ = w.Write([]byte(reply(req)))
	}))
	t.Cleanup(srv.Close)
	return NewDefraStore(defra.NewClient(srv.URL))
}

func TestDefraStore_FindByIDs(t *testing.T) {
	var query defra.GQLRequest
	s := fakeDefra(t, func(req defra.GQLRequest) string {
		query = req
		return `{"data":{"Movie":[
			{"_docID":"bae-2","title":"Heat","genre":"Crime","description":"d","releaseDate":"1995-12-15","rating":8.3,"createdAt":"2024-01-01T00:00:00Z"},
			{"_docID":"bae-1","title":"Up","genre":"Family","description":"d","releaseDate":"2009-05-29","rating":8.2}
		]}}`
	})

	got, err := s.FindByIDs(context.Background(), []string{"bae-1", "bae-2", `bad"id`})
	if err != nil {
		t.Fatalf("FindByIDs() error = %v", err)
	}
	if len(got) != 2 || got[0].ID != "bae-2" || got[0].Rating != 8.3 {
		t.Errorf("FindByIDs() = %+v", got)
	}
	if got[0].CreatedAt.IsZero() {
		t.Error("CreatedAt not decoded")
	}

	ids, _ := query.Variables["v0"].([]any)
	if len(ids) != 2 {
		t.Errorf("filter ids = %v, want only the two safe ids", query.Variables["v0"])
	}
}

func TestDefraStore_FindByIDsAllUnsafe(t *testing.T) {
	s := fakeDefra(t, func(req defra.GQLRequest) string {
		t.Error("no query expected")
		return "{}"
	})
	got, err := s.FindByIDs(context.Background(), []string{"a b"})
	if err != nil || len(got) != 0 {
		t.Errorf("FindByIDs() = %v, %v", got, err)
	}
}

func TestDefraStore_Create(t *testing.T) {
	s := fakeDefra(t, func(req defra.GQLRequest) string {
		if !strings.Contains(req.Query, "create_Movie") || !strings.Contains(req.Query, `createdAt: "`) {
			t.Errorf("query = %s", req.Query)
		}
		return `{"data":{"create_Movie":[{"_docID":"bae-9","title":"Heat","genre":"Crime","releaseDate":"1995-12-15","rating":8.3}]}}`
	})

	m, err := s.Create(context.Background(), heat())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if m.ID != "bae-9" {
		t.Errorf("ID = %q", m.ID)
	}
}

func TestDefraStore_NotFound(t *testing.T) {
	s := fakeDefra(t, func(req defra.GQLRequest) string {
		switch {
		case strings.Contains(req.Query, "update_Movie"):
			return `{"data":{"update_Movie":[]}}`
		case strings.Contains(req.Query, "delete_Movie"):
			return `{"data":{"delete_Movie":[]}}`
		default:
			return `{"data":{"Movie":[]}}`
		}
	})
	ctx := context.Background()

	if _, err := s.Get(ctx, "bae-x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v", err)
	}
	if _, err := s.Update(ctx, "bae-x", heat()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update() error = %v", err)
	}
	if err := s.Delete(ctx, "bae-x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() error = %v", err)
	}
	if _, err := s.Get(ctx, "not valid"); !errors.Is(err, ErrInvalidID) {
		t.Errorf("Get(invalid) error = %v", err)
	}
}

func TestDefraStore_Count(t *testing.T) {
	s := fakeDefra(t, func(req defra.GQLRequest) string {
		return `{"data":{"_count":3}}`
	})
	n, err := s.Count(context.Background())
	if err != nil || n != 3 {
		t.Errorf("Count() = %d, %v", n, err)
	}
}
