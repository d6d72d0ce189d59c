package users

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

func fakeDefra(t *testing.T, reply func(q defra.GQLRequest) string) (*DefraStore, *[]string) {
	t.Helper()
	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req defra.GQLRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		queries = append(queries, req.Query)
		_, _ = w.Write([]byte(reply(req)))
	}))
	t.Cleanup(srv.Close)
	return NewDefraStore(defra.NewClient(srv.URL)), &queries
}

func TestDefraStore_CreateEmailTaken(t *testing.T) {
	s, _ := fakeDefra(t, func(q defra.GQLRequest) string {
		return `{"data":{"User":[{"_docID":"bae-1","email":"ann@example.com"}]}}`
	})
	_, err := s.Create(context.Background(), User{FirstName: "Ann", Email: "ANN@example.com"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("Create() error = %v, want ErrEmailTaken", err)
	}
}

func TestDefraStore_Create(t *testing.T) {
	s, queries := fakeDefra(t, func(q defra.GQLRequest) string {
		if strings.Contains(q.Query, "create_User") {
			return `{"data":{"create_User":[{"_docID":"bae-2","firstName":"Ann","email":"ann@example.com","role":"user","watchlist":[]}]}}`
		}
		return `{"data":{"User":[]}}`
	})
	u, err := s.Create(context.Background(), User{FirstName: "Ann", Email: "ann@example.com", Role: RoleUser})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if u.ID != "bae-2" || u.Watchlist == nil {
		t.Errorf("Create() = %+v", u)
	}
	if len(*queries) != 2 {
		t.Errorf("queries = %d, want lookup then create", len(*queries))
	}
}

func TestDefraStore_AddToWatchlistNoop(t *testing.T) {
	s, queries := fakeDefra(t, func(q defra.GQLRequest) string {
		return `{"data":{"User":[{"_docID":"bae-1","watchlist":["m1"]}]}}`
	})
	list, err := s.AddToWatchlist(context.Background(), "bae-1", "m1")
	if err != nil {
		t.Fatalf("AddToWatchlist() error = %v", err)
	}
	if len(list) != 1 {
		t.Errorf("watchlist = %v", list)
	}
	for _, q := range *queries {
		if strings.Contains(q, "update_User") {
			t.Error("no update expected when movie already listed")
		}
	}
}

func TestDefraStore_RemoveFromWatchlist(t *testing.T) {
	s, _ := fakeDefra(t, func(q defra.GQLRequest) string {
		if strings.Contains(q.Query, "update_User") {
			if !strings.Contains(q.Query, `watchlist: ["m2"]`) {
				t.Errorf("update query = %s", q.Query)
			}
			return `{"data":{"update_User":[{"_docID":"bae-1","watchlist":["m2"]}]}}`
		}
		return `{"data":{"User":[{"_docID":"bae-1","watchlist":["m1","m2"]}]}}`
	})
	list, err := s.RemoveFromWatchlist(context.Background(), "bae-1", "m1")
	if err != nil {
		t.Fatalf("RemoveFromWatchlist() error = %v", err)
	}
	if len(list) != 1 || list[0] != "m2" {
		t.Errorf("watchlist = %v, want [m2]", list)
	}
}
