package defra

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// gqlServer records the last GraphQL request and replies with resp.
func gqlServer(t *testing.T, resp string, last *GQLRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health-check":
			w.WriteHeader(http.StatusOK)
		case "/api/v0/graphql":
			if last != nil {
				if err := json.NewDecoder(r.Body).Decode(last); err != nil {
					t.Errorf("decode request: %v", err)
				}
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(resp))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_HealthCheck(t *testing.T) {
	srv := gqlServer(t, "{}", nil)
	if err := NewClient(srv.URL + "/").HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck() error = %v", err)
	}

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()

	err := NewClient(down.URL).HealthCheck(context.Background())
	if !errors.Is(err, ErrUnhealthy) {
		t.Fatalf("HealthCheck() error = %v, want ErrUnhealthy", err)
	}
}

func TestClient_Create(t *testing.T) {
	var got GQLRequest
	srv := gqlServer(t, `{"data":{"create_Movie":[{"_docID":"bae-123","title":"Heat"}]}}`, &got)

	doc, err := NewClient(srv.URL).Create(context.Background(), "Movie",
		map[string]any{"title": `He said "hi"`}, "_docID", "title")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if doc["_docID"] != "bae-123" {
		t.Errorf("_docID = %v, want bae-123", doc["_docID"])
	}
	if !strings.Contains(got.Query, `create_Movie(input: {title: "He said \"hi\""})`) {
		t.Errorf("query = %s", got.Query)
	}
	if !strings.Contains(got.Query, "{ _docID title }") {
		t.Errorf("query selection = %s", got.Query)
	}
}

func TestClient_CreateGraphQLError(t *testing.T) {
	srv := gqlServer(t, `{"errors":[{"message":"collection not found"}]}`, nil)

	_, err := NewClient(srv.URL).Create(context.Background(), "Movie", map[string]any{"title": "x"})
	if err == nil || !strings.Contains(err.Error(), "collection not found") {
		t.Fatalf("Create() error = %v", err)
	}
}

func TestClient_UpdateNoMatch(t *testing.T) {
	srv := gqlServer(t, `{"data":{"update_Movie":[]}}`, nil)

	doc, err := NewClient(srv.URL).Update(context.Background(), "Movie", "bae-1", map[string]any{"rating": 7.5})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if doc != nil {
		t.Errorf("Update() = %v, want nil for no match", doc)
	}
}

func TestClient_UpdateRejectsUnsafeID(t *testing.T) {
	c := NewClient("http://127.0.0.1:1")
	if _, err := c.Update(context.Background(), "Movie", `x") { _docID } }`, nil); err == nil {
		t.Fatal("Update() should reject unsafe id")
	}
}

func TestClient_Delete(t *testing.T) {
	tests := []struct {
		name string
		resp string
		want bool
	}{
		{"deleted", `{"data":{"delete_Movie":[{"_docID":"bae-1"}]}}`, true},
		{"missing", `{"data":{"delete_Movie":[]}}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := gqlServer(t, tt.resp, nil)
			got, err := NewClient(srv.URL).Delete(context.Background(), "Movie", "bae-1")
			if err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Delete() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClient_ExecuteServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL).Execute(context.Background(), "{ Movie { _docID } }", nil); err == nil {
		t.Fatal("Execute() should fail on 5xx")
	}
}

func TestLiteral(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"plain", `"plain"`},
		{"line\nbreak", `"line\nbreak"`},
		{42, "42"},
		{7.5, "7.5"},
		{true, "true"},
		{nil, "null"},
		{[]string{"a", "b"}, `["a", "b"]`},
		{map[string]any{"year": 1995, "title": "Heat"}, `{title: "Heat", year: 1995}`},
	}
	for _, tt := range tests {
		got, err := literal(tt.in)
		if err != nil {
			t.Fatalf("literal(%v) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("literal(%v) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
