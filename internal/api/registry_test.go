package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/cobra"
)

type fakeEndpoint struct {
	method, path string
	init         bool
	limited      bool
	group        string
	noCommand    bool
}

func (e *fakeEndpoint) Route() (string, string, http.HandlerFunc) {
	return e.method, e.path, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
}

func (e *fakeEndpoint) RequiresInit() bool { return e.init }
func (e *fakeEndpoint) RateLimited() bool  { return e.limited }
func (e *fakeEndpoint) Group() string      { return e.group }

func (e *fakeEndpoint) Command(client func() *Client) *cobra.Command {
	if e.noCommand {
		return nil
	}
	return &cobra.Command{Use: e.path}
}

func TestRegistry_RegisterRoutesMiddleware(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeEndpoint{method: "GET", path: "/open"})
	r.Register(&fakeEndpoint{method: "GET", path: "/guarded", init: true})
	r.Register(&fakeEndpoint{method: "POST", path: "/limited", limited: true})

	var observed []string
	mux := http.NewServeMux()
	r.RegisterRoutes(mux, Middleware{
		Init: func(next http.HandlerFunc) http.HandlerFunc {
			return func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			}
		},
		Limit: func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			})
		},
		Observe: func(pattern string, next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				observed = append(observed, pattern)
				next.ServeHTTP(w, r)
			})
		},
	})

	tests := []struct {
		method, path string
		want         int
	}{
		{"GET", "/open", http.StatusNoContent},
		{"GET", "/guarded", http.StatusServiceUnavailable},
		{"POST", "/limited", http.StatusTooManyRequests},
		{"POST", "/open", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
		if rec.Code != tt.want {
			t.Errorf("%s %s = %d, want %d", tt.method, tt.path, rec.Code, tt.want)
		}
	}
	if len(observed) != 3 || observed[0] != "GET /open" {
		t.Errorf("observed = %v", observed)
	}
}

func TestRegistry_BuildCommandsGroups(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeEndpoint{method: "GET", path: "health"})
	r.Register(&fakeEndpoint{method: "GET", path: "list", group: "movies"})
	r.Register(&fakeEndpoint{method: "GET", path: "get", group: "movies"})
	r.Register(&fakeEndpoint{method: "GET", path: "ui", noCommand: true})

	root := r.BuildCommands(func() *Client { return nil })

	names := map[string]*cobra.Command{}
	for _, c := range root.Commands() {
		names[c.Name()] = c
	}
	if _, ok := names["health"]; !ok {
		t.Error("ungrouped command missing at top level")
	}
	if _, ok := names["ui"]; ok {
		t.Error("nil command registered")
	}
	movies, ok := names["movies"]
	if !ok {
		t.Fatal("movies group missing")
	}
	if len(movies.Commands()) != 2 {
		t.Errorf("movies has %d commands, want 2", len(movies.Commands()))
	}
}
