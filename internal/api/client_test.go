package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClient_TokenAndDecode(t *testing.T) {
	var gotAuth, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		_ = json.NewEncoder(w).Encode(map[string]string{"echo": body["mood"]})
	}))
	defer srv.Close()

	var out map[string]string
	err := NewClient(srv.URL).WithToken("tok").Post(context.Background(), "/x", map[string]string{"mood": "cozy"}, &out)
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	if out["echo"] != "cozy" {
		t.Errorf("decoded = %v", out)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotType != "application/json" {
		t.Errorf("Content-Type = %q", gotType)
	}
}

func TestClient_NoTokenNoHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h := r.Header.Get("Authorization"); h != "" {
			t.Errorf("unexpected Authorization %q", h)
		}
	}))
	defer srv.Close()

	if err := NewClient(srv.URL).Get(context.Background(), "/", nil); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
}

func TestClient_StatusError(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"json error", `{"error":"admin role required"}`, "admin role required"},
		{"plain text", "rate limit exceeded", "rate limit exceeded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			err := NewClient(srv.URL).Delete(context.Background(), "/api/movies/1", nil)
			var se *StatusError
			if !errors.As(err, &se) {
				t.Fatalf("error = %v, want *StatusError", err)
			}
			if se.Code != http.StatusForbidden || se.Message != tt.wantMsg {
				t.Errorf("StatusError = %+v", se)
			}
		})
	}
}

func TestClient_Raw(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, "cinemind_up 1\n")
	}))
	defer srv.Close()

	body, err := NewClient(srv.URL).Raw(context.Background(), "/metrics")
	if err != nil {
		t.Fatalf("Raw() error = %v", err)
	}
	data, _ := io.ReadAll(body)
	body.Close()
	if string(data) != "cinemind_up 1\n" {
		t.Errorf("body = %q", data)
	}

	if _, err := NewClient(srv.URL).Raw(context.Background(), "/missing"); err == nil {
		t.Error("Raw(/missing) succeeded, want error")
	}
}

// flakyServer drops the connection of the first request it sees.
func flakyServer(t *testing.T, hits *int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hits++
		if *hits == 1 {
			conn, _, err := w.(http.Hijacker).Hijack()
			if err != nil {
				t.Errorf("hijack: %v", err)
				return
			}
			conn.Close()
			return
		}
		io.WriteString(w, `{"ok":true}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_RetriesGetOnly(t *testing.T) {
	t.Run("GET retried", func(t *testing.T) {
		var hits int
		c := NewClient(flakyServer(t, &hits).URL)
		c.backoff = time.Millisecond

		var out map[string]bool
		if err := c.Get(context.Background(), "/x", &out); err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if hits != 2 || !out["ok"] {
			t.Errorf("hits = %d, out = %v", hits, out)
		}
	})

	t.Run("POST not retried", func(t *testing.T) {
		var hits int
		c := NewClient(flakyServer(t, &hits).URL)
		c.backoff = time.Millisecond

		if err := c.Post(context.Background(), "/x", map[string]string{}, nil); err == nil {
			t.Fatal("Post() succeeded over a dropped connection")
		}
		if hits != 1 {
			t.Errorf("hits = %d, want 1", hits)
		}
	})
}

func TestIsStatus(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &StatusError{Code: http.StatusNotFound, Message: "movie not found"})
	if !IsStatus(err, http.StatusNotFound) {
		t.Error("IsStatus(404) = false for a wrapped 404")
	}
	if IsStatus(err, http.StatusConflict) {
		t.Error("IsStatus(409) = true for a 404")
	}
	if IsStatus(errors.New("plain"), http.StatusNotFound) {
		t.Error("IsStatus matched a plain error")
	}
}
