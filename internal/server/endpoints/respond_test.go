package endpoints

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cinemind/cinemind/internal/catalog"
	"github.com/cinemind/cinemind/internal/providers"
	"github.com/cinemind/cinemind/internal/recommend"
	"github.com/cinemind/cinemind/internal/users"
)

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		want    int
		wantMsg string
	}{
		{"blank input", recommend.ErrBlankInput, http.StatusBadRequest, ""},
		{"invalid id", catalog.ErrInvalidID, http.StatusBadRequest, ""},
		{"validation", catalog.Validate(catalog.MovieInput{}), http.StatusBadRequest, ""},
		{"bad credentials", users.ErrInvalidCredentials, http.StatusUnauthorized, ""},
		{"forbidden", recommend.ErrForbidden, http.StatusForbidden, ""},
		{"movie not found", fmt.Errorf("lookup: %w", catalog.ErrNotFound), http.StatusNotFound, ""},
		{"user not found", users.ErrNotFound, http.StatusNotFound, ""},
		{"email taken", users.ErrEmailTaken, http.StatusConflict, ""},
		{"not configured", providers.ErrNotConfigured, http.StatusServiceUnavailable, ""},
		{
			"upstream",
			&providers.UpstreamError{Provider: "gemini", Kind: providers.KindTimeout, Err: context.DeadlineExceeded},
			http.StatusBadGateway,
			"AI service failed: timeout",
		},
		{"store failure", errors.New("connection refused"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeServiceError(rec, httptest.NewRequest("GET", "/x", nil), tt.err)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			var body ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("body is not an error response: %v", err)
			}
			if tt.wantMsg != "" && body.Error != tt.wantMsg {
				t.Errorf("error = %q, want %q", body.Error, tt.wantMsg)
			}
		})
	}
}

func TestWriteServiceError_CanceledWritesNothing(t *testing.T) {
	rec := httptest.NewRecorder()
	writeServiceError(rec, httptest.NewRequest("GET", "/x", nil), context.Canceled)
	if rec.Body.Len() != 0 {
		t.Errorf("body = %q, want nothing written", rec.Body.String())
	}
}

func TestDecodeBody(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"valid", `{"mood":"cozy"}`, ""},
		{"empty", ``, "request body is empty"},
		{"malformed", `{"mood":`, "invalid JSON body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req MoodSearchRequest
			r := httptest.NewRequest("POST", "/x", strings.NewReader(tt.body))
			err := decodeBody(httptest.NewRecorder(), r, &req)
			if tt.wantErr == "" {
				if err != nil || req.Mood != "cozy" {
					t.Errorf("decodeBody() = %v, mood %q", err, req.Mood)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("decodeBody() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}
