package endpoints

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/cinemind/cinemind/internal/auth"
	"github.com/cinemind/cinemind/internal/catalog"
	"github.com/cinemind/cinemind/internal/providers"
	"github.com/cinemind/cinemind/internal/recommend"
	"github.com/cinemind/cinemind/internal/svcctx"
	"github.com/cinemind/cinemind/internal/users"
)

const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ErrorResponse is a standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// decodeBody reads a JSON request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid JSON body: %v", err)
	}
	return nil
}

// writeServiceError maps a domain error to its HTTP status.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	logger := svcctx.LoggerFrom(r.Context())

	if ue, ok := providers.IsUpstream(err); ok {
		logger.Error("generative service failed",
			"path", r.URL.Path, "provider", ue.Provider, "kind", ue.Kind, "error", err)
		writeError(w, http.StatusBadGateway, "AI service failed: "+string(ue.Kind))
		return
	}

	switch {
	case errors.Is(err, recommend.ErrBlankInput),
		errors.Is(err, catalog.ErrInvalidID),
		catalog.IsValidationError(err),
		users.IsValidationError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, users.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, recommend.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, users.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, users.ErrEmailTaken):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, providers.ErrNotConfigured):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, context.Canceled):
		logger.Debug("request canceled by client", "path", r.URL.Path)
	default:
		logger.Error("request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func userOnly(h http.HandlerFunc) http.HandlerFunc {
	return auth.RequireUser(h).ServeHTTP
}

func adminOnly(h http.HandlerFunc) http.HandlerFunc {
	return auth.RequireAdmin(h).ServeHTTP
}
