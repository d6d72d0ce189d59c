package endpoints

import (
	"io/fs"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cinemind/cinemind/internal/api"
	"github.com/cinemind/cinemind/web"
)

// StaticEndpoint serves the embedded browser UI.
type StaticEndpoint struct{}

var _ api.Endpoint = (*StaticEndpoint)(nil)

func (e *StaticEndpoint) Route() (string, string, http.HandlerFunc) {
	// Catches all GET requests no other pattern matched.
	return "GET", "/{path...}", e.handler
}

func (e *StaticEndpoint) RequiresInit() bool { return false }

// Command returns nil; the UI is browser-only.
func (e *StaticEndpoint) Command(_ func() *api.Client) *cobra.Command {
	return nil
}

func (e *StaticEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	// Unknown API paths get a JSON 404, not the UI.
	if strings.HasPrefix(r.URL.Path, "/api/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	assets, err := web.Assets()
	if err != nil {
		http.Error(w, "UI not available", http.StatusInternalServerError)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/")
	if name == "" {
		name = "index.html"
	}
	if _, err := fs.Stat(assets, name); err != nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	http.FileServerFS(assets).ServeHTTP(w, r)
}
