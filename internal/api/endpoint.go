package api

import (
	"net/http"

	"github.com/spf13/cobra"
)

// Endpoint defines both an HTTP route and its corresponding CLI command.
// This provides a single source of truth for API operations.
type Endpoint interface {
	// Route returns the HTTP method, path, and handler for this endpoint.
	Route() (method, path string, handler http.HandlerFunc)

	// RequiresInit returns true if this endpoint requires the server
	// to be fully initialized (stores ready).
	RequiresInit() bool

	// Command returns a Cobra command that calls this endpoint via HTTP.
	// client is called at runtime to get the API client (deferred evaluation).
	Command(client func() *Client) *cobra.Command
}

// RateLimited is implemented by endpoints whose calls cost money upstream.
type RateLimited interface {
	RateLimited() bool
}

// Grouped is implemented by endpoints whose CLI command lives under a
// parent command such as "movies" or "users".
type Grouped interface {
	Group() string
}
