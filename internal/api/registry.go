package api

import (
	"net/http"

	"github.com/spf13/cobra"
)

// Registry holds all registered endpoints.
type Registry struct {
	endpoints []Endpoint
}

// NewRegistry creates a new endpoint registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds an endpoint to the registry.
func (r *Registry) Register(ep Endpoint) {
	r.endpoints = append(r.endpoints, ep)
}

// Middleware wraps endpoint handlers while routes are registered.
type Middleware struct {
	// Init guards endpoints whose RequiresInit is true.
	Init func(http.HandlerFunc) http.HandlerFunc

	// Limit guards endpoints implementing RateLimited.
	Limit func(http.Handler) http.Handler

	// Observe wraps every handler with its route pattern.
	Observe func(pattern string, next http.Handler) http.Handler
}

// RegisterRoutes registers all endpoint HTTP routes with the given mux.
func (r *Registry) RegisterRoutes(mux *http.ServeMux, mw Middleware) {
	for _, ep := range r.endpoints {
		method, path, handler := ep.Route()
		pattern := method + " " + path

		var h http.Handler = handler
		if ep.RequiresInit() && mw.Init != nil {
			h = mw.Init(handler)
		}
		if rl, ok := ep.(RateLimited); ok && rl.RateLimited() && mw.Limit != nil {
			h = mw.Limit(h)
		}
		if mw.Observe != nil {
			h = mw.Observe(pattern, h)
		}
		mux.Handle(pattern, h)
	}
}

// BuildCommands returns a cobra.Command tree for all registered endpoints.
// Commands are organized by their URL path structure.
// client is called at runtime to build the API client (deferred evaluation).
func (r *Registry) BuildCommands(client func() *Client) *cobra.Command {
	apiCmd := &cobra.Command{
		Use:   "api",
		Short: "Commands that call the running server",
		Long: `API commands call the running CineMind server via HTTP.

These commands require a running server (cinemind serve).
Use --server to specify a custom server URL and --token (or
'cinemind api users login') for endpoints that need a signed-in user.

Examples:
  cinemind api health                      # Check server health
  cinemind api movies list                 # List the catalog
  cinemind api movies mood-search "cozy"   # Ask for mood recommendations`,
	}

	groups := map[string]*cobra.Command{}
	for _, ep := range r.endpoints {
		cmd := ep.Command(client)
		if cmd == nil {
			continue
		}
		g, ok := ep.(Grouped)
		if !ok || g.Group() == "" {
			apiCmd.AddCommand(cmd)
			continue
		}
		parent, ok := groups[g.Group()]
		if !ok {
			parent = &cobra.Command{Use: g.Group(), Short: g.Group() + " commands"}
			groups[g.Group()] = parent
			apiCmd.AddCommand(parent)
		}
		parent.AddCommand(cmd)
	}

	return apiCmd
}

// Endpoints returns all registered endpoints.
func (r *Registry) Endpoints() []Endpoint {
	return r.endpoints
}
