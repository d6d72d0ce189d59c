package endpoints

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/cinemind/cinemind/internal/api"
	"github.com/cinemind/cinemind/internal/defra"
	"github.com/cinemind/cinemind/internal/svcctx"
	"github.com/cinemind/cinemind/version"
)

// HealthResponse is the response for health check endpoints.
type HealthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store,omitempty"`
}

// HealthEndpoint handles GET /health.
type HealthEndpoint struct{}

func (e *HealthEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/health", e.handler
}

func (e *HealthEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary	Liveness check
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	HealthResponse
//	@Router		/health [get]
func (e *HealthEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (e *HealthEndpoint) Command(client func() *api.Client) *cobra.Command {
	return healthCommand(client, "health", "Check that the server answers", "/health")
}

// healthCommand GETs a health path and prints the reply. A 503 from /ready
// still carries a HealthResponse body, so it is printed before failing.
func healthCommand(client func() *api.Client, use, short, path string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp HealthResponse
			err := client().Get(cmd.Context(), path, &resp)
			var se *api.StatusError
			if errors.As(err, &se) && se.Code == http.StatusServiceUnavailable {
				return fmt.Errorf("not ready: %s", se.Message)
			}
			if err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// ReadyEndpoint handles GET /ready.
type ReadyEndpoint struct{}

func (e *ReadyEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/ready", e.handler
}

func (e *ReadyEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary		Readiness check
//	@Description	Reports whether the catalog store is reachable
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	HealthResponse
//	@Failure		503	{object}	HealthResponse
//	@Router			/ready [get]
func (e *ReadyEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	health := storeHealth(r)
	if health != "healthy" {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "degraded", Store: health})
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Store: "ok"})
}

// storeHealth reports "healthy", "unhealthy" or "not_initialized".
func storeHealth(r *http.Request) string {
	store := svcctx.CatalogFrom(r.Context())
	switch {
	case store == nil:
		return "not_initialized"
	case store.HealthCheck(r.Context()) != nil:
		return "unhealthy"
	default:
		return "healthy"
	}
}

func (e *ReadyEndpoint) Command(client func() *api.Client) *cobra.Command {
	return healthCommand(client, "ready", "Check that the catalog store is reachable", "/ready")
}

// StatusResponse is the detailed status response.
type StatusResponse struct {
	Server  string      `json:"server"`
	Version string      `json:"version"`
	Store   StoreStatus `json:"store"`
	AI      AIStatus    `json:"ai"`
}

// StoreStatus shows the storage backend and its health.
type StoreStatus struct {
	Backend   string `json:"backend"`
	Health    string `json:"health"`
	Container string `json:"container,omitempty"`
	URL       string `json:"url,omitempty"`
}

// AIStatus shows the generative provider, or "disabled".
type AIStatus struct {
	Status             string `json:"status"`
	Provider           string `json:"provider,omitempty"`
	Model              string `json:"model,omitempty"`
	MaxRecommendations int    `json:"max_recommendations,omitempty"`
}

// StatusEndpoint handles GET /status.
type StatusEndpoint struct {
	// DefraManager is set by server since it's not in Services
	DefraManager *defra.DockerManager
}

func (e *StatusEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/status", e.handler
}

func (e *StatusEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary	Detailed server status
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	StatusResponse
//	@Router		/status [get]
func (e *StatusEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resp := StatusResponse{
		Server:  "running",
		Version: version.Get().Release,
		Store:   StoreStatus{Health: storeHealth(r)},
		AI:      AIStatus{Status: "disabled"},
	}
	if store := svcctx.CatalogFrom(ctx); store != nil {
		resp.Store.Backend = store.Backend()
	}

	if m := e.DefraManager; m != nil {
		resp.Store.URL = m.URL()
		resp.Store.Container = "error"
		if st, err := m.Status(ctx); err == nil {
			resp.Store.Container = string(st)
		}
	}

	if rec := svcctx.RecommenderFrom(ctx); rec.Enabled() {
		name, model := rec.Provider()
		resp.AI = AIStatus{
			Status:             "enabled",
			Provider:           name,
			Model:              model,
			MaxRecommendations: rec.MaxResults(),
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (e *StatusEndpoint) Command(client func() *api.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Get detailed server status",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp StatusResponse
			if err := client().Get(cmd.Context(), "/status", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
