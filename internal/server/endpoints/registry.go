package endpoints

import (
	"github.com/cinemind/cinemind/internal/api"
	"github.com/cinemind/cinemind/internal/defra"
)

// Config holds dependencies needed by some endpoints.
type Config struct {
	// DefraManager is nil unless the server manages a DefraDB container.
	DefraManager *defra.DockerManager

	// SaveToken persists a token after a CLI login. Optional.
	SaveToken func(token string) error
}

// All returns all endpoint instances.
func All(cfg Config) []api.Endpoint {
	return []api.Endpoint{
		// Health endpoints
		&HealthEndpoint{},
		&ReadyEndpoint{},
		&StatusEndpoint{DefraManager: cfg.DefraManager},

		// Movie endpoints
		&ListMoviesEndpoint{},
		&GetMovieEndpoint{},
		&CreateMovieEndpoint{},
		&UpdateMovieEndpoint{},
		&DeleteMovieEndpoint{},

		// AI endpoints
		&MoodSearchEndpoint{},
		&GenerateMetadataEndpoint{},

		// User endpoints
		&RegisterEndpoint{},
		&LoginEndpoint{SaveToken: cfg.SaveToken},
		&GetWatchlistEndpoint{},
		&AddToWatchlistEndpoint{},
		&RemoveFromWatchlistEndpoint{},
		&StatsEndpoint{},

		// Prompt endpoints
		&ListPromptsEndpoint{},
		&GetPromptEndpoint{},

		// Model call log endpoints
		&ListLLMCallsEndpoint{},
		&GetLLMCallEndpoint{},

		// Observability endpoints
		&MetricsEndpoint{},
		&SwaggerEndpoint{},
		&SwaggerUIEndpoint{},

		// Browser UI (catch-all, must be last)
		&StaticEndpoint{},
	}
}
