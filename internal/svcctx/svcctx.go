// Package svcctx carries the server's services on the request context. It
// sits apart from server so endpoints can import it without a cycle.
package svcctx

import (
	"context"
	"log/slog"

	"github.com/cinemind/cinemind/internal/auth"
	"github.com/cinemind/cinemind/internal/catalog"
	"github.com/cinemind/cinemind/internal/llmcall"
	"github.com/cinemind/cinemind/internal/metrics"
	"github.com/cinemind/cinemind/internal/prompts"
	"github.com/cinemind/cinemind/internal/recommend"
	"github.com/cinemind/cinemind/internal/users"
)

// Services is attached to every request by the server's middleware.
type Services struct {
	Catalog     catalog.Store
	Users       *users.Service
	Tokens      *auth.TokenManager
	Recommender *recommend.Service
	Prompts     *prompts.Registry
	Calls       *llmcall.Recorder
	Metrics     *metrics.Metrics
	Logger      *slog.Logger
}

type servicesKey struct{}

// WithServices returns a copy of ctx carrying s.
func WithServices(ctx context.Context, s *Services) context.Context {
	return context.WithValue(ctx, servicesKey{}, s)
}

// ServicesFrom returns the attached services, or nil.
func ServicesFrom(ctx context.Context) *Services {
	s, _ := ctx.Value(servicesKey{}).(*Services)
	return s
}

// pick returns one field of the attached services, or T's zero value when
// none are attached.
func pick[T any](ctx context.Context, field func(*Services) T) T {
	if s := ServicesFrom(ctx); s != nil {
		return field(s)
	}
	var zero T
	return zero
}

func CatalogFrom(ctx context.Context) catalog.Store {
	return pick(ctx, func(s *Services) catalog.Store { return s.Catalog })
}

func UsersFrom(ctx context.Context) *users.Service {
	return pick(ctx, func(s *Services) *users.Service { return s.Users })
}

func TokensFrom(ctx context.Context) *auth.TokenManager {
	return pick(ctx, func(s *Services) *auth.TokenManager { return s.Tokens })
}

func RecommenderFrom(ctx context.Context) *recommend.Service {
	return pick(ctx, func(s *Services) *recommend.Service { return s.Recommender })
}

func PromptsFrom(ctx context.Context) *prompts.Registry {
	return pick(ctx, func(s *Services) *prompts.Registry { return s.Prompts })
}

// CallsFrom returns the model call log.
func CallsFrom(ctx context.Context) *llmcall.Recorder {
	return pick(ctx, func(s *Services) *llmcall.Recorder { return s.Calls })
}

func MetricsFrom(ctx context.Context) *metrics.Metrics {
	return pick(ctx, func(s *Services) *metrics.Metrics { return s.Metrics })
}

// LoggerFrom returns the attached logger, falling back to slog.Default.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if l := pick(ctx, func(s *Services) *slog.Logger { return s.Logger }); l != nil {
		return l
	}
	return slog.Default()
}
