// Package recommend runs the AI-mediated catalog features: mood search and
// metadata synthesis. Both are stateless per call; the only shared state is
// the read-only catalog store and the generative client.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cinemind/cinemind/internal/auth"
	"github.com/cinemind/cinemind/internal/catalog"
	"github.com/cinemind/cinemind/internal/llmcall"
	"github.com/cinemind/cinemind/internal/metrics"
	"github.com/cinemind/cinemind/internal/prompts"
	"github.com/cinemind/cinemind/internal/prompts/metadata"
	"github.com/cinemind/cinemind/internal/prompts/mood"
	"github.com/cinemind/cinemind/internal/providers"
	"github.com/cinemind/cinemind/internal/structured"
)

// DefaultMaxResults caps the number of recommendations when none is configured.
const DefaultMaxResults = 5

const (
	opMoodSearch = "mood_search"
	opSynthesize = "metadata_synthesis"
)

var (
	// ErrBlankInput is returned for an empty or whitespace-only mood or title.
	ErrBlankInput = errors.New("input must not be blank")

	// ErrForbidden is returned when metadata synthesis is requested by a
	// caller without the admin role.
	ErrForbidden = errors.New("metadata synthesis requires an admin")
)

// Config configures a Service.
type Config struct {
	Store catalog.Store

	// Client may be nil, in which case every AI operation returns
	// providers.ErrNotConfigured.
	Client providers.GenerativeClient

	// MaxResults is the hard cap on recommendations (K).
	MaxResults int

	// DescriptionLimit shortens snapshot descriptions to this many runes.
	// Zero sends them whole.
	DescriptionLimit int

	// Calls, when set, keeps a log of every model call.
	Calls *llmcall.Recorder

	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// Service runs the mood-search and metadata-synthesis pipelines.
type Service struct {
	store     catalog.Store
	client    providers.GenerativeClient
	resolver  *Resolver
	max       int
	descLimit int
	calls     *llmcall.Recorder
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// New creates a recommendation service.
func New(cfg Config) *Service {
	limit := cfg.MaxResults
	if limit <= 0 {
		limit = DefaultMaxResults
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:     cfg.Store,
		client:    cfg.Client,
		resolver:  NewResolver(cfg.Store),
		max:       limit,
		descLimit: cfg.DescriptionLimit,
		calls:     cfg.Calls,
		metrics:   cfg.Metrics,
		logger:    logger,
	}
}

// Enabled reports whether a generative client is configured.
func (s *Service) Enabled() bool { return s != nil && s.client != nil }

// Provider returns the configured provider and model, or empty strings
// when AI is disabled.
func (s *Service) Provider() (name, model string) {
	if s.client == nil {
		return "", ""
	}
	return s.client.Name(), s.client.Model()
}

// MaxResults returns the recommendation cap.
func (s *Service) MaxResults() int { return s.max }

// MoodSearch returns up to MaxResults catalog movies matching the mood, in
// the model's order of relevance.
//
// Blank moods fail with ErrBlankInput before anything else happens. Upstream
// failures and unusable model output both degrade to an empty result; only
// catalog store failures and caller cancellation are returned as errors.
func (s *Service) MoodSearch(ctx context.Context, moodText string) ([]catalog.Movie, error) {
	moodText = strings.TrimSpace(moodText)
	if moodText == "" {
		return nil, ErrBlankInput
	}
	if s.client == nil {
		return nil, providers.ErrNotConfigured
	}

	snapshot, err := s.store.ListProjection(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog snapshot: %w", err)
	}
	if len(snapshot) == 0 {
		s.metrics.ObserveOutcome(opMoodSearch, "empty_catalog")
		return []catalog.Movie{}, nil
	}

	prompt, err := mood.Prompt(moodText, snapshot, s.max, s.descLimit)
	if err != nil {
		return nil, err
	}

	raw, call, err := s.generate(ctx, opMoodSearch, mood.PromptKey, prompt)
	defer s.calls.Record(call)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		call.Outcome = "upstream_error"
		s.metrics.ObserveOutcome(opMoodSearch, "upstream_error")
		s.logger.Warn("mood search degraded to empty result",
			"operation", opMoodSearch, "outcome", "upstream_error", "error", err)
		return []catalog.Movie{}, nil
	}

	list := structured.IDs(raw, s.max)
	call.Outcome = string(list.Status)
	s.metrics.ObserveOutcome(opMoodSearch, string(list.Status))
	s.metrics.DropIDs("invalid", list.Dropped)
	s.metrics.DropIDs("truncated", list.Truncated)

	movies, unknown, err := s.resolver.Resolve(ctx, list.IDs)
	if err != nil {
		return nil, err
	}
	s.metrics.DropIDs("unknown", unknown)

	attrs := []any{
		"operation", opMoodSearch,
		"outcome", list.Status,
		"ids_returned", len(list.IDs),
		"ids_resolved", len(movies),
		"catalog_size", len(snapshot),
	}
	if list.Issue != "" {
		attrs = append(attrs, "issue", list.Issue)
	}
	if list.Status == structured.StatusMalformed {
		s.logger.Warn("model output was not a usable id list", attrs...)
	} else {
		s.logger.Info("mood search completed", attrs...)
	}
	return movies, nil
}

// Synthesize drafts description, genre, release date and rating for title.
// Only callers whose context principal is privileged may use it; others
// get ErrForbidden without any model call. Upstream failures are returned
// (as *providers.UpstreamError) so callers can tell them apart from a
// model that simply had nothing useful to say, which yields an empty or
// partial draft. Nothing is persisted.
func (s *Service) Synthesize(ctx context.Context, title string) (structured.DraftResult, error) {
	p, ok := auth.FromContext(ctx)
	if !ok || !p.Privileged() {
		return structured.DraftResult{}, ErrForbidden
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return structured.DraftResult{}, ErrBlankInput
	}
	if s.client == nil {
		return structured.DraftResult{}, providers.ErrNotConfigured
	}

	prompt, err := metadata.Prompt(title)
	if err != nil {
		return structured.DraftResult{}, err
	}

	raw, call, err := s.generate(ctx, opSynthesize, metadata.PromptKey, prompt)
	defer s.calls.Record(call)
	if err != nil {
		if ctx.Err() == nil {
			call.Outcome = "upstream_error"
			s.metrics.ObserveOutcome(opSynthesize, "upstream_error")
		}
		return structured.DraftResult{}, err
	}

	res := structured.Draft(raw)
	call.Outcome = string(res.Status)
	s.metrics.ObserveOutcome(opSynthesize, string(res.Status))
	s.metrics.DropFields(res.Dropped)

	attrs := []any{
		"operation", opSynthesize,
		"outcome", res.Status,
		"fields", res.Draft.Fields(),
		"fields_dropped", res.Dropped,
		"user_id", p.ID,
	}
	if res.Issue != "" {
		attrs = append(attrs, "issue", res.Issue)
	}
	s.logger.Info("metadata draft generated", attrs...)
	return res, nil
}

// generate calls the model once and records metrics. The returned call is
// completed by the caller and logged on return.
func (s *Service) generate(ctx context.Context, op, key, prompt string) (string, *llmcall.Call, error) {
	start := time.Now()
	raw, err := s.client.Generate(ctx, prompt)
	elapsed := time.Since(start)

	result := "ok"
	if err != nil {
		result = "error"
		if ue, ok := providers.IsUpstream(err); ok {
			result = string(ue.Kind)
		} else if ctx.Err() != nil {
			result = "canceled"
		}
	}
	s.metrics.ObserveCall(s.client.Name(), op, result, elapsed)
	s.logger.Debug("generative call finished",
		"operation", op,
		"provider", s.client.Name(),
		"model", s.client.Model(),
		"outcome", result,
		"duration", elapsed)

	call := llmcall.New(llmcall.RecordOptions{
		Operation:  op,
		PromptKey:  key,
		PromptHash: prompts.HashText(prompt),
		Provider:   s.client.Name(),
		Model:      s.client.Model(),
	}, raw, elapsed, err)
	return raw, call, err
}
