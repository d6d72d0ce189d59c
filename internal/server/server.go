package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/httprate"

	"github.com/cinemind/cinemind/internal/api"
	"github.com/cinemind/cinemind/internal/auth"
	"github.com/cinemind/cinemind/internal/catalog"
	"github.com/cinemind/cinemind/internal/config"
	"github.com/cinemind/cinemind/internal/defra"
	"github.com/cinemind/cinemind/internal/llmcall"
	"github.com/cinemind/cinemind/internal/metrics"
	"github.com/cinemind/cinemind/internal/prompts"
	"github.com/cinemind/cinemind/internal/prompts/metadata"
	"github.com/cinemind/cinemind/internal/prompts/mood"
	"github.com/cinemind/cinemind/internal/providers"
	"github.com/cinemind/cinemind/internal/recommend"
	"github.com/cinemind/cinemind/internal/schema"
	"github.com/cinemind/cinemind/internal/server/endpoints"
	"github.com/cinemind/cinemind/internal/svcctx"
	"github.com/cinemind/cinemind/internal/users"
)

const defraReadyTimeout = 60 * time.Second

// Server is the main CineMind HTTP server.
// With the defra backend and no external URL it also manages the DefraDB
// container lifecycle, starting it on server start and stopping it on shutdown.
type Server struct {
	httpServer   *http.Server
	defraManager *defra.DockerManager
	cfg          *config.Config
	logger       *slog.Logger

	tokens   *auth.TokenManager
	metrics  *metrics.Metrics
	prompts  *prompts.Registry
	aiClient providers.GenerativeClient

	// services is nil until Initialize succeeds.
	services atomic.Pointer[svcctx.Services]

	endpointRegistry *api.Registry

	mu       sync.RWMutex
	running  bool
	listener net.Listener
}

// Config holds server configuration.
type Config struct {
	// ConfigManager provides configuration. Defaults are used when nil.
	ConfigManager *config.Manager
	// DefraDataPath is the host path for DefraDB data when the container is managed.
	DefraDataPath string
	// Logger is the structured logger to use.
	Logger *slog.Logger
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	c := config.DefaultConfig()
	if cfg.ConfigManager != nil {
		c = cfg.ConfigManager.Get()
	}

	s := &Server{
		cfg:     c,
		logger:  cfg.Logger,
		metrics: metrics.New(),
		prompts: prompts.NewRegistry(),
	}

	mood.RegisterPrompts(s.prompts)
	metadata.RegisterPrompts(s.prompts)

	secret := c.Secret()
	if secret == "" {
		secret = randomSecret()
		s.logger.Warn("auth.jwt_secret is not set; using a random secret, tokens will not survive a restart")
	}
	tokens, err := auth.NewTokenManager(secret, c.Auth.TokenTTL)
	if err != nil {
		return nil, err
	}
	s.tokens = tokens

	if c.AIEnabled() {
		client, err := providers.New(context.Background(), providers.Config{
			Provider:     c.AI.Provider,
			Endpoint:     c.AI.Endpoint,
			Model:        c.AI.Model,
			APIKey:       c.AIKey(),
			Timeout:      c.AI.Timeout,
			MockResponse: c.AI.MockResponse,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create AI client: %w", err)
		}
		s.aiClient = client
		s.logger.Info("AI features enabled", "provider", client.Name(), "model", client.Model())
	} else {
		s.logger.Warn("AI features disabled: no API key configured", "provider", c.AI.Provider)
	}

	if c.Store.Backend == "defra" && c.Store.Defra.URL == "" {
		m, err := defra.NewDockerManager(defra.DockerConfig{
			ContainerName: c.Store.Defra.ContainerName,
			Image:         c.Store.Defra.Image,
			DataPath:      cfg.DefraDataPath,
			HostPort:      c.Store.Defra.Port,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create defra manager: %w", err)
		}
		s.defraManager = m
	}

	s.endpointRegistry = api.NewRegistry()
	for _, ep := range endpoints.All(endpoints.Config{DefraManager: s.defraManager}) {
		s.endpointRegistry.Register(ep)
	}

	mux := http.NewServeMux()
	mw := api.Middleware{
		Init:    s.requireInit,
		Observe: s.observe,
	}
	if c.RateLimit.AIRequests > 0 {
		mw.Limit = httprate.LimitByIP(c.RateLimit.AIRequests, c.RateLimit.AIWindow)
	}
	s.endpointRegistry.RegisterRoutes(mux, mw)

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(c.Server.Host, c.Server.Port),
		Handler:      s.withServices(auth.Authenticate(s.tokens, s.storedRole, s.logger)(mux)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// Initialize opens the catalog and account stores, seeds an empty catalog
// and makes the services available to handlers.
func (s *Server) Initialize(ctx context.Context) error {
	if s.services.Load() != nil {
		return nil
	}

	movies, accounts, err := s.openStores(ctx)
	if err != nil {
		return err
	}

	if path := s.cfg.Store.SeedFile; path != "" {
		entries, err := catalog.LoadSeed(path)
		if err != nil {
			return err
		}
		n, err := catalog.Seed(ctx, movies, entries)
		if err != nil {
			return err
		}
		if n > 0 {
			s.logger.Info("catalog seeded", "file", path, "movies", n)
		}
	}

	calls := llmcall.NewRecorder(s.cfg.AI.CallLogSize)
	s.services.Store(&svcctx.Services{
		Catalog: movies,
		Users: users.NewService(users.ServiceConfig{
			Store:       accounts,
			AdminEmails: s.cfg.Auth.AdminEmails,
			Logger:      s.logger,
		}),
		Tokens: s.tokens,
		Recommender: recommend.New(recommend.Config{
			Store:            movies,
			Client:           s.aiClient,
			MaxResults:       s.cfg.AI.MaxRecommendations,
			Calls:            calls,
			DescriptionLimit: s.cfg.AI.SnapshotDescriptionLimit,
			Metrics:          s.metrics,
			Logger:           s.logger,
		}),
		Prompts: s.prompts,
		Calls:   calls,
		Metrics: s.metrics,
		Logger:  s.logger,
	})
	return nil
}

func (s *Server) openStores(ctx context.Context) (catalog.Store, users.Store, error) {
	switch s.cfg.Store.Backend {
	case "", "memory":
		s.logger.Info("using in-memory store")
		return catalog.NewMemoryStore(), users.NewMemoryStore(), nil
	case "defra":
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", s.cfg.Store.Backend)
	}

	url := s.cfg.Store.Defra.URL
	if s.defraManager != nil {
		s.logger.Info("starting DefraDB")
		if err := s.defraManager.Start(ctx, defraReadyTimeout); err != nil {
			return nil, nil, fmt.Errorf("failed to start DefraDB: %w", err)
		}
		url = s.defraManager.URL()
	}

	client := defra.NewClient(url)
	if err := client.HealthCheck(ctx); err != nil {
		return nil, nil, fmt.Errorf("DefraDB health check failed: %w", err)
	}
	s.logger.Info("DefraDB is ready", "url", url)

	s.logger.Info("initializing schemas")
	if err := schema.Initialize(ctx, client, s.logger); err != nil {
		return nil, nil, fmt.Errorf("schema initialization failed: %w", err)
	}
	return catalog.NewDefraStore(client), users.NewDefraStore(client), nil
}

// Start initializes the stores and serves HTTP.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	if err := s.Initialize(ctx); err != nil {
		_ = s.shutdown()
		return err
	}

	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		_ = s.shutdown()
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			_ = s.shutdown()
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	return s.shutdown()
}

// shutdown stops the HTTP server and any managed DefraDB container.
func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	if s.defraManager != nil {
		s.logger.Info("stopping DefraDB")
		if err := s.defraManager.Stop(shutdownCtx); err != nil {
			s.logger.Error("DefraDB stop error", "error", err)
		}
		if err := s.defraManager.Close(); err != nil {
			s.logger.Error("DefraDB manager close error", "error", err)
		}
	}

	s.mu.Lock()
	s.running = false
	s.listener = nil
	s.mu.Unlock()
	s.logger.Info("server stopped")
	return nil
}

// IsRunning returns whether the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the bound address once listening, else the configured one.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Services returns the wired services, or nil before Initialize.
func (s *Server) Services() *svcctx.Services {
	return s.services.Load()
}

// withServices wraps a handler to enrich the request context with services.
func (s *Server) withServices(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc := s.services.Load(); svc != nil {
			ctx = svcctx.WithServices(ctx, svc)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// storedRole reports the role an account holds now, so demotions and
// deletions take effect before outstanding tokens expire.
func (s *Server) storedRole(ctx context.Context, id string) (string, error) {
	svc := s.services.Load()
	if svc == nil {
		return "", errors.New("server not fully initialized")
	}
	u, err := svc.Users.Store().Get(ctx, id)
	if errors.Is(err, users.ErrNotFound) {
		return "", auth.ErrUnknownPrincipal
	}
	if err != nil {
		return "", err
	}
	return string(u.Role), nil
}

// requireInit is middleware that ensures the stores are open.
// Returns 503 Service Unavailable until Initialize has succeeded.
func (s *Server) requireInit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.services.Load() == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"server not fully initialized"}`))
			return
		}
		next(w, r)
	}
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return hex.EncodeToString(b)
}
