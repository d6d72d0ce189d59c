package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cinemind/cinemind/internal/config"
	"github.com/cinemind/cinemind/internal/server"
)

var (
	serveHost string
	servePort string
	serveSeed string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the CineMind server",
	Long: `Start the CineMind HTTP server.

With store.backend: defra and no store.defra.url, this also starts a
DefraDB container and stops it again on shutdown (Ctrl+C or SIGTERM).

The server provides:
  - /health        Basic server health check
  - /ready         Readiness check (includes the catalog store)
  - /api/...       Catalog, accounts, watchlists and AI endpoints
  - /metrics       Prometheus metrics
  - /swagger       API documentation

Examples:
  cinemind serve                          # Start on the configured port
  cinemind serve --port 3000              # Start on custom port
  cinemind serve --seed movies.yaml       # Seed an empty catalog first`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		h, err := getHome()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(h.DefraPath(), 0o755); err != nil {
			return err
		}

		cfgMgr, err := loadConfig(h)
		if err != nil {
			return err
		}
		cfg := cfgMgr.Get()

		// Flags override the file for this run.
		if serveHost != "" {
			cfg.Server.Host = serveHost
		}
		if servePort != "" {
			cfg.Server.Port = servePort
		}
		if serveSeed != "" {
			cfg.Store.SeedFile = serveSeed
		}

		level := new(slog.LevelVar)
		level.Set(config.ParseLevel(cfg.Logging.Level))
		logger := newLogger(cfg.Logging.Format, level)
		slog.SetDefault(logger)

		if cfgMgr.File() != "" {
			logger.Info("loaded config", "file", cfgMgr.File())
			cfgMgr.OnChange(func(c *config.Config) {
				level.Set(config.ParseLevel(c.Logging.Level))
				logger.Info("config reloaded", "log_level", c.Logging.Level)
			})
			cfgMgr.WatchConfig()
		}

		srv, err := server.New(server.Config{
			ConfigManager: cfgMgr,
			DefraDataPath: h.DefraPath(),
			Logger:        logger,
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

func newLogger(format string, level slog.Leveler) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (default from config)")
	serveCmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (default from config)")
	serveCmd.Flags().StringVar(&serveSeed, "seed", "", "YAML file to seed an empty catalog from")

	rootCmd.AddCommand(serveCmd)
}
