package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cinemind/cinemind/internal/api"
	"github.com/cinemind/cinemind/internal/defra"
	"github.com/cinemind/cinemind/internal/schema"
)

var defraCmd = &cobra.Command{
	Use:   "defra",
	Short: "Manage the DefraDB catalog container",
	Long: `Manage the DefraDB container behind store.backend=defra.

'cinemind serve' manages the container on its own. Use these commands to
run it across server restarts or to inspect it. Documents live in
~/.cinemind/defradb/ and survive 'remove'.`,
}

// dockerRunE opens a manager for the configured container, runs fn and
// closes the manager.
func dockerRunE(fn func(ctx context.Context, cmd *cobra.Command, mgr *defra.DockerManager) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		mgr, err := dockerManager()
		if err != nil {
			return err
		}
		defer mgr.Close()
		return fn(cmd.Context(), cmd, mgr)
	}
}

// DefraStatus is printed by `cinemind defra status`.
type DefraStatus struct {
	Container string `json:"container" yaml:"container"`
	Status    string `json:"status" yaml:"status"`
	URL       string `json:"url,omitempty" yaml:"url,omitempty"`
	Healthy   *bool  `json:"healthy,omitempty" yaml:"healthy,omitempty"`
	Hint      string `json:"hint,omitempty" yaml:"hint,omitempty"`
}

func newDefraCommands() []*cobra.Command {
	var timeout time.Duration
	start := &cobra.Command{
		Use:   "start",
		Short: "Start the container and apply the catalog schema",
		RunE: dockerRunE(func(ctx context.Context, cmd *cobra.Command, mgr *defra.DockerManager) error {
			if err := mgr.Start(ctx, timeout); err != nil {
				return fmt.Errorf("failed to start DefraDB: %w", err)
			}
			if err := schema.Initialize(ctx, defra.NewClient(mgr.URL()), slog.Default()); err != nil {
				return fmt.Errorf("schema initialization failed: %w", err)
			}
			slog.Info("defra ready", "url", mgr.URL())
			return nil
		}),
	}
	start.Flags().DurationVar(&timeout, "timeout", 60*time.Second, "How long to wait for DefraDB to report healthy")

	stop := &cobra.Command{
		Use:   "stop",
		Short: "Stop the container, keeping its data",
		RunE: dockerRunE(func(ctx context.Context, cmd *cobra.Command, mgr *defra.DockerManager) error {
			if err := mgr.Stop(ctx); err != nil {
				return fmt.Errorf("failed to stop DefraDB: %w", err)
			}
			slog.Info("defra stopped")
			return nil
		}),
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show container state and health",
		RunE: dockerRunE(func(ctx context.Context, cmd *cobra.Command, mgr *defra.DockerManager) error {
			st, err := mgr.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get status: %w", err)
			}
			out := DefraStatus{Container: mgr.ContainerName(), Status: string(st)}
			switch st {
			case defra.StatusRunning:
				healthy := defra.NewClient(mgr.URL()).HealthCheck(ctx) == nil
				out.URL, out.Healthy = mgr.URL(), &healthy
			case defra.StatusStopped:
				out.Hint = "run 'cinemind defra start' to start it"
			case defra.StatusNotFound:
				out.Hint = "run 'cinemind defra start' to create it"
			}
			return api.Output(out)
		}),
	}

	var tail string
	logs := &cobra.Command{
		Use:   "logs",
		Short: "Print recent container output",
		RunE: dockerRunE(func(ctx context.Context, cmd *cobra.Command, mgr *defra.DockerManager) error {
			text, err := mgr.Logs(ctx, tail)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), text)
			return err
		}),
	}
	logs.Flags().StringVar(&tail, "tail", "100", "Number of lines from the end, or \"all\"")

	remove := &cobra.Command{
		Use:   "remove",
		Short: "Delete the container; the data directory is kept",
		RunE: dockerRunE(func(ctx context.Context, cmd *cobra.Command, mgr *defra.DockerManager) error {
			if err := mgr.Remove(ctx); err != nil {
				return err
			}
			slog.Info("defra container removed")
			return nil
		}),
	}

	return []*cobra.Command{start, stop, status, logs, remove}
}

func init() {
	defraCmd.AddCommand(newDefraCommands()...)
	rootCmd.AddCommand(defraCmd)
}

// dockerManager builds a manager from store.defra, binding the container's
// data directory under the cinemind home.
func dockerManager() (*defra.DockerManager, error) {
	h, err := getHome()
	if err != nil {
		return nil, err
	}
	cfgMgr, err := loadConfig(h)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(h.DefraPath(), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	d := cfgMgr.Get().Store.Defra
	return defra.NewDockerManager(defra.DockerConfig{
		ContainerName: d.ContainerName,
		Image:         d.Image,
		DataPath:      h.DefraPath(),
		HostPort:      d.Port,
	})
}
