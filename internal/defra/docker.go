package defra

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
)

const (
	DefaultImage         = "sourcenetwork/defradb:latest"
	DefaultContainerName = "cinemind-defra"
	DefaultPort          = "9181"
	ContainerPort        = "9181/tcp"
	DataDir              = "/data"
	Label                = "cinemind-defra"

	stopTimeoutSeconds = 10
)

// ContainerStatus represents the state of the catalog database container.
type ContainerStatus string

const (
	StatusRunning  ContainerStatus = "running"
	StatusStopped  ContainerStatus = "stopped"
	StatusNotFound ContainerStatus = "not_found"
	StatusStarting ContainerStatus = "starting"
)

// DockerConfig holds configuration for the Docker manager.
type DockerConfig struct {
	ContainerName string
	Image         string
	DataPath      string // host directory bound to /data; empty keeps data inside the container
	HostPort      string
}

// DockerManager runs DefraDB as a local container so `cinemind serve` can
// bring up its own catalog storage.
type DockerManager struct {
	cli *client.Client
	cfg DockerConfig
}

// NewDockerManager creates a Docker manager, filling in defaults.
func NewDockerManager(cfg DockerConfig) (*DockerManager, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}

	if cfg.ContainerName == "" {
		cfg.ContainerName = DefaultContainerName
	}
	if cfg.Image == "" {
		cfg.Image = DefaultImage
	}
	if cfg.HostPort == "" {
		cfg.HostPort = DefaultPort
	}

	return &DockerManager{cli: cli, cfg: cfg}, nil
}

// Close closes the Docker client.
func (m *DockerManager) Close() error {
	return m.cli.Close()
}

// URL returns the DefraDB API URL exposed on the host.
func (m *DockerManager) URL() string {
	return fmt.Sprintf("http://localhost:%s", m.cfg.HostPort)
}

// ContainerName returns the managed container's name.
func (m *DockerManager) ContainerName() string { return m.cfg.ContainerName }

// Start brings the container to the running state from wherever it is and
// waits for the API to report healthy.
func (m *DockerManager) Start(ctx context.Context, readyTimeout time.Duration) error {
	if _, err := m.cli.Ping(ctx); err != nil {
		return fmt.Errorf("docker is not running: %w", err)
	}

	c, err := m.inspect(ctx)
	if err != nil {
		return err
	}
	switch c.status {
	case StatusRunning:
	case StatusStopped, StatusStarting:
		if err := m.cli.ContainerStart(ctx, c.id, container.StartOptions{}); err != nil {
			return fmt.Errorf("failed to start existing container: %w", err)
		}
	case StatusNotFound:
		if err := m.create(ctx); err != nil {
			return err
		}
	default:
		return fmt.Errorf("container in unexpected state: %s", c.status)
	}
	return m.WaitReady(ctx, readyTimeout)
}

// Stop stops the container. A missing container is not an error.
func (m *DockerManager) Stop(ctx context.Context) error {
	c, err := m.inspect(ctx)
	if err != nil || c.status == StatusNotFound {
		return err
	}
	timeout := stopTimeoutSeconds
	if err := m.cli.ContainerStop(ctx, c.id, container.StopOptions{Timeout: &timeout}); err != nil {
		return fmt.Errorf("failed to stop container: %w", err)
	}
	return nil
}

// Remove force-deletes the container. A bind-mounted data directory is left
// on disk.
func (m *DockerManager) Remove(ctx context.Context) error {
	c, err := m.inspect(ctx)
	if err != nil || c.status == StatusNotFound {
		return err
	}
	if err := m.cli.ContainerRemove(ctx, c.id, container.RemoveOptions{Force: true}); err != nil {
		return fmt.Errorf("failed to remove container: %w", err)
	}
	return nil
}

// Status reports the container state.
func (m *DockerManager) Status(ctx context.Context) (ContainerStatus, error) {
	c, err := m.inspect(ctx)
	return c.status, err
}

// Logs returns the last tail lines of container output.
func (m *DockerManager) Logs(ctx context.Context, tail string) (string, error) {
	c, err := m.inspect(ctx)
	if err != nil {
		return "", err
	}
	if c.status == StatusNotFound {
		return "", fmt.Errorf("container %s not found", m.cfg.ContainerName)
	}

	rc, err := m.cli.ContainerLogs(ctx, c.id, container.LogsOptions{ShowStdout: true, ShowStderr: true, Tail: tail})
	if err != nil {
		return "", fmt.Errorf("failed to get logs: %w", err)
	}
	defer rc.Close()

	var b strings.Builder
	if _, err := io.Copy(&b, rc); err != nil {
		return "", fmt.Errorf("failed to read logs: %w", err)
	}
	return b.String(), nil
}

// WaitReady waits for the container's API to report healthy.
func (m *DockerManager) WaitReady(ctx context.Context, timeout time.Duration) error {
	return WaitHealthy(ctx, m.URL(), timeout)
}

// spec returns the container and host configuration for a new container.
func (m *DockerManager) spec() (*container.Config, *container.HostConfig) {
	cfg := &container.Config{
		Image:        m.cfg.Image,
		Cmd:          []string{"start", "--no-keyring", "--url", "0.0.0.0:9181", "--store", "badger", "--rootdir", DataDir},
		Labels:       map[string]string{Label: "true"},
		ExposedPorts: nat.PortSet{ContainerPort: struct{}{}},
	}
	host := &container.HostConfig{
		PortBindings: nat.PortMap{
			ContainerPort: {{HostIP: "127.0.0.1", HostPort: m.cfg.HostPort}},
		},
	}
	if m.cfg.DataPath != "" {
		host.Mounts = []mount.Mount{{Type: mount.TypeBind, Source: m.cfg.DataPath, Target: DataDir}}
	}
	return cfg, host
}

func (m *DockerManager) create(ctx context.Context) error {
	if err := m.pullIfMissing(ctx); err != nil {
		return err
	}
	cfg, host := m.spec()
	created, err := m.cli.ContainerCreate(ctx, cfg, host, nil, nil, m.cfg.ContainerName)
	if err != nil {
		return fmt.Errorf("failed to create container: %w", err)
	}
	if err := m.cli.ContainerStart(ctx, created.ID, container.StartOptions{}); err != nil {
		_ = m.cli.ContainerRemove(ctx, created.ID, container.RemoveOptions{Force: true})
		return fmt.Errorf("failed to start container: %w", err)
	}
	return nil
}

type containerInfo struct {
	id     string
	status ContainerStatus
}

func (m *DockerManager) inspect(ctx context.Context) (containerInfo, error) {
	list, err := m.cli.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filters.NewArgs(filters.Arg("name", "^/"+m.cfg.ContainerName+"$")),
	})
	if err != nil {
		return containerInfo{}, fmt.Errorf("failed to list containers: %w", err)
	}
	if len(list) == 0 {
		return containerInfo{status: StatusNotFound}, nil
	}
	return containerInfo{id: list[0].ID, status: statusOf(list[0].State)}, nil
}

func statusOf(state string) ContainerStatus {
	switch state {
	case "running":
		return StatusRunning
	case "exited", "dead":
		return StatusStopped
	case "created", "restarting":
		return StatusStarting
	default:
		return ContainerStatus(state)
	}
}

func (m *DockerManager) pullIfMissing(ctx context.Context) error {
	if _, err := m.cli.ImageInspect(ctx, m.cfg.Image); err == nil {
		return nil
	}
	rc, err := m.cli.ImagePull(ctx, m.cfg.Image, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image: %w", err)
	}
	defer rc.Close()
	_, err = io.Copy(io.Discard, rc)
	return err
}

// WaitHealthy polls url's health endpoint once a second until it answers 200,
// timeout worth of attempts run out, or ctx is done.
func WaitHealthy(ctx context.Context, url string, timeout time.Duration) error {
	checker := &http.Client{Timeout: 2 * time.Second}
	attempts := max(uint(timeout/time.Second), 1)

	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url+healthPath, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			resp, err := checker.Do(req)
			if err != nil {
				return err
			}
			_ = resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("unhealthy status: %d", resp.StatusCode)
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(time.Second),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
}
