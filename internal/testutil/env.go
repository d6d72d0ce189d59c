package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/avast/retry-go/v4"
	"gopkg.in/yaml.v3"
)

// ServerConfig describes a throwaway server for a test. It is written to a
// config file so tests exercise the same loading path as `cinemind serve`.
type ServerConfig struct {
	Host          string
	Port          string
	Backend       string
	DefraPort     string
	ContainerName string
	DataPath      string
	ConfigFile    string
	AdminEmail    string
	MockResponse  string
	Logger        *slog.Logger
}

// NewServerConfig creates configuration for a test server on a free port.
// The defra backend registers Docker cleanup and skips without Docker.
func NewServerConfig(t *testing.T, backend string) ServerConfig {
	t.Helper()

	httpPort, err := FindFreePort()
	if err != nil {
		t.Fatalf("failed to find free port for HTTP: %v", err)
	}

	tempDir := t.TempDir()
	cfg := ServerConfig{
		Host:         "127.0.0.1",
		Port:         httpPort,
		Backend:      backend,
		DataPath:     tempDir,
		ConfigFile:   filepath.Join(tempDir, "config.yaml"),
		AdminEmail:   "admin@example.com",
		MockResponse: `[]`,
		Logger:       slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})),
	}

	if backend == "defra" {
		_ = DockerClient(t)
		defraPort, err := FindFreePort()
		if err != nil {
			t.Fatalf("failed to find free port for DefraDB: %v", err)
		}
		cfg.DefraPort = defraPort
		cfg.ContainerName = UniqueContainerName(t)
	}

	cfg.Write(t)
	return cfg
}

// Write renders the config file.
func (c ServerConfig) Write(t *testing.T) {
	t.Helper()
	doc := map[string]any{
		"server": map[string]any{"host": c.Host, "port": c.Port},
		"store": map[string]any{
			"backend": c.Backend,
			"defra": map[string]any{
				"container_name": c.ContainerName,
				"port":           c.DefraPort,
			},
		},
		"auth": map[string]any{
			"jwt_secret":   "test-secret",
			"admin_emails": []string{c.AdminEmail},
		},
		"ai": map[string]any{
			"provider":      "mock",
			"mock_response": c.MockResponse,
		},
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		t.Fatalf("failed to render config: %v", err)
	}
	if err := os.WriteFile(c.ConfigFile, data, 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
}

// URL returns the server URL for the given config.
func (c ServerConfig) URL() string {
	return fmt.Sprintf("http://%s", net.JoinHostPort(c.Host, c.Port))
}

// WaitForServer polls /ready until the server reports its store healthy.
func WaitForServer(url string, timeout time.Duration) error {
	checker := &http.Client{Timeout: 2 * time.Second}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url+"/ready", nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			resp, err := checker.Do(req)
			if err != nil {
				return err
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("ready returned %d", resp.StatusCode)
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(0),
		retry.Delay(200*time.Millisecond),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return fmt.Errorf("server not ready after %v: %w", timeout, err)
	}
	return nil
}

// FindFreePort asks the kernel for an unused TCP port on 127.0.0.1.
func FindFreePort() (string, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", err
	}
	defer l.Close()
	return strconv.Itoa(l.Addr().(*net.TCPAddr).Port), nil
}

// StatusResponse matches the fields of /status that tests inspect.
type StatusResponse struct {
	Server string `json:"server"`
	Store  struct {
		Backend   string `json:"backend"`
		Health    string `json:"health"`
		Container string `json:"container"`
		URL       string `json:"url"`
	} `json:"store"`
	AI struct {
		Status   string `json:"status"`
		Provider string `json:"provider"`
	} `json:"ai"`
}

// GetStatus fetches and decodes /status.
func GetStatus(url string) (*StatusResponse, error) {
	return getJSON[StatusResponse](url + "/status")
}

func getJSON[T any](url string) (*T, error) {
	resp, err := (&http.Client{Timeout: 5 * time.Second}).Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Background is a server running in a goroutine for the length of a test.
type Background struct {
	Cancel context.CancelFunc
	Done   <-chan error
}

// Shutdown cancels the server and waits up to timeout for it to return.
func (b *Background) Shutdown(timeout time.Duration) error {
	b.Cancel()
	select {
	case err := <-b.Done:
		return err
	case <-time.After(timeout):
		return fmt.Errorf("server still running %v after cancel", timeout)
	}
}
