// Package testutil holds helpers for tests that need a running server or a
// DefraDB container.
package testutil

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"
	"github.com/google/uuid"
)

// ContainerPrefix starts the name of every container created by tests.
const ContainerPrefix = "cinemind-test-"

const maxNameLen = 30

// TestingT is the part of testing.T the Docker helpers need.
type TestingT interface {
	Name() string
	Cleanup(func())
	Logf(format string, args ...any)
	Skipf(format string, args ...any)
	Helper()
}

// DockerClient returns a Docker client, or skips the test when no daemon
// answers. Containers named after the test are removed when it ends.
func DockerClient(t TestingT) *client.Client {
	t.Helper()

	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		t.Skipf("docker client unavailable: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := cli.Ping(ctx); err != nil {
		cli.Close()
		t.Skipf("docker is not running: %v", err)
	}

	prefix := testPrefix(t)
	t.Cleanup(func() {
		purge(t, cli, prefix)
		cli.Close()
	})
	return cli
}

// UniqueContainerName returns cinemind-test-<test name>-<random>.
func UniqueContainerName(t TestingT) string {
	t.Helper()
	return testPrefix(t) + "-" + uuid.NewString()[:8]
}

func testPrefix(t TestingT) string {
	return ContainerPrefix + containerSafe(t.Name())
}

var (
	separators = regexp.MustCompile(`[/_-]`)
	unsafeName = regexp.MustCompile(`[^a-zA-Z0-9-]`)
)

// containerSafe maps a test name onto characters Docker accepts in names.
func containerSafe(name string) string {
	s := unsafeName.ReplaceAllString(separators.ReplaceAllString(name, "-"), "")
	if len(s) > maxNameLen {
		s = s[:maxNameLen]
	}
	return s
}

// purge force-removes every container whose name starts with prefix.
func purge(t TestingT, cli *client.Client, prefix string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	list, err := cli.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filters.NewArgs(filters.Arg("name", prefix)),
	})
	if err != nil {
		t.Logf("cleanup: list containers: %v", err)
		return
	}
	for _, c := range list {
		if len(c.Names) == 0 {
			continue
		}
		name := strings.TrimPrefix(c.Names[0], "/")
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		if err := cli.ContainerRemove(ctx, c.ID, container.RemoveOptions{Force: true, RemoveVolumes: true}); err != nil {
			t.Logf("cleanup: remove %s: %v", name, err)
			continue
		}
		t.Logf("cleanup: removed %s", name)
	}
}
