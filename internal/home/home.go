// Package home locates the per-user cinemind directory: config file, saved
// API token and DefraDB data.
package home

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// EnvVar overrides the default location when --home is not given.
const EnvVar = "CINEMIND_HOME"

const (
	DefaultDirName = ".cinemind"
	DefraDirName   = "defradb"
	ConfigFileName = "config.yaml"
	TokenFileName  = "token"
)

// Dir is a cinemind home directory. Nothing is created until EnsureExists
// or SaveToken is called.
type Dir struct {
	root string
}

// New resolves the home directory: path if set, then $CINEMIND_HOME, then
// ~/.cinemind.
func New(path string) (*Dir, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(userHome, DefaultDirName)
	}
	return &Dir{root: filepath.Clean(path)}, nil
}

func (d *Dir) Path() string       { return d.root }
func (d *Dir) DefraPath() string  { return d.join(DefraDirName) }
func (d *Dir) ConfigPath() string { return d.join(ConfigFileName) }
func (d *Dir) TokenPath() string  { return d.join(TokenFileName) }

func (d *Dir) join(name string) string { return filepath.Join(d.root, name) }

// EnsureExists creates the home and its DefraDB data directory.
func (d *Dir) EnsureExists() error {
	if err := os.MkdirAll(d.DefraPath(), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", d.DefraPath(), err)
	}
	return nil
}

// Exists reports whether the home directory is present.
func (d *Dir) Exists() bool { return isDir(d.root) }

// ConfigExists reports whether a config file sits in the home directory.
func (d *Dir) ConfigExists() bool {
	info, err := os.Stat(d.ConfigPath())
	return err == nil && info.Mode().IsRegular()
}

// SaveToken stores a bearer token readable only by the current user.
func (d *Dir) SaveToken(token string) error {
	if err := os.MkdirAll(d.root, 0o755); err != nil {
		return fmt.Errorf("failed to create home directory: %w", err)
	}
	return os.WriteFile(d.TokenPath(), []byte(strings.TrimSpace(token)+"\n"), 0o600)
}

// Token returns the saved bearer token, or "" if none was saved.
func (d *Dir) Token() string {
	data, err := os.ReadFile(d.TokenPath())
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// ClearToken deletes the saved token. A missing token is not an error.
func (d *Dir) ClearToken() error {
	if err := os.Remove(d.TokenPath()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
