package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cinemind/cinemind/internal/api"
	"github.com/cinemind/cinemind/internal/config"
	"github.com/cinemind/cinemind/internal/home"
	"github.com/cinemind/cinemind/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "cinemind",
	Short: "Movie catalog server with AI mood search",
	Long: `CineMind serves a movie catalog over HTTP with accounts, watchlists and
two AI features backed by a generative model:

  - Mood search: describe how you feel, get ranked picks from the catalog
  - Metadata drafting: admins get a proposed description, genre, release
    date and rating for a new title, to review before saving

Run 'cinemind config init' to write a starter config, then 'cinemind serve'.`,
	Version:      version.GitRelease,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.cinemind/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "cinemind home directory (default: ~/.cinemind)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}

// getHome returns the home directory, creating it if needed.
func getHome() (*home.Dir, error) {
	h, err := home.New(homeDir)
	if err != nil {
		return nil, err
	}
	if err := h.EnsureExists(); err != nil {
		return nil, fmt.Errorf("failed to create home directory: %w", err)
	}
	return h, nil
}

// loadConfig resolves the config file from --config, then the home directory.
func loadConfig(h *home.Dir) (*config.Manager, error) {
	path := cfgFile
	if path == "" && h.ConfigExists() {
		path = h.ConfigPath()
	}
	return config.NewManager(path)
}
