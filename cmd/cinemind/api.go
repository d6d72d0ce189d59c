package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cinemind/cinemind/internal/api"
	"github.com/cinemind/cinemind/internal/home"
	"github.com/cinemind/cinemind/internal/server/endpoints"
)

var (
	serverURL string
	apiToken  string
)

// apiClient builds the client at runtime (after flag parsing). Without
// --token it falls back to the token saved by 'api users login'.
func apiClient() *api.Client {
	token := apiToken
	if token == "" {
		if h, err := home.New(homeDir); err == nil {
			token = h.Token()
		}
	}
	return api.NewClient(serverURL).WithToken(token)
}

// saveToken stores the login token in the home directory.
func saveToken(token string) error {
	h, err := getHome()
	if err != nil {
		return err
	}
	return h.SaveToken(token)
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the token saved by 'api users login'",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		if err := h.ClearToken(); err != nil {
			return err
		}
		slog.Info("saved token removed", "path", h.TokenPath())
		return nil
	},
}

func init() {
	registry := api.NewRegistry()
	for _, ep := range endpoints.All(endpoints.Config{SaveToken: saveToken}) {
		registry.Register(ep)
	}
	apiCmd := registry.BuildCommands(apiClient)

	// Persistent so all subcommands inherit them
	apiCmd.PersistentFlags().StringVar(
		&serverURL, "server", "http://localhost:8080", "Server URL",
	)
	apiCmd.PersistentFlags().StringVar(
		&apiToken, "token", "", "Bearer token (default: token saved by 'api users login')",
	)

	apiCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(apiCmd)
}
