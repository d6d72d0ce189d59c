package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cinemind/cinemind/internal/api"
	"github.com/cinemind/cinemind/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default config file",
	Long: `Write a config file populated with defaults.

Without a path the file goes to ~/.cinemind/config.yaml. Secrets default to
${ENV_VAR} references (CINEMIND_JWT_SECRET, GEMINI_API_KEY) so they can
stay out of the file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := getHome()
		if err != nil {
			return err
		}
		path := h.ConfigPath()
		if len(args) == 1 {
			path = args[0]
		}
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := getHome()
		if err != nil {
			return err
		}
		mgr, err := loadConfig(h)
		if err != nil {
			return err
		}
		cfg := *mgr.Get()
		if cfg.AI.APIKey != "" && cfg.AIKey() != "" {
			cfg.AI.APIKey = "(set)"
		}
		if cfg.Auth.JWTSecret != "" && cfg.Secret() != "" {
			cfg.Auth.JWTSecret = "(set)"
		}
		return api.Output(cfg)
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
