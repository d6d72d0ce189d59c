package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cinemind/cinemind/internal/catalog"
)

var seedCmd = &cobra.Command{
	Use:   "seed-check <file>",
	Short: "Validate a catalog seed file",
	Long: `Parse and validate a YAML seed file without starting the server.

Seed files are loaded into an empty catalog at startup through
store.seed_file or 'cinemind serve --seed'.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		movies, err := catalog.LoadSeed(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d movies OK\n", args[0], len(movies))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
