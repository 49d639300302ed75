package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "chronos",
	Short: "Chronos - research workspace over a candidate engine",
	Long: `Chronos Unified CLI

Go BFF for trading research workspaces.
Orchestrates scans against the remote candidate engine and assembles
per-universe workspace views for the UI.

Usage:
  go run ./cmd/chronos [command]

Examples:
  go run ./cmd/chronos serve
  go run ./cmd/chronos scan --universe 1 --template 3
  go run ./cmd/chronos universe create "KOSPI Momentum"
  go run ./cmd/chronos templates`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
