package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose    bool
	jsonOutput bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "scamdunk",
	Short: "ScamDunk - pump-and-dump risk engine",
	Long: `ScamDunk Unified CLI

Scores tickers for pump-and-dump risk, tracks suspected schemes through
their lifecycle and aggregates the promoter accounts behind them.

Usage:
  go run ./cmd/scamdunk [command]

Examples:
  go run ./cmd/scamdunk api
  go run ./cmd/scamdunk scan ACME --input acme.json
  go run ./cmd/scamdunk schemes track data/inbox/daily-scan-2024-03-01.json
  go run ./cmd/scamdunk scheduler start`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
}
