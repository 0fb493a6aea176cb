package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "dgctl",
		Short: "CLI tool for the dashguard session trust API",
		Long: `dgctl is a CLI tool for interacting with the dashguard JSON API.

It supports submitting session telemetry, querying leaderboards, and
checking server health.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			client = NewClient(cfg.ServerURL, cfg.Token)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: DASHGUARD_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.Token, "token", cfg.Token, "Bearer token for registered identity (env: DASHGUARD_TOKEN)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newSubmitCmd())
	rootCmd.AddCommand(newLeaderboardCmd())
	rootCmd.AddCommand(newWinnersCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
