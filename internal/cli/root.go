package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mcoot/netpong/internal/dependencies/random"
)

var (
	cfg    *Config
	client *Client
	rng    random.Random = random.New()
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "pong",
		Short: "Command-line client for the pong server",
		Long: `pong talks to a pong game server over its line-delimited JSON protocol.

It can create and join games, stream the match as it is played, steer the
paddle automatically, and query the server's status API.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			client = NewClient(cfg.APIURL)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerAddr, "server", cfg.ServerAddr, "Game server address (env: PONG_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.APIURL, "api", cfg.APIURL, "Status API URL (env: PONG_API)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Print every game state frame")

	// Add subcommands
	rootCmd.AddCommand(newCreateCmd())
	rootCmd.AddCommand(newJoinCmd())
	rootCmd.AddCommand(newLobbiesCmd())
	rootCmd.AddCommand(newMatchesCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
