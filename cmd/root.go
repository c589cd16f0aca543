package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/scoutline/sourcing-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "sourcing-cli",
	Short: "Candidate sourcing pipeline",
	Long:  "Fans a structured search out to code-hosting, Q&A, professional-network, and web-search platforms, merges duplicate identities, and scores the resulting profiles.",

	// Runtime failures (invalid criteria, unreachable store) are not usage
	// mistakes; report them once in main without the help text.
	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "sourcing-cli:", err)
		os.Exit(1)
	}
}
