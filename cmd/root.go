package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/neetprep/dedupe/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Duplicate contact resolution for the CRM",
	Long:  "Finds contacts sharing a phone number or email, picks the canonical record by business rules, and merges the rest into it pairwise with a full audit trail.",
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
		os.Exit(1)
	}
}
