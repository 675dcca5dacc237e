package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/biotrust-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "biotrust",
	Short: "Executive promise tracking and FDA approval analysis",
	Long:  "Extracts dated commitments from healthcare press releases, scores executive credibility against delivery history, and estimates FDA approval probability from division patterns and decided precedents.",
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
