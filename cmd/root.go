package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/market-pulse/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "market-pulse",
	Short: "Real-estate investability analysis",
	Long:  "Resolves a location, gathers housing, demographic, employment, amenity, and risk data from public sources, and scores its investment potential on a 0-100 scale.",
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
