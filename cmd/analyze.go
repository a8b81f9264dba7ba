package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/market-pulse/internal/analyzer"
	"github.com/sells-group/market-pulse/internal/model"
)

var (
	analyzeLocation string
	analyzeMode     string
	analyzeTopN     int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze the investment potential of a location",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, st, err := analyzer.FromConfig(ctx, cfg)
		if err != nil {
			return eris.Wrap(err, "init analyzer")
		}
		defer st.Close() //nolint:errcheck

		query := model.LocationQuery{
			Location: analyzeLocation,
			Mode:     model.Mode(analyzeMode),
			TopN:     analyzeTopN,
		}

		result, err := a.Analyze(ctx, query)
		if err != nil {
			return eris.Wrap(err, "analyze")
		}

		if result.Error != "" {
			zap.L().Warn("analysis did not complete",
				zap.String("location", analyzeLocation),
				zap.String("error", result.Error),
			)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeLocation, "location", "", "location to analyze, e.g. \"Denver, CO\" (required)")
	analyzeCmd.Flags().StringVar(&analyzeMode, "mode", "point", "analysis mode: point or region")
	analyzeCmd.Flags().IntVar(&analyzeTopN, "top-n", 0, "number of region candidates to list in region mode")
	_ = analyzeCmd.MarkFlagRequired("location")
	rootCmd.AddCommand(analyzeCmd)
}
