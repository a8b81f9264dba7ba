package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/market-pulse/internal/housing"
)

var housingCmd = &cobra.Command{
	Use:   "housing",
	Short: "Inspect the bulk housing-index dataset",
}

var housingStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which housing index files are loaded and how fresh they are",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ds, err := housing.Load(cfg.Housing.DataDir)
		if err != nil {
			return eris.Wrapf(err, "load housing dataset from %s", cfg.Housing.DataDir)
		}

		formatHousingStatus(os.Stdout, ds.Status())
		fmt.Fprintf(os.Stdout, "\n%d regions loaded\n", len(ds.Regions()))
		return nil
	},
}

func formatHousingStatus(w io.Writer, statuses []housing.IndexStatus) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tFILE\tREGIONS\tLATEST")
	for _, s := range statuses {
		latest := "-"
		if s.Latest != nil {
			latest = s.Latest.Format("2006-01-02")
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", s.Index, s.File, s.Regions, latest)
	}
	_ = tw.Flush()
}

func init() {
	housingCmd.AddCommand(housingStatusCmd)
	rootCmd.AddCommand(housingCmd)
}
