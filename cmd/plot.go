package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/peekknuf/dataqa/internal/connectors"
	"github.com/peekknuf/dataqa/internal/visualizer"
	"github.com/peekknuf/dataqa/internal/visualizer/plotsurface"
)

var (
	plotOut  string
	plotBins int
)

var plotCmd = &cobra.Command{
	Use:   "plot [file]",
	Short: "Plot value counts and distributions of every column",
	Long: `Write one PNG per column: a bar chart of value counts for text
columns and a histogram with a density curve for numeric columns.

Examples:
  dataqa plot file.csv                    # Writes into ./plots
  dataqa plot file.parquet --out charts   # Custom output directory
  dataqa plot file.csv --bins 20          # Fixed histogram bins`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tbl, err := connectors.Load(cmd.Context(), args[0], loadOptions())
		if err != nil {
			return err
		}
		defer tbl.Release()

		bins := cfg.Bins
		if plotBins > 0 {
			bins = plotBins
		}

		v, err := visualizer.New(tbl,
			visualizer.WithBins(bins),
			visualizer.WithDensityPoints(cfg.DensityPoints),
			visualizer.WithLogger(logger),
		)
		if err != nil {
			return err
		}

		surface, err := plotsurface.New(plotOut,
			plotsurface.WithSize(cfg.PlotWidth, cfg.PlotHeight),
			plotsurface.WithLogger(logger),
		)
		if err != nil {
			return err
		}

		if err := v.Render(surface); err != nil {
			return fmt.Errorf("render plots: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d plots to %s\n", len(surface.Files()), plotOut)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(plotCmd)
	plotCmd.Flags().StringVar(&plotOut, "out", "plots",
		"Directory to write PNG files into")
	plotCmd.Flags().IntVar(&plotBins, "bins", 0,
		"Histogram bins (default: config, then Sturges' rule)")
}
