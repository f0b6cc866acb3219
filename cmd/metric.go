package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/peekknuf/dataqa/internal/connectors"
	"github.com/peekknuf/dataqa/internal/profiler"
)

var metricWorkers int

// metrics maps a metric name to the console call that prints it.
var metrics = map[string]func(*profiler.Profiler, *profiler.Console) error{
	"missing": func(p *profiler.Profiler, c *profiler.Console) error {
		return c.PrintCounts("Missing value counts", p.CountMissing())
	},
	"unique": func(p *profiler.Profiler, c *profiler.Console) error {
		return c.PrintCounts("Unique value counts", p.CountUnique())
	},
	"text": func(p *profiler.Profiler, c *profiler.Console) error {
		return c.PrintCounts("Unique text value counts", p.CountTextValues())
	},
	"float": func(p *profiler.Profiler, c *profiler.Console) error {
		return c.PrintCounts("Unique float value counts", p.CountFloatValues())
	},
	"int": func(p *profiler.Profiler, c *profiler.Console) error {
		return c.PrintCounts("Unique integer value counts", p.CountIntValues())
	},
	"categorical": func(p *profiler.Profiler, c *profiler.Console) error {
		return c.PrintFrequencies("Value counts for categorical columns", p.ValueCountsCategorical())
	},
	"describe": func(p *profiler.Profiler, c *profiler.Console) error {
		return c.PrintSummaries("Statistical description of numeric columns", p.DescribeNumeric())
	},
}

func metricNames() []string {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var metricCmd = &cobra.Command{
	Use:   "metric [name] [file]",
	Short: "Print a single data quality metric for a file",
	Long: fmt.Sprintf(`Print a single data quality metric for a file.

Metrics: %s

Examples:
  dataqa metric missing file.csv
  dataqa metric categorical file.xlsx`, strings.Join(metricNames(), ", ")),
	Args:      cobra.ExactArgs(2),
	ValidArgs: metricNames(),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, path := args[0], args[1]
		run, ok := metrics[name]
		if !ok {
			return fmt.Errorf("unknown metric %q (want one of %s)", name, strings.Join(metricNames(), ", "))
		}

		tbl, err := connectors.Load(cmd.Context(), path, loadOptions())
		if err != nil {
			return err
		}
		defer tbl.Release()

		p, err := profiler.NewWithConfig(tbl, profiler.ProfilerConfig{
			Workers: workerCount(metricWorkers),
			Logger:  logger,
		})
		if err != nil {
			return err
		}

		return run(p, profiler.NewConsole(cmd.OutOrStdout()))
	},
}

func init() {
	rootCmd.AddCommand(metricCmd)
	metricCmd.Flags().IntVar(&metricWorkers, "workers", 0,
		"Number of parallel workers for the numeric description")
}
