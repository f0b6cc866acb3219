package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/peekknuf/dataqa/internal/connectors"
	"github.com/peekknuf/dataqa/internal/dataset"
	"github.com/peekknuf/dataqa/internal/profiler"
)

var (
	filename   string
	dirPath    string
	fileFormat string
	recursive  bool
	verbose    bool
	minSize    int64
	maxSize    int64
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan directory for data files",
	Long: `Scan a directory and print a short quality overview
(rows, columns, missing values, distinct ratio) of every data file`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		if filename != "" {
			specificFile := filepath.Join(dirPath, filename)
			info, err := os.Stat(specificFile)
			if err != nil {
				return fmt.Errorf("file not found: %s", specificFile)
			}
			return scanFile(cmd, out, connectors.FileMeta{
				Path:     specificFile,
				Size:     info.Size(),
				Modified: info.ModTime(),
			})
		}

		exts := connectors.SupportedExtensions()
		if fileFormat != "" {
			exts = []string{fileFormat}
		}

		// First, count the files
		options := connectors.DiscoveryOptions{
			Recursive: recursive,
			MinSize:   minSize,
			MaxSize:   maxSize,
		}

		files, fileCount, err := connectors.DiscoverFiles(dirPath, exts, options)
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}
		if fileCount == 0 {
			fmt.Fprintf(out, "No data files found in %s\n", dirPath)
			return nil
		}

		// Now create the progress bar with the correct count
		bar := progressbar.NewOptions(fileCount,
			progressbar.OptionSetWriter(cmd.ErrOrStderr()),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetDescription("[cyan][reset] Processing files..."),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
			progressbar.OptionShowCount(),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprintln(cmd.ErrOrStderr())
			}),
		)

		var totalBytes int64
		for _, file := range files {
			_ = bar.Add(1)
			totalBytes += file.Size

			if err := scanFile(cmd, out, file); err != nil {
				logger.WithError(err).WithField("path", file.Path).Error("failed to profile file")
			}
		}
		_ = bar.Finish()

		fmt.Fprintf(out, "\nScanned %d files (%s)\n", fileCount, humanize.Bytes(uint64(totalBytes)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().StringVarP(&filename, "file", "n", "",
		"You might want to check specific file only")
	scanCmd.Flags().StringVarP(&dirPath, "dir", "d", "",
		"Directory to scan (required)")
	scanCmd.Flags().StringVarP(&fileFormat, "format", "f", "",
		"File extension to analyze (csv, tsv, parquet, xlsx, csv.gz, ...; default: all supported)")
	scanCmd.Flags().BoolVarP(&recursive, "recursive", "r", false,
		"Search directories recursively")
	scanCmd.Flags().BoolVarP(&verbose, "verbose", "v", false,
		"Display per-column details")
	scanCmd.Flags().Int64Var(&minSize, "min-size", 0,
		"Minimum file size in bytes")
	scanCmd.Flags().Int64Var(&maxSize, "max-size", 0,
		"Maximum file size in bytes")

	scanCmd.MarkFlagRequired("dir")
}

// overview is the per-file quality summary printed by scan.
type overview struct {
	Rows          int
	Columns       int
	NullRatio     float64 // missing cells over all cells
	DistinctRatio float64 // distinct values over all cells
}

func overviewOf(ds dataset.Dataset, p *profiler.Profiler) overview {
	o := overview{Rows: ds.NumRows(), Columns: len(ds.Columns())}
	cells := o.Rows * o.Columns
	if cells == 0 {
		return o
	}

	var missing, unique int
	for _, c := range p.CountMissing() {
		missing += c.Value
	}
	for _, c := range p.CountUnique() {
		unique += c.Value
	}
	o.NullRatio = float64(missing) / float64(cells)
	o.DistinctRatio = float64(unique) / float64(cells)
	return o
}

func scanFile(cmd *cobra.Command, out io.Writer, file connectors.FileMeta) error {
	tbl, err := connectors.Load(cmd.Context(), file.Path, loadOptions())
	if err != nil {
		return err
	}
	defer tbl.Release()

	p, err := profiler.NewWithConfig(tbl, profiler.ProfilerConfig{Logger: logger})
	if err != nil {
		return err
	}

	o := overviewOf(tbl, p)
	fmt.Fprintf(out, "\nFile: %s\n", file.Path)
	fmt.Fprintf(out, "- Size: %s (modified %s)\n", humanize.Bytes(uint64(file.Size)), humanize.Time(file.Modified))
	fmt.Fprintf(out, "- Rows: %s\n", humanize.Comma(int64(o.Rows)))
	fmt.Fprintf(out, "- Columns: %d\n", o.Columns)
	fmt.Fprintf(out, "- Null Value Percentage: %.2f%%\n", o.NullRatio*100)
	fmt.Fprintf(out, "- Distinct Value Ratio: %.2f\n", o.DistinctRatio)

	// check for verbose flag
	if verbose {
		for _, c := range tbl.Columns() {
			fmt.Fprintf(out, "\nColumn: %s\n", c.Name())
			fmt.Fprintf(out, "  Type: %s (%s)\n", c.Type(), profiler.ClassifyColumn(c))
			fmt.Fprintf(out, "  Nulls: %d\n", c.NullCount())
			fmt.Fprintf(out, "  Distinct: %d\n", c.DistinctCount())
			if profiler.ClassifyColumn(c).Numeric() {
				s := profiler.Describe(c)
				fmt.Fprintf(out, "  Min: %s\n", profiler.FormatStat(s.Min))
				fmt.Fprintf(out, "  Max: %s\n", profiler.FormatStat(s.Max))
			}
		}
	}
	return nil
}
