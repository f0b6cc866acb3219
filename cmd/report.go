package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/peekknuf/dataqa/internal/connectors"
	"github.com/peekknuf/dataqa/internal/profiler"
)

var (
	reportWorkers   int
	reportOutput    string
	reportFormat    string
	reportRecursive bool
)

// FileReport is the outcome of profiling one file.
type FileReport struct {
	Path   string           `json:"path"`
	Report *profiler.Report `json:"report,omitempty"`
	Error  string           `json:"error,omitempty"`

	err error
}

var reportCmd = &cobra.Command{
	Use:     "report [file or directory]",
	Aliases: []string{"describe"},
	Short:   "Generate a data quality report for a file or a directory of files",
	Long: `Generate a data quality report: missing values, unique counts per column
and per column type, value counts for text columns and a statistical
description of numeric columns.

Examples:
  dataqa report file.csv                        # Single file
  dataqa report /data/directory/ --recursive    # Every supported file below a directory
  dataqa report file.parquet --format json      # JSON output
  dataqa report file.csv --output results.txt   # Save output`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch reportFormat {
		case "text", "json":
		default:
			return fmt.Errorf("unknown format %q (want text or json)", reportFormat)
		}

		targetPath := args[0]
		fileInfo, err := os.Stat(targetPath)
		if err != nil {
			return fmt.Errorf("error accessing %s: %w", targetPath, err)
		}

		startTime := time.Now()
		var results []FileReport
		if fileInfo.IsDir() {
			results, err = reportDirectory(cmd, targetPath)
			if err != nil {
				return err
			}
		} else {
			results = []FileReport{reportFile(cmd.Context(), targetPath, workerCount(reportWorkers))}
		}

		logger.WithFields(logrus.Fields{
			"files":    len(results),
			"duration": time.Since(startTime).Round(time.Millisecond),
		}).Info("report finished")

		if err := writeResults(cmd, results, fileInfo.IsDir()); err != nil {
			return err
		}

		failed := 0
		for _, r := range results {
			if r.err != nil {
				logger.WithError(r.err).WithField("path", r.Path).Error("failed to profile file")
				failed++
			}
		}
		if failed == 1 && len(results) == 1 {
			return results[0].err
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files failed", failed, len(results))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().IntVar(&reportWorkers, "workers", 0,
		"Number of parallel workers (default: config, then CPU cores)")
	reportCmd.Flags().StringVar(&reportOutput, "output", "",
		"Output file to save results (default: stdout)")
	reportCmd.Flags().StringVar(&reportFormat, "format", "text",
		"Output format (text, json)")
	reportCmd.Flags().BoolVar(&reportRecursive, "recursive", false,
		"Process directories recursively")
}

// reportFile loads and profiles a single file. Errors are recorded in the
// result so one bad file does not stop a directory run.
func reportFile(ctx context.Context, path string, workers int) FileReport {
	result := FileReport{Path: path}

	tbl, err := connectors.Load(ctx, path, loadOptions())
	if err != nil {
		result.err = err
		result.Error = err.Error()
		return result
	}
	defer tbl.Release()

	p, err := profiler.NewWithConfig(tbl, profiler.ProfilerConfig{Workers: workers, Logger: logger})
	if err != nil {
		result.err = err
		result.Error = err.Error()
		return result
	}

	result.Report = p.GenerateReport()
	return result
}

func reportDirectory(cmd *cobra.Command, dirPath string) ([]FileReport, error) {
	options := connectors.DiscoveryOptions{
		Recursive: reportRecursive,
	}

	files, fileCount, err := connectors.DiscoverFiles(dirPath, connectors.SupportedExtensions(), options)
	if err != nil {
		return nil, fmt.Errorf("failed to discover files: %w", err)
	}
	if fileCount == 0 {
		logger.WithField("dir", dirPath).Warn("no data files found")
		return nil, nil
	}
	logger.WithField("files", fileCount).Info("discovered data files")

	progressBar := progressbar.NewOptions(fileCount,
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetDescription("[cyan][reset] Processing files..."),
		progressbar.OptionSetWidth(20),
		progressbar.OptionShowCount(),
	)

	// Files are processed in parallel; each profiler works sequentially.
	results := make([]FileReport, fileCount)
	var g errgroup.Group
	g.SetLimit(workerCount(reportWorkers))
	for i, f := range files {
		g.Go(func() error {
			results[i] = reportFile(cmd.Context(), f.Path, 1)
			_ = progressBar.Add(1)
			return nil
		})
	}
	_ = g.Wait()
	_ = progressBar.Finish()

	return results, nil
}

func writeResults(cmd *cobra.Command, results []FileReport, multi bool) error {
	var w io.Writer = cmd.OutOrStdout()
	if reportOutput != "" {
		f, err := os.Create(reportOutput)
		if err != nil {
			return fmt.Errorf("failed to create output file %s: %w", reportOutput, err)
		}
		defer f.Close()
		w = f
	}

	var err error
	if reportFormat == "json" {
		err = writeJSON(w, results, multi)
	} else {
		err = writeText(w, results, multi)
	}
	if err != nil {
		return err
	}

	if reportOutput != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Results saved to %s\n", reportOutput)
	}
	return nil
}

func writeText(w io.Writer, results []FileReport, multi bool) error {
	written := 0
	for _, r := range results {
		if r.Report == nil {
			continue
		}
		if multi {
			if written > 0 {
				if _, err := fmt.Fprintln(w); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintf(w, "==> %s <==\n", filepath.ToSlash(r.Path)); err != nil {
				return err
			}
		}
		if _, err := r.Report.WriteTo(w); err != nil {
			return err
		}
		written++
	}
	return nil
}

func writeJSON(w io.Writer, results []FileReport, multi bool) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if !multi {
		if len(results) == 0 || results[0].Report == nil {
			return nil
		}
		return enc.Encode(results[0].Report)
	}
	if results == nil {
		results = []FileReport{}
	}
	return enc.Encode(results)
}
