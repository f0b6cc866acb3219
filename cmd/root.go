package cmd

import (
	"os"
	"runtime"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/peekknuf/dataqa/internal/config"
	"github.com/peekknuf/dataqa/internal/connectors"
	dqio "github.com/peekknuf/dataqa/internal/io"
	"github.com/peekknuf/dataqa/internal/logging"
)

var (
	cfgFile  string
	logLevel string

	cfg    *config.Config
	logger *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "dataqa",
	Short: "Data Quality Assurance CLI",
	Long: `A data quality assessment tool for tabular files.
Reports missing values, unique counts, categorical frequencies and
numeric summaries for CSV, TSV, Parquet and Excel files.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}

		logger, err = logging.NewWithWriter(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
		if err != nil {
			return err
		}
		logger.WithField("config", cfgFile).Debug("configuration loaded")
		return nil
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is $HOME/.dataqa.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (trace, debug, info, warn, error)")
}

// loadOptions maps the configuration onto loader options.
func loadOptions() connectors.LoadOptions {
	opts := connectors.DefaultLoadOptions()
	opts.Parser.Delimiter = cfg.DelimiterRune()
	opts.NullTokens = cfg.NullTokens
	opts.Sheet = cfg.Sheet
	opts.MMap = dqio.MMapConfig{
		MaxMapSize: cfg.MMapLimit,
		UseMmap:    cfg.MMapLimit > 0,
	}
	opts.Logger = logger
	return opts
}

// workerCount prefers the command's --workers flag, then the configuration,
// then the number of CPUs.
func workerCount(flag int) int {
	if flag > 0 {
		return flag
	}
	if cfg.Workers > 0 {
		return cfg.Workers
	}
	return runtime.NumCPU()
}
