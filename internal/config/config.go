// Package config resolves dataqa settings from defaults, a YAML file, a
// .env file and DATAQA_* environment variables, in that order.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/peekknuf/dataqa/internal/parser"
)

var ErrInvalidConfig = errors.New("invalid configuration")

const (
	EnvPrefix       = "DATAQA_"
	DefaultFileName = ".dataqa.yaml"
)

// Config represents the complete application configuration
type Config struct {
	Delimiter  string   `yaml:"delimiter"` // Empty detects the delimiter
	NullTokens []string `yaml:"null_tokens"`
	Sheet      string   `yaml:"sheet"`
	Workers    int      `yaml:"workers"` // 0 uses one worker per CPU

	Bins          int     `yaml:"bins"` // 0 uses Sturges' rule
	DensityPoints int     `yaml:"density_points"`
	PlotWidth     float64 `yaml:"plot_width"`  // inches
	PlotHeight    float64 `yaml:"plot_height"` // inches

	MMapLimit int64 `yaml:"mmap_limit"` // bytes; 0 disables memory mapping

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"` // text or json
}

func Default() *Config {
	return &Config{
		NullTokens:    append([]string(nil), parser.DefaultNullTokens...),
		DensityPoints: 200,
		PlotWidth:     8,
		PlotHeight:    5,
		MMapLimit:     512 * 1024 * 1024,
		LogLevel:      "warn",
		LogFormat:     "text",
	}
}

// Load resolves the configuration. An explicit path must exist; with an
// empty path $HOME/.dataqa.yaml is read when present.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = defaultPath()
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(home, DefaultFileName)
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Delimiter = getEnvOrDefault("DELIMITER", c.Delimiter)
	c.Sheet = getEnvOrDefault("SHEET", c.Sheet)
	c.LogLevel = getEnvOrDefault("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnvOrDefault("LOG_FORMAT", c.LogFormat)

	if v, ok := lookupEnv("NULL_TOKENS"); ok {
		c.NullTokens = strings.Split(v, ",")
	}

	var err error
	if c.Workers, err = getEnvIntOrDefault("WORKERS", c.Workers); err != nil {
		return err
	}
	if c.Bins, err = getEnvIntOrDefault("BINS", c.Bins); err != nil {
		return err
	}
	if c.DensityPoints, err = getEnvIntOrDefault("DENSITY_POINTS", c.DensityPoints); err != nil {
		return err
	}
	if c.PlotWidth, err = getEnvFloatOrDefault("PLOT_WIDTH", c.PlotWidth); err != nil {
		return err
	}
	if c.PlotHeight, err = getEnvFloatOrDefault("PLOT_HEIGHT", c.PlotHeight); err != nil {
		return err
	}
	limit, err := getEnvIntOrDefault("MMAP_LIMIT", int(c.MMapLimit))
	if err != nil {
		return err
	}
	c.MMapLimit = int64(limit)
	return nil
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	if c.Delimiter != "" {
		r, size := utf8.DecodeRuneInString(c.Delimiter)
		if size != len(c.Delimiter) || !parser.IsValidDelimiter(r) {
			return fmt.Errorf("%w: unsupported delimiter %q", ErrInvalidConfig, c.Delimiter)
		}
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative", ErrInvalidConfig)
	}
	if c.Bins < 0 {
		return fmt.Errorf("%w: bins must not be negative", ErrInvalidConfig)
	}
	if c.DensityPoints < 0 {
		return fmt.Errorf("%w: density_points must not be negative", ErrInvalidConfig)
	}
	if c.PlotWidth <= 0 || c.PlotHeight <= 0 {
		return fmt.Errorf("%w: plot size must be positive", ErrInvalidConfig)
	}
	if c.MMapLimit < 0 {
		return fmt.Errorf("%w: mmap_limit must not be negative", ErrInvalidConfig)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json", ErrInvalidConfig)
	}
	return nil
}

// DelimiterRune returns the configured delimiter, or 0 to detect it.
func (c *Config) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	if r == utf8.RuneError {
		return 0
	}
	return r
}

func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + key)
	return v, ok && v != ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, ok := lookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) (int, error) {
	value, ok := lookupEnv(key)
	if !ok {
		return defaultValue, nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s%s=%q is not an integer", ErrInvalidConfig, EnvPrefix, key, value)
	}
	return i, nil
}

func getEnvFloatOrDefault(key string, defaultValue float64) (float64, error) {
	value, ok := lookupEnv(key)
	if !ok {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s%s=%q is not a number", ErrInvalidConfig, EnvPrefix, key, value)
	}
	return f, nil
}
