package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME and the working directory at an empty directory.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, rune(0), cfg.DelimiterRune())
}

func TestLoadFile(t *testing.T) {
	dir := isolate(t)

	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
delimiter: ";"
null_tokens: ["-", "?"]
workers: 4
bins: 12
log_level: debug
log_format: json
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ';', cfg.DelimiterRune())
	assert.Equal(t, []string{"-", "?"}, cfg.NullTokens)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 12, cfg.Bins)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 200, cfg.DensityPoints)
}

func TestLoadHomeFile(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFileName), []byte("bins: 3\n"), 0644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Bins)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := isolate(t)

	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: 4\nsheet: Data\n"), 0644))
	t.Setenv("DATAQA_WORKERS", "2")
	t.Setenv("DATAQA_NULL_TOKENS", "x,y")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, "Data", cfg.Sheet)
	assert.Equal(t, []string{"x", "y"}, cfg.NullTokens)
}

func TestLoadDotEnv(t *testing.T) {
	dir := isolate(t)
	t.Cleanup(func() { os.Unsetenv("DATAQA_BINS") })
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DATAQA_BINS=9\n"), 0644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Bins)
}

func TestLoadErrors(t *testing.T) {
	dir := isolate(t)

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	unknown := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("colour: blue\n"), 0644))
	_, err = Load(unknown)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	t.Setenv("DATAQA_WORKERS", "many")
	_, err = Load("")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	tests := map[string]func(*Config){
		"negative workers":   func(c *Config) { c.Workers = -1 },
		"negative bins":      func(c *Config) { c.Bins = -2 },
		"multi-rune delim":   func(c *Config) { c.Delimiter = ";;" },
		"unsupported delim":  func(c *Config) { c.Delimiter = ":" },
		"zero plot width":    func(c *Config) { c.PlotWidth = 0 },
		"unknown log level":  func(c *Config) { c.LogLevel = "loud" },
		"unknown log format": func(c *Config) { c.LogFormat = "xml" },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}

	assert.NoError(t, Default().Validate())
}
