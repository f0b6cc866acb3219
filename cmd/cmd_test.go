package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peekknuf/dataqa/internal/dataset"
	"github.com/peekknuf/dataqa/internal/profiler"
)

const nameAgeCSV = "name,age\na,10\nb,20\na,30\n,40\n"

// run executes the root command with args and returns stdout. Flag
// variables are reset first because cobra keeps them between executions.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cfgFile, logLevel = "", ""
	reportWorkers, reportOutput, reportFormat, reportRecursive = 0, "", "text", false
	metricWorkers = 0
	filename, dirPath, fileFormat, recursive, verbose, minSize, maxSize = "", "", "", false, false, 0, 0
	plotOut, plotBins = "plots", 0

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), err
}

// workspace isolates HOME and the working directory and writes files into
// a fresh directory.
func workspace(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return dir
}

func expectedNameAgeReport(t *testing.T) string {
	t.Helper()
	tbl, err := dataset.FromColumns(nil,
		dataset.ColumnValues{Name: "name", Type: arrow.BinaryTypes.String, Values: []any{"a", "b", "a", nil}},
		dataset.ColumnValues{Name: "age", Type: arrow.PrimitiveTypes.Int64, Values: []any{10, 20, 30, 40}},
	)
	require.NoError(t, err)
	defer tbl.Release()

	p, err := profiler.New(tbl)
	require.NoError(t, err)
	return p.GenerateReport().String()
}

func TestReportFile(t *testing.T) {
	dir := workspace(t, map[string]string{"people.csv": nameAgeCSV})

	out, err := run(t, "report", filepath.Join(dir, "people.csv"))
	require.NoError(t, err)
	assert.Equal(t, expectedNameAgeReport(t), out)
	assert.Contains(t, out, "Value counts for name:\n  a: 2\n  b: 1\n")
}

func TestReportJSON(t *testing.T) {
	dir := workspace(t, map[string]string{"people.csv": nameAgeCSV})

	out, err := run(t, "report", "--format", "json", filepath.Join(dir, "people.csv"))
	require.NoError(t, err)

	var report struct {
		Title    string `json:"title"`
		Sections []struct {
			Title string `json:"title"`
		} `json:"sections"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, profiler.ReportTitle, report.Title)
	require.Len(t, report.Sections, 7)
	assert.Equal(t, "Missing value counts", report.Sections[0].Title)
}

func TestReportDirectory(t *testing.T) {
	dir := workspace(t, map[string]string{
		"data/b.csv":        nameAgeCSV,
		"data/a.tsv":        "x\ty\n1\t2\n",
		"data/notes.txt":    "ignored",
		"data/nested/c.csv": "z\n1\n",
	})

	out, err := run(t, "report", "--workers", "2", filepath.Join(dir, "data"))
	require.NoError(t, err)

	a := strings.Index(out, "==> "+filepath.ToSlash(filepath.Join(dir, "data", "a.tsv"))+" <==")
	b := strings.Index(out, "==> "+filepath.ToSlash(filepath.Join(dir, "data", "b.csv"))+" <==")
	require.GreaterOrEqual(t, a, 0)
	require.Greater(t, b, a)
	assert.NotContains(t, out, "c.csv")

	out, err = run(t, "report", "--recursive", filepath.Join(dir, "data"))
	require.NoError(t, err)
	assert.Contains(t, out, "c.csv <==")
}

func TestReportOutputFile(t *testing.T) {
	dir := workspace(t, map[string]string{"people.csv": nameAgeCSV})
	target := filepath.Join(dir, "out.txt")

	out, err := run(t, "report", "--output", target, filepath.Join(dir, "people.csv"))
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, expectedNameAgeReport(t), string(data))
}

func TestReportErrors(t *testing.T) {
	dir := workspace(t, map[string]string{"notes.txt": "x"})

	_, err := run(t, "report", filepath.Join(dir, "notes.txt"))
	assert.Error(t, err)

	_, err = run(t, "report", filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)

	_, err = run(t, "report", "--format", "xml", filepath.Join(dir, "notes.txt"))
	assert.Error(t, err)
}

func TestMetric(t *testing.T) {
	dir := workspace(t, map[string]string{"people.csv": nameAgeCSV})
	path := filepath.Join(dir, "people.csv")

	out, err := run(t, "metric", "missing", path)
	require.NoError(t, err)
	assert.Equal(t, "Missing value counts:\nname: 1\nage: 0\n", out)

	out, err = run(t, "metric", "int", path)
	require.NoError(t, err)
	assert.Equal(t, "Unique integer value counts:\nage: 4\n", out)

	out, err = run(t, "metric", "describe", path)
	require.NoError(t, err)
	assert.Contains(t, out, "  75%: 32.50\n")

	_, err = run(t, "metric", "median", path)
	assert.Error(t, err)
}

func TestScan(t *testing.T) {
	dir := workspace(t, map[string]string{"people.csv": nameAgeCSV})

	out, err := run(t, "scan", "--dir", dir, "--verbose")
	require.NoError(t, err)
	assert.Contains(t, out, "- Rows: 4\n")
	assert.Contains(t, out, "- Columns: 2\n")
	assert.Contains(t, out, "- Null Value Percentage: 12.50%\n")
	assert.Contains(t, out, "Column: age\n")
	assert.Contains(t, out, "  Max: 40.00\n")
	assert.Contains(t, out, "Scanned 1 files")
}

func TestPlot(t *testing.T) {
	dir := workspace(t, map[string]string{"people.csv": nameAgeCSV})
	outDir := filepath.Join(dir, "charts")

	out, err := run(t, "plot", "--out", outDir, filepath.Join(dir, "people.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Wrote 2 plots to "+outDir+"\n", out)

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "01_name.png", entries[0].Name())
	assert.Equal(t, "02_age.png", entries[1].Name())
}
