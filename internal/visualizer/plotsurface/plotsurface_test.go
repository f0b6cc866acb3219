package plotsurface

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peekknuf/dataqa/internal/dataset"
	"github.com/peekknuf/dataqa/internal/visualizer"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func assertPNG(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngMagic), path)
}

func TestRenderDataset(t *testing.T) {
	tbl, err := dataset.FromColumns(nil,
		dataset.ColumnValues{Name: "city name", Type: arrow.BinaryTypes.String, Values: []any{"Oslo", "Rome", "Rome", nil}},
		dataset.ColumnValues{Name: "age", Type: arrow.PrimitiveTypes.Int64, Values: []any{10, 20, 30, 40}},
		dataset.ColumnValues{Name: "flag", Type: arrow.FixedWidthTypes.Boolean, Values: []any{true, false, true, true}},
	)
	require.NoError(t, err)
	defer tbl.Release()

	dir := filepath.Join(t.TempDir(), "plots")
	s, err := New(dir, WithSize(4, 3))
	require.NoError(t, err)

	v, err := visualizer.New(tbl)
	require.NoError(t, err)
	require.NoError(t, v.Render(s))

	assert.Equal(t, []string{
		filepath.Join(dir, "01_city_name.png"),
		filepath.Join(dir, "02_age.png"),
	}, s.Files())
	for _, f := range s.Files() {
		assertPNG(t, f)
	}
}

func TestEmptyCharts(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Bar(visualizer.BarChart{Column: "empty", Title: "Value counts for empty", LabelRotation: math.Pi / 4}))
	require.NoError(t, s.Histogram(visualizer.Histogram{Column: "none", Title: "Distribution of none", Bins: 1}))
	require.NoError(t, s.Histogram(visualizer.Histogram{Column: "same", Values: []float64{5, 5}, Bins: 2}))

	require.Len(t, s.Files(), 3)
	for _, f := range s.Files() {
		assertPNG(t, f)
	}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "a_b", FileName("a/b"))
	assert.Equal(t, "total_usd_", FileName("total (usd)"))
	assert.Equal(t, "ok-name_1", FileName("ok-name_1"))
	assert.Equal(t, "column", FileName(""))
}
