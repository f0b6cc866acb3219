package connectors

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/peekknuf/dataqa/internal/dataset"
)

const peopleCSV = "name,age\nJoe,10\nNA,20\nSue,\n"

func assertPeople(t *testing.T, tbl *dataset.Table) {
	t.Helper()

	require.Equal(t, 3, tbl.NumRows())
	cols := tbl.Columns()
	require.Len(t, cols, 2)

	assert.Equal(t, "name", cols[0].Name())
	assert.Equal(t, arrow.STRING, cols[0].Type().ID())
	assert.Equal(t, "Joe", cols[0].ValueStr(0))
	assert.True(t, cols[0].IsNull(1))

	assert.Equal(t, "age", cols[1].Name())
	assert.Equal(t, arrow.INT64, cols[1].Type().ID())
	v, ok := cols[1].Float64(1)
	assert.True(t, ok)
	assert.Equal(t, 20.0, v)
	assert.True(t, cols[1].IsNull(2))
}

func TestDetectFormat(t *testing.T) {
	tests := map[string]struct {
		Format      Format
		Compression Compression
	}{
		"a.csv":          {FormatCSV, NoCompression},
		"dir/A.CSV":      {FormatCSV, NoCompression},
		"a.tsv":          {FormatTSV, NoCompression},
		"a.csv.gz":       {FormatCSV, GzipCompression},
		"a.tsv.bz2":      {FormatTSV, Bzip2Compression},
		"a.csv.zst":      {FormatCSV, ZstdCompression},
		"a.parquet":      {FormatParquet, NoCompression},
		"report.xlsx":    {FormatXLSX, NoCompression},
		"archive.tar.gz": {"", ""},
		"a.parquet.gz":   {"", ""},
		"notes.txt":      {"", ""},
	}

	for path, want := range tests {
		format, comp, err := DetectFormat(path)
		if want.Format == "" {
			assert.ErrorIs(t, err, ErrUnsupportedFormat, path)
			continue
		}
		require.NoError(t, err, path)
		assert.Equal(t, want.Format, format, path)
		assert.Equal(t, want.Compression, comp, path)
	}
}

func TestLoadCSV(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	path := filepath.Join(t.TempDir(), "people.csv")
	require.NoError(t, os.WriteFile(path, []byte(peopleCSV), 0644))

	opts := DefaultLoadOptions()
	opts.Allocator = mem

	tbl, err := Load(context.Background(), path, opts)
	require.NoError(t, err)
	defer tbl.Release()

	assertPeople(t, tbl)
}

func TestLoadTSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "people.tsv")
	data := bytes.ReplaceAll([]byte(peopleCSV), []byte(","), []byte("\t"))
	require.NoError(t, os.WriteFile(path, data, 0644))

	tbl, err := Load(context.Background(), path, DefaultLoadOptions())
	require.NoError(t, err)
	defer tbl.Release()

	assertPeople(t, tbl)
}

func TestLoadCompressedCSV(t *testing.T) {
	dir := t.TempDir()

	var gz bytes.Buffer
	w := gzip.NewWriter(&gz)
	_, err := w.Write([]byte(peopleCSV))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	gzPath := filepath.Join(dir, "people.csv.gz")
	require.NoError(t, os.WriteFile(gzPath, gz.Bytes(), 0644))

	var zst bytes.Buffer
	zw, err := zstd.NewWriter(&zst)
	require.NoError(t, err)
	_, err = zw.Write([]byte(peopleCSV))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	zstPath := filepath.Join(dir, "people.csv.zst")
	require.NoError(t, os.WriteFile(zstPath, zst.Bytes(), 0644))

	for _, path := range []string{gzPath, zstPath} {
		tbl, err := Load(context.Background(), path, DefaultLoadOptions())
		require.NoError(t, err, path)
		assertPeople(t, tbl)
		tbl.Release()
	}
}

func TestLoadParquet(t *testing.T) {
	src, err := dataset.FromColumns(nil,
		dataset.ColumnValues{Name: "name", Type: arrow.BinaryTypes.String, Values: []any{"Joe", nil, "Sue"}},
		dataset.ColumnValues{Name: "age", Type: arrow.PrimitiveTypes.Int64, Values: []any{10, 20, nil}},
	)
	require.NoError(t, err)
	defer src.Release()

	tbl := array.NewTableFromRecords(src.Record().Schema(), []arrow.Record{src.Record()})
	defer tbl.Release()

	// Two rows per row group so the reader sees more than one chunk.
	var buf bytes.Buffer
	require.NoError(t, pqarrow.WriteTable(tbl, &buf, 2,
		parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy)),
		pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())))

	path := filepath.Join(t.TempDir(), "people.parquet")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

	loaded, err := Load(context.Background(), path, DefaultLoadOptions())
	require.NoError(t, err)
	defer loaded.Release()

	assertPeople(t, loaded)
}

func TestLoadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "people.xlsx")

	x := excelize.NewFile()
	sheet := x.GetSheetName(0)
	require.NoError(t, x.SetSheetRow(sheet, "A1", &[]any{"name", "age"}))
	require.NoError(t, x.SetSheetRow(sheet, "A2", &[]any{"Joe", 10}))
	require.NoError(t, x.SetSheetRow(sheet, "A3", &[]any{"NA", 20}))
	require.NoError(t, x.SetSheetRow(sheet, "A4", &[]any{"Sue"}))
	require.NoError(t, x.SaveAs(path))
	require.NoError(t, x.Close())

	tbl, err := Load(context.Background(), path, DefaultLoadOptions())
	require.NoError(t, err)
	defer tbl.Release()

	assertPeople(t, tbl)

	opts := DefaultLoadOptions()
	opts.Sheet = "Missing"
	_, err = Load(context.Background(), path, opts)
	assert.Error(t, err)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(context.Background(), filepath.Join(dir, "data.json"), DefaultLoadOptions())
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Load(context.Background(), filepath.Join(dir, "missing.csv"), DefaultLoadOptions())
	assert.ErrorIs(t, err, os.ErrNotExist)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	path := filepath.Join(dir, "people.csv")
	require.NoError(t, os.WriteFile(path, []byte(peopleCSV), 0644))
	_, err = Load(ctx, path, DefaultLoadOptions())
	assert.ErrorIs(t, err, context.Canceled)
}
