package connectors

import (
	"bytes"
	"compress/bzip2"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/peekknuf/dataqa/internal/dataset"
	dqio "github.com/peekknuf/dataqa/internal/io"
	"github.com/peekknuf/dataqa/internal/logging"
	"github.com/peekknuf/dataqa/internal/parser"
)

var ErrUnsupportedFormat = errors.New("unsupported file format")

type Format string

const (
	FormatCSV     Format = "csv"
	FormatTSV     Format = "tsv"
	FormatParquet Format = "parquet"
	FormatXLSX    Format = "xlsx"
)

type Compression string

const (
	NoCompression    Compression = ""
	GzipCompression  Compression = "gzip"
	Bzip2Compression Compression = "bzip2"
	ZstdCompression  Compression = "zstd"
)

var compressionExts = map[string]Compression{
	".gz":  GzipCompression,
	".bz2": Bzip2Compression,
	".zst": ZstdCompression,
}

// SupportedExtensions lists the file name suffixes Load understands.
func SupportedExtensions() []string {
	exts := []string{"csv", "tsv", "parquet", "xlsx"}
	for _, text := range []string{"csv", "tsv"} {
		for ext := range compressionExts {
			exts = append(exts, text+ext)
		}
	}
	return exts
}

// DetectFormat returns the format and compression of path from its file
// name. Only delimited text may be compressed.
func DetectFormat(path string) (Format, Compression, error) {
	name := strings.ToLower(filepath.Base(path))

	comp := NoCompression
	if c, ok := compressionExts[filepath.Ext(name)]; ok {
		comp = c
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}

	var format Format
	switch filepath.Ext(name) {
	case ".csv":
		format = FormatCSV
	case ".tsv", ".tab":
		format = FormatTSV
	case ".parquet", ".pq":
		format = FormatParquet
	case ".xlsx":
		format = FormatXLSX
	default:
		return "", "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	if comp != NoCompression && format != FormatCSV && format != FormatTSV {
		return "", "", fmt.Errorf("%w: compressed %s", ErrUnsupportedFormat, format)
	}
	return format, comp, nil
}

type LoadOptions struct {
	Parser     parser.ParserConfig
	NullTokens []string // nil uses parser.DefaultNullTokens
	Sheet      string   // xlsx sheet; empty reads the first sheet
	MMap       dqio.MMapConfig
	Allocator  memory.Allocator
	Logger     *logrus.Logger
}

func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		Parser: parser.DefaultParserConfig(),
		MMap:   dqio.DefaultMMapConfig(),
	}
}

type loader struct {
	opts LoadOptions
	log  *logrus.Entry
}

// Load reads the file at path into a table. The caller owns the table and
// must Release it.
func Load(ctx context.Context, path string, opts LoadOptions) (*dataset.Table, error) {
	format, comp, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if opts.Allocator == nil {
		opts.Allocator = memory.NewGoAllocator()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	l := &loader{
		opts: opts,
		log:  logger.WithFields(logrus.Fields{"path": path, "format": format}),
	}

	var rec arrow.Record
	switch format {
	case FormatCSV, FormatTSV:
		rec, err = l.loadDelimited(path, format, comp)
	case FormatParquet:
		rec, err = l.loadParquet(ctx, path)
	case FormatXLSX:
		rec, err = l.loadXLSX(path)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	defer rec.Release()

	l.log.WithFields(logrus.Fields{
		"rows":    rec.NumRows(),
		"columns": rec.NumCols(),
	}).Debug("loaded dataset")

	return dataset.FromRecord(rec)
}

func (l *loader) loadDelimited(path string, format Format, comp Compression) (arrow.Record, error) {
	cfg := l.opts.Parser
	if format == FormatTSV && cfg.Delimiter == 0 {
		cfg.Delimiter = '\t'
	}

	var data []byte
	if comp == NoCompression {
		f, err := dqio.ReadFile(path, l.opts.MMap)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		data = f.Data
		l.log.WithField("mapped", f.IsMapped()).Debug("read file")
	} else {
		var err error
		data, err = decompress(path, comp)
		if err != nil {
			return nil, err
		}
	}

	p := parser.NewCSVParser(cfg)
	if err := p.Parse(data); err != nil {
		return nil, err
	}
	rows, err := p.ReadAll()
	if err != nil {
		return nil, err
	}

	return parser.Infer(p.Headers(), rows, parser.InferOptions{
		NullTokens: l.opts.NullTokens,
		Allocator:  l.opts.Allocator,
	})
}

func decompress(path string, comp Compression) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader
	switch comp {
	case GzipCompression:
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer gz.Close()
		r = gz
	case Bzip2Compression:
		r = bzip2.NewReader(f)
	case ZstdCompression:
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		defer zr.Close()
		r = zr
	default:
		return nil, fmt.Errorf("%w: compression %q", ErrUnsupportedFormat, comp)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, fmt.Errorf("decompress %s: %w", comp, err)
	}
	return buf.Bytes(), nil
}

func (l *loader) loadParquet(ctx context.Context, path string) (arrow.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pf, err := file.NewParquetReader(f, file.WithReadProps(parquet.NewReaderProperties(l.opts.Allocator)))
	if err != nil {
		return nil, fmt.Errorf("parquet reader: %w", err)
	}
	defer pf.Close()

	fr, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, l.opts.Allocator)
	if err != nil {
		return nil, fmt.Errorf("arrow reader: %w", err)
	}

	tbl, err := fr.ReadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("read table: %w", err)
	}
	defer tbl.Release()

	l.log.WithField("row_groups", pf.NumRowGroups()).Debug("read parquet table")
	return tableToRecord(tbl, l.opts.Allocator)
}

// tableToRecord concatenates the chunks of every column into one record.
func tableToRecord(tbl arrow.Table, mem memory.Allocator) (arrow.Record, error) {
	cols := make([]arrow.Array, tbl.NumCols())
	defer func() {
		for _, c := range cols {
			if c != nil {
				c.Release()
			}
		}
	}()

	for i := range cols {
		col := tbl.Column(i)
		chunks := col.Data().Chunks()
		switch len(chunks) {
		case 0:
			cols[i] = array.MakeArrayOfNull(mem, col.DataType(), 0)
		case 1:
			chunks[0].Retain()
			cols[i] = chunks[0]
		default:
			arr, err := array.Concatenate(chunks, mem)
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", col.Name(), err)
			}
			cols[i] = arr
		}
	}

	return array.NewRecord(tbl.Schema(), cols, tbl.NumRows()), nil
}

func (l *loader) loadXLSX(path string) (arrow.Record, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := l.opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheet, err)
	}
	l.log.WithFields(logrus.Fields{"sheet": sheet, "rows": len(rows)}).Debug("read sheet")

	var headers []string
	if len(rows) > 0 {
		if l.opts.Parser.Headers {
			headers, rows = rows[0], rows[1:]
		} else {
			for i := range rows[0] {
				headers = append(headers, fmt.Sprintf("col%d", i+1))
			}
		}
	}
	// GetRows trims trailing empty cells, so a row may be wider than the header.
	for _, row := range rows {
		for len(headers) < len(row) {
			headers = append(headers, fmt.Sprintf("col%d", len(headers)+1))
		}
	}

	return parser.Infer(headers, rows, parser.InferOptions{
		NullTokens: l.opts.NullTokens,
		Allocator:  l.opts.Allocator,
	})
}
