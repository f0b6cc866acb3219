// Package dataset exposes an in-memory tabular dataset as ordered, typed,
// nullable columns backed by Apache Arrow arrays.
package dataset

import (
	"errors"
	"math"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

var ErrNilRecord = errors.New("dataset: nil record")

// Dataset is an ordered set of named columns of equal length.
//
// Implementations are read-only from the profiler's point of view. Callers
// must not mutate a dataset while a computation over it is in flight.
type Dataset interface {
	NumRows() int
	Columns() []Column
}

// Column is a single named sequence of typed, nullable values.
type Column interface {
	Name() string

	// Type is the declared element type of the column.
	Type() arrow.DataType

	Len() int

	// IsNull reports whether row i is missing. NaN counts as missing in
	// floating-point columns.
	IsNull(i int) bool

	// ValueStr renders row i as text. It is the identity used for distinct
	// counts and frequency tables.
	ValueStr(i int) string

	// Float64 returns row i as a float64 for numeric columns. ok is false for
	// nulls and for columns without a numeric representation.
	Float64(i int) (v float64, ok bool)

	NullCount() int

	// DistinctCount is the number of distinct non-null values.
	DistinctCount() int
}

// Table is a Dataset over a single arrow.Record.
type Table struct {
	rec     arrow.Record
	columns []Column
}

// FromRecord wraps rec. The table retains the record until Release.
func FromRecord(rec arrow.Record) (*Table, error) {
	if rec == nil {
		return nil, ErrNilRecord
	}
	rec.Retain()

	cols := make([]Column, rec.NumCols())
	for i := range cols {
		cols[i] = &arrowColumn{
			name: rec.ColumnName(i),
			arr:  rec.Column(i),
		}
	}

	return &Table{rec: rec, columns: cols}, nil
}

func (t *Table) NumRows() int {
	return int(t.rec.NumRows())
}

func (t *Table) Columns() []Column {
	return t.columns
}

// Column returns the column with the given name.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.columns {
		if c.Name() == name {
			return c, true
		}
	}
	return nil, false
}

// Record returns the underlying record without retaining it.
func (t *Table) Record() arrow.Record {
	return t.rec
}

func (t *Table) Release() {
	if t.rec != nil {
		t.rec.Release()
		t.rec = nil
	}
}

type arrowColumn struct {
	name string
	arr  arrow.Array
}

func (c *arrowColumn) Name() string         { return c.name }
func (c *arrowColumn) Type() arrow.DataType { return c.arr.DataType() }
func (c *arrowColumn) Len() int             { return c.arr.Len() }

func (c *arrowColumn) IsNull(i int) bool {
	if c.arr.IsNull(i) {
		return true
	}
	switch a := c.arr.(type) {
	case *array.Float64:
		return math.IsNaN(a.Value(i))
	case *array.Float32:
		return math.IsNaN(float64(a.Value(i)))
	case *array.Float16:
		return math.IsNaN(float64(a.Value(i).Float32()))
	}
	return false
}

func (c *arrowColumn) ValueStr(i int) string {
	return c.arr.ValueStr(i)
}

func (c *arrowColumn) Float64(i int) (float64, bool) {
	if c.IsNull(i) {
		return 0, false
	}

	switch a := c.arr.(type) {
	case *array.Int8:
		return float64(a.Value(i)), true
	case *array.Int16:
		return float64(a.Value(i)), true
	case *array.Int32:
		return float64(a.Value(i)), true
	case *array.Int64:
		return float64(a.Value(i)), true
	case *array.Uint8:
		return float64(a.Value(i)), true
	case *array.Uint16:
		return float64(a.Value(i)), true
	case *array.Uint32:
		return float64(a.Value(i)), true
	case *array.Uint64:
		return float64(a.Value(i)), true
	case *array.Float16:
		return float64(a.Value(i).Float32()), true
	case *array.Float32:
		return float64(a.Value(i)), true
	case *array.Float64:
		return a.Value(i), true
	}

	return 0, false
}

func (c *arrowColumn) NullCount() int {
	n := 0
	for i := 0; i < c.arr.Len(); i++ {
		if c.IsNull(i) {
			n++
		}
	}
	return n
}

func (c *arrowColumn) DistinctCount() int {
	seen := make(map[string]struct{})
	for i := 0; i < c.arr.Len(); i++ {
		if c.IsNull(i) {
			continue
		}
		seen[c.arr.ValueStr(i)] = struct{}{}
	}
	return len(seen)
}
