package dataset

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// ColumnValues describes one column for FromColumns. A nil entry in Values
// is a null; any other entry is formatted with fmt.Sprint and parsed by the
// Arrow builder for Type.
type ColumnValues struct {
	Name   string
	Type   arrow.DataType
	Values []any
}

// FromColumns builds a Table from plain Go values. All columns must have the
// same number of values.
func FromColumns(mem memory.Allocator, cols ...ColumnValues) (*Table, error) {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}

	fields := make([]arrow.Field, len(cols))
	arrs := make([]arrow.Array, len(cols))
	defer func() {
		for _, a := range arrs {
			if a != nil {
				a.Release()
			}
		}
	}()

	rows := -1
	for i, col := range cols {
		if rows >= 0 && len(col.Values) != rows {
			return nil, fmt.Errorf("column %q has %d values, want %d", col.Name, len(col.Values), rows)
		}
		rows = len(col.Values)

		arr, err := buildArray(mem, col)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col.Name, err)
		}
		arrs[i] = arr
		fields[i] = arrow.Field{Name: col.Name, Type: col.Type, Nullable: true}
	}
	if rows < 0 {
		rows = 0
	}

	rec := array.NewRecord(arrow.NewSchema(fields, nil), arrs, int64(rows))
	defer rec.Release()

	return FromRecord(rec)
}

func buildArray(mem memory.Allocator, col ColumnValues) (arrow.Array, error) {
	b := array.NewBuilder(mem, col.Type)
	defer b.Release()

	for _, v := range col.Values {
		if v == nil {
			b.AppendNull()
			continue
		}
		if err := b.AppendValueFromString(fmt.Sprint(v)); err != nil {
			return nil, err
		}
	}

	return b.NewArray(), nil
}
