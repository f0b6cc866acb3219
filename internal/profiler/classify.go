package profiler

import (
	"github.com/apache/arrow-go/v18/arrow"

	"github.com/peekknuf/dataqa/internal/dataset"
)

// Class is the semantic bucket a column falls into. It selects which typed
// metrics apply to the column.
type Class uint8

const (
	Other Class = iota
	Textual
	Integer
	Float
)

func (c Class) String() string {
	switch c {
	case Textual:
		return "textual"
	case Integer:
		return "integer"
	case Float:
		return "float"
	}
	return "other"
}

// Numeric reports whether the class is summarised by DescribeNumeric.
func (c Class) Numeric() bool {
	return c == Integer || c == Float
}

// Classify maps a declared element type to its class. Unsigned, decimal,
// boolean, temporal and nested types are Other.
func Classify(t arrow.DataType) Class {
	if t == nil {
		return Other
	}

	switch t.ID() {
	case arrow.STRING, arrow.LARGE_STRING, arrow.STRING_VIEW:
		return Textual
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64:
		return Integer
	case arrow.FLOAT16, arrow.FLOAT32, arrow.FLOAT64:
		return Float
	}

	return Other
}

// ClassifyColumn is the single entry point every metric uses.
func ClassifyColumn(c dataset.Column) Class {
	return Classify(c.Type())
}
