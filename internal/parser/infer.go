package parser

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

const (
	UnknownType ValueType = iota
	NullType
	BoolType
	IntType
	FloatType
	DateType
	DateTimeType
	StringType
)

// ValueType is the type detected for a raw text value.
type ValueType uint8

func (v ValueType) String() string {
	switch v {
	case NullType:
		return "null"
	case BoolType:
		return "boolean"
	case IntType:
		return "integer"
	case FloatType:
		return "float"
	case DateType:
		return "date"
	case DateTimeType:
		return "datetime"
	case StringType:
		return "string"
	}
	return ""
}

// ArrowType is the Arrow type a column of this value type is built as.
// Columns that never saw a value are built as strings.
func (v ValueType) ArrowType() arrow.DataType {
	switch v {
	case BoolType:
		return arrow.FixedWidthTypes.Boolean
	case IntType:
		return arrow.PrimitiveTypes.Int64
	case FloatType:
		return arrow.PrimitiveTypes.Float64
	case DateType:
		return arrow.FixedWidthTypes.Date32
	case DateTimeType:
		return arrow.FixedWidthTypes.Timestamp_ms
	}
	return arrow.BinaryTypes.String
}

var typeGeneralizationMap = map[[2]ValueType]ValueType{
	{IntType, FloatType}:     FloatType,
	{DateType, DateTimeType}: DateTimeType,
}

// GeneralizeType returns the more general of two types. Nulls defer to the
// other type and incompatible types generalize to string.
func GeneralizeType(t1, t2 ValueType) ValueType {
	if t1 == t2 {
		return t1
	}
	if t1 == NullType || t1 == UnknownType {
		return t2
	}
	if t2 == NullType || t2 == UnknownType {
		return t1
	}

	if t, ok := typeGeneralizationMap[[2]ValueType{t1, t2}]; ok {
		return t
	}
	if t, ok := typeGeneralizationMap[[2]ValueType{t2, t1}]; ok {
		return t
	}

	return StringType
}

var (
	dateFormats = []string{
		"2006-01-02",
		"01-02-2006",
		"01/02/2006",
		"01/02/06",
		"1/2/06",
		"02-Jan-2006",
	}

	dateTimeFormats = []string{
		"2006-01-02 15:04",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04:05Z07:00",
	}
)

func ParseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

func ParseInt(s string) (int64, bool) {
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return i, true
}

func ParseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func ParseDate(s string) (time.Time, bool) {
	for _, layout := range dateFormats {
		if v, err := time.Parse(layout, s); err == nil {
			return v, true
		}
	}
	return time.Time{}, false
}

func ParseDateTime(s string) (time.Time, bool) {
	for _, layout := range dateTimeFormats {
		if v, err := time.Parse(layout, s); err == nil {
			return v, true
		}
	}
	return time.Time{}, false
}

// hasLeadingZeros reports integer text such as "007", which is usually an
// identifier rather than a number.
func hasLeadingZeros(s string) bool {
	s = strings.TrimPrefix(s, "-")
	return len(s) > 1 && s[0] == '0'
}

// DetectType returns the most specific type of a single non-null value.
func DetectType(s string) ValueType {
	s = strings.TrimSpace(s)

	if _, ok := ParseInt(s); ok {
		if hasLeadingZeros(s) {
			return StringType
		}
		return IntType
	}
	if _, ok := ParseFloat(s); ok {
		return FloatType
	}
	if _, ok := ParseBool(s); ok {
		return BoolType
	}
	if _, ok := ParseDate(s); ok {
		return DateType
	}
	if _, ok := ParseDateTime(s); ok {
		return DateTimeType
	}
	return StringType
}

// DefaultNullTokens are the cell values read as missing.
var DefaultNullTokens = []string{"", "na", "n/a", "null", "nan", "missing"}

type InferOptions struct {
	NullTokens []string // Compared case-insensitively after trimming; nil uses DefaultNullTokens
	Allocator  memory.Allocator
}

type inferrer struct {
	nulls map[string]struct{}
	mem   memory.Allocator
}

func newInferrer(opts InferOptions) *inferrer {
	tokens := opts.NullTokens
	if tokens == nil {
		tokens = DefaultNullTokens
	}
	nulls := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		nulls[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}

	mem := opts.Allocator
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	return &inferrer{nulls: nulls, mem: mem}
}

func (in *inferrer) isNull(s string) bool {
	_, ok := in.nulls[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// Infer types every column of rows and builds an Arrow record. Rows shorter
// than headers are padded with nulls.
func Infer(headers []string, rows [][]string, opts InferOptions) (arrow.Record, error) {
	in := newInferrer(opts)

	fields := make([]arrow.Field, len(headers))
	arrs := make([]arrow.Array, len(headers))
	defer func() {
		for _, a := range arrs {
			if a != nil {
				a.Release()
			}
		}
	}()

	cell := func(row []string, i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}

	for i, name := range headers {
		typ := NullType
		for _, row := range rows {
			v := cell(row, i)
			if in.isNull(v) {
				continue
			}
			typ = GeneralizeType(typ, DetectType(v))
			if typ == StringType {
				break
			}
		}

		arr, err := in.build(typ, rows, i, cell)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", name, err)
		}
		arrs[i] = arr
		fields[i] = arrow.Field{Name: name, Type: arr.DataType(), Nullable: true}
	}

	return array.NewRecord(arrow.NewSchema(fields, nil), arrs, int64(len(rows))), nil
}

func (in *inferrer) build(typ ValueType, rows [][]string, col int, cell func([]string, int) string) (arrow.Array, error) {
	b := array.NewBuilder(in.mem, typ.ArrowType())
	defer b.Release()
	b.Reserve(len(rows))

	for _, row := range rows {
		raw := cell(row, col)
		if in.isNull(raw) {
			b.AppendNull()
			continue
		}
		v := strings.TrimSpace(raw)

		switch bb := b.(type) {
		case *array.Int64Builder:
			i, _ := ParseInt(v)
			bb.Append(i)
		case *array.Float64Builder:
			f, _ := ParseFloat(v)
			bb.Append(f)
		case *array.BooleanBuilder:
			x, _ := ParseBool(v)
			bb.Append(x)
		case *array.Date32Builder:
			d, _ := ParseDate(v)
			bb.Append(arrow.Date32FromTime(d))
		case *array.TimestampBuilder:
			t, ok := ParseDateTime(v)
			if !ok {
				// Date-only values in a datetime column.
				t, _ = ParseDate(v)
			}
			ts, err := arrow.TimestampFromTime(t, arrow.Millisecond)
			if err != nil {
				return nil, err
			}
			bb.Append(ts)
		case *array.StringBuilder:
			bb.Append(raw)
		default:
			return nil, fmt.Errorf("unsupported builder %T", b)
		}
	}

	return b.NewArray(), nil
}
