package profiler

import "math"

// Undefined marks a statistic that cannot be computed, e.g. the mean of a
// column without non-null values. It renders as "NaN".
var Undefined = math.NaN()

// IsUndefined reports whether v is the Undefined sentinel.
func IsUndefined(v float64) bool {
	return math.IsNaN(v)
}

// Count is one column's scalar result.
type Count struct {
	Column string
	Value  int
}

// Counts holds per-column counts in dataset column order.
type Counts []Count

// Get returns the count for column.
func (c Counts) Get(column string) (int, bool) {
	for _, e := range c {
		if e.Column == column {
			return e.Value, true
		}
	}
	return 0, false
}

// Columns returns the column names in order.
func (c Counts) Columns() []string {
	names := make([]string, len(c))
	for i, e := range c {
		names[i] = e.Column
	}
	return names
}

// ValueCount is the number of occurrences of one distinct value.
type ValueCount struct {
	Value string
	Count int
}

// Frequencies is the frequency table of a textual column, sorted by
// descending count. Equal counts keep first-appearance order.
type Frequencies struct {
	Column string
	Values []ValueCount
}

// Total is the sum of all counts, i.e. the column's non-null row count.
func (f Frequencies) Total() int {
	n := 0
	for _, v := range f.Values {
		n += v.Count
	}
	return n
}

// Get returns the count for value.
func (f Frequencies) Get(value string) (int, bool) {
	for _, v := range f.Values {
		if v.Value == value {
			return v.Count, true
		}
	}
	return 0, false
}

// Summary holds the numeric description of one column at full precision.
// Std is the sample standard deviation (n-1 denominator); quartiles are
// linearly interpolated between order statistics.
type Summary struct {
	Column string
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Q25    float64
	Q50    float64
	Q75    float64
	Max    float64
}

// Stat is a named statistic.
type Stat struct {
	Name  string
	Value float64
}

// Stats lists the statistics in presentation order.
func (s Summary) Stats() []Stat {
	return []Stat{
		{"count", float64(s.Count)},
		{"mean", s.Mean},
		{"std", s.Std},
		{"min", s.Min},
		{"25%", s.Q25},
		{"50%", s.Q50},
		{"75%", s.Q75},
		{"max", s.Max},
	}
}
