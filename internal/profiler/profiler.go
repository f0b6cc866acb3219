package profiler

import (
	"errors"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/peekknuf/dataqa/internal/dataset"
	"github.com/peekknuf/dataqa/internal/logging"
)

var ErrInvalidDataset = errors.New("profiler: dataset reference is nil")

type ProfilerConfig struct {
	Workers int            // Columns summarised concurrently by DescribeNumeric (<=1 is sequential)
	Logger  *logrus.Logger // Optional; discarded when nil
}

// Profiler computes data-quality metrics over a dataset it does not own.
// Every call classifies columns afresh, so results follow the dataset as it
// is at call time.
type Profiler struct {
	ds     dataset.Dataset
	config ProfilerConfig
	log    *logrus.Logger
}

func New(ds dataset.Dataset) (*Profiler, error) {
	return NewWithConfig(ds, ProfilerConfig{Workers: 1})
}

func NewWithConfig(ds dataset.Dataset, config ProfilerConfig) (*Profiler, error) {
	if isNil(ds) {
		return nil, ErrInvalidDataset
	}

	log := config.Logger
	if log == nil {
		log = logging.Discard()
	}

	return &Profiler{
		ds:     ds,
		config: config,
		log:    log,
	}, nil
}

func isNil(ds dataset.Dataset) bool {
	if ds == nil {
		return true
	}
	if t, ok := ds.(*dataset.Table); ok && t == nil {
		return true
	}
	return false
}

// Dataset returns the profiled dataset.
func (p *Profiler) Dataset() dataset.Dataset {
	return p.ds
}

// columns returns the dataset's columns whose class is one of classes, or
// all columns when classes is empty.
func (p *Profiler) columns(classes ...Class) []dataset.Column {
	all := p.ds.Columns()
	if len(classes) == 0 {
		return all
	}

	var out []dataset.Column
	for _, c := range all {
		if slices.Contains(classes, ClassifyColumn(c)) {
			out = append(out, c)
		}
	}
	return out
}

func countEach(cols []dataset.Column, fn func(dataset.Column) int) Counts {
	out := make(Counts, 0, len(cols))
	for _, c := range cols {
		out = append(out, Count{Column: c.Name(), Value: fn(c)})
	}
	return out
}

func distinct(c dataset.Column) int {
	return c.DistinctCount()
}

// CountMissing counts null entries in every column.
func (p *Profiler) CountMissing() Counts {
	return countEach(p.columns(), func(c dataset.Column) int { return c.NullCount() })
}

// CountUnique counts distinct non-null values in every column.
func (p *Profiler) CountUnique() Counts {
	return countEach(p.columns(), distinct)
}

// CountTextValues counts distinct non-null values in textual columns.
func (p *Profiler) CountTextValues() Counts {
	return countEach(p.columns(Textual), distinct)
}

// CountFloatValues counts distinct non-null values in floating-point columns.
func (p *Profiler) CountFloatValues() Counts {
	return countEach(p.columns(Float), distinct)
}

// CountIntValues counts distinct non-null values in integer columns.
func (p *Profiler) CountIntValues() Counts {
	return countEach(p.columns(Integer), distinct)
}

// ValueCountsCategorical returns the frequency table of every textual column.
// Nulls are not counted.
func (p *Profiler) ValueCountsCategorical() []Frequencies {
	cols := p.columns(Textual)
	out := make([]Frequencies, 0, len(cols))
	for _, c := range cols {
		out = append(out, FrequenciesOf(c))
	}
	return out
}

// FrequenciesOf builds the frequency table of a single column.
func FrequenciesOf(c dataset.Column) Frequencies {
	index := make(map[string]int)
	var values []ValueCount

	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			continue
		}
		v := c.ValueStr(i)
		if j, ok := index[v]; ok {
			values[j].Count++
			continue
		}
		index[v] = len(values)
		values = append(values, ValueCount{Value: v, Count: 1})
	}

	// values is in first-appearance order; a stable sort keeps it for ties.
	slices.SortStableFunc(values, func(a, b ValueCount) int {
		return b.Count - a.Count
	})

	return Frequencies{Column: c.Name(), Values: values}
}
