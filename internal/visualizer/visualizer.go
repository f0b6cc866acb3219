// Package visualizer turns the columns of a dataset into chart descriptions
// and hands them to a rendering Surface: a bar chart of value counts for
// every textual column and a histogram with a density curve for every
// numeric one.
package visualizer

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/peekknuf/dataqa/internal/dataset"
	"github.com/peekknuf/dataqa/internal/logging"
	"github.com/peekknuf/dataqa/internal/profiler"
)

const DefaultDensityPoints = 200

// Surface draws charts. Errors it returns are passed to the caller of
// Render unchanged.
type Surface interface {
	Bar(BarChart) error
	Histogram(Histogram) error
}

type BarChart struct {
	Column        string
	Title         string
	XLabel        string
	YLabel        string
	Categories    []string
	Counts        []int
	LabelRotation float64 // radians, applied to category tick labels
}

type Point struct {
	X, Y float64
}

type Histogram struct {
	Column  string
	Title   string
	XLabel  string
	YLabel  string
	Values  []float64
	Bins    int
	Density []Point // empty when no density can be estimated
}

type Option func(*Visualizer)

// WithBins fixes the histogram bin count. n <= 0 keeps Sturges' rule.
func WithBins(n int) Option {
	return func(v *Visualizer) { v.bins = n }
}

// WithDensityPoints sets how many grid points the density curve is
// evaluated at. n <= 0 keeps the default.
func WithDensityPoints(n int) Option {
	return func(v *Visualizer) {
		if n > 0 {
			v.points = n
		}
	}
}

func WithLogger(l *logrus.Logger) Option {
	return func(v *Visualizer) {
		if l != nil {
			v.log = l
		}
	}
}

type Visualizer struct {
	ds     dataset.Dataset
	bins   int
	points int
	log    *logrus.Logger
}

func New(ds dataset.Dataset, opts ...Option) (*Visualizer, error) {
	if ds == nil {
		return nil, profiler.ErrInvalidDataset
	}
	if t, ok := ds.(*dataset.Table); ok && t == nil {
		return nil, profiler.ErrInvalidDataset
	}

	v := &Visualizer{
		ds:     ds,
		points: DefaultDensityPoints,
		log:    logging.Discard(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Render draws one chart per textual or numeric column, in dataset column
// order. It stops at the first Surface error and returns it as is.
func (v *Visualizer) Render(s Surface) error {
	for _, c := range v.ds.Columns() {
		log := v.log.WithField("column", c.Name())

		switch class := profiler.ClassifyColumn(c); {
		case class == profiler.Textual:
			log.Debug("bar chart")
			if err := s.Bar(v.barChart(c)); err != nil {
				return err
			}
		case class.Numeric():
			log.Debug("histogram")
			if err := s.Histogram(v.histogram(c)); err != nil {
				return err
			}
		default:
			log.WithField("type", c.Type()).Debug("skipping column")
		}
	}
	return nil
}

func (v *Visualizer) barChart(c dataset.Column) BarChart {
	freqs := profiler.FrequenciesOf(c)

	chart := BarChart{
		Column:        c.Name(),
		Title:         "Value counts for " + c.Name(),
		XLabel:        c.Name(),
		YLabel:        "count",
		Categories:    make([]string, len(freqs.Values)),
		Counts:        make([]int, len(freqs.Values)),
		LabelRotation: math.Pi / 4,
	}
	for i, vc := range freqs.Values {
		chart.Categories[i] = vc.Value
		chart.Counts[i] = vc.Count
	}
	return chart
}

func (v *Visualizer) histogram(c dataset.Column) Histogram {
	vals := profiler.NumericValues(c)

	bins := v.bins
	if bins <= 0 {
		bins = SturgesBins(len(vals))
	}

	return Histogram{
		Column:  c.Name(),
		Title:   "Distribution of " + c.Name(),
		XLabel:  c.Name(),
		YLabel:  "density",
		Values:  vals,
		Bins:    bins,
		Density: KDE(vals, v.points),
	}
}
