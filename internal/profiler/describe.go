package profiler

import (
	"math"
	"slices"

	"github.com/montanaflynn/stats"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/peekknuf/dataqa/internal/dataset"
)

// DescribeNumeric summarises every integer and floating-point column.
// Columns are summarised concurrently when Workers > 1; the result keeps
// dataset column order either way.
func (p *Profiler) DescribeNumeric() []Summary {
	cols := p.columns(Integer, Float)
	out := make([]Summary, len(cols))

	var g errgroup.Group
	if p.config.Workers > 1 {
		g.SetLimit(p.config.Workers)
	} else {
		g.SetLimit(1)
	}

	for i, c := range cols {
		g.Go(func() error {
			out[i] = Describe(c)
			return nil
		})
	}
	_ = g.Wait()

	p.log.WithFields(logrus.Fields{
		"columns": len(out),
		"workers": p.config.Workers,
	}).Debug("described numeric columns")

	return out
}

// NumericValues returns the non-null values of c as float64.
func NumericValues(c dataset.Column) []float64 {
	vals := make([]float64, 0, c.Len())
	for i := 0; i < c.Len(); i++ {
		if v, ok := c.Float64(i); ok {
			vals = append(vals, v)
		}
	}
	return vals
}

// Describe summarises a single numeric column. A column without non-null
// values yields Count 0 and Undefined for every other statistic; a single
// value yields an Undefined Std.
func Describe(c dataset.Column) Summary {
	vals := NumericValues(c)
	s := Summary{
		Column: c.Name(),
		Count:  len(vals),
		Mean:   Undefined,
		Std:    Undefined,
		Min:    Undefined,
		Q25:    Undefined,
		Q50:    Undefined,
		Q75:    Undefined,
		Max:    Undefined,
	}
	if len(vals) == 0 {
		return s
	}

	if mean, err := stats.Mean(vals); err == nil {
		s.Mean = mean
	}
	if len(vals) > 1 {
		if std, err := stats.StandardDeviationSample(vals); err == nil {
			s.Std = std
		}
	}
	if min, err := stats.Min(vals); err == nil {
		s.Min = min
	}
	if max, err := stats.Max(vals); err == nil {
		s.Max = max
	}

	slices.Sort(vals)
	s.Q25 = Quantile(vals, 0.25)
	s.Q50 = Quantile(vals, 0.50)
	s.Q75 = Quantile(vals, 0.75)

	return s
}

// Quantile returns the q-th quantile of sorted using linear interpolation
// between the order statistics at floor and ceil of q*(n-1).
func Quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 || q < 0 || q > 1 {
		return Undefined
	}
	if n == 1 {
		return sorted[0]
	}

	rank := q * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}

	frac := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
