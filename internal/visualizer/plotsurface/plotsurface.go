// Package plotsurface renders visualizer charts to PNG files with
// gonum/plot.
package plotsurface

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"regexp"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"

	"github.com/peekknuf/dataqa/internal/logging"
	"github.com/peekknuf/dataqa/internal/visualizer"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

var densityColor = color.RGBA{R: 200, G: 30, B: 30, A: 255}

type Option func(*Surface)

// WithSize sets the image size in inches.
func WithSize(width, height float64) Option {
	return func(s *Surface) {
		if width > 0 && height > 0 {
			s.width = vg.Length(width) * vg.Inch
			s.height = vg.Length(height) * vg.Inch
		}
	}
}

func WithLogger(l *logrus.Logger) Option {
	return func(s *Surface) {
		if l != nil {
			s.log = l
		}
	}
}

// Surface writes one PNG per chart into a directory, named
// <nn>_<column>.png in drawing order.
type Surface struct {
	dir    string
	width  vg.Length
	height vg.Length
	files  []string
	log    *logrus.Logger
}

var _ visualizer.Surface = (*Surface)(nil)

func New(dir string, opts ...Option) (*Surface, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create plot directory: %w", err)
	}

	s := &Surface{
		dir:    dir,
		width:  8 * vg.Inch,
		height: 5 * vg.Inch,
		log:    logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Files returns the paths written so far.
func (s *Surface) Files() []string {
	return s.files
}

func (s *Surface) Bar(c visualizer.BarChart) error {
	p := newPlot(c.Title, c.XLabel, c.YLabel)

	if len(c.Counts) > 0 {
		vals := make(plotter.Values, len(c.Counts))
		for i, n := range c.Counts {
			vals[i] = float64(n)
		}

		bars, err := plotter.NewBarChart(vals, vg.Points(16))
		if err != nil {
			return fmt.Errorf("bar chart %s: %w", c.Column, err)
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = color.RGBA{R: 60, G: 110, B: 180, A: 255}
		p.Add(bars)
		p.NominalX(c.Categories...)

		p.X.Tick.Label.Rotation = c.LabelRotation
		if c.LabelRotation != 0 {
			p.X.Tick.Label.XAlign = text.XRight
			p.X.Tick.Label.YAlign = text.YCenter
		}
	}

	return s.save(c.Column, p)
}

func (s *Surface) Histogram(h visualizer.Histogram) error {
	p := newPlot(h.Title, h.XLabel, h.YLabel)

	if len(h.Values) > 0 {
		hist, err := plotter.NewHist(plotter.Values(h.Values), h.Bins)
		if err != nil {
			return fmt.Errorf("histogram %s: %w", h.Column, err)
		}
		hist.Normalize(1)
		p.Add(hist)
	}

	if len(h.Density) > 0 {
		xys := make(plotter.XYs, len(h.Density))
		for i, pt := range h.Density {
			xys[i] = plotter.XY{X: pt.X, Y: pt.Y}
		}

		line, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("density %s: %w", h.Column, err)
		}
		line.Color = densityColor
		line.Width = vg.Points(1.5)
		p.Add(line)
	}

	return s.save(h.Column, p)
}

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	return p
}

func (s *Surface) save(column string, p *plot.Plot) error {
	path := filepath.Join(s.dir, fmt.Sprintf("%02d_%s.png", len(s.files)+1, FileName(column)))
	if err := p.Save(s.width, s.height, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}

	s.files = append(s.files, path)
	s.log.WithField("file", path).Info("wrote plot")
	return nil
}

// FileName makes a column name safe to use in a file name.
func FileName(column string) string {
	name := unsafeChars.ReplaceAllString(column, "_")
	if name == "" {
		return "column"
	}
	return name
}
