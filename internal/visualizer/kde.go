package visualizer

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// SturgesBins returns ceil(log2 n) + 1, and 1 for n <= 1.
func SturgesBins(n int) int {
	if n <= 1 {
		return 1
	}
	return int(math.Ceil(math.Log2(float64(n)))) + 1
}

// Bandwidth is Scott's rule of thumb, 1.06 * sd * n^(-1/5).
func Bandwidth(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	return 1.06 * stat.StdDev(vals, nil) * math.Pow(float64(len(vals)), -0.2)
}

// KDE estimates the density of vals with a Gaussian kernel, evaluated at
// points evenly spaced from min-3h to max+3h. It returns nil when the
// bandwidth h is zero, i.e. for fewer than two values or constant values.
func KDE(vals []float64, points int) []Point {
	h := Bandwidth(vals)
	if h == 0 || math.IsNaN(h) || points < 2 {
		return nil
	}

	grid := make([]float64, points)
	floats.Span(grid, floats.Min(vals)-3*h, floats.Max(vals)+3*h)

	kernels := make([]distuv.Normal, len(vals))
	for i, x := range vals {
		kernels[i] = distuv.Normal{Mu: x, Sigma: h}
	}

	n := float64(len(vals))
	out := make([]Point, points)
	for i, x := range grid {
		var sum float64
		for _, k := range kernels {
			sum += k.Prob(x)
		}
		out[i] = Point{X: x, Y: sum / n}
	}
	return out
}
