package geometry

import (
	"math"

	"github.com/seenimoa/graphawesome/internal/palette"
	"github.com/seenimoa/graphawesome/pkg/models"
)

const (
	// NormalSamples is the number of points the curve is sampled at.
	NormalSamples = 101
	// normalSpan is the half-width of the sampled domain in standard deviations.
	normalSpan = 4
	// normalExaggeration stretches the density vertically; peak values are small.
	normalExaggeration = 10
)

// NormalPDF is the Gaussian probability density at x.
func NormalPDF(x, mean, stdDev float64) float64 {
	z := (x - mean) / stdDev
	return 1 / (stdDev * math.Sqrt(2*math.Pi)) * math.Exp(-0.5*z*z)
}

// NormalCurve renders the Gaussian density over mean ± 4σ as one path. When
// spec.Mark is set and lies within one sample step of a sample, that sample
// gets a vertical guide to the bottom edge and a hollow marker; otherwise the
// mark is ignored.
func NormalCurve(spec models.ChartSpec) (*models.Group, error) {
	if !(spec.StdDev > 0) {
		return nil, &models.InvalidSpecError{Field: "std_dev", Reason: "must be greater than zero"}
	}

	lo := spec.Mean - normalSpan*spec.StdDev
	hi := spec.Mean + normalSpan*spec.StdDev
	step := (hi - lo) / (NormalSamples - 1)
	colors := palette.Generate(3)

	xs := make([]float64, NormalSamples)
	px := make([]float64, NormalSamples)
	py := make([]float64, NormalSamples)
	cmds := make(models.PathCommands, 0, NormalSamples)
	for i := range xs {
		xs[i] = lo + float64(i)*step
		px[i] = scale(xs[i], lo, hi, 0, spec.Width)
		py[i] = spec.Height - NormalPDF(xs[i], spec.Mean, spec.StdDev)*spec.Height*normalExaggeration
		if i == 0 {
			cmds = append(cmds, models.MoveTo{X: px[i], Y: py[i]})
		} else {
			cmds = append(cmds, models.LineTo{X: px[i], Y: py[i]})
		}
	}

	root := canvas(spec)
	root.Add(models.Path{Commands: cmds, Stroke: colors[0], StrokeWidth: 2})

	if spec.Mark != nil {
		if i, ok := nearestSample(xs, *spec.Mark, step); ok {
			root.Add(
				models.Line{X1: px[i], Y1: py[i], X2: px[i], Y2: spec.Height, Stroke: colors[1], StrokeWidth: 1},
				models.Circle{CX: px[i], CY: py[i], R: 4, Fill: "none", Stroke: colors[1], StrokeWidth: 2},
			)
		}
	}
	return root, nil
}

// nearestSample returns the index of the sample closest to mark, provided it
// is no further than tolerance away.
func nearestSample(xs []float64, mark, tolerance float64) (int, bool) {
	best, bestDist := -1, math.Inf(1)
	for i, x := range xs {
		if d := math.Abs(x - mark); d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 || bestDist > tolerance {
		return 0, false
	}
	return best, true
}
