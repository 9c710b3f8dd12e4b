package geometry

import (
	"sort"

	"github.com/seenimoa/graphawesome/internal/palette"
	"github.com/seenimoa/graphawesome/pkg/models"
)

// goldenRatio sets box height relative to its width.
const goldenRatio = 0.618

// BoxStats is the five-number summary of a sample.
type BoxStats struct {
	Min, Q1, Median, Q3, Max float64
}

// Quartiles sorts a copy of sample and picks quartiles by index truncation:
// Q1 = s[n/4], median = s[n/2], Q3 = s[3n/4]. No interpolation is done.
// ok is false for an empty sample.
func Quartiles(sample []float64) (stats BoxStats, ok bool) {
	n := len(sample)
	if n == 0 {
		return BoxStats{}, false
	}
	s := make([]float64, n)
	copy(s, sample)
	sort.Float64s(s)

	return BoxStats{
		Min:    s[0],
		Q1:     s[int(0.25*float64(n))],
		Median: s[int(0.5*float64(n))],
		Q3:     s[int(0.75*float64(n))],
		Max:    s[n-1],
	}, true
}

// BoxPlot renders a horizontal box-and-whisker plot of spec.Ys. An empty
// sample renders nothing and is not an error.
func BoxPlot(spec models.ChartSpec) (*models.Group, error) {
	stats, ok := Quartiles(spec.Ys)
	if !ok {
		return nil, nil
	}
	if stats.Min == stats.Max {
		return nil, degenerate(models.ChartBox, "max == min")
	}

	colors := palette.Generate(3)
	left, right := spec.Margin, spec.Width-spec.Margin
	x := func(v float64) float64 { return scale(v, stats.Min, stats.Max, left, right) }

	q1, q3 := x(stats.Q1), x(stats.Q3)
	boxW := q3 - q1
	boxH := goldenRatio * boxW
	mid := spec.Height / 2

	root := canvas(spec)
	root.Add(
		models.Line{X1: x(stats.Min), Y1: mid, X2: q1, Y2: mid, Stroke: colors[1], StrokeWidth: 2},
		models.Line{X1: q3, Y1: mid, X2: x(stats.Max), Y2: mid, Stroke: colors[1], StrokeWidth: 2},
		models.Rect{X: q1, Y: mid - boxH/2, W: boxW, H: boxH, Fill: colors[2]},
		models.Line{X1: x(stats.Median), Y1: mid - boxH/2, X2: x(stats.Median), Y2: mid + boxH/2, Stroke: colors[0], StrokeWidth: 2},
	)
	return root, nil
}
