package geometry

import (
	"github.com/seenimoa/graphawesome/internal/palette"
	"github.com/seenimoa/graphawesome/pkg/models"
)

// Line renders a stroked polyline through the values plus a round marker on
// every point. Points are spaced evenly over the plot width; the number of x
// positions comes from Xs when given and from Ys otherwise.
func Line(spec models.ChartSpec) (*models.Group, error) {
	n := len(spec.Xs)
	if n == 0 {
		n = len(spec.Ys)
	}
	if n < 2 {
		return nil, degenerate(models.ChartLine, "fewer than two x positions")
	}
	lo, hi := minMax(spec.Ys)
	if hi == lo {
		return nil, degenerate(models.ChartLine, "max(ys) == min(ys)")
	}

	colors := palette.Generate(3)
	xStep := (spec.Width - 2*spec.Margin) / float64(n-1)
	yScale := (spec.Height - 2*spec.Margin) / (hi - lo)

	points := make([][2]float64, len(spec.Ys))
	cmds := make(models.PathCommands, 0, len(spec.Ys))
	for i, v := range spec.Ys {
		x := spec.Margin + float64(i)*xStep
		y := spec.Height - spec.Margin - (v-lo)*yScale
		points[i] = [2]float64{x, y}
		if i == 0 {
			cmds = append(cmds, models.MoveTo{X: x, Y: y})
		} else {
			cmds = append(cmds, models.LineTo{X: x, Y: y})
		}
	}

	root := canvas(spec)
	root.Add(models.Path{Commands: cmds, Stroke: colors[0], StrokeWidth: 2})
	for _, p := range points {
		root.Add(models.Circle{CX: p[0], CY: p[1], R: 4, Fill: colors[1]})
	}
	return root, nil
}
