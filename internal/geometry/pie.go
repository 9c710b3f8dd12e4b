package geometry

import (
	"math"

	"github.com/seenimoa/graphawesome/internal/palette"
	"github.com/seenimoa/graphawesome/pkg/models"
)

// DonutInnerRatio is the inner radius of a donut as a fraction of its outer radius.
const DonutInnerRatio = 0.5

// fullTurn is the tolerance for treating a slice as the whole circle.
const fullTurn = 2*math.Pi - 1e-9

// Slice is one pie wedge: it starts at Start radians (0 = positive x axis,
// clockwise in screen coordinates) and spans Angle radians.
type Slice struct {
	Start float64
	Angle float64
}

// End returns the angle at which the slice ends.
func (s Slice) End() float64 { return s.Start + s.Angle }

// Slices divides the circle proportionally to ys. The start of each slice is
// the accumulated sum of the previous angles.
func Slices(chart models.ChartType, ys []float64) ([]Slice, error) {
	total := 0.0
	for _, v := range ys {
		total += v
	}
	if total == 0 || math.IsNaN(total) {
		return nil, degenerate(chart, "sum(ys) == 0")
	}

	out := make([]Slice, len(ys))
	cumulative := 0.0
	for i, v := range ys {
		angle := v / total * 2 * math.Pi
		out[i] = Slice{Start: cumulative, Angle: angle}
		cumulative += angle
	}
	return out, nil
}

// Pie renders one closed wedge path per value.
func Pie(spec models.ChartSpec) (*models.Group, error) {
	slices, err := Slices(models.ChartPie, spec.Ys)
	if err != nil {
		return nil, err
	}
	cx, cy, r := pieFrame(spec)
	colors := palette.Generate(len(spec.Ys))
	root := canvas(spec)

	for i, s := range slices {
		x1, y1 := polar(cx, cy, r, s.Start)
		x2, y2 := polar(cx, cy, r, s.End())

		cmds := models.PathCommands{models.MoveTo{X: cx, Y: cy}, models.LineTo{X: x1, Y: y1}}
		cmds = append(cmds, arc(cx, cy, r, s, true, x2, y2)...)
		cmds = append(cmds, models.ClosePath{})

		root.Add(models.Path{Commands: cmds, Fill: colors.At(i)})
	}
	return root, nil
}

// Donut renders one annulus wedge per value: the outer arc clockwise, then
// the inner arc back counter-clockwise.
func Donut(spec models.ChartSpec) (*models.Group, error) {
	slices, err := Slices(models.ChartDonut, spec.Ys)
	if err != nil {
		return nil, err
	}
	cx, cy, outer := pieFrame(spec)
	inner := outer * DonutInnerRatio
	colors := palette.Generate(len(spec.Ys))
	root := canvas(spec)

	for i, s := range slices {
		ix1, iy1 := polar(cx, cy, inner, s.Start)
		ox1, oy1 := polar(cx, cy, outer, s.Start)
		ox2, oy2 := polar(cx, cy, outer, s.End())
		ix2, iy2 := polar(cx, cy, inner, s.End())

		cmds := models.PathCommands{models.MoveTo{X: ix1, Y: iy1}, models.LineTo{X: ox1, Y: oy1}}
		cmds = append(cmds, arc(cx, cy, outer, s, true, ox2, oy2)...)
		cmds = append(cmds, models.LineTo{X: ix2, Y: iy2})
		cmds = append(cmds, arc(cx, cy, inner, s, false, ix1, iy1)...)
		cmds = append(cmds, models.ClosePath{})

		root.Add(models.Path{Commands: cmds, Fill: colors.At(i)})
	}
	return root, nil
}

// pieFrame centres the circle on the canvas and fits it inside the margins.
func pieFrame(spec models.ChartSpec) (cx, cy, r float64) {
	return spec.Width / 2, spec.Height / 2, (math.Min(spec.Width, spec.Height) - 2*spec.Margin) / 2
}

func polar(cx, cy, r, angle float64) (float64, float64) {
	return cx + r*math.Cos(angle), cy + r*math.Sin(angle)
}

// arc draws the slice's arc of radius r ending at (x, y). forward traces the
// slice clockwise from Start to End, otherwise from End back to Start. A
// slice covering the whole circle has coincident endpoints, which an SVG arc
// cannot express, so it is split at its midpoint.
func arc(cx, cy, r float64, s Slice, forward bool, x, y float64) []models.PathCommand {
	if math.Abs(s.Angle) >= fullTurn {
		mx, my := polar(cx, cy, r, s.Start+s.Angle/2)
		return []models.PathCommand{
			models.ArcTo{R: r, Sweep: forward, X: mx, Y: my},
			models.ArcTo{R: r, Sweep: forward, X: x, Y: y},
		}
	}
	return []models.PathCommand{models.ArcTo{R: r, LargeArc: s.Angle > math.Pi, Sweep: forward, X: x, Y: y}}
}
