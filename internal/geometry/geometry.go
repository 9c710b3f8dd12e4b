// Package geometry turns a validated ChartSpec into a tree of drawing
// primitives. Every renderer is a pure function: identical input yields an
// identical tree, and nothing is shared between calls.
package geometry

import (
	"fmt"
	"math"

	"github.com/seenimoa/graphawesome/pkg/models"
)

// RenderFunc is the common signature of all chart renderers.
type RenderFunc func(spec models.ChartSpec) (*models.Group, error)

// ForType returns the renderer for a chart type.
func ForType(t models.ChartType) (RenderFunc, error) {
	switch t {
	case models.ChartBar:
		return Bar, nil
	case models.ChartPie:
		return Pie, nil
	case models.ChartDonut:
		return Donut, nil
	case models.ChartLine:
		return Line, nil
	case models.ChartBubble:
		return Bubble, nil
	case models.ChartBox:
		return BoxPlot, nil
	case models.ChartNormal:
		return NormalCurve, nil
	}
	return nil, &models.InvalidSpecError{Field: "type", Reason: fmt.Sprintf("unknown chart type %q", t)}
}

// canvas returns the root group for a chart of the given type.
func canvas(spec models.ChartSpec) *models.Group {
	return &models.Group{
		Width:  spec.Width,
		Height: spec.Height,
		Class:  string(spec.Type) + "-chart",
	}
}

func minMax(vals []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// scale maps v from [lo, hi] onto [from, to]. Callers guarantee hi != lo.
func scale(v, lo, hi, from, to float64) float64 {
	return from + (v-lo)/(hi-lo)*(to-from)
}
