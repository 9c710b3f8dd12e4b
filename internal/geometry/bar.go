package geometry

import (
	"math"

	"github.com/seenimoa/graphawesome/internal/palette"
	"github.com/seenimoa/graphawesome/pkg/models"
)

// Bar renders one rounded rectangle per value, anchored at the bottom edge
// and scaled so the largest value spans height-margin.
func Bar(spec models.ChartSpec) (*models.Group, error) {
	if len(spec.Ys) == 0 {
		return nil, &models.InvalidSpecError{Field: "ys", Reason: "no values"}
	}
	_, maxVal := minMax(spec.Ys)
	if !(maxVal > 0) {
		return nil, degenerate(models.ChartBar, "max(ys) <= 0")
	}

	colors := palette.Generate(len(spec.Ys))
	barWidth := (spec.Width - 2*spec.Margin) / float64(len(spec.Ys))
	root := canvas(spec)

	for i, v := range spec.Ys {
		// negative values have no bar below the baseline
		h := math.Max(0, v/maxVal*(spec.Height-spec.Margin))
		root.Add(models.Rect{
			X:            float64(i)*barWidth + spec.Margin,
			Y:            spec.Height - h,
			W:            math.Max(0, barWidth-2),
			H:            h,
			CornerRadius: barWidth / 20,
			Fill:         colors.At(i),
		})
	}
	return root, nil
}
