package geometry

import (
	"fmt"

	"github.com/seenimoa/graphawesome/internal/palette"
	"github.com/seenimoa/graphawesome/pkg/models"
)

// BubbleOpacity keeps overlapping bubbles visible.
const BubbleOpacity = 0.6

// Bubble renders one translucent circle per (x, y, z) triple. x and y are
// normalised independently into the margins; z sets the radius in [1, 6].
func Bubble(spec models.ChartSpec) (*models.Group, error) {
	xs, err := spec.XValues()
	if err != nil {
		return nil, err
	}
	if len(xs) != len(spec.Ys) || len(xs) != len(spec.Zs) {
		return nil, &models.InvalidSpecError{
			Field:  "zs",
			Reason: fmt.Sprintf("bubble data must be parallel (xs=%d ys=%d zs=%d)", len(xs), len(spec.Ys), len(spec.Zs)),
		}
	}
	if len(xs) == 0 {
		return nil, &models.InvalidSpecError{Field: "ys", Reason: "no values"}
	}

	minX, maxX := minMax(xs)
	if minX == maxX {
		return nil, degenerate(models.ChartBubble, "max(xs) == min(xs)")
	}
	minY, maxY := minMax(spec.Ys)
	if minY == maxY {
		return nil, degenerate(models.ChartBubble, "max(ys) == min(ys)")
	}
	minZ, maxZ := minMax(spec.Zs)
	if minZ < 0 {
		return nil, &models.InvalidSpecError{Field: "zs", Reason: "bubble sizes must not be negative"}
	}
	if maxZ == 0 {
		return nil, degenerate(models.ChartBubble, "max(zs) == 0")
	}

	colors := palette.Generate(len(xs))
	root := canvas(spec)
	for i, xv := range xs {
		root.Add(models.Circle{
			CX:      scale(xv, minX, maxX, spec.Margin, spec.Width-spec.Margin),
			CY:      scale(spec.Ys[i], minY, maxY, spec.Height-spec.Margin, spec.Margin),
			R:       spec.Zs[i]/maxZ*5 + 1,
			Fill:    colors.At(i),
			Opacity: BubbleOpacity,
		})
	}
	return root, nil
}
