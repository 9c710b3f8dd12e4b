// Package legend lays out colour swatches and labels on a grid whose aspect
// ratio leans toward the golden ratio.
package legend

import (
	"math"

	"github.com/seenimoa/graphawesome/internal/palette"
	"github.com/seenimoa/graphawesome/pkg/models"
)

const (
	goldenRatio = 1.618
	// swatchGap is the space between swatch and label, relative to the item size.
	swatchGap = 0.25
	textColor = "#000"
)

// Options sizes the legend. ItemSize is the swatch edge and the label font
// size; Padding separates cells.
type Options struct {
	ItemSize float64
	Padding  float64
}

// Grid returns the column and row count for n entries.
func Grid(n int) (cols, rows int) {
	if n <= 0 {
		return 0, 0
	}
	cols = int(math.Ceil(math.Sqrt(goldenRatio * float64(n))))
	rows = int(math.Ceil(float64(n) / float64(cols)))
	return cols, rows
}

// Layout builds the legend for labels. Entry i is coloured colors.At(i) and
// placed at column i%cols, row i/cols. Every cell is wide enough for the
// widest label as reported by m. No labels yields nil.
func Layout(labels []string, colors palette.Palette, opts Options, m TextMeasurer) *models.Group {
	cols, rows := Grid(len(labels))
	if cols == 0 {
		return nil
	}
	if m == nil {
		m = CharWidthMeasurer{}
	}

	item, pad := opts.ItemSize, opts.Padding
	widest := 0.0
	for _, l := range labels {
		widest = math.Max(widest, m.MeasureText(l, item))
	}
	cellW := item + item*swatchGap + widest + pad
	cellH := item + pad

	root := &models.Group{
		Width:  float64(cols) * cellW,
		Height: float64(rows) * cellH,
		Class:  "legend",
	}
	for i, label := range labels {
		x := float64(i%cols)*cellW + pad
		y := float64(i/cols)*cellH + pad
		root.Add(&models.Group{Children: []models.Primitive{
			models.Rect{X: x, Y: y, W: item, H: item, CornerRadius: item / 20, Fill: colors.At(i)},
			models.Text{X: x + item + item*swatchGap, Y: y + item, FontSize: item, Fill: textColor, Content: label},
		}})
	}
	return root
}
