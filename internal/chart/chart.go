// Package chart dispatches a ChartSpec to its geometry renderer and attaches
// a legend where the chart type has one.
package chart

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/seenimoa/graphawesome/internal/config"
	"github.com/seenimoa/graphawesome/internal/geometry"
	"github.com/seenimoa/graphawesome/internal/legend"
	"github.com/seenimoa/graphawesome/internal/logging"
	"github.com/seenimoa/graphawesome/internal/palette"
	"github.com/seenimoa/graphawesome/pkg/models"
)

// Default legend sizing relative to the chart width.
const (
	DefaultLegendItemRatio    = 0.1
	DefaultLegendPaddingRatio = 0.05
)

// Result is the output of one render. Chart is nil for an empty box plot;
// Legend is nil unless the spec asked for one and the chart type supports it.
type Result struct {
	Spec   models.ChartSpec
	Chart  *models.Group
	Legend *models.Group
}

// Empty reports whether nothing was drawn.
func (r Result) Empty() bool { return r.Chart == nil }

// Root returns the chart with its legend stacked below it, ready for a
// standalone image. An empty result yields a blank canvas of the spec's size.
func (r Result) Root() *models.Group {
	if r.Empty() {
		return &models.Group{Width: r.Spec.Width, Height: r.Spec.Height, Class: string(r.Spec.Type) + "-chart"}
	}
	return models.Stack(r.Chart, r.Legend)
}

// Renderer renders chart specs. It holds no per-render state and is safe for
// concurrent use.
type Renderer struct {
	measurer    legend.TextMeasurer
	logger      *slog.Logger
	itemRatio   float64
	paddingRate float64
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithMeasurer sets the text measurer used to size legend cells.
func WithMeasurer(m legend.TextMeasurer) Option {
	return func(r *Renderer) {
		if m != nil {
			r.measurer = m
		}
	}
}

// WithLogger sets the logger renders are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) { r.logger = logging.OrNop(l) }
}

// WithLegendRatios sets the legend swatch size and padding as fractions of
// the chart width.
func WithLegendRatios(item, padding float64) Option {
	return func(r *Renderer) {
		if item > 0 {
			r.itemRatio = item
		}
		if padding >= 0 {
			r.paddingRate = padding
		}
	}
}

// New creates a Renderer. Without options it measures text with the
// fixed character-width metric and logs nothing.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		measurer:    legend.CharWidthMeasurer{},
		logger:      logging.Nop(),
		itemRatio:   DefaultLegendItemRatio,
		paddingRate: DefaultLegendPaddingRatio,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// NewFromConfig creates a Renderer from the render settings. The "font"
// measurer loads cfg.FontFile, or the bundled Go Regular face when it is empty.
func NewFromConfig(cfg config.RenderConfig, logger *slog.Logger) (*Renderer, error) {
	opts := []Option{
		WithLogger(logger),
		WithLegendRatios(cfg.LegendItemRatio, cfg.LegendPaddingRatio),
	}
	if cfg.Measurer == "font" {
		fm, err := legend.LoadFontMeasurer(cfg.FontFile)
		if err != nil {
			return nil, fmt.Errorf("legend font: %w", err)
		}
		opts = append(opts, WithMeasurer(fm))
	}
	return New(opts...), nil
}

// Fonts returns the font measurer legends are sized with, or nil when the
// fixed character metric is in use.
func (r *Renderer) Fonts() *legend.FontMeasurer {
	fm, _ := r.measurer.(*legend.FontMeasurer)
	return fm
}

// Render validates spec, draws it and, when requested and supported, lays
// out its legend. Degenerate data is reported as a *geometry.DegenerateRangeError
// and structural problems as a *models.InvalidSpecError, both wrapped.
func (r *Renderer) Render(spec models.ChartSpec) (Result, error) {
	if err := spec.Validate(); err != nil {
		return Result{}, fmt.Errorf("render %s chart: %w", spec.Type, err)
	}
	draw, err := geometry.ForType(spec.Type)
	if err != nil {
		return Result{}, fmt.Errorf("render %s chart: %w", spec.Type, err)
	}

	group, err := draw(spec)
	if err != nil {
		r.logger.Debug("chart render failed", "type", spec.Type, "error", err)
		return Result{}, fmt.Errorf("render %s chart: %w", spec.Type, err)
	}

	res := Result{Spec: spec, Chart: group}
	if group != nil && spec.Legend && spec.Type.SupportsLegend() {
		opts := legend.Options{
			ItemSize: spec.Width * r.itemRatio,
			Padding:  spec.Width * r.paddingRate,
		}
		res.Legend = legend.Layout(spec.Xs, palette.Generate(len(spec.Ys)), opts, r.measurer)
	}

	r.logger.Debug("chart rendered",
		"type", spec.Type,
		"width", spec.Width,
		"height", spec.Height,
		"points", len(spec.Ys),
		"legend", res.Legend != nil,
	)
	return res, nil
}

// Key identifies spec for caching. Two class lists that resolve to the same
// spec share a key, whatever their token order.
func Key(spec models.ChartSpec) string {
	b, err := json.Marshal(spec)
	if err != nil {
		// ChartSpec holds only plain fields; this cannot happen for validated specs
		return fmt.Sprintf("%#v", spec)
	}
	return string(b)
}
