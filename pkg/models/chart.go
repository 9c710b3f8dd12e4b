// Package models holds the data types shared between the marker parser, the
// geometry engine and the scene builders.
package models

import (
	"fmt"
	"math"
	"strconv"
)

// ChartType selects which geometry renderer handles a ChartSpec.
type ChartType string

const (
	ChartBar    ChartType = "bar"
	ChartPie    ChartType = "pie"
	ChartDonut  ChartType = "donut"
	ChartLine   ChartType = "line"
	ChartBubble ChartType = "bubble"
	ChartBox    ChartType = "box"
	ChartNormal ChartType = "normal"
)

// AllChartTypes returns every supported chart type in dispatch order.
func AllChartTypes() []ChartType {
	return []ChartType{ChartBar, ChartPie, ChartDonut, ChartLine, ChartBubble, ChartBox, ChartNormal}
}

// Valid reports whether t names a supported chart type.
func (t ChartType) Valid() bool {
	for _, ct := range AllChartTypes() {
		if ct == t {
			return true
		}
	}
	return false
}

// SupportsLegend reports whether a legend may be drawn next to charts of this type.
// Bubble and line charts never get one, and box/normal charts have no categories.
func (t ChartType) SupportsLegend() bool {
	switch t {
	case ChartBar, ChartPie, ChartDonut:
		return true
	default:
		return false
	}
}

// ChartSpec is the fully resolved description of one chart to render.
// It is built once per marker and never mutated afterwards.
type ChartSpec struct {
	Type   ChartType `json:"type"             yaml:"type"`
	Xs     []string  `json:"xs,omitempty"     yaml:"xs,omitempty"` // labels, or numeric x positions for bubble charts
	Ys     []float64 `json:"ys,omitempty"     yaml:"ys,omitempty"` // values; the sample for box plots
	Zs     []float64 `json:"zs,omitempty"     yaml:"zs,omitempty"` // bubble radius weights
	Width  float64   `json:"width"            yaml:"width"`
	Height float64   `json:"height"           yaml:"height"`
	Margin float64   `json:"margin"           yaml:"margin"`
	Mean   float64   `json:"mean,omitempty"   yaml:"mean,omitempty"`     // normal curve only
	StdDev float64   `json:"std_dev,omitempty" yaml:"std_dev,omitempty"` // normal curve only
	Mark   *float64  `json:"mark,omitempty"   yaml:"mark,omitempty"`     // normal curve only
	Legend bool      `json:"legend"           yaml:"legend"`
}

// Validate checks the structural invariants of the spec. It does not look for
// degenerate value ranges; those are reported by the renderers themselves.
func (s ChartSpec) Validate() error {
	if !s.Type.Valid() {
		return &InvalidSpecError{Field: "type", Reason: fmt.Sprintf("unknown chart type %q", s.Type)}
	}
	if !(s.Width > 0) || math.IsInf(s.Width, 0) {
		return &InvalidSpecError{Field: "width", Reason: "must be a positive number"}
	}
	if !(s.Height > 0) || math.IsInf(s.Height, 0) {
		return &InvalidSpecError{Field: "height", Reason: "must be a positive number"}
	}
	if s.Margin < 0 || math.IsNaN(s.Margin) {
		return &InvalidSpecError{Field: "margin", Reason: "must not be negative"}
	}
	if 2*s.Margin >= s.Width || 2*s.Margin >= s.Height {
		return &InvalidSpecError{Field: "margin", Reason: "twice the margin must be smaller than width and height"}
	}

	switch s.Type {
	case ChartNormal:
		if !(s.StdDev > 0) {
			return &InvalidSpecError{Field: "std_dev", Reason: "must be greater than zero"}
		}
	case ChartBubble:
		if len(s.Xs) != len(s.Ys) || len(s.Ys) != len(s.Zs) {
			return &InvalidSpecError{
				Field:  "zs",
				Reason: fmt.Sprintf("bubble data must be parallel (xs=%d ys=%d zs=%d)", len(s.Xs), len(s.Ys), len(s.Zs)),
			}
		}
		if len(s.Ys) == 0 {
			return &InvalidSpecError{Field: "ys", Reason: "no values"}
		}
		if _, err := s.XValues(); err != nil {
			return err
		}
	case ChartBox:
		// an empty sample is allowed and renders nothing
	default:
		if len(s.Ys) == 0 {
			return &InvalidSpecError{Field: "ys", Reason: "no values"}
		}
	}
	return nil
}

// XValues parses Xs as numbers, as bubble charts require.
func (s ChartSpec) XValues() ([]float64, error) {
	vals := make([]float64, len(s.Xs))
	for i, x := range s.Xs {
		v, err := strconv.ParseFloat(x, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &InvalidSpecError{Field: "xs", Reason: fmt.Sprintf("value %q at index %d is not a number", x, i)}
		}
		vals[i] = v
	}
	return vals, nil
}

// InvalidSpecError reports a ChartSpec that breaks a structural invariant.
type InvalidSpecError struct {
	Field  string
	Reason string
}

func (e *InvalidSpecError) Error() string {
	return fmt.Sprintf("invalid chart spec: %s: %s", e.Field, e.Reason)
}
