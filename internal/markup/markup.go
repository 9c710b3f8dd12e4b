// Package markup reads chart markers: class lists such as
// "ga-pie ga-l ga-legend ga-xs-a-b-c ga-ys-1-2-3". The whole list resolves to
// one ChartSpec; when a token repeats, the last one wins.
package markup

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/seenimoa/graphawesome/pkg/models"
)

// Prefix starts every marker token.
const Prefix = "ga-"

// ErrNoMarker is returned for class lists without a chart token.
var ErrNoMarker = errors.New("no chart marker in class list")

// Sizes maps size tokens to the square canvas edge in pixels.
var Sizes = map[string]int{
	"ga-2xs": 32,
	"ga-xs":  64,
	"ga-s":   128,
	"ga-l":   512,
	"ga-xl":  1024,
	"ga-2xl": 2048,
}

var typeTokens = map[string]models.ChartType{
	"ga-bar":    models.ChartBar,
	"ga-pie":    models.ChartPie,
	"ga-donut":  models.ChartDonut,
	"ga-line":   models.ChartLine,
	"ga-bubble": models.ChartBubble,
	"ga-box":    models.ChartBox,
	"ga-normal": models.ChartNormal,
}

const (
	xsPrefix     = "ga-xs-"
	ysPrefix     = "ga-ys-"
	zsPrefix     = "ga-zs-"
	avgPrefix    = "ga-avg-"
	stdDevPrefix = "ga-std-dev-"
	markPrefix   = "ga-mark-"
	legendToken  = "ga-legend"
)

// Parser turns class lists into chart specs.
type Parser struct {
	DefaultSize int     // canvas edge when no size token is present
	MarginRatio float64 // margin as a fraction of the width
}

// DefaultParser uses the 256px canvas and a margin of a tenth of the width.
var DefaultParser = Parser{DefaultSize: 256, MarginRatio: 0.1}

// Parse splits class on whitespace and parses it with DefaultParser.
func Parse(class string) (models.ChartSpec, error) {
	return DefaultParser.Parse(strings.Fields(class))
}

// HasMarker reports whether classes contain a token that selects a chart.
func HasMarker(classes []string) bool {
	for _, c := range classes {
		if isChartToken(c) {
			return true
		}
	}
	return false
}

func isChartToken(c string) bool {
	if _, ok := typeTokens[c]; ok {
		return true
	}
	return strings.HasPrefix(c, avgPrefix) || strings.HasPrefix(c, stdDevPrefix)
}

// Parse resolves classes into a validated ChartSpec. Unknown tokens are
// ignored. A list with no chart token yields ErrNoMarker.
func (p Parser) Parse(classes []string) (models.ChartSpec, error) {
	spec, err := p.Resolve(classes)
	if err != nil {
		return models.ChartSpec{}, err
	}
	if err := spec.Validate(); err != nil {
		return models.ChartSpec{}, err
	}
	return spec, nil
}

// Resolve is Parse without validation, for callers that fill in the data
// series from another source.
func (p Parser) Resolve(classes []string) (models.ChartSpec, error) {
	if !HasMarker(classes) {
		return models.ChartSpec{}, ErrNoMarker
	}

	size := p.DefaultSize
	if size <= 0 {
		size = DefaultParser.DefaultSize
	}

	var (
		spec       models.ChartSpec
		explicit   bool
		hasNormal  bool
		stdDevSeen bool
	)
	for _, c := range classes {
		if t, ok := typeTokens[c]; ok {
			spec.Type = t
			explicit = true
			continue
		}
		if px, ok := Sizes[c]; ok {
			size = px
			continue
		}
		switch {
		case strings.HasPrefix(c, xsPrefix):
			spec.Xs = strings.Split(c[len(xsPrefix):], "-")
		case strings.HasPrefix(c, ysPrefix):
			spec.Ys = numbers(c[len(ysPrefix):])
		case strings.HasPrefix(c, zsPrefix):
			spec.Zs = numbers(c[len(zsPrefix):])
		case strings.HasPrefix(c, legendToken):
			spec.Legend = true
		case strings.HasPrefix(c, avgPrefix):
			if v, ok := number(c[len(avgPrefix):]); ok {
				spec.Mean = v
				hasNormal = true
			}
		case strings.HasPrefix(c, stdDevPrefix):
			if v, ok := number(c[len(stdDevPrefix):]); ok {
				spec.StdDev = v
				stdDevSeen = true
				hasNormal = true
			}
		case strings.HasPrefix(c, markPrefix):
			if v, ok := number(c[len(markPrefix):]); ok {
				spec.Mark = &v
			}
		}
	}

	switch {
	case explicit:
	case hasNormal:
		spec.Type = models.ChartNormal
	default:
		spec.Type = models.ChartBar
	}
	if spec.Type == models.ChartNormal && !stdDevSeen {
		spec.StdDev = 1
	}

	spec.Width = float64(size)
	spec.Height = float64(size)
	spec.Margin = spec.Width * p.MarginRatio
	return spec, nil
}

// numbers parses dash separated values, dropping anything that is not a
// finite number.
func numbers(s string) []float64 {
	parts := strings.Split(s, "-")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		if v, ok := number(p); ok {
			out = append(out, v)
		}
	}
	return out
}

func number(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
