// Package palette generates the colour sequences used to fill chart elements.
package palette

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// Palette is an ordered list of CSS colour tokens.
type Palette []string

var curated = map[int]Palette{
	3: {"#f6511d", "#ffb400", "#00a6ed"},
	4: {"#219ebc", "#023047", "#ffb703", "#fb8500"},
	5: {"#55dde0", "#33658a", "#2f4858", "#f6ae2d", "#f26419"},
}

// Generate returns k colours. Three, four and five colour requests get a
// fixed hand-picked set; any other k gets hues spaced evenly around the
// colour wheel at full saturation and half lightness. k <= 0 yields nil.
func Generate(k int) Palette {
	if k <= 0 {
		return nil
	}
	if fixed, ok := curated[k]; ok {
		out := make(Palette, len(fixed))
		copy(out, fixed)
		return out
	}
	out := make(Palette, k)
	for i := 0; i < k; i++ {
		hue := math.Mod(float64(i)*360/float64(k), 360)
		out[i] = "hsl(" + strconv.FormatFloat(hue, 'g', -1, 64) + ", 100%, 50%)"
	}
	return out
}

// At returns the colour for element i, cycling through the palette.
// An empty palette returns "".
func (p Palette) At(i int) string {
	if len(p) == 0 {
		return ""
	}
	i %= len(p)
	if i < 0 {
		i += len(p)
	}
	return p[i]
}

// Parse converts a colour token produced by Generate (or any #rgb, #rrggbb or
// hsl(h, s%, l%) token) to RGBA.
func Parse(token string) (color.RGBA, error) {
	s := strings.TrimSpace(strings.ToLower(token))
	switch {
	case strings.HasPrefix(s, "#"):
		return parseHex(s[1:])
	case strings.HasPrefix(s, "hsl(") && strings.HasSuffix(s, ")"):
		return parseHSL(s[4 : len(s)-1])
	case s == "none" || s == "transparent" || s == "":
		return color.RGBA{}, nil
	case s == "black":
		return color.RGBA{A: 255}, nil
	case s == "white":
		return color.RGBA{R: 255, G: 255, B: 255, A: 255}, nil
	}
	return color.RGBA{}, fmt.Errorf("palette: unsupported colour %q", token)
}

func parseHex(hex string) (color.RGBA, error) {
	var v uint64
	var err error
	switch len(hex) {
	case 3:
		v, err = strconv.ParseUint(hex, 16, 16)
		if err != nil {
			break
		}
		r, g, b := uint8(v>>8&0xf), uint8(v>>4&0xf), uint8(v&0xf)
		return color.RGBA{R: r * 17, G: g * 17, B: b * 17, A: 255}, nil
	case 6:
		v, err = strconv.ParseUint(hex, 16, 32)
		if err != nil {
			break
		}
		return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
	default:
		err = fmt.Errorf("bad length %d", len(hex))
	}
	return color.RGBA{}, fmt.Errorf("palette: invalid hex colour #%s: %w", hex, err)
}

func parseHSL(args string) (color.RGBA, error) {
	parts := strings.Split(args, ",")
	if len(parts) != 3 {
		return color.RGBA{}, fmt.Errorf("palette: hsl needs 3 components, got %d", len(parts))
	}
	var vals [3]float64
	for i, p := range parts {
		p = strings.TrimSuffix(strings.TrimSpace(p), "%")
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("palette: hsl component %q: %w", p, err)
		}
		vals[i] = f
	}
	return HSL(vals[0], vals[1]/100, vals[2]/100), nil
}

// HSL converts hue (degrees), saturation and lightness (0..1) to opaque RGBA.
func HSL(h, s, l float64) color.RGBA {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	h /= 360

	c := (1 - math.Abs(2*l-1)) * s
	x := c * (1 - math.Abs(math.Mod(h*6, 2)-1))
	m := l - c/2

	var r, g, b float64
	switch {
	case h < 1.0/6:
		r, g, b = c, x, 0
	case h < 2.0/6:
		r, g, b = x, c, 0
	case h < 3.0/6:
		r, g, b = 0, c, x
	case h < 4.0/6:
		r, g, b = 0, x, c
	case h < 5.0/6:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return color.RGBA{R: to8(r + m), G: to8(g + m), B: to8(b + m), A: 255}
}

func to8(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}
