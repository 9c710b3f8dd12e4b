package scene

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/seenimoa/graphawesome/internal/legend"
	"github.com/seenimoa/graphawesome/internal/palette"
	"github.com/seenimoa/graphawesome/pkg/models"
)

// MaxPixels bounds the canvas Rasterize allocates, 4096×4096.
const MaxPixels = 4096 * 4096

// ErrCanvasTooLarge is returned when a scaled canvas exceeds MaxPixels.
var ErrCanvasTooLarge = errors.New("scene: canvas too large")

// CheckCanvas reports whether root drawn at scale fits within MaxPixels.
// Nothing is allocated.
func CheckCanvas(root *models.Group, scale float64) error {
	if root == nil {
		return nil
	}
	if scale <= 0 {
		scale = 1
	}
	w, h := math.Ceil(root.Width*scale), math.Ceil(root.Height*scale)
	if w*h > MaxPixels || math.IsNaN(w*h) {
		return fmt.Errorf("%w: %gx%g exceeds %d pixels", ErrCanvasTooLarge, w, h, MaxPixels)
	}
	return nil
}

// RasterOptions controls bitmap output.
type RasterOptions struct {
	Scale      float64              // pixels per user unit; zero means 1
	Background color.Color          // nil means white
	Fonts      *legend.FontMeasurer // text faces; nil means Go Regular
}

// Rasterize draws root into a new RGBA image sized Width×Height×Scale.
func Rasterize(root *models.Group, opts RasterOptions) (*image.RGBA, error) {
	if root == nil {
		return nil, fmt.Errorf("scene: nothing to draw")
	}
	s := opts.Scale
	if s <= 0 {
		s = 1
	}
	if err := CheckCanvas(root, s); err != nil {
		return nil, err
	}
	w, h := pixels(root.Width*s), pixels(root.Height*s)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("scene: empty canvas %dx%d", w, h)
	}
	fonts := opts.Fonts
	if fonts == nil {
		var err error
		if fonts, err = legend.NewFontMeasurer(nil); err != nil {
			return nil, err
		}
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	bg := opts.Background
	if bg == nil {
		bg = color.White
	}
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	r := &rasterizer{
		img:    img,
		filler: rasterx.NewFiller(w, h, rasterx.NewScannerGV(w, h, img, img.Bounds())),
		dasher: rasterx.NewDasher(w, h, rasterx.NewScannerGV(w, h, img, img.Bounds())),
		scale:  s,
		fonts:  fonts,
		faces:  make(map[float64]font.Face),
	}
	if err := r.draw(root); err != nil {
		return nil, err
	}
	return img, nil
}

// WritePNG rasterizes root and encodes it as PNG.
func WritePNG(w io.Writer, root *models.Group, opts RasterOptions) error {
	img, err := Rasterize(root, opts)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// rasterizer keeps separate scanners for fills and strokes so one shape's
// outline never leaks into the other pass.
type rasterizer struct {
	img    *image.RGBA
	filler *rasterx.Filler
	dasher *rasterx.Dasher
	scale  float64
	fonts  *legend.FontMeasurer
	faces  map[float64]font.Face
}

// pather is the subset of rasterx shared by Filler and Dasher.
type pather interface {
	Start(a fixed.Point26_6)
	Line(b fixed.Point26_6)
	CubeBezier(b, c, d fixed.Point26_6)
	Stop(closeLoop bool)
}

func (r *rasterizer) pt(x, y float64) fixed.Point26_6 {
	return fixed.Point26_6{
		X: fixed.Int26_6(math.Round(x * r.scale * 64)),
		Y: fixed.Int26_6(math.Round(y * r.scale * 64)),
	}
}

func (r *rasterizer) draw(p models.Primitive) error {
	switch v := p.(type) {
	case *models.Group:
		for _, c := range v.Children {
			if err := r.draw(c); err != nil {
				return err
			}
		}
		return nil
	case models.Rect:
		return r.shape(v.Fill, 1, "", 0, func(q pather) { r.roundRect(q, v) })
	case models.Path:
		return r.shape(v.Fill, 1, v.Stroke, v.StrokeWidth, func(q pather) { r.path(q, v.Commands) })
	case models.Circle:
		op := v.Opacity
		if op <= 0 {
			op = 1
		}
		return r.shape(v.Fill, op, v.Stroke, v.StrokeWidth, func(q pather) { r.circle(q, v.CX, v.CY, v.R) })
	case models.Line:
		return r.shape("", 1, v.Stroke, v.StrokeWidth, func(q pather) {
			q.Start(r.pt(v.X1, v.Y1))
			q.Line(r.pt(v.X2, v.Y2))
			q.Stop(false)
		})
	case models.Text:
		return r.text(v)
	}
	return nil
}

// shape fills and then strokes the outline produced by build.
func (r *rasterizer) shape(fillColor string, opacity float64, strokeColor string, width float64, build func(pather)) error {
	if fillColor != "" && fillColor != "none" {
		c, err := palette.Parse(fillColor)
		if err != nil {
			return err
		}
		r.filler.Clear()
		r.filler.SetColor(rasterx.ApplyOpacity(c, opacity))
		build(r.filler)
		r.filler.Draw()
		r.filler.Clear()
	}
	if strokeColor != "" && strokeColor != "none" {
		c, err := palette.Parse(strokeColor)
		if err != nil {
			return err
		}
		if width <= 0 {
			width = 1
		}
		r.dasher.Clear()
		r.dasher.SetStroke(fixed.Int26_6(width*r.scale*64), 4<<6,
			rasterx.ButtCap, rasterx.ButtCap, rasterx.RoundGap, rasterx.Round, nil, 0)
		r.dasher.SetColor(rasterx.ApplyOpacity(c, opacity))
		build(r.dasher)
		r.dasher.Draw()
		r.dasher.Clear()
	}
	return nil
}

func (r *rasterizer) path(q pather, cmds models.PathCommands) {
	var cx, cy, sx, sy float64
	open := false
	for _, cmd := range cmds {
		switch c := cmd.(type) {
		case models.MoveTo:
			if open {
				q.Stop(false)
			}
			q.Start(r.pt(c.X, c.Y))
			cx, cy, sx, sy = c.X, c.Y, c.X, c.Y
			open = true
		case models.LineTo:
			q.Line(r.pt(c.X, c.Y))
			cx, cy = c.X, c.Y
		case models.ArcTo:
			for _, seg := range svgArc(cx, cy, c.R, c.LargeArc, c.Sweep, c.X, c.Y) {
				q.CubeBezier(r.pt(seg.c1x, seg.c1y), r.pt(seg.c2x, seg.c2y), r.pt(seg.x, seg.y))
			}
			cx, cy = c.X, c.Y
		case models.ClosePath:
			if open {
				q.Stop(true)
				open = false
			}
			cx, cy = sx, sy
		}
	}
	if open {
		q.Stop(false)
	}
}

func (r *rasterizer) circle(q pather, cx, cy, radius float64) {
	q.Start(r.pt(cx+radius, cy))
	for _, seg := range arcCubics(cx, cy, radius, 0, 2*math.Pi) {
		q.CubeBezier(r.pt(seg.c1x, seg.c1y), r.pt(seg.c2x, seg.c2y), r.pt(seg.x, seg.y))
	}
	q.Stop(true)
}

func (r *rasterizer) roundRect(q pather, v models.Rect) {
	rad := math.Min(v.CornerRadius, math.Min(v.W, v.H)/2)
	if rad <= 0 {
		q.Start(r.pt(v.X, v.Y))
		q.Line(r.pt(v.X+v.W, v.Y))
		q.Line(r.pt(v.X+v.W, v.Y+v.H))
		q.Line(r.pt(v.X, v.Y+v.H))
		q.Stop(true)
		return
	}
	corner := func(cx, cy, a0 float64) {
		for _, seg := range arcCubics(cx, cy, rad, a0, math.Pi/2) {
			q.CubeBezier(r.pt(seg.c1x, seg.c1y), r.pt(seg.c2x, seg.c2y), r.pt(seg.x, seg.y))
		}
	}
	x0, y0, x1, y1 := v.X, v.Y, v.X+v.W, v.Y+v.H
	q.Start(r.pt(x0+rad, y0))
	q.Line(r.pt(x1-rad, y0))
	corner(x1-rad, y0+rad, -math.Pi/2)
	q.Line(r.pt(x1, y1-rad))
	corner(x1-rad, y1-rad, 0)
	q.Line(r.pt(x0+rad, y1))
	corner(x0+rad, y1-rad, math.Pi/2)
	q.Line(r.pt(x0, y0+rad))
	corner(x0+rad, y0+rad, math.Pi)
	q.Stop(true)
}

func (r *rasterizer) text(v models.Text) error {
	if v.Content == "" || v.FontSize <= 0 {
		return nil
	}
	size := v.FontSize * r.scale
	face, ok := r.faces[size]
	if !ok {
		var err error
		if face, err = r.fonts.NewFace(size); err != nil {
			return fmt.Errorf("scene: font face: %w", err)
		}
		r.faces[size] = face
	}
	c, err := palette.Parse(v.Fill)
	if err != nil {
		return err
	}
	d := &font.Drawer{
		Dst:  r.img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  r.pt(v.X, v.Y),
	}
	d.DrawString(v.Content)
	return nil
}
