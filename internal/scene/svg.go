// Package scene materialises primitive trees as SVG markup or raster images.
package scene

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"math"
	"strings"

	svg "github.com/ajstarks/svgo"

	"github.com/seenimoa/graphawesome/pkg/models"
	"github.com/seenimoa/graphawesome/pkg/utils"
)

// fixedScale carries sub-pixel precision through svgo's integer API: every
// coordinate is multiplied by it and the viewBox divides it back out.
const fixedScale = 64

const fontFamily = `font-family="sans-serif"`

// errWriter remembers the first write error; svgo ignores them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

// WriteSVG writes root as a standalone SVG 1.1 document. The root group's
// Width and Height become the document size.
func WriteSVG(w io.Writer, root *models.Group) error {
	if root == nil {
		return fmt.Errorf("scene: nothing to draw")
	}
	ew := &errWriter{w: w}
	canvas := svg.New(ew)

	width, height := pixels(root.Width), pixels(root.Height)
	canvas.Startview(width, height, 0, 0, fx(root.Width), fx(root.Height))
	if root.Class != "" {
		canvas.Group(attr("class", root.Class))
	} else {
		canvas.Group()
	}
	for _, c := range root.Children {
		writePrimitive(canvas, c)
	}
	canvas.Gend()
	canvas.End()
	return ew.err
}

// SVG renders root to a byte slice.
func SVG(root *models.Group) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteSVG(&buf, root); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Inline renders root as an <svg> element for embedding in HTML: the XML
// prolog is dropped and class, when set, is added to the root element.
func Inline(root *models.Group, class string) (string, error) {
	out, err := SVG(root)
	if err != nil {
		return "", err
	}
	s := string(out)
	i := strings.Index(s, "<svg")
	if i < 0 {
		return "", fmt.Errorf("scene: svg writer produced no root element")
	}
	s = s[i:]
	if class != "" {
		s = "<svg " + attr("class", html.EscapeString(class)) + s[len("<svg"):]
	}
	return s, nil
}

func writePrimitive(canvas *svg.SVG, p models.Primitive) {
	switch v := p.(type) {
	case models.Rect:
		if v.CornerRadius > 0 {
			r := fx(v.CornerRadius)
			canvas.Roundrect(fx(v.X), fx(v.Y), fx(v.W), fx(v.H), r, r, fill(v.Fill))
		} else {
			canvas.Rect(fx(v.X), fx(v.Y), fx(v.W), fx(v.H), fill(v.Fill))
		}
	case models.Path:
		attrs := []string{fill(v.Fill)}
		attrs = append(attrs, stroke(v.Stroke, v.StrokeWidth)...)
		canvas.Path(v.Commands.Transform(fixedScale, 0, 0).String(), attrs...)
	case models.Circle:
		attrs := []string{fill(v.Fill)}
		attrs = append(attrs, stroke(v.Stroke, v.StrokeWidth)...)
		if v.Opacity > 0 && v.Opacity < 1 {
			attrs = append(attrs, attr("opacity", utils.FormatCoord(v.Opacity)))
		}
		canvas.Circle(fx(v.CX), fx(v.CY), fx(v.R), attrs...)
	case models.Line:
		canvas.Line(fx(v.X1), fx(v.Y1), fx(v.X2), fx(v.Y2), stroke(v.Stroke, v.StrokeWidth)...)
	case models.Text:
		canvas.Text(fx(v.X), fx(v.Y), v.Content,
			attr("font-size", utils.FormatCoord(v.FontSize*fixedScale)), fill(v.Fill), fontFamily)
	case *models.Group:
		if v.Class != "" {
			canvas.Group(attr("class", v.Class))
		} else {
			canvas.Group()
		}
		for _, c := range v.Children {
			writePrimitive(canvas, c)
		}
		canvas.Gend()
	}
}

func fx(v float64) int { return utils.ToFixed(v, fixedScale) }

func pixels(v float64) int { return int(math.Ceil(v)) }

func attr(name, value string) string {
	return fmt.Sprintf(`%s="%s"`, name, value)
}

func fill(c string) string {
	if c == "" {
		c = "none"
	}
	return attr("fill", c)
}

func stroke(c string, width float64) []string {
	if c == "" || c == "none" {
		return nil
	}
	if width <= 0 {
		width = 1
	}
	return []string{attr("stroke", c), attr("stroke-width", utils.FormatCoord(width*fixedScale))}
}
