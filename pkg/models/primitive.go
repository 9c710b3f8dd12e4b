package models

import (
	"strings"

	"github.com/seenimoa/graphawesome/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// Drawing primitives
// ════════════════════════════════════════════════════════════════════

// PrimitiveKind tags the concrete type behind a Primitive.
type PrimitiveKind string

const (
	KindRect   PrimitiveKind = "rect"
	KindPath   PrimitiveKind = "path"
	KindCircle PrimitiveKind = "circle"
	KindLine   PrimitiveKind = "line"
	KindText   PrimitiveKind = "text"
	KindGroup  PrimitiveKind = "group"
)

// Primitive is one drawable shape instruction. The set of implementations is
// closed: Rect, Path, Circle, Line, Text and Group.
type Primitive interface {
	Kind() PrimitiveKind
	primitive()
}

// Rect is an axis-aligned rectangle with optional rounded corners.
type Rect struct {
	X            float64 `json:"x"             yaml:"x"`
	Y            float64 `json:"y"             yaml:"y"`
	W            float64 `json:"w"             yaml:"w"`
	H            float64 `json:"h"             yaml:"h"`
	CornerRadius float64 `json:"corner_radius" yaml:"corner_radius"`
	Fill         string  `json:"fill"          yaml:"fill"`
}

// Path is an outline built from M, L, A and Z commands.
// An empty Fill or Stroke means the path is not filled or not stroked.
type Path struct {
	Commands    PathCommands `json:"d"            yaml:"d"`
	Stroke      string       `json:"stroke"       yaml:"stroke"`
	Fill        string       `json:"fill"         yaml:"fill"`
	StrokeWidth float64      `json:"stroke_width" yaml:"stroke_width"`
}

// Circle is a filled and/or stroked circle. Opacity 0 is treated as opaque.
type Circle struct {
	CX          float64 `json:"cx"                     yaml:"cx"`
	CY          float64 `json:"cy"                     yaml:"cy"`
	R           float64 `json:"r"                      yaml:"r"`
	Fill        string  `json:"fill"                   yaml:"fill"`
	Stroke      string  `json:"stroke,omitempty"       yaml:"stroke,omitempty"`
	StrokeWidth float64 `json:"stroke_width,omitempty" yaml:"stroke_width,omitempty"`
	Opacity     float64 `json:"opacity,omitempty"      yaml:"opacity,omitempty"`
}

// Line is a single straight stroke.
type Line struct {
	X1          float64 `json:"x1"           yaml:"x1"`
	Y1          float64 `json:"y1"           yaml:"y1"`
	X2          float64 `json:"x2"           yaml:"x2"`
	Y2          float64 `json:"y2"           yaml:"y2"`
	Stroke      string  `json:"stroke"       yaml:"stroke"`
	StrokeWidth float64 `json:"stroke_width" yaml:"stroke_width"`
}

// Text is a run of text whose baseline starts at (X, Y).
type Text struct {
	X        float64 `json:"x"         yaml:"x"`
	Y        float64 `json:"y"         yaml:"y"`
	FontSize float64 `json:"font_size" yaml:"font_size"`
	Fill     string  `json:"fill"      yaml:"fill"`
	Content  string  `json:"content"   yaml:"content"`
}

// Group nests primitives. A root group carries the canvas size in Width and
// Height; nested groups leave them zero.
type Group struct {
	Width    float64     `json:"width,omitempty"  yaml:"width,omitempty"`
	Height   float64     `json:"height,omitempty" yaml:"height,omitempty"`
	Class    string      `json:"class,omitempty"  yaml:"class,omitempty"`
	Children []Primitive `json:"children"         yaml:"children"`
}

func (Rect) Kind() PrimitiveKind   { return KindRect }
func (Path) Kind() PrimitiveKind   { return KindPath }
func (Circle) Kind() PrimitiveKind { return KindCircle }
func (Line) Kind() PrimitiveKind   { return KindLine }
func (Text) Kind() PrimitiveKind   { return KindText }
func (*Group) Kind() PrimitiveKind { return KindGroup }

func (Rect) primitive()   {}
func (Path) primitive()   {}
func (Circle) primitive() {}
func (Line) primitive()   {}
func (Text) primitive()   {}
func (*Group) primitive() {}

// Add appends children to the group.
func (g *Group) Add(children ...Primitive) {
	g.Children = append(g.Children, children...)
}

// Count returns the number of primitives of the given kind anywhere below g.
func (g *Group) Count(kind PrimitiveKind) int {
	n := 0
	for _, c := range g.Children {
		if c.Kind() == kind {
			n++
		}
		if sub, ok := c.(*Group); ok {
			n += sub.Count(kind)
		}
	}
	return n
}

// ════════════════════════════════════════════════════════════════════
// Path commands
// ════════════════════════════════════════════════════════════════════

// PathCommand is one of MoveTo, LineTo, ArcTo or ClosePath.
type PathCommand interface {
	Letter() byte
}

// MoveTo starts a new subpath at (X, Y).
type MoveTo struct{ X, Y float64 }

// LineTo draws a straight segment to (X, Y).
type LineTo struct{ X, Y float64 }

// ArcTo draws a circular arc of radius R to (X, Y). LargeArc selects the arc
// spanning more than 180 degrees, Sweep selects the clockwise direction.
type ArcTo struct {
	R        float64
	LargeArc bool
	Sweep    bool
	X, Y     float64
}

// ClosePath closes the current subpath.
type ClosePath struct{}

func (MoveTo) Letter() byte    { return 'M' }
func (LineTo) Letter() byte    { return 'L' }
func (ArcTo) Letter() byte     { return 'A' }
func (ClosePath) Letter() byte { return 'Z' }

// PathCommands is the command list of a Path.
type PathCommands []PathCommand

// String renders the commands as an SVG path data attribute.
func (p PathCommands) String() string {
	chunks := make([]string, 0, len(p))
	for _, cmd := range p {
		switch c := cmd.(type) {
		case MoveTo:
			chunks = append(chunks, "M "+utils.FormatCoord(c.X)+" "+utils.FormatCoord(c.Y))
		case LineTo:
			chunks = append(chunks, "L "+utils.FormatCoord(c.X)+" "+utils.FormatCoord(c.Y))
		case ArcTo:
			r := utils.FormatCoord(c.R)
			chunks = append(chunks, "A "+r+" "+r+" 0 "+flag(c.LargeArc)+" "+flag(c.Sweep)+" "+
				utils.FormatCoord(c.X)+" "+utils.FormatCoord(c.Y))
		case ClosePath:
			chunks = append(chunks, "Z")
		}
	}
	return strings.Join(chunks, " ")
}

// MarshalText lets JSON and YAML encoders emit the path data string.
func (p PathCommands) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
