package models

// Translate returns a copy of p moved by (dx, dy). Groups are copied deeply.
func Translate(p Primitive, dx, dy float64) Primitive {
	switch v := p.(type) {
	case Rect:
		v.X += dx
		v.Y += dy
		return v
	case Path:
		v.Commands = v.Commands.Transform(1, dx, dy)
		return v
	case Circle:
		v.CX += dx
		v.CY += dy
		return v
	case Line:
		v.X1 += dx
		v.Y1 += dy
		v.X2 += dx
		v.Y2 += dy
		return v
	case Text:
		v.X += dx
		v.Y += dy
		return v
	case *Group:
		out := &Group{Width: v.Width, Height: v.Height, Class: v.Class}
		out.Children = make([]Primitive, len(v.Children))
		for i, c := range v.Children {
			out.Children[i] = Translate(c, dx, dy)
		}
		return out
	}
	return p
}

// Transform returns the commands scaled by k and then moved by (dx, dy).
// Arc radii scale with k; flags are unchanged for k > 0.
func (p PathCommands) Transform(k, dx, dy float64) PathCommands {
	out := make(PathCommands, len(p))
	for i, cmd := range p {
		switch c := cmd.(type) {
		case MoveTo:
			out[i] = MoveTo{X: c.X*k + dx, Y: c.Y*k + dy}
		case LineTo:
			out[i] = LineTo{X: c.X*k + dx, Y: c.Y*k + dy}
		case ArcTo:
			out[i] = ArcTo{R: c.R * k, LargeArc: c.LargeArc, Sweep: c.Sweep, X: c.X*k + dx, Y: c.Y*k + dy}
		default:
			out[i] = cmd
		}
	}
	return out
}

// Stack places legend below chart on one canvas wide enough for both.
// A nil legend returns chart unchanged.
func Stack(chart, legend *Group) *Group {
	if legend == nil {
		return chart
	}
	if chart == nil {
		return legend
	}
	w := chart.Width
	if legend.Width > w {
		w = legend.Width
	}
	moved := Translate(legend, 0, chart.Height).(*Group)
	moved.Width, moved.Height = 0, 0
	inner := &Group{Class: chart.Class, Children: chart.Children}
	return &Group{
		Width:    w,
		Height:   chart.Height + legend.Height,
		Children: []Primitive{inner, moved},
	}
}
