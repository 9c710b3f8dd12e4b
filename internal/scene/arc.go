package scene

import "math"

// maxArcStep is the widest angle one cubic segment may span.
const maxArcStep = math.Pi / 2

// arcCenter finds the centre of the circle of radius r through (sx, sy) and
// (ex, ey) that satisfies the SVG large-arc and sweep flags. A radius too
// small to span the chord is grown to half the chord. Grounded on the SVG
// endpoint-to-centre conversion with both radii equal and no rotation.
func arcCenter(sx, sy, ex, ey, r float64, largeArc, sweep bool) (cx, cy, radius float64) {
	hx, hy := (sx-ex)/2, (sy-ey)/2
	d2 := hx*hx + hy*hy
	if d2 == 0 {
		return sx, sy, 0
	}
	r2 := r * r
	if r2 < d2 {
		r2 = d2
	}
	coef := math.Sqrt(math.Max(0, (r2-d2)/d2))
	if largeArc == sweep {
		coef = -coef
	}
	return coef*hy + (sx+ex)/2, -coef*hx + (sy+ey)/2, math.Sqrt(r2)
}

// cubic is one Bézier segment: two control points and an end point.
type cubic struct {
	c1x, c1y, c2x, c2y, x, y float64
}

// arcCubics approximates the arc of the circle (cx, cy, r) from angle a0
// through delta radians with cubic segments (L. Maisonobe's construction).
// Positive delta runs clockwise on screen.
func arcCubics(cx, cy, r, a0, delta float64) []cubic {
	if r == 0 || delta == 0 {
		return nil
	}
	segs := int(math.Ceil(math.Abs(delta) / maxArcStep))
	step := delta / float64(segs)
	t := math.Tan(step / 2)
	alpha := math.Sin(step) * (math.Sqrt(4+3*t*t) - 1) / 3

	out := make([]cubic, 0, segs)
	lx, ly := cx+r*math.Cos(a0), cy+r*math.Sin(a0)
	ldx, ldy := -r*math.Sin(a0), r*math.Cos(a0)
	for i := 1; i <= segs; i++ {
		a := a0 + step*float64(i)
		px, py := cx+r*math.Cos(a), cy+r*math.Sin(a)
		dx, dy := -r*math.Sin(a), r*math.Cos(a)
		out = append(out, cubic{
			c1x: lx + alpha*ldx, c1y: ly + alpha*ldy,
			c2x: px - alpha*dx, c2y: py - alpha*dy,
			x: px, y: py,
		})
		lx, ly, ldx, ldy = px, py, dx, dy
	}
	return out
}

// svgArc converts an SVG arc from (sx, sy) to (ex, ey) into cubic segments.
func svgArc(sx, sy, r float64, largeArc, sweep bool, ex, ey float64) []cubic {
	cx, cy, radius := arcCenter(sx, sy, ex, ey, r, largeArc, sweep)
	if radius == 0 {
		return nil
	}
	a0 := math.Atan2(sy-cy, sx-cx)
	a1 := math.Atan2(ey-cy, ex-cx)
	delta := a1 - a0
	if sweep && delta < 0 {
		delta += 2 * math.Pi
	} else if !sweep && delta > 0 {
		delta -= 2 * math.Pi
	}
	segs := arcCubics(cx, cy, radius, a0, delta)
	if n := len(segs); n > 0 {
		// land exactly on the requested end point
		segs[n-1].x, segs[n-1].y = ex, ey
	}
	return segs
}
