package geometry

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/seenimoa/graphawesome/pkg/models"
)

const eps = 1e-9

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func spec(t models.ChartType, ys ...float64) models.ChartSpec {
	return models.ChartSpec{Type: t, Ys: ys, Width: 100, Height: 100, Margin: 10}
}

func TestBarHeights(t *testing.T) {
	g, err := Bar(spec(models.ChartBar, 10, 20, 30))
	if err != nil {
		t.Fatalf("Bar error: %v", err)
	}
	if len(g.Children) != 3 {
		t.Fatalf("got %d children, want 3", len(g.Children))
	}

	wantH := []float64{30, 60, 90}
	barWidth := 80.0 / 3
	for i, c := range g.Children {
		r, ok := c.(models.Rect)
		if !ok {
			t.Fatalf("child %d is %T, want Rect", i, c)
		}
		if !approx(r.H, wantH[i]) {
			t.Errorf("bar %d height = %f, want %f", i, r.H, wantH[i])
		}
		if !approx(r.Y, 100-wantH[i]) {
			t.Errorf("bar %d y = %f, want %f", i, r.Y, 100-wantH[i])
		}
		if !approx(r.X, float64(i)*barWidth+10) {
			t.Errorf("bar %d x = %f", i, r.X)
		}
		if !approx(r.W, barWidth-2) || !approx(r.CornerRadius, barWidth/20) {
			t.Errorf("bar %d width/radius = %f/%f", i, r.W, r.CornerRadius)
		}
	}
	if g.Children[0].(models.Rect).Fill != "#f6511d" {
		t.Errorf("first bar fill = %s", g.Children[0].(models.Rect).Fill)
	}
}

func TestBarDegenerate(t *testing.T) {
	for _, ys := range [][]float64{{0, 0}, {-1, -2}} {
		_, err := Bar(spec(models.ChartBar, ys...))
		if !errors.Is(err, ErrDegenerateRange) {
			t.Errorf("Bar(%v) error = %v, want ErrDegenerateRange", ys, err)
		}
	}
}

func TestBarNegativeValueClamped(t *testing.T) {
	g, err := Bar(spec(models.ChartBar, 10, -5))
	if err != nil {
		t.Fatal(err)
	}
	if h := g.Children[1].(models.Rect).H; h != 0 {
		t.Errorf("negative bar height = %f, want 0", h)
	}
}

func TestSlicesAngleSum(t *testing.T) {
	inputs := [][]float64{
		{1},
		{1, 2, 3},
		{0.1, 0.2, 0.3, 0.4},
		{7, 13, 1e-3, 42, 99.5, 3.25, 8},
		{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
	}
	for _, ys := range inputs {
		slices, err := Slices(models.ChartPie, ys)
		if err != nil {
			t.Fatalf("Slices(%v) error: %v", ys, err)
		}
		sum := 0.0
		for i, s := range slices {
			sum += s.Angle
			if i > 0 && s.Start != slices[i-1].End() {
				t.Errorf("slice %d does not start where slice %d ends", i, i-1)
			}
		}
		if math.Abs(sum-2*math.Pi) > eps {
			t.Errorf("angle sum for %v = %.12f, want 2π", ys, sum)
		}
	}
}

func TestPieDegenerate(t *testing.T) {
	for _, fn := range []RenderFunc{Pie, Donut} {
		_, err := fn(spec(models.ChartPie, 0, 0))
		var dre *DegenerateRangeError
		if !errors.As(err, &dre) {
			t.Fatalf("error = %v, want *DegenerateRangeError", err)
		}
		if dre.Quantity != "sum(ys) == 0" {
			t.Errorf("quantity = %q", dre.Quantity)
		}
	}
}

func TestPiePath(t *testing.T) {
	g, err := Pie(spec(models.ChartPie, 3, 1))
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Children) != 2 {
		t.Fatalf("got %d slices", len(g.Children))
	}
	first := g.Children[0].(models.Path).Commands.String()
	if !strings.HasPrefix(first, "M 50 50 L 90 50 A 40 40 0 1 1 ") || !strings.HasSuffix(first, " Z") {
		t.Errorf("large slice path = %q", first)
	}
	second := g.Children[1].(models.Path).Commands.String()
	if !strings.Contains(second, "A 40 40 0 0 1 90 50") {
		t.Errorf("small slice path = %q", second)
	}
}

func TestDonutPath(t *testing.T) {
	g, err := Donut(spec(models.ChartDonut, 1, 1))
	if err != nil {
		t.Fatal(err)
	}
	got := g.Children[0].(models.Path).Commands.String()
	want := "M 70 50 L 90 50 A 40 40 0 0 1 10 50 L 30 50 A 20 20 0 0 0 70 50 Z"
	if got != want {
		t.Errorf("donut path\n got %q\nwant %q", got, want)
	}
}

func TestFullCircleSlice(t *testing.T) {
	tests := []struct {
		name string
		fn   RenderFunc
		arcs int
	}{
		{"pie", Pie, 2},
		{"donut", Donut, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := tt.fn(spec(models.ChartPie, 5))
			if err != nil {
				t.Fatal(err)
			}
			d := g.Children[0].(models.Path).Commands.String()
			if got := strings.Count(d, "A "); got != tt.arcs {
				t.Errorf("full circle path %q has %d arcs, want %d", d, got, tt.arcs)
			}
		})
	}
}

func TestLineMapping(t *testing.T) {
	g, err := Line(spec(models.ChartLine, 1, 3, 2))
	if err != nil {
		t.Fatal(err)
	}
	path := g.Children[0].(models.Path)
	if path.Fill != "" || path.Stroke != "#f6511d" || path.StrokeWidth != 2 {
		t.Errorf("path style = %+v", path)
	}
	if got := path.Commands.String(); got != "M 10 90 L 50 10 L 90 50" {
		t.Errorf("path = %q", got)
	}
	if n := g.Count(models.KindCircle); n != 3 {
		t.Errorf("got %d markers, want 3", n)
	}
	c := g.Children[2].(models.Circle)
	if c.CX != 50 || c.CY != 10 || c.R != 4 || c.Fill != "#ffb400" {
		t.Errorf("marker = %+v", c)
	}
}

func TestLineUsesXsCount(t *testing.T) {
	s := spec(models.ChartLine, 1, 3, 2)
	s.Xs = []string{"a", "b", "c", "d", "e"}
	g, err := Line(s)
	if err != nil {
		t.Fatal(err)
	}
	if got := g.Children[0].(models.Path).Commands.String(); got != "M 10 90 L 30 10 L 50 50" {
		t.Errorf("path = %q", got)
	}
}

func TestLineDegenerate(t *testing.T) {
	tests := []struct {
		name string
		ys   []float64
	}{
		{"single point", []float64{4}},
		{"flat", []float64{2, 2, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Line(spec(models.ChartLine, tt.ys...)); !errors.Is(err, ErrDegenerateRange) {
				t.Errorf("error = %v, want ErrDegenerateRange", err)
			}
		})
	}
}

func TestBubble(t *testing.T) {
	s := models.ChartSpec{
		Type: models.ChartBubble, Width: 100, Height: 100, Margin: 10,
		Xs: []string{"1", "2", "3"}, Ys: []float64{10, 30, 20}, Zs: []float64{1, 2, 4},
	}
	g, err := Bubble(s)
	if err != nil {
		t.Fatal(err)
	}
	want := []models.Circle{
		{CX: 10, CY: 90, R: 2.25},
		{CX: 50, CY: 10, R: 3.5},
		{CX: 90, CY: 50, R: 6},
	}
	for i, w := range want {
		c := g.Children[i].(models.Circle)
		if !approx(c.CX, w.CX) || !approx(c.CY, w.CY) || !approx(c.R, w.R) {
			t.Errorf("bubble %d = (%f, %f, r=%f), want (%f, %f, r=%f)", i, c.CX, c.CY, c.R, w.CX, w.CY, w.R)
		}
		if c.Opacity != BubbleOpacity {
			t.Errorf("bubble %d opacity = %f", i, c.Opacity)
		}
	}
}

func TestBubbleErrors(t *testing.T) {
	base := models.ChartSpec{Type: models.ChartBubble, Width: 100, Height: 100, Margin: 10}
	tests := []struct {
		name       string
		xs         []string
		ys, zs     []float64
		degenerate bool
	}{
		{"flat x", []string{"1", "1"}, []float64{1, 2}, []float64{1, 1}, true},
		{"flat y", []string{"1", "2"}, []float64{3, 3}, []float64{1, 1}, true},
		{"zero z", []string{"1", "2"}, []float64{1, 2}, []float64{0, 0}, true},
		{"mismatched", []string{"1", "2"}, []float64{1, 2}, []float64{1}, false},
		{"non-numeric x", []string{"a", "2"}, []float64{1, 2}, []float64{1, 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base
			s.Xs, s.Ys, s.Zs = tt.xs, tt.ys, tt.zs
			_, err := Bubble(s)
			if err == nil {
				t.Fatal("expected error")
			}
			var ise *models.InvalidSpecError
			if tt.degenerate != errors.Is(err, ErrDegenerateRange) || tt.degenerate == errors.As(err, &ise) {
				t.Errorf("error = %v (degenerate=%v)", err, tt.degenerate)
			}
		})
	}
}

func TestQuartiles(t *testing.T) {
	stats, ok := Quartiles([]float64{8, 3, 1, 6, 2, 7, 5, 4})
	if !ok {
		t.Fatal("Quartiles reported empty sample")
	}
	want := BoxStats{Min: 1, Q1: 3, Median: 5, Q3: 7, Max: 8}
	if stats != want {
		t.Errorf("Quartiles = %+v, want %+v", stats, want)
	}
	if _, ok := Quartiles(nil); ok {
		t.Error("Quartiles(nil) reported ok")
	}
}

func TestBoxPlot(t *testing.T) {
	g, err := BoxPlot(spec(models.ChartBox, 1, 2, 3, 4, 5, 6, 7, 8))
	if err != nil {
		t.Fatal(err)
	}
	if g.Count(models.KindRect) != 1 || g.Count(models.KindLine) != 3 {
		t.Fatalf("box plot has %d rects and %d lines", g.Count(models.KindRect), g.Count(models.KindLine))
	}
	var box models.Rect
	for _, c := range g.Children {
		if r, ok := c.(models.Rect); ok {
			box = r
		}
	}
	q1 := 10 + 2.0/7*80
	q3 := 10 + 6.0/7*80
	if !approx(box.X, q1) || !approx(box.W, q3-q1) {
		t.Errorf("box x/w = %f/%f, want %f/%f", box.X, box.W, q1, q3-q1)
	}
	if !approx(box.H, 0.618*box.W) || !approx(box.Y+box.H/2, 50) {
		t.Errorf("box h/y = %f/%f", box.H, box.Y)
	}
}

func TestBoxPlotEmpty(t *testing.T) {
	g, err := BoxPlot(spec(models.ChartBox))
	if g != nil || err != nil {
		t.Errorf("BoxPlot(empty) = %v, %v; want nil, nil", g, err)
	}
	if _, err := BoxPlot(spec(models.ChartBox, 4, 4)); !errors.Is(err, ErrDegenerateRange) {
		t.Errorf("flat sample error = %v", err)
	}
}

func TestNormalCurve(t *testing.T) {
	s := models.ChartSpec{Type: models.ChartNormal, Width: 200, Height: 100, Mean: 0, StdDev: 1}
	g, err := NormalCurve(s)
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Children) != 1 {
		t.Fatalf("unmarked curve has %d children", len(g.Children))
	}
	cmds := g.Children[0].(models.Path).Commands
	if len(cmds) != NormalSamples {
		t.Fatalf("curve has %d points, want %d", len(cmds), NormalSamples)
	}
	first := cmds[0].(models.MoveTo)
	last := cmds[NormalSamples-1].(models.LineTo)
	if !approx(first.X, 0) || !approx(last.X, 200) {
		t.Errorf("curve spans x %f..%f", first.X, last.X)
	}
	peak := cmds[50].(models.LineTo)
	wantPeak := 100 - NormalPDF(0, 0, 1)*100*10
	if !approx(peak.X, 100) || !approx(peak.Y, wantPeak) {
		t.Errorf("peak = (%f, %f), want (100, %f)", peak.X, peak.Y, wantPeak)
	}
}

func TestNormalCurveMark(t *testing.T) {
	mark := func(v float64) *float64 { return &v }
	tests := []struct {
		name     string
		mark     *float64
		children int
	}{
		{"at mean", mark(10), 3},
		{"between samples", mark(10.03), 3},
		{"outside range", mark(100), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := models.ChartSpec{Type: models.ChartNormal, Width: 100, Height: 100, Mean: 10, StdDev: 2, Mark: tt.mark}
			g, err := NormalCurve(s)
			if err != nil {
				t.Fatal(err)
			}
			if len(g.Children) != tt.children {
				t.Errorf("got %d children, want %d", len(g.Children), tt.children)
			}
			if tt.children == 3 {
				guide := g.Children[1].(models.Line)
				if guide.Y2 != 100 || guide.X1 != guide.X2 {
					t.Errorf("guide = %+v", guide)
				}
				if c := g.Children[2].(models.Circle); c.Fill != "none" {
					t.Errorf("marker fill = %q, want hollow", c.Fill)
				}
			}
		})
	}
}

func TestRenderersIdempotent(t *testing.T) {
	specs := []models.ChartSpec{
		spec(models.ChartBar, 3, 1, 2),
		spec(models.ChartPie, 3, 1, 2),
		spec(models.ChartDonut, 3, 1, 2),
		spec(models.ChartLine, 3, 1, 2),
		spec(models.ChartBox, 3, 1, 2, 9),
		{Type: models.ChartBubble, Width: 100, Height: 100, Margin: 10, Xs: []string{"1", "2"}, Ys: []float64{1, 2}, Zs: []float64{1, 2}},
		{Type: models.ChartNormal, Width: 100, Height: 100, StdDev: 1},
	}
	for _, s := range specs {
		t.Run(string(s.Type), func(t *testing.T) {
			fn, err := ForType(s.Type)
			if err != nil {
				t.Fatal(err)
			}
			a, errA := fn(s)
			b, errB := fn(s)
			if errA != nil || errB != nil {
				t.Fatalf("errors: %v, %v", errA, errB)
			}
			if !reflect.DeepEqual(a, b) {
				t.Error("two renders of the same spec differ")
			}
		})
	}
}

func TestForTypeUnknown(t *testing.T) {
	if _, err := ForType("radar"); err == nil {
		t.Error("ForType(radar) succeeded")
	}
}

func TestDegenerateRangeErrorMessage(t *testing.T) {
	err := degenerate(models.ChartPie, "sum(ys) == 0")
	if got := err.Error(); got != "pie chart: degenerate value range: sum(ys) == 0" {
		t.Errorf("Error() = %q", got)
	}
}
