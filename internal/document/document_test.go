package document

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/seenimoa/graphawesome/internal/chart"
	"github.com/seenimoa/graphawesome/internal/infra"
	"github.com/seenimoa/graphawesome/internal/markup"
)

func newPipeline(opts ...Option) *Pipeline {
	return New(chart.New(), markup.DefaultParser, opts...)
}

func render(t *testing.T, p *Pipeline, in string) (string, Stats) {
	t.Helper()
	var out bytes.Buffer
	stats, err := p.RenderHTML(context.Background(), strings.NewReader(in), "text/html; charset=utf-8", &out)
	if err != nil {
		t.Fatalf("RenderHTML error: %v", err)
	}
	return out.String(), stats
}

func TestRenderHTMLReplacesMarkers(t *testing.T) {
	in := `<html><body>
<p>intro</p>
<div class="card ga-pie ga-s ga-legend ga-xs-a-b-c ga-ys-1-2-3"></div>
<span class="ga-line ga-ys-1-3-2"></span>
</body></html>`

	out, stats := render(t, newPipeline(), in)

	if stats.Found != 2 || stats.Rendered != 2 || stats.Failed != 0 {
		t.Errorf("stats = %+v, want 2 found and rendered", stats)
	}
	checks := []string{
		`<svg class="ga-rendered card"`,
		`class="pie-chart"`,
		`class="line-chart"`,
		`class="ga-rendered ga-legend-rendered"`,
		`<p>intro</p>`,
	}
	for _, c := range checks {
		if !strings.Contains(out, c) {
			t.Errorf("output missing %q", c)
		}
	}
	if strings.Contains(out, "ga-pie") || strings.Contains(out, "ga-line") {
		t.Error("chart type tokens survived the replacement")
	}

	// the legend follows its chart
	if strings.Index(out, `class="pie-chart"`) > strings.Index(out, LegendClass) {
		t.Error("legend inserted before the chart")
	}
}

func TestRenderHTMLIdempotent(t *testing.T) {
	p := newPipeline()
	first, _ := render(t, p, `<div class="ga-bar ga-ys-1-2-3 ga-legend"></div><i class="ga-bar ga-ys-0"></i>`)
	second, stats := render(t, p, first)

	if stats.Found != 0 {
		t.Errorf("second pass found %d markers, want 0", stats.Found)
	}
	if first != second {
		t.Error("second pass changed the document")
	}
}

func TestRenderHTMLFailureTagged(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	p := newPipeline(WithLogger(logger))

	out, stats := render(t, p, `<div class="ga-bar ga-ys-0-0"></div><div class="ga-pie ga-ys-1"></div>`)

	if stats.Failed != 1 || stats.Rendered != 1 {
		t.Errorf("stats = %+v, want one failure and one render", stats)
	}
	if !strings.Contains(out, `data-ga-error="render bar chart: bar chart: degenerate value range`) {
		t.Errorf("failed marker not tagged:\n%s", out)
	}
	if !strings.Contains(out, `class="pie-chart"`) {
		t.Error("healthy marker was not rendered next to a failing one")
	}
	if !strings.Contains(logs.String(), "chart marker failed") {
		t.Error("failure was not logged")
	}
}

func TestRenderHTMLIgnoresNonMarkers(t *testing.T) {
	in := `<div class="ga-legend ga-ys-1-2">x</div><div class="plain">y</div>`
	out, stats := render(t, newPipeline(), in)
	if stats.Found != 0 {
		t.Errorf("found %d markers, want 0", stats.Found)
	}
	if !strings.Contains(out, `<div class="ga-legend ga-ys-1-2">x</div>`) {
		t.Error("non-marker element was modified")
	}
}

func TestRenderHTMLEmptyBox(t *testing.T) {
	out, stats := render(t, newPipeline(), `<div class="note ga-box"></div>`)
	if stats.Rendered != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if !strings.Contains(out, `<div class="note ga-rendered"></div>`) {
		t.Errorf("empty box plot not marked rendered:\n%s", out)
	}
}

func TestRenderHTMLCharset(t *testing.T) {
	// "café" in ISO-8859-1
	in := []byte("<p>caf\xe9</p><div class=\"ga-bar ga-ys-1\"></div>")
	var out bytes.Buffer
	_, err := newPipeline().RenderHTML(context.Background(), bytes.NewReader(in), "text/html; charset=iso-8859-1", &out)
	if err != nil {
		t.Fatalf("RenderHTML error: %v", err)
	}
	if !strings.Contains(out.String(), "café") {
		t.Errorf("input not decoded as latin-1: %q", out.String())
	}
}

func TestRenderFragment(t *testing.T) {
	p := newPipeline()

	out, stats, err := p.RenderFragment(context.Background(), `<p>sales</p><div class="ga-donut ga-ys-2-2"></div>`)
	if err != nil {
		t.Fatalf("RenderFragment error: %v", err)
	}
	if stats.Rendered != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if strings.Contains(out, "<body>") || !strings.HasPrefix(out, "<p>sales</p>") {
		t.Errorf("fragment not returned as body content: %q", out)
	}
	if !strings.Contains(out, `class="donut-chart"`) {
		t.Error("fragment marker not rendered")
	}

	plain := "<b>no charts</b>"
	got, _, err := p.RenderFragment(context.Background(), plain)
	if err != nil || got != plain {
		t.Errorf("RenderFragment(plain) = %q, %v", got, err)
	}
}

func TestProcessUsesCache(t *testing.T) {
	cache := infra.NewCache[Fragment](time.Minute, 0)
	p := newPipeline(WithCache(cache), WithWorkers(1))

	// token order differs, the resolved spec does not
	render(t, p, `<div class="ga-pie ga-ys-1-2"></div><div class="ga-ys-1-2 ga-pie"></div>`)

	s := cache.Stats()
	if s.Entries != 1 || s.Hits != 1 {
		t.Errorf("cache stats = %+v, want 1 entry and 1 hit", s)
	}
}

func TestProcessCancelled(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<div class="ga-bar ga-ys-1"></div>`))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := newPipeline().Process(ctx, doc); err == nil {
		t.Error("Process should fail on a cancelled context")
	}
	if doc.Find(".ga-bar").Length() != 1 {
		t.Error("cancelled pass modified the document")
	}
}
