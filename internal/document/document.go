// Package document finds chart markers in HTML and replaces them with
// inline SVG charts.
//
// A marker is any element whose class list selects a chart (see package
// markup). Each marker is rendered independently: a failure is logged,
// recorded on the element and never stops the rest of the document.
package document

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/graphawesome/internal/chart"
	"github.com/seenimoa/graphawesome/internal/infra"
	"github.com/seenimoa/graphawesome/internal/logging"
	"github.com/seenimoa/graphawesome/internal/markup"
	"github.com/seenimoa/graphawesome/internal/scene"
)

// Markers left behind by a pass. The scanner skips elements carrying either,
// so running the pipeline twice is a no-op.
const (
	RenderedClass = "ga-rendered"
	LegendClass   = "ga-legend-rendered"
	ErrorAttr     = "data-ga-error"
)

// Stats summarises one pass over a document.
type Stats struct {
	Found    int `json:"found"`
	Rendered int `json:"rendered"`
	Failed   int `json:"failed"`
}

// Fragment is the inline markup produced for one marker. Chart is empty when
// the marker drew nothing; Legend is empty when there is no legend.
type Fragment struct {
	Chart  string
	Legend string
}

// Pipeline renders every marker of a document.
type Pipeline struct {
	renderer *chart.Renderer
	parser   markup.Parser
	workers  int
	logger   *slog.Logger
	cache    *infra.Cache[Fragment]
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithWorkers bounds the number of concurrent renders.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithLogger sets the logger failures are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = logging.OrNop(l) }
}

// WithCache reuses fragments across markers that resolve to the same spec.
func WithCache(c *infra.Cache[Fragment]) Option {
	return func(p *Pipeline) { p.cache = c }
}

// New creates a pipeline rendering with r and reading markers with parser.
func New(r *chart.Renderer, parser markup.Parser, opts ...Option) *Pipeline {
	if r == nil {
		r = chart.New()
	}
	p := &Pipeline{
		renderer: r,
		parser:   parser,
		workers:  4,
		logger:   logging.Nop(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// target is one marker found by the scan.
type target struct {
	sel     *goquery.Selection
	classes []string
	frag    Fragment
	err     error
}

// Process renders every marker of doc in place.
// Only cancellation of ctx is returned as an error; per-marker failures are
// counted in Stats and tagged on the element with ErrorAttr.
func (p *Pipeline) Process(ctx context.Context, doc *goquery.Document) (Stats, error) {
	targets := scan(doc)
	stats := Stats{Found: len(targets)}
	if len(targets) == 0 {
		return stats, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for _, t := range targets {
		t := t
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			t.frag, t.err = p.Fragment(t.classes)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stats, err
	}

	// goquery mutations are not safe for concurrent use
	for _, t := range targets {
		if t.err != nil {
			stats.Failed++
			p.logger.Warn("chart marker failed",
				"class", strings.Join(t.classes, " "),
				"error", t.err,
			)
			t.sel.SetAttr(ErrorAttr, t.err.Error())
			continue
		}
		stats.Rendered++
		apply(t)
	}

	p.logger.Debug("document processed",
		"found", stats.Found,
		"rendered", stats.Rendered,
		"failed", stats.Failed,
	)
	return stats, nil
}

// Fragment renders one class list to inline markup.
func (p *Pipeline) Fragment(classes []string) (Fragment, error) {
	spec, err := p.parser.Parse(classes)
	if err != nil {
		return Fragment{}, err
	}

	key := chart.Key(spec) + "|" + strings.Join(keep(classes), " ")
	if p.cache != nil {
		if f, ok := p.cache.Get(key); ok {
			return f, nil
		}
	}

	res, err := p.renderer.Render(spec)
	if err != nil {
		return Fragment{}, err
	}

	var f Fragment
	if !res.Empty() {
		cls := strings.Join(append([]string{RenderedClass}, keep(classes)...), " ")
		if f.Chart, err = scene.Inline(res.Chart, cls); err != nil {
			return Fragment{}, fmt.Errorf("write %s chart: %w", spec.Type, err)
		}
	}
	if res.Legend != nil {
		if f.Legend, err = scene.Inline(res.Legend, RenderedClass+" "+LegendClass); err != nil {
			return Fragment{}, fmt.Errorf("write %s legend: %w", spec.Type, err)
		}
	}

	if p.cache != nil {
		p.cache.Set(key, f)
	}
	return f, nil
}

// RenderHTML reads a full HTML document from r, renders its markers and
// writes the result to w as UTF-8. contentType is the Content-Type the
// input arrived with and may be empty; it selects the input charset.
func (p *Pipeline) RenderHTML(ctx context.Context, r io.Reader, contentType string, w io.Writer) (Stats, error) {
	utf8, err := charset.NewReader(r, contentType)
	if err != nil {
		return Stats{}, fmt.Errorf("detect charset: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(utf8)
	if err != nil {
		return Stats{}, fmt.Errorf("parse html: %w", err)
	}

	stats, err := p.Process(ctx, doc)
	if err != nil {
		return stats, err
	}

	out, err := doc.Html()
	if err != nil {
		return stats, fmt.Errorf("serialize html: %w", err)
	}
	if _, err := io.WriteString(w, out); err != nil {
		return stats, err
	}
	return stats, nil
}

// RenderFragment renders the markers of an HTML fragment, such as a feed item
// body, and returns the rewritten fragment.
func (p *Pipeline) RenderFragment(ctx context.Context, fragment string) (string, Stats, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", Stats{}, fmt.Errorf("parse html: %w", err)
	}
	stats, err := p.Process(ctx, doc)
	if err != nil {
		return "", stats, err
	}
	if stats.Found == 0 {
		return fragment, stats, nil
	}
	out, err := doc.Find("body").Html()
	if err != nil {
		return "", stats, fmt.Errorf("serialize html: %w", err)
	}
	return out, stats, nil
}

// scan collects the marker elements of doc in document order.
func scan(doc *goquery.Document) []*target {
	var targets []*target
	doc.Find("[class]").Each(func(_ int, sel *goquery.Selection) {
		if sel.HasClass(RenderedClass) {
			return
		}
		if _, failed := sel.Attr(ErrorAttr); failed {
			return
		}
		classes := strings.Fields(sel.AttrOr("class", ""))
		if !markup.HasMarker(classes) {
			return
		}
		targets = append(targets, &target{sel: sel, classes: classes})
	})
	return targets
}

// apply swaps a rendered marker for its fragment. A marker that drew nothing
// stays in place with its chart tokens replaced by RenderedClass.
func apply(t *target) {
	if t.frag.Chart == "" {
		t.sel.SetAttr("class", strings.Join(append(keep(t.classes), RenderedClass), " "))
		return
	}
	if t.frag.Legend != "" {
		t.sel.AfterHtml(t.frag.Legend)
	}
	t.sel.ReplaceWithHtml(t.frag.Chart)
}

// keep returns the classes that are not marker tokens.
func keep(classes []string) []string {
	var out []string
	for _, c := range classes {
		if !strings.HasPrefix(c, markup.Prefix) {
			out = append(out, c)
		}
	}
	return out
}
