// Package feed fetches RSS and Atom feeds and renders the chart markers found
// in their item bodies.
package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/graphawesome/internal/config"
	"github.com/seenimoa/graphawesome/internal/document"
	"github.com/seenimoa/graphawesome/internal/infra"
	"github.com/seenimoa/graphawesome/internal/logging"
)

// Item is one feed entry with its body rendered.
type Item struct {
	Title     string         `json:"title"`
	Link      string         `json:"link"`
	Published *time.Time     `json:"published,omitempty"`
	HTML      string         `json:"html"`
	Charts    document.Stats `json:"charts"`
}

// Result is one fetched feed.
type Result struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Items []Item `json:"items"`
}

// Fetcher downloads feeds politely and renders their markers.
type Fetcher struct {
	parser   *gofeed.Parser
	limiter  *infra.RateLimiter
	pipeline *document.Pipeline
	timeout  time.Duration
	logger   *slog.Logger
}

// New creates a fetcher that renders item bodies with pipeline.
func New(pipeline *document.Pipeline, cfg config.FeedConfig, logger *slog.Logger) *Fetcher {
	parser := gofeed.NewParser()
	parser.UserAgent = cfg.UserAgent
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	parser.Client = &http.Client{Timeout: timeout}

	return &Fetcher{
		parser:   parser,
		limiter:  infra.NewRateLimiter(cfg.RequestsPerSec, 1),
		pipeline: pipeline,
		timeout:  timeout,
		logger:   logging.OrNop(logger),
	}
}

// Fetch downloads one feed and renders every item body. Items without
// markers are returned unchanged.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Result, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	parsed, err := f.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", url, err)
	}

	res := &Result{URL: url, Title: parsed.Title, Items: make([]Item, 0, len(parsed.Items))}
	for _, it := range parsed.Items {
		body := it.Content
		if body == "" {
			body = it.Description
		}
		out, stats, err := f.pipeline.RenderFragment(ctx, body)
		if err != nil {
			return nil, fmt.Errorf("render feed item %q: %w", it.Title, err)
		}
		res.Items = append(res.Items, Item{
			Title:     it.Title,
			Link:      it.Link,
			Published: it.PublishedParsed,
			HTML:      out,
			Charts:    stats,
		})
	}

	f.logger.Debug("feed fetched", "url", url, "items", len(res.Items))
	return res, nil
}

// FetchAll fetches feeds concurrently. Results keep the order of urls and
// skip feeds that failed; an error is returned only when every feed failed.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string) ([]*Result, error) {
	var (
		mu   sync.Mutex
		errs []error
	)
	results := make([]*Result, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	for i, url := range urls {
		i, url := i, url
		g.Go(func() error {
			res, err := f.Fetch(gctx, url)
			if err != nil {
				f.logger.Warn("feed fetch failed", "url", url, "error", err)
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return nil // non-fatal
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]*Result, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, r)
		}
	}
	if len(out) == 0 && len(errs) > 0 {
		return nil, fmt.Errorf("all feeds failed: %w", errors.Join(errs...))
	}
	return out, nil
}
