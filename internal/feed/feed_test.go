package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/seenimoa/graphawesome/internal/chart"
	"github.com/seenimoa/graphawesome/internal/config"
	"github.com/seenimoa/graphawesome/internal/document"
	"github.com/seenimoa/graphawesome/internal/markup"
)

const rss = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Quarterly numbers</title>
  <link>http://example.com/</link>
  <item>
    <title>Sales by region</title>
    <link>http://example.com/sales</link>
    <pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate>
    <description>&lt;p&gt;Sales&lt;/p&gt;&lt;div class="ga-pie ga-ys-1-2-3"&gt;&lt;/div&gt;</description>
  </item>
  <item>
    <title>Plain post</title>
    <link>http://example.com/plain</link>
    <description>no charts here</description>
  </item>
</channel>
</rss>`

func testFetcher() *Fetcher {
	cfg := config.Default().Feed
	cfg.RequestsPerSec = 0
	return New(document.New(chart.New(), markup.DefaultParser), cfg, nil)
}

func feedServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/rss", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(rss)) //nolint:errcheck
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch(t *testing.T) {
	srv := feedServer(t)

	res, err := testFetcher().Fetch(context.Background(), srv.URL+"/rss")
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if res.Title != "Quarterly numbers" {
		t.Errorf("Title = %q", res.Title)
	}
	if len(res.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(res.Items))
	}

	sales := res.Items[0]
	if sales.Charts.Rendered != 1 {
		t.Errorf("sales item charts = %+v", sales.Charts)
	}
	if !strings.Contains(sales.HTML, `class="pie-chart"`) {
		t.Errorf("sales item not rendered: %q", sales.HTML)
	}
	if sales.Published == nil || sales.Published.Year() != 2006 {
		t.Errorf("Published = %v", sales.Published)
	}

	if plain := res.Items[1]; plain.HTML != "no charts here" || plain.Charts.Found != 0 {
		t.Errorf("plain item = %+v", plain)
	}
}

func TestFetchAllPartialFailure(t *testing.T) {
	srv := feedServer(t)

	results, err := testFetcher().FetchAll(context.Background(), []string{srv.URL + "/missing", srv.URL + "/rss"})
	if err != nil {
		t.Fatalf("FetchAll error: %v", err)
	}
	if len(results) != 1 || results[0].URL != srv.URL+"/rss" {
		t.Errorf("results = %+v", results)
	}
}

func TestFetchAllFailure(t *testing.T) {
	srv := feedServer(t)

	_, err := testFetcher().FetchAll(context.Background(), []string{srv.URL + "/missing"})
	if err == nil || !strings.Contains(err.Error(), "all feeds failed") {
		t.Errorf("FetchAll error = %v", err)
	}
}
