// Package api provides the HTTP API server for graphawesome.
//
// It renders chart markers to SVG and PNG, rewrites posted HTML documents,
// and streams renders over WebSocket.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/seenimoa/graphawesome/internal/chart"
	"github.com/seenimoa/graphawesome/internal/config"
	"github.com/seenimoa/graphawesome/internal/document"
	"github.com/seenimoa/graphawesome/internal/geometry"
	"github.com/seenimoa/graphawesome/internal/infra"
	"github.com/seenimoa/graphawesome/internal/logging"
	"github.com/seenimoa/graphawesome/internal/markup"
	"github.com/seenimoa/graphawesome/internal/scene"
	"github.com/seenimoa/graphawesome/pkg/models"
	"github.com/seenimoa/graphawesome/web"
)

// Version is reported by /health. Set at build time via -ldflags.
var Version = "dev"

const (
	maxDocumentBytes = 8 << 20
	maxPNGScale      = 8
	cacheEntries     = 1024
)

// Server is the HTTP API server.
type Server struct {
	router    chi.Router
	cfg       *config.Config
	renderer  *chart.Renderer
	parser    markup.Parser
	pipeline  *document.Pipeline
	cache     *infra.Cache[[]byte]
	fragments *infra.Cache[document.Fragment]
	logger    *slog.Logger
	wsHub     *WSHub
	serveUI   bool // when true, serve the embedded demo page at /
	started   time.Time
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	logger = logging.OrNop(logger)

	renderer, err := chart.NewFromConfig(cfg.Render, logger)
	if err != nil {
		return nil, fmt.Errorf("renderer setup failed: %w", err)
	}
	parser := markup.Parser{DefaultSize: cfg.Render.DefaultSize, MarginRatio: cfg.Render.MarginRatio}
	ttl := time.Duration(cfg.API.CacheTTL) * time.Second
	fragments := infra.NewCache[document.Fragment](ttl, cacheEntries)

	srv := &Server{
		cfg:      cfg,
		renderer: renderer,
		parser:   parser,
		pipeline: document.New(renderer, parser,
			document.WithWorkers(cfg.Render.Workers),
			document.WithLogger(logger),
			document.WithCache(fragments),
		),
		cache:     infra.NewCache[[]byte](ttl, cacheEntries),
		fragments: fragments,
		logger:    logger,
		wsHub:     NewWSHub(),
		serveUI:   true,
		started:   time.Now(),
	}

	srv.router = srv.buildRouter()
	return srv, nil
}

// SetServeUI controls whether the embedded demo page is served.
// Must be called before ListenAndServe.
func (s *Server) SetServeUI(enabled bool) {
	s.serveUI = enabled
	s.router = s.buildRouter()
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server with graceful shutdown.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	bg, stop := context.WithCancel(context.Background())
	defer stop()
	go s.wsHub.Run(bg)
	go s.sweepCache(bg)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	errc := make(chan error, 1)
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("http server: %w", err)
	case <-done:
	}
	s.logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return httpSrv.Shutdown(ctx)
}

// sweepCache drops expired renders and fragments once per TTL until ctx
// is done.
func (s *Server) sweepCache(ctx context.Context) {
	every := time.Duration(s.cfg.API.CacheTTL) * time.Second
	if every <= 0 {
		every = time.Minute
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cache.Cleanup()
			s.fragments.Cleanup()
		}
	}
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "X-Cache-Key", "X-Charts-Found", "X-Charts-Rendered", "X-Charts-Failed"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/types", s.handleTypes)

		// Charts
		r.Get("/chart.svg", s.handleChartSVG)
		r.Get("/chart.png", s.handleChartPNG)
		r.Post("/spec", s.handleSpec)
		r.Post("/render", s.handleRender)

		// Configuration and cache
		r.Get("/config", s.handleGetConfig)
		r.Get("/cache", s.handleCacheStats)
		r.Delete("/cache", s.handleFlushCache)

		r.Get("/ws", s.handleWebSocket)
	})
	r.Get("/ws", s.handleWebSocket)

	if s.serveUI {
		s.mountUI(r, web.StaticFS())
	}

	return r
}

// mountUI serves the embedded demo page and its assets.
func (s *Server) mountUI(r chi.Router, static fs.FS) {
	fileServer := http.FileServer(http.FS(static))

	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		rPath := strings.TrimPrefix(r.URL.Path, "/")
		if rPath == "" {
			rPath = "index.html"
		}
		f, err := static.Open(rPath)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		f.Close()

		if strings.HasSuffix(rPath, ".html") {
			w.Header().Set("Cache-Control", "no-cache")
		}
		fileServer.ServeHTTP(w, r)
	})
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// SpecRequest is the body for POST /api/v1/spec.
type SpecRequest struct {
	Class string `json:"class"`
}

// SpecResponse describes one rendered marker.
type SpecResponse struct {
	Spec   models.ChartSpec `json:"spec"`
	SVG    string           `json:"svg,omitempty"`
	Legend string           `json:"legend,omitempty"`
	Empty  bool             `json:"empty,omitempty"`
}

// TypeInfo describes one chart type for GET /api/v1/types.
type TypeInfo struct {
	Type   models.ChartType `json:"type"`
	Token  string           `json:"token"`
	Legend bool             `json:"legend"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":     "ok",
			"version":    Version,
			"uptime_sec": int(time.Since(s.started).Seconds()),
			"ws_clients": s.wsHub.ClientCount(),
		},
	})
}

func (s *Server) handleTypes(w http.ResponseWriter, r *http.Request) {
	types := make([]TypeInfo, 0, len(models.AllChartTypes()))
	for _, t := range models.AllChartTypes() {
		types = append(types, TypeInfo{Type: t, Token: markup.Prefix + string(t), Legend: t.SupportsLegend()})
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"types": types,
			"sizes": markup.Sizes,
		},
	})
}

// handleChartSVG renders ?class= as a standalone SVG with the legend, if
// any, stacked below the chart.
func (s *Server) handleChartSVG(w http.ResponseWriter, r *http.Request) {
	spec, err := s.parser.Parse(strings.Fields(r.URL.Query().Get("class")))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	key := "svg|" + chart.Key(spec)
	w.Header().Set("X-Cache-Key", key)
	if data, ok := s.cache.Get(key); ok {
		writeImage(w, "image/svg+xml", data)
		return
	}

	root, err := s.stacked(spec)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	data, err := scene.SVG(root)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.cache.Set(key, data)
	writeImage(w, "image/svg+xml", data)
}

// handleChartPNG rasterizes ?class= at ?scale= (default 1, at most 8). The
// scaled canvas must also fit within scene.MaxPixels.
func (s *Server) handleChartPNG(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	spec, err := s.parser.Parse(strings.Fields(q.Get("class")))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	scale := 1.0
	if v := q.Get("scale"); v != "" {
		scale, err = strconv.ParseFloat(v, 64)
		if err != nil || !(scale > 0) || scale > maxPNGScale {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("scale must be in (0, %d]", maxPNGScale))
			return
		}
	}

	key := "png|" + strconv.FormatFloat(scale, 'g', -1, 64) + "|" + chart.Key(spec)
	w.Header().Set("X-Cache-Key", key)
	if data, ok := s.cache.Get(key); ok {
		writeImage(w, "image/png", data)
		return
	}

	root, err := s.stacked(spec)
	if err == nil {
		err = scene.CheckCanvas(root, scale)
	}
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	var buf bytes.Buffer
	if err := scene.WritePNG(&buf, root, scene.RasterOptions{Scale: scale, Fonts: s.renderer.Fonts()}); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	s.cache.Set(key, buf.Bytes())
	writeImage(w, "image/png", buf.Bytes())
}

func (s *Server) handleSpec(w http.ResponseWriter, r *http.Request) {
	var req SpecRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Class) == "" {
		writeError(w, http.StatusBadRequest, "class is required")
		return
	}

	resp, err := s.renderSpec(req.Class)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: resp})
}

// handleRender rewrites a posted HTML document. Per-marker failures do not
// fail the request; they are tagged in the output and counted in headers.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxDocumentBytes)

	var out bytes.Buffer
	stats, err := s.pipeline.RenderHTML(r.Context(), body, r.Header.Get("Content-Type"), &out)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "document too large")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.wsHub.Broadcast(WSMessage{Type: "document", Data: stats})

	h := w.Header()
	h.Set("Content-Type", "text/html; charset=utf-8")
	h.Set("X-Charts-Found", strconv.Itoa(stats.Found))
	h.Set("X-Charts-Rendered", strconv.Itoa(stats.Rendered))
	h.Set("X-Charts-Failed", strconv.Itoa(stats.Failed))
	w.WriteHeader(http.StatusOK)
	io.Copy(w, &out) //nolint:errcheck
}

// ============================================================
// Helpers
// ============================================================

// stacked renders spec and places its legend under the chart.
func (s *Server) stacked(spec models.ChartSpec) (*models.Group, error) {
	res, err := s.renderer.Render(spec)
	if err != nil {
		return nil, err
	}
	return res.Root(), nil
}

// renderSpec parses and renders one class list to inline markup.
func (s *Server) renderSpec(class string) (SpecResponse, error) {
	classes := strings.Fields(class)
	spec, err := s.parser.Parse(classes)
	if err != nil {
		return SpecResponse{}, err
	}
	frag, err := s.pipeline.Fragment(classes)
	if err != nil {
		return SpecResponse{}, err
	}
	return SpecResponse{Spec: spec, SVG: frag.Chart, Legend: frag.Legend, Empty: frag.Chart == ""}, nil
}

// statusFor maps render errors to HTTP status codes.
func statusFor(err error) int {
	var invalid *models.InvalidSpecError
	switch {
	case errors.Is(err, markup.ErrNoMarker), errors.As(err, &invalid), errors.Is(err, scene.ErrCanvasTooLarge):
		return http.StatusBadRequest
	case errors.Is(err, geometry.ErrDegenerateRange):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{Success: false, Error: msg})
}

func writeImage(w http.ResponseWriter, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck
}
