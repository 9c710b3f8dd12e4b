// Package api: configuration and cache endpoints.
package api

import (
	"net/http"

	"github.com/seenimoa/graphawesome/internal/config"
	"github.com/seenimoa/graphawesome/internal/infra"
)

// ConfigResponse is the JSON envelope returned by GET /api/v1/config.
type ConfigResponse struct {
	Config *config.Config `json:"config"`
}

// handleGetConfig returns the running configuration. Nothing in it is secret.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    ConfigResponse{Config: s.cfg},
	})
}

// handleCacheStats reports the rendered-image and fragment cache usage.
func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]infra.CacheStats{
			"images":    s.cache.Stats(),
			"fragments": s.fragments.Stats(),
		},
	})
}

// handleFlushCache drops one cached image when ?key= is given (the value of
// the X-Cache-Key response header) and every cached image and fragment
// otherwise.
func (s *Server) handleFlushCache(w http.ResponseWriter, r *http.Request) {
	if key := r.URL.Query().Get("key"); key != "" {
		s.cache.Invalidate(key)
		writeJSON(w, http.StatusOK, APIResponse{
			Success: true,
			Data:    map[string]string{"status": "invalidated", "key": key},
		})
		return
	}
	s.cache.Flush()
	s.fragments.Flush()
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    map[string]string{"status": "flushed"},
	})
}
