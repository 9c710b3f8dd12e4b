package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ── Load / Defaults ──

func TestLoadReturnsDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	// Render defaults
	if cfg.Render.DefaultSize != 256 {
		t.Errorf("Render.DefaultSize: got %d, want 256", cfg.Render.DefaultSize)
	}
	if cfg.Render.MarginRatio != 0.1 {
		t.Errorf("Render.MarginRatio: got %f, want 0.1", cfg.Render.MarginRatio)
	}
	if cfg.Render.LegendItemRatio != 0.1 {
		t.Errorf("Render.LegendItemRatio: got %f, want 0.1", cfg.Render.LegendItemRatio)
	}
	if cfg.Render.LegendPaddingRatio != 0.05 {
		t.Errorf("Render.LegendPaddingRatio: got %f, want 0.05", cfg.Render.LegendPaddingRatio)
	}
	if cfg.Render.Workers != 4 {
		t.Errorf("Render.Workers: got %d, want 4", cfg.Render.Workers)
	}
	if cfg.Render.Measurer != "char" {
		t.Errorf("Render.Measurer: got %q, want %q", cfg.Render.Measurer, "char")
	}

	// API defaults
	if cfg.API.Host != "0.0.0.0" {
		t.Errorf("API.Host: got %q, want %q", cfg.API.Host, "0.0.0.0")
	}
	if cfg.API.Port != 8080 {
		t.Errorf("API.Port: got %d, want 8080", cfg.API.Port)
	}
	if cfg.API.CacheTTL != 300 {
		t.Errorf("API.CacheTTL: got %d, want 300", cfg.API.CacheTTL)
	}

	// Feed defaults
	if cfg.Feed.TimeoutSec != 15 {
		t.Errorf("Feed.TimeoutSec: got %d, want 15", cfg.Feed.TimeoutSec)
	}
	if cfg.Feed.RequestsPerSec != 2 {
		t.Errorf("Feed.RequestsPerSec: got %f, want 2", cfg.Feed.RequestsPerSec)
	}

	// Logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level: got %q, want %q", cfg.Logging.Level, "info")
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Logging.Format: got %q, want %q", cfg.Logging.Format, "text")
	}
}

func TestDefaultMatchesLoad(t *testing.T) {
	cfg := Default()
	if cfg.Render.DefaultSize != 256 || cfg.API.Port != 8080 {
		t.Errorf("Default() = %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default() does not validate: %v", err)
	}
}

// ── LoadFromFile ──

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")

	content := []byte(`
render:
  default_size: 512
  workers: 8
  measurer: font
api:
  port: 9090
  cors_origins:
    - "http://example.com"
logging:
  level: debug
  format: json
`)
	if err := os.WriteFile(cfgPath, content, 0644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := LoadFromFile(cfgPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}

	if cfg.Render.DefaultSize != 512 {
		t.Errorf("Render.DefaultSize: got %d, want 512", cfg.Render.DefaultSize)
	}
	if cfg.Render.Workers != 8 {
		t.Errorf("Render.Workers: got %d, want 8", cfg.Render.Workers)
	}
	if cfg.Render.Measurer != "font" {
		t.Errorf("Render.Measurer: got %q, want %q", cfg.Render.Measurer, "font")
	}
	if cfg.API.Port != 9090 {
		t.Errorf("API.Port: got %d, want 9090", cfg.API.Port)
	}
	if len(cfg.API.CORSOrigins) != 1 || cfg.API.CORSOrigins[0] != "http://example.com" {
		t.Errorf("API.CORSOrigins: got %v", cfg.API.CORSOrigins)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging: got %+v", cfg.Logging)
	}

	// Defaults should still apply for unset values
	if cfg.Render.MarginRatio != 0.1 {
		t.Errorf("Render.MarginRatio should keep default 0.1, got %f", cfg.Render.MarginRatio)
	}
	if cfg.Feed.TimeoutSec != 15 {
		t.Errorf("Feed.TimeoutSec should keep default 15, got %d", cfg.Feed.TimeoutSec)
	}
}

func TestLoadFromFileNotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error for nonexistent config file")
	}
}

func TestLoadFromFileInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"zero size", "render:\n  default_size: 0\n", "default_size"},
		{"huge margin", "render:\n  margin_ratio: 0.5\n", "margin_ratio"},
		{"no workers", "render:\n  workers: 0\n", "workers"},
		{"bad measurer", "render:\n  measurer: browser\n", "measurer"},
		{"bad log format", "logging:\n  format: xml\n", "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfgPath := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(cfgPath, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := LoadFromFile(cfgPath)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

// ── Environment overrides ──

func TestEnvOverride(t *testing.T) {
	t.Setenv("GAWESOME_API_PORT", "7070")
	t.Setenv("GAWESOME_RENDER_WORKERS", "2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.API.Port != 7070 {
		t.Errorf("API.Port: got %d, want 7070", cfg.API.Port)
	}
	if cfg.Render.Workers != 2 {
		t.Errorf("Render.Workers: got %d, want 2", cfg.Render.Workers)
	}
}

func TestHomeDirReturnsNonEmpty(t *testing.T) {
	if homeDir() == "" {
		t.Error("homeDir() returned empty string")
	}
}
