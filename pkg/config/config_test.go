package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults do not validate: %v", err)
	}
	if cfg.Layout.RadiusFactor != 0.32 {
		t.Errorf("radius_factor = %g, want 0.32", cfg.Layout.RadiusFactor)
	}
	if cfg.Viewport.MinZoom != 0.2 || cfg.Viewport.MaxZoom != 1.8 {
		t.Errorf("zoom range = [%g, %g]", cfg.Viewport.MinZoom, cfg.Viewport.MaxZoom)
	}
	if cfg.Viewer.ResizeDebounce != 250*time.Millisecond {
		t.Errorf("resize_debounce = %v", cfg.Viewer.ResizeDebounce)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err != nil {
		t.Fatalf("missing file should return defaults, got %v", err)
	}
	if cfg.Server.Port != 8090 {
		t.Errorf("port = %d, want 8090", cfg.Server.Port)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hubspoke.yaml")
	data := `layout:
  radius_factor: 0.4
viewer:
  resize_debounce: 100ms
server:
  port: 9000
log:
  format: json
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Layout.RadiusFactor != 0.4 {
		t.Errorf("radius_factor = %g", cfg.Layout.RadiusFactor)
	}
	if cfg.Layout.Padding != 20 {
		t.Errorf("unset keys should keep defaults, padding = %g", cfg.Layout.Padding)
	}
	if cfg.Viewer.ResizeDebounce != 100*time.Millisecond {
		t.Errorf("resize_debounce = %v", cfg.Viewer.ResizeDebounce)
	}
	if cfg.Server.Port != 9000 || cfg.Log.Format != "json" {
		t.Errorf("server.port = %d, log.format = %q", cfg.Server.Port, cfg.Log.Format)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HUBSPOKE_SERVER__PORT", "9191")
	t.Setenv("HUBSPOKE_VIEWPORT__MAX_ZOOM", "2.5")
	t.Setenv("HUBSPOKE_LOG__LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 9191 {
		t.Errorf("port = %d, want 9191", cfg.Server.Port)
	}
	if cfg.Viewport.MaxZoom != 2.5 {
		t.Errorf("max_zoom = %g, want 2.5", cfg.Viewport.MaxZoom)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log.level = %q", cfg.Log.Level)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	original := DefaultConfig()
	original.Measure.MaxWidth = 280
	original.Server.AllowAllOrigins = true
	if err := original.Save(path); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Measure.MaxWidth != 280 || !loaded.Server.AllowAllOrigins {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero radius factor", func(c *Config) { c.Layout.RadiusFactor = 0 }},
		{"inverted zoom", func(c *Config) { c.Viewport.MinZoom, c.Viewport.MaxZoom = 2, 1 }},
		{"zero zoom step", func(c *Config) { c.Viewport.ZoomStep = 0 }},
		{"zero max width", func(c *Config) { c.Measure.MaxWidth = 0 }},
		{"bad viewer size", func(c *Config) { c.Viewer.Width = 0 }},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }},
		{"bad level", func(c *Config) { c.Log.Level = "chatty" }},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestOptionConversions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Layout.ParentInset = 30
	cfg.Measure.TitleSize = 20
	if got := cfg.LayoutOptions().ParentInset; got != 30 {
		t.Errorf("ParentInset = %g", got)
	}
	if got := cfg.Typography().TitleSize; got != 20 {
		t.Errorf("TitleSize = %g", got)
	}
	if got := cfg.ViewportOptions().ZoomStep; got != 0.2 {
		t.Errorf("ZoomStep = %g", got)
	}
	if got := cfg.Addr(); got != "127.0.0.1:8090" {
		t.Errorf("Addr = %q", got)
	}
}
