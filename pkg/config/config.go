// Package config loads hubspoke settings from defaults, an optional YAML
// file and HUBSPOKE_* environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/ha1tch/hubspoke/pkg/layout"
	"github.com/ha1tch/hubspoke/pkg/logging"
	"github.com/ha1tch/hubspoke/pkg/measure"
	"github.com/ha1tch/hubspoke/pkg/viewport"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "hubspoke.yaml"

// EnvPrefix prefixes environment overrides. Sections are separated by a
// double underscore: HUBSPOKE_SERVER__PORT sets server.port.
const EnvPrefix = "HUBSPOKE_"

// Config is the top-level configuration, corresponding to hubspoke.yaml.
type Config struct {
	Layout   LayoutConfig   `yaml:"layout" koanf:"layout"`
	Viewport ViewportConfig `yaml:"viewport" koanf:"viewport"`
	Measure  MeasureConfig  `yaml:"measure" koanf:"measure"`
	Viewer   ViewerConfig   `yaml:"viewer" koanf:"viewer"`
	Server   ServerConfig   `yaml:"server" koanf:"server"`
	Log      LogConfig      `yaml:"log" koanf:"log"`
}

// LayoutConfig holds radial layout settings.
type LayoutConfig struct {
	Padding      float64 `yaml:"padding" koanf:"padding"`
	RadiusFactor float64 `yaml:"radius_factor" koanf:"radius_factor"`
	ParentInset  float64 `yaml:"parent_inset" koanf:"parent_inset"`
}

// ViewportConfig holds zoom settings.
type ViewportConfig struct {
	OuterPadding float64 `yaml:"outer_padding" koanf:"outer_padding"`
	MinZoom      float64 `yaml:"min_zoom" koanf:"min_zoom"`
	MaxZoom      float64 `yaml:"max_zoom" koanf:"max_zoom"`
	ZoomStep     float64 `yaml:"zoom_step" koanf:"zoom_step"`
}

// MeasureConfig holds node measuring settings.
type MeasureConfig struct {
	ContextWidth    float64 `yaml:"context_width" koanf:"context_width"`
	MaxWidth        float64 `yaml:"max_width" koanf:"max_width"`
	TallnessRatio   float64 `yaml:"tallness_ratio" koanf:"tallness_ratio"`
	MinWidthGain    float64 `yaml:"min_width_gain" koanf:"min_width_gain"`
	CenterTitleSize float64 `yaml:"center_title_size" koanf:"center_title_size"`
	TitleSize       float64 `yaml:"title_size" koanf:"title_size"`
	DescriptionSize float64 `yaml:"description_size" koanf:"description_size"`
}

// ViewerConfig holds output canvas settings.
type ViewerConfig struct {
	Width          int           `yaml:"width" koanf:"width"`
	Height         int           `yaml:"height" koanf:"height"`
	ResizeDebounce time.Duration `yaml:"resize_debounce" koanf:"resize_debounce"`
}

// ServerConfig holds HTTP viewer settings.
type ServerConfig struct {
	Host            string        `yaml:"host" koanf:"host"`
	Port            int           `yaml:"port" koanf:"port"`
	AllowAllOrigins bool          `yaml:"allow_all_origins" koanf:"allow_all_origins"`
	RequestTimeout  time.Duration `yaml:"request_timeout" koanf:"request_timeout"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level" koanf:"level"`
	Format string `yaml:"format" koanf:"format"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	lo := layout.DefaultOptions()
	vo := viewport.DefaultOptions()
	mo := measure.DefaultOptions()
	typo := measure.DefaultTypography()
	return &Config{
		Layout: LayoutConfig{
			Padding:      lo.Padding,
			RadiusFactor: lo.RadiusFactor,
			ParentInset:  lo.ParentInset,
		},
		Viewport: ViewportConfig{
			OuterPadding: vo.OuterPadding,
			MinZoom:      vo.MinZoom,
			MaxZoom:      vo.MaxZoom,
			ZoomStep:     vo.ZoomStep,
		},
		Measure: MeasureConfig{
			ContextWidth:    mo.ContextWidth,
			MaxWidth:        mo.MaxWidth,
			TallnessRatio:   mo.TallnessRatio,
			MinWidthGain:    mo.MinWidthGain,
			CenterTitleSize: typo.CenterTitleSize,
			TitleSize:       typo.TitleSize,
			DescriptionSize: typo.DescriptionSize,
		},
		Viewer: ViewerConfig{
			Width:          1024,
			Height:         768,
			ResizeDebounce: 250 * time.Millisecond,
		},
		Server: ServerConfig{
			Host:           "127.0.0.1",
			Port:           8090,
			RequestTimeout: 30 * time.Second,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (HUBSPOKE_*). A missing file is not an
// error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return cfg, nil
}

// envKey maps HUBSPOKE_LAYOUT__RADIUS_FACTOR to layout.radius_factor.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains usable values.
func (c *Config) Validate() error {
	if c.Layout.RadiusFactor <= 0 {
		return fmt.Errorf("layout.radius_factor must be positive")
	}
	if c.Layout.Padding < 0 || c.Layout.ParentInset < 0 {
		return fmt.Errorf("layout padding and parent_inset must be non-negative")
	}
	if c.Viewport.MinZoom <= 0 || c.Viewport.MaxZoom < c.Viewport.MinZoom {
		return fmt.Errorf("invalid zoom range [%g, %g]", c.Viewport.MinZoom, c.Viewport.MaxZoom)
	}
	if c.Viewport.ZoomStep <= 0 {
		return fmt.Errorf("viewport.zoom_step must be positive")
	}
	if c.Viewport.OuterPadding < 0 {
		return fmt.Errorf("viewport.outer_padding must be non-negative")
	}
	if c.Measure.ContextWidth <= 0 || c.Measure.MaxWidth <= 0 {
		return fmt.Errorf("measure.context_width and measure.max_width must be positive")
	}
	if c.Measure.CenterTitleSize <= 0 || c.Measure.TitleSize <= 0 || c.Measure.DescriptionSize <= 0 {
		return fmt.Errorf("font sizes must be positive")
	}
	if c.Viewer.Width <= 0 || c.Viewer.Height <= 0 {
		return fmt.Errorf("invalid viewer size %dx%d", c.Viewer.Width, c.Viewer.Height)
	}
	if c.Viewer.ResizeDebounce < 0 {
		return fmt.Errorf("viewer.resize_debounce must be non-negative")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log.format %q: must be text or json", c.Log.Format)
	}
	return nil
}

// LayoutOptions returns the layout engine options.
func (c *Config) LayoutOptions() layout.Options {
	o := layout.DefaultOptions()
	o.Padding = c.Layout.Padding
	o.RadiusFactor = c.Layout.RadiusFactor
	o.ParentInset = c.Layout.ParentInset
	return o
}

// ViewportOptions returns the zoom options.
func (c *Config) ViewportOptions() viewport.Options {
	return viewport.Options{
		OuterPadding: c.Viewport.OuterPadding,
		MinZoom:      c.Viewport.MinZoom,
		MaxZoom:      c.Viewport.MaxZoom,
		ZoomStep:     c.Viewport.ZoomStep,
	}
}

// MeasureOptions returns the measurer heuristics.
func (c *Config) MeasureOptions() measure.Options {
	o := measure.DefaultOptions()
	o.ContextWidth = c.Measure.ContextWidth
	o.MaxWidth = c.Measure.MaxWidth
	o.TallnessRatio = c.Measure.TallnessRatio
	o.MinWidthGain = c.Measure.MinWidthGain
	return o
}

// Typography returns the font settings.
func (c *Config) Typography() measure.Typography {
	t := measure.DefaultTypography()
	t.CenterTitleSize = c.Measure.CenterTitleSize
	t.TitleSize = c.Measure.TitleSize
	t.DescriptionSize = c.Measure.DescriptionSize
	return t
}

// ViewSize returns the default canvas size.
func (c *Config) ViewSize() layout.Size {
	return layout.Size{Width: float64(c.Viewer.Width), Height: float64(c.Viewer.Height)}
}

// Addr returns the server listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
