package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"bodytrack/internal/postprocess"
)

// Config holds all configurable paths and session settings.
type Config struct {
	// Paths
	BaseDir        string `json:"base_dir" toml:"base_dir"`
	AssetDir       string `json:"asset_dir" toml:"asset_dir"`
	CharacterAsset string `json:"character_asset" toml:"character_asset"`
	OutputDir      string `json:"output_dir" toml:"output_dir"`

	// Character height in metres; zero uses the character default.
	CharacterHeight float64 `json:"character_height" toml:"character_height"`

	// Render settings
	Width         int    `json:"width" toml:"width"`
	Height        int    `json:"height" toml:"height"`
	Supersample   int    `json:"supersample" toml:"supersample"`
	Workers       int    `json:"workers" toml:"workers"`
	FrameBudgetMS int    `json:"frame_budget_ms" toml:"frame_budget_ms"`
	Overlay       bool   `json:"overlay" toml:"overlay"`
	MarkerShape   string `json:"marker_shape" toml:"marker_shape"`

	// Session
	Frames   int     `json:"frames" toml:"frames"`
	FPS      float64 `json:"fps" toml:"fps"`
	DropRate float64 `json:"drop_rate" toml:"drop_rate"`
	Seed     int64   `json:"seed" toml:"seed"`
	LogLevel string  `json:"log_level" toml:"log_level"`

	Filter Filter `json:"filter" toml:"filter"`
}

// Filter is the post-process section of the file. A nil parameter was
// absent from the file; an explicit zero is kept.
type Filter struct {
	Kind      string   `json:"kind" toml:"kind"`
	Radius    *float64 `json:"radius,omitempty" toml:"radius,omitempty"`
	Scale     *float64 `json:"scale,omitempty" toml:"scale,omitempty"`
	Intensity *float64 `json:"intensity,omitempty" toml:"intensity,omitempty"`
}

// Float returns a pointer to v, for filling Filter parameters in code.
func Float(v float64) *float64 { return &v }

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func setDefault(p **float64, v float64) {
	if *p == nil {
		*p = Float(v)
	}
}

// Load reads a config file and returns Config. Files ending in .toml are
// parsed as TOML, anything else as JSON.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, &cfg)
	} else {
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	BaseDir   string
	Asset     string
	OutputDir string
	Filter    string
	Frames    int
	Workers   int
	Seed      int64
	LogLevel  string
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.BaseDir != "" {
		c.BaseDir = flags.BaseDir
	}
	if flags.Asset != "" {
		c.CharacterAsset = flags.Asset
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Filter != "" && !strings.EqualFold(flags.Filter, c.Filter.Kind) {
		// A different kind from the command line starts from its own defaults.
		c.Filter = Filter{Kind: flags.Filter}
	}
	if flags.Frames > 0 {
		c.Frames = flags.Frames
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Seed != 0 {
		c.Seed = flags.Seed
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}

	if c.BaseDir == "" {
		c.BaseDir, _ = os.Getwd()
	}

	// Resolve relative paths against base dir
	if c.BaseDir != "" {
		if c.AssetDir == "" {
			c.AssetDir = filepath.Join(c.BaseDir, "assets")
		} else if !filepath.IsAbs(c.AssetDir) {
			c.AssetDir = filepath.Join(c.BaseDir, c.AssetDir)
		}

		if c.OutputDir == "" {
			c.OutputDir = filepath.Join(c.BaseDir, "out")
		} else if !filepath.IsAbs(c.OutputDir) {
			c.OutputDir = filepath.Join(c.BaseDir, c.OutputDir)
		}
	}

	// Defaults for render settings
	if c.Width <= 0 {
		c.Width = 640
	}
	if c.Height <= 0 {
		c.Height = 480
	}
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.MarkerShape == "" {
		c.MarkerShape = "box"
	}
	if c.Frames <= 0 {
		c.Frames = 90
	}
	if c.FPS <= 0 {
		c.FPS = 30
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	c.Filter.fillDefaults()
}

// FrameBudget returns the per-frame filter budget.
func (c *Config) FrameBudget() time.Duration {
	return time.Duration(c.FrameBudgetMS) * time.Millisecond
}

// fillDefaults fills parameters the kind reads but the file left out.
func (f *Filter) fillDefaults() {
	if f.Kind == "" {
		f.Kind = postprocess.Crystallize.String()
	}
	kind, err := postprocess.ParseKind(f.Kind)
	if err != nil {
		return
	}
	switch kind {
	case postprocess.Crystallize:
		setDefault(&f.Radius, 40)
	case postprocess.Pixellate:
		setDefault(&f.Scale, 20)
	case postprocess.Sepia:
		setDefault(&f.Intensity, 0.9)
	case postprocess.Bloom:
		setDefault(&f.Intensity, 1)
		setDefault(&f.Radius, 100)
	}
}

// FilterConfig converts the section to a pipeline configuration.
// Parameter ranges are not checked; the pipeline does that per frame.
func (f Filter) FilterConfig() (postprocess.FilterConfig, error) {
	kind, err := postprocess.ParseKind(f.Kind)
	if err != nil {
		return postprocess.FilterConfig{}, fmt.Errorf("config: filter: %w", err)
	}
	return postprocess.FilterConfig{
		Kind:      kind,
		Radius:    deref(f.Radius),
		Scale:     deref(f.Scale),
		Intensity: deref(f.Intensity),
	}, nil
}
