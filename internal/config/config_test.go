package config

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bodytrack/internal/postprocess"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	writeFile(t, path, `{
		"character_asset": "hero",
		"width": 320,
		"fps": 24,
		"filter": {"kind": "pixellate", "scale": 8}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "hero", cfg.CharacterAsset)
	assert.Equal(t, 320, cfg.Width)
	assert.Equal(t, 24.0, cfg.FPS)
	assert.Equal(t, Filter{Kind: "pixellate", Scale: Float(8)}, cfg.Filter)
	assert.Zero(t, cfg.Height)
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.toml")
	writeFile(t, path, `
character_asset = "hero"
height = 200
drop_rate = 0.25
overlay = true

[filter]
kind = "bloom"
intensity = 2.5
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "hero", cfg.CharacterAsset)
	assert.Equal(t, 200, cfg.Height)
	assert.Equal(t, 0.25, cfg.DropRate)
	assert.True(t, cfg.Overlay)
	assert.Equal(t, "bloom", cfg.Filter.Kind)
	require.NotNil(t, cfg.Filter.Intensity)
	assert.Equal(t, 2.5, *cfg.Filter.Intensity)
	assert.Nil(t, cfg.Filter.Radius)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.toml")
	writeFile(t, bad, "width = [")
	_, err = Load(bad)
	assert.ErrorContains(t, err, "config: parse")
}

func TestResolveDefaults(t *testing.T) {
	var cfg Config
	cfg.Resolve(Flags{BaseDir: "/srv/session"})

	assert.Equal(t, "/srv/session/assets", cfg.AssetDir)
	assert.Equal(t, "/srv/session/out", cfg.OutputDir)
	assert.Equal(t, 640, cfg.Width)
	assert.Equal(t, 480, cfg.Height)
	assert.Equal(t, 2, cfg.Supersample)
	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
	assert.Equal(t, 90, cfg.Frames)
	assert.Equal(t, 30.0, cfg.FPS)
	assert.Equal(t, "box", cfg.MarkerShape)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, Filter{Kind: "crystallize", Radius: Float(40)}, cfg.Filter)
	assert.Zero(t, cfg.FrameBudget())
}

func TestResolveFlagsWin(t *testing.T) {
	cfg := Config{
		OutputDir:     "renders",
		Workers:       2,
		Frames:        10,
		FrameBudgetMS: 25,
		Filter:        Filter{Kind: "sepia", Intensity: Float(0.4)},
	}
	cfg.Resolve(Flags{
		BaseDir:  "/srv/session",
		Asset:    "robot",
		Filter:   "pixellate",
		Frames:   3,
		Seed:     9,
		LogLevel: "debug",
	})

	assert.Equal(t, "robot", cfg.CharacterAsset)
	assert.Equal(t, "/srv/session/renders", cfg.OutputDir)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 3, cfg.Frames)
	assert.Equal(t, int64(9), cfg.Seed)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, Filter{Kind: "pixellate", Scale: Float(20)}, cfg.Filter)
	assert.Equal(t, 25*time.Millisecond, cfg.FrameBudget())
}

func TestResolveKeepsFileFilterParams(t *testing.T) {
	cfg := Config{Filter: Filter{Kind: "sepia", Intensity: Float(0.4)}}
	cfg.Resolve(Flags{BaseDir: "/x", Filter: "SEPIA"})
	assert.Equal(t, Float(0.4), cfg.Filter.Intensity)
}

func TestFilterDefaultsPerKind(t *testing.T) {
	tests := []struct {
		kind string
		want Filter
	}{
		{"crystallize", Filter{Kind: "crystallize", Radius: Float(40)}},
		{"pixellate", Filter{Kind: "pixellate", Scale: Float(20)}},
		{"sepia", Filter{Kind: "sepia", Intensity: Float(0.9)}},
		{"monochrome", Filter{Kind: "monochrome"}},
		{"bloom", Filter{Kind: "bloom", Intensity: Float(1), Radius: Float(100)}},
		{"vignette", Filter{Kind: "vignette"}},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			f := Filter{Kind: tt.kind}
			f.fillDefaults()
			assert.Equal(t, tt.want, f)
		})
	}
}

func TestExplicitZeroIsKept(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "sepia.toml")
	writeFile(t, tomlPath, "[filter]\nkind = \"sepia\"\nintensity = 0\n")
	jsonPath := filepath.Join(dir, "bloom.json")
	writeFile(t, jsonPath, `{"filter": {"kind": "bloom", "intensity": 0}}`)

	cfg, err := Load(tomlPath)
	require.NoError(t, err)
	cfg.Resolve(Flags{BaseDir: dir})
	assert.Equal(t, Float(0), cfg.Filter.Intensity)

	cfg, err = Load(jsonPath)
	require.NoError(t, err)
	cfg.Resolve(Flags{BaseDir: dir})
	fc, err := cfg.Filter.FilterConfig()
	require.NoError(t, err)
	assert.Equal(t, postprocess.FilterConfig{Kind: postprocess.Bloom, Intensity: 0, Radius: 100}, fc)
}

func TestFilterConfig(t *testing.T) {
	fc, err := Filter{Kind: "bloom", Radius: Float(50), Intensity: Float(2)}.FilterConfig()
	require.NoError(t, err)
	assert.Equal(t, postprocess.FilterConfig{Kind: postprocess.Bloom, Radius: 50, Intensity: 2}, fc)

	// Out-of-range values pass through; the pipeline rejects them per frame.
	fc, err = Filter{Kind: "crystallize", Radius: Float(-1)}.FilterConfig()
	require.NoError(t, err)
	assert.Equal(t, -1.0, fc.Radius)

	_, err = Filter{Kind: "vignette"}.FilterConfig()
	assert.Error(t, err)
}

func TestWatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.toml")
	writeFile(t, path, "[filter]\nkind = \"sepia\"\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make(chan Config, 8)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(c Config) { got <- c })
	}()

	// Keep rewriting until the watcher is up and reports the new kind.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case c := <-got:
			if c.Filter.Kind == "monochrome" {
				cancel()
				require.NoError(t, <-done)
				return
			}
		case <-tick.C:
			writeFile(t, path, "[filter]\nkind = \"monochrome\"\n")
			// Unrelated files in the directory are ignored.
			writeFile(t, filepath.Join(dir, "other.toml"), "[filter]\nkind = \"bloom\"\n")
		case <-deadline:
			t.Fatal("no reload seen")
		}
	}
}

func TestWatchMissingDir(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope", "x.toml"), func(Config) {})
	assert.Error(t, err)
}
