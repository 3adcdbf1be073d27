package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"bodytrack/internal/batch"
	"bodytrack/internal/binding"
	"bodytrack/internal/character"
	"bodytrack/internal/config"
	"bodytrack/internal/frame"
	"bodytrack/internal/logging"
	"bodytrack/internal/raster"
	"bodytrack/internal/scenegraph"
	"bodytrack/internal/skeleton"
	"bodytrack/internal/texture"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to a .json or .toml config file")
	baseDir := flag.String("base", "", "Directory relative paths resolve against (default: cwd)")
	asset := flag.String("asset", "", "Character asset name or image path")
	outputDir := flag.String("output", "", "Output directory (default: <base>/out)")
	filterKind := flag.String("filter", "", "Post-process filter: crystallize, pixellate, sepia, monochrome, bloom")
	frames := flag.Int("frames", 0, "Number of frames to record (default: 90)")
	workers := flag.Int("workers", 0, "Number of encoder goroutines (default: NumCPU)")
	seed := flag.Int64("seed", 0, "Seed for the synthetic tracker and marker hues")
	logLevel := flag.String("log-level", "", "debug, info, warn or error (default: info)")
	watch := flag.Bool("watch", false, "Reload the filter when the config file changes")

	flag.Parse()

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		BaseDir:   *baseDir,
		Asset:     *asset,
		OutputDir: *outputDir,
		Filter:    *filterKind,
		Frames:    *frames,
		Workers:   *workers,
		Seed:      *seed,
		LogLevel:  *logLevel,
	})

	lvl, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logging.SetLogger(logging.NewText(lvl))

	filterCfg, err := cfg.Filter.FilterConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	shape, err := scenegraph.ParseMarkerShape(cfg.MarkerShape)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Character asset
	texIndex := texture.BuildIndex(cfg.AssetDir)
	texCache := texture.NewCache(texIndex)
	sprite, err := character.Load(texCache, cfg.CharacterAsset)
	if err != nil {
		var loadErr *character.AssetLoadError
		if errors.As(err, &loadErr) {
			fmt.Fprintf(os.Stderr, "Error: character asset %q: %v\n", loadErr.Name, loadErr.Err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}

	writer, err := batch.NewWriter(batch.Config{
		OutputDir: cfg.OutputDir,
		Workers:   cfg.Workers,
		Progress:  os.Stdout,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	renderer := raster.NewRenderer()
	renderer.Supersample = cfg.Supersample

	driver, err := frame.New(frame.Options{
		Width:           cfg.Width,
		Height:          cfg.Height,
		FrameBudget:     cfg.FrameBudget(),
		Filter:          filterCfg,
		Markers:         binding.Options{Shape: shape},
		Sprite:          sprite,
		CharacterHeight: cfg.CharacterHeight,
		Seed:            cfg.Seed,
		MaxFrames:       cfg.Frames,
	}, renderer, writer)
	if err != nil {
		writer.Close()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	renderer.Bones = driver.Binding().Bones()
	if cfg.Overlay {
		renderer.Caption = func() []string {
			s := driver.Stats()
			return []string{
				fmt.Sprintf("frame %d", s.Frames),
				driver.Pipeline().Filter().String(),
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *watch && *configFile != "" {
		go func() {
			err := config.Watch(ctx, *configFile, func(next config.Config) {
				next.Resolve(config.Flags{BaseDir: cfg.BaseDir})
				fc, err := next.Filter.FilterConfig()
				if err != nil {
					logging.Logger().Warn("filter not changed", "err", err)
					return
				}
				driver.Pipeline().SetFilter(fc)
			})
			if err != nil {
				logging.Logger().Error("config watch stopped", "err", err)
			}
		}()
	}

	// Print summary
	fmt.Printf("Body tracking session %s\n", driver.Session())
	fmt.Printf("Character: %s (%d assets indexed)\n", cfg.CharacterAsset, texIndex.Len())
	fmt.Printf("Frames: %d at %dx%d, %.0f fps, Workers: %d\n", cfg.Frames, cfg.Width, cfg.Height, cfg.FPS, cfg.Workers)
	fmt.Printf("Filter: %s\n", filterCfg)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()

	src := skeleton.NewSynthetic(cfg.Seed)
	src.FrameRate = cfg.FPS
	src.DropRate = cfg.DropRate
	src.Pace = true
	snaps, errc := skeleton.Stream(ctx, src)

	ticker := time.NewTicker(time.Duration(float64(time.Second) / cfg.FPS))
	runErr := driver.Run(ctx, snaps, ticker.C)
	ticker.Stop()
	stop()
	if err := <-errc; err != nil {
		logging.Logger().Warn("tracker stopped", "err", err)
	}
	results := writer.Close()

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
	}

	// Count results
	stats := driver.Stats()
	success, failed := 0, 0
	var errs []batch.Result
	for _, r := range results {
		if r.Success {
			success++
		} else {
			failed++
			errs = append(errs, r)
		}
	}

	fmt.Printf("Frames: %d written, %d failed\n", success, failed)
	fmt.Printf("Filtered: %d, Pass-through: %d, Idle: %d\n",
		stats.Pipeline.Filtered, stats.Pipeline.PassThrough, stats.Pipeline.Idle)
	fmt.Printf("Sensor updates: %d, Missing joints: %d\n", stats.Updates, stats.MissingJoints)

	if len(errs) > 0 {
		fmt.Printf("\nFailed (%d):\n", failed)
		limit := 20
		if len(errs) < limit {
			limit = len(errs)
		}
		for _, e := range errs[:limit] {
			fmt.Printf("  %05d: %s\n", e.Index, e.Error)
		}
	}

	// Write manifest
	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	manifest := batch.Manifest{
		Session: driver.Session().String(),
		Created: start.UTC(),
		Width:   cfg.Width,
		Height:  cfg.Height,
		FPS:     cfg.FPS,
		Filter:  driver.Pipeline().Filter().String(),
		Frames:  batch.Entries(results),
	}
	if err := batch.WriteManifest(manifestPath, manifest); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if failed > 0 || (runErr != nil && !errors.Is(runErr, context.Canceled)) {
		os.Exit(1)
	}
}
