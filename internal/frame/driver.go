// Package frame runs the per-frame loop: sensor updates move the scene,
// render ticks draw, filter and present it.
package frame

import (
	"context"
	"fmt"
	"image"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"bodytrack/internal/binding"
	"bodytrack/internal/character"
	"bodytrack/internal/logging"
	"bodytrack/internal/postprocess"
	"bodytrack/internal/propagate"
	"bodytrack/internal/retarget"
	"bodytrack/internal/scenegraph"
	"bodytrack/internal/skeleton"
)

// Renderer draws the scene graph into dst.
type Renderer interface {
	Render(ctx context.Context, g *scenegraph.Graph, dst *image.RGBA) error
}

// Presenter displays or records a finished frame. img is reused by the
// caller after Present returns.
type Presenter interface {
	Present(index int, img *image.RGBA) error
}

// Options configures a Driver.
type Options struct {
	Width, Height int
	FrameBudget   time.Duration
	Filter        postprocess.FilterConfig
	Markers       binding.Options
	// Sprite is the loaded character asset.
	Sprite          *image.NRGBA
	CharacterHeight float64
	// Seed fixes the marker hues. Zero picks a time-based seed.
	Seed int64
	// MaxFrames stops Run after this many render ticks. Zero means no limit.
	MaxFrames int
}

// Stats summarises a session.
type Stats struct {
	Updates       int
	MissingJoints int
	Frames        int
	RenderErrors  int
	PresentErrors int
	Pipeline      postprocess.Stats
}

// Driver owns the scene graph for the session. Its handlers must be called
// from one goroutine; Run does that.
type Driver struct {
	session   uuid.UUID
	graph     *scenegraph.Graph
	binding   *binding.Binding
	character *character.Entity
	propagate *propagate.Propagator
	retarget  *retarget.Retargeter
	renderer  Renderer
	pipeline  *postprocess.Pipeline
	presenter Presenter
	rc        *postprocess.RenderContext

	source, target *image.RGBA
	maxFrames      int
	stats          Stats
}

// New builds the scene: joint slots with markers, the character, and an
// Idle post-process pipeline.
func New(opts Options, r Renderer, p Presenter) (*Driver, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("frame: invalid size %dx%d", opts.Width, opts.Height)
	}
	var rng *rand.Rand
	if opts.Seed != 0 {
		rng = rand.New(rand.NewSource(opts.Seed))
	}

	g := scenegraph.New()
	b, err := binding.Setup(g, rng, opts.Markers)
	if err != nil {
		return nil, fmt.Errorf("frame: %w", err)
	}
	c, err := character.New(g, opts.Sprite, opts.CharacterHeight)
	if err != nil {
		return nil, fmt.Errorf("frame: %w", err)
	}

	d := &Driver{
		session:   uuid.New(),
		graph:     g,
		binding:   b,
		character: c,
		propagate: propagate.New(b),
		retarget:  retarget.New(c),
		renderer:  r,
		pipeline:  postprocess.NewPipeline(opts.Filter),
		presenter: p,
		source:    image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height)),
		target:    image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height)),
		maxFrames: opts.MaxFrames,
	}
	d.rc = &postprocess.RenderContext{
		Width:       opts.Width,
		Height:      opts.Height,
		FrameBudget: opts.FrameBudget,
		Session:     d.session.String(),
	}
	return d, nil
}

// Session identifies this run.
func (d *Driver) Session() uuid.UUID { return d.session }

// Graph returns the scene graph. Callers outside the driver must only read.
func (d *Driver) Graph() *scenegraph.Graph { return d.graph }

// Binding returns the joint slots.
func (d *Driver) Binding() *binding.Binding { return d.binding }

// Character returns the retargeted character.
func (d *Driver) Character() *character.Entity { return d.character }

// Pipeline returns the post-process pipeline.
func (d *Driver) Pipeline() *postprocess.Pipeline { return d.pipeline }

// Stats returns counters so far. Call it from the goroutine running the
// handlers, or after Run returns.
func (d *Driver) Stats() Stats {
	s := d.stats
	s.Pipeline = d.pipeline.Stats()
	return s
}

// Bind reports the render context to the pipeline, moving it to Ready.
func (d *Driver) Bind() error {
	if err := d.pipeline.Bind(d.rc); err != nil {
		return fmt.Errorf("frame: %w", err)
	}
	return nil
}

// OnSensorUpdate moves the joint slots and the character to s. Both are
// written before returning so a following render sees one consistent pose.
func (d *Driver) OnSensorUpdate(s *skeleton.Snapshot) error {
	res, err := d.propagate.Apply(s)
	if err != nil {
		return fmt.Errorf("frame: %w", err)
	}
	if err := d.retarget.Apply(s); err != nil {
		return fmt.Errorf("frame: %w", err)
	}
	d.stats.Updates++
	d.stats.MissingJoints += res.Missing
	return nil
}

// OnRenderTick draws the scene, filters it and presents the result.
// A render failure skips the frame; a present failure is reported but the
// frame still counts.
func (d *Driver) OnRenderTick(ctx context.Context) (postprocess.Outcome, error) {
	if err := d.renderer.Render(ctx, d.graph, d.source); err != nil {
		d.stats.RenderErrors++
		return postprocess.OutcomeInvalid, fmt.Errorf("frame: render %d: %w", d.stats.Frames, err)
	}
	index := d.stats.Frames
	out := d.pipeline.Process(ctx, postprocess.Frame{Index: index, Source: d.source, Target: d.target})
	d.stats.Frames++
	if err := d.presenter.Present(index, d.target); err != nil {
		d.stats.PresentErrors++
		return out, fmt.Errorf("frame: present %d: %w", index, err)
	}
	return out, nil
}

// Run binds the pipeline and serves both streams on the calling goroutine
// until ctx ends, ticks closes or MaxFrames frames have been presented.
// A closed snapshot channel only stops sensor updates.
// Handler errors are logged; they never end the loop.
func (d *Driver) Run(ctx context.Context, snapshots <-chan skeleton.Snapshot, ticks <-chan time.Time) error {
	if d.pipeline.State() == postprocess.Idle {
		if err := d.Bind(); err != nil {
			return err
		}
	}
	log := logging.Logger().With("session", d.session.String())
	log.Info("driver running")
	for {
		if d.maxFrames > 0 && d.stats.Frames >= d.maxFrames {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case s, ok := <-snapshots:
			if !ok {
				snapshots = nil
				continue
			}
			if err := d.OnSensorUpdate(&s); err != nil {
				log.Error("sensor update", "seq", s.Seq, "err", err)
			}
		case _, ok := <-ticks:
			if !ok {
				return nil
			}
			if _, err := d.OnRenderTick(ctx); err != nil {
				log.Warn("render tick", "err", err)
			}
		}
	}
}
