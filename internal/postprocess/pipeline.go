// Package postprocess filters rendered frames before presentation.
//
// A Pipeline starts Idle and becomes Ready once a RenderContext is bound.
// In Ready, each Process call applies the active filter to the frame's source
// and writes the result into its target. When anything goes wrong the target
// receives an unmodified copy of the source instead.
package postprocess

import (
	"context"
	"errors"
	"fmt"
	"image"
	"slices"
	"sync/atomic"
	"time"

	"golang.org/x/image/draw"

	"bodytrack/internal/logging"
)

// RenderContext is the render backend's session state, created once and
// shared by reference.
type RenderContext struct {
	Width, Height int
	// FrameBudget bounds filter work per frame. Zero means no limit.
	FrameBudget time.Duration
	// Session tags log lines.
	Session string
}

// State of a Pipeline.
type State int32

const (
	Idle State = iota
	Ready
)

func (s State) String() string {
	if s == Ready {
		return "ready"
	}
	return "idle"
}

// Outcome reports what Process did with a frame.
type Outcome int

const (
	// OutcomeIdle: no render context bound yet; source copied to target.
	OutcomeIdle Outcome = iota
	// OutcomeFiltered: target holds the filtered source.
	OutcomeFiltered
	// OutcomePassThrough: filtering failed; source copied to target.
	OutcomePassThrough
	// OutcomeInvalid: the frame had no source or target; nothing written.
	OutcomeInvalid
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIdle:
		return "idle"
	case OutcomeFiltered:
		return "filtered"
	case OutcomePassThrough:
		return "pass-through"
	case OutcomeInvalid:
		return "invalid"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// ErrAlreadyBound is returned by a second Bind.
var ErrAlreadyBound = errors.New("postprocess: render context already bound")

// Frame is one completed render.
type Frame struct {
	Index  int
	Source *image.RGBA
	Target *image.RGBA
}

// Stats counts Process outcomes.
type Stats struct {
	Filtered    int64
	PassThrough int64
	Idle        int64
}

// Pipeline applies one configurable filter per frame.
type Pipeline struct {
	rc     atomic.Pointer[RenderContext]
	filter atomic.Pointer[FilterConfig]

	filtered    atomic.Int64
	passThrough atomic.Int64
	idle        atomic.Int64
}

// NewPipeline returns an Idle pipeline with cfg active.
func NewPipeline(cfg FilterConfig) *Pipeline {
	p := &Pipeline{}
	p.filter.Store(&cfg)
	return p
}

// Bind moves the pipeline to Ready. It succeeds once per pipeline.
func (p *Pipeline) Bind(rc *RenderContext) error {
	if rc == nil {
		return errors.New("postprocess: bind nil render context")
	}
	if !p.rc.CompareAndSwap(nil, rc) {
		return ErrAlreadyBound
	}
	logging.Logger().Info("post-process bound",
		"session", rc.Session, "width", rc.Width, "height", rc.Height,
		"filter", p.Filter().String())
	return nil
}

// State returns Idle or Ready.
func (p *Pipeline) State() State {
	if p.rc.Load() == nil {
		return Idle
	}
	return Ready
}

// SetFilter replaces the active filter. The frame being processed keeps the
// configuration it started with; the next frame sees cfg. cfg is not
// validated here: a bad configuration makes frames pass through.
func (p *Pipeline) SetFilter(cfg FilterConfig) {
	old := p.filter.Swap(&cfg)
	if old == nil || *old != cfg {
		logging.Logger().Info("filter changed", "filter", cfg.String())
	}
}

// Filter returns the active configuration.
func (p *Pipeline) Filter() FilterConfig {
	return *p.filter.Load()
}

// Stats returns outcome counts so far.
func (p *Pipeline) Stats() Stats {
	return Stats{
		Filtered:    p.filtered.Load(),
		PassThrough: p.passThrough.Load(),
		Idle:        p.idle.Load(),
	}
}

// Process filters f.Source into f.Target. It never returns an error: any
// failure is logged and the target receives a copy of the source.
func (p *Pipeline) Process(ctx context.Context, f Frame) Outcome {
	if f.Source == nil || f.Target == nil {
		logging.Logger().Error("frame without buffers", "frame", f.Index)
		return OutcomeInvalid
	}
	rc := p.rc.Load()
	if rc == nil {
		passThrough(f)
		p.idle.Add(1)
		return OutcomeIdle
	}
	cfg := p.Filter()

	if rc.FrameBudget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, rc.FrameBudget)
		defer cancel()
	}

	// The filter goroutine can outlive Process on deadline or cancel, so it
	// reads a copy the caller never touches again.
	src := &image.RGBA{Pix: slices.Clone(f.Source.Pix), Stride: f.Source.Stride, Rect: f.Source.Rect}
	out, err := run(ctx, cfg, src)
	if err == nil && out.Bounds().Size() != f.Target.Bounds().Size() {
		err = &FilterError{Kind: cfg.Kind, Err: fmt.Errorf("%w: target is %v", ErrSizeChange, f.Target.Bounds().Size())}
	}
	if err != nil {
		logging.Logger().Warn("frame passed through unfiltered",
			"session", rc.Session, "frame", f.Index, "filter", cfg.String(), "err", err)
		passThrough(f)
		p.passThrough.Add(1)
		return OutcomePassThrough
	}
	draw.Draw(f.Target, f.Target.Bounds(), out, out.Bounds().Min, draw.Src)
	p.filtered.Add(1)
	return OutcomeFiltered
}

// run applies cfg on its own goroutine so a filter that overruns ctx can be
// abandoned. Filters only write to buffers they allocate, so an abandoned
// run cannot touch the frame.
func run(ctx context.Context, cfg FilterConfig, src *image.RGBA) (*image.RGBA, error) {
	type result struct {
		img *image.RGBA
		err error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: &FilterError{Kind: cfg.Kind, Err: fmt.Errorf("panic: %v", r)}}
			}
		}()
		img, err := Apply(ctx, cfg, src)
		done <- result{img, err}
	}()
	select {
	case r := <-done:
		return r.img, r.err
	case <-ctx.Done():
		return nil, &FilterError{Kind: cfg.Kind, Err: ctx.Err()}
	}
}

func passThrough(f Frame) {
	draw.Draw(f.Target, f.Target.Bounds(), f.Source, f.Source.Bounds().Min, draw.Src)
}
