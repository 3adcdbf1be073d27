package frame

import (
	"context"
	"errors"
	"image"
	"image/color"
	"slices"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bodytrack/internal/joint"
	"bodytrack/internal/mathutil"
	"bodytrack/internal/postprocess"
	"bodytrack/internal/scenegraph"
	"bodytrack/internal/skeleton"
)

// gradientRenderer fills the frame with a gradient and records where the
// root slot was when each frame was drawn.
type gradientRenderer struct {
	d     *Driver
	roots []mgl64.Vec3
	fail  bool
}

func (r *gradientRenderer) Render(ctx context.Context, g *scenegraph.Graph, dst *image.RGBA) error {
	if r.fail {
		return errors.New("device lost")
	}
	b := dst.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.SetRGBA(x, y, color.RGBA{uint8(x * 4), uint8(y * 4), uint8(x ^ y), 255})
		}
	}
	if r.d != nil {
		slot, _ := r.d.Binding().Slot(joint.Root)
		w, _ := g.WorldTransform(slot)
		r.roots = append(r.roots, mathutil.Translation(w))
	}
	return nil
}

type recorder struct {
	frames []*image.RGBA
	index  []int
	fail   bool
}

func (p *recorder) Present(i int, img *image.RGBA) error {
	if p.fail {
		return errors.New("display gone")
	}
	p.index = append(p.index, i)
	p.frames = append(p.frames, &image.RGBA{Pix: slices.Clone(img.Pix), Stride: img.Stride, Rect: img.Rect})
	return nil
}

func newDriver(t *testing.T, opts Options) (*Driver, *gradientRenderer, *recorder) {
	t.Helper()
	if opts.Width == 0 {
		opts.Width, opts.Height = 48, 32
	}
	if opts.Seed == 0 {
		opts.Seed = 11
	}
	r := &gradientRenderer{}
	p := &recorder{}
	d, err := New(opts, r, p)
	require.NoError(t, err)
	r.d = d
	return d, r, p
}

func rendered(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	_ = (&gradientRenderer{}).Render(context.Background(), nil, img)
	return img
}

func TestNewRejectsEmptySize(t *testing.T) {
	_, err := New(Options{}, &gradientRenderer{}, &recorder{})
	assert.Error(t, err)
}

func TestSensorUpdateMovesMarkersAndCharacter(t *testing.T) {
	d, _, _ := newDriver(t, Options{Filter: postprocess.DefaultFilter()})
	anchor := mgl64.Translate3D(0.3, 0, -1).Mul4(mgl64.HomogRotate3DY(0.8))
	s := skeleton.Snapshot{
		Anchor: anchor,
		Joints: map[joint.ID]mgl64.Mat4{
			joint.Root: mgl64.Ident4(),
			joint.Head: mgl64.Translate3D(0, 1.6, 0),
		},
	}
	require.NoError(t, d.OnSensorUpdate(&s))

	slot, _ := d.Binding().Slot(joint.Root)
	root, err := d.Graph().WorldTransform(slot)
	require.NoError(t, err)
	assert.True(t, mathutil.ApproxEqual(anchor, root, 1e-9))

	pos, err := d.Character().Position()
	require.NoError(t, err)
	want := mathutil.Translation(anchor)
	assert.InDeltaSlice(t, want[:], pos[:], 1e-9)

	st := d.Stats()
	assert.Equal(t, 1, st.Updates)
	assert.Equal(t, joint.Count-2, st.MissingJoints)
}

func TestRenderTickStates(t *testing.T) {
	d, _, p := newDriver(t, Options{Filter: postprocess.FilterConfig{Kind: postprocess.Pixellate, Scale: 8}})
	src := rendered(48, 32)

	out, err := d.OnRenderTick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, postprocess.OutcomeIdle, out)
	assert.Equal(t, src.Pix, p.frames[0].Pix)

	require.NoError(t, d.Bind())
	assert.Error(t, d.Bind())

	out, err = d.OnRenderTick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, postprocess.OutcomeFiltered, out)
	want, err := postprocess.Apply(context.Background(), postprocess.FilterConfig{Kind: postprocess.Pixellate, Scale: 8}, src)
	require.NoError(t, err)
	assert.Equal(t, want.Pix, p.frames[1].Pix)

	// A malformed filter passes the frame through; the loop carries on.
	d.Pipeline().SetFilter(postprocess.FilterConfig{Kind: postprocess.Pixellate})
	out, err = d.OnRenderTick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, postprocess.OutcomePassThrough, out)
	assert.Equal(t, src.Pix, p.frames[2].Pix)

	assert.Equal(t, []int{0, 1, 2}, p.index)
	st := d.Stats()
	assert.Equal(t, 3, st.Frames)
	assert.Equal(t, postprocess.Stats{Filtered: 1, PassThrough: 1, Idle: 1}, st.Pipeline)
}

func TestRenderAndPresentErrors(t *testing.T) {
	d, r, p := newDriver(t, Options{Filter: postprocess.FilterConfig{Kind: postprocess.Monochrome}})
	require.NoError(t, d.Bind())

	r.fail = true
	out, err := d.OnRenderTick(context.Background())
	assert.Error(t, err)
	assert.Equal(t, postprocess.OutcomeInvalid, out)
	assert.Empty(t, p.frames)

	r.fail = false
	p.fail = true
	out, err = d.OnRenderTick(context.Background())
	assert.ErrorContains(t, err, "display gone")
	assert.Equal(t, postprocess.OutcomeFiltered, out)

	st := d.Stats()
	assert.Equal(t, 1, st.RenderErrors)
	assert.Equal(t, 1, st.PresentErrors)
	assert.Equal(t, 1, st.Frames)
}

func TestRunSerialisesStreams(t *testing.T) {
	d, r, p := newDriver(t, Options{Filter: postprocess.DefaultFilter(), MaxFrames: 3})
	snaps := make(chan skeleton.Snapshot)
	ticks := make(chan time.Time)
	errc := make(chan error, 1)
	go func() { errc <- d.Run(context.Background(), snaps, ticks) }()

	for i := 1; i <= 3; i++ {
		snaps <- skeleton.Snapshot{
			Seq:    uint64(i),
			Anchor: mgl64.Translate3D(float64(i), 0, 0),
			Joints: map[joint.ID]mgl64.Mat4{joint.Root: mgl64.Ident4()},
		}
		ticks <- time.Now()
	}
	require.NoError(t, <-errc)

	// Each frame saw the snapshot sent just before its tick.
	require.Len(t, r.roots, 3)
	for i, pos := range r.roots {
		assert.InDelta(t, float64(i+1), pos.X(), 1e-9)
	}
	assert.Len(t, p.frames, 3)
	assert.Equal(t, postprocess.Ready, d.Pipeline().State())
	assert.Equal(t, int64(3), d.Stats().Pipeline.Filtered)
}

func TestRunStops(t *testing.T) {
	d, _, _ := newDriver(t, Options{Filter: postprocess.DefaultFilter()})
	snaps := make(chan skeleton.Snapshot)
	close(snaps)
	ticks := make(chan time.Time)
	close(ticks)
	assert.NoError(t, d.Run(context.Background(), snaps, ticks))

	d, _, _ = newDriver(t, Options{Filter: postprocess.DefaultFilter()})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, d.Run(ctx, nil, nil), context.Canceled)
}

func TestRunWithSyntheticSource(t *testing.T) {
	d, _, p := newDriver(t, Options{Filter: postprocess.FilterConfig{Kind: postprocess.Sepia, Intensity: 0.9}, MaxFrames: 5})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := skeleton.NewSynthetic(3)
	src.DropRate = 0.2
	snaps, _ := skeleton.Stream(ctx, src)
	ticks := make(chan time.Time)
	go func() {
		defer close(ticks)
		for i := 0; i < 10; i++ {
			select {
			case ticks <- time.Now():
			case <-ctx.Done():
				return
			}
		}
	}()
	require.NoError(t, d.Run(ctx, snaps, ticks))
	assert.Len(t, p.frames, 5)
}
