package skeleton

import (
	"context"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bodytrack/internal/joint"
	"bodytrack/internal/mathutil"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestSnapshotWorld(t *testing.T) {
	s := Snapshot{
		Anchor: mgl64.Translate3D(0, 1, 0),
		Joints: map[joint.ID]mgl64.Mat4{
			joint.Root: mgl64.Ident4(),
			joint.Head: mgl64.Translate3D(0, 0.7, 0),
		},
	}
	w, ok := s.World(joint.Root)
	require.True(t, ok)
	assert.Equal(t, mgl64.Translate3D(0, 1, 0), w)

	w, ok = s.World(joint.Head)
	require.True(t, ok)
	if diff := cmp.Diff(mgl64.Translate3D(0, 1.7, 0), w, approx); diff != "" {
		t.Fatalf("World(head) (-want +got):\n%s", diff)
	}

	_, ok = s.World(joint.Nose)
	assert.False(t, ok)

	var empty Snapshot
	_, ok = empty.World(joint.Root)
	assert.False(t, ok)
}

func TestBuildModelTransformsChainsParents(t *testing.T) {
	locals := restLocals()
	models := BuildModelTransforms(&locals)

	assert.Equal(t, locals[joint.Root], models[joint.Root])

	// Sum the rest offsets along the chain up to the root.
	for _, id := range []joint.ID{joint.Head, joint.LeftHandIndexEnd, joint.RightToesEnd} {
		var want mgl64.Vec3
		for j := id; j != joint.None; j = j.Parent() {
			want = want.Add(RestOffset(j))
		}
		if diff := cmp.Diff(want, mathutil.Translation(models[id]), approx); diff != "" {
			t.Errorf("%v (-want +got):\n%s", id, diff)
		}
	}
}

func TestRestPoseIsPlausible(t *testing.T) {
	locals := restLocals()
	models := BuildModelTransforms(&locals)
	head := mathutil.Translation(models[joint.Head])
	lfoot := mathutil.Translation(models[joint.LeftFoot])
	rhand := mathutil.Translation(models[joint.RightHand])

	assert.Greater(t, head.Y(), 1.4)
	assert.InDelta(t, 0.03, lfoot.Y(), 0.05)
	assert.Greater(t, lfoot.X(), 0.0, "left is +X")
	assert.Less(t, rhand.X(), 0.0)
	for _, id := range joint.All() {
		if id == joint.Root {
			continue
		}
		assert.NotEqual(t, mgl64.Vec3{}, RestOffset(id), "%v has no offset", id)
	}
}

func TestSyntheticIsDeterministic(t *testing.T) {
	ctx := context.Background()
	a := NewSynthetic(3)
	b := NewSynthetic(3)
	a.DropRate, b.DropRate = 0.3, 0.3
	for i := 0; i < 5; i++ {
		sa, err := a.Next(ctx)
		require.NoError(t, err)
		sb, err := b.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(i+1), sa.Seq)
		assert.Equal(t, sa, sb)
	}
}

func TestSyntheticDropsJoints(t *testing.T) {
	s := NewSynthetic(1)
	snap, err := s.Next(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.Joints, joint.Count)

	s.DropRate = 1
	snap, err = s.Next(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.Joints, 1)
	assert.Contains(t, snap.Joints, joint.Root)

	s.KeepRoot = false
	snap, err = s.Next(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Joints)
}

func TestSyntheticWalksTheCircle(t *testing.T) {
	s := NewSynthetic(1)
	for _, tt := range []float64{0, 1.3, 7.9} {
		snap := s.At(tt)
		p := mathutil.Translation(snap.Anchor)
		assert.InDelta(t, s.PathRadius, mgl64.Vec2{p.X(), p.Z()}.Len(), 1e-9)
		assert.InDelta(t, 0, p.Y(), 1e-12)
	}
}

func TestSyntheticHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewSynthetic(1).Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

type failingSource struct{ n int }

func (f *failingSource) Next(context.Context) (Snapshot, error) {
	f.n++
	if f.n > 2 {
		return Snapshot{}, assert.AnError
	}
	return Snapshot{Seq: uint64(f.n)}, nil
}

func TestStream(t *testing.T) {
	snaps, errc := Stream(context.Background(), &failingSource{})
	var seqs []uint64
	for s := range snaps {
		seqs = append(seqs, s.Seq)
	}
	assert.Equal(t, []uint64{1, 2}, seqs)
	assert.ErrorIs(t, <-errc, assert.AnError)
	_, open := <-errc
	assert.False(t, open)
}

func TestStreamStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	snaps, errc := Stream(ctx, NewSynthetic(1))
	<-snaps
	cancel()
	for range snaps {
	}
	_, open := <-errc
	assert.False(t, open, "no error after cancel")
}
