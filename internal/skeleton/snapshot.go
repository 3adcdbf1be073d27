// Package skeleton defines the per-frame tracking result consumed by the
// scene and a synthetic source that produces it.
package skeleton

import (
	"context"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"bodytrack/internal/joint"
	"bodytrack/internal/mathutil"
)

// Snapshot is one frame's tracking result.
// Joints holds model-space transforms relative to the skeleton root; a joint
// missing from the map was not tracked this frame and must not be read as
// identity.
type Snapshot struct {
	Seq    uint64
	Time   time.Time
	Anchor mgl64.Mat4
	Joints map[joint.ID]mgl64.Mat4
}

// World returns Anchor ∘ Model(id): the model-space transform followed by
// the anchor. ok is false when id is absent from the snapshot.
func (s *Snapshot) World(id joint.ID) (m mgl64.Mat4, ok bool) {
	model, ok := s.Joints[id]
	if !ok {
		return mgl64.Mat4{}, false
	}
	return mathutil.Compose(s.Anchor, model), true
}

// Source delivers snapshots at sensor rate.
type Source interface {
	// Next blocks until the next snapshot is available or ctx is done.
	Next(ctx context.Context) (Snapshot, error)
}

// Stream pulls snapshots from src onto the returned channel until ctx is
// done or src fails. The channel is closed on return; a source error other
// than ctx ending is sent on errc, which is then closed.
func Stream(ctx context.Context, src Source) (snaps <-chan Snapshot, errc <-chan error) {
	out := make(chan Snapshot)
	ec := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(ec)
		for {
			s, err := src.Next(ctx)
			if err != nil {
				if ctx.Err() == nil {
					ec <- err
				}
				return
			}
			select {
			case out <- s:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, ec
}
