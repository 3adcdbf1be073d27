package skeleton

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"bodytrack/internal/joint"
	"bodytrack/internal/mathutil"
)

// Synthetic generates a figure walking around a circle.
// It is deterministic for a given seed: time advances by 1/FrameRate per
// snapshot rather than following the wall clock.
type Synthetic struct {
	// Configuration
	FrameRate  float64 // snapshots per second of simulated time
	PathRadius float64 // metres, radius of the walking circle
	WalkSpeed  float64 // metres per second along the circle
	StrideRate float64 // gait cycles per second
	DropRate   float64 // probability that a joint is omitted from a snapshot
	KeepRoot   bool    // never omit the root joint
	Pace       bool    // block in Next so snapshots arrive at FrameRate

	origin      time.Time
	mu          sync.Mutex
	seq         uint64
	rng         *rand.Rand
	lastEmitted time.Time
}

// NewSynthetic creates a generator with walking defaults.
func NewSynthetic(seed int64) *Synthetic {
	return &Synthetic{
		FrameRate:  30,
		PathRadius: 1.5,
		WalkSpeed:  0.8,
		StrideRate: 0.9,
		KeepRoot:   true,
		origin:     time.Unix(0, 0).UTC(),
		rng:        rand.New(rand.NewSource(seed)),
	}
}

// Next returns the next snapshot.
func (s *Synthetic) Next(ctx context.Context) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Pace && s.FrameRate > 0 {
		if err := s.wait(ctx); err != nil {
			return Snapshot{}, err
		}
	}
	s.seq++
	t := float64(s.seq-1) / s.rate()
	snap := s.At(t)
	snap.Seq = s.seq
	for _, id := range joint.All() {
		if s.DropRate <= 0 || (s.KeepRoot && id == joint.Root) {
			continue
		}
		if s.rng.Float64() < s.DropRate {
			delete(snap.Joints, id)
		}
	}
	return snap, nil
}

func (s *Synthetic) wait(ctx context.Context) error {
	period := time.Duration(float64(time.Second) / s.FrameRate)
	if !s.lastEmitted.IsZero() {
		if d := period - time.Since(s.lastEmitted); d > 0 {
			timer := time.NewTimer(d)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	s.lastEmitted = time.Now()
	return nil
}

func (s *Synthetic) rate() float64 {
	if s.FrameRate <= 0 {
		return 30
	}
	return s.FrameRate
}

// At returns the complete pose at simulated time t seconds.
func (s *Synthetic) At(t float64) Snapshot {
	angle := 0.0
	if s.PathRadius > 0 {
		angle = s.WalkSpeed * t / s.PathRadius
	}
	pos := mgl64.Vec3{s.PathRadius * math.Cos(angle), 0, s.PathRadius * math.Sin(angle)}
	// Face along the tangent of the circle (counter-clockwise seen from above).
	yaw := -angle
	anchor := mathutil.FromQuatTranslation(mathutil.EulerToQuat(0, yaw, 0), pos)

	phase := 2 * math.Pi * s.StrideRate * t
	locals := restLocals()
	swing := func(id joint.ID, q mgl64.Quat) {
		off := RestOffset(id)
		locals[id] = mathutil.FromQuatTranslation(q, off)
	}
	hip := 0.45 * math.Sin(phase)
	swing(joint.LeftUpLeg, mathutil.EulerToQuat(hip, 0, 0))
	swing(joint.RightUpLeg, mathutil.EulerToQuat(-hip, 0, 0))
	swing(joint.LeftLeg, mathutil.EulerToQuat(-0.5*math.Max(0, math.Sin(phase+math.Pi/2)), 0, 0))
	swing(joint.RightLeg, mathutil.EulerToQuat(-0.5*math.Max(0, math.Sin(phase-math.Pi/2)), 0, 0))
	swing(joint.LeftArm, mathutil.EulerToQuat(-0.6*math.Sin(phase), 0, -1.2))
	swing(joint.RightArm, mathutil.EulerToQuat(0.6*math.Sin(phase), 0, 1.2))
	swing(joint.LeftForearm, mathutil.EulerToQuat(0, -0.3, 0))
	swing(joint.RightForearm, mathutil.EulerToQuat(0, 0.3, 0))
	swing(joint.Spine1, mathutil.EulerToQuat(0, 0.1*math.Sin(phase), 0))
	swing(joint.Head, mathutil.EulerToQuat(0.05*math.Sin(2*phase), 0, 0))

	models := BuildModelTransforms(&locals)
	joints := make(map[joint.ID]mgl64.Mat4, joint.Count)
	for _, id := range joint.All() {
		joints[id] = models[id]
	}
	return Snapshot{
		Time:   s.origin.Add(time.Duration(t * float64(time.Second))),
		Anchor: anchor,
		Joints: joints,
	}
}

func restLocals() [joint.Count]mgl64.Mat4 {
	var locals [joint.Count]mgl64.Mat4
	for _, id := range joint.All() {
		off := RestOffset(id)
		locals[id] = mgl64.Translate3D(off[0], off[1], off[2])
	}
	return locals
}
