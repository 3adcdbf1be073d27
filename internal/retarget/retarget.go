// Package retarget drives the character root from the skeleton anchor.
package retarget

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"bodytrack/internal/mathutil"
	"bodytrack/internal/skeleton"
)

// Poser is the character side of retargeting.
type Poser interface {
	SetPose(pos mgl64.Vec3, rot mgl64.Quat) error
}

// Retargeter copies the anchor's position and orientation onto a Poser.
type Retargeter struct {
	target Poser
}

// New returns a Retargeter driving target.
func New(target Poser) *Retargeter {
	return &Retargeter{target: target}
}

// Apply decomposes s.Anchor and writes it onto the target. It must run in
// the same update as the joint propagation for s so the character and the
// markers agree within a frame.
func (r *Retargeter) Apply(s *skeleton.Snapshot) error {
	pos, rot := mathutil.Decompose(s.Anchor)
	if err := r.target.SetPose(pos, rot); err != nil {
		return fmt.Errorf("retarget: %w", err)
	}
	return nil
}
