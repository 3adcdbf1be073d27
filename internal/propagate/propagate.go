// Package propagate writes tracked joint transforms onto their scene slots.
package propagate

import (
	"fmt"

	"bodytrack/internal/binding"
	"bodytrack/internal/joint"
	"bodytrack/internal/logging"
	"bodytrack/internal/skeleton"
)

// Result counts what one Apply did.
type Result struct {
	Updated int // slots written this pass
	Missing int // joints absent from the snapshot, left at their last pose
}

// Propagator copies snapshot joints into the slots of a Binding.
type Propagator struct {
	binding *binding.Binding
}

// New returns a Propagator writing into b's slots.
func New(b *binding.Binding) *Propagator {
	return &Propagator{binding: b}
}

// Apply sets every present joint's slot to Anchor ∘ Model(joint).
// Slots are direct children of the identity origin, so the local transform
// written here is also the slot's world transform. A joint missing from the
// snapshot keeps whatever pose its slot already had.
//
// The only error is an unbound slot lookup, which means Setup was skipped.
func (p *Propagator) Apply(s *skeleton.Snapshot) (Result, error) {
	var res Result
	g := p.binding.Graph()
	for _, id := range joint.All() {
		world, ok := s.World(id)
		if !ok {
			res.Missing++
			continue
		}
		slot, err := p.binding.Slot(id)
		if err != nil {
			return res, fmt.Errorf("propagate: %w", err)
		}
		if err := g.SetLocalTransform(slot, world); err != nil {
			return res, fmt.Errorf("propagate: write %v: %w", id, err)
		}
		res.Updated++
	}
	if res.Missing > 0 {
		logging.Logger().Debug("joints not tracked",
			"seq", s.Seq, "missing", res.Missing, "updated", res.Updated)
	}
	return res, nil
}
