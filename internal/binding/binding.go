// Package binding attaches one scene node to every skeletal joint and
// decorates the main joints with colored markers.
package binding

import (
	"fmt"
	"image/color"
	"math/rand"
	"time"

	"bodytrack/internal/joint"
	"bodytrack/internal/mathutil"
	"bodytrack/internal/scenegraph"
)

// Marker dimensions in metres.
const (
	BoxSize      = 0.2
	SphereRadius = 0.1
)

// UnknownJointError is returned when a slot is looked up before Setup, or
// for an ID outside the joint enumeration.
type UnknownJointError struct {
	Joint joint.ID
}

func (e *UnknownJointError) Error() string {
	return fmt.Sprintf("binding: no slot for joint %v (%d)", e.Joint, uint8(e.Joint))
}

// Options controls marker decoration.
type Options struct {
	// Shape of the decorative markers; Box or Sphere.
	Shape scenegraph.Shape
	// Joints that receive a marker. Nil means joint.Main().
	Markers []joint.ID
}

// Binding maps each joint to its slot node.
// The origin anchor owns every slot as a direct child.
type Binding struct {
	graph   *scenegraph.Graph
	origin  scenegraph.NodeID
	slots   [joint.Count]scenegraph.NodeID
	markers map[joint.ID]scenegraph.NodeID
	ready   bool
}

// Setup creates the origin anchor at the world origin, one slot per joint
// and a random-hue marker under the slot of each marker joint.
// Hues are drawn from rng once; they never change afterwards.
// A nil rng uses a time-seeded source.
func Setup(g *scenegraph.Graph, rng *rand.Rand, opts Options) (*Binding, error) {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	b := &Binding{
		graph:   g,
		origin:  g.CreateNode(),
		markers: make(map[joint.ID]scenegraph.NodeID),
	}
	for _, id := range joint.All() {
		slot := g.CreateNode()
		if err := g.AddChild(b.origin, slot); err != nil {
			return nil, fmt.Errorf("binding: attach slot %v: %w", id, err)
		}
		b.slots[id] = slot
	}

	marks := opts.Markers
	if marks == nil {
		marks = joint.Main()
	}
	for _, id := range marks {
		if !id.Valid() {
			return nil, &UnknownJointError{Joint: id}
		}
		m := g.CreateNode()
		if err := g.SetVisual(m, NewMarker(opts.Shape, RandomHue(rng))); err != nil {
			return nil, fmt.Errorf("binding: marker %v: %w", id, err)
		}
		if err := g.AddChild(b.slots[id], m); err != nil {
			return nil, fmt.Errorf("binding: attach marker %v: %w", id, err)
		}
		b.markers[id] = m
	}
	b.ready = true
	return b, nil
}

// Origin returns the origin anchor.
func (b *Binding) Origin() scenegraph.NodeID { return b.origin }

// Graph returns the graph the binding was set up in.
func (b *Binding) Graph() *scenegraph.Graph { return b.graph }

// Slot returns the node dedicated to id.
func (b *Binding) Slot(id joint.ID) (scenegraph.NodeID, error) {
	if b == nil || !b.ready || !id.Valid() {
		return scenegraph.Nil, &UnknownJointError{Joint: id}
	}
	return b.slots[id], nil
}

// Marker returns the decorative marker attached under id's slot.
func (b *Binding) Marker(id joint.ID) (scenegraph.NodeID, bool) {
	if b == nil {
		return scenegraph.Nil, false
	}
	m, ok := b.markers[id]
	return m, ok
}

// Bones returns a (parent slot, child slot) pair for every joint with a
// parent, in joint order.
func (b *Binding) Bones() [][2]scenegraph.NodeID {
	if b == nil || !b.ready {
		return nil
	}
	var out [][2]scenegraph.NodeID
	for _, id := range joint.All() {
		if p := id.Parent(); p != joint.None {
			out = append(out, [2]scenegraph.NodeID{b.slots[p], b.slots[id]})
		}
	}
	return out
}

// NewMarker returns a solid marker visual of the given shape.
func NewMarker(shape scenegraph.Shape, c color.NRGBA) *scenegraph.Visual {
	size := BoxSize
	if shape == scenegraph.Sphere {
		size = 2 * SphereRadius
	} else {
		shape = scenegraph.Box
	}
	return &scenegraph.Visual{Shape: shape, Color: c, Size: size}
}

// RandomHue returns a fully saturated, fully bright color with a uniformly
// random hue.
func RandomHue(rng *rand.Rand) color.NRGBA {
	r, g, b := mathutil.HSVToRGB(rng.Float64()*360, 1, 1)
	return color.NRGBA{
		R: uint8(r*255 + 0.5),
		G: uint8(g*255 + 0.5),
		B: uint8(b*255 + 0.5),
		A: 255,
	}
}
