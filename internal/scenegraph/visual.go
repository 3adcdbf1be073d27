package scenegraph

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// Shape selects how a renderer draws a Visual.
type Shape int

const (
	Box Shape = iota
	Sphere
	// Billboard draws Sprite as a camera-facing quad.
	Billboard
)

func (s Shape) String() string {
	switch s {
	case Box:
		return "box"
	case Sphere:
		return "sphere"
	case Billboard:
		return "billboard"
	}
	return fmt.Sprintf("Shape(%d)", int(s))
}

// ParseMarkerShape accepts "box" or "sphere", the shapes a joint marker
// may take.
func ParseMarkerShape(s string) (Shape, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "box", "":
		return Box, nil
	case "sphere":
		return Sphere, nil
	}
	return 0, fmt.Errorf("scenegraph: unknown marker shape %q", s)
}

// Visual is the content attached to a node.
// Size is the box edge, sphere diameter or billboard height, in metres.
type Visual struct {
	Shape  Shape
	Color  color.NRGBA
	Size   float64
	Sprite *image.NRGBA
}

// SetVisual attaches v to a node. A nil v clears it.
func (g *Graph) SetVisual(id NodeID, v *Visual) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.valid(id) {
		return fmt.Errorf("scenegraph: set visual of %d: %w", id, ErrNoNode)
	}
	g.nodes[id].visual = v
	return nil
}

// Visual returns the content attached to a node, if any.
func (g *Graph) Visual(id NodeID) (*Visual, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.valid(id) {
		return nil, fmt.Errorf("scenegraph: visual of %d: %w", id, ErrNoNode)
	}
	return g.nodes[id].visual, nil
}

// Walk calls fn for every node, roots first and then breadth-first, with the
// node's world transform and its visual (nil when none is attached).
// If fn returns false, Walk returns immediately.
// The graph is read-locked for the duration of the walk, so fn must not
// modify it.
func (g *Graph) Walk(fn func(id NodeID, world mgl64.Mat4, v *Visual) bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	type item struct {
		id    NodeID
		world mgl64.Mat4
	}
	que := make([]item, 0, len(g.nodes))
	for i := 1; i < len(g.nodes); i++ {
		if g.nodes[i].parent == Nil {
			que = append(que, item{NodeID(i), g.nodes[i].local})
		}
	}
	for len(que) > 0 {
		it := que[0]
		que = que[1:]
		n := &g.nodes[it.id]
		if !fn(it.id, it.world, n.visual) {
			return
		}
		for _, c := range n.children {
			que = append(que, item{c, it.world.Mul4(g.nodes[c].local)})
		}
	}
}
