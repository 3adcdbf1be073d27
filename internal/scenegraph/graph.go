// Package scenegraph implements a minimal hierarchical transform graph.
//
// Each node owns a local transform, an ordered list of children and at most
// one parent. A node's world transform is the product of the local transforms
// on the path from its root down to the node.
package scenegraph

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// NodeID identifies a node in a Graph.
type NodeID int

// Nil represents an invalid NodeID.
const Nil NodeID = 0

// ErrNoNode is returned when a NodeID does not belong to the graph.
var ErrNoNode = errors.New("scenegraph: no such node")

// CycleError reports a reparenting that would make a node its own ancestor.
// The graph is left unchanged.
type CycleError struct {
	Parent NodeID
	Child  NodeID
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("scenegraph: adding %d under %d would create a cycle", e.Child, e.Parent)
}

type node struct {
	local    mgl64.Mat4
	parent   NodeID
	children []NodeID
	visual   *Visual
}

// Graph is a node graph.
// It is safe for concurrent use; a single lock guards topology changes
// and transform writes.
type Graph struct {
	mu    sync.RWMutex
	nodes []node // nodes[0] is unused so that Nil is never valid
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{nodes: make([]node, 1, 64)}
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes) - 1
}

// CreateNode allocates a root node with identity local transform.
func (g *Graph) CreateNode() NodeID {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.nodes == nil {
		g.nodes = make([]node, 1, 64)
	}
	g.nodes = append(g.nodes, node{local: mgl64.Ident4()})
	return NodeID(len(g.nodes) - 1)
}

func (g *Graph) valid(id NodeID) bool {
	return id > Nil && int(id) < len(g.nodes)
}

// AddChild makes child the last child of parent, detaching it from any
// previous parent. It fails with *CycleError if parent is child itself or
// one of its descendants.
func (g *Graph) AddChild(parent, child NodeID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.valid(parent) || !g.valid(child) {
		return fmt.Errorf("scenegraph: add %d under %d: %w", child, parent, ErrNoNode)
	}
	for n := parent; n != Nil; n = g.nodes[n].parent {
		if n == child {
			return &CycleError{Parent: parent, Child: child}
		}
	}
	g.detach(child)
	g.nodes[child].parent = parent
	g.nodes[parent].children = append(g.nodes[parent].children, child)
	return nil
}

// Detach removes node from its parent, making it a root.
func (g *Graph) Detach(id NodeID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.valid(id) {
		return fmt.Errorf("scenegraph: detach %d: %w", id, ErrNoNode)
	}
	g.detach(id)
	return nil
}

func (g *Graph) detach(id NodeID) {
	p := g.nodes[id].parent
	if p == Nil {
		return
	}
	sib := g.nodes[p].children
	for i, c := range sib {
		if c == id {
			g.nodes[p].children = append(sib[:i:i], sib[i+1:]...)
			break
		}
	}
	g.nodes[id].parent = Nil
}

// SetLocalTransform overwrites the local transform of a node.
// The transform is not validated.
func (g *Graph) SetLocalTransform(id NodeID, m mgl64.Mat4) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.valid(id) {
		return fmt.Errorf("scenegraph: set transform of %d: %w", id, ErrNoNode)
	}
	g.nodes[id].local = m
	return nil
}

// LocalTransform returns the local transform of a node.
func (g *Graph) LocalTransform(id NodeID) (mgl64.Mat4, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.valid(id) {
		return mgl64.Mat4{}, fmt.Errorf("scenegraph: transform of %d: %w", id, ErrNoNode)
	}
	return g.nodes[id].local, nil
}

// WorldTransform returns the product of the local transforms from the root
// of id down to id. It costs O(depth).
func (g *Graph) WorldTransform(id NodeID) (mgl64.Mat4, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.valid(id) {
		return mgl64.Mat4{}, fmt.Errorf("scenegraph: world transform of %d: %w", id, ErrNoNode)
	}
	w := g.nodes[id].local
	for p := g.nodes[id].parent; p != Nil; p = g.nodes[p].parent {
		w = g.nodes[p].local.Mul4(w)
	}
	return w, nil
}

// Parent returns the parent of id, or Nil for a root.
func (g *Graph) Parent(id NodeID) (NodeID, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.valid(id) {
		return Nil, fmt.Errorf("scenegraph: parent of %d: %w", id, ErrNoNode)
	}
	return g.nodes[id].parent, nil
}

// Children returns a copy of the ordered child list of id.
func (g *Graph) Children(id NodeID) ([]NodeID, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.valid(id) {
		return nil, fmt.Errorf("scenegraph: children of %d: %w", id, ErrNoNode)
	}
	return append([]NodeID(nil), g.nodes[id].children...), nil
}
