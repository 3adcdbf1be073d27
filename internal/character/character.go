// Package character places the rigged character in the scene graph.
// Only the root transform is driven here; the sprite is drawn as a billboard.
package character

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl64"

	"bodytrack/internal/mathutil"
	"bodytrack/internal/scenegraph"
	"bodytrack/internal/texture"
)

// DefaultHeight is the billboard height in metres.
const DefaultHeight = 1.7

// AssetLoadError reports a character asset that could not be loaded.
// Nothing can be retargeted without it, so callers treat it as fatal.
type AssetLoadError struct {
	Name string
	Err  error
}

func (e *AssetLoadError) Error() string {
	return fmt.Sprintf("character: load asset %q: %v", e.Name, e.Err)
}

func (e *AssetLoadError) Unwrap() error { return e.Err }

// Load resolves and decodes the character asset.
func Load(r texture.Resolver, name string) (*image.NRGBA, error) {
	if name == "" {
		return nil, &AssetLoadError{Name: name, Err: errors.New("no asset configured")}
	}
	img, err := r.Resolve(name)
	if err != nil {
		return nil, &AssetLoadError{Name: name, Err: err}
	}
	if img == nil {
		return nil, &AssetLoadError{Name: name, Err: errors.New("empty image")}
	}
	return img, nil
}

// Entity is the character instance. Its root node carries the sprite.
type Entity struct {
	graph *scenegraph.Graph
	root  scenegraph.NodeID
	scale mgl64.Vec3
}

// New adds a character root node to g. The root starts at the origin
// with unit scale.
func New(g *scenegraph.Graph, sprite *image.NRGBA, height float64) (*Entity, error) {
	if height <= 0 {
		height = DefaultHeight
	}
	e := &Entity{graph: g, root: g.CreateNode(), scale: mgl64.Vec3{1, 1, 1}}
	v := &scenegraph.Visual{
		Shape:  scenegraph.Billboard,
		Color:  colorWhite,
		Size:   height,
		Sprite: sprite,
	}
	if err := g.SetVisual(e.root, v); err != nil {
		return nil, fmt.Errorf("character: %w", err)
	}
	return e, nil
}

// Root returns the character's root node.
func (e *Entity) Root() scenegraph.NodeID { return e.root }

// Scale returns the fixed root scale.
func (e *Entity) Scale() mgl64.Vec3 { return e.scale }

// SetPose writes position and orientation onto the root, keeping scale.
func (e *Entity) SetPose(pos mgl64.Vec3, rot mgl64.Quat) error {
	if err := e.graph.SetLocalTransform(e.root, mathutil.TRS(pos, rot, e.scale)); err != nil {
		return fmt.Errorf("character: set pose: %w", err)
	}
	return nil
}

// Position returns the root's world position.
func (e *Entity) Position() (mgl64.Vec3, error) {
	w, err := e.graph.WorldTransform(e.root)
	if err != nil {
		return mgl64.Vec3{}, fmt.Errorf("character: position: %w", err)
	}
	return mathutil.Translation(w), nil
}

// Orientation returns the root's world orientation.
func (e *Entity) Orientation() (mgl64.Quat, error) {
	w, err := e.graph.WorldTransform(e.root)
	if err != nil {
		return mgl64.Quat{}, fmt.Errorf("character: orientation: %w", err)
	}
	_, q := mathutil.Decompose(w)
	return q, nil
}

var colorWhite = color.NRGBA{255, 255, 255, 255}
