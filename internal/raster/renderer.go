// Package raster draws the scene graph in software.
package raster

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/go-gl/mathgl/mgl64"

	"bodytrack/internal/mathutil"
	"bodytrack/internal/postprocess"
	"bodytrack/internal/scenegraph"
)

// Renderer draws every visual in a graph from a fixed camera.
type Renderer struct {
	Camera      Camera
	Light       LightConfig
	Background  color.RGBA
	Supersample int // render at this multiple of the target size, then downsample
	// Bones are node pairs joined by a line, typically parent and child
	// joint slots.
	Bones     [][2]scenegraph.NodeID
	BoneColor color.NRGBA
	// Caption, when set, is drawn in the top-left corner after downsampling.
	Caption func() []string
}

// NewRenderer returns a renderer with the default camera and lighting.
func NewRenderer() *Renderer {
	cam := DefaultCamera()
	return &Renderer{
		Camera:      cam,
		Light:       DefaultLightConfig(cam.Forward()),
		Background:  color.RGBA{24, 26, 33, 255},
		Supersample: 1,
		BoneColor:   color.NRGBA{200, 200, 210, 255},
	}
}

type item struct {
	world  mgl64.Mat4
	visual scenegraph.Visual
}

// Render draws g into dst, replacing its contents.
func (r *Renderer) Render(ctx context.Context, g *scenegraph.Graph, dst *image.RGBA) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("raster: render: %w", err)
	}
	b := dst.Bounds()
	if b.Empty() {
		return fmt.Errorf("raster: render: empty target %v", b)
	}
	ss := r.Supersample
	if ss < 1 {
		ss = 1
	}

	// Copy out what to draw so the graph lock is not held while rasterizing.
	var items []item
	g.Walk(func(_ scenegraph.NodeID, world mgl64.Mat4, v *scenegraph.Visual) bool {
		if v != nil {
			items = append(items, item{world: world, visual: *v})
		}
		return true
	})

	fb := NewFrameBuffer(b.Dx()*ss, b.Dy()*ss)
	fb.Clear(r.Background)
	proj := r.Camera.Projector(fb.Width, fb.Height)

	for _, it := range items {
		switch it.visual.Shape {
		case scenegraph.Box:
			r.drawMesh(fb, proj, &UnitCube, it)
		case scenegraph.Sphere:
			r.drawMesh(fb, proj, &UnitSphere, it)
		case scenegraph.Billboard:
			r.drawBillboard(fb, proj, it)
		}
	}
	r.drawBones(fb, proj, g, ss)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("raster: render: %w", err)
	}

	out := postprocess.Downsample(fb.Image(), b.Dx(), b.Dy())
	draw.Draw(dst, b, out, image.Point{}, draw.Src)

	if r.Caption != nil {
		DrawText(dst, b.Min.X+6, b.Min.Y+6, r.Caption(), color.White)
	}
	return nil
}

func (r *Renderer) drawMesh(fb *FrameBuffer, proj Projector, m *Mesh, it item) {
	s := it.visual.Size
	model := it.world.Mul4(mgl64.Scale3D(s, s, s))

	world := make([]mgl64.Vec3, len(m.Verts))
	screen := make([]Vertex, len(m.Verts))
	visible := make([]bool, len(m.Verts))
	for i, v := range m.Verts {
		world[i] = model.Mul4x1(v.Vec4(1)).Vec3()
		screen[i], visible[i] = proj.Project(world[i])
	}

	tri := Triangle{Color: it.visual.Color, Lit: true}
	for _, t := range m.Tris {
		if !visible[t[0]] || !visible[t[1]] || !visible[t[2]] {
			continue
		}
		n := world[t[1]].Sub(world[t[0]]).Cross(world[t[2]].Sub(world[t[0]]))
		if n.Len() < 1e-12 {
			continue
		}
		n = n.Normalize()
		if n.Dot(r.Camera.Eye.Sub(world[t[0]])) < 0 {
			n = n.Mul(-1)
		}
		tri.Normal = n
		tri.V = [3]Vertex{screen[t[0]], screen[t[1]], screen[t[2]]}
		RasterizeTriangle(fb, &tri, &r.Light)
	}
}

// drawBillboard draws the sprite upright, standing on the node's position
// and turned to face the camera.
func (r *Renderer) drawBillboard(fb *FrameBuffer, proj Projector, it item) {
	h := it.visual.Size
	w := h * 0.5
	if sp := it.visual.Sprite; sp != nil && sp.Bounds().Dy() > 0 {
		w = h * float64(sp.Bounds().Dx()) / float64(sp.Bounds().Dy())
	}
	base := mathutil.Translation(it.world)
	right := r.Camera.Right().Mul(w / 2)
	up := mgl64.Vec3{0, h, 0}

	corners := [4]mgl64.Vec3{
		base.Sub(right).Add(up), // top-left
		base.Add(right).Add(up), // top-right
		base.Add(right),         // bottom-right
		base.Sub(right),         // bottom-left
	}
	uvs := [4][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	var vs [4]Vertex
	for i, c := range corners {
		v, ok := proj.Project(c)
		if !ok {
			return
		}
		v.U, v.V = uvs[i][0], uvs[i][1]
		vs[i] = v
	}

	tri := Triangle{Color: it.visual.Color, Tex: it.visual.Sprite}
	if tri.Tex != nil {
		// Pre-shrink large sprites so bilinear sampling does not alias.
		pw := int(vs[1].X - vs[0].X + 0.5)
		ph := int(vs[3].Y - vs[0].Y + 0.5)
		if pw > 0 && ph > 0 && (pw < tri.Tex.Bounds().Dx()/2 || ph < tri.Tex.Bounds().Dy()/2) {
			tri.Tex = postprocess.ResizeSprite(tri.Tex, pw, ph)
		}
	}
	tri.V = [3]Vertex{vs[0], vs[1], vs[2]}
	RasterizeTriangle(fb, &tri, &r.Light)
	tri.V = [3]Vertex{vs[0], vs[2], vs[3]}
	RasterizeTriangle(fb, &tri, &r.Light)
}

func (r *Renderer) drawBones(fb *FrameBuffer, proj Projector, g *scenegraph.Graph, width int) {
	for _, pair := range r.Bones {
		wa, err := g.WorldTransform(pair[0])
		if err != nil {
			continue
		}
		wb, err := g.WorldTransform(pair[1])
		if err != nil {
			continue
		}
		a, okA := proj.Project(mathutil.Translation(wa))
		b, okB := proj.Project(mathutil.Translation(wb))
		if okA && okB {
			DrawLine(fb, a, b, width, r.BoneColor)
		}
	}
}
