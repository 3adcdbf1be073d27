package raster

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Mesh is an indexed triangle list in model space.
type Mesh struct {
	Verts []mgl64.Vec3
	Tris  [][3]int
}

// UnitCube is a cube of edge 1 centred on the origin.
var UnitCube = func() Mesh {
	var m Mesh
	for i := 0; i < 8; i++ {
		m.Verts = append(m.Verts, mgl64.Vec3{
			float64(i&1) - 0.5,
			float64(i>>1&1) - 0.5,
			float64(i>>2&1) - 0.5,
		})
	}
	// Two triangles per face, outward winding.
	m.Tris = [][3]int{
		{0, 2, 3}, {0, 3, 1}, // -Z
		{4, 5, 7}, {4, 7, 6}, // +Z
		{0, 1, 5}, {0, 5, 4}, // -Y
		{2, 6, 7}, {2, 7, 3}, // +Y
		{0, 4, 6}, {0, 6, 2}, // -X
		{1, 3, 7}, {1, 7, 5}, // +X
	}
	return m
}()

// UnitSphere is a latitude/longitude sphere of diameter 1.
var UnitSphere = newSphere(8, 12)

func newSphere(rings, segments int) Mesh {
	var m Mesh
	for r := 0; r <= rings; r++ {
		phi := math.Pi * float64(r) / float64(rings)
		for s := 0; s < segments; s++ {
			theta := 2 * math.Pi * float64(s) / float64(segments)
			m.Verts = append(m.Verts, mgl64.Vec3{
				0.5 * math.Sin(phi) * math.Cos(theta),
				0.5 * math.Cos(phi),
				0.5 * math.Sin(phi) * math.Sin(theta),
			})
		}
	}
	for r := 0; r < rings; r++ {
		for s := 0; s < segments; s++ {
			a := r*segments + s
			b := r*segments + (s+1)%segments
			c := a + segments
			d := b + segments
			if r > 0 {
				m.Tris = append(m.Tris, [3]int{a, b, c})
			}
			if r < rings-1 {
				m.Tris = append(m.Tris, [3]int{b, d, c})
			}
		}
	}
	return m
}
