package raster

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"bodytrack/internal/mathutil"
)

// DefaultFOV is the vertical field of view in degrees.
const DefaultFOV = 50.0

// Camera is a perspective pinhole looking from Eye at Target.
type Camera struct {
	Eye    mgl64.Vec3
	Target mgl64.Vec3
	Up     mgl64.Vec3
	FOV    float64 // vertical, degrees
	Near   float64 // metres
}

// DefaultCamera frames a standing figure walking within ~2 m of the origin.
func DefaultCamera() Camera {
	return Camera{
		Eye:    mgl64.Vec3{0, 1.8, 5},
		Target: mgl64.Vec3{0, 0.9, 0},
		Up:     mgl64.Vec3{0, 1, 0},
		FOV:    DefaultFOV,
		Near:   0.05,
	}
}

// Forward returns the unit view direction.
func (c Camera) Forward() mgl64.Vec3 {
	return c.Target.Sub(c.Eye).Normalize()
}

// Right returns the unit screen-right direction in world space.
func (c Camera) Right() mgl64.Vec3 {
	return c.Forward().Cross(c.up()).Normalize()
}

func (c Camera) up() mgl64.Vec3 {
	if c.Up.Len() < 1e-9 {
		return mgl64.Vec3{0, 1, 0}
	}
	return c.Up
}

// Projector maps world points to a w×h raster.
type Projector struct {
	view  mgl64.Mat4
	focal float64 // pixels per unit of x/depth
	half  mgl64.Vec2
	near  float64
}

// Projector builds a projector for a w×h target.
func (c Camera) Projector(w, h int) Projector {
	fov := c.FOV
	if fov <= 0 {
		fov = DefaultFOV
	}
	near := c.Near
	if near <= 0 {
		near = 0.05
	}
	halfFOV := mathutil.Deg2Rad(fov / 2)
	return Projector{
		view:  mgl64.LookAtV(c.Eye, c.Target, c.up()),
		focal: float64(h) / 2 / math.Tan(halfFOV),
		half:  mgl64.Vec2{float64(w) / 2, float64(h) / 2},
		near:  near,
	}
}

// Project returns the screen position of p with Z set to 1/depth.
// ok is false for points closer than the near plane or behind the camera.
func (pr Projector) Project(p mgl64.Vec3) (Vertex, bool) {
	v := pr.view.Mul4x1(p.Vec4(1))
	depth := -v[2]
	if depth < pr.near {
		return Vertex{}, false
	}
	inv := 1 / depth
	return Vertex{
		X: pr.half[0] + v[0]*pr.focal*inv,
		Y: pr.half[1] - v[1]*pr.focal*inv,
		Z: inv,
	}, true
}
