package raster

import (
	"image"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vertex is a projected vertex: screen position, inverse view depth and
// texture coordinates.
type Vertex struct {
	X, Y, Z float64
	U, V    float64
}

// Triangle is one screen-space triangle ready for rasterization.
type Triangle struct {
	V      [3]Vertex
	Normal mgl64.Vec3 // unit world-space face normal, used when Lit
	Color  color.NRGBA
	Tex    *image.NRGBA // sampled instead of Color when set
	Lit    bool
}

// RasterizeTriangle rasterizes a single triangle with optional texture
// mapping, z-buffer and flat lighting with ACES tone mapping.
//
// Designed for zero allocation in the inner loop. Texture coordinates are
// interpolated affinely in screen space.
func RasterizeTriangle(fb *FrameBuffer, t *Triangle, lc *LightConfig) {
	x0, y0, z0 := t.V[0].X, t.V[0].Y, t.V[0].Z
	x1, y1, z1 := t.V[1].X, t.V[1].Y, t.V[1].Z
	x2, y2, z2 := t.V[2].X, t.V[2].Y, t.V[2].Z

	shade := 1.0
	if t.Lit {
		shade = lc.ComputeShade(t.Normal)
	}

	// Bounding box
	minX := int(math.Floor(math.Min(math.Min(x0, x1), x2)))
	maxX := int(math.Ceil(math.Max(math.Max(x0, x1), x2)))
	minY := int(math.Floor(math.Min(math.Min(y0, y1), y2)))
	maxY := int(math.Ceil(math.Max(math.Max(y0, y1), y2)))

	if minX < 0 {
		minX = 0
	}
	if maxX >= fb.Width {
		maxX = fb.Width - 1
	}
	if minY < 0 {
		minY = 0
	}
	if maxY >= fb.Height {
		maxY = fb.Height - 1
	}
	if minX > maxX || minY > maxY {
		return
	}

	// Barycentric setup
	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-8 && det < 1e-8 {
		return
	}
	invDet := 1.0 / det

	// Precompute edge deltas
	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	// Untextured triangles shade once.
	cr, cg, cb, ca := t.Color.R, t.Color.G, t.Color.B, t.Color.A
	if t.Tex == nil && t.Lit {
		cr, cg, cb = lc.shadePixel(cr, cg, cb, shade)
	}

	for sy := minY; sy <= maxY; sy++ {
		// Sample at pixel centres.
		dsy := float64(sy) + 0.5 - y2
		rowOff := sy * fb.Width
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) + 0.5 - x2
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1

			if w0 < -0.001 || w1 < -0.001 || w2 < -0.001 {
				continue
			}

			z := w0*z0 + w1*z1 + w2*z2
			zIdx := rowOff + sx
			if z <= fb.ZBuf[zIdx] {
				continue
			}

			r, g, b, a := cr, cg, cb, ca
			if t.Tex != nil {
				u := w0*t.V[0].U + w1*t.V[1].U + w2*t.V[2].U
				v := w0*t.V[0].V + w1*t.V[1].V + w2*t.V[2].V
				r, g, b, a = SampleTexture(t.Tex, u, v)
				// Skip transparent texels
				if a < 8 {
					continue
				}
				if t.Lit {
					r, g, b = lc.shadePixel(r, g, b, shade)
				}
			}
			fb.ZBuf[zIdx] = z
			blend(fb.Color[zIdx*4:zIdx*4+4], r, g, b, a)
		}
	}
}

// DrawLine draws a depth-tested line of the given pixel width between two
// projected points.
func DrawLine(fb *FrameBuffer, a, b Vertex, width int, c color.NRGBA) {
	dx, dy := b.X-a.X, b.Y-a.Y
	steps := int(math.Ceil(math.Max(math.Abs(dx), math.Abs(dy))))
	if steps < 1 {
		steps = 1
	}
	half := width / 2
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		cx := int(a.X + dx*t)
		cy := int(a.Y + dy*t)
		z := a.Z + (b.Z-a.Z)*t
		for oy := -half; oy < width-half; oy++ {
			for ox := -half; ox < width-half; ox++ {
				x, y := cx+ox, cy+oy
				if x < 0 || y < 0 || x >= fb.Width || y >= fb.Height {
					continue
				}
				zIdx := y*fb.Width + x
				if z < fb.ZBuf[zIdx] {
					continue
				}
				fb.ZBuf[zIdx] = z
				blend(fb.Color[zIdx*4:zIdx*4+4], c.R, c.G, c.B, c.A)
			}
		}
	}
}

// blend composites a straight-alpha color over an opaque-or-not pixel.
func blend(dst []uint8, r, g, b, a uint8) {
	if a == 255 {
		dst[0], dst[1], dst[2], dst[3] = r, g, b, 255
		return
	}
	fa := float64(a) / 255
	dst[0] = clamp255(float64(r)*fa + float64(dst[0])*(1-fa))
	dst[1] = clamp255(float64(g)*fa + float64(dst[1])*(1-fa))
	dst[2] = clamp255(float64(b)*fa + float64(dst[2])*(1-fa))
	dst[3] = clamp255(float64(a) + float64(dst[3])*(1-fa))
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
