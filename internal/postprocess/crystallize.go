package postprocess

import (
	"context"
	"image"
	"math"
)

// crystallize replaces the image with Voronoi cells. One seed sits in each
// cell of a radius-sized grid, jittered by a hash of the cell coordinates,
// and every pixel takes the source color under its nearest seed.
func crystallize(ctx context.Context, c FilterConfig, src *image.RGBA) (*image.RGBA, error) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	r := c.Radius

	for y := 0; y < h; y++ {
		if y%32 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		py := float64(y) + 0.5
		cy := int(math.Floor(py / r))
		for x := 0; x < w; x++ {
			px := float64(x) + 0.5
			cx := int(math.Floor(px / r))

			best := math.Inf(1)
			var sx, sy float64
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					kx, ky := seed(cx+dx, cy+dy, r)
					d := (kx-px)*(kx-px) + (ky-py)*(ky-py)
					if d < best {
						best, sx, sy = d, kx, ky
					}
				}
			}

			ix := clampInt(int(sx), 0, w-1)
			iy := clampInt(int(sy), 0, h-1)
			si := src.PixOffset(b.Min.X+ix, b.Min.Y+iy)
			di := dst.PixOffset(x, y)
			copy(dst.Pix[di:di+4], src.Pix[si:si+4])
		}
	}
	return dst, nil
}

// seed returns the jittered seed point of grid cell (cx, cy).
func seed(cx, cy int, r float64) (float64, float64) {
	h := hash2(cx, cy)
	jx := float64(h&0xffff) / 0x10000
	jy := float64(h>>16&0xffff) / 0x10000
	return (float64(cx) + jx) * r, (float64(cy) + jy) * r
}

// hash2 mixes two integers into 32 well-distributed bits.
func hash2(x, y int) uint32 {
	h := uint32(int32(x))*0x8da6b343 ^ uint32(int32(y))*0xd8163841
	h ^= h >> 15
	h *= 0x2c1b3c6d
	h ^= h >> 12
	h *= 0x297a2d39
	h ^= h >> 15
	return h
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
