package postprocess

import (
	"context"
	"image"
	"math"

	"golang.org/x/image/draw"
)

// pixellate averages the image down to one sample per Scale×Scale block
// and scales it back up without interpolation.
func pixellate(_ context.Context, c FilterConfig, src *image.RGBA) (*image.RGBA, error) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	sw := int(math.Ceil(float64(w) / c.Scale))
	sh := int(math.Ceil(float64(h) / c.Scale))
	if sw < 1 {
		sw = 1
	}
	if sh < 1 {
		sh = 1
	}

	small := image.NewRGBA(image.Rect(0, 0, sw, sh))
	draw.ApproxBiLinear.Scale(small, small.Bounds(), src, b, draw.Src, nil)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), small, small.Bounds(), draw.Src, nil)
	return dst, nil
}
