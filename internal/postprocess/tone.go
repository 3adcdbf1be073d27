package postprocess

import (
	"context"
	"image"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/transform"
)

// sepia blends the sepia-toned image over the source by Intensity.
func sepia(_ context.Context, c FilterConfig, src *image.RGBA) (*image.RGBA, error) {
	base := clone.AsRGBA(src)
	toned := effect.Sepia(base)
	if toned == nil {
		return nil, ErrNoOutput
	}
	t := c.Intensity
	for i := 0; i+3 < len(base.Pix) && i+3 < len(toned.Pix); i += 4 {
		for k := 0; k < 3; k++ {
			v := float64(base.Pix[i+k])*(1-t) + float64(toned.Pix[i+k])*t
			base.Pix[i+k] = clamp8(v)
		}
	}
	return base, nil
}

func monochrome(_ context.Context, _ FilterConfig, src *image.RGBA) (*image.RGBA, error) {
	gray := effect.Grayscale(src)
	if gray == nil {
		return nil, ErrNoOutput
	}
	return gray, nil
}

// bloomMinScaled is the smallest blur radius, in pixels of the reduced
// image, below which bloom blurs at full resolution.
const bloomMinScaled = 4

// bloom adds a blurred copy of the image back onto itself, scaled by
// Intensity. Large radii are blurred on a reduced copy.
func bloom(ctx context.Context, c FilterConfig, src *image.RGBA) (*image.RGBA, error) {
	base := clone.AsRGBA(src)
	w, h := base.Bounds().Dx(), base.Bounds().Dy()

	factor := 1
	for c.Radius/float64(factor*2) >= bloomMinScaled && w/(factor*2) >= 8 && h/(factor*2) >= 8 {
		factor *= 2
	}
	var glow *image.RGBA
	if factor == 1 {
		glow = blur.Gaussian(base, c.Radius)
	} else {
		small := transform.Resize(base, w/factor, h/factor, transform.Linear)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		small = blur.Gaussian(small, c.Radius/float64(factor))
		glow = transform.Resize(small, w, h, transform.Linear)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if glow == nil || glow.Bounds().Size() != base.Bounds().Size() {
		return nil, ErrNoOutput
	}

	k := c.Intensity
	for i := 0; i+3 < len(base.Pix); i += 4 {
		for j := 0; j < 3; j++ {
			base.Pix[i+j] = clamp8(float64(base.Pix[i+j]) + k*float64(glow.Pix[i+j]))
		}
	}
	return base, nil
}
