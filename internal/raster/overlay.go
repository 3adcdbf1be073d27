package raster

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// DrawText writes lines of text onto img with their top-left corner at
// (x, y), on a translucent backing box.
func DrawText(img draw.Image, x, y int, lines []string, c color.Color) {
	face := basicfont.Face7x13
	lineH := face.Metrics().Height.Ceil()
	if len(lines) == 0 {
		return
	}

	d := &font.Drawer{Dst: img, Src: image.NewUniform(c), Face: face}
	w := 0
	for _, l := range lines {
		if adv := d.MeasureString(l).Ceil(); adv > w {
			w = adv
		}
	}
	box := image.Rect(x-3, y-2, x+w+3, y+lineH*len(lines)+2).Intersect(img.Bounds())
	draw.Draw(img, box, image.NewUniform(color.RGBA{0, 0, 0, 140}), image.Point{}, draw.Over)

	for i, l := range lines {
		d.Dot = fixed.P(x, y+face.Metrics().Ascent.Ceil()+i*lineH)
		d.DrawString(l)
	}
}
