// Package annotate turns color-coded instance masks into COCO polygon
// annotations: it splits masks into per-instance binary bitmaps, traces and
// simplifies their contours, and packages the surviving polygons into
// annotation records.
package annotate

import (
	"image"

	"github.com/akTwelve/cocosynth/internal/colors"
	"github.com/akTwelve/cocosynth/internal/geometry"
)

// Layer is the binary bitmap of a single instance color. The bitmap is one
// pixel wider and taller than the mask on every side; contour tracing at
// level 0.5 cannot close rings that touch the image border, so every
// instance region must be surrounded by background.
type Layer struct {
	Color  colors.RGB
	Bitmap *geometry.Bitmap
}

// Decompose splits an instance mask into one padded binary bitmap per
// distinct non-background color. Layers are returned in first-appearance
// order (row-major scan), so downstream id assignment is deterministic.
// A mask without foreground pixels yields no layers.
func Decompose(mask image.Image) []Layer {
	bounds := mask.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()

	var layers []Layer
	index := make(map[colors.RGB]int)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := mask.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			rgb := colors.RGB{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)}
			if rgb.IsBackground() {
				continue
			}

			i, ok := index[rgb]
			if !ok {
				i = len(layers)
				index[rgb] = i
				layers = append(layers, Layer{
					Color:  rgb,
					Bitmap: geometry.NewBitmap(w+2, h+2),
				})
			}
			// Shift by one pixel to land inside the padding border.
			layers[i].Bitmap.Set(x+1, y+1)
		}
	}
	return layers
}
