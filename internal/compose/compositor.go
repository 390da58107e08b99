package compose

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math/rand"

	"github.com/disintegration/imaging"

	"github.com/akTwelve/cocosynth/internal/colors"
)

// ErrBackgroundTooSmall signals a background smaller than the requested
// output size in at least one dimension.
var ErrBackgroundTooSmall = errors.New("background is smaller than the output size")

// ErrForegroundTooLarge signals a transformed foreground that cannot fit
// inside the output canvas at any offset.
var ErrForegroundTooLarge = errors.New("foreground is larger than the output canvas")

// Foreground pairs a transformed cutout with its assigned instance color and
// labels.
type Foreground struct {
	Image         image.Image
	Color         colors.RGB
	Category      string
	SuperCategory string
}

// Result holds the two outputs of one composition: the flattened RGB
// composite and the color-coded instance mask.
type Result struct {
	Composite *image.RGBA
	Mask      *image.RGBA
}

// Composite crops a random width x height window out of the background and
// pastes each foreground at a uniform random offset, in order. Pixels whose
// alpha exceeds alphaThreshold are painted into the instance mask with the
// foreground's flat color.
//
// Later foregrounds overwrite earlier ones wherever they overlap, in the
// composite and in the mask alike. Paste order is occlusion order; this is
// an intentional modeling choice, not an artifact of iteration.
func Composite(background image.Image, width, height int, fgs []Foreground, alphaThreshold uint8, rng *rand.Rand) (*Result, error) {
	bgW := background.Bounds().Dx()
	bgH := background.Bounds().Dy()
	if bgW < width || bgH < height {
		return nil, fmt.Errorf("%w: output %dx%d, background %dx%d",
			ErrBackgroundTooSmall, width, height, bgW, bgH)
	}

	cropX := rng.Intn(bgW - width + 1)
	cropY := rng.Intn(bgH - height + 1)
	canvas := imaging.Crop(background, image.Rect(cropX, cropY, cropX+width, cropY+height))

	mask := image.NewRGBA(image.Rect(0, 0, width, height))
	black := color.RGBA{0, 0, 0, 255}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			mask.SetRGBA(x, y, black)
		}
	}

	for _, fg := range fgs {
		cutout := imaging.Clone(fg.Image)
		fgW := cutout.Bounds().Dx()
		fgH := cutout.Bounds().Dy()
		if fgW > width || fgH > height {
			return nil, fmt.Errorf("%w: foreground %dx%d, canvas %dx%d",
				ErrForegroundTooLarge, fgW, fgH, width, height)
		}

		pasteX := rng.Intn(width - fgW + 1)
		pasteY := rng.Intn(height - fgH + 1)

		target := image.Rect(pasteX, pasteY, pasteX+fgW, pasteY+fgH)
		draw.Draw(canvas, target, cutout, image.Point{}, draw.Over)

		instance := color.RGBA{fg.Color.R, fg.Color.G, fg.Color.B, 255}
		for y := 0; y < fgH; y++ {
			for x := 0; x < fgW; x++ {
				if cutout.NRGBAAt(x, y).A > alphaThreshold {
					mask.SetRGBA(pasteX+x, pasteY+y, instance)
				}
			}
		}
	}

	return &Result{Composite: flatten(canvas), Mask: mask}, nil
}

// flatten discards the alpha channel, producing a fully opaque RGB image.
func flatten(img *image.NRGBA) *image.RGBA {
	bounds := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			c := img.NRGBAAt(bounds.Min.X+x, bounds.Min.Y+y)
			out.SetRGBA(x, y, color.RGBA{c.R, c.G, c.B, 255})
		}
	}
	return out
}
