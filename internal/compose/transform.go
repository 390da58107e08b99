// Package compose builds synthetic training images: it applies random
// transformations to foreground cutouts and layers them onto cropped
// backgrounds while painting a color-coded instance mask.
package compose

import (
	"errors"
	"image"
	"image/color"
	"math/rand"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/disintegration/imaging"
)

// ErrInvalidForeground signals a cutout without any fully transparent pixel.
// Such an image has no usable transparency channel and cannot be composited
// cleanly.
var ErrInvalidForeground = errors.New("foreground has no transparency")

// Transform bounds for the random jitter applied to each cutout.
const (
	minScale      = 0.5
	maxScale      = 1.0
	minBrightness = 0.7
	maxBrightness = 1.1
)

// TransformForeground applies a random rotation, scale and brightness
// adjustment to a foreground cutout, consuming three draws from rng in that
// order. The canvas grows to fit the rotated content, so the returned image
// usually has a different size than the input.
func TransformForeground(fg image.Image, rng *rand.Rand) (*image.NRGBA, error) {
	cutout := imaging.Clone(fg)
	if !hasTransparency(cutout) {
		return nil, ErrInvalidForeground
	}

	angle := rng.Float64() * 360
	rotated := imaging.Rotate(cutout, angle, color.NRGBA{})

	scale := minScale + rng.Float64()*(maxScale-minScale)
	w := rotated.Bounds().Dx()
	h := rotated.Bounds().Dy()
	scaled := imaging.Resize(rotated, scaledDim(w, scale), scaledDim(h, scale), imaging.CatmullRom)

	brightness := minBrightness + rng.Float64()*(maxBrightness-minBrightness)
	return applyBrightness(scaled, brightness), nil
}

// applyBrightness scales the color channels by factor, leaving alpha alone.
// bild adjusts premultiplied RGBA and clamps channels at 255, so brightening
// a semi-transparent pixel can push a channel past its alpha and wrap during
// the conversion back to straight alpha. Running the adjustment on an opaque
// copy keeps premultiplied and straight values identical; the original alpha
// is reattached afterwards.
func applyBrightness(img *image.NRGBA, factor float64) *image.NRGBA {
	bounds := img.Bounds()
	opaque := image.NewNRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := img.NRGBAAt(x, y)
			opaque.SetNRGBA(x, y, color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255})
		}
	}

	// bild expresses brightness as a relative change: factor 0.7 -> -0.3.
	adjusted := adjust.Brightness(opaque, factor-1)

	out := image.NewNRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := adjusted.RGBAAt(x, y)
			out.SetNRGBA(x, y, color.NRGBA{R: c.R, G: c.G, B: c.B, A: img.NRGBAAt(x, y).A})
		}
	}
	return out
}

func scaledDim(d int, scale float64) int {
	scaled := int(float64(d) * scale)
	if scaled < 1 {
		return 1
	}
	return scaled
}

// hasTransparency reports whether at least one pixel is fully transparent.
func hasTransparency(img *image.NRGBA) bool {
	for y := img.Bounds().Min.Y; y < img.Bounds().Max.Y; y++ {
		for x := img.Bounds().Min.X; x < img.Bounds().Max.X; x++ {
			if img.NRGBAAt(x, y).A == 0 {
				return true
			}
		}
	}
	return false
}
