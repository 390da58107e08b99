// Package colors defines the RGB value type used to tag object instances in
// segmentation masks, along with the canonical string encoding used by the
// mask-definition JSON format.
//
// Instance colors are compared and hashed as structured triples; the string
// form exists only at serialization boundaries.
package colors

import (
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// RGB is a fully-opaque 8-bit color that identifies one object instance
// within a mask image.
type RGB struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// Background is the reserved mask background color. No instance may use it.
var Background = RGB{0, 0, 0}

// Key returns the canonical string encoding of the color, e.g. "(255, 0, 0)".
// This is the form used as a JSON object key in mask definition files.
func (c RGB) Key() string {
	return fmt.Sprintf("(%d, %d, %d)", c.R, c.G, c.B)
}

// IsBackground reports whether the color is the reserved mask background.
func (c RGB) IsBackground() bool {
	return c == Background
}

// ParseKey parses the canonical "(r, g, b)" encoding produced by Key.
func ParseKey(key string) (RGB, error) {
	var r, g, b int
	n, err := fmt.Sscanf(key, "(%d, %d, %d)", &r, &g, &b)
	if err != nil || n != 3 {
		return RGB{}, fmt.Errorf("invalid color key: %q", key)
	}
	if r < 0 || r > 255 || g < 0 || g > 255 || b < 0 || b > 255 {
		return RGB{}, fmt.Errorf("color key components out of range: %q", key)
	}
	return RGB{uint8(r), uint8(g), uint8(b)}, nil
}

// DefaultPalette returns the built-in instance palette: pure red, green and
// blue. It supports up to three simultaneous foregrounds per composite.
func DefaultPalette() []RGB {
	return []RGB{
		{255, 0, 0},
		{0, 255, 0},
		{0, 0, 255},
	}
}

// GeneratePalette produces n pairwise-distinct, non-black instance colors.
// For n up to the size of the default palette the default colors are
// returned; larger palettes are generated in a perceptually pleasant color
// range so neighboring instances stay visually distinguishable.
func GeneratePalette(n int) ([]RGB, error) {
	if n <= 0 {
		return nil, fmt.Errorf("palette size must be positive, got %d", n)
	}
	if def := DefaultPalette(); n <= len(def) {
		return def[:n], nil
	}

	// Quantizing to 8 bits can collide for large n, so retry a few times.
	for attempt := 0; attempt < 5; attempt++ {
		generated, err := colorful.HappyPalette(n)
		if err != nil {
			return nil, fmt.Errorf("failed to generate %d palette colors: %w", n, err)
		}

		palette := make([]RGB, 0, n)
		seen := make(map[RGB]bool, n)
		for _, c := range generated {
			r, g, b := c.RGB255()
			rgb := RGB{r, g, b}
			if rgb.IsBackground() || seen[rgb] {
				break
			}
			seen[rgb] = true
			palette = append(palette, rgb)
		}
		if len(palette) == n {
			return palette, nil
		}
	}
	return nil, fmt.Errorf("could not generate %d distinct instance colors", n)
}
