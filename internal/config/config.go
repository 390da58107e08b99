// Package config holds the run configuration for dataset generation and
// annotation extraction.
package config

import (
	"fmt"

	"github.com/akTwelve/cocosynth/internal/colors"
)

// Allowed output extensions for composite images. Masks are always PNG so
// instance colors survive encoding pixel-exact.
var allowedOutputTypes = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// Generate holds the parameters of one dataset-generation run.
type Generate struct {
	InputDir  string // contains foregrounds/ and backgrounds/
	OutputDir string // receives images/, masks/ and the JSON files

	Count      int    // number of composites to produce
	Width      int    // output width in pixels, >= 64
	Height     int    // output height in pixels, >= 64
	OutputType string // composite extension: .png, .jpg or .jpeg

	MaxForegrounds int          // maximum simultaneous instances per composite
	Palette        []colors.RGB // instance colors, len >= MaxForegrounds

	Seed    int64 // RNG seed; 0 means time-based
	Silent  bool  // skip the non-empty output directory check
	Workers int   // parallel image pipelines; <= 1 means sequential

	// Extraction tuning. Zero values are replaced by defaults in Normalize.
	AlphaThreshold    uint8   // mask alpha cutoff, exclusive
	MinPolygonArea    float64 // polygons at or below this area are noise
	SimplifyTolerance float64 // Douglas-Peucker tolerance in pixels
}

// DefaultGenerate returns a Generate with the reference policy values.
func DefaultGenerate() Generate {
	return Generate{
		Count:             1,
		Width:             512,
		Height:            512,
		OutputType:        ".jpg",
		MaxForegrounds:    3,
		Palette:           colors.DefaultPalette(),
		Workers:           1,
		AlphaThreshold:    200,
		MinPolygonArea:    16,
		SimplifyTolerance: 1.0,
	}
}

// Normalize fills defaulted fields and canonicalizes the output type so a
// bare "jpg" works the same as ".jpg".
func (c *Generate) Normalize() {
	if c.OutputType == "" {
		c.OutputType = ".jpg"
	} else if c.OutputType[0] != '.' {
		c.OutputType = "." + c.OutputType
	}
	if c.AlphaThreshold == 0 {
		c.AlphaThreshold = 200
	}
	if c.MinPolygonArea == 0 {
		c.MinPolygonArea = 16
	}
	if c.SimplifyTolerance == 0 {
		c.SimplifyTolerance = 1.0
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	if len(c.Palette) == 0 {
		c.Palette = colors.DefaultPalette()
	}
}

// Validate checks the configuration before any generation begins.
// Violations are configuration errors and abort the run.
func (c *Generate) Validate() error {
	if c.Count <= 0 {
		return fmt.Errorf("count must be greater than 0, got %d", c.Count)
	}
	if c.Width < 64 {
		return fmt.Errorf("width must be at least 64, got %d", c.Width)
	}
	if c.Height < 64 {
		return fmt.Errorf("height must be at least 64, got %d", c.Height)
	}
	if !allowedOutputTypes[c.OutputType] {
		return fmt.Errorf("output type is not supported: %s", c.OutputType)
	}
	if c.MaxForegrounds <= 0 {
		return fmt.Errorf("max foregrounds must be greater than 0, got %d", c.MaxForegrounds)
	}
	if len(c.Palette) < c.MaxForegrounds {
		return fmt.Errorf("palette has %d colors but max foregrounds is %d",
			len(c.Palette), c.MaxForegrounds)
	}
	seen := make(map[colors.RGB]bool, len(c.Palette))
	for _, col := range c.Palette {
		if col.IsBackground() {
			return fmt.Errorf("palette color %s is reserved for the mask background", col.Key())
		}
		if seen[col] {
			return fmt.Errorf("palette contains duplicate color %s", col.Key())
		}
		seen[col] = true
	}
	if c.InputDir == "" {
		return fmt.Errorf("input directory is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output directory is required")
	}
	return nil
}

// Annotate holds the parameters of one COCO-annotation run.
type Annotate struct {
	MaskDefinition string // path to mask_definitions.json
	DatasetInfo    string // path to dataset_info.json

	MinPolygonArea    float64
	SimplifyTolerance float64
}

// DefaultAnnotate returns an Annotate with the reference policy values.
func DefaultAnnotate() Annotate {
	return Annotate{
		MinPolygonArea:    16,
		SimplifyTolerance: 1.0,
	}
}

// Validate checks the annotation configuration.
func (c *Annotate) Validate() error {
	if c.MaskDefinition == "" {
		return fmt.Errorf("mask definition file is required")
	}
	if c.DatasetInfo == "" {
		return fmt.Errorf("dataset info file is required")
	}
	return nil
}
