package coco

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// MaskDefinitionsFile is the name of the intermediate JSON file linking
// each generated image to its mask and color legend.
const MaskDefinitionsFile = "mask_definitions.json"

// ColorCategory labels one instance color within a single mask. The same
// color may denote different categories in different masks.
type ColorCategory struct {
	Category      string `json:"category"`
	SuperCategory string `json:"super_category"`
}

// ColorEntry is one legend line in paste order: a canonical color key with
// its labels.
type ColorEntry struct {
	Key string
	ColorCategory
}

// MaskEntry describes the mask belonging to one generated image.
type MaskEntry struct {
	Mask            string                   `json:"mask"`
	ColorCategories map[string]ColorCategory `json:"color_categories"`
}

// MaskDefinitions accumulates mask metadata for a whole generation run.
// Both top-level objects keep insertion order: image ids follow mask order
// and category ids follow category encounter order.
type MaskDefinitions struct {
	Masks           *OrderedMap[MaskEntry] `json:"masks"`
	SuperCategories *OrderedMap[[]string]  `json:"super_categories"`
}

// NewMaskDefinitions returns an empty mask-definitions accumulator.
func NewMaskDefinitions() *MaskDefinitions {
	return &MaskDefinitions{
		Masks:           &OrderedMap[MaskEntry]{},
		SuperCategories: &OrderedMap[[]string]{},
	}
}

// AddCategory records a category under its super-category. It returns false
// if the pair was already known.
func (d *MaskDefinitions) AddCategory(category, superCategory string) bool {
	existing, ok := d.SuperCategories.Get(superCategory)
	if !ok {
		d.SuperCategories.Set(superCategory, []string{category})
		return true
	}
	for _, c := range existing {
		if c == category {
			return false
		}
	}
	d.SuperCategories.Replace(superCategory, append(existing, category))
	return true
}

// AddMask records one image/mask pair with its color legend. Legend entries
// are given in paste order so category registration stays deterministic.
// It returns false if the image was already recorded.
func (d *MaskDefinitions) AddMask(imagePath, maskPath string, legend []ColorEntry) bool {
	if _, ok := d.Masks.Get(imagePath); ok {
		return false
	}

	categories := make(map[string]ColorCategory, len(legend))
	for _, entry := range legend {
		categories[entry.Key] = entry.ColorCategory
		d.AddCategory(entry.Category, entry.SuperCategory)
	}

	d.Masks.Set(imagePath, MaskEntry{Mask: maskPath, ColorCategories: categories})
	return true
}

// BuildCategories assigns COCO category ids starting at 1 (0 is reserved
// for the background) in super-category and category encounter order. It
// returns the category records and a name-to-id lookup.
func (d *MaskDefinitions) BuildCategories() ([]Category, map[string]int) {
	var categories []Category
	idsByName := make(map[string]int)

	id := 1
	for _, superCategory := range d.SuperCategories.Keys() {
		names, _ := d.SuperCategories.Get(superCategory)
		for _, name := range names {
			categories = append(categories, Category{
				SuperCategory: superCategory,
				ID:            id,
				Name:          name,
			})
			idsByName[name] = id
			id++
		}
	}
	return categories, idsByName
}

// WriteFile serializes the mask definitions into dir.
func (d *MaskDefinitions) WriteFile(dir string) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to encode mask definitions: %w", err)
	}
	path := filepath.Join(dir, MaskDefinitionsFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ReadMaskDefinitions loads a mask-definitions file, preserving the
// document's object ordering.
func ReadMaskDefinitions(path string) (*MaskDefinitions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mask definitions %s: %w", path, err)
	}
	defs := NewMaskDefinitions()
	if err := json.Unmarshal(data, defs); err != nil {
		return nil, fmt.Errorf("failed to parse mask definitions %s: %w", path, err)
	}
	return defs, nil
}
