package dataset

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/akTwelve/cocosynth/internal/annotate"
	"github.com/akTwelve/cocosynth/internal/coco"
	"github.com/akTwelve/cocosynth/internal/colors"
	"github.com/akTwelve/cocosynth/internal/config"
	"github.com/akTwelve/cocosynth/internal/imageio"
)

// Annotator turns a finished generation run into a COCO instances file.
type Annotator struct {
	cfg   config.Annotate
	log   zerolog.Logger
	cache *imageio.ImageCache
}

// NewAnnotator validates cfg and returns a ready annotator.
func NewAnnotator(cfg config.Annotate, log zerolog.Logger) (*Annotator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Annotator{cfg: cfg, log: log, cache: imageio.NewImageCache()}, nil
}

// Run reads the mask definitions and dataset info, extracts polygon
// annotations from every mask and writes coco_instances.json next to the
// mask definitions. The assembled document is also returned.
//
// Masks are processed sequentially in definition order: image ids follow
// that order and annotation ids must increase monotonically through the
// document.
func (a *Annotator) Run() (*coco.Document, error) {
	defs, err := coco.ReadMaskDefinitions(a.cfg.MaskDefinition)
	if err != nil {
		return nil, err
	}
	info, err := coco.ReadDatasetInfo(a.cfg.DatasetInfo)
	if err != nil {
		return nil, err
	}

	datasetDir := filepath.Dir(a.cfg.MaskDefinition)
	doc, err := a.BuildCOCO(defs, info, datasetDir)
	if err != nil {
		return nil, err
	}

	if err := doc.WriteFile(datasetDir); err != nil {
		return nil, err
	}
	a.log.Info().
		Int("images", len(doc.Images)).
		Int("annotations", len(doc.Annotations)).
		Int("categories", len(doc.Categories)).
		Msg("COCO annotation completed")
	return doc, nil
}

// BuildCOCO assembles the COCO document for defs. Image paths inside defs
// are resolved relative to datasetDir. Image ids count up from 0 in mask
// definition order; category ids come from MaskDefinitions.BuildCategories.
func (a *Annotator) BuildCOCO(defs *coco.MaskDefinitions, info *coco.DatasetInfo, datasetDir string) (*coco.Document, error) {
	categories, idsByName := defs.BuildCategories()

	doc := &coco.Document{
		Info:       info.Info,
		Licenses:   []coco.License{info.License},
		Categories: categories,
	}

	assembler := annotate.NewAssembler()
	for imageID, imageRel := range defs.Masks.Keys() {
		entry, _ := defs.Masks.Get(imageRel)

		imagePath := filepath.Join(datasetDir, filepath.FromSlash(imageRel))
		width, height, err := imageio.Dimensions(a.cache, imagePath)
		if err != nil {
			return nil, err
		}
		doc.Images = append(doc.Images, coco.Image{
			License:  info.License.ID,
			FileName: filepath.Base(imagePath),
			Width:    width,
			Height:   height,
			ID:       imageID,
		})

		maskPath := filepath.Join(datasetDir, filepath.FromSlash(entry.Mask))
		mask, err := a.cache.Load(maskPath)
		if err != nil {
			return nil, err
		}

		categoryIDs, err := a.legendIDs(entry, idsByName, maskPath)
		if err != nil {
			return nil, err
		}

		layers := annotate.Decompose(mask)
		records := assembler.Annotate(layers, imageID, categoryIDs,
			a.cfg.MinPolygonArea, a.cfg.SimplifyTolerance, a.log)
		doc.Annotations = append(doc.Annotations, records...)

		a.log.Debug().
			Str("mask", entry.Mask).
			Int("annotations", len(records)).
			Msg("annotated")
	}
	return doc, nil
}

// legendIDs resolves one mask's color legend into category ids.
func (a *Annotator) legendIDs(entry coco.MaskEntry, idsByName map[string]int, maskPath string) (map[colors.RGB]int, error) {
	categoryIDs := make(map[colors.RGB]int, len(entry.ColorCategories))
	for key, cc := range entry.ColorCategories {
		rgb, err := colors.ParseKey(key)
		if err != nil {
			return nil, fmt.Errorf("mask %s: %w", maskPath, err)
		}
		id, ok := idsByName[cc.Category]
		if !ok {
			return nil, fmt.Errorf("mask %s: category %q is not listed under any super-category", maskPath, cc.Category)
		}
		categoryIDs[rgb] = id
	}
	return categoryIDs, nil
}
