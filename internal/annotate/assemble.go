package annotate

import (
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/akTwelve/cocosynth/internal/coco"
	"github.com/akTwelve/cocosynth/internal/colors"
)

// Assembler packages instance shapes into COCO annotation records. The
// annotation id counter starts at 0 and is shared across every image of a
// run, never resetting per image. Ids are unique within one run only.
type Assembler struct {
	next atomic.Int64
}

// NewAssembler returns an assembler whose first annotation id is 0.
func NewAssembler() *Assembler {
	return &Assembler{}
}

// nextID reserves the next run-global annotation id.
func (a *Assembler) nextID() int {
	return int(a.next.Add(1) - 1)
}

// Annotate converts one mask's instance layers into annotation records.
// categoryIDs maps each instance color to its COCO category id for this
// specific mask. A color missing from the lookup is logged and skipped
// rather than failing the run; anti-aliased off-palette pixels are the
// usual cause. Fully occluded instances contribute no record.
func (a *Assembler) Annotate(layers []Layer, imageID int, categoryIDs map[colors.RGB]int,
	minArea, tolerance float64, log zerolog.Logger,
) []coco.Annotation {
	var annotations []coco.Annotation
	for _, layer := range layers {
		categoryID, ok := categoryIDs[layer.Color]
		if !ok {
			log.Warn().
				Str("color", layer.Color.Key()).
				Int("image_id", imageID).
				Msg("category color not found; check for missing category or antialiasing")
			continue
		}

		shape, ok := Polygonize(layer.Bitmap, minArea, tolerance)
		if !ok {
			continue
		}

		annotations = append(annotations, coco.Annotation{
			Segmentation: shape.Segmentation(),
			Area:         shape.Area,
			IsCrowd:      0,
			ImageID:      imageID,
			BBox: [4]float64{
				shape.BBox.MinX,
				shape.BBox.MinY,
				shape.BBox.Width(),
				shape.BBox.Height(),
			},
			CategoryID: categoryID,
			ID:         a.nextID(),
		})
	}
	return annotations
}
