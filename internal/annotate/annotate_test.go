package annotate

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/rs/zerolog"

	"github.com/akTwelve/cocosynth/internal/colors"
	"github.com/akTwelve/cocosynth/internal/geometry"
)

// createMask builds a black mask and fills the given rectangles with
// instance colors.
func createMask(w, h int, regions map[colors.RGB]image.Rectangle) *image.RGBA {
	mask := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			mask.SetRGBA(x, y, color.RGBA{0, 0, 0, 255})
		}
	}
	for rgb, r := range regions {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				mask.SetRGBA(x, y, color.RGBA{rgb.R, rgb.G, rgb.B, 255})
			}
		}
	}
	return mask
}

func filledBitmap(w, h, x, y, rw, rh int) *geometry.Bitmap {
	b := geometry.NewBitmap(w, h)
	for dy := 0; dy < rh; dy++ {
		for dx := 0; dx < rw; dx++ {
			b.Set(x+dx, y+dy)
		}
	}
	return b
}

func TestDecompose_SplitsByColor(t *testing.T) {
	red := colors.RGB{R: 255, G: 0, B: 0}
	green := colors.RGB{R: 0, G: 255, B: 0}
	mask := createMask(20, 15, map[colors.RGB]image.Rectangle{
		red:   image.Rect(1, 1, 5, 5),
		green: image.Rect(10, 4, 16, 12),
	})

	layers := Decompose(mask)
	if len(layers) != 2 {
		t.Fatalf("got %d layers, want 2", len(layers))
	}

	// Row-major scan: red (top-left) is encountered before green.
	if layers[0].Color != red || layers[1].Color != green {
		t.Errorf("layer order: got %v, %v", layers[0].Color, layers[1].Color)
	}

	for _, layer := range layers {
		if layer.Bitmap.W != 22 || layer.Bitmap.H != 17 {
			t.Errorf("bitmap size %dx%d, want padded 22x17", layer.Bitmap.W, layer.Bitmap.H)
		}
	}

	// Pixel (1,1) of the mask lands at (2,2) of the padded bitmap.
	if layers[0].Bitmap.At(2, 2) != 1 {
		t.Error("red pixel not shifted into padding")
	}
	if layers[0].Bitmap.At(1, 1) != 0 {
		t.Error("padding border must stay clear")
	}
}

func TestDecompose_EmptyMask(t *testing.T) {
	mask := createMask(10, 10, nil)
	if layers := Decompose(mask); len(layers) != 0 {
		t.Errorf("empty mask produced %d layers", len(layers))
	}
}

func TestDecompose_EdgeTouchingRegion(t *testing.T) {
	red := colors.RGB{R: 255, G: 0, B: 0}
	mask := createMask(12, 12, map[colors.RGB]image.Rectangle{
		red: image.Rect(0, 0, 6, 6), // touches the mask border
	})

	layers := Decompose(mask)
	if len(layers) != 1 {
		t.Fatalf("got %d layers, want 1", len(layers))
	}

	// The padding guarantees a closed contour even for border regions.
	contours := geometry.TraceContours(layers[0].Bitmap)
	if len(contours) != 1 {
		t.Fatalf("edge-touching region: got %d contours, want 1", len(contours))
	}
	if len(contours[0]) < 4 {
		t.Errorf("contour did not close: %d vertices", len(contours[0]))
	}
}

func TestPolygonize_RectangleAreaAndBBox(t *testing.T) {
	// 30x20 rectangle at mask position (4,5), in a padded 40x30 bitmap.
	bm := filledBitmap(40, 30, 5, 6, 30, 20)

	shape, ok := Polygonize(bm, 16, 1.0)
	if !ok {
		t.Fatal("rectangle produced no shape")
	}

	if math.Abs(shape.Area-30*20) > 1.0*2*(30+20) {
		t.Errorf("area %v too far from %v", shape.Area, 30*20)
	}

	// Bounds land half a pixel outside the filled pixels; after removing
	// the padding shift the rectangle covers mask pixels (4..33, 5..24).
	if math.Abs(shape.BBox.MinX-3.5) > 0.5 || math.Abs(shape.BBox.MinY-4.5) > 0.5 {
		t.Errorf("bbox origin: got (%v, %v)", shape.BBox.MinX, shape.BBox.MinY)
	}
	if math.Abs(shape.BBox.Width()-30) > 1 || math.Abs(shape.BBox.Height()-20) > 1 {
		t.Errorf("bbox size: got %vx%v", shape.BBox.Width(), shape.BBox.Height())
	}
}

func TestPolygonize_NoiseFiltered(t *testing.T) {
	// A 4x4 square has area 16, which is not strictly above the threshold.
	bm := filledBitmap(10, 10, 3, 3, 4, 4)
	if _, ok := Polygonize(bm, 16, 1.0); ok {
		t.Error("shape with area <= 16 must be discarded")
	}

	// 5x5 clears the threshold.
	bm = filledBitmap(12, 12, 3, 3, 5, 5)
	if _, ok := Polygonize(bm, 16, 1.0); !ok {
		t.Error("shape with area > 16 must survive")
	}
}

func TestPolygonize_EmptyBitmap(t *testing.T) {
	if _, ok := Polygonize(geometry.NewBitmap(10, 10), 16, 1.0); ok {
		t.Error("empty bitmap produced a shape")
	}
}

func TestPolygonize_DisjointRegionsShareOneShape(t *testing.T) {
	bm := geometry.NewBitmap(40, 20)
	for dy := 0; dy < 8; dy++ {
		for dx := 0; dx < 8; dx++ {
			bm.Set(2+dx, 2+dy)
			bm.Set(25+dx, 8+dy)
		}
	}

	shape, ok := Polygonize(bm, 16, 1.0)
	if !ok {
		t.Fatal("disjoint regions produced no shape")
	}
	if len(shape.Polygons) != 2 {
		t.Fatalf("got %d polygons, want 2", len(shape.Polygons))
	}

	// Union bbox spans both fragments; area is the sum of the parts.
	if shape.BBox.Width() < 25 {
		t.Errorf("union bbox width %v too small", shape.BBox.Width())
	}
	if shape.Area < 2*8*8-16 || shape.Area > 2*8*8 {
		t.Errorf("union area %v outside expected range", shape.Area)
	}
}

func TestRegularize_FoldedRingBecomesConvexHull(t *testing.T) {
	// A blob whose bottom edge wiggles within the simplification tolerance
	// and whose thin slit from the top reaches below y=0. Simplification
	// straightens the bottom into the segment (0,0)-(10,0) and collapses the
	// slit into a dart that still dips below it, folding the ring.
	ring := geometry.Polygon{
		{X: 10, Y: 0}, {X: 10, Y: 6},
		{X: 2.1, Y: 6}, {X: 2.1, Y: -0.5}, {X: 1.9, Y: -0.5}, {X: 1.9, Y: 6}, // slit walls
		{X: 0, Y: 6}, {X: 0, Y: 0},
		{X: 2, Y: -0.9}, {X: 5, Y: 0.9}, {X: 8, Y: -0.9}, // bottom wiggle, all within 1.0 of y=0
	}
	if !ring.IsSimple() {
		t.Fatal("construction error: input ring must be simple")
	}

	simplified := ring.Simplify(1.0)
	if simplified.IsSimple() {
		t.Fatal("construction error: simplification was expected to fold the ring")
	}

	poly := regularize(simplified)
	if !poly.IsSimple() {
		t.Fatal("regularized ring still self-intersects")
	}
	if len(poly) != 5 {
		t.Errorf("hull vertex count: got %d, want 5", len(poly))
	}
	// Hull of the surviving vertices: the square plus the dart tip below it.
	if area := poly.Area(); math.Abs(area-62.5) > 1e-9 {
		t.Errorf("hull area: got %v, want 62.5", area)
	}
}

func TestRegularize_SimpleRingUnchanged(t *testing.T) {
	ring := geometry.Polygon{{X: 0, Y: 0}, {X: 6, Y: 0}, {X: 6, Y: 4}, {X: 0, Y: 4}}
	poly := regularize(ring)
	if len(poly) != 4 || poly.Area() != ring.Area() {
		t.Errorf("simple ring was altered: %v", poly)
	}
}

func TestShapeSegmentation_ClosedRings(t *testing.T) {
	shape := Shape{Polygons: []geometry.Polygon{{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 4}, {X: 0, Y: 4}}}}
	seg := shape.Segmentation()
	if len(seg) != 1 {
		t.Fatalf("got %d rings", len(seg))
	}
	flat := seg[0]
	if len(flat) != 10 {
		t.Fatalf("flattened ring length: got %d, want 10", len(flat))
	}
	if flat[0] != flat[len(flat)-2] || flat[1] != flat[len(flat)-1] {
		t.Error("ring must repeat its first vertex at the end")
	}
}

func TestAssembler_IDsAndSkips(t *testing.T) {
	red := colors.RGB{R: 255, G: 0, B: 0}
	green := colors.RGB{R: 0, G: 255, B: 0}
	stray := colors.RGB{R: 7, G: 7, B: 7}

	layerFor := func(c colors.RGB) Layer {
		return Layer{Color: c, Bitmap: filledBitmap(20, 20, 3, 3, 10, 10)}
	}
	categoryIDs := map[colors.RGB]int{red: 1, green: 2}
	log := zerolog.Nop()

	asm := NewAssembler()

	first := asm.Annotate([]Layer{layerFor(red), layerFor(stray), layerFor(green)}, 0, categoryIDs, 16, 1.0, log)
	if len(first) != 2 {
		t.Fatalf("image 0: got %d annotations, want 2 (stray color skipped)", len(first))
	}
	if first[0].ID != 0 || first[1].ID != 1 {
		t.Errorf("image 0 ids: got %d, %d", first[0].ID, first[1].ID)
	}
	if first[0].CategoryID != 1 || first[1].CategoryID != 2 {
		t.Errorf("category ids: got %d, %d", first[0].CategoryID, first[1].CategoryID)
	}

	// The counter is run-global: the next image continues where the
	// previous one stopped.
	second := asm.Annotate([]Layer{layerFor(red)}, 1, categoryIDs, 16, 1.0, log)
	if len(second) != 1 || second[0].ID != 2 {
		t.Fatalf("image 1: got %+v, want id 2", second)
	}
	if second[0].ImageID != 1 {
		t.Errorf("image id: got %d, want 1", second[0].ImageID)
	}
	if second[0].IsCrowd != 0 {
		t.Errorf("iscrowd: got %d, want 0", second[0].IsCrowd)
	}
}

func TestAssembler_OccludedInstanceProducesNothing(t *testing.T) {
	red := colors.RGB{R: 255, G: 0, B: 0}
	// Only two stray pixels survive occlusion: below the noise threshold.
	bm := geometry.NewBitmap(20, 20)
	bm.Set(5, 5)
	bm.Set(12, 9)

	asm := NewAssembler()
	got := asm.Annotate([]Layer{{Color: red, Bitmap: bm}}, 0, map[colors.RGB]int{red: 1}, 16, 1.0, zerolog.Nop())
	if len(got) != 0 {
		t.Fatalf("occluded instance produced %d annotations", len(got))
	}

	// No id was consumed.
	next := asm.Annotate([]Layer{{Color: red, Bitmap: filledBitmap(20, 20, 2, 2, 10, 10)}}, 1, map[colors.RGB]int{red: 1}, 16, 1.0, zerolog.Nop())
	if len(next) != 1 || next[0].ID != 0 {
		t.Fatalf("id after occluded instance: got %+v, want id 0", next)
	}
}
