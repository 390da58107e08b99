package annotate

import (
	"github.com/akTwelve/cocosynth/internal/geometry"
)

// Shape is the polygonal outline of one instance: one or more simple
// polygons with their combined bounding box and area.
type Shape struct {
	// Polygons are flattened closed rings, [x0,y0,x1,y1,...,x0,y0].
	Polygons []geometry.Polygon
	BBox     geometry.Rect
	Area     float64
}

// Segmentation returns the COCO-style flattened vertex lists for the
// shape's polygons. Each ring repeats its first vertex at the end.
func (s *Shape) Segmentation() [][]float64 {
	out := make([][]float64, len(s.Polygons))
	for i, poly := range s.Polygons {
		flat := make([]float64, 0, (len(poly)+1)*2)
		for _, v := range poly {
			flat = append(flat, v.X, v.Y)
		}
		flat = append(flat, poly[0].X, poly[0].Y)
		out[i] = flat
	}
	return out
}

// Polygonize traces the outline of a padded instance bitmap and reduces it
// to clean annotation polygons:
//
//  1. iso-contours are traced at level 0.5 and shifted back by the one
//     pixel of padding;
//  2. each contour is simplified with the given tolerance, without
//     preserving topology;
//  3. contours with area at or below minArea are dropped as noise;
//  4. a simplified ring that self-intersects is no longer a single simple
//     polygon and is replaced by its convex hull, trading fidelity for
//     guaranteed simple-polygon output;
//  5. shapes that degenerate to a line or point are dropped.
//
// The bounding box and area cover the union of all surviving polygons. The
// second return value is false when nothing survives, which legitimately
// happens when an instance is fully occluded by later ones.
func Polygonize(bitmap *geometry.Bitmap, minArea, tolerance float64) (Shape, bool) {
	var shape Shape

	for _, contour := range geometry.TraceContours(bitmap) {
		poly := contour.Translate(-1, -1).Simplify(tolerance)
		if poly.Area() <= minArea {
			continue
		}
		poly = regularize(poly)
		if len(poly) < 3 || poly.Area() == 0 {
			continue
		}

		if len(shape.Polygons) == 0 {
			shape.BBox = poly.Bounds()
		} else {
			shape.BBox = shape.BBox.Union(poly.Bounds())
		}
		shape.Area += poly.Area()
		shape.Polygons = append(shape.Polygons, poly)
	}

	if len(shape.Polygons) == 0 {
		return Shape{}, false
	}
	return shape, true
}

// regularize returns poly unchanged when it is a simple ring. A ring folded
// into self-intersection by simplification is replaced by its convex hull.
func regularize(poly geometry.Polygon) geometry.Polygon {
	if poly.IsSimple() {
		return poly
	}
	return poly.ConvexHull()
}
