// Package geometry provides the 2-D polygon primitives used to turn binary
// instance bitmaps into annotation polygons: iso-contour tracing,
// Douglas-Peucker simplification, convex hulls, areas and bounds.
//
// Coordinates are in pixel units with (0,0) at the top-left corner,
// X increasing rightward and Y increasing downward. Contour vertices fall on
// half-pixel positions because they mark 0/1 crossings between neighboring
// pixels.
package geometry

import (
	"math"
	"sort"
)

// Point is a 2-D coordinate in pixel space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Polygon is a closed ring of vertices. The closing edge from the last
// vertex back to the first is implicit; the first vertex is not repeated.
type Polygon []Point

// Rect is an axis-aligned bounding rectangle.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// Width returns the horizontal extent of the rectangle.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the vertical extent of the rectangle.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Union returns the smallest rectangle covering both r and other.
func (r Rect) Union(other Rect) Rect {
	return Rect{
		MinX: math.Min(r.MinX, other.MinX),
		MinY: math.Min(r.MinY, other.MinY),
		MaxX: math.Max(r.MaxX, other.MaxX),
		MaxY: math.Max(r.MaxY, other.MaxY),
	}
}

// Area returns the absolute area enclosed by the polygon (shoelace formula).
func (p Polygon) Area() float64 {
	return math.Abs(p.signedArea())
}

func (p Polygon) signedArea() float64 {
	if len(p) < 3 {
		return 0
	}
	var sum float64
	for i, a := range p {
		b := p[(i+1)%len(p)]
		sum += a.X*b.Y - b.X*a.Y
	}
	return sum / 2
}

// Bounds returns the axis-aligned bounding rectangle of the polygon.
func (p Polygon) Bounds() Rect {
	if len(p) == 0 {
		return Rect{}
	}
	r := Rect{MinX: p[0].X, MinY: p[0].Y, MaxX: p[0].X, MaxY: p[0].Y}
	for _, v := range p[1:] {
		r.MinX = math.Min(r.MinX, v.X)
		r.MinY = math.Min(r.MinY, v.Y)
		r.MaxX = math.Max(r.MaxX, v.X)
		r.MaxY = math.Max(r.MaxY, v.Y)
	}
	return r
}

// Translate returns a copy of the polygon shifted by (dx, dy).
func (p Polygon) Translate(dx, dy float64) Polygon {
	out := make(Polygon, len(p))
	for i, v := range p {
		out[i] = Point{X: v.X + dx, Y: v.Y + dy}
	}
	return out
}

// Simplify reduces the polygon's vertex count with the Douglas-Peucker
// algorithm: every dropped vertex lies within tolerance of the simplified
// outline. Topology is not preserved; the result may self-intersect.
func (p Polygon) Simplify(tolerance float64) Polygon {
	if len(p) <= 3 {
		return append(Polygon(nil), p...)
	}

	// A closed ring needs two anchors. Use the first vertex and the vertex
	// farthest from it, then simplify the two open chains between them.
	far := 1
	maxDist := 0.0
	for i := 1; i < len(p); i++ {
		d := distSq(p[0], p[i])
		if d > maxDist {
			maxDist = d
			far = i
		}
	}

	first := simplifyChain(p[:far+1], tolerance)
	second := simplifyChain(append(append(Polygon(nil), p[far:]...), p[0]), tolerance)

	out := make(Polygon, 0, len(first)+len(second)-2)
	out = append(out, first...)
	out = append(out, second[1:len(second)-1]...)
	return out
}

// simplifyChain runs Douglas-Peucker on an open polyline, keeping both
// endpoints.
func simplifyChain(chain Polygon, tolerance float64) Polygon {
	if len(chain) <= 2 {
		return append(Polygon(nil), chain...)
	}

	maxDist := 0.0
	index := 0
	for i := 1; i < len(chain)-1; i++ {
		d := perpendicularDistance(chain[i], chain[0], chain[len(chain)-1])
		if d > maxDist {
			maxDist = d
			index = i
		}
	}

	if maxDist <= tolerance {
		return Polygon{chain[0], chain[len(chain)-1]}
	}

	left := simplifyChain(chain[:index+1], tolerance)
	right := simplifyChain(chain[index:], tolerance)
	return append(left[:len(left)-1], right...)
}

// perpendicularDistance returns the distance from p to the segment (a, b).
func perpendicularDistance(p, a, b Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return math.Hypot(p.X-(a.X+t*dx), p.Y-(a.Y+t*dy))
}

// IsSimple reports whether no two non-adjacent edges of the polygon
// intersect. Simplification without topology preservation can fold a ring
// onto itself; such rings are not usable as single segmentation polygons.
func (p Polygon) IsSimple() bool {
	n := len(p)
	if n < 3 {
		return false
	}
	for i := 0; i < n; i++ {
		a1 := p[i]
		a2 := p[(i+1)%n]
		for j := i + 1; j < n; j++ {
			// Skip edges sharing a vertex with edge i.
			if j == i || (j+1)%n == i || j == (i+1)%n {
				continue
			}
			b1 := p[j]
			b2 := p[(j+1)%n]
			if segmentsIntersect(a1, a2, b1, b2) {
				return false
			}
		}
	}
	return true
}

func segmentsIntersect(a1, a2, b1, b2 Point) bool {
	d1 := cross(b1, b2, a1)
	d2 := cross(b1, b2, a2)
	d3 := cross(a1, a2, b1)
	d4 := cross(a1, a2, b2)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	// Collinear touching counts as an intersection: the ring is degenerate.
	if d1 == 0 && onSegment(b1, b2, a1) {
		return true
	}
	if d2 == 0 && onSegment(b1, b2, a2) {
		return true
	}
	if d3 == 0 && onSegment(a1, a2, b1) {
		return true
	}
	if d4 == 0 && onSegment(a1, a2, b2) {
		return true
	}
	return false
}

// cross returns the cross product of (b-a) and (p-a): positive when p is
// counter-clockwise of the segment, zero when collinear.
func cross(a, b, p Point) float64 {
	return (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
}

func onSegment(a, b, p Point) bool {
	return math.Min(a.X, b.X) <= p.X && p.X <= math.Max(a.X, b.X) &&
		math.Min(a.Y, b.Y) <= p.Y && p.Y <= math.Max(a.Y, b.Y)
}

func distSq(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return dx*dx + dy*dy
}

// ConvexHull returns the smallest convex polygon containing all vertices of
// p, using Andrew's monotone chain. The result winds counter-clockwise in
// image coordinates. Fewer than three distinct input points yield the
// distinct points themselves.
func (p Polygon) ConvexHull() Polygon {
	pts := append(Polygon(nil), p...)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})

	// Drop duplicates so collinearity checks stay stable.
	uniq := pts[:0]
	for _, v := range pts {
		if len(uniq) == 0 || uniq[len(uniq)-1] != v {
			uniq = append(uniq, v)
		}
	}
	pts = uniq
	if len(pts) < 3 {
		return append(Polygon(nil), pts...)
	}

	var lower, upper Polygon
	for _, v := range pts {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], v) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, v)
	}
	for i := len(pts) - 1; i >= 0; i-- {
		v := pts[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], v) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, v)
	}

	hull := append(lower[:len(lower)-1], upper[:len(upper)-1]...)
	return hull
}
