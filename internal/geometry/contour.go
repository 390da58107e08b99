package geometry

// Bitmap is a binary pixel grid. Pixels outside the grid read as 0.
type Bitmap struct {
	W, H int
	Pix  []uint8
}

// NewBitmap creates an all-zero bitmap of the given size.
func NewBitmap(w, h int) *Bitmap {
	return &Bitmap{W: w, H: h, Pix: make([]uint8, w*h)}
}

// At returns the pixel value at (x, y), or 0 outside the grid.
func (b *Bitmap) At(x, y int) uint8 {
	if x < 0 || y < 0 || x >= b.W || y >= b.H {
		return 0
	}
	return b.Pix[y*b.W+x]
}

// Set marks the pixel at (x, y). Out-of-range coordinates are ignored.
func (b *Bitmap) Set(x, y int) {
	if x < 0 || y < 0 || x >= b.W || y >= b.H {
		return
	}
	b.Pix[y*b.W+x] = 1
}

// gridKey identifies a contour vertex in doubled coordinates. Crossing
// points sit on half-pixel positions, so doubling makes them exact integers
// usable as map keys.
type gridKey struct {
	x, y int
}

type segment struct {
	a, b gridKey
}

// TraceContours extracts the closed iso-contours of the bitmap at level 0.5
// using marching squares. Vertices are the midpoints of lattice edges
// joining a set and an unset pixel, in pixel coordinates.
//
// The caller must guarantee that no set pixel touches the bitmap border
// (the mask decomposer pads every bitmap by one pixel); otherwise contours
// crossing the border cannot close. Saddle cells keep diagonal set pixels
// disconnected, matching 4-connectivity of the foreground.
func TraceContours(b *Bitmap) []Polygon {
	var segs []segment
	for y := 0; y < b.H-1; y++ {
		for x := 0; x < b.W-1; x++ {
			tl := b.At(x, y)
			tr := b.At(x+1, y)
			br := b.At(x+1, y+1)
			bl := b.At(x, y+1)
			idx := tl<<3 | tr<<2 | br<<1 | bl
			if idx == 0 || idx == 15 {
				continue
			}

			top := gridKey{2*x + 1, 2 * y}
			bottom := gridKey{2*x + 1, 2*y + 2}
			left := gridKey{2 * x, 2*y + 1}
			right := gridKey{2*x + 2, 2*y + 1}

			switch idx {
			case 8, 7: // top-left corner differs
				segs = append(segs, segment{top, left})
			case 4, 11: // top-right corner differs
				segs = append(segs, segment{top, right})
			case 2, 13: // bottom-right corner differs
				segs = append(segs, segment{bottom, right})
			case 1, 14: // bottom-left corner differs
				segs = append(segs, segment{bottom, left})
			case 12, 3: // top row differs from bottom row
				segs = append(segs, segment{left, right})
			case 6, 9: // left column differs from right column
				segs = append(segs, segment{top, bottom})
			case 10: // saddle: set pixels at top-left and bottom-right
				segs = append(segs, segment{top, left}, segment{bottom, right})
			case 5: // saddle: set pixels at top-right and bottom-left
				segs = append(segs, segment{top, right}, segment{bottom, left})
			}
		}
	}

	return chainSegments(segs)
}

// chainSegments links crossing segments into closed rings. Every vertex is
// shared by exactly two segments, so following the unused partner at each
// endpoint walks a full loop.
func chainSegments(segs []segment) []Polygon {
	ends := make(map[gridKey][]int, len(segs))
	for i, s := range segs {
		ends[s.a] = append(ends[s.a], i)
		ends[s.b] = append(ends[s.b], i)
	}

	used := make([]bool, len(segs))
	var polygons []Polygon

	for i := range segs {
		if used[i] {
			continue
		}
		used[i] = true
		start := segs[i].a
		current := segs[i].b
		ring := Polygon{pointFromKey(start)}

		for current != start {
			ring = append(ring, pointFromKey(current))
			next := -1
			for _, j := range ends[current] {
				if !used[j] {
					next = j
					break
				}
			}
			if next == -1 {
				// Open chain; cannot happen for padded bitmaps.
				break
			}
			used[next] = true
			if segs[next].a == current {
				current = segs[next].b
			} else {
				current = segs[next].a
			}
		}
		polygons = append(polygons, ring)
	}
	return polygons
}

func pointFromKey(k gridKey) Point {
	return Point{X: float64(k.x) / 2, Y: float64(k.y) / 2}
}
