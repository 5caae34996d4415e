// Package geometry implements polygon containment and line rasterization over
// lon/lat features.
package geometry

import "math"

// Vec is a planar coordinate; for geography X is longitude and Y latitude.
type Vec struct {
	X float64
	Y float64
}

// BBox is an axis-aligned bounding box with inclusive edges.
type BBox struct {
	Min Vec
	Max Vec
}

func emptyBBox() BBox {
	return BBox{
		Min: Vec{X: math.Inf(1), Y: math.Inf(1)},
		Max: Vec{X: math.Inf(-1), Y: math.Inf(-1)},
	}
}

func (b *BBox) extend(v Vec) {
	b.Min.X = math.Min(b.Min.X, v.X)
	b.Min.Y = math.Min(b.Min.Y, v.Y)
	b.Max.X = math.Max(b.Max.X, v.X)
	b.Max.Y = math.Max(b.Max.Y, v.Y)
}

// Contains reports whether (x, y) lies inside or on the box.
func (b BBox) Contains(x, y float64) bool {
	return x >= b.Min.X && x <= b.Max.X && y >= b.Min.Y && y <= b.Max.Y
}

// Empty reports whether the box has never been extended.
func (b BBox) Empty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y
}

type Kind int

const (
	KindPolygon Kind = iota
	KindPolyline
)

// Feature is one immutable piece of vector geography with its bounding box
// computed at load time.
type Feature struct {
	Kind Kind
	// Rings holds the exterior ring first, followed by hole rings.
	Rings [][]Vec
	// Lines holds the parts of a polyline.
	Lines [][]Vec
	BBox  BBox
	// Rank is the source scalerank; lower values are more prominent.
	Rank int
}

// NewPolygon builds a polygon feature. The bbox only covers the exterior ring
// since holes lie inside it.
func NewPolygon(rings [][]Vec, rank int) Feature {
	box := emptyBBox()
	if len(rings) > 0 {
		for _, v := range rings[0] {
			box.extend(v)
		}
	}
	return Feature{Kind: KindPolygon, Rings: rings, BBox: box, Rank: rank}
}

func NewPolyline(lines [][]Vec, rank int) Feature {
	box := emptyBBox()
	for _, line := range lines {
		for _, v := range line {
			box.extend(v)
		}
	}
	return Feature{Kind: KindPolyline, Lines: lines, BBox: box, Rank: rank}
}

// Contains tests a point against a polygon feature, culling by bbox first.
// Polylines never contain points.
func (f Feature) Contains(x, y float64) bool {
	if f.Kind != KindPolygon || f.BBox.Empty() {
		return false
	}
	if !f.BBox.Contains(x, y) {
		return false
	}
	return PointInPolygon(x, y, f.Rings)
}

// PointInPolygon casts a ray against the exterior ring and negates a hit that
// also falls inside any hole ring.
func PointInPolygon(x, y float64, rings [][]Vec) bool {
	if len(rings) == 0 || !insideRing(x, y, rings[0]) {
		return false
	}
	for _, hole := range rings[1:] {
		if insideRing(x, y, hole) {
			return false
		}
	}
	return true
}

func insideRing(x, y float64, ring []Vec) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := ring[i], ring[j]
		if (a.Y > y) != (b.Y > y) {
			crossX := (b.X-a.X)*(y-a.Y)/(b.Y-a.Y) + a.X
			if x < crossX {
				inside = !inside
			}
		}
	}
	return inside
}

// RasterizeLine visits every cell on the Bresenham line between the two
// endpoints, both included.
func RasterizeLine(x0, y0, x1, y1 int, visit func(x, y int)) {
	dx := absInt(x1 - x0)
	dy := -absInt(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		visit(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// RasterizeWide stamps the line twice, the second pass shifted by one cell
// along the minor axis, so the result is two cells thick.
func RasterizeWide(x0, y0, x1, y1 int, visit func(x, y int)) {
	RasterizeLine(x0, y0, x1, y1, visit)
	ox, oy := 0, 1
	if absInt(y1-y0) > absInt(x1-x0) {
		ox, oy = 1, 0
	}
	RasterizeLine(x0+ox, y0+oy, x1+ox, y1+oy, visit)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
