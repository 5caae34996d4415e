package geometry

import (
	"reflect"
	"testing"
)

func square(minX, minY, maxX, maxY float64) []Vec {
	return []Vec{
		{X: minX, Y: minY},
		{X: maxX, Y: minY},
		{X: maxX, Y: maxY},
		{X: minX, Y: maxY},
		{X: minX, Y: minY},
	}
}

func TestPointInPolygonHonoursHoles(t *testing.T) {
	rings := [][]Vec{
		square(0, 0, 10, 10),
		square(4, 4, 6, 6),
	}
	tests := []struct {
		name string
		x, y float64
		want bool
	}{
		{name: "inside exterior", x: 2, y: 2, want: true},
		{name: "inside hole", x: 5, y: 5, want: false},
		{name: "outside", x: 12, y: 5, want: false},
		{name: "negative side", x: -1, y: 5, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PointInPolygon(tt.x, tt.y, rings); got != tt.want {
				t.Fatalf("PointInPolygon(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestPointInPolygonConcave(t *testing.T) {
	// U shape opening upward.
	ring := []Vec{
		{X: 0, Y: 0}, {X: 9, Y: 0}, {X: 9, Y: 9}, {X: 6, Y: 9},
		{X: 6, Y: 3}, {X: 3, Y: 3}, {X: 3, Y: 9}, {X: 0, Y: 9},
	}
	if PointInPolygon(4.5, 6, [][]Vec{ring}) {
		t.Fatal("point in the notch should be outside")
	}
	if !PointInPolygon(1.5, 6, [][]Vec{ring}) {
		t.Fatal("point in the left arm should be inside")
	}
}

func TestFeatureContainsCullsByBBox(t *testing.T) {
	f := NewPolygon([][]Vec{square(-10, -5, 10, 5)}, 0)
	if f.BBox.Min != (Vec{X: -10, Y: -5}) || f.BBox.Max != (Vec{X: 10, Y: 5}) {
		t.Fatalf("unexpected bbox: %+v", f.BBox)
	}
	if !f.Contains(0, 0) {
		t.Fatal("expected origin inside")
	}
	if f.Contains(0, 50) {
		t.Fatal("expected point outside bbox to be rejected")
	}

	line := NewPolyline([][]Vec{{{X: 0, Y: 0}, {X: 1, Y: 1}}}, 2)
	if line.Contains(0.5, 0.5) {
		t.Fatal("polylines never contain points")
	}
	if (Feature{Kind: KindPolygon}).Contains(0, 0) {
		t.Fatal("empty polygon should contain nothing")
	}
}

func collect(fn func(visit func(x, y int))) [][2]int {
	var cells [][2]int
	fn(func(x, y int) { cells = append(cells, [2]int{x, y}) })
	return cells
}

func TestRasterizeLineVisitsEveryCell(t *testing.T) {
	got := collect(func(v func(x, y int)) { RasterizeLine(0, 0, 4, 2, v) })
	want := [][2]int{{0, 0}, {1, 1}, {2, 1}, {3, 2}, {4, 2}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("RasterizeLine = %v, want %v", got, want)
	}

	reverse := collect(func(v func(x, y int)) { RasterizeLine(3, 5, 3, 2, v) })
	if len(reverse) != 4 || reverse[0] != [2]int{3, 5} || reverse[3] != [2]int{3, 2} {
		t.Fatalf("unexpected vertical line: %v", reverse)
	}

	single := collect(func(v func(x, y int)) { RasterizeLine(7, 7, 7, 7, v) })
	if len(single) != 1 {
		t.Fatalf("degenerate line should visit one cell, got %v", single)
	}
}

func TestRasterizeWideAddsPerpendicularPass(t *testing.T) {
	horizontal := collect(func(v func(x, y int)) { RasterizeWide(0, 0, 3, 0, v) })
	if len(horizontal) != 8 {
		t.Fatalf("expected 8 visits for a wide horizontal line, got %v", horizontal)
	}
	if horizontal[4] != [2]int{0, 1} {
		t.Fatalf("second pass should be offset on y, got %v", horizontal[4])
	}

	vertical := collect(func(v func(x, y int)) { RasterizeWide(0, 0, 0, 3, v) })
	if vertical[4] != [2]int{1, 0} {
		t.Fatalf("second pass should be offset on x, got %v", vertical[4])
	}
}
