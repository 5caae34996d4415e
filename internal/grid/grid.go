// Package grid holds the rectangular tile grids shared by levels and the world map.
package grid

import (
	"fmt"

	"codeberg.org/anaseto/gruid"
)

// Code is the value stored in a single grid cell.
type Code int

// Level tile codes.
const (
	Air    Code = 0
	Wall   Code = 1
	Hazard Code = 2
)

// World tile codes. The ordering matters: anything >= Land is walkable terrain.
const (
	Ocean    Code = 0
	Coast    Code = 1
	Land     Code = 2
	Mountain Code = 3
	River    Code = 4
)

// Point is a cell coordinate.
type Point = gruid.Point

// Grid is a fixed-size rectangular array of cell codes stored row-major.
type Grid struct {
	Width  int
	Height int
	cells  []Code
}

// New allocates a grid filled with fill.
func New(width, height int, fill Code) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("grid dimensions must be positive, got %dx%d", width, height)
	}
	cells := make([]Code, width*height)
	if fill != 0 {
		for i := range cells {
			cells[i] = fill
		}
	}
	return &Grid{Width: width, Height: height, cells: cells}, nil
}

// FromRows builds a grid from a rectangular slice of rows.
func FromRows(rows [][]Code) (*Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("grid rows must be non-empty")
	}
	g, err := New(len(rows[0]), len(rows), 0)
	if err != nil {
		return nil, err
	}
	for y, row := range rows {
		if len(row) != g.Width {
			return nil, fmt.Errorf("row %d has %d cells, want %d", y, len(row), g.Width)
		}
		copy(g.cells[y*g.Width:], row)
	}
	return g, nil
}

func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.Width && y < g.Height
}

// Interior reports whether the cell is inside the one-tile border.
func (g *Grid) Interior(x, y int) bool {
	return x >= 1 && y >= 1 && x < g.Width-1 && y < g.Height-1
}

func (g *Grid) At(x, y int) (Code, bool) {
	if !g.InBounds(x, y) {
		return 0, false
	}
	return g.cells[y*g.Width+x], true
}

func (g *Grid) Set(x, y int, code Code) bool {
	if !g.InBounds(x, y) {
		return false
	}
	g.cells[y*g.Width+x] = code
	return true
}

// Fill sets every cell of the inclusive-exclusive rectangle that lies in bounds.
func (g *Grid) Fill(x, y, w, h int, code Code) {
	for yy := y; yy < y+h; yy++ {
		for xx := x; xx < x+w; xx++ {
			g.Set(xx, yy, code)
		}
	}
}

// Area is the number of cells.
func (g *Grid) Area() int {
	return len(g.cells)
}

// Clone returns an unaliased copy.
func (g *Grid) Clone() *Grid {
	cells := make([]Code, len(g.cells))
	copy(cells, g.cells)
	return &Grid{Width: g.Width, Height: g.Height, cells: cells}
}

// Counts tallies cells per code.
func (g *Grid) Counts() map[Code]int {
	counts := make(map[Code]int)
	for _, c := range g.cells {
		counts[c]++
	}
	return counts
}

// ForEach visits cells in row-major order until fn returns false.
func (g *Grid) ForEach(fn func(x, y int, code Code) bool) {
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			if !fn(x, y, g.cells[y*g.Width+x]) {
				return
			}
		}
	}
}

// Rows exports the grid as [][]int for serialization.
func (g *Grid) Rows() [][]int {
	rows := make([][]int, g.Height)
	for y := 0; y < g.Height; y++ {
		row := make([]int, g.Width)
		for x := 0; x < g.Width; x++ {
			row[x] = int(g.cells[y*g.Width+x])
		}
		rows[y] = row
	}
	return rows
}

// Neighbors8 calls fn for each in-bounds neighbor of (x, y), including diagonals.
func (g *Grid) Neighbors8(x, y int, fn func(nx, ny int, code Code)) {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := x+dx, y+dy
			if c, ok := g.At(nx, ny); ok {
				fn(nx, ny, c)
			}
		}
	}
}
