package connectivity

import (
	"errors"
	"testing"

	"levelforge/internal/grid"
)

// parseLevel turns '#' into walls, '~' into hazards and anything else into air.
func parseLevel(t *testing.T, rows ...string) *grid.Grid {
	t.Helper()
	codes := make([][]grid.Code, len(rows))
	for y, row := range rows {
		codes[y] = make([]grid.Code, len(row))
		for x, ch := range row {
			switch ch {
			case '#':
				codes[y][x] = grid.Wall
			case '~':
				codes[y][x] = grid.Hazard
			default:
				codes[y][x] = grid.Air
			}
		}
	}
	g, err := grid.FromRows(codes)
	if err != nil {
		t.Fatalf("FromRows: %v", err)
	}
	return g
}

func TestFloodFillIsFourConnected(t *testing.T) {
	g := parseLevel(t,
		"#####",
		"#..##",
		"##.~#",
		"###.#",
		"#####",
	)
	visited := FloodFill(g, grid.Point{X: 1, Y: 1}, NotWall)
	if visited.Size() != 5 {
		t.Fatalf("expected 5 reachable cells, got %d", visited.Size())
	}
	if !visited.Has(grid.Point{X: 3, Y: 3}) {
		t.Fatal("expected hazard-adjacent cell to be reached through the hazard")
	}

	diagonal := parseLevel(t,
		"####",
		"#.##",
		"##.#",
		"####",
	)
	if Reachable(diagonal, grid.Point{X: 1, Y: 1}, grid.Point{X: 2, Y: 2}, NotWall) {
		t.Fatal("diagonal steps must not connect cells")
	}
}

func TestFloodFillFromWallIsEmpty(t *testing.T) {
	g := parseLevel(t, "###", "#.#", "###")
	if got := FloodFill(g, grid.Point{X: 0, Y: 0}, NotWall).Size(); got != 0 {
		t.Fatalf("expected empty set, got %d", got)
	}
	if got := FloodFill(g, grid.Point{X: 9, Y: 9}, NotWall).Size(); got != 0 {
		t.Fatalf("expected empty set for out of range start, got %d", got)
	}
}

func TestRepairByRemovalRemovesInReverseOrder(t *testing.T) {
	g := parseLevel(t,
		"#######",
		"#..#..#",
		"#######",
	)
	start := grid.Point{X: 1, Y: 1}
	goal := grid.Point{X: 5, Y: 1}
	// The wall at (3,1) is the blocker; it was placed first, so the two
	// later (harmless) obstacles are removed before it.
	obstacles := []grid.Point{{X: 3, Y: 1}, {X: 1, Y: 2}, {X: 2, Y: 2}}

	repaired, removed, err := RepairByRemoval(g, start, goal, obstacles, grid.Air, NotWall)
	if err != nil {
		t.Fatalf("RepairByRemoval: %v", err)
	}
	if removed != 3 {
		t.Fatalf("expected 3 removals, got %d", removed)
	}
	if !Reachable(repaired, start, goal, NotWall) {
		t.Fatal("goal should be reachable after repair")
	}
	if code, _ := g.At(3, 1); code != grid.Wall {
		t.Fatal("input grid must not be modified")
	}
}

func TestRepairByRemovalStopsAsSoonAsReachable(t *testing.T) {
	g := parseLevel(t, "#####", "#.#.#", "#####")
	obstacles := []grid.Point{{X: 1, Y: 2}, {X: 2, Y: 1}}
	_, removed, err := RepairByRemoval(g, grid.Point{X: 1, Y: 1}, grid.Point{X: 3, Y: 1}, obstacles, grid.Air, NotWall)
	if err != nil {
		t.Fatalf("RepairByRemoval: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected a single removal, got %d", removed)
	}
}

func TestRepairByRemovalExhaustion(t *testing.T) {
	g := parseLevel(t, "#####", "#.#.#", "#####")
	_, _, err := RepairByRemoval(g, grid.Point{X: 1, Y: 1}, grid.Point{X: 3, Y: 1}, []grid.Point{{X: 1, Y: 2}}, grid.Air, NotWall)
	if !errors.Is(err, ErrUnrepairable) {
		t.Fatalf("expected ErrUnrepairable, got %v", err)
	}
}

func TestShortestPathAndWiden(t *testing.T) {
	g := parseLevel(t,
		"########",
		"#......#",
		"#.####.#",
		"#......#",
		"########",
	)
	start := grid.Point{X: 1, Y: 1}
	goal := grid.Point{X: 6, Y: 1}
	path := ShortestPath(g, start, goal, NotWall)
	if len(path) != 6 {
		t.Fatalf("expected a 6 cell path, got %d: %v", len(path), path)
	}
	if path[0] != start || path[len(path)-1] != goal {
		t.Fatalf("path should run from start to goal, got %v", path)
	}

	widened, changed := WidenPath(g, path, grid.Air)
	if changed == 0 {
		t.Fatal("expected widening to open cells")
	}
	for x := 1; x <= 6; x++ {
		if code, _ := widened.At(x, 2); code != grid.Air {
			t.Fatalf("cell (%d,2) should be opened, got %v", x, code)
		}
	}
	if code, _ := widened.At(1, 0); code != grid.Wall {
		t.Fatal("border cells must never be widened")
	}

	if ShortestPath(g, start, grid.Point{X: 0, Y: 0}, NotWall) != nil {
		t.Fatal("expected nil path to a wall")
	}
}

func TestIsolatedCells(t *testing.T) {
	g, _ := grid.New(5, 5, grid.Ocean)
	g.Set(1, 1, grid.River)
	g.Set(3, 3, grid.River)
	g.Set(4, 4, grid.Land)
	connects := func(c grid.Code) bool { return c >= grid.Land }

	isolated := IsolatedCells(g, grid.River, connects)
	if len(isolated) != 1 || isolated[0] != (grid.Point{X: 1, Y: 1}) {
		t.Fatalf("unexpected isolated cells: %v", isolated)
	}
}

func TestManhattanDistance(t *testing.T) {
	if d := ManhattanDistance(grid.Point{X: 1, Y: 2}, grid.Point{X: 4, Y: -2}); d != 7 {
		t.Fatalf("expected 7, got %d", d)
	}
}
