// Package connectivity answers reachability and shortest path questions on grids.
package connectivity

import (
	"errors"

	"codeberg.org/anaseto/gruid"
	"codeberg.org/anaseto/gruid/paths"
	"github.com/zyedidia/generic/mapset"

	"levelforge/internal/grid"
)

// ErrUnrepairable is returned when the goal stays unreachable after every
// obstacle has been removed.
var ErrUnrepairable = errors.New("goal unreachable after removing every obstacle")

// Passable decides whether a cell code can be walked through.
type Passable func(code grid.Code) bool

// NotWall is the level passability predicate: anything but a wall.
func NotWall(code grid.Code) bool {
	return code != grid.Wall
}

func keepFunc(g *grid.Grid, passable Passable) func(gruid.Point) bool {
	return func(p gruid.Point) bool {
		code, ok := g.At(p.X, p.Y)
		return ok && passable(code)
	}
}

// FloodFill walks 4-connected neighbors breadth first from start and returns
// the set of visited cells. An impassable or out of range start yields an
// empty set.
func FloodFill(g *grid.Grid, start grid.Point, passable Passable) *mapset.Set[grid.Point] {
	visited := mapset.New[grid.Point]()
	keep := keepFunc(g, passable)
	if !keep(start) {
		return &visited
	}

	var nbs paths.Neighbors
	queue := []grid.Point{start}
	visited.Put(start)
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range nbs.Cardinal(current, keep) {
			if visited.Has(next) {
				continue
			}
			visited.Put(next)
			queue = append(queue, next)
		}
	}
	return &visited
}

// Reachable reports whether goal can be reached from start.
func Reachable(g *grid.Grid, start, goal grid.Point, passable Passable) bool {
	return FloodFill(g, start, passable).Has(goal)
}

// RepairByRemoval removes obstacles in reverse placement order, re-checking
// reachability after each removal, until goal is reachable from start. The
// input grid is left untouched; the repaired copy and the number of removed
// obstacles are returned.
func RepairByRemoval(g *grid.Grid, start, goal grid.Point, obstacles []grid.Point, floor grid.Code, passable Passable) (*grid.Grid, int, error) {
	repaired := g.Clone()
	removed := 0
	next := len(obstacles) - 1
	for {
		if Reachable(repaired, start, goal, passable) {
			return repaired, removed, nil
		}
		if next < 0 {
			return nil, removed, ErrUnrepairable
		}
		p := obstacles[next]
		repaired.Set(p.X, p.Y, floor)
		removed++
		next--
	}
}

type gridPather struct {
	keep func(gruid.Point) bool
	nbs  paths.Neighbors
}

func (p *gridPather) Neighbors(q gruid.Point) []gruid.Point {
	return p.nbs.Cardinal(q, p.keep)
}

func (p *gridPather) Cost(from, to gruid.Point) int {
	return 1
}

func (p *gridPather) Estimation(from, to gruid.Point) int {
	return paths.DistanceManhattan(from, to)
}

// ShortestPath returns a shortest 4-connected path from start to goal, both
// included, or nil when none exists.
func ShortestPath(g *grid.Grid, start, goal grid.Point, passable Passable) []grid.Point {
	keep := keepFunc(g, passable)
	if !keep(start) || !keep(goal) {
		return nil
	}
	if start == goal {
		return []grid.Point{start}
	}
	pr := paths.NewPathRange(gruid.NewRange(0, 0, g.Width, g.Height))
	return pr.AstarPath(&gridPather{keep: keep}, start, goal)
}

var cardinal = [4]grid.Point{{X: 0, Y: -1}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 0}}

// WidenPath sets every interior orthogonal neighbor of each path cell to code.
// It returns the widened copy and how many cells changed.
func WidenPath(g *grid.Grid, path []grid.Point, code grid.Code) (*grid.Grid, int) {
	widened := g.Clone()
	changed := 0
	for _, p := range path {
		for _, d := range cardinal {
			x, y := p.X+d.X, p.Y+d.Y
			if !widened.Interior(x, y) {
				continue
			}
			if current, _ := widened.At(x, y); current != code {
				widened.Set(x, y, code)
				changed++
			}
		}
	}
	return widened, changed
}

// IsolatedCells lists, in row-major order, cells holding target that have no
// 8-neighbor satisfying connects.
func IsolatedCells(g *grid.Grid, target grid.Code, connects func(grid.Code) bool) []grid.Point {
	var isolated []grid.Point
	g.ForEach(func(x, y int, code grid.Code) bool {
		if code != target {
			return true
		}
		linked := false
		g.Neighbors8(x, y, func(_, _ int, n grid.Code) {
			if connects(n) {
				linked = true
			}
		})
		if !linked {
			isolated = append(isolated, grid.Point{X: x, Y: y})
		}
		return true
	})
	return isolated
}

// ManhattanDistance between two cells.
func ManhattanDistance(a, b grid.Point) int {
	return paths.DistanceManhattan(a, b)
}
