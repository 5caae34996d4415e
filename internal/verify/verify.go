// Package verify holds the tripwire checks that gate every artifact. A run
// whose report carries any violation must not write its output.
package verify

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"levelforge/internal/connectivity"
	"levelforge/internal/grid"
)

// ErrInvariant wraps every failed report.
var ErrInvariant = errors.New("invariant violated")

type Violation struct {
	Check  string
	Detail string
}

func (v Violation) String() string {
	return v.Check + ": " + v.Detail
}

// Report collects violations for one artifact.
type Report struct {
	Subject    string
	Violations []Violation
}

func (r *Report) add(check, format string, args ...any) {
	r.Violations = append(r.Violations, Violation{Check: check, Detail: fmt.Sprintf(format, args...)})
}

func (r *Report) OK() bool {
	return len(r.Violations) == 0
}

// Err returns nil for a clean report, otherwise an error wrapping
// ErrInvariant that lists every violation.
func (r *Report) Err() error {
	if r.OK() {
		return nil
	}
	parts := make([]string, len(r.Violations))
	for i, v := range r.Violations {
		parts[i] = v.String()
	}
	return fmt.Errorf("%w: %s: %d violation(s): %s", ErrInvariant, r.Subject, len(r.Violations), strings.Join(parts, "; "))
}

// Log emits one error entry per violation.
func (r *Report) Log(logger logrus.FieldLogger) {
	for i, v := range r.Violations {
		logger.WithFields(logrus.Fields{
			"subject": r.Subject,
			"check":   v.Check,
			"index":   i + 1,
		}).Error(v.Detail)
	}
}

// Enemy is the subset of a placed enemy the level checks need.
type Enemy struct {
	X, Y        int
	Cost        int
	PatrolLeft  int
	PatrolRight int
}

// Level describes a generated level ready for checking.
type Level struct {
	Grid               *grid.Grid
	Width, Height      int
	Spawn, Exit        grid.Point
	Enemies            []Enemy
	Hazards            []grid.Point
	Budget             int
	MinEnemyDistance   int
	HazardSafeDistance int // hazards must be farther than this from spawn and exit
}

func CheckLevel(subject string, l Level) *Report {
	r := &Report{Subject: subject}
	g := l.Grid
	if g == nil {
		r.add("grid", "missing grid")
		return r
	}
	if g.Width != l.Width || g.Height != l.Height {
		r.add("dimensions", "grid is %dx%d, want %dx%d", g.Width, g.Height, l.Width, l.Height)
	}

	endpointsOK := true
	for _, ep := range []struct {
		name string
		p    grid.Point
	}{{"spawn", l.Spawn}, {"exit", l.Exit}} {
		code, ok := g.At(ep.p.X, ep.p.Y)
		switch {
		case !ok:
			r.add(ep.name, "%v is out of bounds", ep.p)
			endpointsOK = false
		case code == grid.Wall:
			r.add(ep.name, "%v is solid", ep.p)
			endpointsOK = false
		case code == grid.Hazard:
			r.add(ep.name, "%v holds a hazard", ep.p)
		}
	}
	if endpointsOK && !connectivity.Reachable(g, l.Spawn, l.Exit, connectivity.NotWall) {
		r.add("reachability", "exit %v unreachable from spawn %v", l.Exit, l.Spawn)
	}

	spent := 0
	for i, e := range l.Enemies {
		spent += e.Cost
		p := grid.Point{X: e.X, Y: e.Y}
		if p == l.Spawn || p == l.Exit {
			r.add("enemy", "enemy %d sits on spawn or exit at %v", i, p)
		}
		if code, ok := g.At(e.X, e.Y); !ok || code == grid.Wall {
			r.add("enemy", "enemy %d at %v is not on a walkable tile", i, p)
		}
		if e.X < e.PatrolLeft || e.X > e.PatrolRight {
			r.add("patrol", "enemy %d at x=%d outside patrol [%d,%d]", i, e.X, e.PatrolLeft, e.PatrolRight)
		}
		if d := connectivity.ManhattanDistance(p, l.Spawn); d < l.MinEnemyDistance {
			r.add("enemy", "enemy %d at %v is %d from spawn, want >= %d", i, p, d, l.MinEnemyDistance)
		}
	}
	if spent > l.Budget {
		r.add("budget", "enemy cost %d exceeds budget %d", spent, l.Budget)
	}

	for i, h := range l.Hazards {
		if h == l.Spawn || h == l.Exit {
			r.add("hazard", "hazard %d sits on spawn or exit at %v", i, h)
			continue
		}
		ds, de := connectivity.ManhattanDistance(h, l.Spawn), connectivity.ManhattanDistance(h, l.Exit)
		if min(ds, de) <= l.HazardSafeDistance {
			r.add("hazard", "hazard %d at %v is %d from an endpoint, want > %d", i, h, min(ds, de), l.HazardSafeDistance)
		}
	}
	return r
}

// Node is a world node position to check.
type Node struct {
	ID   string
	X, Y int
}

type World struct {
	Grid  *grid.Grid
	Nodes []Node
}

func landOrHigher(code grid.Code) bool {
	return code >= grid.Land
}

func CheckWorld(subject string, w World) *Report {
	r := &Report{Subject: subject}
	g := w.Grid
	if g == nil {
		r.add("grid", "missing grid")
		return r
	}

	counts := g.Counts()
	ocean, coast := counts[grid.Ocean], counts[grid.Coast]
	land, mountain, river := counts[grid.Land], counts[grid.Mountain], counts[grid.River]

	if total := ocean + coast + land + mountain + river; total != g.Area() {
		r.add("cell-total", "known cells %d != area %d", total, g.Area())
	}
	if river > land+mountain+river {
		r.add("river-count", "river %d exceeds land+mountain+river %d", river, land+mountain+river)
	}
	if mountain > land+mountain {
		r.add("mountain-count", "mountain %d exceeds land+mountain %d", mountain, land+mountain)
	}
	if coast == 0 {
		r.add("coast", "no coast cells")
	}
	if land == 0 {
		r.add("land", "no land cells")
	}
	if isolated := connectivity.IsolatedCells(g, grid.River, landOrHigher); len(isolated) > 0 {
		r.add("river-isolation", "%d river cell(s) without land neighbours, first at %v", len(isolated), isolated[0])
	}
	for _, n := range w.Nodes {
		code, ok := g.At(n.X, n.Y)
		if !ok || !landOrHigher(code) {
			r.add("node", "node %s at (%d,%d) is not on land", n.ID, n.X, n.Y)
		}
	}
	return r
}
