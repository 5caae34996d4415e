package verify

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"levelforge/internal/grid"
)

func corridor(t *testing.T) *grid.Grid {
	t.Helper()
	g, err := grid.New(12, 3, grid.Wall)
	if err != nil {
		t.Fatalf("grid.New: %v", err)
	}
	g.Fill(1, 1, 10, 1, grid.Air)
	return g
}

func validLevel(t *testing.T) Level {
	return Level{
		Grid:               corridor(t),
		Width:              12,
		Height:             3,
		Spawn:              grid.Point{X: 1, Y: 1},
		Exit:               grid.Point{X: 10, Y: 1},
		Enemies:            []Enemy{{X: 8, Y: 1, Cost: 2, PatrolLeft: 5, PatrolRight: 10}},
		Hazards:            []grid.Point{{X: 5, Y: 1}},
		Budget:             3,
		MinEnemyDistance:   6,
		HazardSafeDistance: 2,
	}
}

func TestCheckLevelAcceptsValidLevel(t *testing.T) {
	r := CheckLevel("level", validLevel(t))
	if err := r.Err(); err != nil {
		t.Fatalf("expected clean report, got %v", err)
	}
}

func TestCheckLevelDetectsViolations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Level)
		check  string
	}{
		{
			name:   "blocked exit",
			mutate: func(l *Level) { l.Grid.Set(5, 1, grid.Wall) },
			check:  "reachability",
		},
		{
			name:   "solid spawn",
			mutate: func(l *Level) { l.Grid.Set(1, 1, grid.Wall) },
			check:  "spawn",
		},
		{
			name:   "over budget",
			mutate: func(l *Level) { l.Budget = 1 },
			check:  "budget",
		},
		{
			name:   "outside patrol",
			mutate: func(l *Level) { l.Enemies[0].PatrolLeft = 9 },
			check:  "patrol",
		},
		{
			name:   "hazard on exit",
			mutate: func(l *Level) { l.Hazards = []grid.Point{{X: 10, Y: 1}} },
			check:  "hazard",
		},
		{
			name:   "hazard within safe distance",
			mutate: func(l *Level) { l.Hazards = []grid.Point{{X: 8, Y: 1}} },
			check:  "hazard",
		},
		{
			name:   "enemy too close",
			mutate: func(l *Level) { l.Enemies[0].X = 3; l.Enemies[0].PatrolLeft = 1 },
			check:  "enemy",
		},
		{
			name:   "wrong dimensions",
			mutate: func(l *Level) { l.Width = 24 },
			check:  "dimensions",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := validLevel(t)
			tt.mutate(&l)
			r := CheckLevel("level", l)
			if r.OK() {
				t.Fatal("expected a violation")
			}
			found := false
			for _, v := range r.Violations {
				if v.Check == tt.check {
					found = true
				}
			}
			if !found {
				t.Fatalf("expected a %q violation, got %v", tt.check, r.Violations)
			}
			if !errors.Is(r.Err(), ErrInvariant) {
				t.Fatalf("expected ErrInvariant, got %v", r.Err())
			}
		})
	}
}

func island(t *testing.T) *grid.Grid {
	t.Helper()
	g, err := grid.New(6, 6, grid.Ocean)
	if err != nil {
		t.Fatalf("grid.New: %v", err)
	}
	g.Fill(1, 1, 4, 4, grid.Coast)
	g.Fill(2, 2, 2, 2, grid.Land)
	g.Set(2, 2, grid.River)
	return g
}

func TestCheckWorld(t *testing.T) {
	w := World{Grid: island(t), Nodes: []Node{{ID: "a", X: 3, Y: 3}}}
	if err := CheckWorld("world", w).Err(); err != nil {
		t.Fatalf("expected clean report, got %v", err)
	}

	bad := island(t)
	bad.Fill(2, 2, 2, 2, grid.Coast)
	bad.Set(0, 0, grid.River)
	r := CheckWorld("world", World{Grid: bad, Nodes: []Node{{ID: "a", X: 3, Y: 3}}})
	want := map[string]bool{"land": true, "river-isolation": true, "node": true}
	for _, v := range r.Violations {
		delete(want, v.Check)
	}
	if len(want) != 0 {
		t.Fatalf("missing violations %v in %v", want, r.Violations)
	}
	err := r.Err()
	if !errors.Is(err, ErrInvariant) || !strings.Contains(err.Error(), "3 violation(s)") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCheckWorldRequiresCoast(t *testing.T) {
	g, _ := grid.New(3, 3, grid.Land)
	r := CheckWorld("world", World{Grid: g})
	if len(r.Violations) != 1 || r.Violations[0].Check != "coast" {
		t.Fatalf("expected a single coast violation, got %v", r.Violations)
	}
}

func TestReportLogEnumeratesViolations(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)

	r := &Report{Subject: "x"}
	r.add("a", "first")
	r.add("b", "second")
	r.Log(logger)

	if got := strings.Count(buf.String(), "level=error"); got != 2 {
		t.Fatalf("expected 2 error entries, got %d: %s", got, buf.String())
	}
}
