// Package level composes seeded, budget-constrained tile levels. A composer
// walks Empty, Roomed, Connected, Populated and Verified in order and only
// returns a level once the verifier accepts it.
package level

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"levelforge/internal/config"
	"levelforge/internal/grid"
)

// ErrRepairExhausted is returned when removing every scattered obstacle
// still leaves the exit unreachable.
var ErrRepairExhausted = errors.New("level repair exhausted")

type State int

const (
	StateEmpty State = iota
	StateRoomed
	StateConnected
	StatePopulated
	StateVerified
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateRoomed:
		return "roomed"
	case StateConnected:
		return "connected"
	case StatePopulated:
		return "populated"
	case StateVerified:
		return "verified"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Room is an axis-aligned rectangle carved into the level.
type Room struct {
	X, Y, W, H int
}

func (r Room) Center() grid.Point {
	return grid.Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Contains reports whether p lies inside the room.
func (r Room) Contains(p grid.Point) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// overlapsWithMargin reports whether r grown by one tile on every side
// intersects o.
func (r Room) overlapsWithMargin(o Room) bool {
	return r.X-1 < o.X+o.W && r.X+r.W+1 > o.X &&
		r.Y-1 < o.Y+o.H && r.Y+r.H+1 > o.Y
}

type Enemy struct {
	Kind        config.EnemyKind
	X, Y        int
	HP          int
	Cost        int
	PatrolLeft  int
	PatrolRight int
}

type Trigger struct {
	Type   string
	X, Y   int
	Target string
}

type ArtFrame struct {
	X, Y int
	Side string
}

// Stats summarises what each phase did.
type Stats struct {
	Rooms         int
	Fallback      bool
	Obstacles     int
	Removed       int
	Widened       int
	HazardSkipped int
	EnemySkipped  int
	BudgetSpent   int
}

// Level is a finished, verified level.
type Level struct {
	ID         string
	Name       string
	Seed       string
	Theme      config.Theme
	Size       config.Size
	Difficulty int
	TileSize   int
	Budget     int

	Grid      *grid.Grid
	Rooms     []Room
	Spawn     grid.Point
	Exit      grid.Point
	Enemies   []Enemy
	Hazards   []grid.Point
	Triggers  []Trigger
	ArtFrames []ArtFrame
	ItemSpawn *grid.Point

	Stats Stats
}

// Generate resolves the run inputs against cfg and composes one level.
// Unknown themes or sizes fail before any generation work.
func Generate(cfg *config.LevelConfig, theme, size, seed string, difficulty int, logger logrus.FieldLogger) (*Level, error) {
	spec, err := cfg.Resolve(theme, size, difficulty)
	if err != nil {
		return nil, err
	}
	return NewComposer(spec, seed, logger).Compose()
}

// ID builds the conventional level id from its inputs.
func ID(theme config.Theme, size config.Size, seed string) string {
	return strings.ToLower(fmt.Sprintf("%s_%s_%s", theme, size, Slug(seed)))
}

// Slug lowercases s and collapses every run of characters outside [a-z0-9]
// into a single dash.
func Slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
		}
		dash = true
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "seed"
	}
	return out
}
