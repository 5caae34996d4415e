package level

import (
	"errors"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/zyedidia/generic/mapset"

	"levelforge/internal/config"
	"levelforge/internal/connectivity"
	"levelforge/internal/grid"
	"levelforge/internal/logging"
	"levelforge/internal/rng"
	"levelforge/internal/verify"
)

// Composer builds a single level from a resolved LevelSpec and a seed. Every
// random decision is drawn from one stream seeded by the seed string.
type Composer struct {
	spec  config.LevelSpec
	seed  string
	rnd   *rng.Stream
	log   logrus.FieldLogger
	state State
}

func NewComposer(spec config.LevelSpec, seed string, logger logrus.FieldLogger) *Composer {
	return &Composer{
		spec: spec,
		seed: seed,
		log:  logging.Or(logger).WithField("seed", seed),
	}
}

// State reports the last state the composer reached.
func (c *Composer) State() State {
	return c.state
}

func (c *Composer) advance(next State, fields logrus.Fields) {
	c.state = next
	c.log.WithFields(fields).WithField("state", next.String()).Debug("level state")
}

// Compose runs every phase in order. It can be called again and will replay
// the same draws.
func (c *Composer) Compose() (*Level, error) {
	c.state = StateEmpty
	c.rnd = rng.New(rng.SeedHash(c.seed))
	spec := c.spec
	tc := spec.ThemeConfig

	g, err := grid.New(spec.Width, spec.Height, grid.Wall)
	if err != nil {
		return nil, fmt.Errorf("allocate level grid: %w", err)
	}
	lvl := &Level{
		ID:         ID(spec.Theme, spec.Size, c.seed),
		Name:       fmt.Sprintf("%s %s", tc.Name, c.seed),
		Seed:       c.seed,
		Theme:      spec.Theme,
		Size:       spec.Size,
		Difficulty: spec.Difficulty,
		TileSize:   spec.TileSize,
		Budget:     spec.Budget,
	}

	g, lvl.Rooms, lvl.Stats.Fallback = c.placeRooms(g)
	lvl.Stats.Rooms = len(lvl.Rooms)
	c.advance(StateRoomed, logrus.Fields{"rooms": len(lvl.Rooms), "fallback": lvl.Stats.Fallback})

	g, corridor := c.connectRooms(g, lvl.Rooms)
	g, lvl.Spawn, lvl.Exit = c.pickEndpoints(g, lvl.Rooms)
	c.advance(StateConnected, logrus.Fields{"corridor": corridor.Size(), "spawn": lvl.Spawn, "exit": lvl.Exit})

	g, obstacles := c.scatterObstacles(g, corridor, lvl.Spawn, lvl.Exit)
	lvl.Stats.Obstacles = len(obstacles)
	g, lvl.Stats.Removed, err = connectivity.RepairByRemoval(g, lvl.Spawn, lvl.Exit, obstacles, grid.Air, connectivity.NotWall)
	if err != nil {
		if errors.Is(err, connectivity.ErrUnrepairable) {
			return nil, fmt.Errorf("%w: seed %q, %d obstacles removed: %w", ErrRepairExhausted, c.seed, len(obstacles), err)
		}
		return nil, err
	}
	if spec.Size.Widened() {
		path := connectivity.ShortestPath(g, lvl.Spawn, lvl.Exit, connectivity.NotWall)
		g, lvl.Stats.Widened = connectivity.WidenPath(g, path, grid.Air)
	}

	g = c.placeEntities(g, lvl)
	lvl.Grid = g
	lvl.Triggers = []Trigger{{Type: "exit", X: lvl.Exit.X, Y: lvl.Exit.Y, Target: "world"}}
	if tc.ArtFrames {
		lvl.ArtFrames = artFrames(g, lvl.Rooms)
	}
	lvl.ItemSpawn = itemSpawn(g, lvl)
	c.advance(StatePopulated, logrus.Fields{
		"obstacles": lvl.Stats.Obstacles,
		"removed":   lvl.Stats.Removed,
		"widened":   lvl.Stats.Widened,
		"enemies":   len(lvl.Enemies),
		"hazards":   len(lvl.Hazards),
	})

	report := verify.CheckLevel(lvl.ID, verify.Level{
		Grid:               g,
		Width:              spec.Width,
		Height:             spec.Height,
		Spawn:              lvl.Spawn,
		Exit:               lvl.Exit,
		Enemies:            verifyEnemies(lvl.Enemies),
		Hazards:            lvl.Hazards,
		Budget:             spec.Budget,
		MinEnemyDistance:   spec.MinEnemyDistance,
		HazardSafeDistance: spec.HazardSafeDistance,
	})
	if !report.OK() {
		report.Log(c.log)
		return nil, report.Err()
	}
	c.advance(StateVerified, logrus.Fields{"draws": c.rnd.Draws()})
	c.log.WithFields(logrus.Fields{
		"id":      lvl.ID,
		"enemies": len(lvl.Enemies),
		"budget":  fmt.Sprintf("%d/%d", lvl.Stats.BudgetSpent, spec.Budget),
	}).Info("level composed")
	return lvl, nil
}

func verifyEnemies(enemies []Enemy) []verify.Enemy {
	out := make([]verify.Enemy, len(enemies))
	for i, e := range enemies {
		out[i] = verify.Enemy{X: e.X, Y: e.Y, Cost: e.Cost, PatrolLeft: e.PatrolLeft, PatrolRight: e.PatrolRight}
	}
	return out
}

// placeRooms carves up to the theme's room count into an all-wall grid. When
// fewer than two rooms fit it falls back to a single full-width room.
func (c *Composer) placeRooms(g *grid.Grid) (*grid.Grid, []Room, bool) {
	tc := c.spec.ThemeConfig
	target := c.rnd.Range(tc.Rooms.Min, tc.Rooms.Max)

	maxW := min(tc.RoomWidth.Max, g.Width-2)
	maxH := min(tc.RoomHeight.Max, g.Height-2)
	fits := maxW >= tc.RoomWidth.Min && maxH >= tc.RoomHeight.Min

	var rooms []Room
	for attempt := 0; fits && attempt < target*10 && len(rooms) < target; attempt++ {
		w := c.rnd.Range(tc.RoomWidth.Min, maxW)
		h := c.rnd.Range(tc.RoomHeight.Min, maxH)
		room := Room{
			X: c.rnd.Range(1, g.Width-w-1),
			Y: c.rnd.Range(1, g.Height-h-1),
			W: w,
			H: h,
		}
		overlaps := false
		for _, other := range rooms {
			if room.overlapsWithMargin(other) {
				overlaps = true
				break
			}
		}
		if !overlaps {
			rooms = append(rooms, room)
		}
	}

	next := g.Clone()
	fallback := len(rooms) < 2
	if fallback {
		c.log.WithField("accepted", len(rooms)).Warn("room placement fell back to a single corridor room")
		rooms = []Room{fallbackRoom(g.Width, g.Height, tc.CorridorHalfWidth)}
	}
	for _, r := range rooms {
		next.Fill(r.X, r.Y, r.W, r.H, grid.Air)
	}
	return next, rooms, fallback
}

func fallbackRoom(width, height, halfWidth int) Room {
	h := max(3, 2*halfWidth+1)
	h = min(h, height-2)
	return Room{X: 1, Y: (height - h) / 2, W: width - 2, H: h}
}

// connectRooms orders rooms left to right and joins each consecutive pair with
// an L-shaped corridor. The returned set marks every corridor cell.
func (c *Composer) connectRooms(g *grid.Grid, rooms []Room) (*grid.Grid, *mapset.Set[grid.Point]) {
	sort.SliceStable(rooms, func(i, j int) bool {
		return rooms[i].Center().X < rooms[j].Center().X
	})

	next := g.Clone()
	corridor := mapset.New[grid.Point]()
	reach := c.spec.ThemeConfig.CorridorHalfWidth - 1
	carve := func(x, y int) {
		if next.Interior(x, y) {
			next.Set(x, y, grid.Air)
			corridor.Put(grid.Point{X: x, Y: y})
		}
	}
	for i := 1; i < len(rooms); i++ {
		a, b := rooms[i-1].Center(), rooms[i].Center()
		for x := min(a.X, b.X); x <= max(a.X, b.X); x++ {
			for d := -reach; d <= reach; d++ {
				carve(x, a.Y+d)
			}
		}
		for y := min(a.Y, b.Y); y <= max(a.Y, b.Y); y++ {
			for d := -reach; d <= reach; d++ {
				carve(b.X+d, y)
			}
		}
	}
	return next, &corridor
}

// pickEndpoints draws spawn inside the first room and exit inside the last and
// force-carves both.
func (c *Composer) pickEndpoints(g *grid.Grid, rooms []Room) (*grid.Grid, grid.Point, grid.Point) {
	first, last := rooms[0], rooms[len(rooms)-1]
	spawn := grid.Point{X: first.X + c.rnd.Intn(first.W), Y: first.Y + c.rnd.Intn(first.H)}
	exit := grid.Point{X: last.X + c.rnd.Intn(last.W), Y: last.Y + c.rnd.Intn(last.H)}
	if exit == spawn {
		exit = grid.Point{X: last.X + last.W - 1 - (spawn.X - last.X), Y: last.Y + last.H - 1 - (spawn.Y - last.Y)}
		if exit == spawn {
			// dead centre of an odd room
			if exit.X+1 < last.X+last.W {
				exit.X++
			} else {
				exit.X--
			}
		}
	}

	next := g.Clone()
	next.Set(spawn.X, spawn.Y, grid.Air)
	next.Set(exit.X, exit.Y, grid.Air)
	return next, spawn, exit
}

// scatterObstacles draws once per eligible floor cell in row-major order and
// returns the obstacles in placement order.
func (c *Composer) scatterObstacles(g *grid.Grid, corridor *mapset.Set[grid.Point], spawn, exit grid.Point) (*grid.Grid, []grid.Point) {
	chance := c.spec.ThemeConfig.ObstacleChance
	next := g.Clone()
	var obstacles []grid.Point
	g.ForEach(func(x, y int, code grid.Code) bool {
		p := grid.Point{X: x, Y: y}
		if code != grid.Air || !g.Interior(x, y) || p == spawn || p == exit || corridor.Has(p) {
			return true
		}
		if c.rnd.Chance(chance) {
			next.Set(x, y, grid.Wall)
			obstacles = append(obstacles, p)
		}
		return true
	})
	return next, obstacles
}
