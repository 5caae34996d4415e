package level

import (
	"github.com/zyedidia/generic/mapset"

	"levelforge/internal/config"
	"levelforge/internal/connectivity"
	"levelforge/internal/grid"
)

// placeEntities stamps hazards and spends the enemy budget over the shuffled
// reachable candidates.
func (c *Composer) placeEntities(g *grid.Grid, lvl *Level) *grid.Grid {
	spec := c.spec
	next := g.Clone()

	reachable := connectivity.FloodFill(g, lvl.Spawn, connectivity.NotWall)
	var candidates []grid.Point
	g.ForEach(func(x, y int, _ grid.Code) bool {
		p := grid.Point{X: x, Y: y}
		if p == lvl.Spawn || p == lvl.Exit || !reachable.Has(p) {
			return true
		}
		if connectivity.ManhattanDistance(p, lvl.Spawn) >= spec.MinEnemyDistance {
			candidates = append(candidates, p)
		}
		return true
	})
	c.rnd.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	hazardCount := min(spec.ThemeConfig.Hazards, len(candidates)/4)
	split := len(candidates) - hazardCount
	for _, p := range candidates[split:] {
		if connectivity.ManhattanDistance(p, lvl.Spawn) <= spec.HazardSafeDistance ||
			connectivity.ManhattanDistance(p, lvl.Exit) <= spec.HazardSafeDistance {
			lvl.Stats.HazardSkipped++
			continue
		}
		next.Set(p.X, p.Y, grid.Hazard)
		lvl.Hazards = append(lvl.Hazards, p)
	}

	remaining := spec.Budget
	cheapest := spec.CheapestEnemy()
	hpBonus := (spec.Difficulty - 1) / 2
	for _, p := range candidates[:split] {
		if cheapest <= 0 || remaining < cheapest {
			break
		}
		kind := rollEnemy(c.rnd.Float64(), spec.ThemeConfig.Enemies, spec.Difficulty)
		et := spec.EnemyTypes[kind]
		if et.Cost > remaining {
			lvl.Stats.EnemySkipped++
			continue
		}
		left, right := patrolRange(next, p, spec.PatrolRadius)
		lvl.Enemies = append(lvl.Enemies, Enemy{
			Kind:        kind,
			X:           p.X,
			Y:           p.Y,
			HP:          et.HP + hpBonus,
			Cost:        et.Cost,
			PatrolLeft:  left,
			PatrolRight: right,
		})
		remaining -= et.Cost
	}
	lvl.Stats.BudgetSpent = spec.Budget - remaining
	return next
}

// rollEnemy maps one draw to an enemy kind. The branches are checked in a
// fixed order so the same roll always resolves the same way.
func rollEnemy(roll float64, rules config.EnemyRules, difficulty int) config.EnemyKind {
	switch {
	case rules.ShieldedMinDifficulty > 0 && difficulty >= rules.ShieldedMinDifficulty && roll < rules.ShieldedChance:
		return config.EnemyShielded
	case rules.RangedMinDifficulty > 0 && difficulty >= rules.RangedMinDifficulty && roll < rules.RangedChance:
		return config.EnemyRanged
	case rules.Runners && roll < rules.RunnerChance:
		return config.EnemyRunner
	default:
		return config.EnemyGrunt
	}
}

// patrolRange walks left and right from p until a wall or the radius.
func patrolRange(g *grid.Grid, p grid.Point, radius int) (int, int) {
	left, right := p.X, p.X
	for step := 1; step <= radius; step++ {
		code, ok := g.At(p.X-step, p.Y)
		if !ok || code == grid.Wall {
			break
		}
		left = p.X - step
	}
	for step := 1; step <= radius; step++ {
		code, ok := g.At(p.X+step, p.Y)
		if !ok || code == grid.Wall {
			break
		}
		right = p.X + step
	}
	return left, right
}

// artFrames marks the wall directly above each room's centre column when it
// faces floor.
func artFrames(g *grid.Grid, rooms []Room) []ArtFrame {
	var frames []ArtFrame
	for _, r := range rooms {
		x, y := r.Center().X, r.Y-1
		above, ok := g.At(x, y)
		below, _ := g.At(x, r.Y)
		if ok && above == grid.Wall && below != grid.Wall {
			frames = append(frames, ArtFrame{X: x, Y: y, Side: "top"})
		}
	}
	return frames
}

// itemSpawn returns the middle room's centre when it is free floor.
func itemSpawn(g *grid.Grid, lvl *Level) *grid.Point {
	if len(lvl.Rooms) == 0 {
		return nil
	}
	p := lvl.Rooms[len(lvl.Rooms)/2].Center()
	if code, ok := g.At(p.X, p.Y); !ok || code != grid.Air {
		return nil
	}
	occupied := mapset.New[grid.Point]()
	occupied.Put(lvl.Spawn)
	occupied.Put(lvl.Exit)
	for _, e := range lvl.Enemies {
		occupied.Put(grid.Point{X: e.X, Y: e.Y})
	}
	if occupied.Has(p) {
		return nil
	}
	return &p
}
