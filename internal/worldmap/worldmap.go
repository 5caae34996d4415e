// Package worldmap rasterizes vector geography onto the world tile grid.
//
// Phases run in a fixed order: land, mountain, river, coast, then region
// nodes. Every decision is a pure function of cell coordinates and the input
// features, so the same geography always yields the same grid.
package worldmap

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"levelforge/internal/config"
	"levelforge/internal/geometry"
	"levelforge/internal/grid"
	"levelforge/internal/logging"
	"levelforge/internal/verify"
)

// ErrNoLand is returned when a region node finds no land anywhere on the grid.
var ErrNoLand = errors.New("no land found for region node")

type Region struct {
	ID      string
	Label   string
	Spawn   grid.Point
	MapFile string
}

type Node struct {
	ID          string
	RegionID    string
	X, Y        int
	Label       string
	EnterRadius float64
	ExitRadius  float64
}

type Stats struct {
	Land         int
	Mountain     int
	River        int
	RiverDropped int
	Coast        int
	Ocean        int
	Nudged       int
}

func (s Stats) fields() logrus.Fields {
	return logrus.Fields{
		"land":         s.Land,
		"mountain":     s.Mountain,
		"river":        s.River,
		"riverDropped": s.RiverDropped,
		"coast":        s.Coast,
		"ocean":        s.Ocean,
		"nudged":       s.Nudged,
	}
}

// World is a finished, verified world map.
type World struct {
	Grid     *grid.Grid
	TileSize int
	Regions  []Region
	Nodes    []Node
	Stats    Stats
}

type Rasterizer struct {
	cfg config.WorldConfig
	log logrus.FieldLogger
}

func NewRasterizer(cfg config.WorldConfig, logger logrus.FieldLogger) *Rasterizer {
	return &Rasterizer{cfg: cfg, log: logging.Or(logger).WithField("component", "worldmap")}
}

// Build runs every phase over the given features and verifies the result.
func (r *Rasterizer) Build(land, rivers []geometry.Feature) (*World, error) {
	g, err := grid.New(r.cfg.Width, r.cfg.Height, grid.Ocean)
	if err != nil {
		return nil, fmt.Errorf("allocate world grid: %w", err)
	}

	g = StampLand(g, land)
	r.log.WithField("features", len(land)).Debug("land phase done")

	g = StampMountains(g)
	r.log.Debug("mountain phase done")

	g, dropped := StampRivers(g, rivers, r.cfg.MajorRiverRank)
	r.log.WithFields(logrus.Fields{"features": len(rivers), "dropped": dropped}).Debug("river phase done")

	g = StampCoast(g)
	r.log.Debug("coast phase done")

	regions, nodes, nudged, err := r.placeNodes(g)
	if err != nil {
		return nil, err
	}

	counts := g.Counts()
	w := &World{
		Grid:     g,
		TileSize: r.cfg.TileSize,
		Regions:  regions,
		Nodes:    nodes,
		Stats: Stats{
			Land:         counts[grid.Land],
			Mountain:     counts[grid.Mountain],
			River:        counts[grid.River],
			RiverDropped: dropped,
			Coast:        counts[grid.Coast],
			Ocean:        counts[grid.Ocean],
			Nudged:       nudged,
		},
	}
	r.log.WithFields(w.Stats.fields()).Info("world rasterized")

	checkNodes := make([]verify.Node, len(nodes))
	for i, n := range nodes {
		checkNodes[i] = verify.Node{ID: n.ID, X: n.X, Y: n.Y}
	}
	report := verify.CheckWorld("world", verify.World{Grid: g, Nodes: checkNodes})
	if !report.OK() {
		report.Log(r.log)
		return nil, report.Err()
	}
	return w, nil
}

// Project returns the longitude and latitude of a cell centre.
func Project(x, y, width, height int) (float64, float64) {
	lon := (float64(x)+0.5)/float64(width)*360 - 180
	lat := 90 - (float64(y)+0.5)/float64(height)*180
	return lon, lat
}

// Unproject maps a coordinate to the cell containing it, clamped to the grid.
func Unproject(lon, lat float64, width, height int) (int, int) {
	x := int(math.Floor((lon + 180) / 360 * float64(width)))
	y := int(math.Floor((90 - lat) / 180 * float64(height)))
	return clamp(x, 0, width-1), clamp(y, 0, height-1)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// StampLand marks every cell whose centre falls inside a land polygon.
func StampLand(g *grid.Grid, land []geometry.Feature) *grid.Grid {
	next := g.Clone()
	g.ForEach(func(x, y int, _ grid.Code) bool {
		lon, lat := Project(x, y, g.Width, g.Height)
		for _, f := range land {
			if f.Contains(lon, lat) {
				next.Set(x, y, grid.Land)
				break
			}
		}
		return true
	})
	return next
}

func mountainHash(x, y int) bool {
	h := uint32(x)*73856093 ^ uint32(y)*19349663
	return h%6 == 0
}

// StampMountains raises land cells fully surrounded by land-or-higher when
// the positional hash selects them.
func StampMountains(g *grid.Grid) *grid.Grid {
	next := g.Clone()
	g.ForEach(func(x, y int, code grid.Code) bool {
		if code != grid.Land || !mountainHash(x, y) {
			return true
		}
		high := 0
		g.Neighbors8(x, y, func(_, _ int, n grid.Code) {
			if n >= grid.Land {
				high++
			}
		})
		if high == 8 {
			next.Set(x, y, grid.Mountain)
		}
		return true
	})
	return next
}

// StampRivers rasterizes every river segment. Stamps landing on water or off
// the grid are dropped and counted.
func StampRivers(g *grid.Grid, rivers []geometry.Feature, majorRank int) (*grid.Grid, int) {
	next := g.Clone()
	dropped := 0
	visit := func(x, y int) {
		code, ok := next.At(x, y)
		if !ok || code == grid.Ocean || code == grid.Coast {
			dropped++
			return
		}
		next.Set(x, y, grid.River)
	}
	for _, f := range rivers {
		if f.Kind != geometry.KindPolyline {
			continue
		}
		raster := geometry.RasterizeLine
		if f.Rank <= majorRank {
			raster = geometry.RasterizeWide
		}
		for _, line := range f.Lines {
			for i := 1; i < len(line); i++ {
				x0, y0 := Unproject(line[i-1].X, line[i-1].Y, g.Width, g.Height)
				x1, y1 := Unproject(line[i].X, line[i].Y, g.Width, g.Height)
				raster(x0, y0, x1, y1, visit)
			}
		}
	}
	return next, dropped
}

// StampCoast turns ocean touching land-or-higher into coast.
func StampCoast(g *grid.Grid) *grid.Grid {
	next := g.Clone()
	g.ForEach(func(x, y int, code grid.Code) bool {
		if code != grid.Ocean {
			return true
		}
		touches := false
		g.Neighbors8(x, y, func(_, _ int, n grid.Code) {
			if n >= grid.Land {
				touches = true
			}
		})
		if touches {
			next.Set(x, y, grid.Coast)
		}
		return true
	})
	return next
}

func (r *Rasterizer) placeNodes(g *grid.Grid) ([]Region, []Node, int, error) {
	regions := make([]Region, 0, len(r.cfg.Regions))
	nodes := make([]Node, 0, len(r.cfg.Regions))
	nudged := 0
	for _, rc := range r.cfg.Regions {
		x, y := Unproject(rc.Lon, rc.Lat, g.Width, g.Height)
		p, ring, ok := NearestLand(g, grid.Point{X: x, Y: y})
		if !ok {
			return nil, nil, 0, fmt.Errorf("%w: region %s at (%.2f, %.2f)", ErrNoLand, rc.ID, rc.Lon, rc.Lat)
		}
		if ring > 0 {
			nudged++
			r.log.WithFields(logrus.Fields{
				"region": rc.ID,
				"from":   fmt.Sprintf("%d,%d", x, y),
				"to":     fmt.Sprintf("%d,%d", p.X, p.Y),
				"ring":   ring,
			}).Debug("region node nudged onto land")
		}
		regions = append(regions, Region{ID: rc.ID, Label: rc.Label, Spawn: p, MapFile: rc.MapFile})
		nodes = append(nodes, Node{
			ID:          "node_" + rc.ID,
			RegionID:    rc.ID,
			X:           p.X,
			Y:           p.Y,
			Label:       rc.Label,
			EnterRadius: r.cfg.EnterRadius,
			ExitRadius:  r.cfg.ExitRadius,
		})
	}
	return regions, nodes, nudged, nil
}

// NearestLand searches square rings of growing radius around start, each ring
// walked clockwise from its top-left corner, and returns the first
// land-or-higher cell with the ring it was found on.
func NearestLand(g *grid.Grid, start grid.Point) (grid.Point, int, bool) {
	limit := max(g.Width, g.Height)
	for ring := 0; ring <= limit; ring++ {
		for _, p := range ringCells(start, ring) {
			if code, ok := g.At(p.X, p.Y); ok && code >= grid.Land {
				return p, ring, true
			}
		}
	}
	return grid.Point{}, 0, false
}

func ringCells(c grid.Point, r int) []grid.Point {
	if r == 0 {
		return []grid.Point{c}
	}
	cells := make([]grid.Point, 0, 8*r)
	for x := c.X - r; x <= c.X+r; x++ {
		cells = append(cells, grid.Point{X: x, Y: c.Y - r})
	}
	for y := c.Y - r + 1; y <= c.Y+r; y++ {
		cells = append(cells, grid.Point{X: c.X + r, Y: y})
	}
	for x := c.X + r - 1; x >= c.X-r; x-- {
		cells = append(cells, grid.Point{X: x, Y: c.Y + r})
	}
	for y := c.Y + r - 1; y > c.Y-r; y-- {
		cells = append(cells, grid.Point{X: c.X - r, Y: y})
	}
	return cells
}
