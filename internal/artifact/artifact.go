// Package artifact defines the JSON documents handed to the game runtime and
// the editor, and writes them whole or not at all.
package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/invopop/jsonschema"

	"levelforge/internal/grid"
	"levelforge/internal/level"
	"levelforge/internal/worldmap"
)

type Dimensions struct {
	WidthTiles  int `json:"widthTiles" jsonschema:"minimum=1"`
	HeightTiles int `json:"heightTiles" jsonschema:"minimum=1"`
	TileSize    int `json:"tileSize" jsonschema:"minimum=1"`
}

type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type TileType struct {
	Name  string `json:"name"`
	Solid bool   `json:"solid"`
}

type Spawns struct {
	Player Point `json:"player"`
	Exit   Point `json:"exit"`
}

type Patrol struct {
	Left  int `json:"left"`
	Right int `json:"right"`
}

type Enemy struct {
	Type   string `json:"type" jsonschema:"enum=grunt,enum=runner,enum=ranged,enum=shielded"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	HP     int    `json:"hp" jsonschema:"minimum=1"`
	Patrol Patrol `json:"patrol"`
}

type Trigger struct {
	Type   string `json:"type"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Target string `json:"target"`
}

type ArtFrame struct {
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Side string `json:"side" jsonschema:"enum=top"`
}

// LevelDocument is the level file consumed by the runtime.
type LevelDocument struct {
	ID        string              `json:"id" jsonschema:"pattern=^[a-z0-9_-]+$"`
	Name      string              `json:"name"`
	Theme     string              `json:"theme" jsonschema:"enum=sewer,enum=street,enum=dock,enum=gallery"`
	Seed      string              `json:"seed"`
	World     Dimensions          `json:"world"`
	Tilemap   [][]int             `json:"tilemap" jsonschema:"description=Row-major tile codes: 0 air 1 wall 2 hazard"`
	TileTypes map[string]TileType `json:"tileTypes"`
	Spawns    Spawns              `json:"spawns"`
	Enemies   []Enemy             `json:"enemies"`
	Triggers  []Trigger           `json:"triggers"`
	ArtFrames []ArtFrame          `json:"artFrames"`
	ItemSpawn *Point              `json:"itemSpawn"`
}

type Region struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Spawn   Point  `json:"spawn"`
	MapFile string `json:"mapFile"`
}

type RegionNode struct {
	ID          string  `json:"id"`
	RegionID    string  `json:"regionId"`
	X           int     `json:"x"`
	Y           int     `json:"y"`
	Label       string  `json:"label"`
	EnterRadius float64 `json:"enterRadius"`
	ExitRadius  float64 `json:"exitRadius"`
}

// WorldDocument is the world map file. Landmarks, roads and river overlays
// are authored later in the editor and always start empty.
type WorldDocument struct {
	World       Dimensions   `json:"world"`
	Tiles       [][]int      `json:"tiles" jsonschema:"description=Row-major tile codes: 0 ocean 1 coast 2 land 3 mountain 4 river"`
	Regions     []Region     `json:"regions"`
	RegionNodes []RegionNode `json:"regionNodes"`
	Landmarks   []Point      `json:"landmarks"`
	Roads       []Point      `json:"roads"`
	River       []Point      `json:"river"`
}

var levelTileTypes = map[grid.Code]TileType{
	grid.Air:    {Name: "air", Solid: false},
	grid.Wall:   {Name: "wall", Solid: true},
	grid.Hazard: {Name: "hazard", Solid: false},
}

func point(p grid.Point) Point {
	return Point{X: p.X, Y: p.Y}
}

// FromLevel converts a composed level into its document form.
func FromLevel(l *level.Level) LevelDocument {
	tileTypes := make(map[string]TileType, len(levelTileTypes))
	for code, tt := range levelTileTypes {
		tileTypes[strconv.Itoa(int(code))] = tt
	}

	doc := LevelDocument{
		ID:    l.ID,
		Name:  l.Name,
		Theme: string(l.Theme),
		Seed:  l.Seed,
		World: Dimensions{
			WidthTiles:  l.Grid.Width,
			HeightTiles: l.Grid.Height,
			TileSize:    l.TileSize,
		},
		Tilemap:   l.Grid.Rows(),
		TileTypes: tileTypes,
		Spawns:    Spawns{Player: point(l.Spawn), Exit: point(l.Exit)},
		Enemies:   make([]Enemy, 0, len(l.Enemies)),
		Triggers:  make([]Trigger, 0, len(l.Triggers)),
		ArtFrames: make([]ArtFrame, 0, len(l.ArtFrames)),
	}
	for _, e := range l.Enemies {
		doc.Enemies = append(doc.Enemies, Enemy{
			Type:   string(e.Kind),
			X:      e.X,
			Y:      e.Y,
			HP:     e.HP,
			Patrol: Patrol{Left: e.PatrolLeft, Right: e.PatrolRight},
		})
	}
	for _, t := range l.Triggers {
		doc.Triggers = append(doc.Triggers, Trigger{Type: t.Type, X: t.X, Y: t.Y, Target: t.Target})
	}
	for _, f := range l.ArtFrames {
		doc.ArtFrames = append(doc.ArtFrames, ArtFrame{X: f.X, Y: f.Y, Side: f.Side})
	}
	if l.ItemSpawn != nil {
		p := point(*l.ItemSpawn)
		doc.ItemSpawn = &p
	}
	return doc
}

// FromWorld converts a rasterized world into its document form.
func FromWorld(w *worldmap.World) WorldDocument {
	doc := WorldDocument{
		World: Dimensions{
			WidthTiles:  w.Grid.Width,
			HeightTiles: w.Grid.Height,
			TileSize:    w.TileSize,
		},
		Tiles:       w.Grid.Rows(),
		Regions:     make([]Region, 0, len(w.Regions)),
		RegionNodes: make([]RegionNode, 0, len(w.Nodes)),
		Landmarks:   []Point{},
		Roads:       []Point{},
		River:       []Point{},
	}
	for _, r := range w.Regions {
		doc.Regions = append(doc.Regions, Region{ID: r.ID, Label: r.Label, Spawn: point(r.Spawn), MapFile: r.MapFile})
	}
	for _, n := range w.Nodes {
		doc.RegionNodes = append(doc.RegionNodes, RegionNode{
			ID:          n.ID,
			RegionID:    n.RegionID,
			X:           n.X,
			Y:           n.Y,
			Label:       n.Label,
			EnterRadius: n.EnterRadius,
			ExitRadius:  n.ExitRadius,
		})
	}
	return doc
}

// Marshal renders v as two-space indented JSON with a trailing newline.
func Marshal(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Write marshals v and writes it atomically to path.
func Write(path string, v any) error {
	data, err := Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	return WriteFile(path, data)
}

// WriteFile writes data to a temp file next to path and renames it into
// place, so readers never observe a partial file.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Schemas returns the JSON schema of each document keyed by file stem.
func Schemas() map[string]*jsonschema.Schema {
	reflector := jsonschema.Reflector{DoNotReference: true}

	levelSchema := reflector.Reflect(&LevelDocument{})
	levelSchema.Title = "Level"
	levelSchema.Description = "Generated level consumed by the runtime and the editor."

	worldSchema := reflector.Reflect(&WorldDocument{})
	worldSchema.Title = "World"
	worldSchema.Description = "Generated world map with region nodes linking to level files."

	return map[string]*jsonschema.Schema{
		"level.schema": levelSchema,
		"world.schema": worldSchema,
	}
}
