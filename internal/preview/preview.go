// Package preview renders generated grids to PNG for quick visual review.
package preview

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"sort"
	"strconv"
	"strings"

	"levelforge/internal/artifact"
	"levelforge/internal/grid"
	"levelforge/internal/level"
	"levelforge/internal/worldmap"
)

// Palette maps tile codes to hex colours.
type Palette map[grid.Code]string

var (
	LevelPalette = Palette{
		grid.Air:    "#2b2b35",
		grid.Wall:   "#6f6a5e",
		grid.Hazard: "#b8452a",
	}
	WorldPalette = Palette{
		grid.Ocean:    "#1d3f6e",
		grid.Coast:    "#3f7fb0",
		grid.Land:     "#5d9b3d",
		grid.Mountain: "#8b5a2b",
		grid.River:    "#4fb3e8",
	}
)

const (
	markerSpawn = "#f2e94e"
	markerExit  = "#4ef28b"
	markerEnemy = "#e8384f"
	markerNode  = "#ffffff"
)

// Marker is a diamond drawn over one tile.
type Marker struct {
	X, Y  int
	Color string
}

// Render paints every tile as a scale x scale square and overlays markers.
// Solid codes get a lighter top edge so walls and mountains read as raised.
func Render(g *grid.Grid, palette Palette, scale int, raised func(grid.Code) bool, markers []Marker) (*image.NRGBA, error) {
	if g == nil {
		return nil, fmt.Errorf("grid is nil")
	}
	if scale <= 0 {
		return nil, fmt.Errorf("invalid preview scale %d", scale)
	}
	img := image.NewNRGBA(image.Rect(0, 0, g.Width*scale, g.Height*scale))
	background := color.NRGBA{R: 10, G: 10, B: 18, A: 255}
	draw.Draw(img, img.Bounds(), &image.Uniform{background}, image.Point{}, draw.Src)

	g.ForEach(func(x, y int, code grid.Code) bool {
		base := resolveColor(palette, code)
		rect := image.Rect(x*scale, y*scale, (x+1)*scale, (y+1)*scale)
		draw.Draw(img, rect, &image.Uniform{base}, image.Point{}, draw.Src)
		if raised != nil && raised(code) && scale >= 4 {
			edge := image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+scale/4)
			draw.Draw(img, edge, &image.Uniform{applyLighting(base, 1.3)}, image.Point{}, draw.Src)
		}
		return true
	})

	for _, m := range markers {
		col, ok := parseHexColor(m.Color)
		if !ok {
			return nil, fmt.Errorf("invalid marker colour %q", m.Color)
		}
		cx, cy := m.X*scale+scale/2, m.Y*scale+scale/2
		r := max(1, scale/2-1)
		fillPolygon(img, []image.Point{
			{X: cx, Y: cy - r},
			{X: cx + r, Y: cy},
			{X: cx, Y: cy + r},
			{X: cx - r, Y: cy},
		}, col)
	}
	return img, nil
}

// Level renders a composed level with spawn, exit and enemy markers.
func Level(l *level.Level, scale int) (*image.NRGBA, error) {
	markers := []Marker{
		{X: l.Spawn.X, Y: l.Spawn.Y, Color: markerSpawn},
		{X: l.Exit.X, Y: l.Exit.Y, Color: markerExit},
	}
	for _, e := range l.Enemies {
		markers = append(markers, Marker{X: e.X, Y: e.Y, Color: markerEnemy})
	}
	return Render(l.Grid, LevelPalette, scale, func(c grid.Code) bool { return c == grid.Wall }, markers)
}

// World renders a world map with its region nodes.
func World(w *worldmap.World, scale int) (*image.NRGBA, error) {
	markers := make([]Marker, 0, len(w.Nodes))
	for _, n := range w.Nodes {
		markers = append(markers, Marker{X: n.X, Y: n.Y, Color: markerNode})
	}
	return Render(w.Grid, WorldPalette, scale, func(c grid.Code) bool { return c == grid.Mountain }, markers)
}

// Save encodes img as PNG and writes it atomically.
func Save(path string, img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}
	if err := artifact.WriteFile(path, buf.Bytes()); err != nil {
		return fmt.Errorf("write preview: %w", err)
	}
	return nil
}

func resolveColor(palette Palette, code grid.Code) color.NRGBA {
	if hex, ok := palette[code]; ok {
		if col, ok := parseHexColor(hex); ok {
			return col
		}
	}
	return color.NRGBA{R: 128, G: 128, B: 128, A: 255}
}

func parseHexColor(value string) (color.NRGBA, bool) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(trimmed) != 6 {
		return color.NRGBA{}, false
	}
	var rgb [3]uint8
	for i := range rgb {
		v, err := strconv.ParseUint(trimmed[i*2:i*2+2], 16, 8)
		if err != nil {
			return color.NRGBA{}, false
		}
		rgb[i] = uint8(v)
	}
	return color.NRGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 255}, true
}

func applyLighting(base color.NRGBA, factor float64) color.NRGBA {
	scale := func(v uint8) uint8 {
		return uint8(math.Min(255, math.Round(float64(v)*factor)))
	}
	return color.NRGBA{R: scale(base.R), G: scale(base.G), B: scale(base.B), A: 255}
}

// fillPolygon scanline-fills a convex or concave polygon clipped to img.
func fillPolygon(img *image.NRGBA, pts []image.Point, col color.NRGBA) {
	if len(pts) < 3 {
		return
	}
	minY, maxY := pts[0].Y, pts[0].Y
	for _, p := range pts[1:] {
		minY = min(minY, p.Y)
		maxY = max(maxY, p.Y)
	}
	bounds := img.Bounds()
	minY = max(minY, bounds.Min.Y)
	maxY = min(maxY, bounds.Max.Y-1)

	xs := make([]int, 0, len(pts))
	for y := minY; y <= maxY; y++ {
		xs = xs[:0]
		for i := range pts {
			j := (i + 1) % len(pts)
			x1, y1 := pts[i].X, pts[i].Y
			x2, y2 := pts[j].X, pts[j].Y
			if y1 == y2 || y < min(y1, y2) || y >= max(y1, y2) {
				continue
			}
			xs = append(xs, x1+(y-y1)*(x2-x1)/(y2-y1))
		}
		if len(xs) < 2 {
			continue
		}
		sort.Ints(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			xStart := max(xs[i], bounds.Min.X)
			xEnd := min(xs[i+1], bounds.Max.X-1)
			for x := xStart; x <= xEnd; x++ {
				img.SetNRGBA(x, y, col)
			}
		}
	}
}
