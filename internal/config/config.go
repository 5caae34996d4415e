// Package config loads and validates the generator configuration.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPayload names the environment variable that may carry a base64 encoded
// YAML configuration in place of a file.
const EnvPayload = "LEVELFORGE_CONFIG_YAML_B64"

// Duration is a YAML-friendly wrapper around time.Duration that accepts human
// readable strings such as "30s" while still allowing integer nanoseconds.
type Duration time.Duration

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("duration: expected scalar, got kind %d", node.Kind)
	}
	value := strings.TrimSpace(node.Value)
	if value == "" || node.Tag == "!!null" {
		*d = 0
		return nil
	}
	if node.Tag == "!!int" {
		var n int64
		if err := node.Decode(&n); err != nil {
			return fmt.Errorf("duration: decode integer: %w", err)
		}
		*d = Duration(time.Duration(n))
		return nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("duration: parse %q: %w", value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config captures every tunable of the level and world generators.
type Config struct {
	Level     LevelConfig     `yaml:"level"`
	World     WorldConfig     `yaml:"world"`
	Geography GeographyConfig `yaml:"geography"`
}

type IntRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// EnemyRules gates the enemy type roll. Branches are evaluated in the order
// shielded, ranged, runner and fall through to grunt.
type EnemyRules struct {
	ShieldedMinDifficulty int     `yaml:"shieldedMinDifficulty"` // 0 disables shielded enemies
	ShieldedChance        float64 `yaml:"shieldedChance"`
	RangedMinDifficulty   int     `yaml:"rangedMinDifficulty"` // 0 disables ranged enemies
	RangedChance          float64 `yaml:"rangedChance"`
	Runners               bool    `yaml:"runners"`
	RunnerChance          float64 `yaml:"runnerChance"`
}

type ThemeConfig struct {
	Name              string     `yaml:"name"`
	Rooms             IntRange   `yaml:"rooms"`
	RoomWidth         IntRange   `yaml:"roomWidth"`
	RoomHeight        IntRange   `yaml:"roomHeight"`
	CorridorHalfWidth int        `yaml:"corridorHalfWidth"`
	ObstacleChance    float64    `yaml:"obstacleChance"`
	Hazards           int        `yaml:"hazards"`
	ArtFrames         bool       `yaml:"artFrames"`
	Enemies           EnemyRules `yaml:"enemies"`
}

type SizeConfig struct {
	Width       int `yaml:"width"`
	Height      int `yaml:"height"`
	BudgetBonus int `yaml:"budgetBonus"`
}

type EnemyType struct {
	HP   int `yaml:"hp"`
	Cost int `yaml:"cost"`
}

type BudgetConfig struct {
	Base          int `yaml:"base"`
	PerDifficulty int `yaml:"perDifficulty"`
}

type LevelConfig struct {
	TileSize           int          `yaml:"tileSize"`
	OutputDir          string       `yaml:"outputDir"`
	MinEnemyDistance   int          `yaml:"minEnemyDistance"`
	HazardSafeDistance int          `yaml:"hazardSafeDistance"`
	PatrolRadius       int          `yaml:"patrolRadius"`
	Budget             BudgetConfig `yaml:"budget"`
	EnemyTypes         EnemyTable   `yaml:"enemyTypes"`
	Themes             ThemeTable   `yaml:"themes"`
	Sizes              SizeTable    `yaml:"sizes"`
}

// ThemeTable, SizeTable and EnemyTable decode each YAML entry on top of the
// entry already present, so an override may name a single field.
type (
	ThemeTable map[Theme]ThemeConfig
	SizeTable  map[Size]SizeConfig
	EnemyTable map[EnemyKind]EnemyType
)

func (t *ThemeTable) UnmarshalYAML(node *yaml.Node) error {
	return mergeEntries((*map[Theme]ThemeConfig)(t), node)
}

func (t *SizeTable) UnmarshalYAML(node *yaml.Node) error {
	return mergeEntries((*map[Size]SizeConfig)(t), node)
}

func (t *EnemyTable) UnmarshalYAML(node *yaml.Node) error {
	return mergeEntries((*map[EnemyKind]EnemyType)(t), node)
}

func mergeEntries[K ~string, V any](m *map[K]V, node *yaml.Node) error {
	if node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping, got kind %d", node.Line, node.Kind)
	}
	if *m == nil {
		*m = make(map[K]V, len(node.Content)/2)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		var key string
		if err := node.Content[i].Decode(&key); err != nil {
			return fmt.Errorf("line %d: %w", node.Content[i].Line, err)
		}
		entry := (*m)[K(key)]
		if err := node.Content[i+1].Decode(&entry); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		(*m)[K(key)] = entry
	}
	return nil
}

type RegionConfig struct {
	ID      string  `yaml:"id"`
	Label   string  `yaml:"label"`
	Lon     float64 `yaml:"lon"`
	Lat     float64 `yaml:"lat"`
	MapFile string  `yaml:"mapFile"`
}

type WorldConfig struct {
	Width          int            `yaml:"width"`
	Height         int            `yaml:"height"`
	TileSize       int            `yaml:"tileSize"`
	MajorRiverRank int            `yaml:"majorRiverRank"` // rivers at or below this scalerank are stamped two cells wide
	OutputPath     string         `yaml:"outputPath"`
	EnterRadius    float64        `yaml:"enterRadius"`
	ExitRadius     float64        `yaml:"exitRadius"`
	Regions        []RegionConfig `yaml:"regions"`
}

type GeographyConfig struct {
	CacheDir     string   `yaml:"cacheDir"`
	LandURL      string   `yaml:"landUrl"`
	LandFile     string   `yaml:"landFile"`
	RiversURL    string   `yaml:"riversUrl"`
	RiversFile   string   `yaml:"riversFile"`
	Timeout      Duration `yaml:"timeout"`
	MaxRedirects int      `yaml:"maxRedirects"`
	UserAgent    string   `yaml:"userAgent"`
}

// Load reads configuration from a YAML file if provided. An empty path returns defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// LoadEnv decodes the configuration carried by EnvPayload. The boolean is
// false when the variable is unset.
func LoadEnv() (*Config, bool, error) {
	payload := os.Getenv(EnvPayload)
	if payload == "" {
		return nil, false, nil
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, true, fmt.Errorf("decode %s: %w", EnvPayload, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, true, fmt.Errorf("parse %s: %w", EnvPayload, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, true, fmt.Errorf("validate %s: %w", EnvPayload, err)
	}
	return cfg, true, nil
}

// Resolve picks the environment payload when present and the file otherwise.
func Resolve(path string) (*Config, error) {
	cfg, ok, err := LoadEnv()
	if ok {
		return cfg, err
	}
	return Load(path)
}

func (c *Config) Validate() error {
	if err := c.Level.validate(); err != nil {
		return err
	}
	if err := c.World.validate(); err != nil {
		return err
	}
	return c.Geography.validate()
}

func (r IntRange) validate(field string) error {
	if r.Min <= 0 || r.Max <= 0 {
		return fmt.Errorf("%s must be positive", field)
	}
	if r.Max < r.Min {
		return fmt.Errorf("%s.max must be >= min", field)
	}
	return nil
}

func (l *LevelConfig) validate() error {
	if l.TileSize <= 0 {
		return errors.New("level.tileSize must be positive")
	}
	if l.OutputDir == "" {
		return errors.New("level.outputDir must be set")
	}
	if l.MinEnemyDistance < 0 || l.HazardSafeDistance < 0 {
		return errors.New("level distances cannot be negative")
	}
	if l.PatrolRadius <= 0 {
		return errors.New("level.patrolRadius must be positive")
	}
	if l.Budget.Base < 0 || l.Budget.PerDifficulty < 0 {
		return errors.New("level.budget cannot be negative")
	}
	for _, kind := range EnemyKinds {
		et, ok := l.EnemyTypes[kind]
		if !ok {
			return fmt.Errorf("level.enemyTypes.%s must be set", kind)
		}
		if et.HP <= 0 || et.Cost <= 0 {
			return fmt.Errorf("level.enemyTypes.%s hp and cost must be positive", kind)
		}
	}
	for kind := range l.EnemyTypes {
		if _, err := ParseEnemyKind(string(kind)); err != nil {
			return fmt.Errorf("level.enemyTypes: %w", err)
		}
	}
	for theme, tc := range l.Themes {
		if _, err := ParseTheme(string(theme)); err != nil {
			return fmt.Errorf("level.themes: %w", err)
		}
		prefix := "level.themes." + string(theme)
		if err := tc.Rooms.validate(prefix + ".rooms"); err != nil {
			return err
		}
		if err := tc.RoomWidth.validate(prefix + ".roomWidth"); err != nil {
			return err
		}
		if err := tc.RoomHeight.validate(prefix + ".roomHeight"); err != nil {
			return err
		}
		if tc.CorridorHalfWidth <= 0 {
			return fmt.Errorf("%s.corridorHalfWidth must be positive", prefix)
		}
		if tc.ObstacleChance < 0 || tc.ObstacleChance >= 1 {
			return fmt.Errorf("%s.obstacleChance must be in [0,1)", prefix)
		}
		if tc.Hazards < 0 {
			return fmt.Errorf("%s.hazards cannot be negative", prefix)
		}
	}
	for size, sc := range l.Sizes {
		if _, err := ParseSize(string(size)); err != nil {
			return fmt.Errorf("level.sizes: %w", err)
		}
		if sc.Width < 8 || sc.Height < 6 {
			return fmt.Errorf("level.sizes.%s must be at least 8x6", size)
		}
		if sc.BudgetBonus < 0 {
			return fmt.Errorf("level.sizes.%s.budgetBonus cannot be negative", size)
		}
	}
	return nil
}

func (w *WorldConfig) validate() error {
	if w.Width <= 0 || w.Height <= 0 {
		return errors.New("world dimensions must be positive")
	}
	if w.TileSize <= 0 {
		return errors.New("world.tileSize must be positive")
	}
	if w.OutputPath == "" {
		return errors.New("world.outputPath must be set")
	}
	if w.EnterRadius <= 0 || w.ExitRadius < w.EnterRadius {
		return errors.New("world.exitRadius must be >= enterRadius > 0")
	}
	seen := make(map[string]bool, len(w.Regions))
	for i, r := range w.Regions {
		if r.ID == "" {
			return fmt.Errorf("world.regions[%d].id must be set", i)
		}
		if seen[r.ID] {
			return fmt.Errorf("world.regions[%d].id %q is duplicated", i, r.ID)
		}
		seen[r.ID] = true
		if r.Lon < -180 || r.Lon > 180 || r.Lat < -90 || r.Lat > 90 {
			return fmt.Errorf("world.regions[%d] coordinate out of range", i)
		}
	}
	return nil
}

func (g *GeographyConfig) validate() error {
	if g.CacheDir == "" {
		return errors.New("geography.cacheDir must be set")
	}
	if g.LandFile == "" || g.RiversFile == "" {
		return errors.New("geography cache file names must be set")
	}
	if g.LandURL == "" || g.RiversURL == "" {
		return errors.New("geography source urls must be set")
	}
	if g.MaxRedirects < 0 {
		return errors.New("geography.maxRedirects cannot be negative")
	}
	if g.Timeout < 0 {
		return errors.New("geography.timeout cannot be negative")
	}
	return nil
}
