package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownTheme      = errors.New("unknown theme")
	ErrUnknownSize       = errors.New("unknown size")
	ErrUnknownEnemyKind  = errors.New("unknown enemy kind")
	ErrInvalidDifficulty = errors.New("invalid difficulty")
)

const (
	MinDifficulty = 1
	MaxDifficulty = 5
)

type Theme string

const (
	ThemeSewer   Theme = "sewer"
	ThemeStreet  Theme = "street"
	ThemeDock    Theme = "dock"
	ThemeGallery Theme = "gallery"
)

// Themes lists every theme in declaration order.
var Themes = []Theme{ThemeSewer, ThemeStreet, ThemeDock, ThemeGallery}

func ParseTheme(s string) (Theme, error) {
	for _, t := range Themes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w %q (valid: %s)", ErrUnknownTheme, s, joinNames(Themes))
}

type Size string

const (
	SizeS Size = "S"
	SizeM Size = "M"
	SizeL Size = "L"
)

var Sizes = []Size{SizeS, SizeM, SizeL}

func ParseSize(s string) (Size, error) {
	for _, v := range Sizes {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w %q (valid: %s)", ErrUnknownSize, s, joinNames(Sizes))
}

// Widened reports whether levels of this size get their critical path widened.
func (s Size) Widened() bool {
	return s == SizeM || s == SizeL
}

type EnemyKind string

const (
	EnemyGrunt    EnemyKind = "grunt"
	EnemyRunner   EnemyKind = "runner"
	EnemyRanged   EnemyKind = "ranged"
	EnemyShielded EnemyKind = "shielded"
)

var EnemyKinds = []EnemyKind{EnemyGrunt, EnemyRunner, EnemyRanged, EnemyShielded}

func ParseEnemyKind(s string) (EnemyKind, error) {
	for _, k := range EnemyKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w %q (valid: %s)", ErrUnknownEnemyKind, s, joinNames(EnemyKinds))
}

func joinNames[T ~string](values []T) string {
	names := make([]string, len(values))
	for i, v := range values {
		names[i] = string(v)
	}
	return strings.Join(names, ", ")
}

// LevelSpec is the fully resolved parameter set for one level run.
type LevelSpec struct {
	Theme      Theme
	Size       Size
	Difficulty int
	Width      int
	Height     int
	TileSize   int
	Budget     int

	MinEnemyDistance   int
	HazardSafeDistance int
	PatrolRadius       int

	ThemeConfig ThemeConfig
	EnemyTypes  map[EnemyKind]EnemyType
}

// CheapestEnemy returns the lowest cost over all enemy types.
func (s LevelSpec) CheapestEnemy() int {
	cheapest := 0
	for _, kind := range EnemyKinds {
		et, ok := s.EnemyTypes[kind]
		if !ok {
			continue
		}
		if cheapest == 0 || et.Cost < cheapest {
			cheapest = et.Cost
		}
	}
	return cheapest
}

// Resolve validates the run inputs against the configured tables. Unknown
// keys are rejected before any generation work starts.
func (l *LevelConfig) Resolve(theme, size string, difficulty int) (LevelSpec, error) {
	t, err := ParseTheme(theme)
	if err != nil {
		return LevelSpec{}, err
	}
	tc, ok := l.Themes[t]
	if !ok {
		return LevelSpec{}, fmt.Errorf("%w %q: not configured", ErrUnknownTheme, theme)
	}
	s, err := ParseSize(size)
	if err != nil {
		return LevelSpec{}, err
	}
	sc, ok := l.Sizes[s]
	if !ok {
		return LevelSpec{}, fmt.Errorf("%w %q: not configured", ErrUnknownSize, size)
	}
	if difficulty < MinDifficulty || difficulty > MaxDifficulty {
		return LevelSpec{}, fmt.Errorf("%w %d (valid: %d-%d)", ErrInvalidDifficulty, difficulty, MinDifficulty, MaxDifficulty)
	}

	return LevelSpec{
		Theme:              t,
		Size:               s,
		Difficulty:         difficulty,
		Width:              sc.Width,
		Height:             sc.Height,
		TileSize:           l.TileSize,
		Budget:             l.Budget.Base + l.Budget.PerDifficulty*difficulty + sc.BudgetBonus,
		MinEnemyDistance:   l.MinEnemyDistance,
		HazardSafeDistance: l.HazardSafeDistance,
		PatrolRadius:       l.PatrolRadius,
		ThemeConfig:        tc,
		EnemyTypes:         l.EnemyTypes,
	}, nil
}
