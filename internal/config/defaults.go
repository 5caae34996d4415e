package config

import "time"

// Default returns a configuration with the stock theme, size and region tables.
func Default() *Config {
	return &Config{
		Level: LevelConfig{
			TileSize:           32,
			OutputDir:          "levels",
			MinEnemyDistance:   6,
			HazardSafeDistance: 2,
			PatrolRadius:       4,
			Budget: BudgetConfig{
				Base:          2,
				PerDifficulty: 2,
			},
			EnemyTypes: map[EnemyKind]EnemyType{
				EnemyGrunt:    {HP: 3, Cost: 1},
				EnemyRunner:   {HP: 2, Cost: 1},
				EnemyRanged:   {HP: 2, Cost: 2},
				EnemyShielded: {HP: 5, Cost: 3},
			},
			Themes: defaultThemes(),
			Sizes: map[Size]SizeConfig{
				SizeS: {Width: 24, Height: 12, BudgetBonus: 0},
				SizeM: {Width: 36, Height: 15, BudgetBonus: 2},
				SizeL: {Width: 48, Height: 18, BudgetBonus: 4},
			},
		},
		World: WorldConfig{
			Width:          160,
			Height:         90,
			TileSize:       16,
			MajorRiverRank: 3,
			OutputPath:     "world/world.json",
			EnterRadius:    1.5,
			ExitRadius:     2.5,
			Regions:        defaultRegions(),
		},
		Geography: GeographyConfig{
			CacheDir:     ".cache/geo",
			LandURL:      "https://raw.githubusercontent.com/nvkelso/natural-earth-vector/master/geojson/ne_110m_land.geojson",
			LandFile:     "ne_110m_land.geojson",
			RiversURL:    "https://raw.githubusercontent.com/nvkelso/natural-earth-vector/master/geojson/ne_110m_rivers_lake_centerlines.geojson",
			RiversFile:   "ne_110m_rivers_lake_centerlines.geojson",
			Timeout:      Duration(60 * time.Second),
			MaxRedirects: 5,
			UserAgent:    "levelforge-worldgen/1.0",
		},
	}
}

func defaultThemes() map[Theme]ThemeConfig {
	return map[Theme]ThemeConfig{
		ThemeSewer: {
			Name:              "Sewer",
			Rooms:             IntRange{Min: 3, Max: 5},
			RoomWidth:         IntRange{Min: 4, Max: 7},
			RoomHeight:        IntRange{Min: 3, Max: 5},
			CorridorHalfWidth: 1,
			ObstacleChance:    0.08,
			Hazards:           3,
			Enemies: EnemyRules{
				ShieldedMinDifficulty: 3,
				ShieldedChance:        0.15,
				RangedMinDifficulty:   2,
				RangedChance:          0.4,
				Runners:               false,
				RunnerChance:          0.6,
			},
		},
		ThemeStreet: {
			Name:              "Street",
			Rooms:             IntRange{Min: 3, Max: 5},
			RoomWidth:         IntRange{Min: 5, Max: 8},
			RoomHeight:        IntRange{Min: 3, Max: 5},
			CorridorHalfWidth: 2,
			ObstacleChance:    0.06,
			Hazards:           2,
			Enemies: EnemyRules{
				ShieldedMinDifficulty: 4,
				ShieldedChance:        0.15,
				RangedMinDifficulty:   2,
				RangedChance:          0.4,
				Runners:               true,
				RunnerChance:          0.6,
			},
		},
		ThemeDock: {
			Name:              "Dock",
			Rooms:             IntRange{Min: 2, Max: 4},
			RoomWidth:         IntRange{Min: 5, Max: 9},
			RoomHeight:        IntRange{Min: 3, Max: 6},
			CorridorHalfWidth: 1,
			ObstacleChance:    0.1,
			Hazards:           4,
			Enemies: EnemyRules{
				ShieldedMinDifficulty: 3,
				ShieldedChance:        0.15,
				RangedMinDifficulty:   1,
				RangedChance:          0.4,
				Runners:               true,
				RunnerChance:          0.6,
			},
		},
		ThemeGallery: {
			Name:              "Gallery",
			Rooms:             IntRange{Min: 3, Max: 6},
			RoomWidth:         IntRange{Min: 4, Max: 7},
			RoomHeight:        IntRange{Min: 3, Max: 5},
			CorridorHalfWidth: 1,
			ObstacleChance:    0.04,
			Hazards:           1,
			ArtFrames:         true,
			Enemies: EnemyRules{
				ShieldedMinDifficulty: 2,
				ShieldedChance:        0.15,
				RangedMinDifficulty:   3,
				RangedChance:          0.4,
				Runners:               false,
				RunnerChance:          0.6,
			},
		},
	}
}

func defaultRegions() []RegionConfig {
	return []RegionConfig{
		{ID: "north_america", Label: "North America", Lon: -100, Lat: 45, MapFile: "levels/north_america.json"},
		{ID: "south_america", Label: "South America", Lon: -60, Lat: -15, MapFile: "levels/south_america.json"},
		{ID: "europe", Label: "Europe", Lon: 15, Lat: 50, MapFile: "levels/europe.json"},
		{ID: "africa", Label: "Africa", Lon: 20, Lat: 5, MapFile: "levels/africa.json"},
		{ID: "middle_east", Label: "Middle East", Lon: 45, Lat: 28, MapFile: "levels/middle_east.json"},
		{ID: "asia", Label: "Asia", Lon: 95, Lat: 45, MapFile: "levels/asia.json"},
		{ID: "southeast_asia", Label: "Southeast Asia", Lon: 105, Lat: 12, MapFile: "levels/southeast_asia.json"},
		{ID: "oceania", Label: "Oceania", Lon: 134, Lat: -25, MapFile: "levels/oceania.json"},
	}
}
