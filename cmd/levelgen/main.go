package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"levelforge/internal/artifact"
	"levelforge/internal/config"
	"levelforge/internal/level"
	"levelforge/internal/logging"
	"levelforge/internal/preview"
)

func main() {
	logging.Init()
	if err := run(os.Args[1:], logging.Log); err != nil {
		logging.Log.WithError(err).Fatal("levelgen failed")
	}
}

func run(args []string, logger logrus.FieldLogger) error {
	fs := flag.NewFlagSet("levelgen", flag.ContinueOnError)
	theme := fs.String("theme", "sewer", "level theme (sewer|street|dock|gallery)")
	size := fs.String("size", "M", "level size (S|M|L)")
	seed := fs.String("seed", "", "seed string, may be empty; identical inputs give identical levels")
	difficulty := fs.Int("difficulty", 1, "difficulty from 1 to 5")
	outPath := fs.String("out", "", "output path (default <level.outputDir>/<id>.json)")
	configPath := fs.String("config", "", "optional YAML configuration override")
	previewPath := fs.String("preview", "", "optional PNG preview path")
	previewScale := fs.Int("preview-scale", 16, "preview pixels per tile")
	if err := fs.Parse(args); err != nil {
		return err
	}
	seedSet := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			seedSet = true
		}
	})
	if !seedSet {
		return fmt.Errorf("-seed is required")
	}

	cfg, err := config.Resolve(*configPath)
	if err != nil {
		return err
	}

	lvl, err := level.Generate(&cfg.Level, *theme, *size, *seed, *difficulty, logger)
	if err != nil {
		return err
	}

	path := *outPath
	if path == "" {
		path = filepath.Join(cfg.Level.OutputDir, lvl.ID+".json")
	}
	if err := artifact.Write(path, artifact.FromLevel(lvl)); err != nil {
		return fmt.Errorf("write level: %w", err)
	}
	logger.WithFields(logrus.Fields{
		"id":        lvl.ID,
		"path":      path,
		"rooms":     lvl.Stats.Rooms,
		"obstacles": lvl.Stats.Obstacles,
		"removed":   lvl.Stats.Removed,
		"enemies":   len(lvl.Enemies),
		"hazards":   len(lvl.Hazards),
	}).Info("level written")

	if *previewPath != "" {
		img, err := preview.Level(lvl, *previewScale)
		if err != nil {
			return err
		}
		if err := preview.Save(*previewPath, img); err != nil {
			return err
		}
		logger.WithField("path", *previewPath).Info("preview written")
	}
	return nil
}
