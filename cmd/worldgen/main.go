package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"

	"levelforge/internal/artifact"
	"levelforge/internal/config"
	"levelforge/internal/geometry"
	"levelforge/internal/geosource"
	"levelforge/internal/logging"
	"levelforge/internal/preview"
	"levelforge/internal/worldmap"
)

func main() {
	logging.Init()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:], logging.Log)
	stop()
	if err != nil {
		logging.Log.WithError(err).Fatal("worldgen failed")
	}
}

func run(ctx context.Context, args []string, logger logrus.FieldLogger) error {
	fs := flag.NewFlagSet("worldgen", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional YAML configuration override")
	cacheDir := fs.String("cache", "", "geography cache directory (overrides geography.cacheDir)")
	outPath := fs.String("out", "", "output path (default world.outputPath)")
	previewPath := fs.String("preview", "", "optional PNG preview path")
	previewScale := fs.Int("preview-scale", 4, "preview pixels per tile")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Resolve(*configPath)
	if err != nil {
		return err
	}
	if *cacheDir != "" {
		cfg.Geography.CacheDir = *cacheDir
	}
	path := cfg.World.OutputPath
	if *outPath != "" {
		path = *outPath
	}

	fetcher := geosource.NewFetcher(cfg.Geography, logger)
	landSrc, riverSrc := geosource.Sources(cfg.Geography)
	land, err := fetcher.LoadFeatures(ctx, landSrc, geometry.KindPolygon)
	if err != nil {
		return err
	}
	rivers, err := fetcher.LoadFeatures(ctx, riverSrc, geometry.KindPolyline)
	if err != nil {
		return err
	}

	world, err := worldmap.NewRasterizer(cfg.World, logger).Build(land, rivers)
	if err != nil {
		return err
	}
	if err := artifact.Write(path, artifact.FromWorld(world)); err != nil {
		return fmt.Errorf("write world: %w", err)
	}
	logger.WithFields(logrus.Fields{
		"path":    path,
		"regions": len(world.Regions),
		"nudged":  world.Stats.Nudged,
	}).Info("world written")

	if *previewPath != "" {
		img, err := preview.World(world, *previewScale)
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
