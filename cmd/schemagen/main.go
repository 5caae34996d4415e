package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"

	"levelforge/internal/artifact"
	"levelforge/internal/logging"
)

func main() {
	logging.Init()
	if err := run(os.Args[1:], logging.Log); err != nil {
		logging.Log.WithError(err).Fatal("schemagen failed")
	}
}

func run(args []string, logger logrus.FieldLogger) error {
	fs := flag.NewFlagSet("schemagen", flag.ContinueOnError)
	outDir := fs.String("out", "", "directory to write the JSON schemas into")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *outDir == "" {
		return fmt.Errorf("-out is required")
	}

	schemas := artifact.Schemas()
	names := make([]string, 0, len(schemas))
	for name := range schemas {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(*outDir, name+".json")
		if err := artifact.Write(path, schemas[name]); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		logger.WithField("path", path).Info("schema written")
	}
	return nil
}
