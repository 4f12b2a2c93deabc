package main

import (
	"context"
	"flag"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/BrevinB/InkwellKeeper/internal/catalog"
	"github.com/BrevinB/InkwellKeeper/internal/collection"
	"github.com/BrevinB/InkwellKeeper/internal/config"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to config file")
		dbPath     = flag.String("db", "collection.db", "path to the collection database")
		mapPath    = flag.String("map", "", "path to migration_map.json (defaults to the data dir)")
	)
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	path := *mapPath
	if path == "" {
		path = filepath.Join(cfg.DataDir, catalog.MigrationFilename)
	}

	migration, err := catalog.LoadMigrationMap(path)
	if err != nil {
		logger.Fatalf("Failed to load migration map: %v", err)
	}
	logger.Infof("Loaded migration map with %d mappings (run date %s)",
		migration.TotalMappings, migration.RunDate)

	migrator, err := collection.Open(*dbPath)
	if err != nil {
		logger.Fatalf("Failed to open collection database: %v", err)
	}
	defer migrator.Close()

	result, err := migrator.Apply(context.Background(), migration)
	if err != nil {
		logger.Fatalf("Migration failed: %v", err)
	}

	logger.WithFields(logrus.Fields{
		"updated":   result.Updated,
		"merged":    result.Merged,
		"unchanged": result.Unchanged,
	}).Info("Collection migration complete")
}
