package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/BrevinB/InkwellKeeper/internal/catalog"
	"github.com/BrevinB/InkwellKeeper/internal/config"
	"github.com/BrevinB/InkwellKeeper/internal/fetcher"
	"github.com/BrevinB/InkwellKeeper/internal/updatecheck"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to config file")
		dataDir    = flag.String("data-dir", "", "override the catalog data directory")
	)
	flag.Parse()

	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}

	catalogs, err := catalog.LoadCatalogs(cfg.DataDir, logger)
	if err != nil {
		logger.Fatalf("Failed to load local catalogs: %v", err)
	}

	client := fetcher.New(cfg.Fetch, logger)
	report, err := updatecheck.Run(context.Background(), client, cfg.Maps, catalogs, logger)
	if err != nil {
		logger.Fatalf("Update check failed: %v", err)
	}

	fmt.Println(report.Markdown(cfg.Fetch.BaseURL, cfg.DataDir))

	// Exit code 1 when updates exist, for CI wiring.
	if report.HasUpdates() {
		os.Exit(1)
	}
}
