package main

import (
	"flag"

	"github.com/sirupsen/logrus"

	"github.com/BrevinB/InkwellKeeper/internal/config"
	"github.com/BrevinB/InkwellKeeper/internal/server"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to config file")
		dataDir    = flag.String("data-dir", "", "override the catalog data directory")
		addr       = flag.String("addr", "", "override the listen address")
	)
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	srv, err := server.New(cfg.DataDir, logger)
	if err != nil {
		logger.Fatalf("Failed to load catalogs: %v", err)
	}

	logger.Infof("Catalog server listening on %s", cfg.Server.Addr)
	if err := srv.Router().Run(cfg.Server.Addr); err != nil {
		logger.Fatalf("Server stopped: %v", err)
	}
}
