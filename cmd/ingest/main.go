package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/BrevinB/InkwellKeeper/internal/catalog"
	"github.com/BrevinB/InkwellKeeper/internal/config"
	"github.com/BrevinB/InkwellKeeper/internal/events"
	"github.com/BrevinB/InkwellKeeper/internal/fetcher"
	"github.com/BrevinB/InkwellKeeper/internal/pipeline"
	"github.com/BrevinB/InkwellKeeper/internal/reconcile"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to config file")
		dataDir    = flag.String("data-dir", "", "override the catalog data directory")
		dryRun     = flag.Bool("dry-run", false, "run the pipeline but skip event publishing")
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

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	logger.Info("Starting catalog ingestion run")
	startTime := time.Now()

	// Cancellation covers the fetch stage only; once normalization begins
	// the run proceeds to completion.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := fetcher.New(cfg.Fetch, logger)
	raw, err := client.FetchAllCards(ctx)
	if err != nil {
		logger.Fatalf("Failed to fetch catalog data: %v", err)
	}
	stop()

	oldCards, err := catalog.LoadCards(cfg.DataDir, logger)
	if err != nil {
		logger.Fatalf("Failed to load previous snapshot: %v", err)
	}
	logger.Infof("Loaded %d cards from the previous snapshot", len(oldCards))
	snapshot := reconcile.BuildSnapshot(oldCards)

	writer := catalog.NewWriter(cfg.DataDir, logger)
	result, err := pipeline.New(cfg.Maps, writer, logger).Run(raw, snapshot)
	if err != nil {
		logger.Fatalf("Pipeline run failed: %v", err)
	}

	result.Summary.Log(logger)

	if cfg.Kafka.Enabled && !*dryRun {
		publishEvents(cfg, result, logger)
	}

	logger.Infof("Ingestion completed in %v", time.Since(startTime))
}

func publishEvents(cfg *config.Config, result *pipeline.Result, logger *logrus.Logger) {
	publisher, err := events.NewPublisher(cfg.Kafka, logger)
	if err != nil {
		logger.Errorf("Failed to create event publisher: %v", err)
		return
	}
	defer publisher.Close()

	publishedCards := 0
	for _, cat := range result.Catalogs {
		for _, card := range cat.Cards {
			if err := publisher.PublishCard(card); err != nil {
				logger.Errorf("Failed to publish card %s: %v", card.EntityID, err)
				continue
			}
			publishedCards++
			if publishedCards%1000 == 0 {
				logger.Infof("Published %d cards", publishedCards)
			}
		}
	}

	publishedMappings := 0
	for _, entry := range result.Entries {
		if err := publisher.PublishMigration(entry); err != nil {
			logger.Errorf("Failed to publish mapping for %s: %v", entry.OldEntityID, err)
			continue
		}
		publishedMappings++
	}

	if remaining := publisher.Flush(30000); remaining > 0 {
		logger.Warnf("%d messages were not delivered", remaining)
	}
	logger.Infof("Published %d card events and %d migration events", publishedCards, publishedMappings)
}
