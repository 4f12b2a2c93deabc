// Package pipeline composes the catalog stages: normalize, synthesize
// identities, deduplicate, reconcile, write. Every stage is a single-threaded
// pass over a fully materialized collection; once a run starts it proceeds to
// completion, per-record faults are counted, never fatal.
package pipeline

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/BrevinB/InkwellKeeper/internal/catalog"
	"github.com/BrevinB/InkwellKeeper/internal/config"
	"github.com/BrevinB/InkwellKeeper/internal/dedupe"
	"github.com/BrevinB/InkwellKeeper/internal/identity"
	"github.com/BrevinB/InkwellKeeper/internal/models"
	"github.com/BrevinB/InkwellKeeper/internal/normalize"
	"github.com/BrevinB/InkwellKeeper/internal/reconcile"
)

// Summary is the run report surfaced at the end of an ingestion.
type Summary struct {
	Fetched          int
	Rejected         int
	Duplicates       int
	Collisions       []dedupe.Collision
	Sets             int
	Cards            int
	TotalMappings    int
	MappingsByMethod map[models.MatchMethod]int
	VariantCounts    map[models.Variant]int
	MissingImages    int
}

// Log writes the summary through the run logger.
func (s *Summary) Log(logger *logrus.Logger) {
	logger.WithFields(logrus.Fields{
		"fetched":    s.Fetched,
		"rejected":   s.Rejected,
		"duplicates": s.Duplicates,
		"collisions": len(s.Collisions),
		"sets":       s.Sets,
		"cards":      s.Cards,
		"mappings":   s.TotalMappings,
	}).Info("Run summary")

	for variant, count := range s.VariantCounts {
		logger.Infof("Variant %s: %d cards", variant, count)
	}
	for method, count := range s.MappingsByMethod {
		logger.Infof("Matched by %s: %d", method, count)
	}
	logger.Infof("Cards needing local images: %d", s.MissingImages)

	for _, c := range s.Collisions {
		logger.WithFields(logrus.Fields{
			"entityId": c.EntityID,
			"kept":     c.Kept,
			"dropped":  c.Dropped,
		}).Error("Entity ID collision between distinct cards")
	}
}

// Result holds everything one run produced.
type Result struct {
	Catalogs  []models.SetCatalog
	Migration *models.MigrationMap
	Entries   []models.MigrationEntry
	Summary   Summary
}

// Pipeline runs the normalization and reconciliation stages and writes the
// output catalogs.
type Pipeline struct {
	normalizer *normalize.Normalizer
	writer     *catalog.Writer
	logger     *logrus.Logger
	runDate    string
}

func New(maps config.CatalogMaps, writer *catalog.Writer, logger *logrus.Logger) *Pipeline {
	return &Pipeline{
		normalizer: normalize.New(maps),
		writer:     writer,
		logger:     logger,
		runDate:    time.Now().Format("2006-01-02"),
	}
}

// SetRunDate overrides the run date recorded in the migration artifact.
func (p *Pipeline) SetRunDate(date string) {
	p.runDate = date
}

// Run processes the fetched raw records against the old snapshot. A nil
// snapshot means a first run: nothing to reconcile against, every card is
// new, the migration map comes out empty.
func (p *Pipeline) Run(raw []models.RawCard, old *reconcile.Snapshot) (*Result, error) {
	if old == nil {
		old = reconcile.NewSnapshot()
	}

	summary := Summary{
		Fetched:          len(raw),
		MappingsByMethod: make(map[models.MatchMethod]int),
		VariantCounts:    make(map[models.Variant]int),
	}

	cards := make([]models.CanonicalCard, 0, len(raw))
	for i := range raw {
		card, err := p.normalizer.Card(&raw[i])
		if err != nil {
			summary.Rejected++
			p.logger.WithError(err).Warnf("Skipping record %q", raw[i].Name)
			continue
		}
		identity.Apply(card)
		cards = append(cards, *card)
	}

	deduped := dedupe.Cards(cards)
	summary.Duplicates = deduped.Duplicates
	summary.Collisions = deduped.Collisions
	summary.Cards = len(deduped.Cards)

	for i := range deduped.Cards {
		card := &deduped.Cards[i]
		summary.VariantCounts[card.Variant]++
		if card.NeedsLocalImage() {
			summary.MissingImages++
		}
	}

	entries := reconcile.Cards(old, deduped.Cards)
	for _, entry := range entries {
		summary.MappingsByMethod[entry.MatchMethod]++
	}

	catalogs, err := p.writer.WriteCatalogs(deduped.Cards)
	if err != nil {
		return nil, fmt.Errorf("failed to write catalogs: %w", err)
	}
	summary.Sets = len(catalogs)

	migration, err := p.writer.WriteMigrationMap(entries, p.runDate)
	if err != nil {
		return nil, fmt.Errorf("failed to write migration map: %w", err)
	}
	summary.TotalMappings = migration.TotalMappings

	return &Result{
		Catalogs:  catalogs,
		Migration: migration,
		Entries:   entries,
		Summary:   summary,
	}, nil
}
