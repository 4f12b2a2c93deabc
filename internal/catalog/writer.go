// Package catalog reads and writes the per-set catalog files and the
// migration map artifact.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/BrevinB/InkwellKeeper/internal/models"
)

const (
	// MigrationFilename is the aggregate migration artifact.
	MigrationFilename = "migration_map.json"

	migrationVersion = "1.0"
)

// Writer emits per-set catalogs and the migration map under one data dir.
// Each run replaces a set's catalog wholesale; nothing is patched in place.
type Writer struct {
	dataDir string
	logger  *logrus.Logger
}

func NewWriter(dataDir string, logger *logrus.Logger) *Writer {
	return &Writer{dataDir: dataDir, logger: logger}
}

// WriteCatalogs groups the cards by set, orders each set deterministically,
// and writes one catalog file per set. The returned catalogs are sorted by
// set name.
func (w *Writer) WriteCatalogs(cards []models.CanonicalCard) ([]models.SetCatalog, error) {
	if err := os.MkdirAll(w.dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	bySet := make(map[string][]models.CanonicalCard)
	for _, card := range cards {
		bySet[card.SetName] = append(bySet[card.SetName], card)
	}

	setNames := make([]string, 0, len(bySet))
	for name := range bySet {
		setNames = append(setNames, name)
	}
	sort.Strings(setNames)

	catalogs := make([]models.SetCatalog, 0, len(setNames))
	for _, setName := range setNames {
		setCards := bySet[setName]
		SortCards(setCards)

		cat := models.SetCatalog{
			SetName:   setName,
			SetCode:   setCards[0].SetCode,
			CardCount: len(setCards),
			Cards:     setCards,
		}

		path := filepath.Join(w.dataDir, Filename(setName))
		if err := writeJSON(path, cat); err != nil {
			return nil, fmt.Errorf("failed to write catalog for %s: %w", setName, err)
		}
		w.logger.Infof("Wrote %s (%d cards)", Filename(setName), cat.CardCount)
		catalogs = append(catalogs, cat)
	}

	return catalogs, nil
}

// WriteMigrationMap writes the aggregate migration artifact. The mappings
// are keyed by old entity ID; JSON map keys marshal sorted, so identical
// input produces byte-identical output.
func (w *Writer) WriteMigrationMap(entries []models.MigrationEntry, runDate string) (*models.MigrationMap, error) {
	if err := os.MkdirAll(w.dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	mappings := make(map[string]models.MigrationEntry, len(entries))
	for _, entry := range entries {
		if _, ok := mappings[entry.OldEntityID]; ok {
			continue
		}
		mappings[entry.OldEntityID] = entry
	}

	artifact := &models.MigrationMap{
		Version:       migrationVersion,
		RunDate:       runDate,
		TotalMappings: len(mappings),
		Mappings:      mappings,
	}

	path := filepath.Join(w.dataDir, MigrationFilename)
	if err := writeJSON(path, artifact); err != nil {
		return nil, fmt.Errorf("failed to write migration map: %w", err)
	}
	w.logger.Infof("Wrote %s (%d mappings)", MigrationFilename, artifact.TotalMappings)
	return artifact, nil
}

// SortCards orders a set's cards by collector number ascending with absent
// numbers last, breaking ties by variant name. The sort is stable so the
// deduplicator's first-wins choice stays observable.
func SortCards(cards []models.CanonicalCard) {
	sort.SliceStable(cards, func(i, j int) bool {
		ni, nj := sortNumber(&cards[i]), sortNumber(&cards[j])
		if ni != nj {
			return ni < nj
		}
		return cards[i].Variant < cards[j].Variant
	})
}

func sortNumber(c *models.CanonicalCard) int {
	if c.CardNumber == nil {
		return int(^uint(0) >> 1) // absent sorts after every real number
	}
	return *c.CardNumber
}

// Filename derives a catalog filename from a set name: lowercased, spaces
// to underscores, apostrophes dropped.
func Filename(setName string) string {
	name := strings.ToLower(setName)
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "'", "")
	return name + ".json"
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
