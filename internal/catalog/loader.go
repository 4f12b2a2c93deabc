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

// reservedFiles are JSON files in the data dir that are not set catalogs.
var reservedFiles = map[string]struct{}{
	MigrationFilename:    {},
	"sets.json":          {},
	"starter_decks.json": {},
}

// LoadCatalogs reads every set catalog in dir, in sorted filename order.
// A missing dir is the first-run case and yields an empty slice. Unreadable
// individual files are logged and skipped; only an unreadable dir is an
// error.
func LoadCatalogs(dir string, logger *logrus.Logger) ([]models.SetCatalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read data dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		if _, reserved := reservedFiles[e.Name()]; reserved {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	catalogs := make([]models.SetCatalog, 0, len(names))
	for _, name := range names {
		cat, err := LoadCatalog(filepath.Join(dir, name))
		if err != nil {
			logger.WithError(err).Warnf("Skipping unreadable catalog file: %s", name)
			continue
		}
		catalogs = append(catalogs, *cat)
	}
	return catalogs, nil
}

// LoadCards returns the combined cards from every set catalog in dir.
func LoadCards(dir string, logger *logrus.Logger) ([]models.CanonicalCard, error) {
	catalogs, err := LoadCatalogs(dir, logger)
	if err != nil {
		return nil, err
	}
	var cards []models.CanonicalCard
	for _, cat := range catalogs {
		cards = append(cards, cat.Cards...)
	}
	return cards, nil
}

// LoadCatalog reads a single per-set catalog file.
func LoadCatalog(path string) (*models.SetCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	var cat models.SetCatalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog: %w", err)
	}
	return &cat, nil
}

// LoadMigrationMap reads the migration artifact written by a previous run.
func LoadMigrationMap(path string) (*models.MigrationMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration map: %w", err)
	}
	var m models.MigrationMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal migration map: %w", err)
	}
	return &m, nil
}
