// Package updatecheck compares the local catalogs against the upstream API
// to detect new sets and new cards, without fetching full card data.
package updatecheck

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/BrevinB/InkwellKeeper/internal/config"
	"github.com/BrevinB/InkwellKeeper/internal/fetcher"
	"github.com/BrevinB/InkwellKeeper/internal/models"
)

// API is the slice of the fetch client the check needs.
type API interface {
	FetchSets(ctx context.Context) ([]fetcher.SetInfo, error)
	FetchSetCardCount(ctx context.Context, code string) (int, error)
}

// SetDiff is one set's comparison row.
type SetDiff struct {
	Name       string
	Code       string
	APICount   int
	LocalCount int
}

// Report is the outcome of one update check.
type Report struct {
	NewSets    []SetDiff
	Updated    []SetDiff
	InSync     []SetDiff
	TotalAPI   int
	TotalLocal int
}

// HasUpdates reports whether the upstream has sets or cards the local data
// lacks. A local surplus (removed cards) is not an update.
func (r *Report) HasUpdates() bool {
	return len(r.NewSets) > 0 || len(r.Updated) > 0
}

// Run walks the upstream set listing and compares each set's card count
// against the local catalog of the same (translated) set name.
func Run(ctx context.Context, api API, maps config.CatalogMaps, catalogs []models.SetCatalog, logger *logrus.Logger) (*Report, error) {
	sets, err := api.FetchSets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list upstream sets: %w", err)
	}

	localByName := make(map[string]*models.SetCatalog, len(catalogs))
	for i := range catalogs {
		localByName[strings.ToLower(catalogs[i].SetName)] = &catalogs[i]
	}

	report := &Report{}
	for _, set := range sets {
		logger.Debugf("Checking %s (%s)", set.Name, set.Code)
		apiCount, err := api.FetchSetCardCount(ctx, set.Code)
		if err != nil {
			logger.WithError(err).Warnf("Skipping count for set %s", set.Name)
			continue
		}
		report.TotalAPI += apiCount

		localName := maps.SetName(set.Name)
		local, ok := localByName[strings.ToLower(localName)]
		if !ok {
			report.NewSets = append(report.NewSets, SetDiff{
				Name: set.Name, Code: set.Code, APICount: apiCount,
			})
			continue
		}

		diff := SetDiff{
			Name:       set.Name,
			Code:       set.Code,
			APICount:   apiCount,
			LocalCount: len(local.Cards),
		}
		report.TotalLocal += diff.LocalCount
		if apiCount > diff.LocalCount {
			report.Updated = append(report.Updated, diff)
		} else {
			report.InSync = append(report.InSync, diff)
		}
	}
	return report, nil
}

// Markdown renders the report the way the release checklist expects it.
func (r *Report) Markdown(baseURL, dataDir string) string {
	var b strings.Builder
	b.WriteString("# Catalog Update Check\n\n")
	fmt.Fprintf(&b, "**API Source:** %s\n", baseURL)
	fmt.Fprintf(&b, "**Local Data:** %s\n\n", dataDir)

	b.WriteString("## Set Comparison\n\n")
	b.WriteString("| Set | Upstream Cards | Local Cards | Difference |\n")
	b.WriteString("|-----|----------------|-------------|------------|\n")
	for _, s := range r.InSync {
		fmt.Fprintf(&b, "| %s | %d | %d | %d |\n", s.Name, s.APICount, s.LocalCount, s.APICount-s.LocalCount)
	}
	for _, s := range r.Updated {
		fmt.Fprintf(&b, "| %s | %d | %d | **+%d** |\n", s.Name, s.APICount, s.LocalCount, s.APICount-s.LocalCount)
	}
	for _, s := range r.NewSets {
		fmt.Fprintf(&b, "| **%s** | %d | **Missing** | **+%d** |\n", s.Name, s.APICount, s.APICount)
	}
	fmt.Fprintf(&b, "\n**Total:** upstream has %d cards, local has %d cards\n\n", r.TotalAPI, r.TotalLocal)

	if !r.HasUpdates() {
		b.WriteString("## Status: Up to Date\n\nLocal data matches the upstream API. No updates needed.\n")
		return b.String()
	}

	b.WriteString("## Updates Available\n\n")
	if len(r.NewSets) > 0 {
		b.WriteString("### New Sets Detected\n")
		for _, s := range r.NewSets {
			fmt.Fprintf(&b, "- **%s** (%s): %d cards\n", s.Name, s.Code, s.APICount)
		}
		b.WriteString("\n")
	}
	if len(r.Updated) > 0 {
		b.WriteString("### Sets with New Cards\n")
		for _, s := range r.Updated {
			fmt.Fprintf(&b, "- **%s** (%s): +%d new cards (%d -> %d)\n",
				s.Name, s.Code, s.APICount-s.LocalCount, s.LocalCount, s.APICount)
		}
		b.WriteString("\n")
	}
	b.WriteString("### Recommended Actions\n")
	b.WriteString("1. Run the ingest command to refresh the local catalogs\n")
	b.WriteString("2. Review new cards for data quality issues\n")
	b.WriteString("3. Update the app version and release\n")
	return b.String()
}
