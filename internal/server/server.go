// Package server exposes the written catalogs over a read-only HTTP API for
// the companion dashboard. It never mutates catalog data.
package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/BrevinB/InkwellKeeper/internal/catalog"
	"github.com/BrevinB/InkwellKeeper/internal/models"
)

// Server serves the catalogs loaded from one data dir.
type Server struct {
	logger    *logrus.Logger
	catalogs  []models.SetCatalog
	migration *models.MigrationMap
}

// New loads the catalogs and the migration map (when present) from dataDir.
func New(dataDir string, logger *logrus.Logger) (*Server, error) {
	catalogs, err := catalog.LoadCatalogs(dataDir, logger)
	if err != nil {
		return nil, err
	}

	s := &Server{logger: logger, catalogs: catalogs}

	migrationPath := filepath.Join(dataDir, catalog.MigrationFilename)
	if _, err := os.Stat(migrationPath); err == nil {
		migration, err := catalog.LoadMigrationMap(migrationPath)
		if err != nil {
			logger.WithError(err).Warn("Migration map unreadable, serving without it")
		} else {
			s.migration = migration
		}
	}

	logger.Infof("Loaded %d set catalogs", len(catalogs))
	return s, nil
}

// Router builds the gin engine with all API routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")
	api.GET("/stats", s.handleStats)
	api.GET("/sets", s.handleSets)
	api.GET("/sets/:code", s.handleSet)
	api.GET("/search", s.handleSearch)
	api.GET("/migration", s.handleMigration)

	return r
}

func (s *Server) handleStats(c *gin.Context) {
	totalCards := 0
	missingImages := 0
	variants := make(map[models.Variant]int)
	for _, cat := range s.catalogs {
		totalCards += len(cat.Cards)
		for i := range cat.Cards {
			variants[cat.Cards[i].Variant]++
			if cat.Cards[i].NeedsLocalImage() {
				missingImages++
			}
		}
	}

	stats := gin.H{
		"sets_count":     len(s.catalogs),
		"cards_count":    totalCards,
		"variant_counts": variants,
		"missing_images": missingImages,
	}
	if s.migration != nil {
		stats["migration_mappings"] = s.migration.TotalMappings
		stats["migration_run_date"] = s.migration.RunDate
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) handleSets(c *gin.Context) {
	type setSummary struct {
		SetName   string `json:"setName"`
		SetCode   string `json:"setCode"`
		CardCount int    `json:"cardCount"`
	}
	summaries := make([]setSummary, 0, len(s.catalogs))
	for _, cat := range s.catalogs {
		summaries = append(summaries, setSummary{
			SetName:   cat.SetName,
			SetCode:   cat.SetCode,
			CardCount: cat.CardCount,
		})
	}
	c.JSON(http.StatusOK, gin.H{"sets": summaries})
}

func (s *Server) handleSet(c *gin.Context) {
	code := c.Param("code")
	for _, cat := range s.catalogs {
		if strings.EqualFold(cat.SetCode, code) {
			c.JSON(http.StatusOK, cat)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "set not found"})
}

func (s *Server) handleSearch(c *gin.Context) {
	query := strings.ToLower(strings.TrimSpace(c.Query("q")))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing query parameter q"})
		return
	}

	results := []models.CanonicalCard{}
	for _, cat := range s.catalogs {
		for i := range cat.Cards {
			if strings.Contains(strings.ToLower(cat.Cards[i].Name), query) {
				results = append(results, cat.Cards[i])
			}
		}
	}
	c.JSON(http.StatusOK, gin.H{"query": query, "count": len(results), "results": results})
}

func (s *Server) handleMigration(c *gin.Context) {
	if s.migration == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no migration map available"})
		return
	}
	c.JSON(http.StatusOK, s.migration)
}
