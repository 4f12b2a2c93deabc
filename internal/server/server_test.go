package server_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrevinB/InkwellKeeper/internal/catalog"
	"github.com/BrevinB/InkwellKeeper/internal/models"
	"github.com/BrevinB/InkwellKeeper/internal/server"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func intPtr(n int) *int { return &n }

func newTestServer(t *testing.T) *server.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	w := catalog.NewWriter(dir, quietLogger())

	_, err := w.WriteCatalogs([]models.CanonicalCard{
		{
			EntityID:   "The_First_Chapter_4_Elsa__Snow_Queen",
			Name:       "Elsa - Snow Queen",
			SetName:    "The First Chapter",
			SetCode:    "TFC",
			CardNumber: intPtr(4),
			UniqueCode: "TFC-004",
			Variant:    models.VariantNormal,
			ImageURL:   "local:TFC-004",
		},
		{
			EntityID:   "Rise_of_the_Floodborn_1_Anna",
			Name:       "Anna",
			SetName:    "Rise of the Floodborn",
			SetCode:    "ROF",
			CardNumber: intPtr(1),
			UniqueCode: "ROF-001",
			Variant:    models.VariantNormal,
			ImageURL:   "https://cards.example/anna.avif",
		},
	})
	require.NoError(t, err)

	_, err = w.WriteMigrationMap([]models.MigrationEntry{
		{OldEntityID: "old_elsa", NewEntityID: "The_First_Chapter_4_Elsa__Snow_Queen", MatchMethod: models.MatchUniqueCode},
	}, "2026-08-30")
	require.NoError(t, err)

	srv, err := server.New(dir, quietLogger())
	require.NoError(t, err)
	return srv
}

func doGet(t *testing.T, srv *server.Server, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	srv.Router().ServeHTTP(rec, req)

	var body map[string]interface{}
	if rec.Code == http.StatusOK || rec.Code == http.StatusNotFound || rec.Code == http.StatusBadRequest {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestStats(t *testing.T) {
	rec, body := doGet(t, newTestServer(t), "/api/stats")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, body["sets_count"])
	assert.EqualValues(t, 2, body["cards_count"])
	assert.EqualValues(t, 1, body["missing_images"])
	assert.EqualValues(t, 1, body["migration_mappings"])
}

func TestSets(t *testing.T) {
	rec, body := doGet(t, newTestServer(t), "/api/sets")
	require.Equal(t, http.StatusOK, rec.Code)
	sets, ok := body["sets"].([]interface{})
	require.True(t, ok)
	assert.Len(t, sets, 2)
}

func TestSetByCode(t *testing.T) {
	srv := newTestServer(t)

	rec, body := doGet(t, srv, "/api/sets/tfc")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "The First Chapter", body["setName"])

	rec, _ = doGet(t, srv, "/api/sets/NOPE")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSearch(t *testing.T) {
	srv := newTestServer(t)

	rec, body := doGet(t, srv, "/api/search?q=elsa")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, body["count"])

	rec, _ = doGet(t, srv, "/api/search")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMigration(t *testing.T) {
	rec, body := doGet(t, newTestServer(t), "/api/migration")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, body["totalMappings"])
}
