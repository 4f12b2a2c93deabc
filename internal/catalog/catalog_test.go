package catalog_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrevinB/InkwellKeeper/internal/catalog"
	"github.com/BrevinB/InkwellKeeper/internal/models"
)

func intPtr(n int) *int { return &n }

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func card(id, name, set, code string, number *int, variant models.Variant) models.CanonicalCard {
	return models.CanonicalCard{
		EntityID:   id,
		Name:       name,
		SetName:    set,
		SetCode:    code,
		CardNumber: number,
		Variant:    variant,
	}
}

func TestSortCards(t *testing.T) {
	cards := []models.CanonicalCard{
		card("c", "C", "SetA", "SA", nil, models.VariantNormal),
		card("b-enchanted", "B", "SetA", "SA", intPtr(2), models.VariantEnchanted),
		card("a", "A", "SetA", "SA", intPtr(10), models.VariantNormal),
		card("b", "B", "SetA", "SA", intPtr(2), models.VariantNormal),
	}

	catalog.SortCards(cards)

	ids := make([]string, len(cards))
	for i, c := range cards {
		ids[i] = c.EntityID
	}
	// Number ascending, absent last; variant name breaks the tie
	// (Enchanted < Normal lexically).
	assert.Equal(t, []string{"b-enchanted", "b", "a", "c"}, ids)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "the_first_chapter.json", catalog.Filename("The First Chapter"))
	assert.Equal(t, "ursulas_return.json", catalog.Filename("Ursula's Return"))
	assert.Equal(t, "archazias_island.json", catalog.Filename("Archazia's Island"))
}

func TestWriteAndLoadRoundtrip(t *testing.T) {
	dir := t.TempDir()
	w := catalog.NewWriter(dir, quietLogger())

	cards := []models.CanonicalCard{
		card("SetB_1_Anna", "Anna", "SetB", "SB", intPtr(1), models.VariantNormal),
		card("SetA_2_Elsa", "Elsa", "SetA", "SA", intPtr(2), models.VariantNormal),
		card("SetA_1_Olaf", "Olaf", "SetA", "SA", intPtr(1), models.VariantNormal),
	}

	catalogs, err := w.WriteCatalogs(cards)
	require.NoError(t, err)
	require.Len(t, catalogs, 2)
	assert.Equal(t, "SetA", catalogs[0].SetName)
	assert.Equal(t, 2, catalogs[0].CardCount)
	assert.Equal(t, "SetA_1_Olaf", catalogs[0].Cards[0].EntityID)

	loaded, err := catalog.LoadCatalogs(dir, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, catalogs, loaded)

	flat, err := catalog.LoadCards(dir, quietLogger())
	require.NoError(t, err)
	assert.Len(t, flat, 3)
}

func TestLoaderSkipsReservedAndBrokenFiles(t *testing.T) {
	dir := t.TempDir()
	w := catalog.NewWriter(dir, quietLogger())

	_, err := w.WriteCatalogs([]models.CanonicalCard{
		card("SetA_1_Olaf", "Olaf", "SetA", "SA", intPtr(1), models.VariantNormal),
	})
	require.NoError(t, err)
	_, err = w.WriteMigrationMap(nil, "2026-08-30")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	cards, err := catalog.LoadCards(dir, quietLogger())
	require.NoError(t, err)
	assert.Len(t, cards, 1)
}

func TestMissingDirIsFirstRun(t *testing.T) {
	cards, err := catalog.LoadCards(filepath.Join(t.TempDir(), "nope"), quietLogger())
	require.NoError(t, err)
	assert.Empty(t, cards)
}

func TestMigrationMapArtifact(t *testing.T) {
	dir := t.TempDir()
	w := catalog.NewWriter(dir, quietLogger())

	entries := []models.MigrationEntry{
		{OldEntityID: "old_1", NewEntityID: "new_1", NewUniqueCode: "SA-001", MatchMethod: models.MatchUniqueCode},
		{OldEntityID: "old_2", NewEntityID: "new_2", MatchMethod: models.MatchNameAndSet},
		// A second claim on old_1 must not replace the first.
		{OldEntityID: "old_1", NewEntityID: "other", MatchMethod: models.MatchNumberAndSet},
	}

	artifact, err := w.WriteMigrationMap(entries, "2026-08-30")
	require.NoError(t, err)
	assert.Equal(t, "1.0", artifact.Version)
	assert.Equal(t, "2026-08-30", artifact.RunDate)
	assert.Equal(t, 2, artifact.TotalMappings)
	assert.Equal(t, "new_1", artifact.Mappings["old_1"].NewEntityID)

	loaded, err := catalog.LoadMigrationMap(filepath.Join(dir, catalog.MigrationFilename))
	require.NoError(t, err)
	assert.Equal(t, artifact, loaded)
}

// Two runs over identical input produce byte-identical files.
func TestDeterministicOutput(t *testing.T) {
	cards := []models.CanonicalCard{
		card("SetA_2_Elsa", "Elsa", "SetA", "SA", intPtr(2), models.VariantNormal),
		card("SetA_1_Olaf", "Olaf", "SetA", "SA", intPtr(1), models.VariantNormal),
	}
	entries := []models.MigrationEntry{
		{OldEntityID: "old_b", NewEntityID: "SetA_2_Elsa", MatchMethod: models.MatchUniqueCode},
		{OldEntityID: "old_a", NewEntityID: "SetA_1_Olaf", MatchMethod: models.MatchUniqueCode},
	}

	run := func(dir string) (setBytes, mapBytes []byte) {
		w := catalog.NewWriter(dir, quietLogger())
		_, err := w.WriteCatalogs(append([]models.CanonicalCard(nil), cards...))
		require.NoError(t, err)
		_, err = w.WriteMigrationMap(entries, "2026-08-30")
		require.NoError(t, err)

		setBytes, err = os.ReadFile(filepath.Join(dir, "seta.json"))
		require.NoError(t, err)
		mapBytes, err = os.ReadFile(filepath.Join(dir, catalog.MigrationFilename))
		require.NoError(t, err)
		return setBytes, mapBytes
	}

	set1, map1 := run(t.TempDir())
	set2, map2 := run(t.TempDir())
	assert.Equal(t, set1, set2)
	assert.Equal(t, map1, map2)
}
