// Package collection applies a migration map to a user's owned-card
// collection. The collection references catalog entity IDs; after a catalog
// refresh renumbers or reclassifies cards, the stored IDs must follow.
package collection

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/BrevinB/InkwellKeeper/internal/models"
)

// Migrator rewrites collection rows from old entity IDs to new ones.
type Migrator struct {
	db *sql.DB
}

// Open opens the collection database and ensures the schema exists.
func Open(path string) (*Migrator, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS collection (
			card_id   TEXT PRIMARY KEY,
			quantity  INTEGER NOT NULL DEFAULT 0,
			foil_quantity INTEGER NOT NULL DEFAULT 0,
			added_at  TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create collection table: %w", err)
	}
	return &Migrator{db: db}, nil
}

func (m *Migrator) Close() error {
	return m.db.Close()
}

// Result reports what one migration pass changed.
type Result struct {
	Updated   int // rows rewritten to their new ID
	Unchanged int // mappings whose old ID holds no collection row
	Merged    int // old rows folded into an existing row at the new ID
}

// Apply rewrites every collection row whose card ID appears in the migration
// map, in one transaction. A row whose new ID is already present (an
// already-migrated collection, or a dedup on the catalog side) has its
// quantities merged into the existing row. Re-running with the same map is a
// no-op.
func (m *Migrator) Apply(ctx context.Context, migration *models.MigrationMap) (*Result, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res := &Result{}
	for oldID, entry := range migration.Mappings {
		if oldID == entry.NewEntityID {
			continue
		}

		var exists int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(1) FROM collection WHERE card_id = ?`, oldID).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("lookup %s: %w", oldID, err)
		}
		if exists == 0 {
			res.Unchanged++
			continue
		}

		var taken int
		err = tx.QueryRowContext(ctx,
			`SELECT COUNT(1) FROM collection WHERE card_id = ?`, entry.NewEntityID).Scan(&taken)
		if err != nil {
			return nil, fmt.Errorf("lookup %s: %w", entry.NewEntityID, err)
		}

		if taken > 0 {
			_, err = tx.ExecContext(ctx, `
				UPDATE collection SET
					quantity = quantity + (SELECT quantity FROM collection WHERE card_id = ?),
					foil_quantity = foil_quantity + (SELECT foil_quantity FROM collection WHERE card_id = ?)
				WHERE card_id = ?`, oldID, oldID, entry.NewEntityID)
			if err != nil {
				return nil, fmt.Errorf("merge %s into %s: %w", oldID, entry.NewEntityID, err)
			}
			if _, err = tx.ExecContext(ctx,
				`DELETE FROM collection WHERE card_id = ?`, oldID); err != nil {
				return nil, fmt.Errorf("remove merged row %s: %w", oldID, err)
			}
			res.Merged++
			continue
		}

		if _, err = tx.ExecContext(ctx,
			`UPDATE collection SET card_id = ? WHERE card_id = ?`,
			entry.NewEntityID, oldID); err != nil {
			return nil, fmt.Errorf("rename %s to %s: %w", oldID, entry.NewEntityID, err)
		}
		res.Updated++
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return res, nil
}

// AddCard inserts or bumps one collection row. Exposed mainly for tooling
// and tests.
func (m *Migrator) AddCard(ctx context.Context, cardID string, quantity, foilQuantity int) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO collection (card_id, quantity, foil_quantity)
		VALUES (?, ?, ?)
		ON CONFLICT(card_id) DO UPDATE SET
			quantity = quantity + excluded.quantity,
			foil_quantity = foil_quantity + excluded.foil_quantity
	`, cardID, quantity, foilQuantity)
	if err != nil {
		return fmt.Errorf("add card %s: %w", cardID, err)
	}
	return nil
}

// Quantities returns the stored quantities for one card ID.
func (m *Migrator) Quantities(ctx context.Context, cardID string) (int, int, error) {
	var qty, foil int
	err := m.db.QueryRowContext(ctx,
		`SELECT quantity, foil_quantity FROM collection WHERE card_id = ?`, cardID).
		Scan(&qty, &foil)
	if err == sql.ErrNoRows {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, fmt.Errorf("query %s: %w", cardID, err)
	}
	return qty, foil, nil
}
