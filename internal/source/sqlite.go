package source

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"assetgrip/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS assets (
	seq    INTEGER PRIMARY KEY AUTOINCREMENT,
	id     TEXT NOT NULL UNIQUE,
	kind   TEXT NOT NULL,
	name   TEXT NOT NULL,
	vendor TEXT NOT NULL DEFAULT '',
	seats  INTEGER NOT NULL DEFAULT 0,
	cost   REAL NOT NULL DEFAULT 0,
	expiry TIMESTAMP NULL,
	notes  TEXT NOT NULL DEFAULT ''
);
`

// SQLiteProvider pages assets out of a SQLite database in insertion order
type SQLiteProvider struct {
	db *sqlx.DB
}

// OpenSQLite opens (creating if needed) the database at path and applies the schema
func OpenSQLite(path string) (*SQLiteProvider, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows a single writer
	db.SetMaxOpenConns(1)

	p, err := NewSQLiteProvider(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return p, nil
}

// NewSQLiteProvider applies the schema to an open database
func NewSQLiteProvider(db *sqlx.DB) (*SQLiteProvider, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &SQLiteProvider{db: db}, nil
}

// Seed inserts assets, skipping ids that already exist. It returns the
// number of rows inserted.
func (p *SQLiteProvider) Seed(ctx context.Context, assets []domain.Asset) (int, error) {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin seed: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareNamedContext(ctx, `
		INSERT OR IGNORE INTO assets (id, kind, name, vendor, seats, cost, expiry, notes)
		VALUES (:id, :kind, :name, :vendor, :seats, :cost, :expiry, :notes)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare seed: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, a := range assets {
		res, err := stmt.ExecContext(ctx, a)
		if err != nil {
			return 0, fmt.Errorf("failed to insert asset %s: %w", a.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to count insert: %w", err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit seed: %w", err)
	}
	return inserted, nil
}

// Count returns the number of stored assets
func (p *SQLiteProvider) Count(ctx context.Context) (int, error) {
	var n int
	if err := p.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM assets`); err != nil {
		return 0, fmt.Errorf("failed to count assets: %w", err)
	}
	return n, nil
}

// FetchPage implements Provider
func (p *SQLiteProvider) FetchPage(ctx context.Context, offset, limit int) ([]domain.Asset, error) {
	if err := checkPage(offset, limit); err != nil {
		return nil, err
	}

	assets := []domain.Asset{}
	err := p.db.SelectContext(ctx, &assets, `
		SELECT id, kind, name, vendor, seats, cost, expiry, notes
		FROM assets
		ORDER BY seq
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query assets: %w", err)
	}
	return assets, nil
}

// Close implements Provider
func (p *SQLiteProvider) Close() error {
	return p.db.Close()
}
