package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// InitSchema creates the SQLite travel-time cache table.
func InitSchema(ctx context.Context, db *sql.DB) error {
	return initSchema(ctx, db, []string{`
	CREATE TABLE IF NOT EXISTS traveltime_cache (
		cache_key TEXT PRIMARY KEY,
		result BLOB NOT NULL
	);
	`})
}

// InitPostgresSchema creates the shared Postgres travel-time cache table.
func InitPostgresSchema(ctx context.Context, db *sql.DB) error {
	return initSchema(ctx, db, []string{`
	CREATE TABLE IF NOT EXISTS traveltime_cache (
		cache_key TEXT PRIMARY KEY,
		result BYTEA NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`})
}

func initSchema(ctx context.Context, db *sql.DB, statements []string) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
