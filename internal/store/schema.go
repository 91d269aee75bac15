package store

import (
	"context"
	"database/sql"
	"fmt"
)

// SchemaVersion is the only on-disk version this package reads or writes.
const SchemaVersion = 1

const schemaDDL = `
CREATE TABLE people (
  id     INTEGER PRIMARY KEY,
  name   TEXT NOT NULL,
  birth  INTEGER NOT NULL
)`

// initSchema creates the people table on a fresh file and refuses any file
// tagged with a version other than SchemaVersion.
func initSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var version int
	if err := tx.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	switch version {
	case SchemaVersion:
		return nil
	case 0:
	default:
		// No migrations: one supported on-disk version.
		return fmt.Errorf("%w: file has %d, want %d", ErrUnsupportedVersion, version, SchemaVersion)
	}

	if _, err := tx.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	// PRAGMA does not take bound parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", SchemaVersion)); err != nil {
		return fmt.Errorf("set schema version: %w", err)
	}
	return tx.Commit()
}
