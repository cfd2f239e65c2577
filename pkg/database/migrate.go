package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const snapshotSchema = `
CREATE TABLE IF NOT EXISTS schedule_snapshots (
	slot_key   TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

// Migrate creates the tables the service needs. Both drivers accept the same DDL.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, snapshotSchema); err != nil {
		return fmt.Errorf("create schedule_snapshots: %w", err)
	}
	return nil
}
