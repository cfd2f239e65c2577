package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/hemo-scheduler-api/internal/models"
)

// SnapshotRepository is a key-value store of serialized schedule snapshots.
type SnapshotRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewSnapshotRepository constructs the repository.
func NewSnapshotRepository(db *sqlx.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

const upsertSnapshotQuery = `INSERT INTO schedule_snapshots (slot_key, payload, updated_at)
VALUES (?, ?, ?)
ON CONFLICT (slot_key)
DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`

// Get returns the stored slot. A missing slot yields sql.ErrNoRows.
func (r *SnapshotRepository) Get(ctx context.Context, key string) (*models.SnapshotRecord, error) {
	query := r.db.Rebind(`SELECT slot_key, payload, updated_at FROM schedule_snapshots WHERE slot_key = ?`)
	var rec models.SnapshotRecord
	if err := r.db.GetContext(ctx, &rec, query, key); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Put writes a single slot.
func (r *SnapshotRepository) Put(ctx context.Context, key, payload string) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(upsertSnapshotQuery), key, payload, r.now()); err != nil {
		return fmt.Errorf("upsert snapshot %s: %w", key, err)
	}
	return nil
}

// PutAll writes several slots in one transaction so readers never see a partial save.
func (r *SnapshotRepository) PutAll(ctx context.Context, slots map[string]string, order []string) error {
	if len(order) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	query := tx.Rebind(upsertSnapshotQuery)
	now := r.now()
	for _, key := range order {
		if _, err := tx.ExecContext(ctx, query, key, slots[key], now); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("upsert snapshot %s: %w", key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot tx: %w", err)
	}
	return nil
}

// Delete removes a slot; deleting a missing slot is not an error.
func (r *SnapshotRepository) Delete(ctx context.Context, key string) error {
	query := r.db.Rebind(`DELETE FROM schedule_snapshots WHERE slot_key = ?`)
	if _, err := r.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("delete snapshot %s: %w", key, err)
	}
	return nil
}

// Ping checks the database connection for readiness probes.
func (r *SnapshotRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
