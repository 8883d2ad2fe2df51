package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SnapshotRepository implements domain.SnapshotStore over a single table row
type SnapshotRepository struct {
	db  *DB
	key string
}

// NewSnapshotRepository creates a new snapshot repository bound to one key
func NewSnapshotRepository(db *DB, key string) *SnapshotRepository {
	return &SnapshotRepository{db: db, key: key}
}

// EnsureSchema creates the snapshots table when it does not exist
func (r *SnapshotRepository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS snapshots (
			key        TEXT PRIMARY KEY,
			document   JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`

	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create snapshots table: %w", err)
	}
	return nil
}

// Load retrieves the document stored under the repository key
func (r *SnapshotRepository) Load(ctx context.Context) ([]byte, bool, error) {
	query := `
		SELECT document
		FROM snapshots
		WHERE key = $1
	`

	var document []byte
	err := r.db.QueryRowContext(ctx, query, r.key).Scan(&document)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get snapshot: %w", err)
	}

	return document, true, nil
}

// Save inserts or replaces the document stored under the repository key
func (r *SnapshotRepository) Save(ctx context.Context, data []byte) error {
	query := `
		INSERT INTO snapshots (key, document, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE
		SET document = EXCLUDED.document,
		    updated_at = EXCLUDED.updated_at
	`

	if _, err := r.db.ExecContext(ctx, query, r.key, string(data)); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	return nil
}
