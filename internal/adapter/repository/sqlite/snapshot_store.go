package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	key        TEXT PRIMARY KEY,
	document   TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SnapshotStore keeps the snapshot document in a single row of a SQLite file
type SnapshotStore struct {
	db  *sql.DB
	key string
	now func() time.Time
}

// Open opens (or creates) the SQLite file and ensures the snapshots table exists
func Open(path, key string) (*SnapshotStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if strings.TrimSpace(key) == "" {
		return nil, errors.New("snapshot key is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create snapshots table: %w", err)
	}

	return &SnapshotStore{db: db, key: key, now: time.Now}, nil
}

// Close releases the database handle
func (s *SnapshotStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Load returns the stored document for the configured key
func (s *SnapshotStore) Load(ctx context.Context) ([]byte, bool, error) {
	var document string
	err := s.db.QueryRowContext(ctx, `SELECT document FROM snapshots WHERE key = ?`, s.key).Scan(&document)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return []byte(document), true, nil
}

// Save upserts the document under the configured key
func (s *SnapshotStore) Save(ctx context.Context, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO snapshots (key, document, updated_at)
VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET
	document = excluded.document,
	updated_at = excluded.updated_at`,
		s.key, string(data), s.now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}
