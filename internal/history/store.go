// Package history stores versioned snapshots of tagged records and serves
// the version-to-version diffs the console renders.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/flowdeck/flowdeck/internal/semantic"
)

// ErrNotFound is returned when a record path or version does not exist.
var ErrNotFound = errors.New("history: snapshot not found")

// Snapshot is one stored version of a logical record.
type Snapshot struct {
	ID        string                `json:"id"`
	Path      string                `json:"path"`
	Version   int64                 `json:"version"`
	Payload   *semantic.TaggedValue `json:"payload,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
}

// Store persists snapshots in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore creates a store over an open database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// CreateTable creates the snapshots table. Run during startup migration.
func (s *Store) CreateTable(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS snapshots (
			id          TEXT NOT NULL PRIMARY KEY,
			record_path TEXT NOT NULL,
			version     INTEGER NOT NULL,
			payload     TEXT NOT NULL,
			created_at  TIMESTAMP NOT NULL,
			UNIQUE (record_path, version)
		);

		CREATE INDEX IF NOT EXISTS idx_snapshots_path_version
			ON snapshots (record_path, version DESC);
	`)
	return err
}

// Save stores a new snapshot of the record at path, assigning the next
// version number.
func (s *Store) Save(ctx context.Context, path string, payload *semantic.TaggedValue) (Snapshot, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return Snapshot{}, fmt.Errorf("encoding snapshot payload: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Snapshot{}, err
	}
	defer tx.Rollback()

	var version int64
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) + 1 FROM snapshots WHERE record_path = ?`,
		path,
	).Scan(&version)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		ID:        uuid.NewString(),
		Path:      path,
		Version:   version,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO snapshots (id, record_path, version, payload, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		snap.ID, snap.Path, snap.Version, string(encoded), snap.CreatedAt,
	)
	if err != nil {
		return Snapshot{}, err
	}
	if err := tx.Commit(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Versions lists a record's snapshots newest-first, payloads omitted.
func (s *Store) Versions(ctx context.Context, path string, limit, offset int) ([]Snapshot, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, record_path, version, created_at
		 FROM snapshots WHERE record_path = ?
		 ORDER BY version DESC LIMIT ? OFFSET ?`,
		path, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var snap Snapshot
		if err := rows.Scan(&snap.ID, &snap.Path, &snap.Version, &snap.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

// Get loads one snapshot with its payload.
func (s *Store) Get(ctx context.Context, path string, version int64) (Snapshot, error) {
	var (
		snap    Snapshot
		payload string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, record_path, version, payload, created_at
		 FROM snapshots WHERE record_path = ? AND version = ?`,
		path, version,
	).Scan(&snap.ID, &snap.Path, &snap.Version, &payload, &snap.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, fmt.Errorf("%w: %s@%d", ErrNotFound, path, version)
	}
	if err != nil {
		return Snapshot{}, err
	}
	var value semantic.TaggedValue
	if err := json.Unmarshal([]byte(payload), &value); err != nil {
		return Snapshot{}, fmt.Errorf("decoding snapshot payload: %w", err)
	}
	snap.Payload = &value
	return snap, nil
}

// Diff loads two versions of a record and returns annotated copies of both.
func (s *Store) Diff(ctx context.Context, path string, from, to int64) (*semantic.TaggedValue, *semantic.TaggedValue, error) {
	original, err := s.Get(ctx, path, from)
	if err != nil {
		return nil, nil, err
	}
	updated, err := s.Get(ctx, path, to)
	if err != nil {
		return nil, nil, err
	}
	annotatedOrig, annotatedUpd := semantic.Annotate(original.Payload, updated.Payload)
	return annotatedOrig, annotatedUpd, nil
}
