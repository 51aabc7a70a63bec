// Package store keeps built instrument tables as snapshots in PostgreSQL.
//
// A snapshot is one row in instrument_snapshot plus one row per instrument
// in instrument_snapshot_row. Row fields are stored as an ordered JSONB
// array of {"k": path, "v": value} pairs so that field order and number
// literals survive a round trip, which a JSONB object would not guarantee.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JonMunkholm/instrumentdiff/internal/core"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrSnapshotNotFound is returned when no snapshot has the requested id.
var ErrSnapshotNotFound = errors.New("snapshot not found")

const schema = `
CREATE TABLE IF NOT EXISTS instrument_snapshot (
	id         uuid PRIMARY KEY,
	label      text NOT NULL,
	data_root  text NOT NULL,
	columns    text[] NOT NULL,
	row_count  integer NOT NULL,
	created_at timestamptz NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS instrument_snapshot_row (
	snapshot_id uuid NOT NULL REFERENCES instrument_snapshot(id) ON DELETE CASCADE,
	position    integer NOT NULL,
	instrument  text NOT NULL,
	fields      jsonb NOT NULL,
	PRIMARY KEY (snapshot_id, position)
);`

var rowColumns = []string{"snapshot_id", "position", "instrument", "fields"}

// DB is the subset of *pgxpool.Pool the store uses.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Meta describes a snapshot being saved.
type Meta struct {
	Label    string
	DataRoot string
}

// Snapshot is the stored header of a saved table.
type Snapshot struct {
	ID        uuid.UUID `json:"id"`
	Label     string    `json:"label"`
	DataRoot  string    `json:"data_root"`
	Columns   int       `json:"columns"`
	Rows      int       `json:"rows"`
	CreatedAt time.Time `json:"created_at"`
}

// Store saves and loads table snapshots.
type Store struct {
	db  DB
	now func() time.Time
}

// New returns a store backed by db.
func New(db DB) *Store {
	return &Store{db: db, now: time.Now}
}

// EnsureSchema creates the snapshot tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure snapshot schema: %w", err)
	}
	return nil
}

// Save writes t as a new snapshot in a single transaction and returns its id.
func (s *Store) Save(ctx context.Context, t *core.Table, meta Meta) (uuid.UUID, error) {
	id := uuid.New()
	columns := t.FieldColumns()

	copyRows := make([][]any, 0, t.Len())
	for i, row := range t.Rows() {
		fields, err := EncodeFields(row.Fields)
		if err != nil {
			return uuid.Nil, fmt.Errorf("encode fields for %q: %w", row.Instrument, err)
		}
		copyRows = append(copyRows, []any{id, i, row.Instrument, fields})
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // No-op if already committed

	_, err = tx.Exec(ctx,
		`INSERT INTO instrument_snapshot (id, label, data_root, columns, row_count, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		id, meta.Label, meta.DataRoot, columns, t.Len(), s.now().UTC(),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert snapshot: %w", err)
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{"instrument_snapshot_row"}, rowColumns, pgx.CopyFromRows(copyRows))
	if err != nil {
		return uuid.Nil, fmt.Errorf("copy snapshot rows: %w", err)
	}
	if int(n) != len(copyRows) {
		return uuid.Nil, fmt.Errorf("copy snapshot rows: wrote %d of %d", n, len(copyRows))
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	slog.Info("snapshot saved", "id", id, "label", meta.Label, "rows", len(copyRows), "columns", len(columns))
	return id, nil
}

// Load reads the snapshot id back into a table.
// The error wraps ErrSnapshotNotFound for an unknown id.
func (s *Store) Load(ctx context.Context, id uuid.UUID) (*core.Table, error) {
	var columns []string
	err := s.db.QueryRow(ctx, `SELECT columns FROM instrument_snapshot WHERE id = $1`, id).Scan(&columns)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", id, err)
	}

	rows, err := s.db.Query(ctx,
		`SELECT instrument, fields FROM instrument_snapshot_row
		 WHERE snapshot_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("load snapshot rows %s: %w", id, err)
	}
	defer rows.Close()

	var out []core.Row
	for rows.Next() {
		var (
			instrument string
			raw        []byte
		)
		if err := rows.Scan(&instrument, &raw); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		fields, err := DecodeFields(raw)
		if err != nil {
			return nil, fmt.Errorf("decode fields for %q: %w", instrument, err)
		}
		out = append(out, core.Row{Instrument: instrument, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load snapshot rows %s: %w", id, err)
	}

	return core.NewTableWithColumns(out, columns), nil
}

// List returns all snapshots, newest first.
func (s *Store) List(ctx context.Context) ([]Snapshot, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, label, data_root, cardinality(columns), row_count, created_at
		 FROM instrument_snapshot ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var snap Snapshot
		if err := rows.Scan(&snap.ID, &snap.Label, &snap.DataRoot, &snap.Columns, &snap.Rows, &snap.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return out, nil
}

// Delete removes a snapshot and its rows.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM instrument_snapshot WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete snapshot %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
	}
	return nil
}
