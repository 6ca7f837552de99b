package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/banshee-data/gridcheck/internal/grid"
	"github.com/banshee-data/gridcheck/internal/refstore"
	"github.com/banshee-data/gridcheck/internal/solver"
	"github.com/banshee-data/gridcheck/internal/timeutil"
)

// ReferenceStore persists reference entries in the grid_references table.
// Cell values are kept as a gob+gzip blob; shape metadata is stored in
// columns so it can be queried without decoding.
type ReferenceStore struct {
	db    *sql.DB
	clock timeutil.Clock
}

var _ refstore.Store = (*ReferenceStore)(nil)

// NewReferenceStore creates a store over a migrated database.
func NewReferenceStore(db *DB) *ReferenceStore {
	return &ReferenceStore{db: db.DB, clock: timeutil.RealClock{}}
}

// SetClock replaces the clock used for timestamps and busy backoff.
func (s *ReferenceStore) SetClock(c timeutil.Clock) {
	s.clock = c
}

// Save upserts the entry for e's key.
func (s *ReferenceStore) Save(e *refstore.Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	blob, err := refstore.EncodeValues(e.Values)
	if err != nil {
		return fmt.Errorf("encode values: %w", err)
	}
	createdAt := e.CreatedAt
	if createdAt == 0 {
		createdAt = s.clock.Now().UnixNano()
	}

	return retryOnBusy(s.clock, func() error {
		_, err := s.db.Exec(`
			INSERT INTO grid_references (
				test_id, grid_name, kind, size_x, size_y, size_z, dims,
				values_blob, run_id, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (test_id, grid_name) DO UPDATE SET
				kind = excluded.kind,
				size_x = excluded.size_x,
				size_y = excluded.size_y,
				size_z = excluded.size_z,
				dims = excluded.dims,
				values_blob = excluded.values_blob,
				run_id = excluded.run_id,
				created_at = excluded.created_at`,
			e.TestID, e.GridName, e.Kind.String(), e.Size.X, e.Size.Y, e.Size.Z, e.Dims,
			blob, e.RunID, createdAt,
		)
		if err != nil {
			return fmt.Errorf("upsert reference %s/%s: %w", e.TestID, e.GridName, err)
		}
		return nil
	})
}

// Load returns the entry for the key.
func (s *ReferenceStore) Load(testID, gridName string) (*refstore.Entry, error) {
	row := s.db.QueryRow(`
		SELECT test_id, grid_name, kind, size_x, size_y, size_z, dims,
		       values_blob, run_id, created_at
		FROM grid_references
		WHERE test_id = ? AND grid_name = ?`, testID, gridName)

	var (
		e    refstore.Entry
		kind string
		blob []byte
		size solver.Vec3i
	)
	err := row.Scan(&e.TestID, &e.GridName, &kind, &size.X, &size.Y, &size.Z, &e.Dims,
		&blob, &e.RunID, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s/%s", refstore.ErrNotFound, testID, gridName)
		}
		return nil, fmt.Errorf("scan reference: %w", err)
	}
	e.Size = size
	if e.Kind, err = grid.ParseKind(kind); err != nil {
		return nil, fmt.Errorf("reference %s/%s: %w", testID, gridName, err)
	}
	if e.Values, err = refstore.DecodeValues(blob); err != nil {
		return nil, fmt.Errorf("reference %s/%s: %w", testID, gridName, err)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}

// List returns grid names stored for testID, ordered by name.
func (s *ReferenceStore) List(testID string) ([]string, error) {
	rows, err := s.db.Query(`
		SELECT grid_name FROM grid_references
		WHERE test_id = ?
		ORDER BY grid_name`, testID)
	if err != nil {
		return nil, fmt.Errorf("query references: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan reference name: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// Delete removes one entry.
func (s *ReferenceStore) Delete(testID, gridName string) error {
	return retryOnBusy(s.clock, func() error {
		result, err := s.db.Exec(`DELETE FROM grid_references WHERE test_id = ? AND grid_name = ?`, testID, gridName)
		if err != nil {
			return fmt.Errorf("delete reference: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("%w: %s/%s", refstore.ErrNotFound, testID, gridName)
		}
		return nil
	})
}

// RunSummary counts the entries written by one generation run.
type RunSummary struct {
	RunID     string
	Entries   int
	CreatedAt int64
}

// Runs lists generation runs recorded in the store, newest first.
func (s *ReferenceStore) Runs() ([]RunSummary, error) {
	rows, err := s.db.Query(`
		SELECT run_id, COUNT(*), MAX(created_at)
		FROM grid_references
		GROUP BY run_id
		ORDER BY MAX(created_at) DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.RunID, &r.Entries, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
