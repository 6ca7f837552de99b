// Package refstore persists reference grid snapshots keyed by
// (test id, grid name) and loads them back for regression comparison.
//
// Values are stored as flattened float64 components, which holds Real and
// Vec3 cells at full precision and Int cells exactly. The element kind is
// kept alongside so an entry can only be compared with a grid of the same
// shape.
package refstore

import (
	"errors"
	"fmt"

	"github.com/banshee-data/gridcheck/internal/grid"
	"github.com/banshee-data/gridcheck/internal/solver"
)

var (
	// ErrNotFound is returned by Load and Delete when no entry exists for the key.
	ErrNotFound = errors.New("refstore: reference not found")

	// ErrInvalidEntry is returned when an entry is malformed or its key is empty.
	ErrInvalidEntry = errors.New("refstore: invalid entry")

	// ErrKeyCollision is returned by Save when the storage slot for a key
	// already holds an entry for a different key.
	ErrKeyCollision = errors.New("refstore: key collision")
)

// Store is the persisted-reference collaborator of the harness.
type Store interface {
	// Load returns the entry for the key or an error wrapping ErrNotFound.
	Load(testID, gridName string) (*Entry, error)
	// Save writes or overwrites the entry for e's key.
	Save(e *Entry) error
	// List returns the grid names stored for testID, sorted.
	List(testID string) ([]string, error)
	// Delete removes one entry.
	Delete(testID, gridName string) error
}

// Entry is a persisted snapshot of one grid.
type Entry struct {
	TestID    string
	GridName  string
	Kind      grid.Kind
	Size      solver.Vec3i
	Dims      int
	Values    []float64
	RunID     string
	CreatedAt int64 // unix nanos
}

// Snapshot captures the current cell values of f. RunID and CreatedAt are
// left for the caller or the store to fill in.
func Snapshot(testID, gridName string, f grid.Field) *Entry {
	d := f.Domain()
	return &Entry{
		TestID:   testID,
		GridName: gridName,
		Kind:     f.Kind(),
		Size:     d.Size(),
		Dims:     d.Dims(),
		Values:   f.Components(),
	}
}

// Validate checks the key and that Values matches the declared shape.
func (e *Entry) Validate() error {
	if e == nil {
		return fmt.Errorf("%w: nil entry", ErrInvalidEntry)
	}
	if e.TestID == "" || e.GridName == "" {
		return fmt.Errorf("%w: empty key (%q, %q)", ErrInvalidEntry, e.TestID, e.GridName)
	}
	if !e.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidEntry, uint8(e.Kind))
	}
	want := e.Size.X * e.Size.Y * e.Size.Z * e.Kind.Width()
	if len(e.Values) != want {
		return fmt.Errorf("%w: %d values for %s %s", ErrInvalidEntry, len(e.Values), e.Kind, e.Size)
	}
	return nil
}

// Matches reports grid.ErrShapeMismatch unless f has the entry's kind,
// size and dimensionality.
func (e *Entry) Matches(f grid.Field) error {
	d := f.Domain()
	if f.Kind() != e.Kind {
		return fmt.Errorf("%w: reference %s/%s is %s, grid is %s", grid.ErrShapeMismatch, e.TestID, e.GridName, e.Kind, f.Kind())
	}
	if d.Size() != e.Size || d.Dims() != e.Dims {
		return fmt.Errorf("%w: reference %s/%s is %dD %s, grid is %s", grid.ErrShapeMismatch, e.TestID, e.GridName, e.Dims, e.Size, d)
	}
	return nil
}

// Restore writes the entry's values into f.
func (e *Entry) Restore(f grid.Field) error {
	if err := e.Matches(f); err != nil {
		return err
	}
	return f.SetComponents(e.Values)
}

func keyString(testID, gridName string) string {
	return testID + "/" + gridName
}
