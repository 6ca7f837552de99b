package sqlite

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/gridcheck/internal/grid"
	"github.com/banshee-data/gridcheck/internal/monitoring"
	"github.com/banshee-data/gridcheck/internal/refstore"
	"github.com/banshee-data/gridcheck/internal/testutil"
	"github.com/banshee-data/gridcheck/internal/timeutil"
)

func init() {
	monitoring.SetLogger(nil)
}

func setupTestStore(t *testing.T) (*ReferenceStore, *DB) {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "refs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewReferenceStore(db), db
}

func intEntry(t *testing.T, testID, name string, v int32) *refstore.Entry {
	t.Helper()
	g := grid.NewInt(testutil.NewSolver(t, 10, 20, 30, 3))
	g.SetConstant(grid.Int(v))
	e := refstore.Snapshot(testID, name, g)
	e.RunID = "run-a"
	return e
}

func TestOpen_MigratesToLatest(t *testing.T) {
	_, db := setupTestStore(t)

	version, dirty, err := db.MigrateVersion(MigrationsFS())
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)

	// Re-running is a no-op.
	require.NoError(t, db.MigrateUp(MigrationsFS()))
}

func TestMigrateDown(t *testing.T) {
	_, db := setupTestStore(t)

	require.NoError(t, db.MigrateDown(MigrationsFS()))
	version, _, err := db.MigrateVersion(MigrationsFS())
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	var n int
	err = db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info('grid_references') WHERE name = 'run_id'`).Scan(&n)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestMigrateVersion_Fresh(t *testing.T) {
	db, err := OpenDB(filepath.Join(t.TempDir(), "fresh.db"))
	require.NoError(t, err)
	defer db.Close()

	migrationsFS := fstest.MapFS{
		"000001_init.up.sql":   &fstest.MapFile{Data: []byte("CREATE TABLE IF NOT EXISTS t1 (id INTEGER PRIMARY KEY);")},
		"000001_init.down.sql": &fstest.MapFile{Data: []byte("DROP TABLE IF EXISTS t1;")},
	}
	version, dirty, err := db.MigrateVersion(migrationsFS)
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)
	assert.False(t, dirty)
}

func TestMigrateUp_ClosedDB(t *testing.T) {
	db, err := OpenDB(filepath.Join(t.TempDir(), "closed.db"))
	require.NoError(t, err)
	db.Close()

	err = db.MigrateUp(MigrationsFS())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "failed to create sqlite driver"))
}

func TestReferenceStore_SaveLoad(t *testing.T) {
	store, _ := setupTestStore(t)

	want := intEntry(t, "gridop", "int3", 143)
	require.NoError(t, store.Save(want))

	got, err := store.Load("gridop", "int3")
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("entry mismatch (-want +got):\n%s", diff)
	}
}

func TestReferenceStore_FullPrecision(t *testing.T) {
	store, _ := setupTestStore(t)

	g := grid.NewVec3(testutil.NewSolver(t, 3, 3, 1, 2))
	g.SetConstant(grid.Vec3{X: 0.1 + 0.2, Y: 1.95, Z: 1e-300})

	require.NoError(t, store.Save(refstore.Snapshot("gridop", "vcg3", g)))
	got, err := store.Load("gridop", "vcg3")
	require.NoError(t, err)
	assert.Equal(t, g.Components(), got.Values)
	assert.Equal(t, 2, got.Dims)
}

func TestReferenceStore_Overwrite(t *testing.T) {
	store, _ := setupTestStore(t)

	require.NoError(t, store.Save(intEntry(t, "gridop", "int1", 1)))
	second := intEntry(t, "gridop", "int1", 125)
	second.RunID = "run-b"
	require.NoError(t, store.Save(second))

	got, err := store.Load("gridop", "int1")
	require.NoError(t, err)
	assert.Equal(t, 125.0, got.Values[0])
	assert.Equal(t, "run-b", got.RunID)
}

func TestReferenceStore_NotFound(t *testing.T) {
	store, _ := setupTestStore(t)

	_, err := store.Load("gridop", "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, refstore.ErrNotFound))

	assert.True(t, errors.Is(store.Delete("gridop", "missing"), refstore.ErrNotFound))
}

func TestReferenceStore_ListDeleteRuns(t *testing.T) {
	store, _ := setupTestStore(t)

	for _, name := range []string{"int3", "int1", "int2"} {
		require.NoError(t, store.Save(intEntry(t, "gridop", name, 1)))
	}
	other := intEntry(t, "other", "x", 1)
	other.RunID = "run-b"
	require.NoError(t, store.Save(other))

	names, err := store.List("gridop")
	require.NoError(t, err)
	assert.Equal(t, []string{"int1", "int2", "int3"}, names)

	require.NoError(t, store.Delete("gridop", "int2"))
	names, err = store.List("gridop")
	require.NoError(t, err)
	assert.Equal(t, []string{"int1", "int3"}, names)

	runs, err := store.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	counts := map[string]int{}
	for _, r := range runs {
		counts[r.RunID] = r.Entries
	}
	assert.Equal(t, map[string]int{"run-a": 2, "run-b": 1}, counts)
}

func TestReferenceStore_DistinctKeys(t *testing.T) {
	store, _ := setupTestStore(t)

	require.NoError(t, store.Save(intEntry(t, "a/b", "c", 1)))
	require.NoError(t, store.Save(intEntry(t, "gridop", "int 1", 2)))
	require.NoError(t, store.Save(intEntry(t, "gridop", "int_1", 3)))

	_, err := store.Load("a", "b/c")
	assert.True(t, errors.Is(err, refstore.ErrNotFound))

	got, err := store.Load("gridop", "int 1")
	require.NoError(t, err)
	assert.Equal(t, 2.0, got.Values[0])

	names, err := store.List("gridop")
	require.NoError(t, err)
	assert.Equal(t, []string{"int 1", "int_1"}, names)
}

func TestReferenceStore_RejectsInvalid(t *testing.T) {
	store, _ := setupTestStore(t)
	err := store.Save(&refstore.Entry{TestID: "gridop"})
	assert.True(t, errors.Is(err, refstore.ErrInvalidEntry))
}

func TestReferenceStore_InMemory(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	store := NewReferenceStore(db)
	require.NoError(t, store.Save(intEntry(t, "gridop", "int1", 125)))
	_, err = store.Load("gridop", "int1")
	require.NoError(t, err)
}

func TestIsBusy(t *testing.T) {
	assert.True(t, isBusy(errors.New("database is locked (5) (SQLITE_BUSY)")))
	assert.False(t, isBusy(errors.New("no such table")))

	clock := timeutil.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	calls := 0
	err := retryOnBusy(clock, func() error {
		calls++
		if calls < 3 {
			return errors.New("database is locked")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}, clock.Sleeps())

	// Gives up after five attempts with four backoff sleeps.
	clock = timeutil.NewMockClock(time.Time{})
	calls = 0
	err = retryOnBusy(clock, func() error {
		calls++
		return errors.New("SQLITE_BUSY")
	})
	require.Error(t, err)
	assert.Equal(t, 5, calls)
	assert.Len(t, clock.Sleeps(), 4)

	// Other errors are not retried.
	calls = 0
	err = retryOnBusy(clock, func() error {
		calls++
		return errors.New("constraint failed")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestReferenceStore_ClockStampsUnsetCreatedAt(t *testing.T) {
	store, _ := setupTestStore(t)
	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	store.SetClock(timeutil.NewMockClock(at))

	e := intEntry(t, "gridop", "int1", 125)
	e.CreatedAt = 0
	require.NoError(t, store.Save(e))
	assert.Zero(t, e.CreatedAt, "caller's entry is not modified")

	got, err := store.Load("gridop", "int1")
	require.NoError(t, err)
	assert.Equal(t, at.UnixNano(), got.CreatedAt)
}
