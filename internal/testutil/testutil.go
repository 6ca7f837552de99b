// Package testutil provides shared test utilities and fixtures.
package testutil

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/banshee-data/gridcheck/internal/monitoring"
	"github.com/banshee-data/gridcheck/internal/solver"
)

// NewSolver builds a solver named "main" or fails the test.
func NewSolver(t testing.TB, x, y, z, dims int) *solver.Solver {
	t.Helper()
	s, err := solver.NewSolver("main", solver.Vec3i{X: x, Y: y, Z: z}, dims)
	if err != nil {
		t.Fatalf("NewSolver(%d,%d,%d, dims=%d): %v", x, y, z, dims, err)
	}
	return s
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// LogRecorder collects lines written through monitoring.Logf.
type LogRecorder struct {
	mu    sync.Mutex
	lines []string
}

// CaptureLogs routes monitoring output into a recorder until the test ends.
// Tests using it must not run in parallel.
func CaptureLogs(t testing.TB) *LogRecorder {
	t.Helper()
	rec := &LogRecorder{}
	prev := monitoring.Logf
	monitoring.SetLogger(func(format string, v ...interface{}) {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		rec.lines = append(rec.lines, fmt.Sprintf(format, v...))
	})
	t.Cleanup(func() { monitoring.SetLogger(prev) })
	return rec
}

// Lines returns a copy of the recorded lines.
func (r *LogRecorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

// Contains reports whether any recorded line contains substr.
func (r *LogRecorder) Contains(substr string) bool {
	for _, l := range r.Lines() {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}
