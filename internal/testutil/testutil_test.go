package testutil

import (
	"errors"
	"testing"

	"github.com/banshee-data/gridcheck/internal/monitoring"
)

func TestNewSolver(t *testing.T) {
	s := NewSolver(t, 4, 3, 1, 2)
	if s.Name != "main" {
		t.Errorf("Name = %q, want main", s.Name)
	}
	if got := s.Domain().CellCount(); got != 12 {
		t.Errorf("CellCount() = %d, want 12", got)
	}
}

// fakeTB records fatal calls without stopping the test.
type fakeTB struct {
	testing.TB
	failed bool
}

func (f *fakeTB) Helper()                       {}
func (f *fakeTB) Fatal(...interface{})          { f.failed = true }
func (f *fakeTB) Fatalf(string, ...interface{}) { f.failed = true }

func TestNewSolver_FailurePath(t *testing.T) {
	ft := &fakeTB{TB: t}
	if s := NewSolver(ft, 4, 3, 2, 2); s != nil || !ft.failed {
		t.Error("expected failure for a 2D domain with depth")
	}
}

func TestAssertNoError(t *testing.T) {
	ft := &fakeTB{TB: t}
	AssertNoError(ft, nil)
	if ft.failed {
		t.Error("expected no failure for nil error")
	}
	AssertNoError(ft, errors.New("boom"))
	if !ft.failed {
		t.Error("expected failure on non-nil error")
	}
}

func TestAssertError(t *testing.T) {
	ft := &fakeTB{TB: t}
	AssertError(ft, errors.New("something wrong"))
	if ft.failed {
		t.Error("expected no failure for non-nil error")
	}
	AssertError(ft, nil)
	if !ft.failed {
		t.Error("expected failure on nil error")
	}
}

func TestCaptureLogs(t *testing.T) {
	t.Run("capture", func(t *testing.T) {
		rec := CaptureLogs(t)
		monitoring.Component("Test")("value=%d", 42)

		if lines := rec.Lines(); len(lines) != 1 || lines[0] != "[Test] value=42" {
			t.Errorf("Lines() = %q", lines)
		}
		if !rec.Contains("value=42") {
			t.Error("Contains(value=42) = false")
		}
		if rec.Contains("missing") {
			t.Error("Contains(missing) = true")
		}
	})

	// The previous logger is restored after the subtest.
	rec := CaptureLogs(t)
	monitoring.Logf("after")
	if !rec.Contains("after") {
		t.Error("logger not restorable after nested capture")
	}
}
