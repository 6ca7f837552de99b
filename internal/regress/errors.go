package regress

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingReference marks a verification with no persisted entry.
	ErrMissingReference = errors.New("regress: missing reference")

	// ErrToleranceExceeded is the sentinel behind ToleranceError.
	ErrToleranceExceeded = errors.New("regress: tolerance exceeded")

	// ErrAborted is reported for grids submitted after a persistence failure.
	ErrAborted = errors.New("regress: run aborted after persistence failure")

	// ErrInvalidThreshold is returned for negative or NaN thresholds.
	ErrInvalidThreshold = errors.New("regress: invalid threshold")
)

// ToleranceError reports a grid whose maximum difference from its reference
// exceeds the loose threshold.
type ToleranceError struct {
	TestID    string
	GridName  string
	Diff      float64
	Threshold float64
}

func (e *ToleranceError) Error() string {
	return fmt.Sprintf("regress: %s/%s max difference %g exceeds threshold %g", e.TestID, e.GridName, e.Diff, e.Threshold)
}

func (e *ToleranceError) Unwrap() error { return ErrToleranceExceeded }

// StrictWarning records a grid that passed the loose threshold but not the
// strict one. It is diagnostic and never fails a run.
type StrictWarning struct {
	TestID          string
	GridName        string
	Diff            float64
	ThresholdStrict float64
}

func (w *StrictWarning) Error() string {
	return fmt.Sprintf("regress: %s/%s max difference %g exceeds strict threshold %g", w.TestID, w.GridName, w.Diff, w.ThresholdStrict)
}

// PersistenceError wraps a reference store read or write failure. It is
// fatal to the whole run.
type PersistenceError struct {
	Op       string // "load" or "save"
	TestID   string
	GridName string
	Err      error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("regress: %s reference %s/%s: %v", e.Op, e.TestID, e.GridName, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
