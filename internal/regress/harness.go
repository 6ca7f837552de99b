// Package regress generates and verifies reference snapshots of solver grids.
//
// A Harness runs in exactly one mode for its lifetime. In generation mode
// every submitted grid is persisted as the reference for its
// (test id, grid name) key. In verification mode the grid is compared with
// the persisted reference: the maximum absolute difference over all cell
// components is checked against a loose threshold (failure) and a strict
// threshold (warning only).
package regress

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"

	"github.com/banshee-data/gridcheck/internal/grid"
	"github.com/banshee-data/gridcheck/internal/monitoring"
	"github.com/banshee-data/gridcheck/internal/refstore"
	"github.com/banshee-data/gridcheck/internal/solver"
	"github.com/banshee-data/gridcheck/internal/timeutil"
)

var logf = monitoring.Component("Harness")

// Config holds the harness start-up settings.
type Config struct {
	// GenerateReference selects generation mode. It is fixed for the
	// lifetime of the harness.
	GenerateReference bool

	// RunID is stamped on entries written in generation mode. A random id
	// is assigned when empty.
	RunID string

	// LogPasses logs clean passes as well as warnings and failures.
	LogPasses bool

	// Clock stamps generated entries and times each grid. Defaults to the
	// real clock.
	Clock timeutil.Clock
}

// Harness verifies or generates reference grids and aggregates the outcomes.
// It is safe for concurrent use.
type Harness struct {
	config Config
	store  refstore.Store

	mu       sync.Mutex
	outcomes []Outcome
	// aborted holds the first persistence failure; once set every later
	// grid is reported as ErrAborted.
	aborted error
}

// New creates a harness over store.
func New(store refstore.Store, config Config) *Harness {
	if config.RunID == "" {
		config.RunID = uuid.NewString()
	}
	if config.Clock == nil {
		config.Clock = timeutil.RealClock{}
	}
	return &Harness{config: config, store: store}
}

// Generating reports whether the harness persists references.
func (h *Harness) Generating() bool { return h.config.GenerateReference }

// RunID returns the id stamped on generated entries.
func (h *Harness) RunID() string { return h.config.RunID }

// Verify generates or checks the reference for one grid, records the
// outcome and returns it.
func (h *Harness) Verify(testID, gridName string, s *solver.Solver, f grid.Field, threshold, thresholdStrict float64) Outcome {
	start := h.config.Clock.Now()
	out := Outcome{
		TestID:          testID,
		GridName:        gridName,
		Threshold:       threshold,
		ThresholdStrict: thresholdStrict,
	}

	h.mu.Lock()
	aborted := h.aborted
	h.mu.Unlock()

	switch {
	case aborted != nil:
		out.Status = StatusError
		out.Err = fmt.Errorf("%w: %s/%s", ErrAborted, testID, gridName)
	case f == nil:
		out.Status = StatusFail
		out.Err = fmt.Errorf("%w: %s/%s has no grid", grid.ErrShapeMismatch, testID, gridName)
	default:
		out.MaxAbsValue = f.MaxAbsValue()
		if err := checkSolver(s, f); err != nil {
			out.Status = StatusFail
			out.Err = fmt.Errorf("%s/%s: %w", testID, gridName, err)
		} else if h.config.GenerateReference {
			h.generate(&out, f)
		} else {
			h.compare(&out, f)
		}
	}

	out.Elapsed = h.config.Clock.Since(start)
	h.record(out)
	return out
}

// Check names one grid and its tolerances for VerifyAll.
type Check struct {
	Name            string
	Field           grid.Field
	Threshold       float64
	ThresholdStrict float64
}

// VerifyAll runs Verify for each check in order. A failing grid does not
// stop the remaining checks.
func (h *Harness) VerifyAll(testID string, s *solver.Solver, checks []Check) []Outcome {
	out := make([]Outcome, 0, len(checks))
	for _, c := range checks {
		out = append(out, h.Verify(testID, c.Name, s, c.Field, c.Threshold, c.ThresholdStrict))
	}
	return out
}

// Report returns a snapshot of the outcomes recorded so far.
func (h *Harness) Report() *Report {
	h.mu.Lock()
	defer h.mu.Unlock()
	return &Report{Outcomes: append([]Outcome(nil), h.outcomes...)}
}

// Err returns the persistence failure that aborted the run, if any.
func (h *Harness) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.aborted
}

func (h *Harness) generate(out *Outcome, f grid.Field) {
	e := refstore.Snapshot(out.TestID, out.GridName, f)
	e.RunID = h.config.RunID
	e.CreatedAt = h.config.Clock.Now().UnixNano()
	if err := h.store.Save(e); err != nil {
		h.abort(out, "save", err)
		return
	}
	out.Status = StatusGenerated
	logf("generated %s/%s (%s %s, run %s)", out.TestID, out.GridName, e.Kind, e.Size, e.RunID)
}

func (h *Harness) compare(out *Outcome, f grid.Field) {
	if err := validThresholds(out.Threshold, out.ThresholdStrict); err != nil {
		out.Status = StatusFail
		out.Err = fmt.Errorf("%s/%s: %w", out.TestID, out.GridName, err)
		return
	}

	ref, err := h.store.Load(out.TestID, out.GridName)
	if err != nil {
		if errors.Is(err, refstore.ErrNotFound) {
			out.Status = StatusMissing
			out.Err = fmt.Errorf("%w: %s/%s: %w", ErrMissingReference, out.TestID, out.GridName, err)
			logf("missing reference %s/%s", out.TestID, out.GridName)
			return
		}
		h.abort(out, "load", err)
		return
	}
	if err := ref.Matches(f); err != nil {
		out.Status = StatusFail
		out.Err = err
		logf("FAIL %s/%s: %v", out.TestID, out.GridName, err)
		return
	}

	d := MaxAbsDiff(f.Components(), ref.Values)
	out.MaxDiff = d
	switch {
	case math.IsNaN(d) || d > out.Threshold:
		out.Status = StatusFail
		out.Err = &ToleranceError{TestID: out.TestID, GridName: out.GridName, Diff: d, Threshold: out.Threshold}
		logf("FAIL %s/%s: max diff %g > threshold %g", out.TestID, out.GridName, d, out.Threshold)
	case d > out.ThresholdStrict:
		out.Status = StatusWarn
		out.Err = &StrictWarning{TestID: out.TestID, GridName: out.GridName, Diff: d, ThresholdStrict: out.ThresholdStrict}
		logf("WARN %s/%s: max diff %g > strict threshold %g", out.TestID, out.GridName, d, out.ThresholdStrict)
	default:
		out.Status = StatusPass
		if h.config.LogPasses {
			logf("PASS %s/%s: max diff %g", out.TestID, out.GridName, d)
		}
	}
}

func (h *Harness) abort(out *Outcome, op string, err error) {
	perr := &PersistenceError{Op: op, TestID: out.TestID, GridName: out.GridName, Err: err}
	out.Status = StatusError
	out.Err = perr

	h.mu.Lock()
	if h.aborted == nil {
		h.aborted = perr
	}
	h.mu.Unlock()
	logf("ERROR %v; aborting run", perr)
}

func (h *Harness) record(o Outcome) {
	h.mu.Lock()
	h.outcomes = append(h.outcomes, o)
	h.mu.Unlock()
}

// MaxAbsDiff returns the largest absolute elementwise difference between a
// and b, or NaN if any pair involves NaN. Slices of different length are
// infinitely far apart.
func MaxAbsDiff(a, b []float64) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}
	if len(a) == 0 {
		return 0
	}
	for i := range a {
		if math.IsNaN(a[i]) || math.IsNaN(b[i]) {
			return math.NaN()
		}
	}
	return floats.Distance(a, b, math.Inf(1))
}

func checkSolver(s *solver.Solver, f grid.Field) error {
	if s == nil {
		return nil
	}
	if !s.Domain().Equal(f.Domain()) {
		return fmt.Errorf("%w: grid domain %s, solver %q domain %s", grid.ErrShapeMismatch, f.Domain(), s.Name, s.Domain())
	}
	return nil
}

func validThresholds(threshold, strict float64) error {
	if math.IsNaN(threshold) || threshold < 0 {
		return fmt.Errorf("%w: threshold %g", ErrInvalidThreshold, threshold)
	}
	if math.IsNaN(strict) || strict < 0 {
		return fmt.Errorf("%w: strict threshold %g", ErrInvalidThreshold, strict)
	}
	return nil
}
