package regress

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Status classifies one grid's outcome.
type Status uint8

const (
	// StatusPass: difference within the strict threshold.
	StatusPass Status = iota + 1
	// StatusWarn: within threshold but beyond the strict threshold.
	StatusWarn
	// StatusFail: beyond threshold, shape mismatch or invalid thresholds.
	StatusFail
	// StatusMissing: no reference entry persisted for the key.
	StatusMissing
	// StatusGenerated: reference written in generation mode.
	StatusGenerated
	// StatusError: reference store failure, or skipped after one.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusPass:
		return "PASS"
	case StatusWarn:
		return "WARN"
	case StatusFail:
		return "FAIL"
	case StatusMissing:
		return "MISSING"
	case StatusGenerated:
		return "GENERATED"
	case StatusError:
		return "ERROR"
	}
	return fmt.Sprintf("Status(%d)", uint8(s))
}

// Outcome is the result of verifying or generating one grid.
type Outcome struct {
	TestID          string
	GridName        string
	Status          Status
	MaxDiff         float64
	Threshold       float64
	ThresholdStrict float64
	// MaxAbsValue of the live grid, for diagnostics only.
	MaxAbsValue float64
	Elapsed     time.Duration
	// Err is nil for PASS and GENERATED, a *StrictWarning for WARN and the
	// failure cause otherwise.
	Err error
}

// Fatal reports whether the outcome fails the run.
func (o Outcome) Fatal() bool {
	switch o.Status {
	case StatusFail, StatusMissing, StatusError:
		return true
	}
	return false
}

func (o Outcome) String() string {
	key := o.TestID + "/" + o.GridName
	switch o.Status {
	case StatusPass, StatusWarn, StatusFail:
		if o.Err != nil && o.Status == StatusFail && !errors.Is(o.Err, ErrToleranceExceeded) {
			return fmt.Sprintf("%-9s %s: %v", o.Status, key, o.Err)
		}
		return fmt.Sprintf("%-9s %s max_diff=%g threshold=%g strict=%g max_abs=%g",
			o.Status, key, o.MaxDiff, o.Threshold, o.ThresholdStrict, o.MaxAbsValue)
	case StatusGenerated:
		return fmt.Sprintf("%-9s %s max_abs=%g", o.Status, key, o.MaxAbsValue)
	}
	return fmt.Sprintf("%-9s %s: %v", o.Status, key, o.Err)
}

// Report aggregates the outcomes of one harness run in submission order.
type Report struct {
	Outcomes []Outcome
}

// ForTest returns the outcomes recorded for testID, in order.
func (r *Report) ForTest(testID string) *Report {
	out := &Report{}
	for _, o := range r.Outcomes {
		if o.TestID == testID {
			out.Outcomes = append(out.Outcomes, o)
		}
	}
	return out
}

// Failed reports whether any outcome is fatal.
func (r *Report) Failed() bool {
	for _, o := range r.Outcomes {
		if o.Fatal() {
			return true
		}
	}
	return false
}

// Err joins the errors of every fatal outcome, or returns nil.
func (r *Report) Err() error {
	var errs []error
	for _, o := range r.Outcomes {
		if o.Fatal() {
			errs = append(errs, o.Err)
		}
	}
	return errors.Join(errs...)
}

// Warnings returns the strict-threshold near misses.
func (r *Report) Warnings() []*StrictWarning {
	var out []*StrictWarning
	for _, o := range r.Outcomes {
		var w *StrictWarning
		if o.Status == StatusWarn && errors.As(o.Err, &w) {
			out = append(out, w)
		}
	}
	return out
}

// Count returns the number of outcomes with status s.
func (r *Report) Count(s Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}

// Summary renders one line per outcome followed by a totals line.
func (r *Report) Summary() string {
	var b strings.Builder
	for _, o := range r.Outcomes {
		b.WriteString(o.String())
		b.WriteByte('\n')
	}
	verdict := "ok"
	if r.Failed() {
		verdict = "FAILED"
	}
	fmt.Fprintf(&b, "%s: %d grids, %d pass, %d warn, %d fail, %d missing, %d generated, %d error\n",
		verdict, len(r.Outcomes), r.Count(StatusPass), r.Count(StatusWarn), r.Count(StatusFail),
		r.Count(StatusMissing), r.Count(StatusGenerated), r.Count(StatusError))
	return b.String()
}
