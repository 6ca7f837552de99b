// Package scenario holds the regression cases that gridcheck runs.
//
// A case owns its solver setup and grid computation. In generation mode it
// assigns the expected values directly; otherwise it derives them through the
// grid operators under test. Either way it hands the named grids to a
// regress.Harness.
package scenario

import (
	"fmt"
	"sort"
	"sync"

	"github.com/banshee-data/gridcheck/internal/regress"
	"github.com/banshee-data/gridcheck/internal/solver"
)

// Case is one registered regression case.
type Case struct {
	ID          string
	Description string
	Size        solver.Vec3i
	Dims        int

	// Build fills the case's grids on s and returns them with their
	// tolerances. A non-nil error aborts the case.
	Build func(s *solver.Solver, generate bool) ([]regress.Check, error)
}

// ThresholdFunc maps a case's tolerances to the ones actually applied.
type ThresholdFunc func(threshold, strict float64) (float64, float64)

// Execute creates the case's solver, builds its grids and submits them to h.
func (c Case) Execute(h *regress.Harness, adjust ThresholdFunc) ([]regress.Outcome, error) {
	s, err := solver.NewSolver("main", c.Size, c.Dims)
	if err != nil {
		return nil, fmt.Errorf("case %s: %w", c.ID, err)
	}
	checks, err := c.Build(s, h.Generating())
	if err != nil {
		return nil, fmt.Errorf("case %s: %w", c.ID, err)
	}
	if adjust != nil {
		for i := range checks {
			checks[i].Threshold, checks[i].ThresholdStrict = adjust(checks[i].Threshold, checks[i].ThresholdStrict)
		}
	}
	return h.VerifyAll(c.ID, s, checks), nil
}

var (
	registry   = map[string]Case{}
	registryMu = &sync.RWMutex{}
)

// Register adds c to the registry, replacing any case with the same ID.
func Register(c Case) {
	if c.ID == "" || c.Build == nil {
		return
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[c.ID] = c
}

// Lookup returns the registered case with the given ID.
func Lookup(id string) (Case, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	c, ok := registry[id]
	return c, ok
}

// All returns every registered case ordered by ID.
func All() []Case {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]Case, 0, len(registry))
	for _, c := range registry {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
