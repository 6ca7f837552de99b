// Package grid provides dense, typed cell containers over a solver domain
// and the elementwise arithmetic applied to them.
//
// Storage is one contiguous slice per grid, sized once at creation and
// indexed by the domain's flattened (x,y,z) coordinate. Operations mutate
// the receiver in place; operands are only read. No operation depends on
// neighbouring cells, so every loop is safe to split across workers.
package grid

import (
	"fmt"

	"github.com/banshee-data/gridcheck/internal/solver"
)

// Grid is a dense container of T over a domain.
type Grid[T Cell[T]] struct {
	domain *solver.Domain
	cells  []T
}

// New allocates a zero-valued grid bound to d.
func New[T Cell[T]](d *solver.Domain) *Grid[T] {
	return &Grid[T]{
		domain: d,
		cells:  make([]T, d.CellCount()),
	}
}

// NewReal creates a scalar grid for the solver's domain.
func NewReal(s *solver.Solver) *Grid[Real] { return New[Real](s.Domain()) }

// NewVec3 creates a staggered vector grid for the solver's domain.
func NewVec3(s *solver.Solver) *Grid[Vec3] { return New[Vec3](s.Domain()) }

// NewInt creates an integer grid for the solver's domain.
func NewInt(s *solver.Solver) *Grid[Int] { return New[Int](s.Domain()) }

// Kind returns the element type tag.
func (g *Grid[T]) Kind() Kind {
	var zero T
	return zero.kind()
}

// Domain returns the domain the grid was created for.
func (g *Grid[T]) Domain() *solver.Domain { return g.domain }

// Len is the number of cells.
func (g *Grid[T]) Len() int { return len(g.cells) }

// Get returns the cell at (x,y,z).
func (g *Grid[T]) Get(x, y, z int) (T, error) {
	if !g.domain.InBounds(x, y, z) {
		var zero T
		return zero, fmt.Errorf("%w: (%d,%d,%d) in %s", ErrOutOfBounds, x, y, z, g.domain)
	}
	return g.cells[g.domain.Idx(x, y, z)], nil
}

// Set writes the cell at (x,y,z).
func (g *Grid[T]) Set(x, y, z int, v T) error {
	if !g.domain.InBounds(x, y, z) {
		return fmt.Errorf("%w: (%d,%d,%d) in %s", ErrOutOfBounds, x, y, z, g.domain)
	}
	g.cells[g.domain.Idx(x, y, z)] = v
	return nil
}

// At returns the cell at flat index i. It panics if i is out of range.
func (g *Grid[T]) At(i int) T { return g.cells[i] }

// compatible checks domain equality. Element type equality is guaranteed
// by the type parameter.
func (g *Grid[T]) compatible(o *Grid[T]) error {
	if o == nil {
		return fmt.Errorf("%w: nil %s operand", ErrShapeMismatch, g.Kind())
	}
	if !g.domain.Equal(o.domain) || len(g.cells) != len(o.cells) {
		return fmt.Errorf("%w: %s grid %s vs %s", ErrShapeMismatch, g.Kind(), g.domain, o.domain)
	}
	return nil
}

func (g *Grid[T]) String() string {
	return fmt.Sprintf("Grid[%s] %s", g.Kind(), g.domain)
}
