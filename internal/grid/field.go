package grid

import (
	"fmt"

	"github.com/banshee-data/gridcheck/internal/solver"
)

// Field is the element-type-erased view of a grid used by the reference
// harness and storage layers.
type Field interface {
	Kind() Kind
	Domain() *solver.Domain
	Len() int
	MaxAbsValue() float64

	// Components returns a flattened copy of every cell, Kind().Width()
	// values per cell. Int cells are converted exactly.
	Components() []float64

	// SetComponents overwrites the grid from a flattened component slice
	// produced by Components on a grid of the same shape.
	SetComponents(src []float64) error

	// CopyFromField is CopyFrom for callers that only hold a Field.
	CopyFromField(src Field) error
}

var (
	_ Field = (*Grid[Real])(nil)
	_ Field = (*Grid[Vec3])(nil)
	_ Field = (*Grid[Int])(nil)
)

// Create allocates a grid of the requested kind for the solver's domain.
func Create(s *solver.Solver, kind Kind) (Field, error) {
	switch kind {
	case KindReal:
		return NewReal(s), nil
	case KindVec3:
		return NewVec3(s), nil
	case KindInt:
		return NewInt(s), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
}

// Compatible reports ErrShapeMismatch unless a and b share kind and domain.
func Compatible(a, b Field) error {
	if a == nil || b == nil {
		return fmt.Errorf("%w: nil field", ErrShapeMismatch)
	}
	if a.Kind() != b.Kind() {
		return fmt.Errorf("%w: element kind %s vs %s", ErrShapeMismatch, a.Kind(), b.Kind())
	}
	if !a.Domain().Equal(b.Domain()) {
		return fmt.Errorf("%w: domain %s vs %s", ErrShapeMismatch, a.Domain(), b.Domain())
	}
	return nil
}

func (g *Grid[T]) Components() []float64 {
	out := make([]float64, 0, len(g.cells)*g.Kind().Width())
	for _, c := range g.cells {
		out = c.appendComponents(out)
	}
	return out
}

func (g *Grid[T]) SetComponents(src []float64) error {
	w := g.Kind().Width()
	if len(src) != len(g.cells)*w {
		return fmt.Errorf("%w: %d components for %d %s cells", ErrShapeMismatch, len(src), len(g.cells), g.Kind())
	}
	var zero T
	for i := range g.cells {
		g.cells[i] = zero.fromComponents(src[i*w : (i+1)*w])
	}
	return nil
}

func (g *Grid[T]) CopyFromField(src Field) error {
	o, ok := src.(*Grid[T])
	if !ok {
		if src == nil {
			return fmt.Errorf("%w: nil field", ErrShapeMismatch)
		}
		return fmt.Errorf("%w: element kind %s vs %s", ErrShapeMismatch, g.Kind(), src.Kind())
	}
	return g.CopyFrom(o)
}
