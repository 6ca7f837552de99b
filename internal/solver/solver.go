// Package solver owns the domain descriptor shared by every grid created
// from one solver context.
//
// A Domain is immutable once built. Grids hold a pointer to it but never
// own it; two grids are only combinable when their domains are equal.
package solver

import (
	"errors"
	"fmt"
)

// ErrInvalidDomain is returned when a domain size or dimensionality is rejected.
var ErrInvalidDomain = errors.New("solver: invalid domain")

// Vec3i is an integer 3-axis extent or cell coordinate.
type Vec3i struct {
	X, Y, Z int
}

func (v Vec3i) String() string { return fmt.Sprintf("(%d,%d,%d)", v.X, v.Y, v.Z) }

// Domain is the fixed-size discretization extent of a solver.
type Domain struct {
	size Vec3i
	dims int
}

// NewDomain validates and returns a domain. Every axis must be at least one
// cell, dims must be 2 or 3, and 2D domains must be a single cell deep in Z.
func NewDomain(size Vec3i, dims int) (*Domain, error) {
	if size.X < 1 || size.Y < 1 || size.Z < 1 {
		return nil, fmt.Errorf("%w: size %s must be >= 1 on every axis", ErrInvalidDomain, size)
	}
	if dims != 2 && dims != 3 {
		return nil, fmt.Errorf("%w: dims must be 2 or 3, got %d", ErrInvalidDomain, dims)
	}
	if dims == 2 && size.Z != 1 {
		return nil, fmt.Errorf("%w: 2D domain requires size.z == 1, got %d", ErrInvalidDomain, size.Z)
	}
	return &Domain{size: size, dims: dims}, nil
}

// Size returns the cell extent on each axis.
func (d *Domain) Size() Vec3i { return d.size }

// Dims returns 2 or 3.
func (d *Domain) Dims() int { return d.dims }

// Is2D reports whether the domain is two-dimensional.
func (d *Domain) Is2D() bool { return d.dims == 2 }

// CellCount is size.X*size.Y*size.Z.
func (d *Domain) CellCount() int { return d.size.X * d.size.Y * d.size.Z }

// Idx flattens a cell coordinate: x varies fastest, then y, then z.
func (d *Domain) Idx(x, y, z int) int { return x + d.size.X*(y+d.size.Y*z) }

// InBounds reports whether (x,y,z) addresses a cell of the domain.
func (d *Domain) InBounds(x, y, z int) bool {
	return x >= 0 && y >= 0 && z >= 0 && x < d.size.X && y < d.size.Y && z < d.size.Z
}

// Equal reports whether two domains describe the same extent and dimensionality.
func (d *Domain) Equal(o *Domain) bool {
	if d == o {
		return true
	}
	if d == nil || o == nil {
		return false
	}
	return d.size == o.size && d.dims == o.dims
}

func (d *Domain) String() string {
	return fmt.Sprintf("%dD %s", d.dims, d.size)
}

// Solver is a named context that owns one domain. All grids created for a
// solver share its domain.
type Solver struct {
	Name   string
	domain *Domain
}

// NewSolver builds a solver with a freshly validated domain.
func NewSolver(name string, size Vec3i, dims int) (*Solver, error) {
	d, err := NewDomain(size, dims)
	if err != nil {
		return nil, fmt.Errorf("solver %q: %w", name, err)
	}
	return &Solver{Name: name, domain: d}, nil
}

// Domain returns the solver's domain descriptor.
func (s *Solver) Domain() *Domain { return s.domain }
