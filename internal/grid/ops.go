package grid

import "math"

// SetConstant overwrites every cell with v.
func (g *Grid[T]) SetConstant(v T) {
	for i := range g.cells {
		g.cells[i] = v
	}
}

// AddConst adds v to every cell.
func (g *Grid[T]) AddConst(v T) {
	for i := range g.cells {
		g.cells[i] = g.cells[i].Add(v)
	}
}

// MultConst multiplies every cell by v (componentwise for Vec3).
func (g *Grid[T]) MultConst(v T) {
	for i := range g.cells {
		g.cells[i] = g.cells[i].Mul(v)
	}
}

// CopyFrom overwrites every cell with the value of o at the same index.
// Values are copied; the grids never share storage.
func (g *Grid[T]) CopyFrom(o *Grid[T]) error {
	if err := g.compatible(o); err != nil {
		return err
	}
	copy(g.cells, o.cells)
	return nil
}

// Add adds o elementwise.
func (g *Grid[T]) Add(o *Grid[T]) error {
	if err := g.compatible(o); err != nil {
		return err
	}
	for i := range g.cells {
		g.cells[i] = g.cells[i].Add(o.cells[i])
	}
	return nil
}

// Sub subtracts o elementwise.
func (g *Grid[T]) Sub(o *Grid[T]) error {
	if err := g.compatible(o); err != nil {
		return err
	}
	for i := range g.cells {
		g.cells[i] = g.cells[i].Sub(o.cells[i])
	}
	return nil
}

// Mult multiplies by o elementwise.
func (g *Grid[T]) Mult(o *Grid[T]) error {
	if err := g.compatible(o); err != nil {
		return err
	}
	for i := range g.cells {
		g.cells[i] = g.cells[i].Mul(o.cells[i])
	}
	return nil
}

// AddScaled computes cell[i] += o.cell[i] * factor. For Vec3 grids the
// factor is applied per component; use Splat for a uniform scalar.
func (g *Grid[T]) AddScaled(o *Grid[T], factor T) error {
	if err := g.compatible(o); err != nil {
		return err
	}
	for i := range g.cells {
		g.cells[i] = g.cells[i].Add(o.cells[i].Mul(factor))
	}
	return nil
}

// Clamp limits every cell to [lo, hi], per component for Vec3.
func (g *Grid[T]) Clamp(lo, hi T) {
	for i := range g.cells {
		g.cells[i] = g.cells[i].Clamp(lo, hi)
	}
}

// MaxAbsValue returns the largest cell magnitude. Diagnostic only.
func (g *Grid[T]) MaxAbsValue() float64 {
	m := 0.0
	for _, c := range g.cells {
		if a := c.Magnitude(); a > m {
			m = a
		}
	}
	return m
}

// L1 is the sum of cell magnitudes.
func (g *Grid[T]) L1() float64 {
	s := 0.0
	for _, c := range g.cells {
		s += c.Magnitude()
	}
	return s
}

// L2 is the square root of the sum of squared cell magnitudes.
func (g *Grid[T]) L2() float64 {
	s := 0.0
	for _, c := range g.cells {
		m := c.Magnitude()
		s += m * m
	}
	return math.Sqrt(s)
}

// MaxValue returns the largest cell of a scalar grid, or zero for a grid
// with no cells.
func MaxValue[T Ordered[T]](g *Grid[T]) T {
	if len(g.cells) == 0 {
		var zero T
		return zero
	}
	m := g.cells[0]
	for _, c := range g.cells[1:] {
		m = max(m, c)
	}
	return m
}

// MinValue returns the smallest cell of a scalar grid, or zero for a grid
// with no cells.
func MinValue[T Ordered[T]](g *Grid[T]) T {
	if len(g.cells) == 0 {
		var zero T
		return zero
	}
	m := g.cells[0]
	for _, c := range g.cells[1:] {
		m = min(m, c)
	}
	return m
}
