package grid

import (
	"fmt"
	"math"
)

// Kind tags the element type of a grid.
type Kind uint8

const (
	KindReal Kind = iota + 1
	KindVec3
	KindInt
)

func (k Kind) String() string {
	switch k {
	case KindReal:
		return "real"
	case KindVec3:
		return "vec3"
	case KindInt:
		return "int"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Valid reports whether k is one of the defined kinds.
func (k Kind) Valid() bool { return k >= KindReal && k <= KindInt }

// Width is the number of scalar components stored per cell.
func (k Kind) Width() int {
	if k == KindVec3 {
		return 3
	}
	return 1
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "real":
		return KindReal, nil
	case "vec3":
		return KindVec3, nil
	case "int":
		return KindInt, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Cell is the element constraint for Grid. The set is closed: only Real,
// Vec3 and Int satisfy it.
type Cell[T any] interface {
	comparable
	Add(T) T
	Sub(T) T
	Mul(T) T
	Clamp(lo, hi T) T
	// Magnitude is |v| for scalars and the vector length for Vec3.
	Magnitude() float64

	kind() Kind
	appendComponents(dst []float64) []float64
	fromComponents(src []float64) T
}

// Ordered narrows Cell to the scalar element types.
type Ordered[T any] interface {
	Real | Int
	Cell[T]
}

// Real is a double precision scalar cell.
type Real float64

func (a Real) Add(b Real) Real        { return a + b }
func (a Real) Sub(b Real) Real        { return a - b }
func (a Real) Mul(b Real) Real        { return a * b }
func (a Real) Clamp(lo, hi Real) Real { return min(max(a, lo), hi) }
func (a Real) Magnitude() float64     { return math.Abs(float64(a)) }
func (Real) kind() Kind               { return KindReal }
func (Real) fromComponents(src []float64) Real {
	return Real(src[0])
}
func (a Real) appendComponents(dst []float64) []float64 {
	return append(dst, float64(a))
}

// Int is an exact integer cell. Arithmetic wraps on overflow and never
// promotes to floating point.
type Int int32

func (a Int) Add(b Int) Int        { return a + b }
func (a Int) Sub(b Int) Int        { return a - b }
func (a Int) Mul(b Int) Int        { return a * b }
func (a Int) Clamp(lo, hi Int) Int { return min(max(a, lo), hi) }
func (a Int) Magnitude() float64   { return math.Abs(float64(a)) }
func (Int) kind() Kind             { return KindInt }
func (Int) fromComponents(src []float64) Int {
	return Int(int32(src[0]))
}
func (a Int) appendComponents(dst []float64) []float64 {
	return append(dst, float64(a))
}

// Vec3 is a three component cell. On staggered (face-centered) grids each
// component lives on a different face, but all operations treat the three
// components independently.
type Vec3 struct {
	X, Y, Z float64
}

// Splat returns a vector with every component set to s.
func Splat(s float64) Vec3 { return Vec3{s, s, s} }

func (a Vec3) Add(b Vec3) Vec3 { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vec3) Sub(b Vec3) Vec3 { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }

// Mul is componentwise, not a dot or cross product.
func (a Vec3) Mul(b Vec3) Vec3 { return Vec3{a.X * b.X, a.Y * b.Y, a.Z * b.Z} }

func (a Vec3) Clamp(lo, hi Vec3) Vec3 {
	return Vec3{
		min(max(a.X, lo.X), hi.X),
		min(max(a.Y, lo.Y), hi.Y),
		min(max(a.Z, lo.Z), hi.Z),
	}
}

func (a Vec3) Magnitude() float64 { return math.Sqrt(a.X*a.X + a.Y*a.Y + a.Z*a.Z) }
func (Vec3) kind() Kind           { return KindVec3 }
func (Vec3) fromComponents(src []float64) Vec3 {
	return Vec3{src[0], src[1], src[2]}
}
func (a Vec3) appendComponents(dst []float64) []float64 {
	return append(dst, a.X, a.Y, a.Z)
}

func (a Vec3) String() string { return fmt.Sprintf("(%g,%g,%g)", a.X, a.Y, a.Z) }
