package grid

import "errors"

var (
	// ErrShapeMismatch is returned when a binary operation receives grids
	// with different domains or element types. The receiver is left unchanged.
	ErrShapeMismatch = errors.New("grid: shape mismatch")

	// ErrOutOfBounds is returned by cell accessors for coordinates outside the domain.
	ErrOutOfBounds = errors.New("grid: cell out of bounds")

	// ErrUnknownKind is returned by the factory for an unsupported element type tag.
	ErrUnknownKind = errors.New("grid: unknown element kind")
)
