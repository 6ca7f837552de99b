package grid

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate(t *testing.T) {
	t.Parallel()
	s := testSolver(t)

	for _, k := range []Kind{KindReal, KindVec3, KindInt} {
		f, err := Create(s, k)
		require.NoError(t, err)
		assert.Equal(t, k, f.Kind())
		assert.Equal(t, 6000, f.Len())
		assert.Len(t, f.Components(), 6000*k.Width())
		assert.Same(t, s.Domain(), f.Domain())
	}

	_, err := Create(s, Kind(42))
	assert.True(t, errors.Is(err, ErrUnknownKind))
}

func TestParseKind(t *testing.T) {
	t.Parallel()
	for _, k := range []Kind{KindReal, KindVec3, KindInt} {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseKind("complex")
	assert.Error(t, err)
}

func TestComponents_RoundTrip(t *testing.T) {
	t.Parallel()
	s := testSolver(t)

	src := NewVec3(s)
	for i := range src.cells {
		src.cells[i] = Vec3{float64(i), -float64(i) / 3, 1e-15 * float64(i)}
	}
	dst := NewVec3(s)
	require.NoError(t, dst.SetComponents(src.Components()))
	if diff := cmp.Diff(src.cells, dst.cells); diff != "" {
		t.Errorf("vec3 cells mismatch (-want +got):\n%s", diff)
	}

	ints := NewInt(s)
	ints.SetConstant(-2147483648)
	back := NewInt(s)
	require.NoError(t, back.SetComponents(ints.Components()))
	assert.Equal(t, ints.cells, back.cells)

	err := dst.SetComponents(make([]float64, 5))
	assert.True(t, errors.Is(err, ErrShapeMismatch))
}

func TestCompatibleAndCopyFromField(t *testing.T) {
	t.Parallel()
	s := testSolver(t)
	r1, r2 := NewReal(s), NewReal(s)
	iv := NewInt(s)

	require.NoError(t, Compatible(r1, r2))
	assert.True(t, errors.Is(Compatible(r1, iv), ErrShapeMismatch))
	assert.True(t, errors.Is(Compatible(r1, nil), ErrShapeMismatch))

	r2.SetConstant(4.5)
	require.NoError(t, r1.CopyFromField(r2))
	assert.Equal(t, Real(4.5), r1.At(17))

	err := r1.CopyFromField(iv)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrShapeMismatch))
	assert.Contains(t, err.Error(), "real vs int")

	assert.True(t, errors.Is(r1.CopyFromField(nil), ErrShapeMismatch))
}
