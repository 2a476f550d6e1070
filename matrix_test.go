package pointlab

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookAtMapsEyeToViewOrigin(t *testing.T) {
	eye := Vector{1.5, -2, 3}
	view := LookAt(eye, Vector{0, 0, 0}, Vector{0, 1, 0})

	assert.InDelta(t, 0, view.MulPosition(eye).Length(), 1e-9)
	back := view.Inverse().MulPosition(Vector{})
	assert.InDelta(t, 0, back.Sub(eye).Length(), 1e-9)
}

func TestInverseRoundTripsViewTransform(t *testing.T) {
	view := LookAt(Vector{3, 1, 2}, Vector{0.5, 0, -1}, Vector{0, 1, 0})
	inv := view.Inverse()
	for _, p := range []Vector{{0, 0, 0}, {1, 2, 3}, {-0.5, 4, -2}} {
		q := inv.MulPosition(view.MulPosition(p))
		assert.InDelta(t, 0, q.Sub(p).Length(), 1e-9)
	}
	assert.InDelta(t, 1, view.Determinant()*inv.Determinant(), 1e-9)
}

func TestRotationTransposeEqualsInverse(t *testing.T) {
	m := Rotate(Vector{1, 2, 0.5}, Radians(37))
	assert.InDelta(t, 1, m.Determinant(), 1e-12)

	id := m.Mul(m.Transpose())
	for _, p := range []Vector{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}} {
		assert.InDelta(t, 0, id.MulPosition(p).Sub(p).Length(), 1e-12)
	}
}
