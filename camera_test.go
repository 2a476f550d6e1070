package pointlab

import (
	"testing"

	"github.com/beorn7/floats"
	"github.com/stretchr/testify/assert"
)

func TestCameraDefaults(t *testing.T) {
	c := DefaultCamera()
	assert.Equal(t, Vector{0, 0, -1}, c.Front)
	assert.Equal(t, Vector{0, 0, 0}, c.LookAt)
	assert.Equal(t, Vector{0, 1, 0}, c.Up)
	assert.Equal(t, 0.8, c.Zoom)
}

func TestCameraResetIdempotent(t *testing.T) {
	c := DefaultCamera()
	c.Rotate(33, -12)
	c.Translate(0.5, -0.25)
	c.Scale(1.1)

	c.Reset()
	once := c
	c.Reset()
	assert.Equal(t, once, c)
	assert.Equal(t, DefaultCamera(), c)
}

func TestCameraZoomAsymmetry(t *testing.T) {
	c := DefaultCamera()
	orig := c.Zoom
	c.Scale(0.9)
	c.Scale(1.1)
	// 0.9 * 1.1 is 0.99, deliberately not 1: the round trip lands just
	// short of the original zoom.
	assert.True(t, floats.AlmostEqual(c.Zoom, orig*0.99, 1e-12))
	assert.NotEqual(t, orig, c.Zoom)
}

func TestCameraZoomCommutes(t *testing.T) {
	a := DefaultCamera()
	a.Scale(0.9)
	a.Scale(1.1)
	b := DefaultCamera()
	b.Scale(1.1)
	b.Scale(0.9)
	assert.True(t, floats.AlmostEqual(a.Zoom, b.Zoom, 1e-12))
}

func TestCameraScaleRejectsNonPositive(t *testing.T) {
	c := DefaultCamera()
	c.Scale(0)
	c.Scale(-2)
	assert.Equal(t, 0.8, c.Zoom)
}

func TestCameraRotateKeepsFrameOrthonormal(t *testing.T) {
	c := DefaultCamera()
	for i := 0; i < 50; i++ {
		c.Rotate(13, 7)
	}
	assert.True(t, floats.AlmostEqual(c.Front.Length(), 1, 1e-9))
	assert.True(t, floats.AlmostEqual(c.Up.Length(), 1, 1e-9))
	assert.InDelta(t, 0, c.Front.Dot(c.Up), 1e-9)
}
