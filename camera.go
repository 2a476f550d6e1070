package pointlab

// CameraState holds the view parameters of one viewport. Front and Up
// stay unit length and mutually non-parallel; Zoom stays positive.
type CameraState struct {
	Front  Vector
	LookAt Vector
	Up     Vector
	Zoom   float64
}

// DefaultCamera is the state restored by Reset.
func DefaultCamera() CameraState {
	return CameraState{
		Front:  Vector{0, 0, -1},
		LookAt: Vector{0, 0, 0},
		Up:     Vector{0, 1, 0},
		Zoom:   0.8,
	}
}

// Right is the camera's right axis.
func (c *CameraState) Right() Vector {
	return c.Front.Cross(c.Up).Normalize()
}

// Rotate orbits by dx degrees about the up axis and dy degrees about
// the right axis, then re-orthogonalizes the frame.
func (c *CameraState) Rotate(dx, dy float64) {
	right := c.Right()
	m := Rotate(c.Up, Radians(-dx)).Rotate(right, Radians(-dy))
	c.Front = m.MulDirection(c.Front)
	c.Up = m.MulDirection(c.Up)
	right = c.Front.Cross(c.Up).Normalize()
	c.Up = right.Cross(c.Front).Normalize()
}

// Translate pans the look-at point along the camera's right and up
// axes.
func (c *CameraState) Translate(dx, dy float64) {
	c.LookAt = c.LookAt.Sub(c.Right().MulScalar(dx)).Add(c.Up.MulScalar(dy))
}

// Scale multiplies the zoom. Zoom is a camera-distance factor, so
// values below 1 move the camera closer. Non-positive factors are
// ignored to keep the invariant.
func (c *CameraState) Scale(factor float64) {
	if factor <= 0 {
		return
	}
	c.Zoom *= factor
}

// Reset restores the default state. Idempotent.
func (c *CameraState) Reset() {
	*c = DefaultCamera()
}
