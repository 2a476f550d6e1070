package pointlab

import (
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/beorn7/floats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRenderer counts calls and can be told to fail, replacing the
// software rasterizer in loop tests.
type fakeRenderer struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (r *fakeRenderer) Render(g Geometry, cam CameraState) (image.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	r.calls++
	return image.NewNRGBA(image.Rect(0, 0, 8, 8)), nil
}

func (r *fakeRenderer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func testViewport(t *testing.T) (*Viewport, *fakeRenderer) {
	t.Helper()
	fr := &fakeRenderer{}
	vp := NewViewport("test", fr)
	vp.TickInterval = time.Millisecond
	t.Cleanup(vp.Stop)
	return vp, fr
}

func testCloud() *PointCloud {
	return NewPointCloud([]Vector{{1, 0, 0}, {1, 0, 1}, {1, 1, 0}})
}

func TestViewportSetGeometryStartsLoop(t *testing.T) {
	vp, _ := testViewport(t)
	frames := make(chan image.Image, 1)
	vp.OnFrame = func(img image.Image) {
		select {
		case frames <- img:
		default:
		}
	}
	vp.SetGeometry(testCloud())
	assert.True(t, vp.Active())
	select {
	case <-frames:
	case <-time.After(2 * time.Second):
		t.Fatal("no frame rendered")
	}
}

func TestViewportCentersOnceOnAssignment(t *testing.T) {
	vp, _ := testViewport(t)
	cloud := testCloud()
	vp.SetGeometry(cloud)

	centered := vp.Geometry().(*PointCloud)
	c := centered.Centroid()
	assert.InDelta(t, 0, c.Length(), 1e-12)
	// The published asset must not move.
	assert.Equal(t, Vector{1, 0, 0}, cloud.Points[0])
}

func TestViewportSetGeometryNilStops(t *testing.T) {
	vp, _ := testViewport(t)
	vp.SetGeometry(testCloud())
	require.True(t, vp.Active())
	vp.SetGeometry(nil)
	assert.False(t, vp.Active())
	assert.Nil(t, vp.Geometry())
}

func TestViewportStopIdempotent(t *testing.T) {
	vp, _ := testViewport(t)

	// Safe before any start.
	vp.Stop()

	vp.SetGeometry(testCloud())
	require.True(t, vp.Active())
	vp.Stop()
	vp.Stop() // second call is a no-op
	assert.False(t, vp.Active())
}

func TestViewportRenderFailureStopsOnlyThisLoop(t *testing.T) {
	vp, fr := testViewport(t)
	sibling, _ := testViewport(t)

	errs := make(chan error, 1)
	vp.OnError = func(err error) {
		select {
		case errs <- err:
		default:
		}
	}
	sibling.SetGeometry(testCloud())

	vp.SetGeometry(testCloud())
	fr.mu.Lock()
	fr.err = errors.New("device lost")
	fr.mu.Unlock()

	select {
	case err := <-errs:
		assert.ErrorContains(t, err, "device lost")
	case <-time.After(2 * time.Second):
		t.Fatal("render failure never surfaced")
	}
	assert.Eventually(t, func() bool { return !vp.Active() }, time.Second, time.Millisecond)
	assert.True(t, sibling.Active())
}

func TestViewportApplyColor(t *testing.T) {
	vp, _ := testViewport(t)

	// No geometry: no-op, no panic.
	vp.ApplyColor(Presets["red"])

	src := testCloud()
	vp.SetGeometry(src)
	vp.ApplyColor(Presets["red"])
	centered := vp.Geometry().(*PointCloud)
	require.True(t, centered.HasColors())
	for _, c := range centered.Colors {
		assert.Equal(t, Color{1, 0, 0, 1}, c)
	}
	// The asset itself keeps its colors (here: none).
	assert.False(t, src.HasColors())

	// nil restores the asset's own coloring.
	vp.ApplyColor(nil)
	centered = vp.Geometry().(*PointCloud)
	assert.False(t, centered.HasColors())
}

func TestViewportWheelZoom(t *testing.T) {
	vp, _ := testViewport(t)
	vp.Wheel(1)
	assert.True(t, floats.AlmostEqual(vp.Camera().Zoom, 0.8*0.9, 1e-12))
	vp.Wheel(-1)
	assert.True(t, floats.AlmostEqual(vp.Camera().Zoom, 0.8*0.9*1.1, 1e-12))
	vp.Wheel(0)
	assert.True(t, floats.AlmostEqual(vp.Camera().Zoom, 0.8*0.9*1.1, 1e-12))
}

func TestViewportKeyboardZoomAndReset(t *testing.T) {
	vp, _ := testViewport(t)
	vp.Key("+")
	assert.True(t, floats.AlmostEqual(vp.Camera().Zoom, 0.8*1.05, 1e-12))
	vp.Key("-")
	assert.True(t, floats.AlmostEqual(vp.Camera().Zoom, 0.8*1.05*0.95, 1e-12))
	vp.Key("r")
	assert.Equal(t, DefaultCamera(), vp.Camera())
}

func TestViewportDragRotatesByDeltas(t *testing.T) {
	vp, _ := testViewport(t)
	before := vp.Camera()

	vp.PointerDown(100, 100, ButtonPrimary, 0)
	vp.PointerMove(110, 100)
	vp.PointerUp()
	rotated := vp.Camera()
	assert.NotEqual(t, before.Front, rotated.Front)
	assert.Equal(t, before.LookAt, rotated.LookAt)

	// Moves without a held button accumulate nothing.
	vp.PointerMove(300, 300)
	assert.Equal(t, rotated, vp.Camera())
}

func TestViewportPanDrag(t *testing.T) {
	vp, _ := testViewport(t)
	before := vp.Camera()

	vp.PointerDown(0, 0, ButtonMiddle, 0)
	vp.PointerMove(10, 0)
	vp.PointerUp()
	panned := vp.Camera()
	assert.Equal(t, before.Front, panned.Front)
	assert.NotEqual(t, before.LookAt, panned.LookAt)

	// Shift-drag with the primary button pans too.
	vp2, _ := testViewport(t)
	vp2.PointerDown(0, 0, ButtonPrimary, ModShift)
	vp2.PointerMove(10, 0)
	assert.Equal(t, panned.LookAt, vp2.Camera().LookAt)
}

func TestViewportAutoRotate(t *testing.T) {
	vp, fr := testViewport(t)
	vp.SetAutoRotate(true)
	vp.SetGeometry(testCloud())
	assert.Eventually(t, func() bool { return fr.count() >= 3 }, 2*time.Second, time.Millisecond)
	vp.Stop()
	assert.NotEqual(t, DefaultCamera().Front, vp.Camera().Front)
}

func TestViewportStillWithoutGeometry(t *testing.T) {
	vp, _ := testViewport(t)
	_, err := vp.Still()
	var rerr *RenderError
	assert.ErrorAs(t, err, &rerr)
}
