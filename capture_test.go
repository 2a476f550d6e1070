package pointlab

import (
	"image/gif"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureGIFWritesLoopingAnimation(t *testing.T) {
	vp, _ := testViewport(t)
	vp.SetGeometry(testCloud())
	vp.SetAutoRotate(true)

	out := filepath.Join(t.TempDir(), "turntable.gif")
	require.NoError(t, CaptureGIF(vp, out, 6, 10))

	file, err := os.Open(out)
	require.NoError(t, err)
	defer file.Close()
	anim, err := gif.DecodeAll(file)
	require.NoError(t, err)
	assert.Len(t, anim.Image, 6)
	assert.Equal(t, 0, anim.LoopCount)
	for _, d := range anim.Delay {
		assert.Equal(t, 10, d) // 0.1s per frame
	}

	// The prior auto-rotate flag survives the capture.
	assert.True(t, vp.AutoRotate())
}

func TestCaptureGIFWithoutGeometry(t *testing.T) {
	vp, _ := testViewport(t)
	err := CaptureGIF(vp, filepath.Join(t.TempDir(), "out.gif"), 6, 10)
	var xerr *ExportError
	assert.ErrorAs(t, err, &xerr)
}

func TestCaptureGIFRestoresFlagOnFailure(t *testing.T) {
	vp, fr := testViewport(t)
	vp.SetGeometry(testCloud())
	vp.Stop() // keep the loop out of the way; capture drives stills itself
	vp.SetAutoRotate(true)

	fr.mu.Lock()
	fr.err = os.ErrClosed
	fr.mu.Unlock()

	err := CaptureGIF(vp, filepath.Join(t.TempDir(), "out.gif"), 6, 10)
	var xerr *ExportError
	require.ErrorAs(t, err, &xerr)
	assert.True(t, vp.AutoRotate(), "flag must be restored on the failure path too")
}

func TestCaptureGIFRotatesFullCircle(t *testing.T) {
	vp, _ := testViewport(t)
	vp.SetGeometry(testCloud())
	vp.Stop()
	before := vp.Camera()

	out := filepath.Join(t.TempDir(), "turntable.gif")
	require.NoError(t, CaptureGIF(vp, out, DefaultCaptureSteps, DefaultCaptureDegrees))

	// 36 steps of 10 degrees bring the camera back around.
	after := vp.Camera()
	assert.InDelta(t, before.Front.X, after.Front.X, 1e-6)
	assert.InDelta(t, before.Front.Y, after.Front.Y, 1e-6)
	assert.InDelta(t, before.Front.Z, after.Front.Z, 1e-6)
}
