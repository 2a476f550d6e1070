package pointlab

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSoftwareRendererCloud(t *testing.T) {
	r := NewSoftwareRenderer(64, 48)
	g := CenterCopy(testCloud())
	img, err := r.Render(g, DefaultCamera())
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 48, img.Bounds().Dy())

	// A corner pixel is background; round-trip both sides through the
	// 8-bit buffer before comparing.
	want := MakeColor(DefaultBackground.NRGBA())
	assert.Equal(t, want, MakeColor(img.At(0, 0)))
}

func TestSoftwareRendererMeshCoversPixels(t *testing.T) {
	r := NewSoftwareRenderer(64, 64)
	mesh := NewTriangleMesh([]*Triangle{
		NewTriangleForPoints(Vector{-1, -1, 0}, Vector{1, -1, 0}, Vector{0, 1, 0}),
	})
	mesh.SetColor(PoissonColor)
	g := CenterCopy(mesh)

	img, err := r.Render(g, DefaultCamera())
	require.NoError(t, err)

	bg := DefaultBackground.NRGBA()
	covered := 0
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			if color.NRGBAModel.Convert(img.At(x, y)) != bg {
				covered++
			}
		}
	}
	assert.Greater(t, covered, 0, "the triangle should rasterize to some pixels")
}

func TestSoftwareRendererRejectsBadCamera(t *testing.T) {
	r := NewSoftwareRenderer(32, 32)
	g := CenterCopy(testCloud())

	var rerr *RenderError

	cam := DefaultCamera()
	cam.Zoom = 0
	_, err := r.Render(g, cam)
	assert.ErrorAs(t, err, &rerr)

	cam = DefaultCamera()
	cam.Up = Vector{0, 0, -1} // parallel to front
	_, err = r.Render(g, cam)
	assert.ErrorAs(t, err, &rerr)

	_, err = r.Render(nil, DefaultCamera())
	assert.ErrorAs(t, err, &rerr)
}

func TestSoftwareRendererZoomChangesFraming(t *testing.T) {
	r := NewSoftwareRenderer(64, 64)
	mesh := NewTriangleMesh([]*Triangle{
		NewTriangleForPoints(Vector{-1, -1, 0}, Vector{1, -1, 0}, Vector{0, 1, 0}),
	})
	mesh.SetColor(White)
	g := CenterCopy(mesh)

	count := func(zoom float64) int {
		cam := DefaultCamera()
		cam.Zoom = zoom
		img, err := r.Render(g, cam)
		require.NoError(t, err)
		bg := DefaultBackground.NRGBA()
		n := 0
		for y := 0; y < 64; y++ {
			for x := 0; x < 64; x++ {
				if color.NRGBAModel.Convert(img.At(x, y)) != bg {
					n++
				}
			}
		}
		return n
	}

	// Smaller zoom moves the camera closer, so the mesh covers more
	// pixels.
	assert.Greater(t, count(0.4), count(1.6))
}
