package pointlab

import (
	"errors"
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"

	"github.com/nfnt/resize"
)

// Capture defaults: a full turn in 36 steps of 10 degrees, played back
// at 0.1s per frame.
const (
	DefaultCaptureSteps   = 36
	DefaultCaptureDegrees = 10
	captureFrameDelay     = 10 // hundredths of a second
	captureFrameWidth     = 480
)

// CaptureGIF rotates the viewport's camera stepCount times by
// degPerStep degrees, renders a still per step and assembles the
// frames into a looping GIF at outPath.
//
// The viewport's camera must not be manipulated concurrently: the
// rotation steps and any user input target the same camera state.
// Auto-rotate is suspended and the prior flag restored on every exit
// path, as is the temporary frame directory.
func CaptureGIF(vp *Viewport, outPath string, stepCount, degPerStep int) error {
	if vp.Geometry() == nil {
		return &ExportError{errors.New("no geometry loaded")}
	}
	if stepCount <= 0 {
		stepCount = DefaultCaptureSteps
	}
	if degPerStep == 0 {
		degPerStep = DefaultCaptureDegrees
	}

	prev := vp.AutoRotate()
	vp.SetAutoRotate(false)
	defer vp.SetAutoRotate(prev)

	dir, err := os.MkdirTemp("", "pointlab-capture-")
	if err != nil {
		return &ExportError{err}
	}
	defer os.RemoveAll(dir)

	paths := make([]string, 0, stepCount)
	for i := 0; i < stepCount; i++ {
		vp.RotateBy(float64(degPerStep), 0)
		img, err := vp.Still()
		if err != nil {
			return &ExportError{fmt.Errorf("step %d: %w", i, err)}
		}
		p := filepath.Join(dir, fmt.Sprintf("frame%03d.png", i))
		if err := writePNG(p, img); err != nil {
			return &ExportError{fmt.Errorf("step %d: %w", i, err)}
		}
		paths = append(paths, p)
	}

	anim := &gif.GIF{LoopCount: 0}
	for _, p := range paths {
		img, err := readPNG(p)
		if err != nil {
			return &ExportError{err}
		}
		anim.Image = append(anim.Image, quantizeFrame(img))
		anim.Delay = append(anim.Delay, captureFrameDelay)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return &ExportError{err}
	}
	defer out.Close()
	if err := gif.EncodeAll(out, anim); err != nil {
		return &ExportError{err}
	}
	return nil
}

// quantizeFrame downscales the frame and maps it onto the Plan9
// palette with Floyd-Steinberg dithering.
func quantizeFrame(img image.Image) *image.Paletted {
	if img.Bounds().Dx() > captureFrameWidth {
		img = resize.Resize(captureFrameWidth, 0, img, resize.Bilinear)
	}
	pal := image.NewPaletted(img.Bounds(), palette.Plan9)
	draw.FloydSteinberg.Draw(pal, img.Bounds(), img, img.Bounds().Min)
	return pal
}

func writePNG(path string, img image.Image) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return png.Encode(file, img)
}

func readPNG(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return png.Decode(file)
}
