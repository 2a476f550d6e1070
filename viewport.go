package pointlab

import (
	"errors"
	"image"
	"log"
	"sync"
	"time"
)

// Input constants shared by all viewports, matching the desktop
// interaction speeds.
const (
	DefaultRotationSpeed    = 1.0
	DefaultTranslationSpeed = 0.01
	DefaultZoomSpeed        = 0.05
	DefaultTickInterval     = 50 * time.Millisecond
)

// PointerButton identifies the pressed mouse button.
type PointerButton int

const (
	ButtonPrimary PointerButton = iota
	ButtonMiddle
	ButtonSecondary
)

// Modifiers is a bitmask of held modifier keys.
type Modifiers int

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
)

// Viewport owns one camera and one centered copy of a geometry and
// turns input events plus a periodic tick into frames. All methods are
// safe for concurrent use; the centered copy is mutated only under the
// viewport's own lock, so viewports never need to coordinate.
type Viewport struct {
	Name string

	// OnFrame receives every rendered frame; OnError receives the
	// failure that stopped the render loop. Both are invoked without
	// the viewport lock held and must be set before SetGeometry.
	OnFrame func(image.Image)
	OnError func(error)

	RotationSpeed    float64
	TranslationSpeed float64
	ZoomSpeed        float64
	TickInterval     time.Duration

	mu         sync.Mutex
	renderer   FrameRenderer
	cam        CameraState
	geom       Geometry // centered private copy
	src        Geometry // published asset the copy came from
	autoRotate bool
	active     bool
	done       chan struct{}

	dragging bool
	panDrag  bool
	lastX    float64
	lastY    float64
}

func NewViewport(name string, renderer FrameRenderer) *Viewport {
	return &Viewport{
		Name:             name,
		RotationSpeed:    DefaultRotationSpeed,
		TranslationSpeed: DefaultTranslationSpeed,
		ZoomSpeed:        DefaultZoomSpeed,
		TickInterval:     DefaultTickInterval,
		renderer:         renderer,
		cam:              DefaultCamera(),
	}
}

// SetGeometry replaces the displayed geometry. The asset is copied and
// centered once, here, never per frame; nil clears the viewport and
// stops its render loop.
func (vp *Viewport) SetGeometry(g Geometry) {
	vp.mu.Lock()
	vp.stopLocked()
	if g == nil {
		vp.geom = nil
		vp.src = nil
		vp.mu.Unlock()
		return
	}
	vp.src = g
	vp.geom = CenterCopy(g)
	vp.startLocked()
	vp.mu.Unlock()
}

// ApplyColor repaints the centered copy uniformly; nil restores the
// asset's own colors. No-op when no geometry is set. The next tick
// renders the new colors.
func (vp *Viewport) ApplyColor(c *Color) {
	vp.mu.Lock()
	defer vp.mu.Unlock()
	if vp.geom == nil {
		return
	}
	if c == nil {
		RestoreColors(vp.geom, vp.src)
		return
	}
	PaintGeometry(vp.geom, *c)
}

// Geometry returns the centered copy currently displayed, nil when
// empty.
func (vp *Viewport) Geometry() Geometry {
	vp.mu.Lock()
	defer vp.mu.Unlock()
	return vp.geom
}

// Camera returns a snapshot of the camera state.
func (vp *Viewport) Camera() CameraState {
	vp.mu.Lock()
	defer vp.mu.Unlock()
	return vp.cam
}

// Active reports whether the render loop is running.
func (vp *Viewport) Active() bool {
	vp.mu.Lock()
	defer vp.mu.Unlock()
	return vp.active
}

func (vp *Viewport) AutoRotate() bool {
	vp.mu.Lock()
	defer vp.mu.Unlock()
	return vp.autoRotate
}

func (vp *Viewport) SetAutoRotate(on bool) {
	vp.mu.Lock()
	vp.autoRotate = on
	vp.mu.Unlock()
}

// PointerDown begins a drag. Shift or the middle button selects
// panning; the primary button orbits.
func (vp *Viewport) PointerDown(x, y float64, button PointerButton, mods Modifiers) {
	vp.mu.Lock()
	vp.dragging = true
	vp.panDrag = button == ButtonMiddle || mods&ModShift != 0
	vp.lastX, vp.lastY = x, y
	vp.mu.Unlock()
}

// PointerMove accumulates the delta since the previous move. Motion is
// delta-based so focus or capture loss cannot cause camera jumps.
func (vp *Viewport) PointerMove(x, y float64) {
	vp.mu.Lock()
	defer vp.mu.Unlock()
	if !vp.dragging {
		return
	}
	dx := x - vp.lastX
	dy := y - vp.lastY
	vp.lastX, vp.lastY = x, y
	if vp.panDrag {
		vp.cam.Translate(dx*vp.TranslationSpeed, dy*vp.TranslationSpeed)
	} else {
		vp.cam.Rotate(dx*vp.RotationSpeed*0.3, dy*vp.RotationSpeed*0.3)
	}
}

func (vp *Viewport) PointerUp() {
	vp.mu.Lock()
	vp.dragging = false
	vp.mu.Unlock()
}

// Wheel zooms: forward scales the camera distance by 0.9, backward by
// 1.1. The factors are intentionally not exact inverses.
func (vp *Viewport) Wheel(delta float64) {
	vp.mu.Lock()
	defer vp.mu.Unlock()
	if delta > 0 {
		vp.cam.Scale(0.9)
	} else if delta < 0 {
		vp.cam.Scale(1.1)
	}
}

// Key handles the keyboard bindings: arrows orbit, w/a/s/d pan, +/-
// zoom, r resets.
func (vp *Viewport) Key(key string) {
	vp.mu.Lock()
	defer vp.mu.Unlock()
	switch key {
	case "ArrowLeft":
		vp.cam.Rotate(-vp.RotationSpeed*5, 0)
	case "ArrowRight":
		vp.cam.Rotate(vp.RotationSpeed*5, 0)
	case "ArrowUp":
		vp.cam.Rotate(0, -vp.RotationSpeed*5)
	case "ArrowDown":
		vp.cam.Rotate(0, vp.RotationSpeed*5)
	case "w", "W":
		vp.cam.Translate(0, vp.TranslationSpeed)
	case "s", "S":
		vp.cam.Translate(0, -vp.TranslationSpeed)
	case "a", "A":
		vp.cam.Translate(-vp.TranslationSpeed, 0)
	case "d", "D":
		vp.cam.Translate(vp.TranslationSpeed, 0)
	case "+", "=":
		vp.cam.Scale(1 + vp.ZoomSpeed)
	case "-":
		vp.cam.Scale(1 - vp.ZoomSpeed)
	case "r", "R":
		vp.cam.Reset()
	}
}

// RotateBy orbits the camera directly; the capture exporter drives its
// rotation steps through this.
func (vp *Viewport) RotateBy(dx, dy float64) {
	vp.mu.Lock()
	vp.cam.Rotate(dx, dy)
	vp.mu.Unlock()
}

// Still renders one frame synchronously with the current state,
// without the tick loop.
func (vp *Viewport) Still() (image.Image, error) {
	vp.mu.Lock()
	defer vp.mu.Unlock()
	if vp.geom == nil {
		return nil, &RenderError{"still", errors.New("no geometry")}
	}
	return vp.renderer.Render(vp.geom, vp.cam)
}

// Stop halts the render loop. Idempotent and safe before any start.
func (vp *Viewport) Stop() {
	vp.mu.Lock()
	vp.stopLocked()
	vp.mu.Unlock()
}

func (vp *Viewport) startLocked() {
	vp.active = true
	vp.done = make(chan struct{})
	go vp.loop(vp.done)
}

func (vp *Viewport) stopLocked() {
	if !vp.active {
		return
	}
	vp.active = false
	close(vp.done)
	vp.done = nil
}

// loop is the per-viewport render tick. A render failure stops only
// this viewport and surfaces through OnError.
func (vp *Viewport) loop(done chan struct{}) {
	ticker := time.NewTicker(vp.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			img, err := vp.tick(done)
			if err != nil {
				vp.mu.Lock()
				if vp.done == done {
					vp.stopLocked()
				}
				vp.mu.Unlock()
				log.Printf("pointlab: viewport %s: %v", vp.Name, err)
				if vp.OnError != nil {
					vp.OnError(err)
				}
				return
			}
			if img != nil && vp.OnFrame != nil {
				vp.OnFrame(img)
			}
		}
	}
}

// tick applies the auto-rotate increment and renders one frame. It
// returns a nil image when the loop was stopped or the geometry
// cleared between ticks.
func (vp *Viewport) tick(done chan struct{}) (image.Image, error) {
	vp.mu.Lock()
	defer vp.mu.Unlock()
	select {
	case <-done:
		return nil, nil
	default:
	}
	if vp.geom == nil {
		return nil, nil
	}
	if vp.autoRotate {
		vp.cam.Rotate(1, 0)
	}
	return vp.renderer.Render(vp.geom, vp.cam)
}
