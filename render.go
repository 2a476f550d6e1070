package pointlab

import (
	"errors"
	"image"
	"math"
)

// FrameRenderer turns one geometry plus one camera state into a frame.
// Implementations must not retain the geometry across calls.
type FrameRenderer interface {
	Render(g Geometry, cam CameraState) (image.Image, error)
}

// SoftwareRenderer draws with the in-package rasterizer: Phong-shaded
// triangles for meshes, flat splats for point clouds.
type SoftwareRenderer struct {
	Width      int
	Height     int
	Background Color
	PointSize  int
	Fovy       float64
	Light      Vector
	// Fit widens the field of view so the whole bounding box is in
	// frame regardless of zoom; snapshot export turns it on.
	Fit bool
}

func NewSoftwareRenderer(width, height int) *SoftwareRenderer {
	return &SoftwareRenderer{
		Width:      width,
		Height:     height,
		Background: DefaultBackground,
		PointSize:  3,
		Fovy:       40,
		Light:      Vector{-0.5, 0.5, 1}.Normalize(),
	}
}

func (r *SoftwareRenderer) Render(g Geometry, cam CameraState) (image.Image, error) {
	if g == nil {
		return nil, &RenderError{"setup", errors.New("no geometry")}
	}
	if cam.Zoom <= 0 {
		return nil, &RenderError{"setup", errors.New("non-positive zoom")}
	}
	front := cam.Front.Normalize()
	up := cam.Up.Normalize()
	if front == (Vector{}) || up == (Vector{}) || front.Cross(up).Length() < 1e-9 {
		return nil, &RenderError{"setup", errors.New("degenerate camera axes")}
	}

	// The geometry is centered, so its bounding radius fixes the view
	// distance; the default zoom 0.8 frames it with some margin.
	radius := GeometryBox(g).Radius()
	if radius == 0 {
		radius = 1
	}
	dist := 3 * radius * cam.Zoom
	near := dist * 0.01
	far := dist + 4*radius
	eye := cam.LookAt.Sub(front.MulScalar(dist))
	aspect := float64(r.Width) / float64(r.Height)
	view := LookAt(eye, cam.LookAt, up)
	fovy := r.Fovy
	if r.Fit {
		fovy = fitFovy(view, GeometryBox(g), aspect, r.Fovy)
	}
	matrix := view.Perspective(fovy, aspect, near, far)

	var dc *Context
	switch g := g.(type) {
	case *Mesh:
		shader := NewPhongShader(matrix, r.Light, eye)
		dc = NewContext(r.Width, r.Height, shader)
		dc.ClearColorBufferWith(r.Background)
		dc.Cull = CullNone
		dc.DrawMesh(g)
	case *PointCloud:
		shader := NewSolidColorShader(matrix, Color{0.75, 0.75, 0.75, 1})
		dc = NewContext(r.Width, r.Height, shader)
		dc.ClearColorBufferWith(r.Background)
		dc.DrawPoints(g, r.PointSize)
	default:
		return nil, &RenderError{"draw", errors.New("unknown geometry variant")}
	}
	img := dc.Image()
	if img == nil {
		return nil, &RenderError{"draw", errors.New("rasterizer produced no image")}
	}
	return img, nil
}

// fitFovy widens the field of view until every corner of box projected
// through view fits, with a 5% margin.
func fitFovy(view Matrix, box Box, aspect, base float64) float64 {
	var maxAngleX, maxAngleY float64
	for _, corner := range box.Corners() {
		p := view.MulPosition(corner)
		absZ := math.Abs(p.Z)
		if absZ < 1e-6 {
			continue
		}
		if a := math.Atan(math.Abs(p.X) / absZ); a > maxAngleX {
			maxAngleX = a
		}
		if a := math.Atan(math.Abs(p.Y) / absZ); a > maxAngleY {
			maxAngleY = a
		}
	}
	fovy := math.Max(2*maxAngleY, 2*math.Atan(math.Tan(maxAngleX)/aspect))
	fovy = Degrees(fovy) * 1.05
	if fovy <= 0 {
		return base
	}
	return fovy
}
