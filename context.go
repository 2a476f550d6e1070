package pointlab

import (
	"image"
	"math"
	"runtime"
	"sync"
)

type Face int

const (
	_ Face = iota
	FaceCW
	FaceCCW
)

type Cull int

const (
	_ Cull = iota
	CullNone
	CullFront
	CullBack
)

// Context rasterizes triangles and point splats into a color buffer
// with a float64 depth buffer. Drawing fans out across goroutines;
// pixel writes are guarded by striped locks.
type Context struct {
	Width        int
	Height       int
	Shader       Shader
	ColorBuffer  *image.NRGBA
	DepthBuffer  []float64
	ClearColor   Color
	ReadDepth    bool
	WriteDepth   bool
	WriteColor   bool
	AlphaBlend   bool
	FrontFace    Face
	Cull         Cull
	DepthBias    float64
	screenMatrix Matrix
	locks        []sync.Mutex
}

func NewContext(width, height int, shader Shader) *Context {
	dc := &Context{}
	dc.Width = width
	dc.Height = height
	dc.Shader = shader
	dc.ColorBuffer = image.NewNRGBA(image.Rect(0, 0, width, height))
	dc.DepthBuffer = make([]float64, width*height)
	dc.ClearColor = Transparent
	dc.ReadDepth = true
	dc.WriteDepth = true
	dc.WriteColor = true
	dc.AlphaBlend = true
	dc.FrontFace = FaceCCW
	dc.Cull = CullBack
	dc.DepthBias = 0
	dc.screenMatrix = Screen(width, height)
	dc.locks = make([]sync.Mutex, 256)
	dc.ClearDepthBuffer()
	return dc
}

func (dc *Context) Image() image.Image {
	return dc.ColorBuffer
}

// ClearColorBufferWith uses fast memory copy to clear the buffer
func (dc *Context) ClearColorBufferWith(c Color) {
	nrgba := c.NRGBA()
	row := make([]uint8, dc.Width*4)
	for x := 0; x < dc.Width; x++ {
		i := x * 4
		row[i+0] = nrgba.R
		row[i+1] = nrgba.G
		row[i+2] = nrgba.B
		row[i+3] = nrgba.A
	}
	pix := dc.ColorBuffer.Pix
	stride := dc.ColorBuffer.Stride
	for y := 0; y < dc.Height; y++ {
		copy(pix[y*stride:], row)
	}
}

func (dc *Context) ClearColorBuffer() {
	dc.ClearColorBufferWith(dc.ClearColor)
}

func (dc *Context) ClearDepthBuffer() {
	for i := range dc.DepthBuffer {
		dc.DepthBuffer[i] = math.MaxFloat64
	}
}

func edge(a, b, c Vector) float64 {
	return (b.X-c.X)*(a.Y-c.Y) - (b.Y-c.Y)*(a.X-c.X)
}

func (dc *Context) rasterize(v0, v1, v2 Vertex, s0, s1, s2 Vector) {
	min := s0.Min(s1.Min(s2)).Floor()
	max := s0.Max(s1.Max(s2)).Ceil()

	x0 := ClampInt(int(min.X), 0, dc.Width-1)
	x1 := ClampInt(int(max.X), 0, dc.Width-1)
	y0 := ClampInt(int(min.Y), 0, dc.Height-1)
	y1 := ClampInt(int(max.Y), 0, dc.Height-1)

	p := Vector{float64(x0) + 0.5, float64(y0) + 0.5, 0}
	w00 := edge(s1, s2, p)
	w01 := edge(s2, s0, p)
	w02 := edge(s0, s1, p)
	a01 := s1.Y - s0.Y
	b01 := s0.X - s1.X
	a12 := s2.Y - s1.Y
	b12 := s1.X - s2.X
	a20 := s0.Y - s2.Y
	b20 := s2.X - s0.X

	ra := 1 / edge(s0, s1, s2)
	r0 := 1 / v0.Output.W
	r1 := 1 / v1.Output.W
	r2 := 1 / v2.Output.W

	stride := dc.Width
	pix := dc.ColorBuffer.Pix

	for y := y0; y <= y1; y++ {
		w0 := w00
		w1 := w01
		w2 := w02
		for x := x0; x <= x1; x++ {
			b0 := w0 * ra
			b1 := w1 * ra
			b2 := w2 * ra

			if b0 >= 0 && b1 >= 0 && b2 >= 0 {
				i := y*stride + x
				z := b0*s0.Z + b1*s1.Z + b2*s2.Z
				bz := z + dc.DepthBias

				// Early depth test
				if !dc.ReadDepth || bz <= dc.DepthBuffer[i] {
					b := VectorW{b0 * r0, b1 * r1, b2 * r2, 0}
					b.W = 1 / (b.X + b.Y + b.Z)
					v := InterpolateVertexes(v0, v1, v2, b)

					colorVal := dc.Shader.Fragment(v)

					if colorVal.A > 0 {
						// Critical section
						lock := &dc.locks[(x+y)&255]
						lock.Lock()
						if !dc.ReadDepth || bz <= dc.DepthBuffer[i] {
							if dc.WriteDepth {
								dc.DepthBuffer[i] = z
							}
							if dc.WriteColor {
								dc.setPixel(colorVal, pix, i*4)
							}
						}
						lock.Unlock()
					}
				}
			}
			w0 += a12
			w1 += a20
			w2 += a01
		}
		w00 += b12
		w01 += b20
		w02 += b01
	}
}

// Inlined pixel setting for speed
func (dc *Context) setPixel(c Color, pix []uint8, i int) {
	if dc.AlphaBlend && c.A < 1 {
		sr, sg, sb, sa := c.NRGBA().RGBA()
		a := (0xffff - sa) * 0x101

		dr := uint32(pix[i+0])
		dg := uint32(pix[i+1])
		db := uint32(pix[i+2])
		da := uint32(pix[i+3])

		pix[i+0] = uint8((dr*a/0xffff + sr) >> 8)
		pix[i+1] = uint8((dg*a/0xffff + sg) >> 8)
		pix[i+2] = uint8((db*a/0xffff + sb) >> 8)
		pix[i+3] = uint8((da*a/0xffff + sa) >> 8)
	} else {
		// Fast path opaque
		nrgba := c.NRGBA()
		pix[i+0] = nrgba.R
		pix[i+1] = nrgba.G
		pix[i+2] = nrgba.B
		pix[i+3] = nrgba.A
	}
}

func (dc *Context) drawClippedTriangle(v0, v1, v2 Vertex) {
	ndc0 := v0.Output.DivScalar(v0.Output.W).Vector()
	ndc1 := v1.Output.DivScalar(v1.Output.W).Vector()
	ndc2 := v2.Output.DivScalar(v2.Output.W).Vector()

	if dc.Cull != CullNone {
		area := (ndc1.X-ndc0.X)*(ndc2.Y-ndc0.Y) - (ndc2.X-ndc0.X)*(ndc1.Y-ndc0.Y)
		if dc.FrontFace == FaceCW {
			area = -area
		}
		if dc.Cull == CullBack && area <= 0 {
			return
		}
		if dc.Cull == CullFront && area >= 0 {
			return
		}
	}

	s0 := dc.screenMatrix.MulPosition(ndc0)
	s1 := dc.screenMatrix.MulPosition(ndc1)
	s2 := dc.screenMatrix.MulPosition(ndc2)

	dc.rasterize(v0, v1, v2, s0, s1, s2)
}

func (dc *Context) DrawTriangle(t *Triangle) {
	v1 := dc.Shader.Vertex(t.V1)
	v2 := dc.Shader.Vertex(t.V2)
	v3 := dc.Shader.Vertex(t.V3)

	if v1.Outside() || v2.Outside() || v3.Outside() {
		triangles := ClipTriangle(NewTriangle(v1, v2, v3))
		for _, t := range triangles {
			dc.drawClippedTriangle(t.V1, t.V2, t.V3)
		}
	} else {
		dc.drawClippedTriangle(v1, v2, v3)
	}
}

func (dc *Context) DrawMesh(mesh *Mesh) {
	var wg sync.WaitGroup
	wn := runtime.NumCPU()
	wg.Add(wn)

	// Batch processing for less goroutine overhead
	for wi := 0; wi < wn; wi++ {
		go func(wi int) {
			for i := wi; i < len(mesh.Triangles); i += wn {
				dc.DrawTriangle(mesh.Triangles[i])
			}
			wg.Done()
		}(wi)
	}
	wg.Wait()
}

// DrawPoints splats each cloud point as a size x size pixel square,
// depth tested at the point's projected depth.
func (dc *Context) DrawPoints(cloud *PointCloud, size int) {
	if size < 1 {
		size = 1
	}
	var wg sync.WaitGroup
	wn := runtime.NumCPU()
	wg.Add(wn)
	for wi := 0; wi < wn; wi++ {
		go func(wi int) {
			defer wg.Done()
			for i := wi; i < len(cloud.Points); i += wn {
				v := Vertex{Position: cloud.Points[i]}
				if cloud.HasColors() {
					v.Color = cloud.Colors[i]
				}
				dc.drawPoint(dc.Shader.Vertex(v), size)
			}
		}(wi)
	}
	wg.Wait()
}

func (dc *Context) drawPoint(v Vertex, size int) {
	if v.Outside() {
		return
	}
	ndc := v.Output.DivScalar(v.Output.W).Vector()
	s := dc.screenMatrix.MulPosition(ndc)
	c := dc.Shader.Fragment(v)
	if c.A <= 0 {
		return
	}

	half := size / 2
	cx := int(s.X)
	cy := int(s.Y)
	z := s.Z + dc.DepthBias
	stride := dc.Width
	pix := dc.ColorBuffer.Pix
	for y := cy - half; y <= cy+half; y++ {
		if y < 0 || y >= dc.Height {
			continue
		}
		for x := cx - half; x <= cx+half; x++ {
			if x < 0 || x >= dc.Width {
				continue
			}
			i := y*stride + x
			if dc.ReadDepth && z > dc.DepthBuffer[i] {
				continue
			}
			lock := &dc.locks[(x+y)&255]
			lock.Lock()
			if !dc.ReadDepth || z <= dc.DepthBuffer[i] {
				if dc.WriteDepth {
					dc.DepthBuffer[i] = z
				}
				if dc.WriteColor {
					dc.setPixel(c, pix, i*4)
				}
			}
			lock.Unlock()
		}
	}
}
