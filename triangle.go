package pointlab

// Vertex carries the per-corner attributes fed through the shader.
type Vertex struct {
	Position Vector
	Normal   Vector
	Color    Color
	Output   VectorW
}

func (v Vertex) Outside() bool {
	return v.Output.Outside()
}

// InterpolateVertexes blends three vertexes by perspective-corrected
// barycentric weights.
func InterpolateVertexes(v1, v2, v3 Vertex, b VectorW) Vertex {
	v := Vertex{}
	v.Position = interpolateVectors(v1.Position, v2.Position, v3.Position, b)
	v.Normal = interpolateVectors(v1.Normal, v2.Normal, v3.Normal, b).Normalize()
	v.Color = interpolateColors(v1.Color, v2.Color, v3.Color, b)
	v.Output = interpolateVectorWs(v1.Output, v2.Output, v3.Output, b)
	return v
}

func interpolateVectors(v1, v2, v3 Vector, b VectorW) Vector {
	n := v1.MulScalar(b.X).Add(v2.MulScalar(b.Y)).Add(v3.MulScalar(b.Z))
	return n.MulScalar(b.W)
}

func interpolateColors(v1, v2, v3 Color, b VectorW) Color {
	n := v1.MulScalar(b.X).Add(v2.MulScalar(b.Y)).Add(v3.MulScalar(b.Z))
	return n.MulScalar(b.W)
}

func interpolateVectorWs(v1, v2, v3, b VectorW) VectorW {
	n := v1.MulScalar(b.X).Add(v2.MulScalar(b.Y)).Add(v3.MulScalar(b.Z))
	return n.MulScalar(b.W)
}

// Triangle is one face of a mesh.
type Triangle struct {
	V1, V2, V3 Vertex
}

func NewTriangle(v1, v2, v3 Vertex) *Triangle {
	return &Triangle{v1, v2, v3}
}

// NewTriangleForPoints builds a triangle from bare positions with the
// face normal assigned to each corner.
func NewTriangleForPoints(p1, p2, p3 Vector) *Triangle {
	t := &Triangle{}
	t.V1.Position = p1
	t.V2.Position = p2
	t.V3.Position = p3
	t.FixNormals()
	return t
}

func (t *Triangle) Normal() Vector {
	e1 := t.V2.Position.Sub(t.V1.Position)
	e2 := t.V3.Position.Sub(t.V1.Position)
	return e1.Cross(e2).Normalize()
}

func (t *Triangle) Area() float64 {
	e1 := t.V2.Position.Sub(t.V1.Position)
	e2 := t.V3.Position.Sub(t.V1.Position)
	return e1.Cross(e2).Length() / 2
}

func (t *Triangle) BoundingBox() Box {
	min := t.V1.Position.Min(t.V2.Position).Min(t.V3.Position)
	max := t.V1.Position.Max(t.V2.Position).Max(t.V3.Position)
	return Box{min, max}
}

// FixNormals assigns the face normal to any corner without one.
func (t *Triangle) FixNormals() {
	n := t.Normal()
	zero := Vector{}
	if t.V1.Normal == zero {
		t.V1.Normal = n
	}
	if t.V2.Normal == zero {
		t.V2.Normal = n
	}
	if t.V3.Normal == zero {
		t.V3.Normal = n
	}
}

// Flip reverses the winding order.
func (t *Triangle) Flip() {
	t.V1, t.V3 = t.V3, t.V1
	t.V1.Normal = t.V1.Normal.Negate()
	t.V2.Normal = t.V2.Normal.Negate()
	t.V3.Normal = t.V3.Normal.Negate()
}

// SetColor sets the color of all three corners.
func (t *Triangle) SetColor(c Color) {
	t.V1.Color = c
	t.V2.Color = c
	t.V3.Color = c
}
