package pointlab

// Mesh is a bag of triangles.
type Mesh struct {
	Triangles []*Triangle
	box       *Box
}

func NewEmptyMesh() *Mesh {
	return &Mesh{}
}

func NewTriangleMesh(triangles []*Triangle) *Mesh {
	return &Mesh{Triangles: triangles}
}

func (m *Mesh) Copy() *Mesh {
	triangles := make([]*Triangle, len(m.Triangles))
	for i, t := range m.Triangles {
		c := *t
		triangles[i] = &c
	}
	return NewTriangleMesh(triangles)
}

func (m *Mesh) BoundingBox() Box {
	if m.box == nil {
		box := BoxForTriangles(m.Triangles)
		m.box = &box
	}
	return *m.box
}

// Centroid is the mean of all triangle corner positions.
func (m *Mesh) Centroid() Vector {
	if len(m.Triangles) == 0 {
		return Vector{}
	}
	sum := Vector{}
	for _, t := range m.Triangles {
		sum = sum.Add(t.V1.Position)
		sum = sum.Add(t.V2.Position)
		sum = sum.Add(t.V3.Position)
	}
	return sum.DivScalar(float64(len(m.Triangles) * 3))
}

// Transform applies the matrix to positions and normals in place.
func (m *Mesh) Transform(matrix Matrix) {
	for _, t := range m.Triangles {
		t.V1.Position = matrix.MulPosition(t.V1.Position)
		t.V2.Position = matrix.MulPosition(t.V2.Position)
		t.V3.Position = matrix.MulPosition(t.V3.Position)
		t.V1.Normal = matrix.MulDirection(t.V1.Normal)
		t.V2.Normal = matrix.MulDirection(t.V2.Normal)
		t.V3.Normal = matrix.MulDirection(t.V3.Normal)
	}
	m.box = nil
}

func (m *Mesh) Translate(v Vector) {
	for _, t := range m.Triangles {
		t.V1.Position = t.V1.Position.Add(v)
		t.V2.Position = t.V2.Position.Add(v)
		t.V3.Position = t.V3.Position.Add(v)
	}
	m.box = nil
}

// SetColor sets the color of every corner of every triangle.
func (m *Mesh) SetColor(c Color) {
	for _, t := range m.Triangles {
		t.SetColor(c)
	}
}

func (m *Mesh) FixNormals() {
	for _, t := range m.Triangles {
		t.FixNormals()
	}
}
