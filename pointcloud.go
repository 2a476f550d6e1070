package pointlab

// PointCloud is an unordered set of points with optional per-point
// normals and colors; when present, the optional slices are the same
// length as Points.
type PointCloud struct {
	Points  []Vector
	Normals []Vector
	Colors  []Color
	box     *Box
}

func NewPointCloud(points []Vector) *PointCloud {
	return &PointCloud{Points: points}
}

func (c *PointCloud) HasNormals() bool {
	return len(c.Normals) == len(c.Points) && len(c.Points) > 0
}

func (c *PointCloud) HasColors() bool {
	return len(c.Colors) == len(c.Points) && len(c.Points) > 0
}

func (c *PointCloud) Copy() *PointCloud {
	n := &PointCloud{}
	n.Points = append([]Vector(nil), c.Points...)
	if c.Normals != nil {
		n.Normals = append([]Vector(nil), c.Normals...)
	}
	if c.Colors != nil {
		n.Colors = append([]Color(nil), c.Colors...)
	}
	return n
}

func (c *PointCloud) BoundingBox() Box {
	if c.box == nil {
		box := BoxForPoints(c.Points)
		c.box = &box
	}
	return *c.box
}

// Centroid is the mean of all points.
func (c *PointCloud) Centroid() Vector {
	if len(c.Points) == 0 {
		return Vector{}
	}
	sum := Vector{}
	for _, p := range c.Points {
		sum = sum.Add(p)
	}
	return sum.DivScalar(float64(len(c.Points)))
}

func (c *PointCloud) Translate(v Vector) {
	for i := range c.Points {
		c.Points[i] = c.Points[i].Add(v)
	}
	c.box = nil
}

// SetColor paints every point uniformly.
func (c *PointCloud) SetColor(col Color) {
	if c.Colors == nil {
		c.Colors = make([]Color, len(c.Points))
	}
	for i := range c.Colors {
		c.Colors[i] = col
	}
}
