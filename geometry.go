package pointlab

// Geometry is either a *PointCloud or a *Mesh. The interface is sealed
// so call sites can switch over exactly two cases.
type Geometry interface {
	geometry()
}

func (*PointCloud) geometry() {}
func (*Mesh) geometry()       {}

// CenterCopy returns a copy of g translated so its centroid sits at the
// origin. The input is left untouched.
func CenterCopy(g Geometry) Geometry {
	switch g := g.(type) {
	case *PointCloud:
		c := g.Copy()
		c.Translate(c.Centroid().Negate())
		return c
	case *Mesh:
		m := g.Copy()
		m.Translate(m.Centroid().Negate())
		return m
	}
	return nil
}

// PaintGeometry repaints g uniformly in place.
func PaintGeometry(g Geometry, c Color) {
	switch g := g.(type) {
	case *PointCloud:
		g.SetColor(c)
	case *Mesh:
		g.SetColor(c)
	}
}

// RestoreColors copies the color attributes of src onto dst in place.
// Both sides must share topology, which holds for a centered copy and
// the asset it was derived from.
func RestoreColors(dst, src Geometry) {
	switch d := dst.(type) {
	case *PointCloud:
		s, ok := src.(*PointCloud)
		if !ok || len(s.Points) != len(d.Points) {
			return
		}
		if s.Colors == nil {
			d.Colors = nil
			return
		}
		d.Colors = append(d.Colors[:0], s.Colors...)
	case *Mesh:
		s, ok := src.(*Mesh)
		if !ok || len(s.Triangles) != len(d.Triangles) {
			return
		}
		for i, t := range d.Triangles {
			t.V1.Color = s.Triangles[i].V1.Color
			t.V2.Color = s.Triangles[i].V2.Color
			t.V3.Color = s.Triangles[i].V3.Color
		}
	}
}

// GeometryBox returns the bounding box of either variant.
func GeometryBox(g Geometry) Box {
	switch g := g.(type) {
	case *PointCloud:
		return g.BoundingBox()
	case *Mesh:
		return g.BoundingBox()
	}
	return EmptyBox
}
