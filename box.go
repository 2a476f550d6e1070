package pointlab

// Box is an axis-aligned bounding box.
type Box struct {
	Min, Max Vector
}

var EmptyBox = Box{}

func BoxForPoints(points []Vector) Box {
	if len(points) == 0 {
		return EmptyBox
	}
	min := points[0]
	max := points[0]
	for _, p := range points {
		min = min.Min(p)
		max = max.Max(p)
	}
	return Box{min, max}
}

func BoxForTriangles(triangles []*Triangle) Box {
	if len(triangles) == 0 {
		return EmptyBox
	}
	box := triangles[0].BoundingBox()
	for _, t := range triangles {
		box = box.Extend(t.BoundingBox())
	}
	return box
}

func (a Box) Center() Vector {
	return a.Min.Lerp(a.Max, 0.5)
}

func (a Box) Size() Vector {
	return a.Max.Sub(a.Min)
}

func (a Box) Extend(b Box) Box {
	if b == EmptyBox {
		return a
	}
	if a == EmptyBox {
		return b
	}
	return Box{a.Min.Min(b.Min), a.Max.Max(b.Max)}
}

func (a Box) Corners() []Vector {
	min := a.Min
	max := a.Max
	return []Vector{
		{min.X, min.Y, min.Z},
		{max.X, min.Y, min.Z},
		{min.X, max.Y, min.Z},
		{max.X, max.Y, min.Z},
		{min.X, min.Y, max.Z},
		{max.X, min.Y, max.Z},
		{min.X, max.Y, max.Z},
		{max.X, max.Y, max.Z},
	}
}

// Radius is the distance from the origin to the farthest corner.
func (a Box) Radius() float64 {
	r := 0.0
	for _, c := range a.Corners() {
		if d := c.Length(); d > r {
			r = d
		}
	}
	return r
}
