package pointlab

// Homogeneous clip planes: -w <= x,y,z <= w.
var clipPlanes = [6][4]float64{
	{1, 0, 0, 1},
	{-1, 0, 0, 1},
	{0, 1, 0, 1},
	{0, -1, 0, 1},
	{0, 0, 1, 1},
	{0, 0, -1, 1},
}

func clipDistance(v Vertex, p [4]float64) float64 {
	o := v.Output
	return o.X*p[0] + o.Y*p[1] + o.Z*p[2] + o.W*p[3]
}

func clipIntersect(a, b Vertex, da, db float64) Vertex {
	t := da / (da - db)
	v := Vertex{}
	v.Position = a.Position.Lerp(b.Position, t)
	v.Normal = a.Normal.Lerp(b.Normal, t).Normalize()
	v.Color = a.Color.Lerp(b.Color, t)
	v.Output = a.Output.Add(b.Output.Sub(a.Output).MulScalar(t))
	return v
}

// ClipTriangle clips against the six frustum planes and fans the
// resulting polygon back into triangles.
func ClipTriangle(t *Triangle) []*Triangle {
	output := []Vertex{t.V1, t.V2, t.V3}
	for _, plane := range clipPlanes {
		if len(output) == 0 {
			return nil
		}
		input := output
		output = nil
		s := input[len(input)-1]
		ds := clipDistance(s, plane)
		for _, e := range input {
			de := clipDistance(e, plane)
			if de >= 0 {
				if ds < 0 {
					output = append(output, clipIntersect(s, e, ds, de))
				}
				output = append(output, e)
			} else if ds >= 0 {
				output = append(output, clipIntersect(s, e, ds, de))
			}
			s, ds = e, de
		}
	}
	var result []*Triangle
	for i := 2; i < len(output); i++ {
		result = append(result, NewTriangle(output[0], output[i-1], output[i]))
	}
	return result
}
