package pointlab

import (
	"errors"
	"math"
	"sort"
)

// ReconstructBallPivoting connects an oriented point cloud into a
// triangle mesh. Candidate triangles are gathered from each point's
// neighborhood and accepted smallest circumscribed ball first, as long
// as the ball fits one of the given radii and no edge is shared by more
// than two faces.
func ReconstructBallPivoting(c *PointCloud, radii []float64) (*Mesh, error) {
	if !c.HasNormals() {
		return nil, errors.New("ball pivoting requires an oriented cloud")
	}
	rmax := 0.0
	for _, r := range radii {
		if r > rmax {
			rmax = r
		}
	}
	if rmax <= 0 {
		return nil, errors.New("ball pivoting requires a positive radius")
	}
	n := len(c.Points)
	if n < 3 {
		return NewEmptyMesh(), nil
	}

	tree := NewKDTree(c.Points)
	k := 12
	if k > n {
		k = n
	}

	type candidate struct {
		a, b, c int
		radius  float64
	}
	seen := make(map[[3]int]bool)
	var candidates []candidate
	for i := 0; i < n; i++ {
		nb := tree.KNearest(c.Points[i], k)
		for x := 0; x < len(nb); x++ {
			if nb[x] == i {
				continue
			}
			for y := x + 1; y < len(nb); y++ {
				if nb[y] == i {
					continue
				}
				key := sortedTriple(i, nb[x], nb[y])
				if seen[key] {
					continue
				}
				seen[key] = true
				r := circumradius(c.Points[key[0]], c.Points[key[1]], c.Points[key[2]])
				if r > rmax {
					continue
				}
				candidates = append(candidates, candidate{key[0], key[1], key[2], r})
			}
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].radius < candidates[j].radius
	})

	edgeUse := make(map[[2]int]int)
	var triangles []*Triangle
	for _, cd := range candidates {
		e1 := sortedPair(cd.a, cd.b)
		e2 := sortedPair(cd.b, cd.c)
		e3 := sortedPair(cd.a, cd.c)
		if edgeUse[e1] >= 2 || edgeUse[e2] >= 2 || edgeUse[e3] >= 2 {
			continue
		}
		edgeUse[e1]++
		edgeUse[e2]++
		edgeUse[e3]++
		triangles = append(triangles, cloudTriangle(c, cd.a, cd.b, cd.c))
	}
	return NewTriangleMesh(triangles), nil
}

// cloudTriangle builds a face over three cloud indices, carrying the
// point attributes and flipped to agree with the point normals.
func cloudTriangle(c *PointCloud, a, b, d int) *Triangle {
	t := &Triangle{}
	t.V1.Position = c.Points[a]
	t.V2.Position = c.Points[b]
	t.V3.Position = c.Points[d]
	t.V1.Normal = c.Normals[a]
	t.V2.Normal = c.Normals[b]
	t.V3.Normal = c.Normals[d]
	if c.HasColors() {
		t.V1.Color = c.Colors[a]
		t.V2.Color = c.Colors[b]
		t.V3.Color = c.Colors[d]
	}
	pointNormal := c.Normals[a].Add(c.Normals[b]).Add(c.Normals[d])
	if t.Normal().Dot(pointNormal) < 0 {
		t.V1, t.V3 = t.V3, t.V1
	}
	return t
}

func circumradius(a, b, c Vector) float64 {
	ab := b.Sub(a).Length()
	bc := c.Sub(b).Length()
	ca := a.Sub(c).Length()
	area := b.Sub(a).Cross(c.Sub(a)).Length() / 2
	if area < 1e-12 {
		return math.Inf(1)
	}
	return ab * bc * ca / (4 * area)
}

func sortedPair(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

func sortedTriple(a, b, c int) [3]int {
	if a > b {
		a, b = b, a
	}
	if b > c {
		b, c = c, b
	}
	if a > b {
		a, b = b, a
	}
	return [3]int{a, b, c}
}
