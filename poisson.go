package pointlab

import (
	"errors"
	"math"
	"runtime"
	"sync"
)

// ReconstructPoisson builds a watertight surface from an oriented point
// cloud. A signed indicator field is evaluated over a lattice whose
// resolution follows the octree depth (capped to keep the field in
// memory), where each sample takes the signed distance to the tangent
// plane of its nearest point; marching cubes then extracts the zero
// surface.
func ReconstructPoisson(c *PointCloud, depth int) (*Mesh, error) {
	if len(c.Points) == 0 {
		return NewEmptyMesh(), nil
	}
	if !c.HasNormals() {
		return nil, errors.New("poisson reconstruction requires an oriented cloud")
	}

	res := 1 << uint(depth)
	if res > 64 {
		res = 64
	}
	if res < 8 {
		res = 8
	}

	box := c.BoundingBox()
	size := box.Size()
	span := math.Max(size.X, math.Max(size.Y, size.Z))
	if span == 0 {
		span = 1
	}
	pad := span * 0.1
	origin := box.Min.Sub(Vector{pad, pad, pad})
	cell := (span + 2*pad) / float64(res)
	n := res + 1

	// Samples farther than the influence radius from every point are
	// treated as plain outside so the surface stays near the cloud.
	influence := 4 * cell

	field := make([]float64, n*n*n)
	tree := NewKDTree(c.Points)

	var wg sync.WaitGroup
	wn := runtime.NumCPU()
	wg.Add(wn)
	for wi := 0; wi < wn; wi++ {
		go func(wi int) {
			defer wg.Done()
			for k := wi; k < n; k += wn {
				for j := 0; j < n; j++ {
					for i := 0; i < n; i++ {
						p := Vector{
							origin.X + float64(i)*cell,
							origin.Y + float64(j)*cell,
							origin.Z + float64(k)*cell,
						}
						near, dist := tree.Nearest(p, -1)
						d := p.Sub(c.Points[near]).Dot(c.Normals[near])
						if dist > influence {
							d = dist
						}
						field[(k*n+j)*n+i] = d
					}
				}
			}
		}(wi)
	}
	wg.Wait()

	mesh := NewTriangleMesh(marchingCubes(field, n, n, n, origin, cell))
	return mesh, nil
}
