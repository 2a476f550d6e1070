package pointlab

import (
	"errors"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/mat"
)

// EstimateNormals computes per-point normals by PCA over the k nearest
// neighbors and makes their orientation consistent. The input cloud is
// never mutated; the result is a new cloud sharing no storage with it.
func EstimateNormals(c *PointCloud, k int) (*PointCloud, error) {
	n := len(c.Points)
	if n == 0 {
		return nil, errors.New("cannot estimate normals of an empty cloud")
	}
	if k < 3 {
		k = 3
	}
	if k > n {
		k = n
	}
	out := c.Copy()
	out.Normals = make([]Vector, n)
	tree := NewKDTree(out.Points)

	var wg sync.WaitGroup
	wn := runtime.NumCPU()
	wg.Add(wn)
	for wi := 0; wi < wn; wi++ {
		go func(wi int) {
			defer wg.Done()
			for i := wi; i < n; i += wn {
				out.Normals[i] = pcaNormal(out.Points, tree.KNearest(out.Points[i], k))
			}
		}(wi)
	}
	wg.Wait()

	orientNormals(out, tree, k)
	return out, nil
}

// pcaNormal is the eigenvector of the neighborhood covariance with the
// smallest eigenvalue.
func pcaNormal(points []Vector, idx []int) Vector {
	if len(idx) < 3 {
		return Vector{0, 0, 1}
	}
	mean := Vector{}
	for _, j := range idx {
		mean = mean.Add(points[j])
	}
	mean = mean.DivScalar(float64(len(idx)))

	var xx, xy, xz, yy, yz, zz float64
	for _, j := range idx {
		d := points[j].Sub(mean)
		xx += d.X * d.X
		xy += d.X * d.Y
		xz += d.X * d.Z
		yy += d.Y * d.Y
		yz += d.Y * d.Z
		zz += d.Z * d.Z
	}
	cov := mat.NewSymDense(3, []float64{
		xx, xy, xz,
		xy, yy, yz,
		xz, yz, zz,
	})

	var eig mat.EigenSym
	if !eig.Factorize(cov, true) {
		return Vector{0, 0, 1}
	}
	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	// Eigenvalues come out ascending, so column 0 spans the direction
	// of least variance.
	normal := Vector{vecs.At(0, 0), vecs.At(1, 0), vecs.At(2, 0)}.Normalize()
	if normal == (Vector{}) {
		return Vector{0, 0, 1}
	}
	return normal
}

// orientNormals flood-fills a consistent orientation through the k-NN
// graph, seeding each connected component at its topmost point facing
// +Z.
func orientNormals(c *PointCloud, tree *KDTree, k int) {
	n := len(c.Points)
	visited := make([]bool, n)
	for {
		seed := -1
		for i := 0; i < n; i++ {
			if !visited[i] && (seed < 0 || c.Points[i].Z > c.Points[seed].Z) {
				seed = i
			}
		}
		if seed < 0 {
			return
		}
		if c.Normals[seed].Z < 0 {
			c.Normals[seed] = c.Normals[seed].Negate()
		}
		visited[seed] = true
		queue := []int{seed}
		for len(queue) > 0 {
			i := queue[0]
			queue = queue[1:]
			for _, j := range tree.KNearest(c.Points[i], k) {
				if visited[j] {
					continue
				}
				visited[j] = true
				if c.Normals[i].Dot(c.Normals[j]) < 0 {
					c.Normals[j] = c.Normals[j].Negate()
				}
				queue = append(queue, j)
			}
		}
	}
}
