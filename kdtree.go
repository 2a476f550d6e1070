package pointlab

import (
	"math"
	"runtime"
	"sort"
	"sync"
)

// KDTree is a static 3-d tree over a point slice, used by the normal
// estimation and reconstruction stages.
type KDTree struct {
	points []Vector
	root   *kdNode
}

type kdNode struct {
	index       int
	axis        int
	left, right *kdNode
}

func component(v Vector, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	}
	return v.Z
}

func NewKDTree(points []Vector) *KDTree {
	t := &KDTree{points: points}
	indices := make([]int, len(points))
	for i := range indices {
		indices[i] = i
	}
	t.root = t.build(indices, 0)
	return t
}

func (t *KDTree) build(indices []int, depth int) *kdNode {
	if len(indices) == 0 {
		return nil
	}
	axis := depth % 3
	sort.Slice(indices, func(i, j int) bool {
		return component(t.points[indices[i]], axis) < component(t.points[indices[j]], axis)
	})
	mid := len(indices) / 2
	n := &kdNode{index: indices[mid], axis: axis}
	n.left = t.build(indices[:mid], depth+1)
	n.right = t.build(indices[mid+1:], depth+1)
	return n
}

// Nearest returns the index of the point closest to p and its distance,
// skipping the given index (pass a negative value to skip nothing).
func (t *KDTree) Nearest(p Vector, skip int) (int, float64) {
	best := -1
	bestDist := math.MaxFloat64
	t.nearest(t.root, p, skip, &best, &bestDist)
	if best < 0 {
		return -1, 0
	}
	return best, math.Sqrt(bestDist)
}

func (t *KDTree) nearest(n *kdNode, p Vector, skip int, best *int, bestDist *float64) {
	if n == nil {
		return
	}
	if n.index != skip {
		if d := p.DistanceSquared(t.points[n.index]); d < *bestDist {
			*bestDist = d
			*best = n.index
		}
	}
	delta := component(p, n.axis) - component(t.points[n.index], n.axis)
	near, far := n.left, n.right
	if delta > 0 {
		near, far = far, near
	}
	t.nearest(near, p, skip, best, bestDist)
	if delta*delta < *bestDist {
		t.nearest(far, p, skip, best, bestDist)
	}
}

type neighbor struct {
	index int
	dist  float64
}

// KNearest returns up to k point indices ordered by distance to p.
func (t *KDTree) KNearest(p Vector, k int) []int {
	if k <= 0 {
		return nil
	}
	nn := make([]neighbor, 0, k)
	t.knearest(t.root, p, k, &nn)
	out := make([]int, len(nn))
	for i, n := range nn {
		out[i] = n.index
	}
	return out
}

func (t *KDTree) knearest(n *kdNode, p Vector, k int, nn *[]neighbor) {
	if n == nil {
		return
	}
	d := p.DistanceSquared(t.points[n.index])
	insertNeighbor(nn, k, neighbor{n.index, d})
	delta := component(p, n.axis) - component(t.points[n.index], n.axis)
	near, far := n.left, n.right
	if delta > 0 {
		near, far = far, near
	}
	t.knearest(near, p, k, nn)
	if len(*nn) < k || delta*delta < (*nn)[len(*nn)-1].dist {
		t.knearest(far, p, k, nn)
	}
}

func insertNeighbor(nn *[]neighbor, k int, cand neighbor) {
	s := *nn
	if len(s) == k && cand.dist >= s[len(s)-1].dist {
		return
	}
	pos := sort.Search(len(s), func(i int) bool { return s[i].dist > cand.dist })
	if len(s) < k {
		s = append(s, neighbor{})
	}
	copy(s[pos+1:], s[pos:])
	s[pos] = cand
	*nn = s
}

// InRadius returns the indices of all points within r of p.
func (t *KDTree) InRadius(p Vector, r float64) []int {
	var out []int
	t.inRadius(t.root, p, r*r, &out)
	return out
}

func (t *KDTree) inRadius(n *kdNode, p Vector, r2 float64, out *[]int) {
	if n == nil {
		return
	}
	if p.DistanceSquared(t.points[n.index]) <= r2 {
		*out = append(*out, n.index)
	}
	delta := component(p, n.axis) - component(t.points[n.index], n.axis)
	near, far := n.left, n.right
	if delta > 0 {
		near, far = far, near
	}
	t.inRadius(near, p, r2, out)
	if delta*delta <= r2 {
		t.inRadius(far, p, r2, out)
	}
}

// NearestNeighborDistances computes, for every point, the distance to
// its closest other point. Returns nil for clouds with fewer than two
// points.
func NearestNeighborDistances(c *PointCloud) []float64 {
	n := len(c.Points)
	if n < 2 {
		return nil
	}
	tree := NewKDTree(c.Points)
	dists := make([]float64, n)
	var wg sync.WaitGroup
	wn := runtime.NumCPU()
	wg.Add(wn)
	for wi := 0; wi < wn; wi++ {
		go func(wi int) {
			defer wg.Done()
			for i := wi; i < n; i += wn {
				_, d := tree.Nearest(c.Points[i], i)
				dists[i] = d
			}
		}(wi)
	}
	wg.Wait()
	return dists
}
