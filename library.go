package pointlab

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Library is the geometry capability the pipeline runs against. The
// default implementation lives in this package; tests substitute
// slow or failing fakes.
type Library interface {
	Load(path string) (*PointCloud, error)
	EstimateAndOrientNormals(c *PointCloud) (*PointCloud, error)
	ReconstructPoisson(c *PointCloud, depth int) (*Mesh, error)
	ReconstructBallPivoting(c *PointCloud, radii []float64) (*Mesh, error)
	NearestNeighborDistances(c *PointCloud) []float64
}

var cloudLoaders = map[string]func(string) (*PointCloud, error){
	".xyz": LoadXYZ,
	".pcd": LoadPCD,
	".ply": LoadPLY,
	".obj": LoadOBJ,
}

// StdLibrary implements Library with the in-package reconstruction
// code.
type StdLibrary struct {
	// NormalNeighbors is the k used for PCA normal estimation.
	NormalNeighbors int
}

func NewStdLibrary() *StdLibrary {
	return &StdLibrary{NormalNeighbors: 30}
}

func (l *StdLibrary) Load(path string) (*PointCloud, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %v", path, err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	loader, ok := cloudLoaders[ext]
	if !ok {
		return nil, fmt.Errorf("%s: %w", ext, ErrUnsupportedFormat)
	}
	cloud, err := loader(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	cloud = dropNonFinite(cloud)
	if len(cloud.Points) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyGeometry)
	}
	return cloud, nil
}

// dropNonFinite removes points whose coordinates parsed to NaN or an
// infinity; a single such point would poison every bounding box and
// kd-tree downstream.
func dropNonFinite(c *PointCloud) *PointCloud {
	finite := 0
	for _, p := range c.Points {
		if p.IsFinite() {
			finite++
		}
	}
	if finite == len(c.Points) {
		return c
	}
	out := &PointCloud{}
	for i, p := range c.Points {
		if !p.IsFinite() {
			continue
		}
		out.Points = append(out.Points, p)
		if c.HasNormals() {
			out.Normals = append(out.Normals, c.Normals[i])
		}
		if c.HasColors() {
			out.Colors = append(out.Colors, c.Colors[i])
		}
	}
	return out
}

func (l *StdLibrary) EstimateAndOrientNormals(c *PointCloud) (*PointCloud, error) {
	return EstimateNormals(c, l.NormalNeighbors)
}

func (l *StdLibrary) ReconstructPoisson(c *PointCloud, depth int) (*Mesh, error) {
	return ReconstructPoisson(c, depth)
}

func (l *StdLibrary) ReconstructBallPivoting(c *PointCloud, radii []float64) (*Mesh, error) {
	return ReconstructBallPivoting(c, radii)
}

func (l *StdLibrary) NearestNeighborDistances(c *PointCloud) []float64 {
	return NearestNeighborDistances(c)
}
