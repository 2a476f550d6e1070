package pointlab

import (
	"path/filepath"
	"strings"

	"github.com/fogleman/simplify"
)

// Decimate reduces the mesh to roughly factor of its triangles. The
// simplified mesh loses per-vertex attributes, so it is recolored with
// the source mesh's first corner color and given face normals.
func Decimate(m *Mesh, factor float64) *Mesh {
	if len(m.Triangles) == 0 || factor <= 0 || factor >= 1 {
		return m
	}
	triangles := make([]*simplify.Triangle, len(m.Triangles))
	for i, t := range m.Triangles {
		triangles[i] = simplify.NewTriangle(
			simplify.Vector{X: t.V1.Position.X, Y: t.V1.Position.Y, Z: t.V1.Position.Z},
			simplify.Vector{X: t.V2.Position.X, Y: t.V2.Position.Y, Z: t.V2.Position.Z},
			simplify.Vector{X: t.V3.Position.X, Y: t.V3.Position.Y, Z: t.V3.Position.Z},
		)
	}
	reduced := simplify.NewMesh(triangles).Simplify(factor)

	out := make([]*Triangle, len(reduced.Triangles))
	for i, t := range reduced.Triangles {
		out[i] = NewTriangleForPoints(
			Vector{t.V1.X, t.V1.Y, t.V1.Z},
			Vector{t.V2.X, t.V2.Y, t.V2.Z},
			Vector{t.V3.X, t.V3.Y, t.V3.Z},
		)
	}
	result := NewTriangleMesh(out)
	result.SetColor(m.Triangles[0].V1.Color)
	return result
}

// SaveMesh writes the mesh in the format named by the path extension
// (.ply, .obj or .stl), optionally decimating it first. A decimate
// factor outside (0, 1) means no decimation.
func SaveMesh(path string, m *Mesh, decimate float64) error {
	if decimate > 0 && decimate < 1 {
		m = Decimate(m, decimate)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ply":
		return SavePLY(path, m)
	case ".obj":
		return SaveOBJ(path, m)
	case ".stl":
		return SaveSTL(path, m)
	}
	return &SaveError{path, ErrUnsupportedFormat}
}
