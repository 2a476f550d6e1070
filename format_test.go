package pointlab

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadXYZ(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cloud.xyz")
	data := "# comment\n0 0 0 0 0 1\n1 0 0 0 0 1\n\n0 1 0 0 0 1\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cloud, err := LoadXYZ(path)
	require.NoError(t, err)
	assert.Len(t, cloud.Points, 3)
	assert.True(t, cloud.HasNormals())
	assert.Equal(t, Vector{0, 0, 1}, cloud.Normals[0])
}

func TestLoadXYZWithoutNormals(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cloud.xyz")
	require.NoError(t, os.WriteFile(path, []byte("1 2 3\n4 5 6\n"), 0o644))
	cloud, err := LoadXYZ(path)
	require.NoError(t, err)
	assert.Len(t, cloud.Points, 2)
	assert.False(t, cloud.HasNormals())
}

func TestLoadOBJAsCloud(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.obj")
	data := "v 0 0 0\nv 1 0 0\nv 0 1 0\nvn 0 0 1\nvn 0 0 1\nvn 0 0 1\nf 1//1 2//2 3//3\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cloud, err := LoadOBJ(path)
	require.NoError(t, err)
	assert.Len(t, cloud.Points, 3)
	assert.True(t, cloud.HasNormals())
}

func TestLoadPCDAscii(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cloud.pcd")
	data := strings.Join([]string{
		"# .PCD v0.7 - Point Cloud Data file format",
		"VERSION 0.7",
		"FIELDS x y z",
		"SIZE 4 4 4",
		"TYPE F F F",
		"COUNT 1 1 1",
		"WIDTH 2",
		"HEIGHT 1",
		"VIEWPOINT 0 0 0 1 0 0 0",
		"POINTS 2",
		"DATA ascii",
		"0.5 0 0",
		"0 1.5 0",
		"",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cloud, err := LoadPCD(path)
	require.NoError(t, err)
	require.Len(t, cloud.Points, 2)
	assert.Equal(t, Vector{0.5, 0, 0}, cloud.Points[0])
	assert.Equal(t, Vector{0, 1.5, 0}, cloud.Points[1])
}

func TestLoadPCDRejectsMissingCoordinateField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flat.pcd")
	data := "FIELDS x z\nDATA ascii\n0 0\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	_, err := LoadPCD(path)
	assert.Error(t, err)
}

func TestLoadPCDIncompleteNormalTriple(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.pcd")
	data := "FIELDS x y z normal_x\nDATA ascii\n0 0 0 1\n1 0 0 1\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cloud, err := LoadPCD(path)
	require.NoError(t, err)
	assert.Len(t, cloud.Points, 2)
	assert.False(t, cloud.HasNormals())
}

func TestPLYMeshRoundTrip(t *testing.T) {
	mesh := NewTriangleMesh([]*Triangle{
		NewTriangleForPoints(Vector{0, 0, 0}, Vector{1, 0, 0}, Vector{0, 1, 0}),
	})
	mesh.SetColor(PoissonColor)

	path := filepath.Join(t.TempDir(), "mesh.ply")
	require.NoError(t, SavePLY(path, mesh))

	// The writer emits a mesh; the loader reads its vertex element
	// back as a cloud.
	cloud, err := LoadPLY(path)
	require.NoError(t, err)
	assert.Len(t, cloud.Points, 3)
	assert.True(t, cloud.HasNormals())
	require.True(t, cloud.HasColors())
	assert.InDelta(t, 1, cloud.Colors[0].B, 0.01)
}

func TestLoadPLYRejectsMissingCoordinateProperty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flat.ply")
	data := strings.Join([]string{
		"ply",
		"format ascii 1.0",
		"element vertex 1",
		"property float x",
		"property float z",
		"end_header",
		"0 0",
		"",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	_, err := LoadPLY(path)
	assert.Error(t, err)
}

func TestLoadPLYIncompleteNormalTriple(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.ply")
	data := strings.Join([]string{
		"ply",
		"format ascii 1.0",
		"element vertex 2",
		"property float x",
		"property float y",
		"property float z",
		"property float nx",
		"end_header",
		"0 0 0 1",
		"1 0 0 1",
		"",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cloud, err := LoadPLY(path)
	require.NoError(t, err)
	assert.Len(t, cloud.Points, 2)
	assert.False(t, cloud.HasNormals())
	assert.False(t, cloud.HasColors())
}

func TestSaveSTLLayout(t *testing.T) {
	mesh := NewTriangleMesh([]*Triangle{
		NewTriangleForPoints(Vector{0, 0, 0}, Vector{1, 0, 0}, Vector{0, 1, 0}),
		NewTriangleForPoints(Vector{0, 0, 0}, Vector{0, 1, 0}, Vector{0, 0, 1}),
	})
	path := filepath.Join(t.TempDir(), "mesh.stl")
	require.NoError(t, SaveSTL(path, mesh))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(80+4+2*50), info.Size())
}

func TestSaveMeshDispatch(t *testing.T) {
	mesh := NewTriangleMesh([]*Triangle{
		NewTriangleForPoints(Vector{0, 0, 0}, Vector{1, 0, 0}, Vector{0, 1, 0}),
	})
	dir := t.TempDir()
	for _, name := range []string{"m.ply", "m.obj", "m.stl"} {
		assert.NoError(t, SaveMesh(filepath.Join(dir, name), mesh, 0))
	}
	err := SaveMesh(filepath.Join(dir, "m.fbx"), mesh, 0)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	var serr *SaveError
	assert.ErrorAs(t, err, &serr)
}

func TestStdLibraryLoadErrors(t *testing.T) {
	lib := NewStdLibrary()

	_, err := lib.Load(filepath.Join(t.TempDir(), "missing.ply"))
	assert.ErrorIs(t, err, ErrNotFound)

	bad := filepath.Join(t.TempDir(), "scene.step")
	require.NoError(t, os.WriteFile(bad, []byte("x"), 0o644))
	_, err = lib.Load(bad)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	empty := filepath.Join(t.TempDir(), "empty.xyz")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = lib.Load(empty)
	assert.ErrorIs(t, err, ErrEmptyGeometry)
}

func TestStdLibraryDropsNonFinitePoints(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cloud.xyz")
	data := "0 0 0\nnan nan nan\n1 0 0\n-inf 0 1\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cloud, err := NewStdLibrary().Load(path)
	require.NoError(t, err)
	require.Len(t, cloud.Points, 2)
	for _, p := range cloud.Points {
		assert.True(t, p.IsFinite())
	}
}

func TestStdLibraryAllNonFiniteIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.xyz")
	require.NoError(t, os.WriteFile(path, []byte("nan nan nan\n"), 0o644))

	_, err := NewStdLibrary().Load(path)
	assert.ErrorIs(t, err, ErrEmptyGeometry)
}

func TestSaveImageDispatch(t *testing.T) {
	vp, _ := testViewport(t)
	vp.SetGeometry(testCloud())
	vp.Stop()
	img, err := vp.Still()
	require.NoError(t, err)

	dir := t.TempDir()
	for _, name := range []string{"s.png", "s.jpg", "s.gif", "s.bmp", "s.tiff"} {
		assert.NoError(t, SaveImage(filepath.Join(dir, name), img))
	}
	assert.ErrorIs(t, SaveImage(filepath.Join(dir, "s.webp"), img), ErrUnsupportedFormat)
}
