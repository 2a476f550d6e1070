package pointlab

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadOBJ reads an OBJ file as a point cloud: every v line becomes a
// point, and vn lines are attached as normals when they pair up
// one-to-one with the vertices. Faces are ignored.
func LoadOBJ(path string) (*PointCloud, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return LoadOBJFromReader(file)
}

func LoadOBJFromBytes(b []byte) (*PointCloud, error) {
	return LoadOBJFromReader(bytes.NewReader(b))
}

func LoadOBJFromReader(r io.Reader) (*PointCloud, error) {
	cloud := &PointCloud{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) < 2 || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}
		switch fields[0] {
		case "v":
			cloud.Points = append(cloud.Points, Vector{pf(fields[1]), pf(fields[2]), pf(fields[3])})
		case "vn":
			cloud.Normals = append(cloud.Normals, Vector{pf(fields[1]), pf(fields[2]), pf(fields[3])})
		}
	}
	if len(cloud.Normals) != len(cloud.Points) {
		cloud.Normals = nil
	}
	return cloud, scanner.Err()
}

// SaveOBJ writes the mesh with per-vertex normals; OBJ carries no
// vertex colors so they are dropped here.
func SaveOBJ(path string, mesh *Mesh) error {
	file, err := os.Create(path)
	if err != nil {
		return &SaveError{path, err}
	}
	defer file.Close()
	w := bufio.NewWriter(file)

	for _, t := range mesh.Triangles {
		for _, v := range []Vertex{t.V1, t.V2, t.V3} {
			fmt.Fprintf(w, "v %g %g %g\n", v.Position.X, v.Position.Y, v.Position.Z)
		}
	}
	for _, t := range mesh.Triangles {
		for _, v := range []Vertex{t.V1, t.V2, t.V3} {
			fmt.Fprintf(w, "vn %g %g %g\n", v.Normal.X, v.Normal.Y, v.Normal.Z)
		}
	}
	for i := range mesh.Triangles {
		a, b, c := i*3+1, i*3+2, i*3+3
		fmt.Fprintf(w, "f %d//%d %d//%d %d//%d\n", a, a, b, b, c, c)
	}
	if err := w.Flush(); err != nil {
		return &SaveError{path, err}
	}
	return nil
}
