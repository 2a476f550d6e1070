package pointlab

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// LoadPLY reads the vertex element of an ascii or binary little-endian
// PLY file as a point cloud. Face elements, if present, are skipped;
// the whole pipeline treats inputs as clouds.
func LoadPLY(path string) (*PointCloud, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return LoadPLYFromReader(file)
}

type plyProperty struct {
	name string
	size int
	f    bool // float32/float64 as opposed to an integer type
}

func plyTypeInfo(t string) (int, bool, error) {
	switch t {
	case "char", "uchar", "int8", "uint8":
		return 1, false, nil
	case "short", "ushort", "int16", "uint16":
		return 2, false, nil
	case "int", "uint", "int32", "uint32":
		return 4, false, nil
	case "float", "float32":
		return 4, true, nil
	case "double", "float64":
		return 8, true, nil
	}
	return 0, false, fmt.Errorf("ply: unknown property type %q", t)
}

func LoadPLYFromReader(r io.Reader) (*PointCloud, error) {
	br := bufio.NewReader(r)
	magic, err := br.ReadString('\n')
	if err != nil || strings.TrimSpace(magic) != "ply" {
		return nil, fmt.Errorf("ply: bad magic")
	}

	format := ""
	vertexCount := 0
	var props []plyProperty
	inVertex := false
	headerDone := false
	for !headerDone {
		line, err := br.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("ply header: %v", err)
		}
		fields := strings.Fields(strings.TrimSpace(line))
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "comment", "obj_info":
		case "format":
			format = fields[1]
		case "element":
			inVertex = fields[1] == "vertex"
			if inVertex {
				vertexCount, _ = strconv.Atoi(fields[2])
			}
		case "property":
			if inVertex && fields[1] != "list" {
				size, isFloat, err := plyTypeInfo(fields[1])
				if err != nil {
					return nil, err
				}
				props = append(props, plyProperty{fields[2], size, isFloat})
			}
		case "end_header":
			headerDone = true
		}
	}

	idx := map[string]int{}
	for i, p := range props {
		idx[p.name] = i
	}
	xi, xok := idx["x"]
	yi, yok := idx["y"]
	zi, zok := idx["z"]
	if !xok || !yok || !zok {
		return nil, fmt.Errorf("ply: vertex element lacks x/y/z properties")
	}
	// Normals and colors are consumed only as complete triples.
	ni, nok := idx["nx"]
	nj, njok := idx["ny"]
	nk, nkok := idx["nz"]
	hasNormals := nok && njok && nkok
	ri, rok := idx["red"]
	gi, gok := idx["green"]
	bi, bok := idx["blue"]
	hasColors := rok && gok && bok

	cloud := &PointCloud{}
	add := func(vals []float64) {
		cloud.Points = append(cloud.Points, Vector{vals[xi], vals[yi], vals[zi]})
		if hasNormals {
			cloud.Normals = append(cloud.Normals, Vector{vals[ni], vals[nj], vals[nk]})
		}
		if hasColors {
			cloud.Colors = append(cloud.Colors, Color{vals[ri] / 255, vals[gi] / 255, vals[bi] / 255, 1})
		}
	}

	switch format {
	case "ascii":
		scanner := bufio.NewScanner(br)
		for i := 0; i < vertexCount && scanner.Scan(); i++ {
			fields := strings.Fields(scanner.Text())
			if len(fields) < len(props) {
				return nil, fmt.Errorf("ply: short vertex row %d", i)
			}
			vals := make([]float64, len(props))
			for j := range props {
				vals[j] = pf(fields[j])
			}
			add(vals)
		}
		return cloud, scanner.Err()
	case "binary_little_endian":
		stride := 0
		for _, p := range props {
			stride += p.size
		}
		row := make([]byte, stride)
		for i := 0; i < vertexCount; i++ {
			if _, err := io.ReadFull(br, row); err != nil {
				return nil, fmt.Errorf("ply data: %v", err)
			}
			vals := make([]float64, len(props))
			off := 0
			for j, p := range props {
				switch {
				case p.f && p.size == 4:
					vals[j] = float64(math.Float32frombits(binary.LittleEndian.Uint32(row[off:])))
				case p.f && p.size == 8:
					vals[j] = math.Float64frombits(binary.LittleEndian.Uint64(row[off:]))
				case p.size == 1:
					vals[j] = float64(row[off])
				case p.size == 2:
					vals[j] = float64(binary.LittleEndian.Uint16(row[off:]))
				case p.size == 4:
					vals[j] = float64(binary.LittleEndian.Uint32(row[off:]))
				}
				off += p.size
			}
			add(vals)
		}
		return cloud, nil
	}
	return nil, fmt.Errorf("ply format %q: %w", format, ErrUnsupportedFormat)
}

// SavePLY writes an ascii PLY mesh with per-vertex normals and colors.
func SavePLY(path string, mesh *Mesh) error {
	file, err := os.Create(path)
	if err != nil {
		return &SaveError{path, err}
	}
	defer file.Close()
	w := bufio.NewWriter(file)

	nv := len(mesh.Triangles) * 3
	fmt.Fprintln(w, "ply")
	fmt.Fprintln(w, "format ascii 1.0")
	fmt.Fprintf(w, "element vertex %d\n", nv)
	for _, p := range []string{"x", "y", "z"} {
		fmt.Fprintf(w, "property float %s\n", p)
	}
	for _, p := range []string{"nx", "ny", "nz"} {
		fmt.Fprintf(w, "property float %s\n", p)
	}
	for _, p := range []string{"red", "green", "blue"} {
		fmt.Fprintf(w, "property uchar %s\n", p)
	}
	fmt.Fprintf(w, "element face %d\n", len(mesh.Triangles))
	fmt.Fprintln(w, "property list uchar int vertex_indices")
	fmt.Fprintln(w, "end_header")

	for _, t := range mesh.Triangles {
		for _, v := range []Vertex{t.V1, t.V2, t.V3} {
			c := v.Color.NRGBA()
			fmt.Fprintf(w, "%g %g %g %g %g %g %d %d %d\n",
				v.Position.X, v.Position.Y, v.Position.Z,
				v.Normal.X, v.Normal.Y, v.Normal.Z,
				c.R, c.G, c.B)
		}
	}
	for i := range mesh.Triangles {
		fmt.Fprintf(w, "3 %d %d %d\n", i*3, i*3+1, i*3+2)
	}
	if err := w.Flush(); err != nil {
		return &SaveError{path, err}
	}
	return nil
}
