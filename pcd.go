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

// LoadPCD reads an ascii or binary little-endian PCD file. Only the
// x/y/z and normal_x/normal_y/normal_z fields are consumed; other
// fields are skipped by their declared size.
func LoadPCD(path string) (*PointCloud, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return LoadPCDFromReader(file)
}

type pcdField struct {
	name string
	size int
	typ  byte
}

func LoadPCDFromReader(r io.Reader) (*PointCloud, error) {
	br := bufio.NewReader(r)
	var fields []pcdField
	points := 0
	data := ""
	for data == "" {
		line, err := br.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("pcd header: %v", err)
		}
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Fields(line)
		switch parts[0] {
		case "FIELDS":
			fields = make([]pcdField, len(parts)-1)
			for i, name := range parts[1:] {
				fields[i] = pcdField{name: name, size: 4, typ: 'F'}
			}
		case "SIZE":
			for i, s := range parts[1:] {
				if i < len(fields) {
					fields[i].size, _ = strconv.Atoi(s)
				}
			}
		case "TYPE":
			for i, s := range parts[1:] {
				if i < len(fields) && len(s) > 0 {
					fields[i].typ = s[0]
				}
			}
		case "POINTS":
			points, _ = strconv.Atoi(parts[1])
		case "DATA":
			data = parts[1]
		}
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("pcd header: no FIELDS")
	}

	idx := map[string]int{}
	for i, f := range fields {
		idx[f.name] = i
	}
	xi, xok := idx["x"]
	yi, yok := idx["y"]
	zi, zok := idx["z"]
	if !xok || !yok || !zok {
		return nil, fmt.Errorf("pcd header: FIELDS lacks x/y/z")
	}
	// Normals are consumed only as a complete triple.
	ni, nok := idx["normal_x"]
	nj, njok := idx["normal_y"]
	nk, nkok := idx["normal_z"]
	hasNormals := nok && njok && nkok

	cloud := &PointCloud{}
	switch data {
	case "ascii":
		scanner := bufio.NewScanner(br)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			vals := strings.Fields(line)
			if len(vals) < len(fields) {
				continue
			}
			cloud.Points = append(cloud.Points, Vector{pf(vals[xi]), pf(vals[yi]), pf(vals[zi])})
			if hasNormals {
				cloud.Normals = append(cloud.Normals, Vector{pf(vals[ni]), pf(vals[nj]), pf(vals[nk])})
			}
		}
		return cloud, scanner.Err()
	case "binary":
		stride := 0
		offsets := make([]int, len(fields))
		for i, f := range fields {
			offsets[i] = stride
			stride += f.size
		}
		row := make([]byte, stride)
		for i := 0; i < points; i++ {
			if _, err := io.ReadFull(br, row); err != nil {
				return nil, fmt.Errorf("pcd data: %v", err)
			}
			read := func(fi int) float64 {
				f := fields[fi]
				off := offsets[fi]
				if f.typ == 'F' && f.size == 8 {
					return math.Float64frombits(binary.LittleEndian.Uint64(row[off:]))
				}
				return float64(math.Float32frombits(binary.LittleEndian.Uint32(row[off:])))
			}
			cloud.Points = append(cloud.Points, Vector{read(xi), read(yi), read(zi)})
			if hasNormals {
				cloud.Normals = append(cloud.Normals, Vector{read(ni), read(nj), read(nk)})
			}
		}
		return cloud, nil
	}
	return nil, fmt.Errorf("pcd data encoding %q: %w", data, ErrUnsupportedFormat)
}
