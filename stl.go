package pointlab

import (
	"bufio"
	"encoding/binary"
	"math"
	"os"
)

// SaveSTL writes a binary STL: 80-byte header, uint32 triangle count,
// then 50 bytes per triangle (normal, three vertices, attribute word).
func SaveSTL(path string, mesh *Mesh) error {
	file, err := os.Create(path)
	if err != nil {
		return &SaveError{path, err}
	}
	defer file.Close()
	w := bufio.NewWriter(file)

	header := make([]byte, 80)
	copy(header, "pointlab mesh export")
	if _, err := w.Write(header); err != nil {
		return &SaveError{path, err}
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(mesh.Triangles))); err != nil {
		return &SaveError{path, err}
	}

	buf := make([]byte, 50)
	putVector := func(off int, v Vector) {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(float32(v.X)))
		binary.LittleEndian.PutUint32(buf[off+4:], math.Float32bits(float32(v.Y)))
		binary.LittleEndian.PutUint32(buf[off+8:], math.Float32bits(float32(v.Z)))
	}
	for _, t := range mesh.Triangles {
		putVector(0, t.Normal())
		putVector(12, t.V1.Position)
		putVector(24, t.V2.Position)
		putVector(36, t.V3.Position)
		buf[48], buf[49] = 0, 0
		if _, err := w.Write(buf); err != nil {
			return &SaveError{path, err}
		}
	}
	if err := w.Flush(); err != nil {
		return &SaveError{path, err}
	}
	return nil
}
