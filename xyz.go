package pointlab

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// LoadXYZ reads whitespace-separated "x y z [nx ny nz]" lines.
func LoadXYZ(path string) (*PointCloud, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return LoadXYZFromReader(file)
}

func LoadXYZFromReader(r io.Reader) (*PointCloud, error) {
	cloud := &PointCloud{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		cloud.Points = append(cloud.Points, Vector{pf(fields[0]), pf(fields[1]), pf(fields[2])})
		if len(fields) >= 6 {
			cloud.Normals = append(cloud.Normals, Vector{pf(fields[3]), pf(fields[4]), pf(fields[5])})
		}
	}
	if len(cloud.Normals) != len(cloud.Points) {
		cloud.Normals = nil
	}
	return cloud, scanner.Err()
}
