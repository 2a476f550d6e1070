package pointlab

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigEmptyPathIsDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigOverridesTuning(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pointlab.toml")
	data := "poisson_depth = 6\nradius_ladder = [1.0, 3.0]\npoint_size = 5\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.PoissonDepth)
	assert.Equal(t, []float64{1, 3}, cfg.RadiusLadder)
	assert.Equal(t, 5, cfg.PointSize)
	// Keys absent from the file keep their defaults.
	assert.Equal(t, "localhost:8420", cfg.Addr)
	assert.Equal(t, DefaultRotationSpeed, cfg.RotationSpeed)
}
