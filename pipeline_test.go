package pointlab

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLibrary runs the stages instantly on canned data and records the
// radii handed to ball pivoting.
type fakeLibrary struct {
	mu    sync.Mutex
	radii []float64
	depth int
	dists []float64

	loadErr    error
	normalsErr error

	// gate, when non-nil, blocks Load calls for gatePath until closed.
	gate     chan struct{}
	gatePath string
}

func (f *fakeLibrary) Load(path string) (*PointCloud, error) {
	if f.gate != nil && path == f.gatePath {
		<-f.gate
	}
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return NewPointCloud([]Vector{{0, 0, 0}, {0, 0, 1}, {0, 1, 0}}), nil
}

func (f *fakeLibrary) EstimateAndOrientNormals(c *PointCloud) (*PointCloud, error) {
	if f.normalsErr != nil {
		return nil, f.normalsErr
	}
	out := c.Copy()
	out.Normals = make([]Vector, len(out.Points))
	for i := range out.Normals {
		out.Normals[i] = Vector{0, 0, 1}
	}
	return out, nil
}

func (f *fakeLibrary) ReconstructPoisson(c *PointCloud, depth int) (*Mesh, error) {
	f.mu.Lock()
	f.depth = depth
	f.mu.Unlock()
	return NewTriangleMesh([]*Triangle{NewTriangleForPoints(
		Vector{0, 0, 0}, Vector{1, 0, 0}, Vector{0, 1, 0})}), nil
}

func (f *fakeLibrary) ReconstructBallPivoting(c *PointCloud, radii []float64) (*Mesh, error) {
	f.mu.Lock()
	f.radii = append([]float64(nil), radii...)
	f.mu.Unlock()
	return NewTriangleMesh([]*Triangle{NewTriangleForPoints(
		Vector{0, 0, 0}, Vector{0, 1, 0}, Vector{0, 0, 1})}), nil
}

func (f *fakeLibrary) NearestNeighborDistances(c *PointCloud) []float64 {
	return f.dists
}

func (f *fakeLibrary) ballPivotRadii() []float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.radii
}

func (f *fakeLibrary) poissonDepth() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.depth
}

func collectEvents(t *testing.T, run *Run) ([]Progress, Completion) {
	t.Helper()
	var progress []Progress
	var completion Completion
	sawCompletion := false
	for ev := range run.Events {
		switch ev := ev.(type) {
		case Progress:
			require.False(t, sawCompletion, "progress after terminal completion")
			progress = append(progress, ev)
		case Completion:
			require.False(t, sawCompletion, "second terminal event")
			sawCompletion = true
			completion = ev
		}
	}
	require.True(t, sawCompletion, "run ended without a terminal event")
	return progress, completion
}

func TestPipelineSuccessPublishesAllFourAtomically(t *testing.T) {
	store := NewStore()
	lib := &fakeLibrary{dists: []float64{1, 1, 1}}
	p := NewPipeline(lib, store)

	run := p.Start("cloud.xyz")
	progress, completion := collectEvents(t, run)

	require.NoError(t, completion.Err)
	require.NotNil(t, completion.Set)
	set := store.Current()
	require.Same(t, completion.Set, set)
	assert.NotNil(t, set.Raw)
	assert.NotNil(t, set.WithNormals)
	assert.NotNil(t, set.Poisson)
	assert.NotNil(t, set.BallPivot)
	assert.Equal(t, "cloud.xyz", set.Source)

	last := 0
	for _, ev := range progress {
		assert.GreaterOrEqual(t, ev.Percent, last)
		last = ev.Percent
	}
	assert.Equal(t, 100, last)
}

func TestPipelineRecolorsReconstructions(t *testing.T) {
	store := NewStore()
	p := NewPipeline(&fakeLibrary{dists: []float64{1, 1}}, store)
	_, completion := collectEvents(t, p.Start("cloud.xyz"))
	require.NoError(t, completion.Err)
	assert.Equal(t, PoissonColor, completion.Set.Poisson.Triangles[0].V1.Color)
	assert.Equal(t, BallPivotColor, completion.Set.BallPivot.Triangles[0].V1.Color)
}

func TestPipelineNormalsStagePreservesRawCloud(t *testing.T) {
	store := NewStore()
	p := NewPipeline(&fakeLibrary{dists: []float64{1, 1}}, store)
	_, completion := collectEvents(t, p.Start("cloud.xyz"))
	require.NoError(t, completion.Err)
	set := completion.Set
	assert.NotSame(t, set.Raw, set.WithNormals)
	assert.False(t, set.Raw.HasNormals())
	assert.True(t, set.WithNormals.HasNormals())
}

func TestPipelineFailureEmitsNoTerminalHundred(t *testing.T) {
	store := NewStore()
	lib := &fakeLibrary{normalsErr: errors.New("solver blew up")}
	p := NewPipeline(lib, store)

	progress, completion := collectEvents(t, p.Start("cloud.xyz"))
	require.Error(t, completion.Err)
	var rerr *ReconstructionError
	require.ErrorAs(t, completion.Err, &rerr)
	assert.Equal(t, "normal estimation", rerr.Stage)
	assert.Nil(t, completion.Set)
	assert.Nil(t, store.Current())
	for _, ev := range progress {
		assert.Less(t, ev.Percent, 100)
	}
}

func TestPipelineMissingFileNotFound(t *testing.T) {
	store := NewStore()
	p := NewPipeline(NewStdLibrary(), store)

	_, completion := collectEvents(t, p.Start(filepath.Join(t.TempDir(), "missing.ply")))
	require.Error(t, completion.Err)
	assert.ErrorIs(t, completion.Err, ErrNotFound)
	assert.Nil(t, store.Current())
}

func TestPipelineUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.gltf")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	_, completion := collectEvents(t, NewPipeline(NewStdLibrary(), NewStore()).Start(path))
	assert.ErrorIs(t, completion.Err, ErrUnsupportedFormat)
}

func TestPipelineEmptyCloud(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xyz")
	require.NoError(t, os.WriteFile(path, []byte("# nothing here\n"), 0o644))

	_, completion := collectEvents(t, NewPipeline(NewStdLibrary(), NewStore()).Start(path))
	assert.ErrorIs(t, completion.Err, ErrEmptyGeometry)
}

func TestPipelineRadiusLadderScaling(t *testing.T) {
	lib := &fakeLibrary{dists: []float64{1, 3}} // mean 2
	p := NewPipeline(lib, NewStore())
	_, completion := collectEvents(t, p.Start("cloud.xyz"))
	require.NoError(t, completion.Err)
	assert.Equal(t, []float64{2, 4, 8, 16, 32}, lib.ballPivotRadii())
}

func TestPipelineRadiusFallbackForTinyClouds(t *testing.T) {
	lib := &fakeLibrary{dists: nil} // fewer than 2 points: mean defaults to 1
	p := NewPipeline(lib, NewStore())
	_, completion := collectEvents(t, p.Start("cloud.xyz"))
	require.NoError(t, completion.Err)
	assert.Equal(t, []float64{1, 2, 4, 8, 16}, lib.ballPivotRadii())
}

func TestPipelineTuningReachesLibrary(t *testing.T) {
	lib := &fakeLibrary{dists: []float64{2, 2}} // mean 2
	p := NewPipeline(lib, NewStore())
	p.PoissonDepth = 6
	p.RadiusLadder = []float64{1, 3}

	_, completion := collectEvents(t, p.Start("cloud.xyz"))
	require.NoError(t, completion.Err)
	assert.Equal(t, 6, lib.poissonDepth())
	assert.Equal(t, []float64{2, 6}, lib.ballPivotRadii())
}

func TestPipelineDefaultTuning(t *testing.T) {
	lib := &fakeLibrary{dists: []float64{1, 1}}
	p := NewPipeline(lib, NewStore())
	_, completion := collectEvents(t, p.Start("cloud.xyz"))
	require.NoError(t, completion.Err)
	assert.Equal(t, DefaultPoissonDepth, lib.poissonDepth())
}

func TestPipelineSupersededRunIsDiscarded(t *testing.T) {
	store := NewStore()
	lib := &fakeLibrary{dists: []float64{1, 1}, gate: make(chan struct{}), gatePath: "a.xyz"}
	p := NewPipeline(lib, store)

	runA := p.Start("a.xyz") // its Load blocks on the gate
	runB := p.Start("b.xyz")

	_, completionB := collectEvents(t, runB)
	require.NoError(t, completionB.Err)
	require.Equal(t, "b.xyz", completionB.Set.Source)
	require.Equal(t, "b.xyz", store.Current().Source)

	close(lib.gate)
	_, completionA := collectEvents(t, runA)
	require.NoError(t, completionA.Err)

	// A finished computing, but its generation is stale: the consumer
	// must drop it and the store keeps B's set.
	assert.Less(t, completionA.Gen, p.Latest())
	assert.Equal(t, "b.xyz", store.Current().Source)
}

func TestPipelineEndToEndDegenerateCloud(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tri.xyz")
	require.NoError(t, os.WriteFile(path, []byte("0 0 0\n0 0 1\n0 1 0\n"), 0o644))

	store := NewStore()
	p := NewPipeline(NewStdLibrary(), store)
	progress, completion := collectEvents(t, p.Start(path))

	require.NoError(t, completion.Err)
	set := completion.Set
	assert.Len(t, set.Raw.Points, 3)
	assert.True(t, set.WithNormals.HasNormals())
	assert.NotNil(t, set.Poisson)
	assert.NotNil(t, set.BallPivot)
	assert.Equal(t, 100, progress[len(progress)-1].Percent)
}
