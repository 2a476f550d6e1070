package pointlab

import (
	"log"
	"sync/atomic"

	"gonum.org/v1/gonum/stat"
)

// Event is a sealed variant delivered on a run's channel: any number
// of Progress events in non-decreasing percent order, then exactly one
// Completion, then close.
type Event interface {
	pipelineEvent()
}

// Progress reports the stage about to run and how far the run is.
type Progress struct {
	Gen     uint64
	Stage   string
	Percent int
}

// Completion terminates a run's event stream with either the full
// artifact set or the failure that aborted it.
type Completion struct {
	Gen uint64
	Set *AssetSet
	Err error
}

func (Progress) pipelineEvent()   {}
func (Completion) pipelineEvent() {}

// Stage boundary percentages. Each stage emits its starting percent;
// a successful run ends with exactly 100.
const (
	percentLoad      = 0
	percentNormals   = 10
	percentPoisson   = 30
	percentBallPivot = 80
	percentDone      = 100
)

// BallPivotLadder is scaled by the cloud's mean nearest-neighbor
// distance to produce the ball-pivoting radii.
var BallPivotLadder = []float64{1, 2, 4, 8, 16}

// DefaultPoissonDepth is the octree depth of the Poisson stage.
const DefaultPoissonDepth = 8

// Pipeline sequences the reconstruction stages off the interactive
// goroutine. Each Start call supersedes the previous one: stale runs
// finish computing but their results are discarded by generation.
type Pipeline struct {
	lib   Library
	store *Store
	gen   atomic.Uint64

	// PoissonDepth and RadiusLadder tune the reconstruction stages;
	// adjust them before the first Start call.
	PoissonDepth int
	RadiusLadder []float64
}

// NewPipeline builds a coordinator over the given library; store may
// be nil when the caller publishes results itself.
func NewPipeline(lib Library, store *Store) *Pipeline {
	return &Pipeline{
		lib:          lib,
		store:        store,
		PoissonDepth: DefaultPoissonDepth,
		RadiusLadder: BallPivotLadder,
	}
}

// Run is one in-flight (or finished) pipeline execution.
type Run struct {
	Gen    uint64
	Events <-chan Event
}

// Latest returns the generation of the most recent Start call. A
// Completion whose Gen is older must be ignored by the consumer.
func (p *Pipeline) Latest() uint64 {
	return p.gen.Load()
}

// Start launches the stages on a new goroutine and returns the run
// handle. The returned channel is closed after the terminal event.
func (p *Pipeline) Start(path string) *Run {
	gen := p.gen.Add(1)
	events := make(chan Event, 16)
	go p.run(gen, path, events)
	return &Run{Gen: gen, Events: events}
}

func (p *Pipeline) run(gen uint64, path string, events chan<- Event) {
	defer close(events)
	fail := func(err error) {
		log.Printf("pointlab: pipeline run %d: %v", gen, err)
		events <- Completion{Gen: gen, Err: err}
	}

	events <- Progress{gen, "loading point cloud", percentLoad}
	raw, err := p.lib.Load(path)
	if err != nil {
		fail(err)
		return
	}

	events <- Progress{gen, "estimating normals", percentNormals}
	withNormals, err := p.lib.EstimateAndOrientNormals(raw)
	if err != nil {
		fail(&ReconstructionError{"normal estimation", err})
		return
	}

	events <- Progress{gen, "poisson reconstruction", percentPoisson}
	poisson, err := p.lib.ReconstructPoisson(withNormals, p.PoissonDepth)
	if err != nil {
		fail(&ReconstructionError{"poisson reconstruction", err})
		return
	}
	poisson.SetColor(PoissonColor)

	events <- Progress{gen, "ball pivoting", percentBallPivot}
	ballPivot, err := p.lib.ReconstructBallPivoting(withNormals, p.scaledRadii(withNormals))
	if err != nil {
		fail(&ReconstructionError{"ball pivoting", err})
		return
	}
	ballPivot.SetColor(BallPivotColor)

	set := &AssetSet{
		Source:      path,
		Raw:         raw,
		WithNormals: withNormals,
		Poisson:     poisson,
		BallPivot:   ballPivot,
	}
	events <- Progress{gen, "complete", percentDone}
	events <- Completion{Gen: gen, Set: set}
	if p.store != nil && p.gen.Load() == gen {
		p.store.Publish(set)
	}
}

// scaledRadii multiplies the radius ladder by the cloud's mean
// nearest-neighbor distance, falling back to 1.0 for clouds with fewer
// than two points.
func (p *Pipeline) scaledRadii(c *PointCloud) []float64 {
	mean := 1.0
	if dists := p.lib.NearestNeighborDistances(c); len(dists) >= 2 {
		mean = stat.Mean(dists, nil)
	}
	radii := make([]float64, len(p.RadiusLadder))
	for i, r := range p.RadiusLadder {
		radii[i] = r * mean
	}
	return radii
}
