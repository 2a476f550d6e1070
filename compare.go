package pointlab

import "sync"

// Side names one of the two comparison panes.
type Side int

const (
	SideLeft Side = iota
	SideRight
)

// Comparison binds two viewports to one shared asset set through two
// independent selectors. Changing one side's selector never touches
// the other side's viewport.
type Comparison struct {
	mu    sync.Mutex
	views [2]*Viewport
	kinds [2]Kind
	set   *AssetSet
}

// NewComparison starts with the poisson mesh on the left and the
// ball-pivoting mesh on the right.
func NewComparison(left, right *Viewport) *Comparison {
	return &Comparison{
		views: [2]*Viewport{left, right},
		kinds: [2]Kind{KindPoisson, KindBallPivot},
	}
}

// SetAssets swaps in a new asset set (or nil) and re-dispatches both
// sides' current selections.
func (c *Comparison) SetAssets(set *AssetSet) {
	c.mu.Lock()
	c.set = set
	c.mu.Unlock()
	c.dispatch(SideLeft)
	c.dispatch(SideRight)
}

// Select changes one side's selector and re-dispatches only that side.
func (c *Comparison) Select(side Side, k Kind) {
	c.mu.Lock()
	c.kinds[side] = k
	c.mu.Unlock()
	c.dispatch(side)
}

// Kind returns the current selector of a side.
func (c *Comparison) Kind(side Side) Kind {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kinds[side]
}

func (c *Comparison) dispatch(side Side) {
	c.mu.Lock()
	vp := c.views[side]
	g := c.set.Get(c.kinds[side])
	c.mu.Unlock()
	vp.SetGeometry(g)
}
