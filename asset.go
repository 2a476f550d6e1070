package pointlab

// Kind names one of the four artifacts a pipeline run produces.
type Kind int

const (
	KindRaw Kind = iota
	KindWithNormals
	KindPoisson
	KindBallPivot
)

var kindNames = map[Kind]string{
	KindRaw:         "raw",
	KindWithNormals: "withNormals",
	KindPoisson:     "poisson",
	KindBallPivot:   "ballPivot",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// ParseKind maps a selector name back to its Kind.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return k, true
		}
	}
	return 0, false
}

// AssetSet is the artifact set of one successful pipeline run. It is
// constructed whole and treated as immutable once published; viewports
// take centered copies and never write through these pointers.
type AssetSet struct {
	Source      string
	Raw         *PointCloud
	WithNormals *PointCloud
	Poisson     *Mesh
	BallPivot   *Mesh
}

// Get returns the artifact named by the selector, nil for an unknown
// kind.
func (s *AssetSet) Get(k Kind) Geometry {
	if s == nil {
		return nil
	}
	switch k {
	case KindRaw:
		return s.Raw
	case KindWithNormals:
		return s.WithNormals
	case KindPoisson:
		return s.Poisson
	case KindBallPivot:
		return s.BallPivot
	}
	return nil
}
