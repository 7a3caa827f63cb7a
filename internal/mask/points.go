package mask

// Point is a single segmentation prompt seed in native frame pixel space.
// Points are immutable once created and only ever appended.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Label distinguishes target-region marks from exclusion marks.
type Label int

const (
	// Positive marks the region the segmentation should include.
	Positive Label = iota
	// Negative marks a region the segmentation should exclude.
	Negative
)

// PointSet holds the positive and negative prompt points for one mask pass.
// Insertion order is preserved; duplicates are legal and out-of-range points
// are not rejected here (the downstream segmentation contract is permissive).
type PointSet struct {
	Positive []Point `json:"positive"`
	Negative []Point `json:"negative"`
}

// NewPointSet returns an empty set with non-nil slices so the serialized form
// is always {"positive":[],"negative":[]} rather than nulls.
func NewPointSet() PointSet {
	return PointSet{Positive: []Point{}, Negative: []Point{}}
}

// Add appends a point under the given label.
func (s *PointSet) Add(label Label, p Point) {
	switch label {
	case Negative:
		s.Negative = append(s.Negative, p)
	default:
		s.Positive = append(s.Positive, p)
	}
}

// Len reports the total number of points across both labels.
func (s PointSet) Len() int {
	return len(s.Positive) + len(s.Negative)
}

// IsEmpty reports whether the set holds no points at all.
func (s PointSet) IsEmpty() bool {
	return s.Len() == 0
}

// Clone returns an independent copy of the set.
func (s PointSet) Clone() PointSet {
	out := PointSet{
		Positive: make([]Point, len(s.Positive)),
		Negative: make([]Point, len(s.Negative)),
	}
	copy(out.Positive, s.Positive)
	copy(out.Negative, s.Negative)
	return out
}

// Equal reports whether two sets hold identical points in identical order.
func (s PointSet) Equal(other PointSet) bool {
	if len(s.Positive) != len(other.Positive) || len(s.Negative) != len(other.Negative) {
		return false
	}
	for i := range s.Positive {
		if s.Positive[i] != other.Positive[i] {
			return false
		}
	}
	for i := range s.Negative {
		if s.Negative[i] != other.Negative[i] {
			return false
		}
	}
	return true
}

// Normalized returns the set with nil slices replaced by empty ones. Wire
// payloads that omit a label decode to nil; callers that serialize or render
// the set expect both slices present.
func (s PointSet) Normalized() PointSet {
	if s.Positive == nil {
		s.Positive = []Point{}
	}
	if s.Negative == nil {
		s.Negative = []Point{}
	}
	return s
}
