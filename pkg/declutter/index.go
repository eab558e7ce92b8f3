package declutter

import "math"

// =============================================================================
// CollisionIndex Capability
// =============================================================================

// CollisionIndex records placed label boxes and rejects colliding
// candidates. Implementations differ in cost and precision but share one
// contract: a box that truly overlaps a placed box must never be admitted.
type CollisionIndex interface {
	// TryPlace admits and records the box iff it collides with nothing
	// already placed.
	TryPlace(box LabelBox) bool

	// Place records the box unconditionally. Used for pre-admitted
	// selection and highlight boxes, which may overlap each other but
	// must still block later candidates.
	Place(box LabelBox)
}

// NewIndex picks the collision strategy for a graph of nodeCount nodes:
// exact below the spatial threshold, grid-based at or above it.
func NewIndex(nodeCount int, cfg Config) CollisionIndex {
	cfg = cfg.withDefaults()
	if nodeCount >= cfg.SpatialThreshold {
		return NewSpatialIndex(cfg.CellSize)
	}
	return NewExactIndex(cfg.Margin)
}

// =============================================================================
// ExactIndex
// =============================================================================

// ExactIndex tests every candidate against all placed boxes with
// margin-expanded rectangle intersection. O(n) per check, precise.
type ExactIndex struct {
	margin float64
	placed []LabelBox
}

// NewExactIndex returns an empty exact index with the given margin.
func NewExactIndex(margin float64) *ExactIndex {
	return &ExactIndex{margin: margin}
}

// TryPlace implements [CollisionIndex].
func (x *ExactIndex) TryPlace(box LabelBox) bool {
	for _, p := range x.placed {
		if Overlaps(box, p, x.margin) {
			return false
		}
	}
	x.placed = append(x.placed, box)
	return true
}

// Place implements [CollisionIndex].
func (x *ExactIndex) Place(box LabelBox) {
	x.placed = append(x.placed, box)
}

// Placed returns the number of boxes recorded so far.
func (x *ExactIndex) Placed() int { return len(x.placed) }

// =============================================================================
// SpatialIndex
// =============================================================================

// SpatialIndex quantizes the plane into a uniform grid. Placing a box
// marks its covering cells plus the one-cell ring around them; a candidate
// collides if any of its covering cells is marked.
//
// The approximation is conservative on purpose. A box may be rejected that
// exact checking would admit, thinning dense regions slightly, but two
// truly overlapping boxes can never both be admitted: overlap implies a
// shared or adjacent covering cell, which the first placement marked.
type SpatialIndex struct {
	cellSize float64
	occupied map[cell]struct{}
	placed   int
}

type cell struct{ cx, cy int }

// NewSpatialIndex returns an empty grid index with the given cell size.
func NewSpatialIndex(cellSize float64) *SpatialIndex {
	return &SpatialIndex{
		cellSize: cellSize,
		occupied: make(map[cell]struct{}),
	}
}

// TryPlace implements [CollisionIndex].
func (s *SpatialIndex) TryPlace(box LabelBox) bool {
	x0, y0, x1, y1 := s.covering(box)
	for cx := x0; cx <= x1; cx++ {
		for cy := y0; cy <= y1; cy++ {
			if _, ok := s.occupied[cell{cx, cy}]; ok {
				return false
			}
		}
	}
	s.Place(box)
	return true
}

// Place implements [CollisionIndex].
func (s *SpatialIndex) Place(box LabelBox) {
	x0, y0, x1, y1 := s.covering(box)
	for cx := x0 - 1; cx <= x1+1; cx++ {
		for cy := y0 - 1; cy <= y1+1; cy++ {
			s.occupied[cell{cx, cy}] = struct{}{}
		}
	}
	s.placed++
}

// Placed returns the number of boxes recorded so far.
func (s *SpatialIndex) Placed() int { return s.placed }

// covering returns the inclusive cell range the box spans.
func (s *SpatialIndex) covering(box LabelBox) (x0, y0, x1, y1 int) {
	x0 = int(math.Floor(box.Left() / s.cellSize))
	x1 = int(math.Floor(box.Right() / s.cellSize))
	y0 = int(math.Floor(box.Top() / s.cellSize))
	y1 = int(math.Floor(box.Bottom() / s.cellSize))
	return x0, y0, x1, y1
}
