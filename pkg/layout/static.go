package layout

// Static serves a fixed set of positions. It backs frames driven by a
// cached layout, where the settling work happened in an earlier run.
type Static struct {
	pos    Positions
	pinned map[string]Point
}

// NewStatic creates an engine over pre-computed positions.
func NewStatic(pos Positions) *Static {
	return &Static{
		pos:    pos,
		pinned: make(map[string]Point),
	}
}

// Positions returns a snapshot with pins overlaid.
func (s *Static) Positions() Positions {
	out := make(Positions, len(s.pos))
	for id, p := range s.pos {
		out[id] = p
	}
	for id, p := range s.pinned {
		if _, ok := s.pos[id]; ok {
			out[id] = p
		}
	}
	return out
}

// Step reports settled; a static layout never moves on its own.
func (s *Static) Step() bool { return false }

// Reheat does nothing.
func (s *Static) Reheat() {}

// Stop does nothing.
func (s *Static) Stop() {}

// Pin fixes a node at a point.
func (s *Static) Pin(id string, p Point) {
	s.pinned[id] = p
}

// Unpin releases a pinned node.
func (s *Static) Unpin(id string) {
	delete(s.pinned, id)
}

var _ Engine = (*Static)(nil)
