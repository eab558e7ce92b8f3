package declutter

import "slices"

// VisibleSet is the outcome of a selection pass: the node ids whose labels
// are drawn until the next recomputation.
type VisibleSet map[string]struct{}

// Has reports whether the id survived selection.
func (v VisibleSet) Has(id string) bool {
	_, ok := v[id]
	return ok
}

// Mode names the collision strategy used for a graph of nodeCount nodes.
func Mode(nodeCount int, cfg Config) string {
	if nodeCount >= cfg.withDefaults().SpatialThreshold {
		return "spatial"
	}
	return "exact"
}

// Select runs the greedy label contest and returns the visible set.
//
// Boxes whose node id is selected or highlighted are placed first,
// unconditionally; they may overlap each other, they seed the collision
// index against later candidates, and they count toward the cap. The
// remaining boxes are stable-sorted by priority descending (ties keep
// input order) and admitted one by one while no collision occurs and the
// cap is not reached. A rejected candidate is skipped permanently.
//
// The cap applies only at or above the spatial threshold; small graphs are
// bounded by collisions alone. Identical input yields an identical set.
func Select(boxes []LabelBox, selected, highlighted map[string]struct{}, nodeCount int, cfg Config) VisibleSet {
	cfg = cfg.withDefaults()
	idx := NewIndex(nodeCount, cfg)

	maxLabels := cfg.MaxLabels
	if nodeCount < cfg.SpatialThreshold {
		maxLabels = 0 // unbounded
	}

	visible := make(VisibleSet)
	placed := 0

	pinned := func(id string) bool {
		if _, ok := selected[id]; ok {
			return true
		}
		_, ok := highlighted[id]
		return ok
	}

	candidates := make([]LabelBox, 0, len(boxes))
	for _, box := range boxes {
		if pinned(box.NodeID) {
			idx.Place(box)
			visible[box.NodeID] = struct{}{}
			placed++
			continue
		}
		candidates = append(candidates, box)
	}

	slices.SortStableFunc(candidates, func(a, b LabelBox) int {
		switch {
		case a.Priority > b.Priority:
			return -1
		case a.Priority < b.Priority:
			return 1
		default:
			return 0
		}
	})

	for _, box := range candidates {
		if maxLabels > 0 && placed >= maxLabels {
			break
		}
		if idx.TryPlace(box) {
			visible[box.NodeID] = struct{}{}
			placed++
		}
	}

	return visible
}
