// Package declutter decides which labels are drawn on a crowded canvas.
//
// # Overview
//
// An investigation graph quickly reaches a density where drawing every
// label produces an unreadable smear. This package computes a screen-space
// bounding box and a priority for each candidate label, then greedily
// admits labels in priority order, rejecting any box that would collide
// with one already placed. Selected and highlighted nodes bypass the
// contest entirely so the analyst's focus never disappears.
//
// # Basic Usage
//
// Build candidates from projected node positions, compute boxes, and run
// the selector:
//
//	boxes := declutter.ComputeBoxes(cands, vp, fontScale, cfg)
//	visible := declutter.Select(boxes, selected, highlighted, nodeCount, cfg)
//	if visible.Has("person-1") {
//		// draw the label pill
//	}
//
// # Collision Strategies
//
// Two interchangeable [CollisionIndex] implementations are selected by node
// count. [ExactIndex] tests margin-expanded rectangles against every placed
// box and is exact. [SpatialIndex] quantizes the plane into a uniform grid
// and trades density for constant-time checks; its approximation errs only
// toward rejecting placeable boxes, never toward admitting overlap.
//
// # Timing
//
// Boxes and the visible set are recomputed on zoom, pan, viewport, or data
// changes, throttled upstream. Nothing in this package is called per
// animation frame; renderers consume the last computed set.
//
// All tuning values live in [Config] and default via [DefaultConfig]; the
// zero Config is usable and behaves like the default.
package declutter
