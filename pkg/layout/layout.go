// Package layout computes world-space node positions.
//
// # Overview
//
// Two position providers sit behind the [Engine] interface: a force-directed
// simulation ([Force]) that animates toward equilibrium tick by tick, and a
// Graphviz dot pass ([Dot]) that produces a settled hierarchical layout in
// one shot. The frame driver advances whichever engine is active via
// [Engine.Step] and reads [Engine.Positions] each frame.
//
// # Pinning
//
// Dragging a node pins it: a pinned node holds its position through
// simulation ticks until unpinned. Pins are part of the engine, not the
// persisted graph; they vanish with the engine instance.
package layout

import (
	"encoding/json"
)

// Point is a world-space position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Positions maps node ids to world-space points.
type Positions map[string]Point

// Bounds returns the axis-aligned bounding rectangle of all positions.
// ok is false for an empty map.
func (p Positions) Bounds() (minX, minY, maxX, maxY float64, ok bool) {
	first := true
	for _, pt := range p {
		if first {
			minX, maxX = pt.X, pt.X
			minY, maxY = pt.Y, pt.Y
			first = false
			continue
		}
		if pt.X < minX {
			minX = pt.X
		}
		if pt.X > maxX {
			maxX = pt.X
		}
		if pt.Y < minY {
			minY = pt.Y
		}
		if pt.Y > maxY {
			maxY = pt.Y
		}
	}
	return minX, minY, maxX, maxY, !first
}

// MarshalPositions serializes positions to JSON bytes. Map keys marshal
// in sorted order, so equal position sets produce identical bytes.
func MarshalPositions(p Positions) ([]byte, error) {
	return json.Marshal(p)
}

// UnmarshalPositions deserializes JSON bytes to positions.
func UnmarshalPositions(data []byte) (Positions, error) {
	var p Positions
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return p, nil
}

// Engine is a position provider driven by the frame loop.
//
// Step advances the engine one tick and reports whether it is still
// running; a settled engine returns false until reheated. Positions
// returns a snapshot safe to hold across ticks. Pin fixes a node at a
// point through subsequent ticks; Unpin releases it. Stop settles the
// engine immediately.
type Engine interface {
	Positions() Positions
	Step() bool
	Reheat()
	Pin(id string, p Point)
	Unpin(id string)
	Stop()
}
