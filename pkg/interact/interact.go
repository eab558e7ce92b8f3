// Package interact tracks hover-driven highlight state.
//
// Pointer events never recompute anything synchronously. Each event stores
// a pending update; the frame driver applies at most one pending update at
// the start of a frame via [Manager.Apply]. A burst of moves between two
// frames collapses to the newest one, so highlight recomputation cost is
// bounded by the frame rate, not the event rate.
//
// The applied [State] is replaced whole, never mutated, matching the
// read-then-replace frame model.
package interact

import (
	"sync/atomic"

	"github.com/casetrace/linkboard/pkg/graph"
)

// =============================================================================
// State
// =============================================================================

// State is one applied highlight snapshot: the node ids and edge keys to
// render highlighted. Treat it as read-only.
type State struct {
	NodeIDs  map[string]struct{}
	EdgeKeys map[string]struct{}

	// HoveredID is the node id under the pointer, or the empty string.
	// Hovering an edge highlights endpoints without a hovered node.
	HoveredID string
}

// Active reports whether any highlight is on, which switches the renderer
// into spotlight mode.
func (s State) Active() bool {
	return len(s.NodeIDs) > 0 || len(s.EdgeKeys) > 0
}

// HasNode reports whether the node id is highlighted.
func (s State) HasNode(id string) bool {
	_, ok := s.NodeIDs[id]
	return ok
}

// HasEdge reports whether the edge key ("sourceId-targetId") is highlighted.
func (s State) HasEdge(key string) bool {
	_, ok := s.EdgeKeys[key]
	return ok
}

// NodeSet returns the highlighted node ids for the selector. The returned
// map is the state's own; do not mutate.
func (s State) NodeSet() map[string]struct{} { return s.NodeIDs }

// =============================================================================
// Pending Updates
// =============================================================================

type hoverKind int

const (
	hoverOut hoverKind = iota
	hoverNode
	hoverEdge
)

type pendingHover struct {
	kind   hoverKind
	nodeID string
	source string
	target string
}

// =============================================================================
// Manager
// =============================================================================

// Manager owns the highlight state for one view. Event methods may be
// called from any goroutine; Apply and State belong to the frame driver.
type Manager struct {
	pending atomic.Pointer[pendingHover]
	state   State
	g       *graph.Graph
}

// NewManager returns a manager over the given graph with no highlight.
func NewManager(g *graph.Graph) *Manager {
	return &Manager{state: emptyState(), g: g}
}

// HoverNode records a pending node hover, replacing any earlier pending
// update.
func (m *Manager) HoverNode(id string) {
	m.pending.Store(&pendingHover{kind: hoverNode, nodeID: id})
}

// HoverEdge records a pending edge hover, replacing any earlier pending
// update.
func (m *Manager) HoverEdge(source, target string) {
	m.pending.Store(&pendingHover{kind: hoverEdge, source: source, target: target})
}

// HoverOut records a pending clear, replacing any earlier pending update.
func (m *Manager) HoverOut() {
	m.pending.Store(&pendingHover{kind: hoverOut})
}

// SetGraph swaps the underlying graph and fully resets highlight state,
// discarding any pending update. Called on data change.
func (m *Manager) SetGraph(g *graph.Graph) {
	m.g = g
	m.pending.Store(nil)
	m.state = emptyState()
}

// Apply consumes the pending update, if any, and replaces the state.
// It returns true when a recomputation happened. Called once at frame
// start by the frame driver.
func (m *Manager) Apply() bool {
	p := m.pending.Swap(nil)
	if p == nil {
		return false
	}
	m.state = m.compute(*p)
	return true
}

// State returns the current highlight snapshot.
func (m *Manager) State() State { return m.state }

func (m *Manager) compute(p pendingHover) State {
	switch p.kind {
	case hoverNode:
		return m.nodeHighlight(p.nodeID)
	case hoverEdge:
		return m.edgeHighlight(p.source, p.target)
	default:
		return emptyState()
	}
}

// nodeHighlight builds the spotlight for a hovered node: the node itself,
// every neighbor, and every incident edge key.
func (m *Manager) nodeHighlight(id string) State {
	if m.g == nil {
		return emptyState()
	}
	if _, ok := m.g.Node(id); !ok {
		return emptyState()
	}

	s := State{
		NodeIDs:   map[string]struct{}{id: {}},
		EdgeKeys:  make(map[string]struct{}),
		HoveredID: id,
	}
	for _, nb := range m.g.Neighbors(id) {
		s.NodeIDs[nb] = struct{}{}
	}
	for _, e := range m.g.Incident(id) {
		s.EdgeKeys[e.Key()] = struct{}{}
	}
	return s
}

// edgeHighlight builds the spotlight for a hovered edge: both endpoints
// and the edge's own key.
func (m *Manager) edgeHighlight(source, target string) State {
	if m.g == nil {
		return emptyState()
	}
	if _, ok := m.g.Node(source); !ok {
		return emptyState()
	}
	if _, ok := m.g.Node(target); !ok {
		return emptyState()
	}

	return State{
		NodeIDs: map[string]struct{}{
			source: {},
			target: {},
		},
		EdgeKeys: map[string]struct{}{
			graph.EdgeKey(source, target): {},
		},
	}
}

func emptyState() State {
	return State{
		NodeIDs:  map[string]struct{}{},
		EdgeKeys: map[string]struct{}{},
	}
}
