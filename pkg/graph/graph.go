package graph

import (
	"errors"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is
	// empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID already exists in the graph. Node IDs must be unique.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the Source
	// node does not exist in the graph.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the Target
	// node does not exist in the graph.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrInvalidEdgeEndpoint is returned by [Graph.Validate] when an edge
	// references a node that doesn't exist. This indicates graph corruption,
	// since both AddEdge and Build refuse such edges.
	ErrInvalidEdgeEndpoint = errors.New("invalid edge endpoint")
)

// Metadata stores arbitrary key-value pairs attached to nodes, edges, or the
// graph. It typically carries entity attributes surfaced in tooltips (case
// number, risk score, source system). Metadata maps are never nil after a
// node or edge is added - they are automatically initialized when needed.
type Metadata map[string]any

// Node represents an entity in the investigation graph.
//
// Positions are owned by the layout engine, not the node: this struct holds
// only identity and display attributes, so a graph can be shared between
// layout runs without copying.
type Node struct {
	ID    string   // Unique identifier
	Label string   // Display label (defaults to ID, see DisplayLabel)
	Type  string   // Semantic type, resolves icon and color by convention
	Val   float64  // Relative visual size multiplier (0 means 1.0)
	Meta  Metadata // Arbitrary key-value metadata (never nil after AddNode)
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// SizeVal returns the visual size multiplier, treating the zero value as 1.
func (n Node) SizeVal() float64 {
	if n.Val <= 0 {
		return 1
	}
	return n.Val
}

// Edge represents a directed relationship between two entities.
//
// Curvature, GroupIndex, and GroupSize are derived by [Graph.AssignCurvatures]
// (called automatically by [Build]): a lone edge between two nodes is straight
// (curvature 0), while parallel edges fan out symmetrically. Curvature is
// expressed relative to the edge's own direction of travel.
type Edge struct {
	Source string   // Source node ID
	Target string   // Target node ID
	Label  string   // Optional relationship label
	Meta   Metadata // Arbitrary key-value metadata (never nil after AddEdge)

	// Derived by AssignCurvatures. Immutable once derived, recomputed
	// whenever the edge set changes.
	Curvature  float64 // Bow offset, 0 for a straight edge
	GroupIndex int     // Position within the parallel-edge group
	GroupSize  int     // Total edges between the same unordered pair
}

// Key returns the canonical highlight key for the edge, "sourceId-targetId".
// Hover highlighting and the renderer address edges by this key.
func (e Edge) Key() string { return e.Source + "-" + e.Target }

// EdgeKey builds the canonical highlight key for a source/target pair without
// constructing an Edge value.
func EdgeKey(source, target string) string { return source + "-" + target }

// Graph is an arena of nodes indexed by id with derived adjacency.
//
// Iteration order over nodes is insertion order, which keeps every consumer
// downstream (priority sorting, label selection, draw-command emission)
// deterministic for a fixed input.
//
// The zero value is not usable - use New or Build to create an instance.
// Graph is not safe for concurrent mutation.
type Graph struct {
	nodes     map[string]*Node
	order     []string // node IDs in insertion order
	edges     []Edge
	neighbors map[string][]string // nodeID -> distinct neighbor IDs, first-seen order
	incident  map[string][]int    // nodeID -> indices into edges
	pairSeen  map[string]struct{} // unordered endpoint pairs already linked
	meta      Metadata

	droppedEdges int // edges discarded by Build for unknown endpoints
	droppedNodes int // duplicate node records discarded by Build
}

// New creates an empty graph with optional graph-level metadata.
// Graph-level metadata typically stores provenance (import source, case id).
func New(meta Metadata) *Graph {
	if meta == nil {
		meta = Metadata{}
	}
	return &Graph{
		nodes:     make(map[string]*Node),
		neighbors: make(map[string][]string),
		incident:  make(map[string][]int),
		pairSeen:  make(map[string]struct{}),
		meta:      meta,
	}
}

// Meta returns the graph-level metadata map.
// The returned map is never nil and can be safely modified.
func (g *Graph) Meta() Metadata { return g.meta }

// AddNode adds a node to the graph. Returns ErrInvalidNodeID if the node ID
// is empty, or ErrDuplicateNodeID if a node with the same ID already exists.
// The node's Meta field is automatically initialized to an empty map if nil.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	node := &n
	g.nodes[node.ID] = node
	g.order = append(g.order, node.ID)
	return nil
}

// AddEdge adds a directed edge between two existing nodes and updates the
// adjacency indices. Returns ErrUnknownSourceNode or ErrUnknownTargetNode if
// an endpoint doesn't exist. Multiple edges between the same nodes are
// allowed; call AssignCurvatures afterwards to re-derive their fan-out.
func (g *Graph) AddEdge(e Edge) error {
	if _, ok := g.nodes[e.Source]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := g.nodes[e.Target]; !ok {
		return ErrUnknownTargetNode
	}
	g.appendEdge(e)
	return nil
}

// appendEdge records an edge whose endpoints are known to exist.
func (g *Graph) appendEdge(e Edge) {
	if e.Meta == nil {
		e.Meta = Metadata{}
	}
	idx := len(g.edges)
	g.edges = append(g.edges, e)
	g.incident[e.Source] = append(g.incident[e.Source], idx)
	if e.Target != e.Source {
		g.incident[e.Target] = append(g.incident[e.Target], idx)
	}

	// Neighbor lists hold each counterpart once regardless of how many
	// parallel edges connect the pair. Self-loops add no neighbor.
	if e.Source == e.Target {
		return
	}
	key := pairKey(e.Source, e.Target)
	if _, ok := g.pairSeen[key]; ok {
		return
	}
	g.pairSeen[key] = struct{}{}
	g.neighbors[e.Source] = append(g.neighbors[e.Source], e.Target)
	g.neighbors[e.Target] = append(g.neighbors[e.Target], e.Source)
}

// Node returns the node with the given ID and true, or nil and false if not
// found. The pointer refers to the actual node in the arena.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes in insertion order.
// The returned slice contains pointers to the actual node structs.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, len(g.order))
	for i, id := range g.order {
		nodes[i] = g.nodes[id]
	}
	return nodes
}

// NodeIDs returns all node IDs in insertion order.
func (g *Graph) NodeIDs() []string { return slices.Clone(g.order) }

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Neighbors returns the distinct neighbor IDs of the node, in first-seen
// order, counting both edge directions. Returns nil for an unknown or
// isolated node. The returned slice is a read-only view.
func (g *Graph) Neighbors(id string) []string { return g.neighbors[id] }

// Degree returns the number of distinct neighbors of the node.
// Parallel edges count once; self-loops count zero.
func (g *Graph) Degree(id string) int { return len(g.neighbors[id]) }

// Incident returns copies of all edges touching the node, in insertion
// order. Both incoming and outgoing edges are included.
func (g *Graph) Incident(id string) []Edge {
	idxs := g.incident[id]
	if len(idxs) == 0 {
		return nil
	}
	out := make([]Edge, len(idxs))
	for i, idx := range idxs {
		out[i] = g.edges[idx]
	}
	return out
}

// DroppedEdges reports how many raw edges Build discarded because an
// endpoint did not resolve to a known node.
func (g *Graph) DroppedEdges() int { return g.droppedEdges }

// DroppedNodes reports how many duplicate node records Build discarded.
func (g *Graph) DroppedNodes() int { return g.droppedNodes }

// Validate checks graph integrity and returns nil if valid.
// It verifies that every edge connects existing nodes. Use this after
// deserializing untrusted documents before handing the graph to rendering.
func (g *Graph) Validate() error {
	for _, e := range g.edges {
		if _, ok := g.nodes[e.Source]; !ok {
			return ErrInvalidEdgeEndpoint
		}
		if _, ok := g.nodes[e.Target]; !ok {
			return ErrInvalidEdgeEndpoint
		}
	}
	return nil
}

// pairKey builds an unordered endpoint key so that a->b and b->a group
// together for curvature assignment and neighbor dedup.
func pairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "\x00" + b
}
