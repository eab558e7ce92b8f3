package graph

import (
	"encoding/json"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Layout algorithm names accepted across the CLI, pipeline, and server.
const (
	LayoutForce = "force"
	LayoutDot   = "dot"
)

// DefaultNodeType is assumed when a node record carries no semantic type.
// It resolves to the generic entity icon.
const DefaultNodeType = "entity"

// =============================================================================
// Document - Graph Serialization
// =============================================================================

// Document is the canonical serialization format for investigation graphs.
// Used for files, API responses, storage backends, and cross-tool
// compatibility.
//
// The format is human-readable and designed for round-trip fidelity:
// import → transform → export → re-import produces identical results.
// Derived fields (curvature, adjacency) are intentionally absent: they are
// recomputed by Build on load, so documents never go stale against the
// transformer.
type Document struct {
	Name  string         `json:"name,omitempty" bson:"name,omitempty"`
	Nodes []DocumentNode `json:"nodes" bson:"nodes"`
	Edges []DocumentEdge `json:"edges" bson:"edges"`
	Meta  map[string]any `json:"meta,omitempty" bson:"meta,omitempty"`
}

// DocumentNode is the serialized node record.
type DocumentNode struct {
	ID    string         `json:"id" bson:"id"`
	Label string         `json:"label,omitempty" bson:"label,omitempty"` // Display label (defaults to ID)
	Type  string         `json:"type,omitempty" bson:"type,omitempty"`   // Semantic type for icon/color lookup
	Val   float64        `json:"val,omitempty" bson:"val,omitempty"`     // Relative visual size multiplier
	Meta  map[string]any `json:"meta,omitempty" bson:"meta,omitempty"`
}

// DocumentEdge is the serialized edge record.
type DocumentEdge struct {
	Source string         `json:"source" bson:"source"`
	Target string         `json:"target" bson:"target"`
	Label  string         `json:"label,omitempty" bson:"label,omitempty"`
	Meta   map[string]any `json:"meta,omitempty" bson:"meta,omitempty"`
}

// =============================================================================
// Graph ↔ Document Conversion
// =============================================================================

// FromGraph converts a graph to its serialization format.
// Nodes and edges keep insertion order for deterministic output.
func FromGraph(g *Graph) Document {
	nodes := g.Nodes()
	out := Document{
		Nodes: make([]DocumentNode, len(nodes)),
		Edges: make([]DocumentEdge, g.EdgeCount()),
		Meta:  cleanMeta(g.meta),
	}

	for i, n := range nodes {
		out.Nodes[i] = DocumentNode{
			ID:    n.ID,
			Label: n.Label,
			Type:  n.Type,
			Val:   n.Val,
			Meta:  cleanMeta(n.Meta),
		}
	}

	for i, e := range g.edges {
		out.Edges[i] = DocumentEdge{
			Source: e.Source,
			Target: e.Target,
			Label:  e.Label,
			Meta:   cleanMeta(e.Meta),
		}
	}

	return out
}

// ToGraph converts a document to a derived graph via the lenient Build path:
// malformed records are dropped, not surfaced. Curvature and adjacency come
// back fully derived.
func ToGraph(doc Document, opts ...BuildOption) *Graph {
	nodes := make([]Node, len(doc.Nodes))
	for i, nd := range doc.Nodes {
		nodes[i] = Node{
			ID:    nd.ID,
			Label: nd.Label,
			Type:  nd.Type,
			Val:   nd.Val,
			Meta:  copyMeta(nd.Meta),
		}
	}

	edges := make([]Edge, len(doc.Edges))
	for i, ed := range doc.Edges {
		edges[i] = Edge{
			Source: ed.Source,
			Target: ed.Target,
			Label:  ed.Label,
			Meta:   copyMeta(ed.Meta),
		}
	}

	g := Build(nodes, edges, opts...)
	for k, v := range doc.Meta {
		g.meta[k] = v
	}
	return g
}

// UnmarshalDocument deserializes JSON bytes to a Document.
func UnmarshalDocument(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// MarshalDocument serializes a Document to indented JSON bytes.
func MarshalDocument(doc Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

// =============================================================================
// Internal Helpers
// =============================================================================

// copyMeta creates a shallow copy of metadata to avoid mutation.
func copyMeta(m map[string]any) Metadata {
	if m == nil {
		return nil
	}
	result := make(Metadata, len(m))
	for k, v := range m {
		result[k] = v
	}
	return result
}

// cleanMeta returns a shallow copy of metadata, or nil if empty, keeping
// omitempty effective in serialized output.
func cleanMeta(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	result := make(map[string]any, len(m))
	for k, v := range m {
		result[k] = v
	}
	return result
}
