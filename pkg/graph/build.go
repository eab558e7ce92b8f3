package graph

import (
	"cmp"
	"slices"

	"github.com/charmbracelet/log"
)

// DefaultCurvatureStep is the curvature offset between adjacent parallel
// edges. Tuned visually: large enough that three parallel edges read as
// distinct arcs, small enough that fans stay near the chord.
const DefaultCurvatureStep = 0.2

// BuildOption configures Build.
type BuildOption func(*builder)

type builder struct {
	step   float64
	logger *log.Logger
}

// WithCurvatureStep overrides the curvature offset between parallel edges.
func WithCurvatureStep(step float64) BuildOption {
	return func(b *builder) { b.step = step }
}

// WithBuildLogger attaches a logger for per-record diagnostics. Dropped
// records are logged at debug level; without a logger they are only counted.
func WithBuildLogger(logger *log.Logger) BuildOption {
	return func(b *builder) { b.logger = logger }
}

// Build converts raw node and edge records into a fully derived graph.
//
// Build is the lenient entry point for data that arrives from imports or the
// HTTP API: duplicate node ids and edges referencing unknown nodes are
// dropped and counted, never surfaced as errors, because a malformed record
// must not take down rendering. Adjacency is built in one pass over the
// edges, and parallel-edge curvature is assigned before returning.
func Build(nodes []Node, edges []Edge, opts ...BuildOption) *Graph {
	b := builder{step: DefaultCurvatureStep}
	for _, opt := range opts {
		opt(&b)
	}

	g := New(nil)
	for _, n := range nodes {
		if err := g.AddNode(n); err != nil {
			g.droppedNodes++
			if b.logger != nil {
				b.logger.Debug("dropped node record", "id", n.ID, "reason", err)
			}
		}
	}

	for _, e := range edges {
		_, okS := g.nodes[e.Source]
		_, okD := g.nodes[e.Target]
		if !okS || !okD {
			g.droppedEdges++
			if b.logger != nil {
				b.logger.Debug("dropped edge with unknown endpoint", "source", e.Source, "target", e.Target)
			}
			continue
		}
		g.appendEdge(e)
	}

	g.AssignCurvatures(b.step)
	return g
}

// AssignCurvatures recomputes Curvature, GroupIndex, and GroupSize for every
// edge. Edges are grouped by their unordered endpoint pair; within a group
// of size g, member index i receives curvature (i - (g-1)/2) * step, so a
// lone edge is exactly straight and parallel edges fan out symmetrically
// around the straight line. Group membership order is edge insertion order.
//
// Call this after mutating the edge set through AddEdge. Build calls it
// automatically.
func (g *Graph) AssignCurvatures(step float64) {
	groups := make(map[string][]int)
	for i, e := range g.edges {
		key := pairKey(e.Source, e.Target)
		groups[key] = append(groups[key], i)
	}

	for _, idxs := range groups {
		size := len(idxs)
		mid := float64(size-1) / 2
		for j, idx := range idxs {
			g.edges[idx].GroupIndex = j
			g.edges[idx].GroupSize = size
			g.edges[idx].Curvature = (float64(j) - mid) * step
		}
	}
}

// WeightList returns node ids sorted descending by neighbor count, ties
// broken by insertion order. Consumers use it as a cheap "most informative
// first" ordering when the full declutter pass is skipped (tiny graphs,
// text-only exports).
func (g *Graph) WeightList() []string {
	ids := slices.Clone(g.order)
	slices.SortStableFunc(ids, func(a, b string) int {
		return cmp.Compare(len(g.neighbors[b]), len(g.neighbors[a]))
	})
	return ids
}
