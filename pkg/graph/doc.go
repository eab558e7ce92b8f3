// Package graph provides the render-ready entity graph used by the
// declutter and rendering pipeline.
//
// # Overview
//
// Linkboard visualizes investigation graphs: entities (people, accounts,
// devices, organizations) connected by relationships. This package owns the
// canonical in-memory structure those subsystems read: an arena of nodes
// indexed by id, with neighbor relationships stored as id lists resolved
// through the arena. Nodes never hold pointers to other nodes, so there are
// no reference cycles and no ownership ambiguity.
//
// # Basic Usage
//
// Raw records usually arrive as plain node and edge lists. [Build] converts
// them into a fully derived graph in one pass:
//
//	g := graph.Build(nodes, edges)
//	for _, id := range g.Neighbors("acct-17") {
//	    ...
//	}
//
// Build is lenient: edges referencing unknown node ids are dropped, counted,
// and never reported as errors. For strict incremental construction use
// [New], [Graph.AddNode], and [Graph.AddEdge], which do return errors.
//
// # Parallel Edges
//
// Multiple edges between the same pair of nodes are common (two accounts
// linked by several transfers). Build groups edges by their unordered
// endpoint pair and assigns each member a curvature offset so a lone edge
// renders straight while parallel edges fan out symmetrically. See
// [Graph.AssignCurvatures].
//
// # Serialization
//
// The [Document] type is the canonical JSON format for storage, the HTTP
// API, and cross-tool exchange. Convert with [FromGraph] and [ToGraph], or
// use the file helpers in io.go ([Import], [Export], [Read], [Write]).
//
// # Concurrency
//
// Graph instances are not safe for concurrent mutation. The rendering
// pipeline treats a built graph as read-only and replaces it wholesale on
// data changes, so reads from the frame loop need no synchronization.
package graph
