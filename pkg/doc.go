// Package pkg provides the core libraries for Linkboard investigation
// board rendering.
//
// # Overview
//
// Linkboard turns an investigation board (people, companies, accounts,
// and the links between them) into a legible chart: a layout positions
// the nodes, a declutter pass picks which labels fit, and a highlight
// pass keeps the entities an analyst is working with readable. The pkg
// directory is organized by pipeline stage plus the shared
// infrastructure underneath.
//
// # Architecture
//
// The typical data flow through Linkboard:
//
//	Board document (JSON/YAML, local file or URL)
//	         ↓
//	    [graph] package (document decode, graph build, curvature)
//	         ↓
//	    [layout] package (force simulation or Graphviz dot)
//	         ↓
//	    [declutter] + [interact] packages (visible labels, highlight)
//	         ↓
//	    [render] package (frame build, themes)
//	         ↓
//	    SVG/PNG/JSON artifacts, or live frames over a websocket
//
// # Quick Start
//
// Render a board to SVG through the pipeline:
//
//	import (
//	    "context"
//	    "github.com/casetrace/linkboard/pkg/cache"
//	    "github.com/casetrace/linkboard/pkg/pipeline"
//	)
//
//	c, _ := cache.NewFileCache(dir)
//	runner := pipeline.NewRunner(c, nil, logger)
//	defer runner.Close()
//
//	result, _ := runner.Execute(context.Background(), pipeline.Options{
//	    Source:  "board.json",
//	    Formats: []string{"svg"},
//	})
//	artifact := result.Artifacts["svg"]
//
// Drive a live session frame by frame:
//
//	g := graph.ToGraph(doc)
//	eng := engine.New(g, layout.NewForce(g, layout.ForceConfig{}), viewport.New(1280, 800))
//	frame := eng.Frame()
//
// # Main Packages
//
// ## Scene
//
// [graph] - Board documents and the in-memory graph: JSON/YAML decode,
// node/edge caps, neighbor indexes, and parallel-edge curvature.
//
// [layout] - Layout engines behind one interface: a force simulation
// with a cooldown budget, a Graphviz dot layout for layered boards, and
// a static engine for precomputed positions. All support pinning.
//
// [declutter] - The label selection pass: candidate boxes, a spatial
// index, and the priority sweep that decides which labels are visible
// at the current zoom.
//
// [interact] - Hover and selection state, and the spotlight set a
// highlight expands to (the node, its neighbors, incident edges).
//
// [viewport] - World-to-screen projection: pan, anchored zoom, and fit.
//
// ## Rendering
//
// [render] - Builds a drawable frame from scene state, resolves themes,
// and owns edge curve geometry. Subpackage [render/sink] serializes
// frames to SVG, PNG (headless Chrome), and JSON.
//
// [icons] - Node-type icon registry loaded from a directory of SVGs.
//
// [engine] - The per-session frame loop: applies interaction events,
// steps the layout, throttles declutter recomputes, and emits frames.
//
// ## Orchestration
//
// [pipeline] - Load, layout, and render stages with content-addressed
// caching between them. Used by the CLI, the preview server, and tests
// so every entry point behaves the same.
//
// ## Infrastructure
//
// [cache] - Byte caches (file, Redis, null) and the hash-based key
// scheme for pipeline stage outputs.
//
// [store] - Board persistence: file, memory, SQLite, and MongoDB
// backends behind one Store interface.
//
// [session] - Live session state for the preview server, file or
// memory backed.
//
// [settings] - The user settings file (TOML) with display and
// simulation knobs.
//
// [errors] - Coded errors and validation helpers shared across the
// module.
//
// [httputil] - Remote board fetching with retries and size limits.
//
// [observability] - Counters and timing hooks the engine and pipeline
// report through.
//
// [buildinfo] - Version metadata stamped at build time.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/declutter    # Specific package
//	go test -run Example       # Examples only
//
// [graph]: https://pkg.go.dev/github.com/casetrace/linkboard/pkg/graph
// [layout]: https://pkg.go.dev/github.com/casetrace/linkboard/pkg/layout
// [declutter]: https://pkg.go.dev/github.com/casetrace/linkboard/pkg/declutter
// [interact]: https://pkg.go.dev/github.com/casetrace/linkboard/pkg/interact
// [viewport]: https://pkg.go.dev/github.com/casetrace/linkboard/pkg/viewport
// [render]: https://pkg.go.dev/github.com/casetrace/linkboard/pkg/render
// [render/sink]: https://pkg.go.dev/github.com/casetrace/linkboard/pkg/render/sink
// [icons]: https://pkg.go.dev/github.com/casetrace/linkboard/pkg/icons
// [engine]: https://pkg.go.dev/github.com/casetrace/linkboard/pkg/engine
// [pipeline]: https://pkg.go.dev/github.com/casetrace/linkboard/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/casetrace/linkboard/pkg/cache
// [store]: https://pkg.go.dev/github.com/casetrace/linkboard/pkg/store
// [session]: https://pkg.go.dev/github.com/casetrace/linkboard/pkg/session
// [settings]: https://pkg.go.dev/github.com/casetrace/linkboard/pkg/settings
// [errors]: https://pkg.go.dev/github.com/casetrace/linkboard/pkg/errors
// [httputil]: https://pkg.go.dev/github.com/casetrace/linkboard/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/casetrace/linkboard/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/casetrace/linkboard/pkg/buildinfo
package pkg
