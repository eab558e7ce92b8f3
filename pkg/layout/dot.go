package layout

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/casetrace/linkboard/pkg/errors"
	"github.com/casetrace/linkboard/pkg/graph"
)

// Dot is a settled hierarchical layout computed once by Graphviz dot.
// Step never advances it; Pin overrides individual positions for drags.
type Dot struct {
	positions Positions
	pinned    map[string]Point
}

// NewDot lays out the graph with Graphviz dot and returns the settled
// engine. Node ids are mapped to synthetic names for the DOT round trip,
// so any id the graph accepts is safe here.
func NewDot(ctx context.Context, g *graph.Graph) (*Dot, error) {
	ids := g.NodeIDs()
	d := &Dot{
		positions: make(Positions, len(ids)),
		pinned:    make(map[string]Point),
	}
	if len(ids) == 0 {
		return d, nil
	}

	index := make(map[string]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}

	dot := buildDot(g, index)
	out, err := runDot(ctx, dot)
	if err != nil {
		return nil, err
	}

	raw := parseDotPositions(out)
	for i, id := range ids {
		pt, ok := raw[fmt.Sprintf("n%d", i)]
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidLayout,
				"dot output missing position for node %q", id)
		}
		// Graphviz grows y upward; screen space grows it downward.
		d.positions[id] = Point{X: pt.X, Y: -pt.Y}
	}
	return d, nil
}

// Positions implements [Engine], with pins applied over the settled
// layout.
func (d *Dot) Positions() Positions {
	out := make(Positions, len(d.positions))
	for id, pt := range d.positions {
		out[id] = pt
	}
	for id, pt := range d.pinned {
		if _, ok := out[id]; ok {
			out[id] = pt
		}
	}
	return out
}

// Step implements [Engine]. A dot layout is born settled.
func (d *Dot) Step() bool { return false }

// Reheat implements [Engine]. No-op for a settled layout.
func (d *Dot) Reheat() {}

// Stop implements [Engine]. No-op for a settled layout.
func (d *Dot) Stop() {}

// Pin implements [Engine].
func (d *Dot) Pin(id string, p Point) {
	if _, ok := d.positions[id]; ok {
		d.pinned[id] = p
	}
}

// Unpin implements [Engine].
func (d *Dot) Unpin(id string) {
	delete(d.pinned, id)
}

var _ Engine = (*Dot)(nil)

// buildDot emits layout-only DOT: synthetic node names, no labels, the
// hierarchy read top to bottom.
func buildDot(g *graph.Graph, index map[string]int) []byte {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  node [shape=circle, width=0.5, fixedsize=true];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")

	for i := 0; i < len(index); i++ {
		fmt.Fprintf(&buf, "  n%d;\n", i)
	}
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  n%d -> n%d;\n", index[e.Source], index[e.Target])
	}

	buf.WriteString("}\n")
	return buf.Bytes()
}

// runDot feeds DOT through Graphviz and returns attributed DOT with pos
// values filled in.
func runDot(ctx context.Context, dot []byte) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidLayout, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes(dot)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidLayout, err, "parse dot")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.XDOT, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidLayout, err, "run dot layout")
	}
	return buf.Bytes(), nil
}

var (
	// Node statements only: edge statements put "->" between name and
	// attributes and never match.
	nodeStmtRe = regexp.MustCompile(`(?ms)^\s*(n\d+)\s*\[(.*?)\];`)
	posAttrRe  = regexp.MustCompile(`pos="(-?[0-9.]+),(-?[0-9.]+)"`)
)

// parseDotPositions extracts pos attributes per synthetic node name.
func parseDotPositions(out []byte) map[string]Point {
	points := make(map[string]Point)
	for _, m := range nodeStmtRe.FindAllSubmatch(out, -1) {
		name := string(m[1])
		pos := posAttrRe.FindSubmatch(m[2])
		if pos == nil {
			continue
		}
		x, errX := strconv.ParseFloat(string(pos[1]), 64)
		y, errY := strconv.ParseFloat(string(pos[2]), 64)
		if errX != nil || errY != nil {
			continue
		}
		points[name] = Point{X: x, Y: y}
	}
	return points
}
