// Package engine drives the frame loop for one board session.
//
// # Overview
//
// An [Engine] owns the scene state a session accumulates: the graph, a
// layout engine, the viewport, hover and selection, and the visible-label
// set. Each [Engine.Frame] call applies at most one pending hover update,
// advances the layout one tick, runs any due label recompute, and builds
// a render frame:
//
//	e := engine.New(g, layout.NewForce(g), viewport.New(1280, 800))
//	for running {
//	    frame := e.Frame()
//	    emit(frame)
//	}
//
// # Recompute Throttling
//
// Label decluttering is the expensive pass, so it never runs per frame.
// Zoom, pan, data, and selection events mark the visible set dirty; the
// next frame recomputes it at most once per [DefaultRecomputeInterval],
// leading edge. Events landing inside the window keep the dirty mark,
// and the first frame after the window closes runs the trailing
// recompute. Hover is cheaper and is handled differently: moves collapse
// into a single pending update applied at the next frame start, and
// highlight-forced labels bypass the visible set entirely.
//
// An Engine is not safe for concurrent use. One goroutine drives it;
// callers on other goroutines go through a session wrapper.
package engine

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"github.com/casetrace/linkboard/pkg/declutter"
	"github.com/casetrace/linkboard/pkg/graph"
	"github.com/casetrace/linkboard/pkg/icons"
	"github.com/casetrace/linkboard/pkg/interact"
	"github.com/casetrace/linkboard/pkg/layout"
	"github.com/casetrace/linkboard/pkg/observability"
	"github.com/casetrace/linkboard/pkg/render"
	"github.com/casetrace/linkboard/pkg/viewport"
)

// DefaultRecomputeInterval is the declutter throttle window.
const DefaultRecomputeInterval = 200 * time.Millisecond

// Option configures an [Engine].
type Option func(*Engine)

// WithRenderConfig replaces the render configuration, including the
// declutter metrics embedded in it.
func WithRenderConfig(c render.Config) Option { return func(e *Engine) { e.cfg = c } }

// WithTheme sets the color theme.
func WithTheme(t render.Theme) Option { return func(e *Engine) { e.theme = t } }

// WithIcons attaches an icon registry for node-type glyphs.
func WithIcons(r *icons.Registry) Option { return func(e *Engine) { e.icons = r } }

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option { return func(e *Engine) { e.logger = l } }

// WithRecomputeInterval overrides the declutter throttle window.
func WithRecomputeInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.interval = d
		}
	}
}

// Engine is the frame conductor for one session.
type Engine struct {
	g     *graph.Graph
	sim   layout.Engine
	vp    viewport.Viewport
	hover *interact.Manager

	cfg    render.Config
	theme  render.Theme
	icons  *icons.Registry
	logger *log.Logger

	selected map[string]struct{}
	visible  declutter.VisibleSet

	interval      time.Duration
	now           func() time.Time
	lastRecompute time.Time
	dirty         bool
}

// New builds an engine over a graph and a layout engine. The first frame
// computes the initial visible-label set.
func New(g *graph.Graph, sim layout.Engine, vp viewport.Viewport, opts ...Option) *Engine {
	e := &Engine{
		g:        g,
		sim:      sim,
		vp:       vp,
		hover:    interact.NewManager(g),
		cfg:      render.DefaultConfig(),
		theme:    render.DarkTheme(),
		logger:   log.Default(),
		selected: make(map[string]struct{}),
		interval: DefaultRecomputeInterval,
		now:      time.Now,
		dirty:    true,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.cfg = e.cfg.Normalized()
	return e
}

// Config returns the normalized render configuration the engine draws
// and measures with.
func (e *Engine) Config() render.Config { return e.cfg }

// Viewport returns the current viewport.
func (e *Engine) Viewport() viewport.Viewport { return e.vp }

// Highlight returns the highlight state as of the last frame.
func (e *Engine) Highlight() interact.State { return e.hover.State() }

// Visible returns the visible-label set as of the last recompute.
func (e *Engine) Visible() declutter.VisibleSet { return e.visible }

// SetViewport replaces the viewport and schedules a label recompute.
func (e *Engine) SetViewport(vp viewport.Viewport) {
	e.vp = vp
	e.requestRecompute()
}

// Pan shifts the viewport by a screen-space delta.
func (e *Engine) Pan(dx, dy float64) {
	e.vp = e.vp.Pan(dx, dy)
	e.requestRecompute()
}

// ZoomAt zooms by factor keeping the given screen point fixed.
func (e *Engine) ZoomAt(sx, sy, factor float64) {
	e.vp = e.vp.ZoomAt(sx, sy, factor)
	e.requestRecompute()
}

// FitToGraph frames the whole layout in the viewport.
func (e *Engine) FitToGraph() {
	if minX, minY, maxX, maxY, ok := e.sim.Positions().Bounds(); ok {
		e.vp = e.vp.Fit(minX, minY, maxX, maxY)
		e.requestRecompute()
	}
}

// SetGraph swaps the data set. Highlight and selection reset, the old
// visible set is discarded, and the next frame recomputes against the
// new nodes.
func (e *Engine) SetGraph(g *graph.Graph, sim layout.Engine) {
	e.g = g
	e.sim = sim
	e.hover.SetGraph(g)
	e.selected = make(map[string]struct{})
	e.visible = nil
	e.requestRecompute()
}

// HoverNode records a pending hover over a node. Pending updates
// replace each other; the next frame applies the last one.
func (e *Engine) HoverNode(id string) { e.hover.HoverNode(id) }

// HoverEdge records a pending hover over an edge.
func (e *Engine) HoverEdge(source, target string) { e.hover.HoverEdge(source, target) }

// HoverOut records a pending highlight clear.
func (e *Engine) HoverOut() { e.hover.HoverOut() }

// Select marks a node selected. Selected nodes always win a label slot,
// so the visible set is recomputed.
func (e *Engine) Select(id string) {
	e.selected[id] = struct{}{}
	e.requestRecompute()
}

// Deselect removes a node from the selection.
func (e *Engine) Deselect(id string) {
	delete(e.selected, id)
	e.requestRecompute()
}

// ClearSelection empties the selection.
func (e *Engine) ClearSelection() {
	if len(e.selected) == 0 {
		return
	}
	e.selected = make(map[string]struct{})
	e.requestRecompute()
}

// Selected returns the selected node ids in stable order.
func (e *Engine) Selected() []string {
	ids := make([]string, 0, len(e.selected))
	for id := range e.selected {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// DragNode pins a node under the given screen point and reheats the
// simulation so neighbors follow.
func (e *Engine) DragNode(id string, sx, sy float64) {
	wx, wy := e.vp.ToWorld(sx, sy)
	e.sim.Pin(id, layout.Point{X: wx, Y: wy})
	e.sim.Reheat()
	e.requestRecompute()
}

// ReleaseNode unpins a dragged node and lets the simulation settle it.
func (e *Engine) ReleaseNode(id string) {
	e.sim.Unpin(id)
	e.sim.Reheat()
	e.requestRecompute()
}

// NodeAt hit-tests a screen point against drawn node bodies and returns
// the topmost hit.
func (e *Engine) NodeAt(sx, sy float64) (string, bool) {
	if e.g == nil {
		return "", false
	}
	pos := e.sim.Positions()
	nodes := e.g.Nodes()
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		p, ok := pos[n.ID]
		if !ok {
			continue
		}
		nx, ny := e.vp.ToScreen(p.X, p.Y)
		r := e.cfg.NodeScreenRadius(*n, e.g.Degree(n.ID), e.vp.Zoom)
		if math.Hypot(sx-nx, sy-ny) <= r {
			return n.ID, true
		}
	}
	return "", false
}

// Frame produces the next frame: one pending hover applied, one layout
// tick, any due label recompute, then a pure render pass.
func (e *Engine) Frame() render.Frame {
	e.hover.Apply()
	e.sim.Step()
	pos := e.sim.Positions()
	e.maybeRecompute(pos)

	return render.Build(e.g, pos, e.vp,
		render.WithConfig(e.cfg),
		render.WithTheme(e.theme),
		render.WithHighlight(e.hover.State()),
		render.WithVisible(e.visible),
		render.WithSelection(e.Selected()...),
		render.WithIcons(e.icons),
	)
}

// Run drives frames at the given tick rate until ctx is done, passing
// each frame to emit. It blocks; the caller owns the goroutine.
func (e *Engine) Run(ctx context.Context, tick time.Duration, emit func(render.Frame)) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			emit(e.Frame())
		}
	}
}

// requestRecompute marks the visible set dirty. The mark survives
// throttled frames, so a burst of events ends with one trailing run.
func (e *Engine) requestRecompute() {
	e.dirty = true
	if e.now().Sub(e.lastRecompute) < e.interval {
		observability.Declutter().OnRecomputeThrottled(context.Background())
	}
}

func (e *Engine) maybeRecompute(pos layout.Positions) {
	if !e.dirty {
		return
	}
	if e.now().Sub(e.lastRecompute) < e.interval {
		return
	}
	e.recompute(pos)
}

// recompute rebuilds the visible-label set from projected candidates.
// Candidates are measured with the same radius and font formulas the
// renderer draws with.
func (e *Engine) recompute(pos layout.Positions) {
	start := e.now()
	e.lastRecompute = start
	e.dirty = false

	if e.g == nil || e.g.NodeCount() == 0 {
		e.visible = nil
		return
	}

	hooks := observability.Declutter()
	hooks.OnRecomputeStart(context.Background(), e.g.NodeCount())

	cands := make([]declutter.Candidate, 0, e.g.NodeCount())
	for _, n := range e.g.Nodes() {
		p, ok := pos[n.ID]
		if !ok {
			continue
		}
		sx, sy := e.vp.ToScreen(p.X, p.Y)
		deg := e.g.Degree(n.ID)
		cands = append(cands, declutter.Candidate{
			ID:     n.ID,
			X:      sx,
			Y:      sy,
			Radius: e.cfg.NodeScreenRadius(*n, deg, e.vp.Zoom),
			Label:  n.DisplayLabel(),
			Degree: deg,
		})
	}

	boxes := declutter.ComputeBoxes(cands, e.vp, e.cfg.FontScale, e.cfg.Metrics)
	e.visible = declutter.Select(boxes, e.selected, e.hover.State().NodeSet(),
		e.g.NodeCount(), e.cfg.Metrics)

	mode := declutter.Mode(e.g.NodeCount(), e.cfg.Metrics)
	hooks.OnRecomputeComplete(context.Background(), mode, len(e.visible), e.now().Sub(start))
	e.logger.Debug("labels recomputed",
		"mode", mode, "visible", len(e.visible), "nodes", e.g.NodeCount())
}
