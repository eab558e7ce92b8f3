package render

import (
	"context"
	"math"
	"time"

	"github.com/casetrace/linkboard/pkg/declutter"
	"github.com/casetrace/linkboard/pkg/graph"
	"github.com/casetrace/linkboard/pkg/icons"
	"github.com/casetrace/linkboard/pkg/interact"
	"github.com/casetrace/linkboard/pkg/layout"
	"github.com/casetrace/linkboard/pkg/observability"
	"github.com/casetrace/linkboard/pkg/viewport"
)

// edgeLabelScale shrinks edge labels relative to node labels.
const edgeLabelScale = 0.85

// selfLoopRise lifts the self-loop control point above the node, in node
// radii.
const selfLoopRise = 4.0

type Option func(*builder)

type builder struct {
	cfg       Config
	theme     Theme
	highlight interact.State
	selected  map[string]struct{}
	visible   declutter.VisibleSet
	icons     *icons.Registry
}

func WithConfig(c Config) Option            { return func(b *builder) { b.cfg = c } }
func WithTheme(t Theme) Option              { return func(b *builder) { b.theme = t } }
func WithHighlight(s interact.State) Option { return func(b *builder) { b.highlight = s } }
func WithIcons(r *icons.Registry) Option    { return func(b *builder) { b.icons = r } }

// WithVisible supplies the declutter result. Without it no node labels
// are drawn except the hover neighborhood.
func WithVisible(v declutter.VisibleSet) Option { return func(b *builder) { b.visible = v } }

// WithSelection marks nodes as selected: full opacity and a selection
// ring regardless of highlight state.
func WithSelection(ids ...string) Option {
	return func(b *builder) {
		for _, id := range ids {
			b.selected[id] = struct{}{}
		}
	}
}

func newBuilder(opts ...Option) builder {
	b := builder{
		theme:    DarkTheme(),
		selected: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// NodeScreenRadius is the drawn radius of a node at the given zoom: the
// base radius times the square root of the node's size value, grown with
// degree up to saturation, scaled by the node-size setting.
//
// The declutter pass must build its candidates with this same radius, or
// drawn pills detach from the boxes the collision checks cleared.
func (c Config) NodeScreenRadius(n graph.Node, degree int, zoom float64) float64 {
	c = c.withDefaults()
	grow := 1 + c.RadiusGrowth*math.Min(float64(degree)/float64(c.RadiusSaturation), 1)
	return c.BaseRadius * math.Sqrt(n.SizeVal()) * grow * c.NodeScale * zoom
}

// Build renders one frame from the current scene state: world positions
// projected through the viewport, highlight spotlight applied, labels
// drawn per the visible set, icons resolved through the registry.
//
// Build is a pure projection of its inputs. It performs no I/O and no
// locking, and it never fails: missing positions, icons, or labels
// degrade that affordance and nothing else. An empty graph produces the
// empty-state frame without entering the pipeline at all.
func Build(g *graph.Graph, pos layout.Positions, vp viewport.Viewport, opts ...Option) Frame {
	start := time.Now()
	b := newBuilder(opts...)
	cfg := b.cfg.withDefaults()

	frame := Frame{
		Width:      vp.Width,
		Height:     vp.Height,
		Background: b.theme.Background,
		FontFamily: b.theme.FontFamily,
	}

	if g == nil || g.NodeCount() == 0 {
		frame.Commands = []Command{Text{
			X:       vp.Width / 2,
			Y:       vp.Height / 2,
			Content: "No graph loaded",
			Size:    cfg.Metrics.BaseFontSize * 1.5,
			Color:   b.theme.MutedText,
			Alpha:   1,
		}}
		observability.Render().OnFrameBuilt(context.Background(), 0, 0, 0, time.Since(start))
		return frame
	}

	spotlight := b.highlight.Active()
	lod := g.NodeCount() > cfg.Metrics.SpatialThreshold || vp.Zoom < cfg.LabelZoomFloor
	fontSize := cfg.Metrics.FontSize(vp.Zoom, cfg.FontScale)

	radii := make(map[string]float64, g.NodeCount())
	for _, n := range g.Nodes() {
		radii[n.ID] = cfg.NodeScreenRadius(*n, g.Degree(n.ID), vp.Zoom)
	}

	frame.Commands = b.edgeCommands(g, pos, vp, cfg, radii, spotlight, fontSize, &frame.Stats)

	var rings, circles, images, labels []Command
	for _, n := range g.Nodes() {
		p, ok := pos[n.ID]
		if !ok {
			continue
		}
		sx, sy := vp.ToScreen(p.X, p.Y)
		r := radii[n.ID]

		lit := b.highlight.HasNode(n.ID)
		_, sel := b.selected[n.ID]
		alpha := 1.0
		if spotlight && !lit && !sel {
			alpha = cfg.DimAlpha
		}

		if lit || sel {
			ringColor := b.theme.SelectRing
			if lit {
				ringColor = b.theme.HoverRing
			}
			rings = append(rings, Ring{
				NodeID: n.ID,
				X:      sx,
				Y:      sy,
				R:      r + cfg.RingWidth,
				Color:  ringColor,
				Alpha:  cfg.RingAlpha,
			})
		}

		circles = append(circles, Circle{
			NodeID:      n.ID,
			X:           sx,
			Y:           sy,
			R:           r,
			Fill:        b.theme.NodeColor(n.Type),
			Stroke:      b.theme.NodeStroke,
			StrokeWidth: 1.5,
			Alpha:       alpha,
		})
		frame.Stats.Nodes++

		detail := !lod || lit
		if detail && b.icons != nil && n.Type != "" {
			if data, ok := b.icons.Get(n.Type); ok {
				side := r * cfg.IconScale
				images = append(images, Image{
					NodeID: n.ID,
					X:      sx - side/2,
					Y:      sy - side/2,
					W:      side,
					H:      side,
					Data:   data,
					Alpha:  alpha,
				})
			}
		}

		text := n.DisplayLabel()
		show := detail && text != "" &&
			(b.visible.Has(n.ID) || lit) &&
			frame.Stats.Labels < cfg.MaxLabelsPerFrame
		if show {
			w, h := cfg.Metrics.LabelSize(text, fontSize)
			top := sy + r + fontSize*cfg.Metrics.LabelGapRatio
			labels = append(labels,
				Pill{
					NodeID: n.ID,
					X:      sx - w/2,
					Y:      top,
					W:      w,
					H:      h,
					Corner: cfg.PillCorner,
					Fill:   b.theme.LabelFill,
					Stroke: b.theme.LabelStroke,
					Alpha:  alpha,
				},
				Text{
					ID:      n.ID,
					X:       sx,
					Y:       top + h/2,
					Content: text,
					Size:    fontSize,
					Color:   b.theme.LabelText,
					Alpha:   alpha,
				})
			frame.Stats.Labels++
		}
	}

	frame.Commands = append(frame.Commands, rings...)
	frame.Commands = append(frame.Commands, circles...)
	frame.Commands = append(frame.Commands, images...)
	frame.Commands = append(frame.Commands, labels...)

	observability.Render().OnFrameBuilt(context.Background(),
		frame.Stats.Nodes, frame.Stats.Edges, frame.Stats.Labels, time.Since(start))
	return frame
}

// edgeCommands draws strokes, arrowheads, and highlighted edge labels.
// Edges paint first so every node body covers its incident strokes.
func (b builder) edgeCommands(g *graph.Graph, pos layout.Positions, vp viewport.Viewport,
	cfg Config, radii map[string]float64, spotlight bool, fontSize float64, stats *Stats) []Command {

	cmds := make([]Command, 0, g.EdgeCount())
	for _, e := range g.Edges() {
		sp, okS := pos[e.Source]
		tp, okT := pos[e.Target]
		if !okS || !okT {
			continue
		}
		x1, y1 := vp.ToScreen(sp.X, sp.Y)
		x2, y2 := vp.ToScreen(tp.X, tp.Y)

		key := e.Key()
		lit := b.highlight.HasEdge(key)

		color := b.theme.EdgeColor
		width := cfg.LinkWidth
		alpha := 1.0
		switch {
		case lit:
			color = b.theme.EdgeHighlight
			width = cfg.LinkWidth + 1
		case spotlight:
			alpha = cfg.DimAlpha
		}

		selfLoop := e.Source == e.Target
		cx, cy := controlPoint(x1, y1, x2, y2, e.Curvature)
		if selfLoop {
			cy = y1 - selfLoopRise*radii[e.Source]
		}
		curved := e.Curvature != 0 || selfLoop

		cmds = append(cmds, Stroke{
			EdgeKey: key,
			X1:      x1,
			Y1:      y1,
			X2:      x2,
			Y2:      y2,
			CX:      cx,
			CY:      cy,
			Curved:  curved,
			Color:   color,
			Width:   width,
			Alpha:   alpha,
		})
		stats.Edges++

		if !cfg.HideArrows && !selfLoop {
			t := cfg.ArrowRelPos
			ax, ay := quadPoint(x1, y1, cx, cy, x2, y2, t)
			dx, dy := quadTangent(x1, y1, cx, cy, x2, y2, t)
			angle := math.Atan2(dy, dx)
			if t == 1 {
				// Back the tip off the target center onto its rim.
				ax -= math.Cos(angle) * radii[e.Target]
				ay -= math.Sin(angle) * radii[e.Target]
			}
			cmds = append(cmds, Arrowhead{
				EdgeKey: key,
				X:       ax,
				Y:       ay,
				Angle:   angle,
				Size:    cfg.ArrowSize,
				Color:   color,
				Alpha:   alpha,
			})
		}

		if lit && e.Label != "" {
			lx, ly := quadPoint(x1, y1, cx, cy, x2, y2, 0.5)
			cmds = append(cmds, Text{
				ID:      key,
				X:       lx,
				Y:       ly - fontSize*edgeLabelScale,
				Content: e.Label,
				Size:    fontSize * edgeLabelScale,
				Color:   b.theme.EdgeLabelText,
				Alpha:   1,
			})
		}
	}
	return cmds
}
