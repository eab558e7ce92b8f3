package cli

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/casetrace/linkboard/pkg/engine"
	"github.com/casetrace/linkboard/pkg/graph"
	"github.com/casetrace/linkboard/pkg/layout"
	"github.com/casetrace/linkboard/pkg/pipeline"
	"github.com/casetrace/linkboard/pkg/render"
	"github.com/casetrace/linkboard/pkg/viewport"
)

const (
	// tuiFrameInterval paces the frame loop. Terminals repaint slower
	// than browsers, so 20fps is plenty.
	tuiFrameInterval = 50 * time.Millisecond

	tuiPanStep  = 4.0
	tuiZoomStep = 1.25

	// Fit padding in cells. The shared fit helper pads for pixel
	// canvases; a terminal canvas is two orders of magnitude smaller.
	tuiFitPadX = 4.0
	tuiFitPadY = 2.0
)

type tuiOpts struct {
	layout   string
	theme    string
	maxNodes int
	maxEdges int
	refresh  bool
	noCache  bool
}

func (c *CLI) tuiCommand() *cobra.Command {
	opts := tuiOpts{}

	cmd := &cobra.Command{
		Use:   "tui <source>",
		Short: "Explore a board interactively in the terminal",
		Long: `Open a board in a terminal viewer.

The viewer runs the same frame loop as the preview server: labels
declutter as you zoom and pan, hovering a node spotlights its
neighborhood, and selected nodes keep their labels pinned. Nodes can
be dragged with the mouse; dragged nodes stay pinned until released.

Sources can be local JSON or YAML board files or http(s) URLs.`,
		Example: `  # Explore a local board
  linkboard tui board.json

  # Precomputed layered layout instead of the live simulation
  linkboard tui board.json --layout dot`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateLayout(opts.layout); err != nil {
				return err
			}
			return c.runTUI(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.layout, "layout", graph.LayoutForce, "layout engine (force, dot)")
	cmd.Flags().StringVar(&opts.theme, "theme", "", "color theme (dark, light, high-contrast)")
	cmd.Flags().IntVar(&opts.maxNodes, "max-nodes", pipeline.DefaultMaxNodes, "maximum nodes to load")
	cmd.Flags().IntVar(&opts.maxEdges, "max-edges", pipeline.DefaultMaxEdges, "maximum edges to load")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the cache for remote sources")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the cache entirely")

	return cmd
}

func (c *CLI) runTUI(ctx context.Context, source string, opts tuiOpts) error {
	s := c.loadSettings()

	themeName := opts.theme
	if themeName == "" {
		themeName = s.Display.Theme
	}
	theme, err := resolveTheme(themeName)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	pipeOpts := pipeline.Options{
		Source:   source,
		MaxNodes: opts.maxNodes,
		MaxEdges: opts.maxEdges,
		Refresh:  opts.refresh,
		Layout:   opts.layout,
		Logger:   c.Logger,
	}

	sp := newSpinnerWithContext(ctx, fmt.Sprintf("Loading %s...", source))
	sp.Start()
	doc, err := runner.Load(ctx, pipeOpts)
	if err != nil {
		sp.StopWithError("Load failed")
		return err
	}
	g := graph.ToGraph(doc)

	var sim layout.Engine
	cooldown := 0
	if opts.layout == graph.LayoutDot {
		pos, err := runner.ComputeLayout(ctx, g, pipeOpts)
		if err != nil {
			sp.StopWithError("Layout failed")
			return err
		}
		sim = layout.NewStatic(pos)
	} else {
		cfg := forceConfig(s)
		if cfg.CooldownTicks <= 0 {
			cfg.CooldownTicks = layout.DefaultCooldownTicks
		}
		cooldown = cfg.CooldownTicks
		sim = layout.NewForce(g, cfg)
	}
	sp.Stop()

	name := doc.Name
	if name == "" {
		name = sourceBase(source)
	}

	// The engine logs through the session logger elsewhere; inside the
	// alternate screen any log line would corrupt the canvas.
	eng := engine.New(g, sim, viewport.New(80, 24),
		engine.WithRenderConfig(renderConfig(s)),
		engine.WithTheme(theme),
		engine.WithLogger(log.New(io.Discard)),
	)

	m := newBoardModel(eng, sim, g, name, cooldown)
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

// =======================================================================
// Key bindings
// =======================================================================

type boardKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	ZoomIn  key.Binding
	ZoomOut key.Binding
	Fit     key.Binding
	Reheat  key.Binding
	Cycle   key.Binding
	Select  key.Binding
	Clear   key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func (k boardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Cycle, k.Select, k.Fit, k.Help, k.Quit}
}

func (k boardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.ZoomIn, k.ZoomOut, k.Fit, k.Reheat},
		{k.Cycle, k.Select, k.Clear, k.Quit},
	}
}

var boardKeys = boardKeyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "pan up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "pan down")),
	Left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "pan left")),
	Right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "pan right")),
	ZoomIn:  key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
	ZoomOut: key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "zoom out")),
	Fit:     key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "fit to graph")),
	Reheat:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reheat layout")),
	Cycle:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next node")),
	Select:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	Clear:   key.NewBinding(key.WithKeys("c", "esc"), key.WithHelp("c", "clear")),
	Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// =======================================================================
// Model
// =======================================================================

// tickMsg advances the frame loop.
type tickMsg time.Time

func frameTick() tea.Cmd {
	return tea.Tick(tuiFrameInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

type boardModel struct {
	eng   *engine.Engine
	sim   layout.Engine
	g     *graph.Graph
	name  string
	order []string // tab cycle order, best-connected first

	keys boardKeyMap
	help help.Model
	spin spinner.Model

	width    int
	height   int
	sized    bool
	frame    render.Frame
	cooldown int
	hot      int // frames until the simulation settles
	hoverIdx int
	dragging string
}

func newBoardModel(eng *engine.Engine, sim layout.Engine, g *graph.Graph, name string, cooldown int) boardModel {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(colorYellow))

	return boardModel{
		eng:      eng,
		sim:      sim,
		g:        g,
		name:     name,
		order:    g.WeightList(),
		keys:     boardKeys,
		help:     help.New(),
		spin:     sp,
		cooldown: cooldown,
		hot:      cooldown,
		hoverIdx: -1,
	}
}

func (m boardModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, frameTick())
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.syncViewport()
		if !m.sized {
			m.sized = true
			m.fitBoard()
		}
		return m, nil

	case tickMsg:
		m.frame = m.eng.Frame()
		if m.hot > 0 {
			m.hot--
		}
		return m, frameTick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)
	}
	return m, nil
}

func (m boardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.syncViewport()
	case key.Matches(msg, m.keys.Up):
		m.eng.Pan(0, tuiPanStep)
	case key.Matches(msg, m.keys.Down):
		m.eng.Pan(0, -tuiPanStep)
	case key.Matches(msg, m.keys.Left):
		m.eng.Pan(tuiPanStep, 0)
	case key.Matches(msg, m.keys.Right):
		m.eng.Pan(-tuiPanStep, 0)
	case key.Matches(msg, m.keys.ZoomIn):
		m.eng.ZoomAt(float64(m.width)/2, float64(m.canvasHeight())/2, tuiZoomStep)
	case key.Matches(msg, m.keys.ZoomOut):
		m.eng.ZoomAt(float64(m.width)/2, float64(m.canvasHeight())/2, 1/tuiZoomStep)
	case key.Matches(msg, m.keys.Fit):
		m.fitBoard()
	case key.Matches(msg, m.keys.Reheat):
		m.sim.Reheat()
		m.hot = m.cooldown
	case key.Matches(msg, m.keys.Cycle):
		if len(m.order) > 0 {
			m.hoverIdx = (m.hoverIdx + 1) % len(m.order)
			m.eng.HoverNode(m.order[m.hoverIdx])
		}
	case key.Matches(msg, m.keys.Select):
		if id := m.eng.Highlight().HoveredID; id != "" {
			m.toggleSelect(id)
		}
	case key.Matches(msg, m.keys.Clear):
		m.eng.ClearSelection()
		m.eng.HoverOut()
		m.hoverIdx = -1
	}
	return m, nil
}

func (m boardModel) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	sx := float64(msg.X)
	sy := float64(msg.Y - 1) // title row

	switch msg.Action {
	case tea.MouseActionMotion:
		if m.dragging != "" {
			m.eng.DragNode(m.dragging, sx, sy)
			return m, nil
		}
		if id, ok := m.eng.NodeAt(sx, sy); ok {
			m.eng.HoverNode(id)
		} else {
			m.eng.HoverOut()
		}

	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.eng.ZoomAt(sx, sy, tuiZoomStep)
		case tea.MouseButtonWheelDown:
			m.eng.ZoomAt(sx, sy, 1/tuiZoomStep)
		case tea.MouseButtonLeft:
			if id, ok := m.eng.NodeAt(sx, sy); ok {
				m.dragging = id
				m.toggleSelect(id)
			}
		}

	case tea.MouseActionRelease:
		if m.dragging != "" {
			m.eng.ReleaseNode(m.dragging)
			m.dragging = ""
			m.hot = m.cooldown
		}
	}
	return m, nil
}

func (m boardModel) toggleSelect(id string) {
	for _, sid := range m.eng.Selected() {
		if sid == id {
			m.eng.Deselect(id)
			return
		}
	}
	m.eng.Select(id)
}

// canvasHeight is the terminal height minus the title, status, and help
// rows.
func (m boardModel) canvasHeight() int {
	h := m.height - 3
	if m.help.ShowAll {
		h -= 2
	}
	if h < 1 {
		h = 1
	}
	return h
}

// fitBoard centers the whole board in the canvas with a cell-sized
// border.
func (m boardModel) fitBoard() {
	minX, minY, maxX, maxY, ok := m.sim.Positions().Bounds()
	if !ok {
		return
	}
	vp := m.eng.Viewport()

	availW := vp.Width - 2*tuiFitPadX
	if availW <= 0 {
		availW = vp.Width
	}
	availH := vp.Height - 2*tuiFitPadY
	if availH <= 0 {
		availH = vp.Height
	}

	zx, zy := math.Inf(1), math.Inf(1)
	if w := maxX - minX; w > 0 {
		zx = availW / w
	}
	if h := maxY - minY; h > 0 {
		zy = availH / h
	}
	zoom := math.Min(zx, zy)
	if math.IsInf(zoom, 1) {
		zoom = 1
	}
	zoom = math.Max(viewport.MinZoom, math.Min(zoom, viewport.MaxZoom))

	vp.Zoom = zoom
	vp.OffsetX = vp.Width/2 - (minX+maxX)/2*zoom
	vp.OffsetY = vp.Height/2 - (minY+maxY)/2*zoom
	m.eng.SetViewport(vp)
}

// syncViewport resizes the engine viewport to the canvas, keeping the
// current zoom and offset.
func (m boardModel) syncViewport() {
	vp := viewport.New(float64(m.width), float64(m.canvasHeight()))
	if m.sized {
		old := m.eng.Viewport()
		vp.Zoom = old.Zoom
		vp.OffsetX = old.OffsetX
		vp.OffsetY = old.OffsetY
	}
	m.eng.SetViewport(vp)
}

func (m boardModel) View() string {
	if !m.sized {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.titleView())
	b.WriteString("\n")
	b.WriteString(renderCanvas(m.frame, m.width, m.canvasHeight()))
	b.WriteString("\n")
	b.WriteString(m.statusView())
	b.WriteString("\n")
	b.WriteString("  " + m.help.View(m.keys))
	return b.String()
}

func (m boardModel) titleView() string {
	state := StyleSuccess.Render(iconSuccess) + StyleDim.Render(" settled")
	if m.hot > 0 {
		state = m.spin.View() + StyleDim.Render(" settling")
	}
	return "  " + StyleTitle.Render(m.name) + "  " + state
}

func (m boardModel) statusView() string {
	vp := m.eng.Viewport()
	parts := []string{
		"zoom " + StyleNumber.Render(strconv.Itoa(int(math.Round(vp.Zoom*100)))+"%"),
		StyleNumber.Render(strconv.Itoa(m.frame.Stats.Nodes)) + " nodes",
		StyleNumber.Render(strconv.Itoa(m.frame.Stats.Edges)) + " edges",
		StyleNumber.Render(strconv.Itoa(m.frame.Stats.Labels)) + " labels",
	}
	if id := m.eng.Highlight().HoveredID; id != "" {
		label := id
		if n, ok := m.g.Node(id); ok {
			label = n.DisplayLabel()
		}
		parts = append(parts, StyleHighlight.Render(label))
	}
	if n := len(m.eng.Selected()); n > 0 {
		parts = append(parts, StyleNumber.Render(strconv.Itoa(n))+" selected")
	}
	return "  " + strings.Join(parts, StyleDim.Render(" · "))
}

// =======================================================================
// Canvas
// =======================================================================

// canvasCell is one terminal cell of the rendered board.
type canvasCell struct {
	ch    rune
	color string
	dim   bool
}

// renderCanvas rasterizes frame commands onto a character grid. The
// engine viewport is sized in cells, so frame coordinates map directly
// to columns and rows. Pills, arrowheads, and icon images are below
// cell resolution and are skipped.
func renderCanvas(f render.Frame, w, h int) string {
	if w <= 0 || h <= 0 {
		return ""
	}

	grid := make([][]canvasCell, h)
	for y := range grid {
		grid[y] = make([]canvasCell, w)
		for x := range grid[y] {
			grid[y][x].ch = ' '
		}
	}

	// Rings precede their circles in command order, so collecting them
	// first lets the circle pass pick the highlighted glyph.
	ringed := make(map[string]string)
	for _, cmd := range f.Commands {
		if r, ok := cmd.(render.Ring); ok {
			ringed[r.NodeID] = r.Color
		}
	}

	for _, cmd := range f.Commands {
		switch cmd := cmd.(type) {
		case render.Stroke:
			drawStroke(grid, cmd)
		case render.Circle:
			drawCircle(grid, cmd, ringed)
		case render.Text:
			drawText(grid, cmd)
		}
	}

	rows := make([]string, h)
	var b strings.Builder
	styles := make(map[string]lipgloss.Style)
	for y := range grid {
		b.Reset()
		for _, c := range grid[y] {
			if c.ch == ' ' {
				b.WriteByte(' ')
				continue
			}
			b.WriteString(cellStyle(styles, c).Render(string(c.ch)))
		}
		rows[y] = b.String()
	}
	return strings.Join(rows, "\n")
}

func cellStyle(cache map[string]lipgloss.Style, c canvasCell) lipgloss.Style {
	k := c.color
	if c.dim {
		k += "!"
	}
	if st, ok := cache[k]; ok {
		return st
	}
	st := lipgloss.NewStyle()
	if c.color != "" {
		st = st.Foreground(lipgloss.Color(c.color))
	}
	if c.dim {
		st = st.Faint(true)
	}
	cache[k] = st
	return st
}

func plot(grid [][]canvasCell, x, y int, c canvasCell) {
	if y < 0 || y >= len(grid) || x < 0 || x >= len(grid[y]) {
		return
	}
	grid[y][x] = c
}

// drawStroke samples the edge path and dots it onto the grid. Curved
// edges follow the same quadratic Bezier the SVG sink draws.
func drawStroke(grid [][]canvasCell, s render.Stroke) {
	steps := int(math.Hypot(s.X2-s.X1, s.Y2-s.Y1)) * 2
	if steps < 2 {
		steps = 2
	}
	cell := canvasCell{ch: '·', color: s.Color, dim: s.Alpha < 1}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		var x, y float64
		if s.Curved {
			u := 1 - t
			x = u*u*s.X1 + 2*u*t*s.CX + t*t*s.X2
			y = u*u*s.Y1 + 2*u*t*s.CY + t*t*s.Y2
		} else {
			x = s.X1 + t*(s.X2-s.X1)
			y = s.Y1 + t*(s.Y2-s.Y1)
		}
		plot(grid, int(math.Round(x)), int(math.Round(y)), cell)
	}
}

func drawCircle(grid [][]canvasCell, c render.Circle, ringed map[string]string) {
	cell := canvasCell{ch: '●', color: c.Fill, dim: c.Alpha < 1}
	if color, ok := ringed[c.NodeID]; ok {
		cell.ch = '◉'
		cell.color = color
		cell.dim = false
	}
	plot(grid, int(math.Round(c.X)), int(math.Round(c.Y)), cell)
}

// drawText writes a centered label. The SVG sink anchors text at the
// middle, so the column starts half the width to the left.
func drawText(grid [][]canvasCell, t render.Text) {
	runes := []rune(t.Content)
	row := int(math.Round(t.Y))
	col := int(math.Round(t.X)) - len(runes)/2
	cell := canvasCell{color: t.Color, dim: t.Alpha < 1}
	for i, r := range runes {
		cell.ch = r
		plot(grid, col+i, row, cell)
	}
}
