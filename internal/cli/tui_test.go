package cli

import (
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/casetrace/linkboard/pkg/engine"
	"github.com/casetrace/linkboard/pkg/graph"
	"github.com/casetrace/linkboard/pkg/layout"
	"github.com/casetrace/linkboard/pkg/render"
	"github.com/casetrace/linkboard/pkg/viewport"
)

// testBoardModel builds a model over a three node board with static
// positions spanning (0,0)-(30,20).
func testBoardModel(cooldown int) boardModel {
	doc := graph.Document{
		Nodes: []graph.DocumentNode{
			{ID: "a", Label: "Alpha"},
			{ID: "b", Label: "Beta"},
			{ID: "c", Label: "Gamma"},
		},
		Edges: []graph.DocumentEdge{
			{Source: "a", Target: "b"},
			{Source: "b", Target: "c"},
		},
	}
	g := graph.ToGraph(doc)
	sim := layout.NewStatic(layout.Positions{
		"a": {X: 0, Y: 0},
		"b": {X: 30, Y: 0},
		"c": {X: 0, Y: 20},
	})
	eng := engine.New(g, sim, viewport.New(80, 24), engine.WithLogger(log.New(io.Discard)))
	return newBoardModel(eng, sim, g, "test", cooldown)
}

// sized sends the initial window size so the viewport is fitted.
func sized(m boardModel) boardModel {
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 27})
	return next.(boardModel)
}

func TestBoardModelWindowSize(t *testing.T) {
	m := sized(testBoardModel(0))

	if !m.sized {
		t.Error("model should be sized after WindowSizeMsg")
	}
	if m.width != 80 || m.height != 27 {
		t.Errorf("model size = %dx%d, want 80x27", m.width, m.height)
	}
	if got := m.canvasHeight(); got != 24 {
		t.Errorf("canvasHeight() = %d, want 24", got)
	}

	vp := m.eng.Viewport()
	if vp.Width != 80 || vp.Height != 24 {
		t.Errorf("viewport = %vx%v, want 80x24", vp.Width, vp.Height)
	}
}

func TestBoardModelFit(t *testing.T) {
	m := sized(testBoardModel(0))

	// World bounds (0,0)-(30,20) in an 80x24 canvas with cell padding:
	// the height axis limits zoom to exactly 1, centered.
	vp := m.eng.Viewport()
	if vp.Zoom != 1 {
		t.Errorf("Zoom = %v, want 1", vp.Zoom)
	}
	if vp.OffsetX != 25 || vp.OffsetY != 2 {
		t.Errorf("offset = (%v, %v), want (25, 2)", vp.OffsetX, vp.OffsetY)
	}
}

func TestBoardModelTick(t *testing.T) {
	m := sized(testBoardModel(2))

	next, cmd := m.Update(tickMsg{})
	m = next.(boardModel)

	if cmd == nil {
		t.Fatal("tick should schedule the next frame")
	}
	if m.frame.Width != 80 || m.frame.Height != 24 {
		t.Errorf("frame size = %vx%v, want 80x24", m.frame.Width, m.frame.Height)
	}
	if m.frame.Stats.Nodes != 3 {
		t.Errorf("frame.Stats.Nodes = %d, want 3", m.frame.Stats.Nodes)
	}
	if m.hot != 1 {
		t.Errorf("hot = %d, want 1 after one frame", m.hot)
	}
}

func TestBoardModelQuit(t *testing.T) {
	m := sized(testBoardModel(0))

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("quit key should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("quit key returned %T, want tea.QuitMsg", cmd())
	}
}

func TestBoardModelPanKeys(t *testing.T) {
	m := sized(testBoardModel(0))
	before := m.eng.Viewport()

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = next.(boardModel)

	after := m.eng.Viewport()
	if after.OffsetY != before.OffsetY+tuiPanStep {
		t.Errorf("OffsetY = %v, want %v", after.OffsetY, before.OffsetY+tuiPanStep)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m = next.(boardModel)

	if got := m.eng.Viewport().OffsetX; got != before.OffsetX+tuiPanStep {
		t.Errorf("OffsetX = %v, want %v", got, before.OffsetX+tuiPanStep)
	}
}

func TestBoardModelZoomKeys(t *testing.T) {
	m := sized(testBoardModel(0))
	before := m.eng.Viewport().Zoom

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'+'}})
	m = next.(boardModel)

	after := m.eng.Viewport().Zoom
	if after <= before {
		t.Errorf("Zoom = %v after zoom in, want > %v", after, before)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'-'}})
	m = next.(boardModel)

	if got := m.eng.Viewport().Zoom; got >= after {
		t.Errorf("Zoom = %v after zoom out, want < %v", got, after)
	}
}

func TestBoardModelTabHover(t *testing.T) {
	m := sized(testBoardModel(0))

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(boardModel)
	next, _ = m.Update(tickMsg{})
	m = next.(boardModel)

	// Highest degree node first in the cycle order.
	if got := m.eng.Highlight().HoveredID; got != "b" {
		t.Errorf("HoveredID = %q, want %q", got, "b")
	}
}

func TestBoardModelSelectToggle(t *testing.T) {
	m := sized(testBoardModel(0))

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(boardModel)
	next, _ = m.Update(tickMsg{})
	m = next.(boardModel)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(boardModel)

	if got := m.eng.Selected(); len(got) != 1 || got[0] != "b" {
		t.Fatalf("Selected() = %v, want [b]", got)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(boardModel)

	if got := m.eng.Selected(); len(got) != 0 {
		t.Errorf("Selected() = %v after second enter, want empty", got)
	}
}

func TestBoardModelClear(t *testing.T) {
	m := sized(testBoardModel(0))

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(boardModel)
	next, _ = m.Update(tickMsg{})
	m = next.(boardModel)
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(boardModel)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
	m = next.(boardModel)
	next, _ = m.Update(tickMsg{})
	m = next.(boardModel)

	if got := m.eng.Selected(); len(got) != 0 {
		t.Errorf("Selected() = %v after clear, want empty", got)
	}
	if got := m.eng.Highlight().HoveredID; got != "" {
		t.Errorf("HoveredID = %q after clear, want empty", got)
	}
}

func TestBoardModelMouseHover(t *testing.T) {
	m := sized(testBoardModel(0))

	// Node a sits at world (0,0); the fitted viewport puts it at (25,2).
	sx, sy := m.eng.Viewport().ToScreen(0, 0)
	msg := tea.MouseMsg{
		X:      int(sx),
		Y:      int(sy) + 1, // title row
		Action: tea.MouseActionMotion,
	}

	next, _ := m.Update(msg)
	m = next.(boardModel)
	next, _ = m.Update(tickMsg{})
	m = next.(boardModel)

	if got := m.eng.Highlight().HoveredID; got != "a" {
		t.Errorf("HoveredID = %q, want %q", got, "a")
	}
}

func TestBoardModelWheelZoom(t *testing.T) {
	m := sized(testBoardModel(0))
	before := m.eng.Viewport().Zoom

	msg := tea.MouseMsg{
		X:      40,
		Y:      12,
		Action: tea.MouseActionPress,
		Button: tea.MouseButtonWheelUp,
	}
	next, _ := m.Update(msg)
	m = next.(boardModel)

	if got := m.eng.Viewport().Zoom; got <= before {
		t.Errorf("Zoom = %v after wheel up, want > %v", got, before)
	}
}

func TestBoardModelHelpToggle(t *testing.T) {
	m := sized(testBoardModel(0))
	base := m.canvasHeight()

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	m = next.(boardModel)

	if !m.help.ShowAll {
		t.Error("help.ShowAll should be true after toggle")
	}
	if got := m.canvasHeight(); got != base-2 {
		t.Errorf("canvasHeight() = %d with full help, want %d", got, base-2)
	}
}

func TestCanvasHeightMinimum(t *testing.T) {
	m := testBoardModel(0)
	m.height = 2

	if got := m.canvasHeight(); got != 1 {
		t.Errorf("canvasHeight() = %d, want 1", got)
	}
}

func TestRenderCanvas(t *testing.T) {
	frame := render.Frame{
		Width:  20,
		Height: 5,
		Commands: []render.Command{
			render.Stroke{EdgeKey: "a->b", X1: 1, Y1: 1, X2: 8, Y2: 1, Color: "#888888", Alpha: 1},
			render.Circle{NodeID: "a", X: 10, Y: 2, R: 1, Fill: "#ff0000", Alpha: 1},
			render.Text{ID: "label:a", X: 10, Y: 3, Content: "Hub", Color: "#ffffff", Alpha: 1},
		},
	}

	out := renderCanvas(frame, 20, 5)
	lines := strings.Split(out, "\n")

	if len(lines) != 5 {
		t.Fatalf("renderCanvas produced %d lines, want 5", len(lines))
	}
	if !strings.Contains(lines[1], "·") {
		t.Error("edge row should contain stroke dots")
	}
	if !strings.Contains(lines[2], "●") {
		t.Error("node row should contain the node glyph")
	}
	if !strings.Contains(lines[3], "Hub") {
		t.Error("label row should contain the label text")
	}
}

func TestRenderCanvasRing(t *testing.T) {
	frame := render.Frame{
		Width:  10,
		Height: 3,
		Commands: []render.Command{
			render.Ring{NodeID: "a", X: 5, Y: 1, R: 2, Color: "#ffcc00", Alpha: 1},
			render.Circle{NodeID: "a", X: 5, Y: 1, R: 1, Fill: "#ff0000", Alpha: 1},
		},
	}

	out := renderCanvas(frame, 10, 3)
	if !strings.Contains(out, "◉") {
		t.Error("highlighted node should use the ring glyph")
	}
	if strings.Contains(out, "●") {
		t.Error("ringed node should not also draw the plain glyph")
	}
}

func TestRenderCanvasEmpty(t *testing.T) {
	out := renderCanvas(render.Frame{}, 8, 2)
	lines := strings.Split(out, "\n")

	if len(lines) != 2 {
		t.Fatalf("renderCanvas produced %d lines, want 2", len(lines))
	}
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			t.Errorf("line %d = %q, want blank", i, line)
		}
	}
}

func TestRenderCanvasClipsOutOfBounds(t *testing.T) {
	frame := render.Frame{
		Commands: []render.Command{
			render.Circle{NodeID: "a", X: -5, Y: 1, R: 1, Fill: "#ff0000", Alpha: 1},
			render.Circle{NodeID: "b", X: 50, Y: 1, R: 1, Fill: "#ff0000", Alpha: 1},
			render.Text{ID: "label:a", X: 0, Y: 1, Content: "Edge", Color: "#ffffff", Alpha: 1},
		},
	}

	// Must not panic; the text is partially clipped at the left border.
	out := renderCanvas(frame, 10, 3)
	if !strings.Contains(out, "e") {
		t.Error("partially clipped label should keep its in-bounds runes")
	}
}
