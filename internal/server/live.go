package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/casetrace/linkboard/pkg/engine"
	"github.com/casetrace/linkboard/pkg/errors"
	"github.com/casetrace/linkboard/pkg/graph"
	"github.com/casetrace/linkboard/pkg/layout"
	"github.com/casetrace/linkboard/pkg/observability"
	"github.com/casetrace/linkboard/pkg/pipeline"
	"github.com/casetrace/linkboard/pkg/render/sink"
	"github.com/casetrace/linkboard/pkg/session"
	"github.com/casetrace/linkboard/pkg/viewport"
)

// =============================================================================
// Wire Protocol
// =============================================================================

// Live boards speak JSON text messages. The server streams rendered
// frames (the json sink envelope); the client sends pointer events:
//
//	{"type": "hover", "id": "acct-77"}
//	{"type": "hover-edge", "source": "a", "target": "b"}
//	{"type": "hover-out"}
//	{"type": "select", "id": "acct-77"}
//	{"type": "deselect", "id": "acct-77"}
//	{"type": "clear-selection"}
//	{"type": "pan", "dx": 12, "dy": -4}
//	{"type": "zoom", "x": 640, "y": 400, "factor": 1.1}
//	{"type": "drag", "id": "acct-77", "x": 320, "y": 240}
//	{"type": "release", "id": "acct-77"}
//	{"type": "fit"}
//	{"type": "resize", "width": 1440, "height": 900}
type clientEvent struct {
	Type   string  `json:"type"`
	ID     string  `json:"id,omitempty"`
	Source string  `json:"source,omitempty"`
	Target string  `json:"target,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	DX     float64 `json:"dx,omitempty"`
	DY     float64 `json:"dy,omitempty"`
	Factor float64 `json:"factor,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

const (
	// writeWait bounds a single websocket write.
	writeWait = 10 * time.Second

	// pongWait is how long a silent client stays connected.
	pongWait = 60 * time.Second

	// pingInterval must beat pongWait so healthy clients never expire.
	pingInterval = 54 * time.Second

	// maxEventBytes caps inbound event messages.
	maxEventBytes = 64 << 10

	// sendBuffer is the frame backlog before frames drop. A slow
	// client skips intermediate frames and catches up on the next one.
	sendBuffer = 32
)

// =============================================================================
// Websocket Handler
// =============================================================================

// handleLive upgrades a session to a websocket board. The handler
// goroutine becomes the read loop; frames flow from a separate frame
// loop until the client disconnects.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	sess, err := s.cfg.Sessions.Get(r.Context(), sessionID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if sess == nil {
		s.writeError(w, errors.New(errors.ErrCodeSessionNotFound, "unknown or expired session: %s", sessionID))
		return
	}

	rec, err := s.cfg.Store.Get(r.Context(), sess.GraphID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	sess.Touch(session.DefaultTTL)
	_ = s.cfg.Sessions.Set(r.Context(), sess)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written its own response.
		s.logger.Debug("websocket upgrade failed", "session", sessionID, "error", err)
		return
	}

	b := s.newBoard(sess, &rec.Graph, conn)
	s.addBoard(b)
	defer s.removeBoard(b)

	observability.Server().OnLiveSession(r.Context(), sess.ID, true)
	defer observability.Server().OnLiveSession(r.Context(), sess.ID, false)
	s.logger.Info("live board opened", "session", sess.ID, "graph", sess.GraphID)

	go b.writeLoop()
	go b.frameLoop()
	b.readLoop()
	b.close()

	s.logger.Info("live board closed", "session", sess.ID)
}

// newBoard builds a live board with its own engine over the document.
func (s *Server) newBoard(sess *session.Session, doc *graph.Document, conn *websocket.Conn) *liveBoard {
	g := graph.ToGraph(*doc)
	sim := layout.NewForce(g, s.cfg.Force)
	vp := viewport.New(float64(pipeline.DefaultWidth), float64(pipeline.DefaultHeight))

	engOpts := []engine.Option{
		engine.WithRenderConfig(s.cfg.Render),
		engine.WithTheme(s.cfg.Theme),
		engine.WithLogger(s.logger),
	}
	if s.cfg.Icons != nil {
		engOpts = append(engOpts, engine.WithIcons(s.cfg.Icons))
	}

	eng := engine.New(g, sim, vp, engOpts...)
	eng.FitToGraph()

	return &liveBoard{
		sessionID: sess.ID,
		graphID:   sess.GraphID,
		conn:      conn,
		eng:       eng,
		force:     s.cfg.Force,
		logger:    s.logger,
		interval:  s.cfg.FrameInterval,
		events:    make(chan clientEvent, 16),
		reload:    make(chan *graph.Graph, 1),
		send:      make(chan []byte, sendBuffer),
		closed:    make(chan struct{}),
	}
}

// =============================================================================
// Live Board
// =============================================================================

// liveBoard is one websocket client driving one engine. The frame loop
// is the only goroutine touching the engine; the read loop feeds it
// events through a channel.
type liveBoard struct {
	sessionID string
	graphID   string
	conn      *websocket.Conn
	eng       *engine.Engine
	force     layout.ForceConfig
	logger    *log.Logger
	interval  time.Duration

	events chan clientEvent
	reload chan *graph.Graph
	send   chan []byte

	// last is the last frame sent, owned by the frame loop.
	last []byte

	closed    chan struct{}
	closeOnce sync.Once
}

func (b *liveBoard) close() {
	b.closeOnce.Do(func() {
		close(b.closed)
		_ = b.conn.Close()
	})
}

// frameLoop owns the engine: it applies events, swaps reloaded graphs,
// and emits frames at the configured cadence. Frames identical to the
// last sent frame are skipped, so a settled idle board goes quiet.
func (b *liveBoard) frameLoop() {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	b.emitFrame()

	for {
		select {
		case <-b.closed:
			return
		case ev := <-b.events:
			b.apply(ev)
			b.emitFrame()
		case g := <-b.reload:
			b.eng.SetGraph(g, layout.NewForce(g, b.force))
			b.eng.FitToGraph()
			b.emitFrame()
		case <-ticker.C:
			b.emitFrame()
		}
	}
}

func (b *liveBoard) emitFrame() {
	data, err := sink.JSON(b.eng.Frame())
	if err != nil {
		b.logger.Error("encode live frame", "session", b.sessionID, "error", err)
		return
	}
	if bytes.Equal(data, b.last) {
		return
	}
	select {
	case b.send <- data:
		b.last = data
	default:
		// Client is behind; this frame drops and the next one lands.
	}
}

func (b *liveBoard) apply(ev clientEvent) {
	switch ev.Type {
	case "hover":
		b.eng.HoverNode(ev.ID)
	case "hover-edge":
		b.eng.HoverEdge(ev.Source, ev.Target)
	case "hover-out":
		b.eng.HoverOut()
	case "select":
		b.eng.Select(ev.ID)
	case "deselect":
		b.eng.Deselect(ev.ID)
	case "clear-selection":
		b.eng.ClearSelection()
	case "pan":
		b.eng.Pan(ev.DX, ev.DY)
	case "zoom":
		b.eng.ZoomAt(ev.X, ev.Y, ev.Factor)
	case "drag":
		b.eng.DragNode(ev.ID, ev.X, ev.Y)
	case "release":
		b.eng.ReleaseNode(ev.ID)
	case "fit":
		b.eng.FitToGraph()
	case "resize":
		if ev.Width > 0 && ev.Height > 0 {
			vp := b.eng.Viewport()
			vp.Width = ev.Width
			vp.Height = ev.Height
			b.eng.SetViewport(vp)
		}
	default:
		b.logger.Debug("unknown live event", "session", b.sessionID, "type", ev.Type)
	}
}

// readLoop parses client events until the connection drops. It runs on
// the handler goroutine.
func (b *liveBoard) readLoop() {
	b.conn.SetReadLimit(maxEventBytes)
	_ = b.conn.SetReadDeadline(time.Now().Add(pongWait))
	b.conn.SetPongHandler(func(string) error {
		return b.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := b.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				b.logger.Debug("live board read failed", "session", b.sessionID, "error", err)
			}
			return
		}

		var ev clientEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			b.logger.Debug("malformed live event", "session", b.sessionID, "error", err)
			continue
		}

		select {
		case b.events <- ev:
		case <-b.closed:
			return
		}
	}
}

// writeLoop pushes frames and pings to the client.
func (b *liveBoard) writeLoop() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.closed:
			return
		case data := <-b.send:
			_ = b.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := b.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				b.close()
				return
			}
		case <-ticker.C:
			_ = b.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := b.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				b.close()
				return
			}
		}
	}
}
