// Package server implements the linkboard preview server.
//
// The server exposes stored investigation graphs over a small REST API,
// renders board artifacts through the same pipeline the CLI uses, and
// streams live frames over a websocket channel so a browser canvas can
// drive hover, selection, pan, zoom, and drag against a server-side
// engine.
//
// # Architecture
//
// Three route groups hang off one chi router:
//
//  1. Graph CRUD: list, get, save, and delete stored graph documents
//     backed by a [store.Store].
//  2. Rendering: GET /api/graphs/{id}/render produces an svg, png, or
//     json artifact via [pipeline.Runner], so a server render and a CLI
//     render of the same board are byte-identical.
//  3. Live boards: POST /api/sessions opens a session for a graph;
//     GET /api/live/{id} upgrades to a websocket that streams rendered
//     frames and accepts pointer events. Each live board owns one
//     [engine.Engine] on a single goroutine.
//
// With a watch path configured, the server reloads the board file on
// change and pushes fresh frames to every attached live board.
//
// # Usage
//
//	srv := server.New(server.Config{
//	    Addr:  ":7333",
//	    Store: st,
//	})
//	if err := srv.ListenAndServe(ctx); err != nil {
//	    return err
//	}
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/casetrace/linkboard/pkg/errors"
	"github.com/casetrace/linkboard/pkg/icons"
	"github.com/casetrace/linkboard/pkg/layout"
	"github.com/casetrace/linkboard/pkg/pipeline"
	"github.com/casetrace/linkboard/pkg/render"
	"github.com/casetrace/linkboard/pkg/session"
	"github.com/casetrace/linkboard/pkg/store"
)

// =============================================================================
// Defaults (Single Source of Truth)
// =============================================================================

const (
	// DefaultAddr is the default listen address.
	DefaultAddr = ":7333"

	// DefaultFrameInterval is the live frame cadence, about 30 frames
	// per second. Unchanged frames are not sent, so idle boards cost
	// no bandwidth.
	DefaultFrameInterval = 33 * time.Millisecond

	// shutdownTimeout bounds graceful shutdown once the context ends.
	shutdownTimeout = 5 * time.Second
)

// =============================================================================
// Configuration
// =============================================================================

// Config holds the server dependencies and knobs. The zero value runs
// an in-memory server on [DefaultAddr].
type Config struct {
	// Addr is the listen address.
	Addr string

	// Store persists graph documents.
	Store store.Store

	// Sessions tracks live board sessions.
	Sessions session.Store

	// Runner renders batch artifacts. A nil runner renders uncached.
	Runner *pipeline.Runner

	// Icons supplies node-type glyphs to live boards and renders.
	Icons *icons.Registry

	// Theme is the color theme for live boards.
	Theme render.Theme

	// Render is the render configuration for live boards and the
	// render endpoint.
	Render render.Config

	// Force tunes the live force simulation.
	Force layout.ForceConfig

	// WatchPath is a board file reloaded on change. Empty disables
	// watching.
	WatchPath string

	// FrameInterval is the live frame cadence.
	FrameInterval time.Duration

	// Logger receives server logs.
	Logger *log.Logger
}

func (c Config) withDefaults() Config {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.Store == nil {
		c.Store = store.NewMemoryStore()
	}
	if c.Sessions == nil {
		c.Sessions = session.NewMemoryStore()
	}
	if c.Logger == nil {
		c.Logger = log.Default()
	}
	if c.Runner == nil {
		c.Runner = pipeline.NewRunner(nil, nil, c.Logger)
	}
	if c.Theme.Name == "" {
		c.Theme = render.DarkTheme()
	}
	if c.FrameInterval <= 0 {
		c.FrameInterval = DefaultFrameInterval
	}
	c.Render = c.Render.Normalized()
	return c
}

// =============================================================================
// Server
// =============================================================================

// Server is the linkboard preview server.
type Server struct {
	cfg      Config
	logger   *log.Logger
	router   chi.Router
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	boards  map[string]*liveBoard
	watchID string
}

// New builds a server from the given configuration.
func New(cfg Config) *Server {
	cfg = cfg.withDefaults()
	s := &Server{
		cfg:    cfg,
		logger: cfg.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The preview server binds to localhost; boards carry no
			// credentials, so cross-origin dev tooling may connect.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		boards: make(map[string]*liveBoard),
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler, for mounting or tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/graphs", func(r chi.Router) {
			r.Get("/", s.handleListGraphs)
			r.Post("/", s.handleSaveGraph)
			r.Route("/{graphID}", func(r chi.Router) {
				r.Get("/", s.handleGetGraph)
				r.Put("/", s.handleSaveGraph)
				r.Delete("/", s.handleDeleteGraph)
				r.Get("/render", s.handleRenderGraph)
			})
		})
		r.Post("/sessions", s.handleOpenSession)
		r.Get("/live/{sessionID}", s.handleLive)
	})

	return r
}

// ListenAndServe runs the server until ctx is done, then shuts down
// gracefully. With a watch path configured, the board file is loaded
// into the store first and reloaded on every change.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s.cfg.WatchPath != "" {
		if err := s.loadWatched(ctx); err != nil {
			return err
		}
		watcher, err := s.newWatcher()
		if err != nil {
			return err
		}
		go s.watchLoop(ctx, watcher)
	}

	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutCtx)
		s.closeBoards()
	}()

	s.logger.Info("preview server listening", "addr", s.cfg.Addr)
	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeServer, err, "serve %s", s.cfg.Addr)
	}
	return nil
}

// =============================================================================
// Live Board Registry
// =============================================================================

func (s *Server) addBoard(b *liveBoard) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.boards[b.sessionID]; ok {
		// A reconnect for the same session replaces the old board.
		prev.close()
	}
	s.boards[b.sessionID] = b
}

func (s *Server) removeBoard(b *liveBoard) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.boards[b.sessionID] == b {
		delete(s.boards, b.sessionID)
	}
}

func (s *Server) closeBoards() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, b := range s.boards {
		b.close()
		delete(s.boards, id)
	}
}
