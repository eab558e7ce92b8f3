package server

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/casetrace/linkboard/pkg/errors"
	"github.com/casetrace/linkboard/pkg/graph"
	"github.com/casetrace/linkboard/pkg/store"
)

// watchDebounce collapses the burst of filesystem events an editor
// save produces into one reload.
const watchDebounce = 100 * time.Millisecond

// loadWatched reads the watched board file into the store under a
// stable id derived from the file name, so restarts reuse the record.
func (s *Server) loadWatched(ctx context.Context) error {
	doc, err := readBoardFile(s.cfg.WatchPath)
	if err != nil {
		return err
	}

	rec, err := s.cfg.Store.Save(ctx, store.Record{
		ID:    watchBoardID(s.cfg.WatchPath),
		Name:  doc.Name,
		Graph: doc,
	})
	if err != nil {
		return err
	}

	s.watchID = rec.ID
	s.logger.Info("serving board file",
		"path", s.cfg.WatchPath, "id", rec.ID,
		"nodes", len(doc.Nodes), "edges", len(doc.Edges))
	return nil
}

// newWatcher watches the board file's directory. Editors replace files
// on save, so watching the parent survives rename-over-write.
func (s *Server) newWatcher() (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeServer, err, "create file watcher")
	}
	if err := watcher.Add(filepath.Dir(s.cfg.WatchPath)); err != nil {
		watcher.Close()
		return nil, errors.Wrap(errors.ErrCodeServer, err, "watch %s", s.cfg.WatchPath)
	}
	return watcher, nil
}

// watchLoop reloads the board on file changes until ctx is done.
func (s *Server) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer watcher.Close()

	debounce := time.NewTimer(0)
	<-debounce.C

	target := filepath.Clean(s.cfg.WatchPath)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			debounce.Reset(watchDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("file watcher error", "error", err)

		case <-debounce.C:
			s.reloadWatched(ctx)
		}
	}
}

// reloadWatched re-reads the board file and pushes the new graph to
// every attached live board. An unreadable file keeps the previous
// board; editors truncate before they finish writing.
func (s *Server) reloadWatched(ctx context.Context) {
	doc, err := readBoardFile(s.cfg.WatchPath)
	if err != nil {
		s.logger.Warn("board file unreadable after change", "path", s.cfg.WatchPath, "error", err)
		return
	}

	rec, err := s.cfg.Store.Save(ctx, store.Record{
		ID:    s.watchID,
		Name:  doc.Name,
		Graph: doc,
	})
	if err != nil {
		s.logger.Error("save reloaded board", "error", err)
		return
	}

	g := graph.ToGraph(doc)
	pushed := 0
	s.mu.RLock()
	for _, b := range s.boards {
		if b.graphID != rec.ID {
			continue
		}
		select {
		case b.reload <- g:
			pushed++
		default:
			// A reload is already pending on this board.
		}
	}
	s.mu.RUnlock()

	s.logger.Info("board file reloaded",
		"path", s.cfg.WatchPath, "nodes", len(doc.Nodes), "edges", len(doc.Edges),
		"boards", pushed)
}

func readBoardFile(path string) (graph.Document, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return graph.Document{}, errors.New(errors.ErrCodeFileNotFound, "board file not found: %s", path)
	}
	if err != nil {
		return graph.Document{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read board file %s", path)
	}
	return graph.UnmarshalDocument(data)
}

// watchBoardID derives a store id from the board file name, falling
// back to "board" when the name is not a safe id.
func watchBoardID(path string) string {
	id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if errors.ValidateGraphID(id) != nil {
		return "board"
	}
	return id
}
