// Package icons resolves node types to icon images by directory
// convention: the icon for type "person" is <dir>/person.svg.
//
// Lookups are memoized, hits and misses alike, so the frame path never
// touches the filesystem. A missing or unreadable icon degrades silently
// to no icon; it is never an error.
package icons

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/casetrace/linkboard/pkg/errors"
)

// Registry memoizes icon bytes by node type. The map is append-only:
// a type, once resolved, keeps its result for the registry's lifetime.
type Registry struct {
	dir    string
	logger *log.Logger

	mu      sync.RWMutex
	entries map[string][]byte // nil value records a known miss
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for miss reporting.
func WithLogger(logger *log.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry returns a registry rooted at dir. The directory may be
// empty or absent; every lookup then misses.
func NewRegistry(dir string, opts ...Option) *Registry {
	r := &Registry{
		dir:     dir,
		logger:  log.Default(),
		entries: make(map[string][]byte),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the memoized icon for a type without touching the
// filesystem. Unseen types miss; call Load or Preload first.
func (r *Registry) Get(typ string) ([]byte, bool) {
	r.mu.RLock()
	data, seen := r.entries[typ]
	r.mu.RUnlock()
	return data, seen && data != nil
}

// Load resolves a type, reading its file on first sight and memoizing the
// result. Re-loading a seen type is idempotent and reuses the memo.
func (r *Registry) Load(typ string) ([]byte, bool) {
	r.mu.RLock()
	data, seen := r.entries[typ]
	r.mu.RUnlock()
	if seen {
		return data, data != nil
	}

	data = r.read(typ)

	r.mu.Lock()
	// A racing load may have resolved the same type; the file content is
	// identical either way, so last write is as good as first.
	r.entries[typ] = data
	r.mu.Unlock()

	return data, data != nil
}

// Preload resolves a set of types up front so later Get calls are pure
// map lookups.
func (r *Registry) Preload(types ...string) {
	for _, typ := range types {
		r.Load(typ)
	}
}

// Seen returns the number of memoized types, hits and misses included.
func (r *Registry) Seen() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// read fetches icon bytes from disk, or nil for any kind of failure.
func (r *Registry) read(typ string) []byte {
	if r.dir == "" {
		return nil
	}
	if err := errors.ValidateIconType(typ); err != nil {
		r.logger.Debug("invalid icon type", "type", typ)
		return nil
	}

	path := filepath.Join(r.dir, typ+".svg")
	data, err := os.ReadFile(path)
	if err != nil {
		r.logger.Debug("icon miss", "type", typ, "path", path)
		return nil
	}
	if len(data) == 0 {
		r.logger.Debug("empty icon", "type", typ, "path", path)
		return nil
	}
	return data
}
