package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/casetrace/linkboard/pkg/cache"
	"github.com/casetrace/linkboard/pkg/errors"
	"github.com/casetrace/linkboard/pkg/graph"
	"github.com/casetrace/linkboard/pkg/httputil"
	"github.com/casetrace/linkboard/pkg/layout"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache, fetch client, and logger -
// it doesn't store pipeline results. Multiple goroutines can safely use
// the same Runner with different options.
type Runner struct {
	Cache   cache.Cache
	Keyer   cache.Keyer
	Fetcher *httputil.Client
	Logger  *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// The fetch client shares the cache, so remote documents are also cached
// at the raw response level.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	fetcher := httputil.NewClient(
		httputil.WithCache(c, keyer, cache.TTLSource),
		httputil.WithLogger(logger),
	)
	return &Runner{
		Cache:   c,
		Keyer:   keyer,
		Fetcher: fetcher,
		Logger:  logger,
	}
}

// Execute runs the complete load → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Load
	loadStart := time.Now()
	doc, loadHit, err := r.LoadWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Document = doc
	result.Graph = graph.ToGraph(doc)
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.NodeCount = result.Graph.NodeCount()
	result.Stats.EdgeCount = result.Graph.EdgeCount()
	result.CacheInfo.LoadHit = loadHit

	// Compute document hash for cache keys and API responses
	if data, err := graph.MarshalDocument(doc); err == nil {
		result.GraphHash = cache.Hash(data)
	}

	r.Logger.Info("loaded graph",
		"nodes", result.Stats.NodeCount,
		"edges", result.Stats.EdgeCount,
		"duration", result.Stats.LoadTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	pos, layoutHit, err := r.ComputeLayoutWithCacheInfo(ctx, result.Graph, opts)
	if err != nil {
		return nil, err
	}
	result.Positions = pos
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"engine", opts.Layout,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, result.Graph, pos, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered artifacts",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LoadWithCacheInfo loads the document with caching and returns cache hit
// info. The parsed and capped document is cached under a hash of the raw
// source bytes, so a changed file or response body never serves a stale
// board.
func (r *Runner) LoadWithCacheInfo(ctx context.Context, opts Options) (graph.Document, bool, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return graph.Document{}, false, err
	}
	r.applyLogger(&opts)

	if opts.Refresh && isRemote(opts.Source) {
		_ = r.Fetcher.Forget(ctx, opts.Source)
	}

	raw, err := fetchSource(ctx, r.Fetcher, opts)
	if err != nil {
		return graph.Document{}, false, err
	}
	cacheKey := r.Keyer.GraphKey(cache.Hash(raw), opts.GraphKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			doc, err := graph.UnmarshalDocument(data)
			if err == nil {
				return doc, true, nil // Cache hit
			}
		}
	}

	// Parse and cap
	doc, err := parseDocument(raw, opts)
	if err != nil {
		return graph.Document{}, false, err
	}

	// Cache the result
	if data, err := graph.MarshalDocument(doc); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLGraph)
	}

	return doc, false, nil // Cache miss
}

// Load is a convenience wrapper that calls LoadWithCacheInfo and discards the cache hit info.
func (r *Runner) Load(ctx context.Context, opts Options) (graph.Document, error) {
	doc, _, err := r.LoadWithCacheInfo(ctx, opts)
	return doc, err
}

// ComputeLayoutWithCacheInfo computes positions with caching and returns cache hit info.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, g *graph.Graph, opts Options) (layout.Positions, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	// Compute cache key
	docData, _ := graph.MarshalDocument(graph.FromGraph(g))
	graphHash := cache.Hash(docData)
	cacheKey := r.Keyer.LayoutKey(graphHash, opts.LayoutKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			cached, err := layout.UnmarshalPositions(data)
			if err == nil {
				return cached, true, nil // Cache hit
			}
			// If deserialization fails, fall through to recompute
		}
	}

	// Compute positions
	pos, err := ComputeLayout(ctx, g, opts)
	if err != nil {
		return nil, false, err
	}

	// Cache the result
	if data, err := layout.MarshalPositions(pos); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout)
	}

	return pos, false, nil // Cache miss
}

// ComputeLayout is a convenience wrapper that calls ComputeLayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) ComputeLayout(ctx context.Context, g *graph.Graph, opts Options) (layout.Positions, error) {
	pos, _, err := r.ComputeLayoutWithCacheInfo(ctx, g, opts)
	return pos, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache
// hit info. Artifacts are keyed over both the document and the positions:
// a relabeled node moves nothing, but its artifact must still re-render.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g *graph.Graph, pos layout.Positions, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	docData, _ := graph.MarshalDocument(graph.FromGraph(g))
	posData, err := layout.MarshalPositions(pos)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeCache, err, "serialize positions for cache key")
	}
	frameHash := cache.Hash(append(docData, posData...))

	// Try to get all formats from cache (unless refresh requested)
	if !opts.Refresh {
		allCached := true
		artifacts := make(map[string][]byte)

		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(frameHash, opts.ArtifactKeyOpts(format))
			if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
				artifacts[format] = data
			} else {
				allCached = false
				break
			}
		}

		if allCached && len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil // All artifacts from cache
		}
	}

	// Render all formats
	rendered, err := Render(ctx, g, pos, opts)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(frameHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
	}

	return rendered, false, nil // Cache miss
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, g *graph.Graph, pos layout.Positions, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, g, pos, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
