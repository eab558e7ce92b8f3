// Package pipeline provides the core rendering pipeline for Linkboard.
//
// This package implements the complete load → layout → render pipeline that
// can be used by CLI, server, and TUI components. By centralizing this logic,
// we ensure a board renders identically no matter which entry point asked.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Resolve a graph document from a file, URL, or in-memory value
//  2. Layout: Compute settled world-space positions for the graph
//  3. Render: Build a frame and encode it in various formats (SVG, PNG, JSON)
//
// Each stage can be run independently or as part of the complete pipeline.
// Every stage output is cached under a content-derived key, so repeat runs
// over an unchanged board skip straight to the artifact bytes.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Source:  "board.json",
//	    Layout:  "force",
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	// Load only
//	doc, err := runner.Load(ctx, opts)
//
//	// Layout with an existing graph
//	pos, err := runner.ComputeLayout(ctx, g, opts)
//
//	// Render with existing positions
//	artifacts, err := runner.Render(ctx, g, pos, opts)
package pipeline

import (
	"encoding/json"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/casetrace/linkboard/pkg/cache"
	"github.com/casetrace/linkboard/pkg/errors"
	"github.com/casetrace/linkboard/pkg/graph"
	"github.com/casetrace/linkboard/pkg/icons"
	"github.com/casetrace/linkboard/pkg/layout"
	"github.com/casetrace/linkboard/pkg/render"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, Server, and TUI
// =============================================================================

const (
	// DefaultMaxNodes caps how many nodes a loaded document may carry.
	// Boards past this size stop being readable long before they stop
	// being renderable, so the cap protects latency, not correctness.
	DefaultMaxNodes = 2000

	// DefaultMaxEdges caps how many edges a loaded document may carry.
	DefaultMaxEdges = 5000

	// DefaultWidth is the default artifact width in pixels.
	DefaultWidth = 1280

	// DefaultHeight is the default artifact height in pixels.
	DefaultHeight = 800

	// DefaultTheme is the default palette name.
	DefaultTheme = "dark"

	// DefaultScale is the default PNG resolution multiplier.
	DefaultScale = 2.0
)

// DefaultLayout is the default layout engine.
const DefaultLayout = graph.LayoutForce

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatJSON: true,
}

// ValidLayouts is the set of supported layout engines.
var ValidLayouts = map[string]bool{
	graph.LayoutForce: true,
	graph.LayoutDot:   true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the rendering pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options
	Source   string          `json:"source,omitempty"`   // File path or http(s) URL
	Document *graph.Document `json:"document,omitempty"` // In-memory document (takes precedence over Source)
	MaxNodes int             `json:"max_nodes,omitempty"`
	MaxEdges int             `json:"max_edges,omitempty"`
	Refresh  bool            `json:"refresh,omitempty"`

	// Layout options
	Layout string             `json:"layout,omitempty"` // force or dot
	Width  int                `json:"width,omitempty"`
	Height int                `json:"height,omitempty"`
	Force  layout.ForceConfig `json:"force,omitempty"` // Force simulation tuning (zero fields use defaults)

	// Render options
	Formats    []string `json:"formats,omitempty"`
	Theme      string   `json:"theme,omitempty"`
	ThemeFile  string   `json:"theme_file,omitempty"` // Custom YAML palette (takes precedence over Theme)
	Select     []string `json:"select,omitempty"`     // Node ids rendered as selected
	ElementIDs bool     `json:"element_ids,omitempty"`
	Scale      float64  `json:"scale,omitempty"` // PNG resolution multiplier

	// Runtime options (not serialized)
	Config render.Config   `json:"-"`
	Icons  *icons.Registry `json:"-"`
	Logger *log.Logger     `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the loaded graph with derived state.
	Graph *graph.Graph

	// Document is the loaded document after size caps.
	Document graph.Document

	// GraphHash is the content hash of the document.
	GraphHash string

	// Positions are the settled world-space node positions.
	Positions layout.Positions

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LoadHit   bool // Whether the loaded document came from cache
	LayoutHit bool // Whether the positions came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateLayout checks that a layout engine name is valid.
func ValidateLayout(name string) error {
	if !ValidLayouts[name] {
		return errors.New(errors.ErrCodeInvalidLayout, "invalid layout: %q (must be one of: force, dot)", name)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. This method is idempotent - calling it multiple times has
// the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	o.validated = true
	return nil
}

// ValidateForLoad checks required fields for loading.
func (o *Options) ValidateForLoad() error {
	if o.Source == "" && o.Document == nil {
		return errors.New(errors.ErrCodeInvalidInput, "source or document is required")
	}

	// Load defaults
	if o.MaxNodes == 0 {
		o.MaxNodes = DefaultMaxNodes
	}
	if o.MaxEdges == 0 {
		o.MaxEdges = DefaultMaxEdges
	}

	// Logger default
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Layout == "" {
		o.Layout = DefaultLayout
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	return ValidateLayout(o.Layout)
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Theme == "" {
		o.Theme = DefaultTheme
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.ThemeFile == "" {
		if _, ok := render.ThemeByName(o.Theme); !ok {
			return errors.New(errors.ErrCodeInvalidTheme, "unknown theme: %q (built-in themes: dark, light, high-contrast)", o.Theme)
		}
	}
	return nil
}

// IsForce returns true if this run uses the force layout.
func (o *Options) IsForce() bool {
	return o.Layout == "" || o.Layout == graph.LayoutForce
}

// IsDot returns true if this run uses the dot layout.
func (o *Options) IsDot() bool {
	return o.Layout == graph.LayoutDot
}

// GraphKeyOpts returns cache key options for document loading.
func (o *Options) GraphKeyOpts() cache.GraphKeyOpts {
	return cache.GraphKeyOpts{
		MaxNodes: o.MaxNodes,
		MaxEdges: o.MaxEdges,
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	opts := cache.LayoutKeyOpts{
		Engine: o.Layout,
		Width:  o.Width,
		Height: o.Height,
	}
	if o.IsForce() {
		tuning, _ := json.Marshal(o.Force)
		opts.Tuning = cache.Hash(tuning)
	}
	return opts
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
// The selection is sorted so the same set of ids always keys the same
// artifact regardless of flag order.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	selected := slices.Clone(o.Select)
	slices.Sort(selected)

	theme := o.Theme
	if o.ThemeFile != "" {
		theme = "file:" + o.ThemeFile
	}

	cfg, _ := json.Marshal(o.Config.Normalized())
	return cache.ArtifactKeyOpts{
		Format:     format,
		Theme:      theme,
		Width:      o.Width,
		Height:     o.Height,
		Select:     selected,
		ElementIDs: o.ElementIDs,
		Scale:      o.Scale,
		Config:     cache.Hash(cfg),
	}
}
