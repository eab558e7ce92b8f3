// Package render builds frames of typed draw commands from scene state.
//
// # Overview
//
// [Build] is a pure projection: graph, world positions, viewport, theme,
// highlight state, and the declutter visible set go in, a [Frame] of
// ordered draw commands comes out. Nothing in this package performs I/O
// or blocks, so Build is safe on the frame path at interactive rates.
//
//	frame := render.Build(g, positions, vp,
//	    render.WithTheme(render.DarkTheme()),
//	    render.WithHighlight(state),
//	    render.WithVisible(visible),
//	    render.WithIcons(registry),
//	)
//
// Sinks in [sink] consume frames: SVG markup, a JSON dump of the command
// list, or a PNG rasterized from the SVG.
//
// # Spotlight and Decluttering
//
// While a hover highlight is active, everything outside the highlight
// sets dims to the configured DimAlpha. Labels draw only for ids the
// declutter pass admitted (or the hover neighborhood), with pills sized
// by the exact formulas the collision checks used.
//
// # Themes
//
// Palettes are [Theme] values: built-ins via [ThemeByName], custom ones
// from YAML files via [LoadTheme].
//
// [sink]: github.com/casetrace/linkboard/pkg/render/sink
package render
