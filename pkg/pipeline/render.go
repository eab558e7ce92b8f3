package pipeline

import (
	"context"

	"github.com/casetrace/linkboard/pkg/engine"
	"github.com/casetrace/linkboard/pkg/errors"
	"github.com/casetrace/linkboard/pkg/graph"
	"github.com/casetrace/linkboard/pkg/layout"
	"github.com/casetrace/linkboard/pkg/render"
	"github.com/casetrace/linkboard/pkg/render/sink"
	"github.com/casetrace/linkboard/pkg/viewport"
)

// =============================================================================
// Rendering
// =============================================================================

// Render draws one frame over the positions and encodes it in the
// requested formats.
func Render(ctx context.Context, g *graph.Graph, pos layout.Positions, opts Options) (map[string][]byte, error) {
	frame, err := BuildFrame(g, pos, opts)
	if err != nil {
		return nil, err
	}
	return encodeFrame(ctx, frame, opts)
}

// BuildFrame assembles the same render engine the live views drive and
// draws a single frame: viewport fitted to the layout bounds, selection
// applied, label declutter pass run. Batch artifacts and the live canvas
// share this code path, so a board exports exactly as it displays.
func BuildFrame(g *graph.Graph, pos layout.Positions, opts Options) (render.Frame, error) {
	theme, err := resolveTheme(opts)
	if err != nil {
		return render.Frame{}, err
	}

	vp := viewport.New(float64(opts.Width), float64(opts.Height))
	if minX, minY, maxX, maxY, ok := pos.Bounds(); ok {
		vp = vp.Fit(minX, minY, maxX, maxY)
	}

	engOpts := []engine.Option{
		engine.WithRenderConfig(opts.Config),
		engine.WithTheme(theme),
	}
	if opts.Icons != nil {
		engOpts = append(engOpts, engine.WithIcons(opts.Icons))
	}
	if opts.Logger != nil {
		engOpts = append(engOpts, engine.WithLogger(opts.Logger))
	}

	eng := engine.New(g, layout.NewStatic(pos), vp, engOpts...)
	for _, id := range opts.Select {
		eng.Select(id)
	}
	return eng.Frame(), nil
}

// encodeFrame runs each requested sink over the frame.
func encodeFrame(ctx context.Context, frame render.Frame, opts Options) (map[string][]byte, error) {
	var svgOpts []sink.SVGOption
	if opts.ElementIDs {
		svgOpts = append(svgOpts, sink.WithElementIDs())
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = sink.SVG(frame, svgOpts...)
		case FormatPNG:
			data, err = sink.PNG(ctx, frame,
				sink.WithPNGSVGOptions(svgOpts...),
				sink.WithScale(opts.Scale))
		case FormatJSON:
			data, err = sink.JSON(frame)
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %s", format)
		}

		if err != nil {
			return nil, err
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// resolveTheme resolves the palette from the options: a YAML theme file
// when one is named, a built-in theme otherwise.
func resolveTheme(opts Options) (render.Theme, error) {
	if opts.ThemeFile != "" {
		return render.LoadTheme(opts.ThemeFile)
	}
	t, ok := render.ThemeByName(opts.Theme)
	if !ok {
		return render.Theme{}, errors.New(errors.ErrCodeInvalidTheme, "unknown theme: %q (built-in themes: dark, light, high-contrast)", opts.Theme)
	}
	return t, nil
}
