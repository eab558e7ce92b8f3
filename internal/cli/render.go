package cli

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/casetrace/linkboard/pkg/graph"
	"github.com/casetrace/linkboard/pkg/icons"
	"github.com/casetrace/linkboard/pkg/pipeline"
)

// renderCommand creates the render command for generating board artifacts.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		selectStr  string
		iconsDir   string
		output     string
		noCache    bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "render [board.json|url]",
		Short: "Render a board to SVG, PNG, or JSON artifacts",
		Long: `Render a board to SVG, PNG, or JSON artifacts.

The render command loads a board document from a local file or an http(s)
URL, computes node positions with the chosen layout engine, declutters the
labels, and writes one artifact per requested format. The JSON format dumps
the frame draw commands instead of an image.

Results are cached locally for faster subsequent runs.

Examples:
  linkboard render board.json
  linkboard render board.json -f svg,png -o out/board
  linkboard render board.json --layout dot --theme light
  linkboard render https://example.com/case-42.json --select acct-77`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Source = args[0]
			opts.Formats = parseFormats(formatsStr)
			opts.Select = splitIDs(selectStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			if err := pipeline.ValidateLayout(opts.Layout); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), opts, iconsDir, output, noCache)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple); - for stdout")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute every stage, bypassing cached results")

	// Load flags
	cmd.Flags().IntVar(&opts.MaxNodes, "max-nodes", pipeline.DefaultMaxNodes, "maximum nodes to load")
	cmd.Flags().IntVar(&opts.MaxEdges, "max-edges", pipeline.DefaultMaxEdges, "maximum edges to load")

	// Layout flags
	cmd.Flags().StringVar(&opts.Layout, "layout", graph.LayoutForce, "layout engine: force (default), dot")
	cmd.Flags().IntVar(&opts.Width, "width", pipeline.DefaultWidth, "frame width in pixels")
	cmd.Flags().IntVar(&opts.Height, "height", pipeline.DefaultHeight, "frame height in pixels")

	// Render flags
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, json (comma-separated)")
	cmd.Flags().StringVar(&opts.Theme, "theme", "", "theme: dark (default), light, high-contrast")
	cmd.Flags().StringVar(&opts.ThemeFile, "theme-file", "", "custom YAML palette file (overrides --theme)")
	cmd.Flags().StringVar(&selectStr, "select", "", "node id(s) rendered as selected (comma-separated)")
	cmd.Flags().Float64Var(&opts.Scale, "scale", pipeline.DefaultScale, "PNG resolution multiplier")
	cmd.Flags().BoolVar(&opts.ElementIDs, "element-ids", false, "tag SVG elements with node and edge ids")
	cmd.Flags().StringVar(&iconsDir, "icons", "", "directory of <type>.svg node icons")

	return cmd
}

// runRender executes the full pipeline and writes the artifacts.
func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, iconsDir, output string, noCache bool) error {
	s := c.loadSettings()
	if opts.Theme == "" {
		opts.Theme = s.Display.Theme
	}
	opts.Config = renderConfig(s)
	opts.Force = forceConfig(s)
	opts.Logger = c.Logger
	if iconsDir != "" {
		opts.Icons = icons.NewRegistry(iconsDir, icons.WithLogger(c.Logger))
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", opts.Source))
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths, err := writeArtifacts(result.Artifacts, opts.Formats, opts.Source, output)
	if err != nil {
		return err
	}

	printSuccess("Render complete")
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.RenderHit)
	if !isRemoteSource(opts.Source) {
		printNewline()
		printNextStep("Preview", "linkboard serve --watch "+opts.Source)
	}

	return nil
}

// writeArtifacts writes one file per rendered format and returns the
// written paths. Stdout output ("-") is only allowed for a single format.
func writeArtifacts(artifacts map[string][]byte, formats []string, source, output string) ([]string, error) {
	if output == "-" {
		if len(formats) != 1 {
			return nil, fmt.Errorf("stdout output requires a single format, got %d", len(formats))
		}
		if _, err := os.Stdout.Write(artifacts[formats[0]]); err != nil {
			return nil, err
		}
		return nil, nil
	}

	var paths []string
	for _, format := range formats {
		p := artifactPath(source, output, format, len(formats))
		out, err := openOutput(p)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", p, err)
		}
		_, err = out.Write(artifacts[format])
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return nil, fmt.Errorf("write %s: %w", p, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// artifactPath resolves the output path for one format. A single format
// with an explicit output keeps that path verbatim; everything else is
// <base>.<format> with the base derived from the output or the source.
func artifactPath(source, output, format string, formatCount int) string {
	if output != "" && formatCount == 1 {
		return output
	}
	return basePath(output, source) + "." + format
}

// basePath derives the base output path from the output and source paths.
// If output is empty, it is derived from the source; a format extension on
// the output (.svg, .png, .json) is stripped so multi-format runs produce
// sibling files.
func basePath(output, source string) string {
	if output == "" {
		return sourceBase(source)
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// sourceBase derives an output base name from the board source. Remote
// sources use the last URL path segment, falling back to "board" when the
// URL carries no usable name.
func sourceBase(source string) string {
	if !isRemoteSource(source) {
		return strings.TrimSuffix(source, filepath.Ext(source))
	}
	u, err := url.Parse(source)
	if err != nil {
		return "board"
	}
	base := path.Base(u.Path)
	base = strings.TrimSuffix(base, path.Ext(base))
	if base == "" || base == "." || base == "/" {
		return "board"
	}
	return base
}

// isRemoteSource reports whether the source is an http(s) URL.
func isRemoteSource(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// nopCloser wraps an io.Writer with a no-op Close method.
// It is used to make os.Stdout compatible with io.WriteCloser.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty, it returns os.Stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
