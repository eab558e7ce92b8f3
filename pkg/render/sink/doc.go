// Package sink serializes rendered frames into output formats.
//
// # Overview
//
// A sink consumes a [render.Frame] command list in painter order and
// produces a final artifact:
//
//   - SVG: standalone vector markup ([SVG])
//   - JSON: the command list as data for external tooling ([JSON])
//   - PNG: raster output via headless Chrome ([PNG])
//
// # SVG Output
//
//	markup := sink.SVG(frame,
//	    sink.WithElementIDs(),
//	)
//
// Every command maps to one SVG element, so the markup mirrors the frame
// exactly and diffing two frames diffs their drawings.
//
// # JSON Output
//
// [JSON] dumps canvas dimensions, stats, and every command with a kind
// discriminator. External viewers can replay the list without knowing
// anything about graphs or layouts.
//
// # PNG Output
//
// [PNG] loads the SVG into headless Chrome as a data URI and screenshots
// the svg element. A Chrome or Chromium binary must be installed:
//
//	img, err := sink.PNG(ctx, frame, sink.WithScale(2))
//
// # Adding New Formats
//
// New sinks take a [render.Frame] plus functional options and switch on
// the command types in [render.Frame.Commands]. Preserve slice order:
// it is the paint order.
//
// [render.Frame]: github.com/casetrace/linkboard/pkg/render.Frame
package sink
