package sink

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"html"
	"math"
	"time"

	"github.com/casetrace/linkboard/pkg/observability"
	"github.com/casetrace/linkboard/pkg/render"
)

// SVGOption configures SVG serialization.
type SVGOption func(*svgRenderer)

// WithElementIDs emits id attributes on node and edge elements so host
// pages can address them from scripts or CSS.
func WithElementIDs() SVGOption {
	return func(r *svgRenderer) { r.elementIDs = true }
}

// WithPixelRatio scales the width and height attributes while keeping
// the viewBox, so rasterizers sample at higher resolution.
func WithPixelRatio(ratio float64) SVGOption {
	return func(r *svgRenderer) {
		if ratio > 0 {
			r.pixelRatio = ratio
		}
	}
}

type svgRenderer struct {
	elementIDs bool
	pixelRatio float64
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{
		pixelRatio: 1,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// SVG serializes a frame as standalone SVG markup. Commands translate
// one to one into elements in paint order, so the markup draws exactly
// what a canvas painter would.
func SVG(f render.Frame, opts ...SVGOption) []byte {
	start := time.Now()
	hooks := observability.Render()
	hooks.OnSinkStart(context.Background(), "svg")

	r := newSVGRenderer(opts...)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f"`,
		f.Width, f.Height, f.Width*r.pixelRatio, f.Height*r.pixelRatio)
	if f.FontFamily != "" {
		fmt.Fprintf(&buf, ` font-family=%q`, f.FontFamily)
	}
	buf.WriteString(">\n")
	if f.Background != "" {
		fmt.Fprintf(&buf, "  <rect width=\"%.1f\" height=\"%.1f\" fill=%q/>\n",
			f.Width, f.Height, f.Background)
	}
	for _, cmd := range f.Commands {
		r.writeCommand(&buf, cmd)
	}
	buf.WriteString("</svg>\n")

	out := buf.Bytes()
	hooks.OnSinkComplete(context.Background(), "svg", len(out), time.Since(start), nil)
	return out
}

func (r svgRenderer) writeCommand(buf *bytes.Buffer, cmd render.Command) {
	switch c := cmd.(type) {
	case render.Stroke:
		if c.Curved {
			fmt.Fprintf(buf, "  <path%s d=\"M %.1f %.1f Q %.1f %.1f %.1f %.1f\" fill=\"none\" stroke=%q stroke-width=\"%.1f\" opacity=\"%.2f\"/>\n",
				r.idAttr("edge", c.EdgeKey), c.X1, c.Y1, c.CX, c.CY, c.X2, c.Y2, c.Color, c.Width, c.Alpha)
		} else {
			fmt.Fprintf(buf, "  <line%s x1=\"%.1f\" y1=\"%.1f\" x2=\"%.1f\" y2=\"%.1f\" stroke=%q stroke-width=\"%.1f\" opacity=\"%.2f\"/>\n",
				r.idAttr("edge", c.EdgeKey), c.X1, c.Y1, c.X2, c.Y2, c.Color, c.Width, c.Alpha)
		}
	case render.Arrowhead:
		fmt.Fprintf(buf, "  <polygon points=\"0,0 %.1f,%.1f %.1f,%.1f\" transform=\"translate(%.1f %.1f) rotate(%.1f)\" fill=%q opacity=\"%.2f\"/>\n",
			-c.Size, c.Size/2, -c.Size, -c.Size/2, c.X, c.Y, c.Angle*180/math.Pi, c.Color, c.Alpha)
	case render.Ring:
		fmt.Fprintf(buf, "  <circle%s cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\" fill=%q opacity=\"%.2f\"/>\n",
			r.idAttr("ring", c.NodeID), c.X, c.Y, c.R, c.Color, c.Alpha)
	case render.Circle:
		fmt.Fprintf(buf, "  <circle%s cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\" fill=%q stroke=%q stroke-width=\"%.1f\" opacity=\"%.2f\"/>\n",
			r.idAttr("node", c.NodeID), c.X, c.Y, c.R, c.Fill, c.Stroke, c.StrokeWidth, c.Alpha)
	case render.Image:
		fmt.Fprintf(buf, "  <image x=\"%.1f\" y=\"%.1f\" width=\"%.1f\" height=\"%.1f\" href=\"data:image/svg+xml;base64,%s\" opacity=\"%.2f\"/>\n",
			c.X, c.Y, c.W, c.H, base64.StdEncoding.EncodeToString(c.Data), c.Alpha)
	case render.Pill:
		fmt.Fprintf(buf, "  <rect%s x=\"%.1f\" y=\"%.1f\" width=\"%.1f\" height=\"%.1f\" rx=\"%.1f\" fill=%q stroke=%q opacity=\"%.2f\"/>\n",
			r.idAttr("pill", c.NodeID), c.X, c.Y, c.W, c.H, c.Corner, c.Fill, c.Stroke, c.Alpha)
	case render.Text:
		fmt.Fprintf(buf, "  <text%s x=\"%.1f\" y=\"%.1f\" text-anchor=\"middle\" dominant-baseline=\"central\" font-size=\"%.1f\" fill=%q opacity=\"%.2f\">%s</text>\n",
			r.idAttr("label", c.ID), c.X, c.Y, c.Size, c.Color, c.Alpha, html.EscapeString(c.Content))
	}
}

// idAttr builds an optional id attribute. Identifiers come from user
// data, so they are escaped like any other attribute value.
func (r svgRenderer) idAttr(prefix, id string) string {
	if !r.elementIDs || id == "" {
		return ""
	}
	return ` id="` + prefix + `-` + html.EscapeString(id) + `"`
}
