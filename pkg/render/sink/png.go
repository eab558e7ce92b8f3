package sink

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/casetrace/linkboard/pkg/errors"
	"github.com/casetrace/linkboard/pkg/observability"
	"github.com/casetrace/linkboard/pkg/render"
)

// PNGOption configures PNG rasterization.
type PNGOption func(*pngRenderer)

// WithPNGSVGOptions forwards options to the intermediate SVG pass.
func WithPNGSVGOptions(opts ...SVGOption) PNGOption {
	return func(r *pngRenderer) { r.svgOpts = opts }
}

// WithScale sets the raster resolution multiplier.
func WithScale(scale float64) PNGOption {
	return func(r *pngRenderer) {
		if scale > 0 {
			r.scale = scale
		}
	}
}

// WithBrowserTimeout bounds the headless browser run.
func WithBrowserTimeout(d time.Duration) PNGOption {
	return func(r *pngRenderer) {
		if d > 0 {
			r.timeout = d
		}
	}
}

type pngRenderer struct {
	svgOpts []SVGOption
	scale   float64
	timeout time.Duration
}

func newPNGRenderer(opts ...PNGOption) pngRenderer {
	r := pngRenderer{
		scale:   2.0,
		timeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// PNG rasterizes a frame by loading its SVG into headless Chrome as a
// data URI and screenshotting the svg element. A Chrome or Chromium
// binary must be installed on the host.
func PNG(ctx context.Context, f render.Frame, opts ...PNGOption) ([]byte, error) {
	start := time.Now()
	hooks := observability.Render()
	hooks.OnSinkStart(ctx, "png")

	r := newPNGRenderer(opts...)

	svg := SVG(f, append(r.svgOpts, WithPixelRatio(r.scale))...)
	dataURI := "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString(svg)

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Headless,
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var shot []byte
	tasks := chromedp.Tasks{
		chromedp.Navigate(dataURI),
		chromedp.WaitVisible(`svg`, chromedp.ByQuery),
		chromedp.Screenshot(`svg`, &shot, chromedp.ByQuery),
	}
	if err := chromedp.Run(browserCtx, tasks); err != nil {
		err = errors.Wrap(errors.ErrCodeRender, err, "rasterize frame in headless browser")
		hooks.OnSinkComplete(ctx, "png", 0, time.Since(start), err)
		return nil, err
	}
	if len(shot) == 0 {
		err := errors.New(errors.ErrCodeRender, "browser returned an empty screenshot")
		hooks.OnSinkComplete(ctx, "png", 0, time.Since(start), err)
		return nil, err
	}

	hooks.OnSinkComplete(ctx, "png", len(shot), time.Since(start), nil)
	return shot, nil
}
