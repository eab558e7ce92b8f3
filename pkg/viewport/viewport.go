// Package viewport provides the camera model for screen-space rendering.
//
// A [Viewport] is an immutable snapshot of the camera: canvas size, zoom,
// and pan offset. Mutating operations return a new value, which fits the
// frame model where shared state is read at frame start and replaced whole.
//
// Transforms follow the usual canvas convention:
//
//	screen = world*zoom + offset
//	world  = (screen - offset) / zoom
package viewport

import "math"

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

const (
	// MinZoom and MaxZoom bound the zoom factor. Zoom-dependent label
	// metrics stay finite and readable inside this range.
	MinZoom = 0.1
	MaxZoom = 8.0

	// DefaultFitPadding is the screen-space border left around content
	// by Fit, in pixels.
	DefaultFitPadding = 40.0
)

// =============================================================================
// Viewport
// =============================================================================

// Viewport is a camera snapshot in screen space.
type Viewport struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Zoom    float64 `json:"zoom"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
}

// New returns a viewport of the given canvas size at zoom 1 with the world
// origin mapped to the canvas center.
func New(width, height float64) Viewport {
	return Viewport{
		Width:   width,
		Height:  height,
		Zoom:    1,
		OffsetX: width / 2,
		OffsetY: height / 2,
	}
}

// ToScreen converts world coordinates to screen coordinates.
func (v Viewport) ToScreen(wx, wy float64) (sx, sy float64) {
	return wx*v.Zoom + v.OffsetX, wy*v.Zoom + v.OffsetY
}

// ToWorld converts screen coordinates to world coordinates.
func (v Viewport) ToWorld(sx, sy float64) (wx, wy float64) {
	return (sx - v.OffsetX) / v.Zoom, (sy - v.OffsetY) / v.Zoom
}

// Pan shifts the camera by a screen-space delta.
func (v Viewport) Pan(dx, dy float64) Viewport {
	v.OffsetX += dx
	v.OffsetY += dy
	return v
}

// ZoomAt scales the zoom by factor anchored at a screen point, so the world
// position under the anchor stays put. The result is clamped to
// [MinZoom, MaxZoom].
func (v Viewport) ZoomAt(sx, sy, factor float64) Viewport {
	wx, wy := v.ToWorld(sx, sy)
	v.Zoom = clampZoom(v.Zoom * factor)
	v.OffsetX = sx - wx*v.Zoom
	v.OffsetY = sy - wy*v.Zoom
	return v
}

// WithZoom returns the viewport at an absolute zoom, clamped, anchored at
// the canvas center.
func (v Viewport) WithZoom(zoom float64) Viewport {
	cx, cy := v.Center()
	if v.Zoom <= 0 {
		v.Zoom = 1
	}
	return v.ZoomAt(cx, cy, clampZoom(zoom)/v.Zoom)
}

// Fit returns a viewport positioned so the world rectangle
// [minX,maxX]×[minY,maxY] fills the canvas with DefaultFitPadding around
// it, zoom clamped as usual. A degenerate rectangle centers at zoom 1.
func (v Viewport) Fit(minX, minY, maxX, maxY float64) Viewport {
	w := maxX - minX
	h := maxY - minY
	cx := (minX + maxX) / 2
	cy := (minY + maxY) / 2

	zoom := 1.0
	availW := v.Width - 2*DefaultFitPadding
	availH := v.Height - 2*DefaultFitPadding
	if w > 0 && h > 0 && availW > 0 && availH > 0 {
		zoom = clampZoom(math.Min(availW/w, availH/h))
	}

	v.Zoom = zoom
	v.OffsetX = v.Width/2 - cx*zoom
	v.OffsetY = v.Height/2 - cy*zoom
	return v
}

// Center returns the canvas center in screen coordinates.
func (v Viewport) Center() (cx, cy float64) {
	return v.Width / 2, v.Height / 2
}

// MaxCornerDistance returns the distance from the canvas center to a corner.
// It normalizes center-proximity scores to [0,1].
func (v Viewport) MaxCornerDistance() float64 {
	return math.Hypot(v.Width/2, v.Height/2)
}

// OnScreen reports whether a screen point lies inside the canvas, expanded
// by margin on every side. Negative margins shrink the test area.
func (v Viewport) OnScreen(sx, sy, margin float64) bool {
	return sx >= -margin && sx <= v.Width+margin &&
		sy >= -margin && sy <= v.Height+margin
}

func clampZoom(z float64) float64 {
	if z < MinZoom {
		return MinZoom
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}
