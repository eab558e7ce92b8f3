package declutter

import (
	"math"
	"unicode/utf8"

	"github.com/casetrace/linkboard/pkg/viewport"
)

// Candidate is one node's label as seen by the calculator: projected
// screen position, drawn radius, label text, and connectivity.
type Candidate struct {
	ID     string
	X      float64 // Screen-space node center
	Y      float64
	Radius float64 // Screen-space node radius
	Label  string
	Degree int
}

// FontSize returns the label font size for the current zoom and the user
// font scale, clamped to the readable range.
func (c Config) FontSize(zoom, fontScale float64) float64 {
	c = c.withDefaults()
	size := c.BaseFontSize * zoom * fontScale
	return math.Max(c.MinFontSize, math.Min(c.MaxFontSize, size))
}

// LabelSize estimates the pill dimensions for text at fontSize. Width uses
// the character-ratio approximation instead of real text measurement; the
// renderer must size pills with the same formula or collision checks and
// drawn labels diverge.
func (c Config) LabelSize(text string, fontSize float64) (w, h float64) {
	c = c.withDefaults()
	runes := utf8.RuneCountInString(text)
	w = fontSize*c.CharWidthRatio*float64(runes) + 2*c.PadX
	h = fontSize + 2*c.PadY
	return w, h
}

// ComputeBoxes derives one [LabelBox] per candidate: pill metrics from the
// zoom-scaled font, position below the node, and priority from
// connectivity and center proximity.
//
// This runs on zoom/pan/viewport/data changes only, never per animation
// frame; the caller throttles.
func ComputeBoxes(cands []Candidate, vp viewport.Viewport, fontScale float64, cfg Config) []LabelBox {
	cfg = cfg.withDefaults()
	fontSize := cfg.FontSize(vp.Zoom, fontScale)
	cx, cy := vp.Center()
	maxDist := vp.MaxCornerDistance()

	boxes := make([]LabelBox, len(cands))
	for i, cand := range cands {
		w, h := cfg.LabelSize(cand.Label, fontSize)
		boxes[i] = LabelBox{
			NodeID:   cand.ID,
			X:        cand.X,
			Y:        cand.Y + cand.Radius + fontSize*cfg.LabelGapRatio,
			Width:    w,
			Height:   h,
			Priority: cfg.priority(cand, cx, cy, maxDist),
		}
	}
	return boxes
}

// priority blends connectivity and center proximity into [0,1].
// Well-connected, visually central nodes carry more investigative signal.
func (c Config) priority(cand Candidate, cx, cy, maxDist float64) float64 {
	conn := math.Min(float64(cand.Degree)/float64(c.ConnSaturation), 1)

	center := 0.0
	if maxDist > 0 {
		center = clamp01(1 - math.Hypot(cand.X-cx, cand.Y-cy)/maxDist)
	}

	return c.ConnWeight*conn + c.CenterWeight*center
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
