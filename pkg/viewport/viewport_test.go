package viewport

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		vp     Viewport
		wx, wy float64
	}{
		{"Origin", New(800, 600), 0, 0},
		{"Offset", New(800, 600).Pan(120, -35), 42.5, -17},
		{"Zoomed", New(800, 600).ZoomAt(400, 300, 2.5), -310, 97},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sx, sy := tt.vp.ToScreen(tt.wx, tt.wy)
			wx, wy := tt.vp.ToWorld(sx, sy)
			if !almostEqual(wx, tt.wx) || !almostEqual(wy, tt.wy) {
				t.Errorf("round trip = (%v, %v), want (%v, %v)", wx, wy, tt.wx, tt.wy)
			}
		})
	}
}

func TestNewCentersOrigin(t *testing.T) {
	vp := New(800, 600)
	sx, sy := vp.ToScreen(0, 0)
	if sx != 400 || sy != 300 {
		t.Errorf("origin maps to (%v, %v), want (400, 300)", sx, sy)
	}
}

func TestZoomAtKeepsAnchorFixed(t *testing.T) {
	vp := New(800, 600)
	anchorX, anchorY := 650.0, 120.0
	wx, wy := vp.ToWorld(anchorX, anchorY)

	zoomed := vp.ZoomAt(anchorX, anchorY, 3)

	sx, sy := zoomed.ToScreen(wx, wy)
	if !almostEqual(sx, anchorX) || !almostEqual(sy, anchorY) {
		t.Errorf("anchor moved to (%v, %v), want (%v, %v)", sx, sy, anchorX, anchorY)
	}
	if zoomed.Zoom != 3 {
		t.Errorf("Zoom = %v, want 3", zoomed.Zoom)
	}
}

func TestZoomClamped(t *testing.T) {
	tests := []struct {
		name   string
		factor float64
		want   float64
	}{
		{"BelowFloor", 0.001, MinZoom},
		{"AboveCeiling", 100, MaxZoom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vp := New(800, 600).ZoomAt(400, 300, tt.factor)
			if vp.Zoom != tt.want {
				t.Errorf("Zoom = %v, want %v", vp.Zoom, tt.want)
			}
		})
	}
}

func TestPanIsValueSemantic(t *testing.T) {
	vp := New(800, 600)
	moved := vp.Pan(50, 50)

	if vp.OffsetX != 400 {
		t.Errorf("original mutated: OffsetX = %v, want 400", vp.OffsetX)
	}
	if moved.OffsetX != 450 || moved.OffsetY != 350 {
		t.Errorf("moved offset = (%v, %v), want (450, 350)", moved.OffsetX, moved.OffsetY)
	}
}

func TestFit(t *testing.T) {
	vp := New(800, 600).Fit(-100, -50, 100, 50)

	// Content center must land on the canvas center.
	sx, sy := vp.ToScreen(0, 0)
	if !almostEqual(sx, 400) || !almostEqual(sy, 300) {
		t.Errorf("content center at (%v, %v), want (400, 300)", sx, sy)
	}

	// All corners must stay inside the padded canvas.
	for _, corner := range [][2]float64{{-100, -50}, {100, -50}, {-100, 50}, {100, 50}} {
		cx, cy := vp.ToScreen(corner[0], corner[1])
		if !vp.OnScreen(cx, cy, -DefaultFitPadding+1e-6) {
			t.Errorf("corner %v maps off the padded canvas to (%v, %v)", corner, cx, cy)
		}
	}
}

func TestFitDegenerateBounds(t *testing.T) {
	vp := New(800, 600).Fit(10, 10, 10, 10)
	if vp.Zoom != 1 {
		t.Errorf("Zoom = %v, want 1 for a point", vp.Zoom)
	}
	sx, sy := vp.ToScreen(10, 10)
	if !almostEqual(sx, 400) || !almostEqual(sy, 300) {
		t.Errorf("point at (%v, %v), want canvas center", sx, sy)
	}
}

func TestMaxCornerDistance(t *testing.T) {
	vp := New(800, 600)
	want := math.Hypot(400, 300)
	if got := vp.MaxCornerDistance(); !almostEqual(got, want) {
		t.Errorf("MaxCornerDistance() = %v, want %v", got, want)
	}
}

func TestOnScreen(t *testing.T) {
	vp := New(800, 600)
	tests := []struct {
		name   string
		x, y   float64
		margin float64
		want   bool
	}{
		{"Inside", 400, 300, 0, true},
		{"EdgeExact", 800, 600, 0, true},
		{"Outside", 801, 300, 0, false},
		{"OutsideButMargin", 830, 300, 50, true},
		{"InsideButShrunk", 10, 300, -20, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := vp.OnScreen(tt.x, tt.y, tt.margin); got != tt.want {
				t.Errorf("OnScreen(%v, %v, %v) = %v, want %v", tt.x, tt.y, tt.margin, got, tt.want)
			}
		})
	}
}
