package render

import "math"

// controlPoint returns the quadratic Bezier control point for an edge:
// the chord midpoint pushed perpendicular to the chord by
// curvature * chord length. A zero curvature or degenerate chord keeps
// the midpoint, which degenerates the curve to the straight segment.
func controlPoint(x1, y1, x2, y2, curvature float64) (cx, cy float64) {
	mx := (x1 + x2) / 2
	my := (y1 + y2) / 2
	dx := x2 - x1
	dy := y2 - y1
	chord := math.Hypot(dx, dy)
	if chord == 0 || curvature == 0 {
		return mx, my
	}
	px := -dy / chord
	py := dx / chord
	offset := curvature * chord
	return mx + px*offset, my + py*offset
}

// quadPoint evaluates the quadratic Bezier at t in [0,1].
func quadPoint(x1, y1, cx, cy, x2, y2, t float64) (x, y float64) {
	u := 1 - t
	x = u*u*x1 + 2*u*t*cx + t*t*x2
	y = u*u*y1 + 2*u*t*cy + t*t*y2
	return x, y
}

// quadTangent is the derivative of the quadratic Bezier at t, used to
// orient arrowheads along the curve.
func quadTangent(x1, y1, cx, cy, x2, y2, t float64) (dx, dy float64) {
	dx = 2*(1-t)*(cx-x1) + 2*t*(x2-cx)
	dy = 2*(1-t)*(cy-y1) + 2*t*(y2-cy)
	return dx, dy
}
