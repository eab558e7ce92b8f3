package declutter

// LabelBox is the screen-space rectangle a drawn label would occupy,
// plus the priority that decides its place in the selection order.
//
// X is the horizontal center and Y the top edge, matching how label pills
// are positioned under their node. Boxes are ephemeral: they are recomputed
// whole on every recalculation and never patched in place.
type LabelBox struct {
	NodeID   string
	X        float64 // Horizontal center
	Y        float64 // Top edge
	Width    float64
	Height   float64
	Priority float64 // In [0,1], higher wins
}

// Left returns the left edge of the box.
func (b LabelBox) Left() float64 { return b.X - b.Width/2 }

// Right returns the right edge of the box.
func (b LabelBox) Right() float64 { return b.X + b.Width/2 }

// Top returns the top edge of the box.
func (b LabelBox) Top() float64 { return b.Y }

// Bottom returns the bottom edge of the box.
func (b LabelBox) Bottom() float64 { return b.Y + b.Height }

// Overlaps reports whether the two boxes, each expanded by margin on every
// side, intersect on both axes.
func Overlaps(a, b LabelBox, margin float64) bool {
	aLeft, aRight := a.Left()-margin, a.Right()+margin
	aTop, aBottom := a.Top()-margin, a.Bottom()+margin
	bLeft, bRight := b.Left()-margin, b.Right()+margin
	bTop, bBottom := b.Top()-margin, b.Bottom()+margin

	return !(aRight < bLeft || aLeft > bRight || aBottom < bTop || aTop > bBottom)
}
