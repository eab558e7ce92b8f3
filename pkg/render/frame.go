package render

// Command is one draw instruction. Sinks consume commands in slice order,
// which is the painter order: later commands draw over earlier ones.
// Kind doubles as the type discriminator in serialized frames.
type Command interface {
	Kind() string
}

// Alpha values run 0 (invisible) to 1 (opaque) on every command.

// Circle draws a node body.
type Circle struct {
	NodeID      string
	X, Y, R     float64
	Fill        string
	Stroke      string
	StrokeWidth float64
	Alpha       float64
}

func (Circle) Kind() string { return "circle" }

// Ring draws the translucent halo behind a hovered, highlighted, or
// selected node. Rings precede circles so the body covers the center.
type Ring struct {
	NodeID  string
	X, Y, R float64
	Color   string
	Alpha   float64
}

func (Ring) Kind() string { return "ring" }

// Stroke draws an edge. Straight when Curved is false; otherwise a
// quadratic Bezier through control point (CX, CY).
type Stroke struct {
	EdgeKey        string
	X1, Y1, X2, Y2 float64
	CX, CY         float64
	Curved         bool
	Color          string
	Width          float64
	Alpha          float64
}

func (Stroke) Kind() string { return "stroke" }

// Arrowhead draws a direction marker at (X, Y) rotated to Angle radians.
type Arrowhead struct {
	EdgeKey string
	X, Y    float64
	Angle   float64
	Size    float64
	Color   string
	Alpha   float64
}

func (Arrowhead) Kind() string { return "arrowhead" }

// Image places an icon. Data holds raw SVG bytes from the icon registry.
type Image struct {
	NodeID     string
	X, Y, W, H float64
	Data       []byte
	Alpha      float64
}

func (Image) Kind() string { return "image" }

// Pill draws a rounded label background. X, Y is the top-left corner.
type Pill struct {
	NodeID     string
	X, Y, W, H float64
	Corner     float64
	Fill       string
	Stroke     string
	Alpha      float64
}

func (Pill) Kind() string { return "pill" }

// Text draws a label centered horizontally at X and vertically at Y.
// ID is the owning node id or edge key, empty for frame chrome.
type Text struct {
	ID      string
	X, Y    float64
	Content string
	Size    float64
	Color   string
	Alpha   float64
}

func (Text) Kind() string { return "text" }

// Stats summarizes what a frame drew.
type Stats struct {
	Nodes  int
	Edges  int
	Labels int
}

// Frame is one rendered scene: canvas dimensions, background, and draw
// commands in painter order. A frame is immutable once built and safe to
// hand to any number of sinks.
type Frame struct {
	Width      float64
	Height     float64
	Background string
	FontFamily string
	Commands   []Command
	Stats      Stats
}
