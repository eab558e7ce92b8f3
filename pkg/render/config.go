package render

import "github.com/casetrace/linkboard/pkg/declutter"

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

const (
	// DefaultDimAlpha is the opacity of non-highlighted elements while a
	// highlight is active (the spotlight effect).
	DefaultDimAlpha = 0.49

	// DefaultRingAlpha is the opacity of hover and selection halos.
	DefaultRingAlpha = 0.3

	// DefaultBaseRadius is the world-space radius of a degree-0 node at
	// node size 100%.
	DefaultBaseRadius = 8.0

	// DefaultRadiusGrowth and DefaultRadiusSaturation grow node radius
	// with connectivity: a node at or past saturation degree draws
	// (1 + growth) times the base radius.
	DefaultRadiusGrowth     = 0.75
	DefaultRadiusSaturation = 10

	// DefaultRingWidth is how far the halo extends past the node body,
	// in screen pixels.
	DefaultRingWidth = 5.0

	// DefaultArrowRelPos places the arrowhead along the edge curve:
	// 0 at the source, 1 at the target.
	DefaultArrowRelPos = 1.0

	// DefaultArrowSize is the arrowhead edge length in screen pixels.
	DefaultArrowSize = 6.0

	// DefaultLabelZoomFloor is the zoom below which labels and icons are
	// dropped for everything but the hover neighborhood.
	DefaultLabelZoomFloor = 0.3

	// DefaultMaxLabelsPerFrame hard-caps drawn label pills even when the
	// visible set is larger.
	DefaultMaxLabelsPerFrame = 200

	// DefaultPillCorner is the label pill corner radius.
	DefaultPillCorner = 4.0

	// DefaultIconScale sizes the icon square relative to node radius.
	DefaultIconScale = 1.2
)

// Config carries every rendering knob. Zero fields fall back to the
// defaults above, so Config{} behaves like [DefaultConfig].
//
// Metrics must match the configuration the declutter pass ran with:
// pills are sized with the exact formulas the collision checks used, and
// a mismatch draws labels the selector never cleared.
type Config struct {
	DimAlpha          float64
	RingAlpha         float64
	BaseRadius        float64
	RadiusGrowth      float64
	RadiusSaturation  int
	RingWidth         float64
	ArrowRelPos       float64
	ArrowSize         float64
	HideArrows        bool
	LabelZoomFloor    float64
	MaxLabelsPerFrame int
	PillCorner        float64
	IconScale         float64

	// NodeScale, FontScale, and LinkWidth come from user settings
	// (percent knobs divided down to multipliers).
	NodeScale float64
	FontScale float64
	LinkWidth float64

	Metrics declutter.Config
}

// DefaultConfig returns the tuned default configuration.
func DefaultConfig() Config {
	return Config{
		DimAlpha:          DefaultDimAlpha,
		RingAlpha:         DefaultRingAlpha,
		BaseRadius:        DefaultBaseRadius,
		RadiusGrowth:      DefaultRadiusGrowth,
		RadiusSaturation:  DefaultRadiusSaturation,
		RingWidth:         DefaultRingWidth,
		ArrowRelPos:       DefaultArrowRelPos,
		ArrowSize:         DefaultArrowSize,
		LabelZoomFloor:    DefaultLabelZoomFloor,
		MaxLabelsPerFrame: DefaultMaxLabelsPerFrame,
		PillCorner:        DefaultPillCorner,
		IconScale:         DefaultIconScale,
		NodeScale:         1,
		FontScale:         1,
		LinkWidth:         1,
		Metrics:           declutter.DefaultConfig(),
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()

	if c.DimAlpha <= 0 || c.DimAlpha >= 1 {
		c.DimAlpha = def.DimAlpha
	}
	if c.RingAlpha <= 0 || c.RingAlpha > 1 {
		c.RingAlpha = def.RingAlpha
	}
	if c.BaseRadius <= 0 {
		c.BaseRadius = def.BaseRadius
	}
	if c.RadiusGrowth <= 0 {
		c.RadiusGrowth = def.RadiusGrowth
	}
	if c.RadiusSaturation <= 0 {
		c.RadiusSaturation = def.RadiusSaturation
	}
	if c.RingWidth <= 0 {
		c.RingWidth = def.RingWidth
	}
	if c.ArrowRelPos <= 0 || c.ArrowRelPos > 1 {
		c.ArrowRelPos = def.ArrowRelPos
	}
	if c.ArrowSize <= 0 {
		c.ArrowSize = def.ArrowSize
	}
	if c.LabelZoomFloor <= 0 {
		c.LabelZoomFloor = def.LabelZoomFloor
	}
	if c.MaxLabelsPerFrame <= 0 {
		c.MaxLabelsPerFrame = def.MaxLabelsPerFrame
	}
	if c.PillCorner <= 0 {
		c.PillCorner = def.PillCorner
	}
	if c.IconScale <= 0 {
		c.IconScale = def.IconScale
	}
	if c.NodeScale <= 0 {
		c.NodeScale = def.NodeScale
	}
	if c.FontScale <= 0 {
		c.FontScale = def.FontScale
	}
	if c.LinkWidth <= 0 {
		c.LinkWidth = def.LinkWidth
	}
	c.Metrics = c.Metrics.Normalized()
	return c
}

// Normalized returns the configuration with every zero field replaced by
// its default. Frame drivers normalize once up front so the radius and
// font formulas they feed the declutter pass match what [Build] draws.
func (c Config) Normalized() Config { return c.withDefaults() }
