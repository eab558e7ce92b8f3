package declutter

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Tuned defaults. These are empirical values, not derived constants; every
// one of them is overridable through [Config].
const (
	// DefaultMargin is the pixel margin added around boxes in exact
	// collision checks.
	DefaultMargin = 4.0

	// DefaultCellSize is the spatial grid cell size in pixels.
	DefaultCellSize = 100.0

	// DefaultSpatialThreshold is the node count at which collision
	// checking switches from exact to spatial hashing, and at which the
	// label cap starts to apply.
	DefaultSpatialThreshold = 500

	// DefaultMaxLabels caps the visible set for large graphs.
	DefaultMaxLabels = 200

	// DefaultConnWeight and DefaultCenterWeight blend the two priority
	// components. They sum to 1 so priority stays in [0,1].
	DefaultConnWeight   = 0.7
	DefaultCenterWeight = 0.3

	// DefaultConnSaturation is the neighbor count at which the
	// connectivity score reaches its maximum.
	DefaultConnSaturation = 20

	// DefaultCharWidthRatio estimates glyph width as a fraction of font
	// size, replacing per-node canvas measurement.
	DefaultCharWidthRatio = 0.6

	// DefaultPadX and DefaultPadY pad the text metrics to the pill size.
	DefaultPadX = 4.0
	DefaultPadY = 2.0

	// DefaultBaseFontSize is the label font size at zoom 1, font 100%.
	DefaultBaseFontSize = 12.0

	// DefaultMinFontSize and DefaultMaxFontSize clamp the zoom-scaled
	// font to a readable range.
	DefaultMinFontSize = 8.0
	DefaultMaxFontSize = 48.0

	// DefaultLabelGapRatio positions the box below the node at
	// radius + fontSize*ratio.
	DefaultLabelGapRatio = 0.6
)

// =============================================================================
// Config
// =============================================================================

// Config carries every tuning knob of the declutter pipeline. Zero fields
// fall back to the defaults above, so Config{} behaves like
// [DefaultConfig].
type Config struct {
	Margin           float64
	CellSize         float64
	SpatialThreshold int
	MaxLabels        int
	ConnWeight       float64
	CenterWeight     float64
	ConnSaturation   int
	CharWidthRatio   float64
	PadX             float64
	PadY             float64
	BaseFontSize     float64
	MinFontSize      float64
	MaxFontSize      float64
	LabelGapRatio    float64
}

// DefaultConfig returns the tuned default configuration.
func DefaultConfig() Config {
	return Config{
		Margin:           DefaultMargin,
		CellSize:         DefaultCellSize,
		SpatialThreshold: DefaultSpatialThreshold,
		MaxLabels:        DefaultMaxLabels,
		ConnWeight:       DefaultConnWeight,
		CenterWeight:     DefaultCenterWeight,
		ConnSaturation:   DefaultConnSaturation,
		CharWidthRatio:   DefaultCharWidthRatio,
		PadX:             DefaultPadX,
		PadY:             DefaultPadY,
		BaseFontSize:     DefaultBaseFontSize,
		MinFontSize:      DefaultMinFontSize,
		MaxFontSize:      DefaultMaxFontSize,
		LabelGapRatio:    DefaultLabelGapRatio,
	}
}

// withDefaults fills zero fields from the default configuration.
// Weights are treated as a pair: overriding one without the other would
// silently skew priorities, so both must be set to take effect.
func (c Config) withDefaults() Config {
	def := DefaultConfig()

	if c.Margin == 0 {
		c.Margin = def.Margin
	}
	if c.CellSize <= 0 {
		c.CellSize = def.CellSize
	}
	if c.SpatialThreshold <= 0 {
		c.SpatialThreshold = def.SpatialThreshold
	}
	if c.MaxLabels <= 0 {
		c.MaxLabels = def.MaxLabels
	}
	if c.ConnWeight <= 0 || c.CenterWeight <= 0 {
		c.ConnWeight = def.ConnWeight
		c.CenterWeight = def.CenterWeight
	}
	if c.ConnSaturation <= 0 {
		c.ConnSaturation = def.ConnSaturation
	}
	if c.CharWidthRatio <= 0 {
		c.CharWidthRatio = def.CharWidthRatio
	}
	if c.PadX == 0 {
		c.PadX = def.PadX
	}
	if c.PadY == 0 {
		c.PadY = def.PadY
	}
	if c.BaseFontSize <= 0 {
		c.BaseFontSize = def.BaseFontSize
	}
	if c.MinFontSize <= 0 {
		c.MinFontSize = def.MinFontSize
	}
	if c.MaxFontSize <= 0 {
		c.MaxFontSize = def.MaxFontSize
	}
	if c.LabelGapRatio <= 0 {
		c.LabelGapRatio = def.LabelGapRatio
	}
	return c
}

// Normalized returns the config with zero fields filled in. The renderer
// normalizes its copy once so direct field reads see the same values the
// calculator methods use.
func (c Config) Normalized() Config { return c.withDefaults() }
