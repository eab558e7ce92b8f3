// Package settings persists the user-facing tuning knobs.
//
// Settings live in a TOML file under the XDG config directory
// (~/.config/linkboard/settings.toml by default). Loading is lenient about
// a missing file and strict about a malformed one; values out of range are
// normalized rather than rejected so an old or hand-edited file never
// blocks startup.
package settings

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/casetrace/linkboard/pkg/errors"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

const (
	// DefaultTheme is used when the settings file names no theme.
	DefaultTheme = "dark"

	// Percent knobs are clamped to this range.
	minPercent = 10
	maxPercent = 400
)

// =============================================================================
// Settings
// =============================================================================

// Settings holds the persisted user knobs.
type Settings struct {
	Display    Display    `toml:"display"`
	Simulation Simulation `toml:"simulation"`
	Server     Server     `toml:"server"`
}

// Display controls visual scaling and theming.
type Display struct {
	NodeSizePercent int     `toml:"node_size_percent"` // Node radius scale, 100 = base
	LinkWidth       float64 `toml:"link_width"`        // Edge stroke width in pixels
	FontSizePercent int     `toml:"font_size_percent"` // Label font scale, 100 = base
	Theme           string  `toml:"theme"`
}

// Simulation controls the force layout run.
type Simulation struct {
	CooldownTicks int     `toml:"cooldown_ticks"` // Ticks before the simulation freezes
	VelocityDecay float64 `toml:"velocity_decay"` // Per-tick velocity damping, (0,1)
}

// Server holds preview-server defaults.
type Server struct {
	Addr string `toml:"addr"`
}

// Default returns the default settings.
func Default() Settings {
	return Settings{
		Display: Display{
			NodeSizePercent: 100,
			LinkWidth:       1,
			FontSizePercent: 100,
			Theme:           DefaultTheme,
		},
		Simulation: Simulation{
			CooldownTicks: 300,
			VelocityDecay: 0.4,
		},
		Server: Server{
			Addr: ":7333",
		},
	}
}

// NodeScale returns the node size multiplier derived from the percent knob.
func (s Settings) NodeScale() float64 {
	return float64(s.Display.NodeSizePercent) / 100
}

// FontScale returns the font size multiplier derived from the percent knob.
func (s Settings) FontScale() float64 {
	return float64(s.Display.FontSizePercent) / 100
}

// Normalize clamps out-of-range values back to sane ones and fills empty
// fields from defaults.
func (s Settings) Normalize() Settings {
	def := Default()

	s.Display.NodeSizePercent = clampPercent(s.Display.NodeSizePercent, def.Display.NodeSizePercent)
	s.Display.FontSizePercent = clampPercent(s.Display.FontSizePercent, def.Display.FontSizePercent)
	if s.Display.LinkWidth <= 0 {
		s.Display.LinkWidth = def.Display.LinkWidth
	}
	if s.Display.Theme == "" {
		s.Display.Theme = def.Display.Theme
	}
	if s.Simulation.CooldownTicks <= 0 {
		s.Simulation.CooldownTicks = def.Simulation.CooldownTicks
	}
	if s.Simulation.VelocityDecay <= 0 || s.Simulation.VelocityDecay >= 1 {
		s.Simulation.VelocityDecay = def.Simulation.VelocityDecay
	}
	if s.Server.Addr == "" {
		s.Server.Addr = def.Server.Addr
	}
	return s
}

func clampPercent(v, def int) int {
	if v == 0 {
		return def
	}
	if v < minPercent {
		return minPercent
	}
	if v > maxPercent {
		return maxPercent
	}
	return v
}

// =============================================================================
// File API
// =============================================================================

// Dir returns the settings directory, honoring XDG_CONFIG_HOME.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "linkboard")
}

// Path returns the settings file path.
func Path() string {
	return filepath.Join(Dir(), "settings.toml")
}

// Load reads settings from the default path. A missing file yields defaults
// without error; a malformed file is an error.
func Load() (Settings, error) {
	return LoadFrom(Path())
}

// LoadFrom reads settings from an explicit path.
func LoadFrom(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Default(), errors.Wrap(errors.ErrCodeInvalidSettings, err, "read settings")
	}

	s := Default()
	if err := toml.Unmarshal(data, &s); err != nil {
		return Default(), errors.Wrap(errors.ErrCodeInvalidSettings, err, "parse settings")
	}
	return s.Normalize(), nil
}

// Save writes settings to the default path, creating the directory.
func Save(s Settings) error {
	return SaveTo(s, Path())
}

// SaveTo writes settings to an explicit path.
func SaveTo(s Settings, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create settings dir")
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create settings file")
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(s); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidSettings, err, "encode settings")
	}
	return nil
}
