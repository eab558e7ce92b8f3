package render

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/casetrace/linkboard/pkg/errors"
)

// Theme is the palette a frame is drawn with. Colors are CSS color
// strings passed through to sinks untouched.
//
// NodeColors maps node types to fills; types without an entry fall back
// to NodeFill. Built-in themes ship without type colors, custom theme
// files add them per investigation domain.
type Theme struct {
	Name          string            `yaml:"name"`
	Background    string            `yaml:"background"`
	NodeFill      string            `yaml:"node_fill"`
	NodeStroke    string            `yaml:"node_stroke"`
	NodeColors    map[string]string `yaml:"node_colors"`
	EdgeColor     string            `yaml:"edge_color"`
	EdgeHighlight string            `yaml:"edge_highlight"`
	HoverRing     string            `yaml:"hover_ring"`
	SelectRing    string            `yaml:"select_ring"`
	LabelFill     string            `yaml:"label_fill"`
	LabelStroke   string            `yaml:"label_stroke"`
	LabelText     string            `yaml:"label_text"`
	EdgeLabelText string            `yaml:"edge_label_text"`
	MutedText     string            `yaml:"muted_text"`
	FontFamily    string            `yaml:"font_family"`
}

// NodeColor resolves the fill for a node type.
func (t Theme) NodeColor(typ string) string {
	if c, ok := t.NodeColors[typ]; ok {
		return c
	}
	return t.NodeFill
}

// DarkTheme is the default palette.
func DarkTheme() Theme {
	return Theme{
		Name:          "dark",
		Background:    "#10141b",
		NodeFill:      "#5b8dbe",
		NodeStroke:    "#0b0e13",
		EdgeColor:     "#39445a",
		EdgeHighlight: "#e5b567",
		HoverRing:     "#e5b567",
		SelectRing:    "#7aa2f7",
		LabelFill:     "#1a2029",
		LabelStroke:   "#2c3545",
		LabelText:     "#d8dee9",
		EdgeLabelText: "#9aa5b8",
		MutedText:     "#5c6773",
		FontFamily:    "Inter, system-ui, sans-serif",
	}
}

// LightTheme is the print-friendly palette.
func LightTheme() Theme {
	return Theme{
		Name:          "light",
		Background:    "#f7f8fa",
		NodeFill:      "#3d6fa3",
		NodeStroke:    "#ffffff",
		EdgeColor:     "#b9c2d0",
		EdgeHighlight: "#c77d0a",
		HoverRing:     "#c77d0a",
		SelectRing:    "#2f5fd0",
		LabelFill:     "#ffffff",
		LabelStroke:   "#d5dbe5",
		LabelText:     "#1f2430",
		EdgeLabelText: "#5a6475",
		MutedText:     "#9aa3b2",
		FontFamily:    "Inter, system-ui, sans-serif",
	}
}

// HighContrastTheme maximizes legibility for projection and accessibility.
func HighContrastTheme() Theme {
	return Theme{
		Name:          "high-contrast",
		Background:    "#000000",
		NodeFill:      "#ffffff",
		NodeStroke:    "#000000",
		EdgeColor:     "#888888",
		EdgeHighlight: "#ffff00",
		HoverRing:     "#ffff00",
		SelectRing:    "#00ffff",
		LabelFill:     "#000000",
		LabelStroke:   "#ffffff",
		LabelText:     "#ffffff",
		EdgeLabelText: "#ffffff",
		MutedText:     "#bbbbbb",
		FontFamily:    "Inter, system-ui, sans-serif",
	}
}

// ThemeByName resolves a built-in theme. The empty name means dark.
func ThemeByName(name string) (Theme, bool) {
	switch name {
	case "", "dark":
		return DarkTheme(), true
	case "light":
		return LightTheme(), true
	case "high-contrast":
		return HighContrastTheme(), true
	}
	return Theme{}, false
}

// LoadTheme reads a YAML theme file. Keys absent from the file inherit
// from the dark theme, so a partial palette stays renderable.
func LoadTheme(path string) (Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, errors.Wrap(errors.ErrCodeInvalidTheme, err, "read theme %s", path)
	}
	t := DarkTheme()
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Theme{}, errors.Wrap(errors.ErrCodeInvalidTheme, err, "parse theme %s", path)
	}
	return t, nil
}
