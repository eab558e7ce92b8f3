package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/casetrace/linkboard/pkg/errors"
)

func TestThemeByName(t *testing.T) {
	tests := []struct {
		name   string
		arg    string
		want   string
		wantOK bool
	}{
		{name: "Dark", arg: "dark", want: "dark", wantOK: true},
		{name: "Light", arg: "light", want: "light", wantOK: true},
		{name: "HighContrast", arg: "high-contrast", want: "high-contrast", wantOK: true},
		{name: "EmptyMeansDark", arg: "", want: "dark", wantOK: true},
		{name: "Unknown", arg: "solarized", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			theme, ok := ThemeByName(tt.arg)
			if ok != tt.wantOK {
				t.Fatalf("ThemeByName(%q) ok = %v, want %v", tt.arg, ok, tt.wantOK)
			}
			if ok && theme.Name != tt.want {
				t.Errorf("ThemeByName(%q).Name = %q, want %q", tt.arg, theme.Name, tt.want)
			}
		})
	}
}

func TestNodeColorFallsBackToFill(t *testing.T) {
	theme := DarkTheme()
	theme.NodeColors = map[string]string{"person": "#ff0000"}

	if got := theme.NodeColor("person"); got != "#ff0000" {
		t.Errorf(`NodeColor("person") = %q, want the mapped color`, got)
	}
	if got := theme.NodeColor("vessel"); got != theme.NodeFill {
		t.Errorf(`NodeColor("vessel") = %q, want fallback %q`, got, theme.NodeFill)
	}
}

func TestLoadThemePartialInheritsDark(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ocean.yaml")
	content := "name: ocean\nbackground: \"#002233\"\nnode_colors:\n  person: \"#ff8800\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	theme, err := LoadTheme(path)
	if err != nil {
		t.Fatalf("LoadTheme: %v", err)
	}

	if theme.Name != "ocean" || theme.Background != "#002233" {
		t.Errorf("file values not applied: %+v", theme)
	}
	if got := theme.NodeColor("person"); got != "#ff8800" {
		t.Errorf(`NodeColor("person") = %q, want file value`, got)
	}
	if theme.EdgeColor != DarkTheme().EdgeColor {
		t.Errorf("EdgeColor = %q, want inherited dark value", theme.EdgeColor)
	}
}

func TestLoadThemeMissingFile(t *testing.T) {
	_, err := LoadTheme(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("LoadTheme succeeded on a missing file")
	}
	if got := errors.GetCode(err); got != errors.ErrCodeInvalidTheme {
		t.Errorf("error code = %q, want %q", got, errors.ErrCodeInvalidTheme)
	}
}

func TestLoadThemeMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("{not yaml: ["), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadTheme(path)
	if err == nil {
		t.Fatal("LoadTheme succeeded on malformed YAML")
	}
	if got := errors.GetCode(err); got != errors.ErrCodeInvalidTheme {
		t.Errorf("error code = %q, want %q", got, errors.ErrCodeInvalidTheme)
	}
}
