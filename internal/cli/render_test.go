package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/casetrace/linkboard/pkg/pipeline"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single format", "svg", []string{"svg"}},
		{"multiple formats", "svg,png,json", []string{"svg", "png", "json"}},
		{"png only", "png", []string{"png"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFormats(tt.input)
			if len(got) != len(tt.want) {
				t.Errorf("parseFormats(%q) length = %d, want %d", tt.input, len(got), len(tt.want))
				return
			}
			for i, v := range got {
				if v != tt.want[i] {
					t.Errorf("parseFormats(%q)[%d] = %q, want %q", tt.input, i, v, tt.want[i])
				}
			}
		})
	}
}

func TestValidateFormats(t *testing.T) {
	tests := []struct {
		name    string
		formats []string
		wantErr bool
	}{
		{"valid svg", []string{"svg"}, false},
		{"valid png", []string{"png"}, false},
		{"valid json", []string{"json"}, false},
		{"valid multiple", []string{"svg", "png", "json"}, false},
		{"invalid format", []string{"pdf"}, true},
		{"mixed valid invalid", []string{"svg", "webp"}, true},
		{"empty slice", []string{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := pipeline.ValidateFormats(tt.formats)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFormats(%v) error = %v, wantErr %v", tt.formats, err, tt.wantErr)
			}
		})
	}
}

func TestArtifactPath(t *testing.T) {
	tests := []struct {
		name        string
		source      string
		output      string
		format      string
		formatCount int
		want        string
	}{
		{"explicit output single format", "board.json", "chart.svg", "svg", 1, "chart.svg"},
		{"derived from source", "board.json", "", "svg", 1, "board.svg"},
		{"multi format strips output ext", "board.json", "chart.svg", "png", 2, "chart.png"},
		{"multi format derived", "board.json", "", "png", 2, "board.png"},
		{"non-format output ext kept", "board.json", "chart.final", "svg", 2, "chart.final.svg"},
		{"source with path", "cases/fraud.yaml", "", "json", 1, "cases/fraud.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := artifactPath(tt.source, tt.output, tt.format, tt.formatCount)
			if got != tt.want {
				t.Errorf("artifactPath(%q, %q, %q, %d) = %q, want %q",
					tt.source, tt.output, tt.format, tt.formatCount, got, tt.want)
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		source string
		want   string
	}{
		{"empty output derives from source", "", "board.json", "board"},
		{"format extension stripped", "chart.svg", "board.json", "chart"},
		{"png extension stripped", "chart.png", "board.json", "chart"},
		{"other extension kept", "chart.final", "board.json", "chart.final"},
		{"no extension", "chart", "board.json", "chart"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := basePath(tt.output, tt.source)
			if got != tt.want {
				t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.source, got, tt.want)
			}
		})
	}
}

func TestSourceBase(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"local json", "board.json", "board"},
		{"local with path", "cases/fraud.yaml", "cases/fraud"},
		{"local no extension", "board", "board"},
		{"remote url", "https://example.com/boards/fraud.json", "fraud"},
		{"remote url no extension", "https://example.com/boards/fraud", "fraud"},
		{"remote root path", "https://example.com/", "board"},
		{"remote no path", "https://example.com", "board"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sourceBase(tt.source)
			if got != tt.want {
				t.Errorf("sourceBase(%q) = %q, want %q", tt.source, got, tt.want)
			}
		})
	}
}

func TestIsRemoteSource(t *testing.T) {
	tests := []struct {
		source string
		want   bool
	}{
		{"https://example.com/board.json", true},
		{"http://localhost:8080/board", true},
		{"board.json", false},
		{"./cases/board.json", false},
		{"/abs/path/board.json", false},
		{"httpboard.json", false},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			got := isRemoteSource(tt.source)
			if got != tt.want {
				t.Errorf("isRemoteSource(%q) = %v, want %v", tt.source, got, tt.want)
			}
		})
	}
}

func TestWriteArtifacts(t *testing.T) {
	tmp := t.TempDir()
	artifacts := map[string][]byte{
		"svg": []byte("<svg/>"),
		"png": []byte{0x89, 0x50, 0x4e, 0x47},
	}
	output := filepath.Join(tmp, "chart.svg")

	paths, err := writeArtifacts(artifacts, []string{"svg", "png"}, "board.json", output)
	if err != nil {
		t.Fatalf("writeArtifacts() error: %v", err)
	}

	if len(paths) != 2 {
		t.Fatalf("writeArtifacts() wrote %d paths, want 2", len(paths))
	}

	for i, want := range []string{filepath.Join(tmp, "chart.svg"), filepath.Join(tmp, "chart.png")} {
		if paths[i] != want {
			t.Errorf("paths[%d] = %q, want %q", i, paths[i], want)
		}
	}

	svg, err := os.ReadFile(filepath.Join(tmp, "chart.svg"))
	if err != nil {
		t.Fatalf("read svg: %v", err)
	}
	if string(svg) != "<svg/>" {
		t.Errorf("svg content = %q, want %q", svg, "<svg/>")
	}
}

func TestWriteArtifactsStdoutSingleFormatOnly(t *testing.T) {
	artifacts := map[string][]byte{"svg": []byte("<svg/>"), "png": {1}}

	_, err := writeArtifacts(artifacts, []string{"svg", "png"}, "board.json", "-")
	if err == nil {
		t.Error("writeArtifacts() with stdout output and two formats should return an error")
	}
}
