// Package cli implements the linkboard command-line interface.
//
// This package provides commands for rendering investigation boards to
// image artifacts, serving the live preview, exploring a board in the
// terminal, and managing the artifact cache. The CLI is built using cobra
// and supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - render: Generate SVG, PNG, or JSON frame artifacts from a board
//   - serve: Run the preview server with live websocket boards
//   - tui: Explore a board interactively in the terminal
//   - cache: Manage the artifact cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
//
// # Example
//
//	import "github.com/casetrace/linkboard/internal/cli"
//
//	func main() {
//	    c := cli.New(os.Stderr, cli.LogInfo)
//	    if err := c.RootCommand().Execute(); err != nil {
//	        os.Exit(1)
//	    }
//	}
package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/casetrace/linkboard/pkg/buildinfo"
	"github.com/casetrace/linkboard/pkg/cache"
	"github.com/casetrace/linkboard/pkg/errors"
	"github.com/casetrace/linkboard/pkg/layout"
	"github.com/casetrace/linkboard/pkg/pipeline"
	"github.com/casetrace/linkboard/pkg/render"
	"github.com/casetrace/linkboard/pkg/settings"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "linkboard"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "linkboard",
		Short:        "Linkboard renders investigation boards as legible link charts",
		Long:         `Linkboard is the render and preview engine for investigation link charts. It lays out a board, declutters the labels so none overlap, and keeps selected or highlighted entities readable at any zoom.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.tuiCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cache, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/linkboard/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// dataDir returns the data directory using XDG standard
// (~/.local/share/linkboard/). It holds saved boards and live sessions
// for the preview server.
func dataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName), nil
}

// =============================================================================
// Settings Helpers
// =============================================================================

// loadSettings reads the user settings file. A broken file never blocks a
// command: the error is logged and defaults apply.
func (c *CLI) loadSettings() settings.Settings {
	s, err := settings.Load()
	if err != nil {
		c.Logger.Warn("settings file ignored", "path", settings.Path(), "err", err)
	}
	return s
}

// renderConfig maps the user display knobs onto a render configuration.
// Unset fields are filled with defaults downstream.
func renderConfig(s settings.Settings) render.Config {
	return render.Config{
		NodeScale: s.NodeScale(),
		FontScale: s.FontScale(),
		LinkWidth: s.Display.LinkWidth,
	}
}

// forceConfig maps the user simulation knobs onto force layout tuning.
func forceConfig(s settings.Settings) layout.ForceConfig {
	return layout.ForceConfig{
		CooldownTicks: s.Simulation.CooldownTicks,
		VelocityDecay: s.Simulation.VelocityDecay,
	}
}

// resolveTheme looks up a built-in theme by name.
func resolveTheme(name string) (render.Theme, error) {
	t, ok := render.ThemeByName(name)
	if !ok {
		return render.Theme{}, errors.New(errors.ErrCodeInvalidTheme,
			"unknown theme: %q (built-in themes: dark, light, high-contrast)", name)
	}
	return t, nil
}

// =============================================================================
// Flag Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}

// splitIDs parses a comma-separated id list, dropping empty entries.
func splitIDs(s string) []string {
	var ids []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}
