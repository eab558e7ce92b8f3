package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/casetrace/linkboard/internal/server"
	"github.com/casetrace/linkboard/pkg/icons"
	"github.com/casetrace/linkboard/pkg/session"
	"github.com/casetrace/linkboard/pkg/store"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr     string // listen address (settings default when empty)
	watch    string // board file served and reloaded on change
	data     string // board storage directory
	theme    string // theme override for live boards
	iconsDir string // node icon directory
	memory   bool   // keep boards and sessions in memory only
	noCache  bool   // disable artifact caching
}

// serveCommand creates the serve command for the preview server.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the board preview server",
		Long: `Run the board preview server.

The server exposes a REST API for saving and rendering boards plus a
websocket channel that streams live frames while the layout settles and
the viewer pans, zooms, and hovers. With --watch, a board file on disk is
served directly and every connected viewer reloads when the file changes.

Boards and sessions persist under the data directory unless --memory is
set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from settings, :7333)")
	cmd.Flags().StringVar(&opts.watch, "watch", "", "board file to serve and reload on change")
	cmd.Flags().StringVar(&opts.data, "data", "", "board storage directory (default ~/.local/share/linkboard)")
	cmd.Flags().StringVar(&opts.theme, "theme", "", "theme for live boards: dark (default), light, high-contrast")
	cmd.Flags().StringVar(&opts.iconsDir, "icons", "", "directory of <type>.svg node icons")
	cmd.Flags().BoolVar(&opts.memory, "memory", false, "keep boards and sessions in memory only")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable artifact caching")

	return cmd
}

// runServe wires stores, runner, and settings into the server and blocks
// until the context is cancelled.
func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	s := c.loadSettings()

	addr := opts.addr
	if addr == "" {
		addr = s.Server.Addr
	}

	themeName := opts.theme
	if themeName == "" {
		themeName = s.Display.Theme
	}
	theme, err := resolveTheme(themeName)
	if err != nil {
		return err
	}

	boards, sessions, err := newServeStores(opts)
	if err != nil {
		return err
	}
	defer boards.Close()

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	var reg *icons.Registry
	if opts.iconsDir != "" {
		reg = icons.NewRegistry(opts.iconsDir, icons.WithLogger(c.Logger))
	}

	srv := server.New(server.Config{
		Addr:      addr,
		Store:     boards,
		Sessions:  sessions,
		Runner:    runner,
		Icons:     reg,
		Theme:     theme,
		Render:    renderConfig(s),
		Force:     forceConfig(s),
		WatchPath: opts.watch,
		Logger:    c.Logger,
	})

	printInfo("Preview server listening")
	printURL(displayURL(addr))
	if opts.watch != "" {
		printDetail("Watching %s", opts.watch)
	}
	if opts.memory {
		printDetail("Boards held in memory only")
	}
	printNewline()

	return srv.ListenAndServe(ctx)
}

// newServeStores builds the board and session stores for one serve run.
func newServeStores(opts serveOpts) (store.Store, session.Store, error) {
	if opts.memory {
		return store.NewMemoryStore(), session.NewMemoryStore(), nil
	}

	dir := opts.data
	if dir == "" {
		var err error
		dir, err = dataDir()
		if err != nil {
			return nil, nil, fmt.Errorf("resolve data dir: %w", err)
		}
	}

	boards, err := store.NewFileStore(filepath.Join(dir, "boards"))
	if err != nil {
		return nil, nil, fmt.Errorf("open board store: %w", err)
	}
	sessions, err := session.NewFileStore(filepath.Join(dir, "sessions"))
	if err != nil {
		boards.Close()
		return nil, nil, fmt.Errorf("open session store: %w", err)
	}
	return boards, sessions, nil
}

// displayURL turns a listen address into something clickable.
func displayURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}
