// Package main is the entry point for findstorm.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/dshills/findstorm/internal/app"
	"github.com/dshills/findstorm/internal/config"
	"github.com/dshills/findstorm/internal/find/controller"
	"github.com/dshills/findstorm/internal/logging"
	"github.com/dshills/findstorm/internal/renderer/terminal"
	"github.com/dshills/findstorm/internal/script"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := newCLI().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newCLI() *cli.App {
	return &cli.App{
		Name:                   "findstorm",
		Usage:                  "Incremental find and replace",
		Version:                version + " (" + commit + ")",
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "TOML configuration file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
			},
			&cli.BoolFlag{
				Name:    "write",
				Aliases: []string{"w"},
				Usage:   "Save changed files",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "edit",
				Usage:     "Open FILE in the terminal editor",
				ArgsUsage: "FILE",
				Action:    editCommand,
			},
			{
				Name:      "run",
				Usage:     "Run a YAML action script against FILE",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "script", Aliases: []string{"s"}, Usage: "YAML script", Required: true},
				},
				Action: runCommand,
			},
			{
				Name:      "lua",
				Usage:     "Run a Lua script against FILE",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "script", Aliases: []string{"s"}, Usage: "Lua script", Required: true},
				},
				Action: luaCommand,
			},
			{
				Name:  "replace",
				Usage: "Find and replace across files matching a glob",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "Text or pattern to find", Required: true},
					&cli.StringFlag{Name: "with", Usage: "Replacement text; $1 refers to groups with --regex"},
					&cli.BoolFlag{Name: "regex", Aliases: []string{"e"}, Usage: "Treat the query as a regular expression"},
					&cli.BoolFlag{Name: "case", Usage: "Match case"},
					&cli.BoolFlag{Name: "word", Usage: "Match whole words only"},
					&cli.StringFlag{Name: "glob", Aliases: []string{"g"}, Usage: "Files to process, e.g. '**/*.go'", Required: true},
					&cli.StringFlag{Name: "root", Aliases: []string{"r"}, Usage: "Directory the glob is matched under", Value: "."},
					&cli.BoolFlag{Name: "dry-run", Aliases: []string{"n"}, Usage: "Count matches without writing, even with --write"},
					&cli.IntFlag{Name: "jobs", Aliases: []string{"j"}, Usage: "Files processed concurrently (0 = GOMAXPROCS)"},
				},
				Action: replaceCommand,
			},
		},
	}
}

// loadConfig reads --config and applies --log-level on top.
func loadConfig(c *cli.Context) (*config.Config, config.Options, error) {
	opts := config.Options{Path: c.String("config")}
	cfg, err := config.Load(opts)
	if err != nil {
		return nil, opts, fmt.Errorf("load config: %w", err)
	}
	if level := c.String("log-level"); level != "" {
		if _, err := logging.ParseLevel(level); err != nil {
			return nil, opts, err
		}
		cfg.Logging.Level = level
	}
	return cfg, opts, nil
}

func newApp(c *cli.Context, quiet bool) (*app.App, config.Options, error) {
	cfg, opts, err := loadConfig(c)
	if err != nil {
		return nil, opts, err
	}
	var logger *logging.Logger
	if quiet && cfg.Logging.File == "" {
		// stderr belongs to the screen
		logger = logging.NullLogger
	}
	a, err := app.New(app.Options{Config: cfg, Logger: logger})
	if err != nil {
		return nil, opts, err
	}
	return a, opts, nil
}

func fileArg(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", fmt.Errorf("%s: expected exactly one FILE argument", c.Command.Name)
	}
	return c.Args().First(), nil
}

// openDocument loads path, or starts an empty document when it does not
// exist yet.
func openDocument(path string) (*app.Document, error) {
	doc, err := app.LoadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		doc = app.NewDocument(filepath.Base(path), "")
		doc.Path = path
		return doc, nil
	}
	return doc, err
}

func signalContext(c *cli.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
}

func editCommand(c *cli.Context) error {
	path, err := fileArg(c)
	if err != nil {
		return err
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("edit: stdout is not a terminal")
	}
	doc, err := openDocument(path)
	if err != nil {
		return err
	}

	a, opts, err := newApp(c, true)
	if err != nil {
		return err
	}
	defer a.Close()

	palette, err := terminal.NewPalette(a.Config().UI)
	if err != nil {
		return err
	}
	keys, err := terminal.Keymap(a.Config())
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}

	ctx, stop := signalContext(c)
	defer stop()

	view := terminal.NewView(ctx, screen, a, doc, terminal.WithKeymap(keys), terminal.WithPalette(palette))
	if opts.Path != "" {
		w, err := view.WatchConfig(opts.Path, opts)
		if err != nil {
			a.Logger().WithError(err).Warn("config reload disabled")
		} else {
			defer w.Close()
		}
	}

	if err := view.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if view.Modified() {
		fmt.Fprintf(os.Stderr, "%s: unsaved changes discarded\n", doc.Name)
	}
	return nil
}

func runCommand(c *cli.Context) error {
	path, err := fileArg(c)
	if err != nil {
		return err
	}
	s, err := script.ParseFile(c.String("script"))
	if err != nil {
		return err
	}
	doc, err := openDocument(path)
	if err != nil {
		return err
	}

	a, _, err := newApp(c, false)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signalContext(c)
	defer stop()

	ed := a.Open(ctx, doc)
	report, runErr := a.RunScript(ctx, s)
	if report != nil {
		for _, r := range report.Results {
			fmt.Printf("%3d %-24s %-9s %s\n", r.Step, r.Action, r.Result.Status, r.Result.Message)
		}
	}
	printMessages(ed)
	if runErr != nil {
		return runErr
	}
	return saveIfWanted(c, ed)
}

func luaCommand(c *cli.Context) error {
	path, err := fileArg(c)
	if err != nil {
		return err
	}
	doc, err := openDocument(path)
	if err != nil {
		return err
	}

	a, _, err := newApp(c, false)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signalContext(c)
	defer stop()

	ed := a.Open(ctx, doc)
	if err := a.RunLua(ctx, c.String("script"), os.Stdout); err != nil {
		return err
	}
	return saveIfWanted(c, ed)
}

func printMessages(ed *app.Editor) {
	for _, m := range ed.Messages() {
		if m.Level == controller.MessageError {
			fmt.Fprintln(os.Stderr, "error:", m.Text)
		}
	}
}

func saveIfWanted(c *cli.Context, ed *app.Editor) error {
	if ed.Edits() == 0 {
		return nil
	}
	doc := ed.Document()
	if !c.Bool("write") {
		fmt.Fprintf(os.Stderr, "%s: %d edits not saved (use --write)\n", doc.Name, ed.Edits())
		return nil
	}
	return doc.Save()
}

func replaceCommand(c *cli.Context) error {
	a, _, err := newApp(c, false)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signalContext(c)
	defer stop()

	report, err := app.Batch(ctx, app.BatchOptions{
		Root:        c.String("root"),
		Pattern:     c.String("glob"),
		Query:       c.String("query"),
		Replacement: c.String("with"),
		Toggles: controller.Toggles{
			Regex:         c.Bool("regex"),
			CaseSensitive: c.Bool("case"),
			WholeWord:     c.Bool("word"),
		},
		Write:       c.Bool("write") && !c.Bool("dry-run"),
		Concurrency: c.Int("jobs"),
	}, a.Logger())
	if err != nil {
		return err
	}

	failed := 0
	for _, f := range report.Files {
		switch {
		case f.Err != nil && app.IsBinary(f.Err):
			continue
		case f.Err != nil:
			failed++
			fmt.Fprintf(os.Stderr, "%s: %v\n", f.Path, f.Err)
		case f.Matches > 0:
			mark := ""
			if f.Written {
				mark = " (written)"
			}
			fmt.Printf("%s: %d%s\n", f.Path, f.Matches, mark)
		}
	}
	fmt.Printf("%d matches in %d files, %d changed\n", report.Matches, len(report.Files), report.Changed)
	if failed > 0 {
		return cli.Exit(fmt.Sprintf("%d files failed", failed), 1)
	}
	return nil
}
