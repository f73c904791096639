// Package cli implements the todo command line: task subcommands over the
// repository, plus the browse (TUI) and mcp (stdio server) entry points.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/tgienger/todo/internal/config"
	"github.com/tgienger/todo/internal/db"
	"github.com/tgienger/todo/internal/logger"
	"github.com/tgienger/todo/internal/store"
	"github.com/tgienger/todo/internal/todo"
	"github.com/tgienger/todo/internal/ui"
)

const defaultTableWidth = 120

// Runner executes one command line against injected streams
type Runner struct {
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
	Version string

	// Now replaces the wall clock when set
	Now func() time.Time
	// Width fixes the list table width; zero asks the terminal
	Width int
}

// New returns a Runner wired to the process streams
func New(version string) *Runner {
	return &Runner{
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Version: version,
	}
}

// exitError carries a message printed verbatim before exiting non-zero
type exitError struct {
	msg string
}

func (e *exitError) Error() string { return e.msg }

// Run executes args (without the program name) and returns the exit code
func (r *Runner) Run(ctx context.Context, args []string) int {
	err := r.run(ctx, args)
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return 0
	}
	var exit *exitError
	if errors.As(err, &exit) {
		fmt.Fprintln(r.Stderr, exit.msg)
	} else {
		fmt.Fprintf(r.Stderr, "Error: %v\n", err)
	}
	return 1
}

// globals holds the options accepted before the command name
type globals struct {
	repository *optionalString
	configFile *optionalString
	verbosity  int
	version    bool
}

func (r *Runner) parseGlobals(args []string) (globals, []string, error) {
	var g globals
	fs := flag.NewFlagSet("todo", flag.ContinueOnError)
	fs.SetOutput(r.Stderr)
	fs.Usage = func() { r.printHelp() }
	g.repository = stringFlag(fs, "repository", "r", "task file (or sqlite database) path")
	g.configFile = stringFlag(fs, "config", "c", "config file path")
	fs.Var(counter{n: &g.verbosity, step: 1}, "v", "increase log verbosity (repeatable)")
	fs.Var(counter{n: &g.verbosity, step: 1}, "verbose", "increase log verbosity (repeatable)")
	fs.Var(counter{n: &g.verbosity, step: 2}, "vv", "debug logging")
	fs.BoolVar(&g.version, "version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return g, nil, err
	}
	return g, fs.Args(), nil
}

func (r *Runner) run(ctx context.Context, args []string) error {
	g, rest, err := r.parseGlobals(args)
	if err != nil {
		return err
	}
	if g.version {
		fmt.Fprintf(r.Stdout, "todo %s\n", r.Version)
		return nil
	}

	// No command serves MCP on stdio
	command := "mcp"
	if len(rest) > 0 {
		command, rest = rest[0], rest[1:]
	}

	switch command {
	case "help", "--help", "-h":
		r.printHelp()
		return nil
	case "version":
		fmt.Fprintf(r.Stdout, "todo %s\n", r.Version)
		return nil
	case "add", "get", "update", "finish", "delete", "list", "browse", "mcp":
	default:
		r.printHelp()
		return fmt.Errorf("unknown command: %s", command)
	}

	s, err := r.open(g)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.close(); cerr != nil {
			s.logger.Warn("close storage", "error", cerr)
		}
	}()

	switch command {
	case "add":
		return r.runAdd(ctx, s, rest)
	case "get":
		return r.runGet(ctx, s, rest)
	case "update":
		return r.runUpdate(ctx, s, rest)
	case "finish":
		return r.runFinish(ctx, s, rest)
	case "delete":
		return r.runDelete(ctx, s, rest)
	case "list":
		return r.runList(ctx, s, rest)
	case "browse":
		return r.runBrowse(ctx, s, rest)
	default:
		return r.runMCP(ctx, s, rest)
	}
}

func (r *Runner) printHelp() {
	fmt.Fprintf(r.Stderr, `Usage: todo [global options] <command> [options]

Commands:
  add NAME      Add a new task
  get ID        Show task details
  update ID     Update a task
  finish ID     Mark a task as completed
  delete ID     Delete a task
  list          List tasks with optional filters
  browse        Open the interactive task browser
  mcp           Serve the task tools over MCP stdio (default)
  help          Show this help message

Global options:
  -r, --repository PATH   task file (or sqlite database) path
  -c, --config PATH       config file path
  -v, -vv                 log at info, debug
  --version               print version

Examples:
  todo add "Ship report" -u tomorrow -p high -t work,q3
  todo update 3 -s archived
  todo list -r week -o priority
`)
}

// session is the storage and logging opened for one command
type session struct {
	repo     *todo.Repository
	settings ui.Settings
	logger   *slog.Logger
	close    func() error
}

func (r *Runner) open(g globals) (*session, error) {
	var (
		cfg *config.Config
		err error
	)
	if g.configFile.val != nil {
		cfg, err = config.LoadFrom(*g.configFile.val)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if g.repository.val != nil && *g.repository.val != "" {
		cfg.Storage.Path = *g.repository.val
	}
	if g.verbosity > 0 {
		cfg.Logging.Level = logger.Verbosity(g.verbosity, cfg.Logging.Level)
	}

	log := logger.New(cfg.Logging, r.Stderr)
	log.Debug("config loaded", "backend", cfg.Storage.Backend, "path", cfg.Storage.Path)

	opts := []todo.Option{todo.WithLogger(log)}
	if r.Now != nil {
		opts = append(opts, todo.WithClock(r.Now))
	}

	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		database, err := db.New(cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		return &session{
			repo:     todo.NewRepository(database, opts...),
			settings: database,
			logger:   log,
			close:    database.Close,
		}, nil
	default:
		fs, err := store.NewFileStore(cfg.Storage.Path)
		if err != nil {
			return nil, err
		}
		return &session{
			repo:   todo.NewRepository(fs, opts...),
			logger: log,
			close:  func() error { return nil },
		}, nil
	}
}

// tableWidth is the fixed width, the terminal width, or 120 columns
func (r *Runner) tableWidth() int {
	if r.Width > 0 {
		return r.Width
	}
	if f, ok := r.Stdout.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			return w
		}
	}
	return defaultTableWidth
}
