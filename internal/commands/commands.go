// Package commands defines the watchlist command line: the HTTP server and
// the database bootstrap commands.
package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"
	"github.com/xiaolu2333/watchlist/internal/config"
	"github.com/xiaolu2333/watchlist/internal/repository/sqlite"
	"golang.org/x/term"
)

// Runner holds the I/O streams shared by every command action.
type Runner struct {
	in      *bufio.Reader
	out     io.Writer
	logOut  io.Writer
	jsonOut io.Writer
	// stdinFd is the terminal behind in, handed to readPassword for hidden
	// input; -1 when in is not a terminal, so passwords are read as lines
	// through the same buffered reader.
	stdinFd int
}

// RunnerOpts configures a Runner. Nil fields default to the process streams.
type RunnerOpts struct {
	In      io.Reader
	Out     io.Writer
	LogOut  io.Writer
	JSONOut io.Writer
}

// NewRunner creates a Runner with the provided streams.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.LogOut == nil {
		opts.LogOut = os.Stdout
	}
	if opts.JSONOut == nil {
		opts.JSONOut = os.Stderr
	}
	fd := -1
	if f, ok := opts.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd = int(f.Fd())
	}
	return &Runner{
		in:      bufio.NewReader(opts.In),
		out:     opts.Out,
		logOut:  opts.LogOut,
		jsonOut: opts.JSONOut,
		stdinFd: fd,
	}
}

// NewApp builds the root command. Running it without a subcommand serves HTTP.
func NewApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "watchlist",
		Usage: "A personal movie watchlist",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
				Sources: cli.EnvVars("WATCHLIST_CONFIG"),
			},
		},
		Commands: []*cli.Command{
			serveCommand(r),
			initdbCommand(r),
			forgeCommand(r),
			adminCommand(r),
		},
		Action: r.Serve,
	}
}

// Run executes the command line with the process streams.
func Run(ctx context.Context, args []string) error {
	return NewApp(NewRunner(RunnerOpts{})).Run(ctx, args)
}

// setup loads and validates the configuration, then installs the logger as
// the slog default.
func (r *Runner) setup(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("config"), cmd.IsSet("config"))
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger, err := NewLogger(r.logOut, r.jsonOut, cfg.Log)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return cfg, nil
}

func openDB(cfg *config.Config) (*sqlite.DB, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}
	db, err := sqlite.New(dsn)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", cfg.Database.Path, err)
	}
	return db, nil
}

func (r *Runner) println(a ...any) {
	fmt.Fprintln(r.out, a...)
}
