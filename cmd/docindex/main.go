package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/docindex"
	"github.com/fwojciec/docindex/fs"
	dihttp "github.com/fwojciec/docindex/http"
	"github.com/fwojciec/docindex/porterstemmer"
	dislog "github.com/fwojciec/docindex/slog"
	"github.com/fwojciec/docindex/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Services for end-to-end testing. When nil, Run opens the database
	// and creates an HTTP fetcher.
	Builds  docindex.BuildService
	Fetcher docindex.Fetcher
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments. Errors are reported on
// stderr before they are returned.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("docindex"),
		kong.Description("Build, check and compare documentation search indexes."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'docindex --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintf(stderr, "error: %s\n", err)
		return err
	}

	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelDebug
	}
	deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if m.Builds == nil {
		m.DB = sqlite.NewDB(m.DBPath)
		if err := m.DB.Open(); err != nil {
			fmt.Fprintf(stderr, "Hint: Set DOCINDEX_DB to use a different database path\n")
			err = fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
			fmt.Fprintf(stderr, "error: %s\n", err)
			return err
		}
		defer m.Close()
		m.Builds = sqlite.NewBuildService(m.DB)
	}
	if m.Fetcher == nil {
		m.Fetcher = dihttp.NewFetcher()
	}
	defer m.Fetcher.Close()

	deps.Builds = dislog.NewLoggingBuildService(m.Builds, deps.Logger)
	deps.Fetcher = dislog.NewLoggingFetcher(m.Fetcher, deps.Logger)
	deps.Sitemaps = dislog.NewLoggingSitemapService(dihttp.NewSitemapService(nil), deps.Logger)
	deps.Writer = fs.NewIndexWriter()
	deps.Language = docindex.English(porterstemmer.NewStemmer())

	if err := kongCtx.Run(deps); err != nil {
		fmt.Fprintf(stderr, "error: %s\n", errorMessage(err))
		return err
	}
	return nil
}

// errorMessage returns the message of an application error, or the full
// error text for anything else.
func errorMessage(err error) string {
	var e *docindex.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

func defaultDBPath() string {
	if path := os.Getenv("DOCINDEX_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "docindex.db"
	}
	return filepath.Join(home, ".docindex", "docindex.db")
}
