package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/docindex"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx      context.Context
	Stdout   io.Writer
	Stderr   io.Writer
	Logger   *slog.Logger
	Builds   docindex.BuildService
	Fetcher  docindex.Fetcher
	Sitemaps docindex.SitemapService
	Writer   docindex.IndexWriter
	Language *docindex.Language
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool `short:"v" help:"Log debug output to stderr"`

	Build    BuildCmd    `cmd:"" help:"Build searchindex.js from a source directory or published site"`
	Validate ValidateCmd `cmd:"" help:"Check an index for structural problems and print its size"`
	Diff     DiffCmd     `cmd:"" help:"Compare two indexes"`
	Lookup   LookupCmd   `cmd:"" help:"Show the documents an index returns for words"`
	History  HistoryCmd  `cmd:"" help:"List recorded builds"`
	Export   ExportCmd   `cmd:"" help:"Write the index of a recorded build"`
	Delete   DeleteCmd   `cmd:"" help:"Remove a recorded build from history"`
	Watch    WatchCmd    `cmd:"" help:"Rebuild the index whenever the source directory changes"`
}

// BuildFlags are the build options shared by the build and watch commands.
// They override the matching keys of the config file.
type BuildFlags struct {
	Config      string `short:"c" help:"Config file (default: docindex.yaml when present)"`
	Source      string `short:"s" help:"Source directory of markdown or HTML pages"`
	Out         string `short:"o" help:"Output path of the index"`
	Project     string `short:"p" help:"Project name used for build history"`
	Weights     bool   `help:"Include per-document term weights"`
	NoRecord    bool   `help:"Do not record the build in history"`
	Concurrency int    `help:"Parallel parse and fetch limit"`
}

// BuildCmd is the "build" subcommand.
type BuildCmd struct {
	BuildFlags `embed:""`

	URL    string   `short:"u" help:"Published documentation site to crawl instead of a source directory"`
	Filter []string `short:"F" name:"filter" help:"Only crawl URLs matching regex (repeatable)"`
	Rate   float64  `help:"Requests per second per host while crawling (negative disables limiting)"`
}

// ValidateCmd is the "validate" subcommand.
type ValidateCmd struct {
	Index string `arg:"" help:"Index file, URL or build id"`
}

// DiffCmd is the "diff" subcommand.
type DiffCmd struct {
	Old   string `arg:"" help:"Old index: file, URL, build id or @project for its latest build"`
	New   string `arg:"" help:"New index: file, URL, build id or @project for its latest build"`
	Terms bool   `short:"t" help:"List changed terms, not only their counts"`
}

// LookupCmd is the "lookup" subcommand.
type LookupCmd struct {
	Index string   `arg:"" help:"Index file, URL or build id"`
	Words []string `arg:"" help:"Words to look up"`
}

// HistoryCmd is the "history" subcommand.
type HistoryCmd struct {
	Project string `arg:"" optional:"" help:"Only list builds of this project"`
	Limit   int    `short:"n" default:"20" help:"Maximum number of builds to list (0 for all)"`
}

// ExportCmd is the "export" subcommand.
type ExportCmd struct {
	ID  string `arg:"" help:"Build id or @project for its latest build"`
	Out string `short:"o" help:"Output path (default: stdout)"`
}

// DeleteCmd is the "delete" subcommand.
type DeleteCmd struct {
	ID    string `arg:"" help:"Build id or @project for its latest build"`
	Force bool   `short:"f" help:"Confirm deletion"`
}

// WatchCmd is the "watch" subcommand.
type WatchCmd struct {
	BuildFlags `embed:""`

	Debounce time.Duration `help:"Quiet period before rebuilding (default 300ms)"`
}
