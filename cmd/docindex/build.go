package main

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/fwojciec/docindex"
	"github.com/fwojciec/docindex/build"
	"github.com/fwojciec/docindex/crawl"
	"github.com/fwojciec/docindex/fs"
	"github.com/fwojciec/docindex/gomarkdown"
	"github.com/fwojciec/docindex/goquery"
	"github.com/fwojciec/docindex/htmltomarkdown"
	"github.com/fwojciec/docindex/readability"
	dislog "github.com/fwojciec/docindex/slog"
	"github.com/fwojciec/docindex/trafilatura"
)

// Run executes the build command.
func (c *BuildCmd) Run(deps *Dependencies) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}

	filter, err := compileFilter(c.Filter)
	if err != nil {
		return err
	}

	return newIndexer(deps, cfg, filter).run(deps, !c.NoRecord)
}

// config merges the config file with the command-line flags.
func (c *BuildCmd) config() (*Config, error) {
	cfg, err := c.BuildFlags.config()
	if err != nil {
		return nil, err
	}
	if c.URL != "" {
		cfg.URL = c.URL
		if c.Source == "" {
			cfg.Source = ""
		}
	}
	if c.Rate != 0 {
		cfg.Rate = c.Rate
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.setDefaults(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// config loads the config file and applies the flags that were set.
// The result is not validated.
func (f *BuildFlags) config() (*Config, error) {
	cfg, err := LoadConfig(f.Config)
	if err != nil {
		return nil, err
	}
	if f.Source != "" {
		cfg.Source = f.Source
		cfg.URL = ""
	}
	if f.Out != "" {
		cfg.Output = f.Out
	}
	if f.Project != "" {
		cfg.Project = f.Project
	}
	if f.Weights {
		cfg.Weights = true
	}
	if f.Concurrency != 0 {
		cfg.Concurrency = f.Concurrency
	}
	return cfg, nil
}

// compileFilter turns include patterns into a URLFilter, validating them early.
func compileFilter(patterns []string) (*docindex.URLFilter, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	filter := &docindex.URLFilter{}
	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, docindex.Errorf(docindex.EINVALID, "invalid filter pattern %q: %v", pattern, err)
		}
		filter.Include = append(filter.Include, re)
	}
	return filter, nil
}

// indexer builds, writes and records the index of one project.
type indexer struct {
	cfg      *Config
	pipeline *build.Pipeline

	// dir is the local source, nil when crawling a site.
	dir *fs.DirSource
}

// newIndexer wires the source, parsers and language for cfg.
func newIndexer(deps *Dependencies, cfg *Config, filter *docindex.URLFilter) *indexer {
	parsers := newParsers(cfg)
	ix := &indexer{cfg: cfg}

	var source docindex.SourceProvider
	if cfg.URL != "" {
		source = &crawl.SiteSource{
			BaseURL:     cfg.URL,
			Sitemaps:    deps.Sitemaps,
			Fetcher:     deps.Fetcher,
			Links:       goquery.NewLinkExtractor(),
			Limiter:     crawl.NewDomainLimiter(cfg.Rate),
			Filter:      filter,
			Concurrency: cfg.Concurrency,
			OnFailure: func(pageURL string, err error) {
				fmt.Fprintf(deps.Stderr, "  skip %s: %s\n", pageURL, errorMessage(err))
			},
		}
	} else {
		ix.dir = fs.NewDirSource(cfg.Source, parsers.Extensions())
		ix.dir.Exclude = append(ix.dir.Exclude, cfg.Exclude...)
		source = ix.dir
	}

	ix.pipeline = &build.Pipeline{
		Source:      dislog.NewLoggingSourceProvider(source, deps.Logger),
		Parsers:     dislog.NewLoggingRegistry(parsers, deps.Logger),
		Language:    deps.Language,
		Concurrency: cfg.Concurrency,
		Weights:     cfg.Weights,
		EnvVersion:  cfg.EnvVersion,
	}
	return ix
}

// newParsers registers the markdown parser and the HTML parser with the
// configured fallback extractor.
func newParsers(cfg *Config) *build.Registry {
	var extractor docindex.Extractor = trafilatura.NewExtractor()
	if cfg.Extractor == ExtractorReadability {
		extractor = readability.NewExtractor()
	}

	registry := build.NewRegistry()
	registry.Register(gomarkdown.NewParser(), ".md", ".markdown")
	registry.Register(goquery.NewParser(
		goquery.WithExtractor(extractor),
		goquery.WithConverter(htmltomarkdown.NewConverter()),
	), ".html", ".htm")
	return registry
}

// run builds the index, writes it and optionally records it in history.
func (ix *indexer) run(deps *Dependencies, record bool) error {
	progress := func(event build.ProgressEvent) {
		if event.Type == build.ProgressFailed {
			fmt.Fprintf(deps.Stderr, "  skip %s: %s\n", event.Filename, errorMessage(event.Error))
		}
	}

	result, err := ix.pipeline.Run(deps.Ctx, progress)
	if err != nil {
		return err
	}
	idx := result.Index

	if err := deps.Writer.WriteIndex(deps.Ctx, ix.cfg.Output, idx); err != nil {
		return err
	}
	stats := idx.Stats()
	fmt.Fprintf(deps.Stdout, "Indexed %d documents, %d terms -> %s\n", stats.Documents, stats.Terms, ix.cfg.Output)
	if n := len(result.Failed); n > 0 {
		fmt.Fprintf(deps.Stdout, "  %d sources failed\n", n)
	}

	if !record {
		return nil
	}
	b, err := docindex.NewBuild(ix.cfg.Project, idx, result.Docs)
	if err != nil {
		return err
	}
	err = deps.Builds.CreateBuild(deps.Ctx, b)
	switch docindex.ErrorCode(err) {
	case "":
		fmt.Fprintf(deps.Stdout, "Recorded build %s (%s)\n", b.ID, b.Project)
	case docindex.ECONFLICT:
		fmt.Fprintf(deps.Stdout, "Not recorded: %s\n", docindex.ErrorMessage(err))
	default:
		return err
	}
	return nil
}

// outputRel returns the output path relative to the source directory, or
// false when the output lies outside it.
func (ix *indexer) outputRel() (string, bool) {
	if ix.dir == nil {
		return "", false
	}
	root, err := filepath.Abs(ix.dir.Root)
	if err != nil {
		return "", false
	}
	out, err := filepath.Abs(ix.cfg.Output)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(root, out)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}
	return rel, true
}
