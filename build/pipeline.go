package build

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/fwojciec/docindex"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of files parsed in parallel when
// Pipeline.Concurrency is not set.
const DefaultConcurrency = 4

// Pipeline collects sources, parses them and builds an index.
type Pipeline struct {
	Source      docindex.SourceProvider
	Parsers     docindex.ParserRegistry
	Language    *docindex.Language
	Concurrency int
	Weights     bool
	EnvVersion  map[string]int
}

// Result holds the outcome of a pipeline run.
type Result struct {
	Index *docindex.Index
	Docs  []*docindex.SourceDoc

	// Failed lists sources that could not be parsed or indexed.
	Failed []Failure

	// Skipped lists sources with no registered parser.
	Skipped []string
}

// Failure records why a source was left out of the index.
type Failure struct {
	Filename string
	Err      error
}

// ProgressEvent reports progress during a pipeline run.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	Filename  string
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressParsed
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting pipeline progress.
type ProgressFunc func(event ProgressEvent)

type parseResult struct {
	position int
	doc      *docindex.SourceDoc
	err      error
}

// Run builds an index from every source the provider returns.
// A source that fails to parse is skipped and reported in Result.Failed.
// Returns EINVALID if no source could be indexed.
func (p *Pipeline) Run(ctx context.Context, progress ProgressFunc) (*Result, error) {
	if p.Source == nil || p.Parsers == nil || p.Language == nil {
		return nil, docindex.Errorf(docindex.EINTERNAL, "pipeline requires a source, parsers and a language")
	}

	sources, err := p.Source.Sources(ctx)
	if err != nil {
		return nil, fmt.Errorf("collecting sources: %w", err)
	}

	result := &Result{}
	var files []*docindex.SourceFile
	for _, f := range sources {
		if p.Parsers.Get(f.Ext()) == nil {
			result.Skipped = append(result.Skipped, f.Filename)
			continue
		}
		files = append(files, f)
	}
	// Stable order so duplicate docnames always resolve to the same file.
	slices.SortFunc(files, func(a, b *docindex.SourceFile) int {
		if c := strings.Compare(a.DocName, b.DocName); c != 0 {
			return c
		}
		return strings.Compare(a.Filename, b.Filename)
	})

	notify := func(e ProgressEvent) {
		if progress != nil {
			progress(e)
		}
	}
	notify(ProgressEvent{Type: ProgressStarted, Total: len(files)})

	concurrency := p.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	resultCh := make(chan parseResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	go func() {
		for i, f := range files {
			g.Go(func() error {
				resultCh <- p.parse(gctx, i, f)
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	parsed := make([]parseResult, len(files))
	completed := 0
	for r := range resultCh {
		completed++
		parsed[r.position] = r
		event := ProgressEvent{
			Type:      ProgressParsed,
			Completed: completed,
			Total:     len(files),
			Filename:  files[r.position].Filename,
		}
		if r.err != nil {
			event.Type = ProgressFailed
			event.Error = r.err
		}
		notify(event)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	builder := NewBuilder(p.Language, WithWeights(p.Weights), WithEnvVersion(p.EnvVersion))
	for i, r := range parsed {
		if r.err == nil {
			r.err = builder.Feed(r.doc)
		}
		if r.err != nil {
			result.Failed = append(result.Failed, Failure{Filename: files[i].Filename, Err: r.err})
			continue
		}
		result.Docs = append(result.Docs, r.doc)
	}

	notify(ProgressEvent{Type: ProgressFinished, Completed: len(files), Total: len(files)})

	if builder.Len() == 0 {
		return result, docindex.Errorf(docindex.EINVALID, "no documents to index (%d sources, %d failed, %d skipped)",
			len(sources), len(result.Failed), len(result.Skipped))
	}

	idx := builder.Freeze()
	if err := idx.Validate(); err != nil {
		return result, docindex.Errorf(docindex.EINTERNAL, "built index failed validation: %s", docindex.ErrorMessage(err))
	}
	result.Index = idx
	return result, nil
}

// parse runs the registered parser for one file.
func (p *Pipeline) parse(ctx context.Context, position int, f *docindex.SourceFile) parseResult {
	r := parseResult{position: position}
	if err := ctx.Err(); err != nil {
		r.err = err
		return r
	}
	if err := f.Validate(); err != nil {
		r.err = err
		return r
	}
	r.doc, r.err = p.Parsers.Get(f.Ext()).Parse(ctx, f)
	return r
}
