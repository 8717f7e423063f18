package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docindex"
)

// Ensure the decorators implement their interfaces.
var (
	_ docindex.ParserRegistry = (*LoggingRegistry)(nil)
	_ docindex.Parser         = (*LoggingParser)(nil)
)

// LoggingParser wraps a Parser with per-document debug logging.
type LoggingParser struct {
	next   docindex.Parser
	logger *slog.Logger
}

// NewLoggingParser creates a new LoggingParser.
func NewLoggingParser(next docindex.Parser, logger *slog.Logger) *LoggingParser {
	return &LoggingParser{next: next, logger: logger}
}

// Parse delegates to the wrapped parser and logs the parsed document.
func (p *LoggingParser) Parse(ctx context.Context, file *docindex.SourceFile) (doc *docindex.SourceDoc, err error) {
	defer func(begin time.Time) {
		var title string
		var sections int
		if doc != nil {
			title = doc.Title
			sections = len(doc.Sections)
		}
		p.logger.Debug("parse",
			"docname", file.DocName,
			"filename", file.Filename,
			"title", title,
			"sections", sections,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return p.next.Parse(ctx, file)
}

// LoggingRegistry wraps a ParserRegistry so every parser it hands out logs
// its documents.
type LoggingRegistry struct {
	next   docindex.ParserRegistry
	logger *slog.Logger
}

// NewLoggingRegistry creates a new LoggingRegistry.
func NewLoggingRegistry(next docindex.ParserRegistry, logger *slog.Logger) *LoggingRegistry {
	return &LoggingRegistry{next: next, logger: logger}
}

// Get returns the wrapped registry's parser decorated with logging.
// Extensions without a parser are logged and return nil.
func (r *LoggingRegistry) Get(ext string) docindex.Parser {
	parser := r.next.Get(ext)
	if parser == nil {
		r.logger.Debug("no parser for extension", "ext", ext)
		return nil
	}
	return NewLoggingParser(parser, r.logger)
}

// Register delegates to the wrapped registry.
func (r *LoggingRegistry) Register(parser docindex.Parser, exts ...string) {
	r.next.Register(parser, exts...)
}

// Extensions delegates to the wrapped registry.
func (r *LoggingRegistry) Extensions() []string {
	return r.next.Extensions()
}
