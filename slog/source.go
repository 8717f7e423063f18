package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docindex"
)

// Ensure LoggingSourceProvider implements docindex.SourceProvider.
var _ docindex.SourceProvider = (*LoggingSourceProvider)(nil)

// LoggingSourceProvider wraps a SourceProvider with logging.
type LoggingSourceProvider struct {
	next   docindex.SourceProvider
	logger *slog.Logger
}

// NewLoggingSourceProvider creates a new LoggingSourceProvider.
func NewLoggingSourceProvider(next docindex.SourceProvider, logger *slog.Logger) *LoggingSourceProvider {
	return &LoggingSourceProvider{next: next, logger: logger}
}

// Sources delegates to the wrapped provider and logs the file count and size.
func (p *LoggingSourceProvider) Sources(ctx context.Context) (files []*docindex.SourceFile, err error) {
	defer func(begin time.Time) {
		var size int
		for _, f := range files {
			size += len(f.Content)
		}
		p.logger.Info("sources",
			"count", len(files),
			"bytes", size,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return p.next.Sources(ctx)
}
