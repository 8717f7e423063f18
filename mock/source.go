package mock

import (
	"context"

	"github.com/fwojciec/docindex"
)

var _ docindex.SourceProvider = (*SourceProvider)(nil)

// SourceProvider is a mock implementation of docindex.SourceProvider.
type SourceProvider struct {
	SourcesFn func(ctx context.Context) ([]*docindex.SourceFile, error)
}

func (s *SourceProvider) Sources(ctx context.Context) ([]*docindex.SourceFile, error) {
	return s.SourcesFn(ctx)
}
