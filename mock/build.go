package mock

import (
	"context"

	"github.com/fwojciec/docindex"
)

var _ docindex.BuildService = (*BuildService)(nil)

// BuildService is a mock implementation of docindex.BuildService.
type BuildService struct {
	CreateBuildFn     func(ctx context.Context, build *docindex.Build) error
	FindBuildByIDFn   func(ctx context.Context, id string) (*docindex.Build, error)
	FindBuildsFn      func(ctx context.Context, filter docindex.BuildFilter) ([]*docindex.Build, error)
	FindLatestBuildFn func(ctx context.Context, project string) (*docindex.Build, error)
	DeleteBuildFn     func(ctx context.Context, id string) error
}

func (s *BuildService) CreateBuild(ctx context.Context, build *docindex.Build) error {
	return s.CreateBuildFn(ctx, build)
}

func (s *BuildService) FindBuildByID(ctx context.Context, id string) (*docindex.Build, error) {
	return s.FindBuildByIDFn(ctx, id)
}

func (s *BuildService) FindBuilds(ctx context.Context, filter docindex.BuildFilter) ([]*docindex.Build, error) {
	return s.FindBuildsFn(ctx, filter)
}

func (s *BuildService) FindLatestBuild(ctx context.Context, project string) (*docindex.Build, error) {
	return s.FindLatestBuildFn(ctx, project)
}

func (s *BuildService) DeleteBuild(ctx context.Context, id string) error {
	return s.DeleteBuildFn(ctx, id)
}

var _ docindex.IndexWriter = (*IndexWriter)(nil)

// IndexWriter is a mock implementation of docindex.IndexWriter.
type IndexWriter struct {
	WriteIndexFn func(ctx context.Context, path string, idx *docindex.Index) error
}

func (w *IndexWriter) WriteIndex(ctx context.Context, path string, idx *docindex.Index) error {
	return w.WriteIndexFn(ctx, path, idx)
}
