package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docindex"
)

// Ensure LoggingBuildService implements docindex.BuildService.
var _ docindex.BuildService = (*LoggingBuildService)(nil)

// LoggingBuildService wraps a BuildService with logging.
type LoggingBuildService struct {
	next   docindex.BuildService
	logger *slog.Logger
}

// NewLoggingBuildService creates a new LoggingBuildService.
func NewLoggingBuildService(next docindex.BuildService, logger *slog.Logger) *LoggingBuildService {
	return &LoggingBuildService{next: next, logger: logger}
}

// CreateBuild delegates to the wrapped service and logs the recorded build.
func (s *LoggingBuildService) CreateBuild(ctx context.Context, build *docindex.Build) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("create build",
			"project", build.Project,
			"id", build.ID,
			"hash", build.ContentHash,
			"documents", build.Documents,
			"bytes", len(build.Payload),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.CreateBuild(ctx, build)
}

// FindBuildByID delegates to the wrapped service.
func (s *LoggingBuildService) FindBuildByID(ctx context.Context, id string) (build *docindex.Build, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("find build",
			"id", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindBuildByID(ctx, id)
}

// FindBuilds delegates to the wrapped service.
func (s *LoggingBuildService) FindBuilds(ctx context.Context, filter docindex.BuildFilter) (builds []*docindex.Build, err error) {
	defer func(begin time.Time) {
		var project string
		if filter.Project != nil {
			project = *filter.Project
		}
		s.logger.Debug("find builds",
			"project", project,
			"count", len(builds),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindBuilds(ctx, filter)
}

// FindLatestBuild delegates to the wrapped service.
func (s *LoggingBuildService) FindLatestBuild(ctx context.Context, project string) (build *docindex.Build, err error) {
	defer func(begin time.Time) {
		var id string
		if build != nil {
			id = build.ID
		}
		s.logger.Debug("find latest build",
			"project", project,
			"id", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindLatestBuild(ctx, project)
}

// DeleteBuild delegates to the wrapped service.
func (s *LoggingBuildService) DeleteBuild(ctx context.Context, id string) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("delete build",
			"id", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.DeleteBuild(ctx, id)
}
