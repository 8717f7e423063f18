package slog_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/docindex"
	"github.com/fwojciec/docindex/mock"
	dislog "github.com/fwojciec/docindex/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingSourceProvider_Sources(t *testing.T) {
	t.Parallel()

	t.Run("logs file count and size", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.SourceProvider{
			SourcesFn: func(ctx context.Context) ([]*docindex.SourceFile, error) {
				return []*docindex.SourceFile{
					{DocName: "index", Filename: "index.md", Content: []byte("# Home")},
					{DocName: "usage", Filename: "usage.md", Content: []byte("# Use")},
				}, nil
			},
		}

		files, err := dislog.NewLoggingSourceProvider(inner, newLogger(&buf)).Sources(context.Background())

		require.NoError(t, err)
		assert.Len(t, files, 2)
		output := buf.String()
		assert.Contains(t, output, "msg=sources")
		assert.Contains(t, output, "count=2")
		assert.Contains(t, output, "bytes=11")
	})

	t.Run("logs error on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.SourceProvider{
			SourcesFn: func(ctx context.Context) ([]*docindex.SourceFile, error) {
				return nil, errors.New("walk failed")
			},
		}

		_, err := dislog.NewLoggingSourceProvider(inner, newLogger(&buf)).Sources(context.Background())

		require.Error(t, err)
		assert.Contains(t, buf.String(), "err=\"walk failed\"")
	})
}
