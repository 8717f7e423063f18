package mock_test

import (
	"context"
	"testing"

	"github.com/fwojciec/docindex"
	"github.com/fwojciec/docindex/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexWriter_WriteIndex(t *testing.T) {
	t.Parallel()

	t.Run("delegates to WriteIndexFn", func(t *testing.T) {
		t.Parallel()

		var gotPath string
		var gotIndex *docindex.Index
		w := &mock.IndexWriter{
			WriteIndexFn: func(_ context.Context, path string, idx *docindex.Index) error {
				gotPath, gotIndex = path, idx
				return nil
			},
		}

		idx := docindex.NewIndex()
		err := w.WriteIndex(context.Background(), "_build/searchindex.js", idx)

		require.NoError(t, err)
		assert.Equal(t, "_build/searchindex.js", gotPath)
		assert.Same(t, idx, gotIndex)
	})
}
