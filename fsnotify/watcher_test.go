package fsnotify_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/docindex"
	"github.com/fwojciec/docindex/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startWatcher runs w in the background and returns the channel of batches.
func startWatcher(t *testing.T, w *fsnotify.Watcher) <-chan []string {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	batches := make(chan []string, 16)
	done := make(chan error, 1)
	go func() {
		done <- w.Watch(ctx, func(_ context.Context, changed []string) {
			batches <- changed
		})
	}()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})

	// Give the watcher time to register the tree.
	time.Sleep(100 * time.Millisecond)
	return batches
}

func nextBatch(t *testing.T, batches <-chan []string) []string {
	t.Helper()
	select {
	case b := <-batches:
		return b
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change batch")
		return nil
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestWatcher_Watch(t *testing.T) {
	t.Parallel()

	t.Run("merges events into one batch", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		w := fsnotify.NewWatcher(root, nil)
		w.Delay = 200 * time.Millisecond
		batches := startWatcher(t, w)

		writeFile(t, filepath.Join(root, "a.md"), "# A")
		writeFile(t, filepath.Join(root, "b.md"), "# B")
		writeFile(t, filepath.Join(root, "a.md"), "# A again")

		assert.Equal(t, []string{"a.md", "b.md"}, nextBatch(t, batches))
	})

	t.Run("ignores skipped and hidden paths", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		writeFile(t, filepath.Join(root, "_build", "old.md"), "old")
		w := fsnotify.NewWatcher(root, func(rel string) bool {
			return rel == "_build" || strings.HasPrefix(rel, "_build/")
		})
		w.Delay = 200 * time.Millisecond
		batches := startWatcher(t, w)

		writeFile(t, filepath.Join(root, "_build", "new.md"), "skipped")
		writeFile(t, filepath.Join(root, ".draft.md"), "hidden")
		writeFile(t, filepath.Join(root, "index.md"), "# Index")

		assert.Equal(t, []string{"index.md"}, nextBatch(t, batches))
	})

	t.Run("watches directories created after start", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		w := fsnotify.NewWatcher(root, nil)
		w.Delay = 100 * time.Millisecond
		batches := startWatcher(t, w)

		require.NoError(t, os.Mkdir(filepath.Join(root, "guide"), 0755))
		assert.Equal(t, []string{"guide"}, nextBatch(t, batches))

		writeFile(t, filepath.Join(root, "guide", "intro.md"), "# Intro")
		assert.Equal(t, []string{"guide/intro.md"}, nextBatch(t, batches))
	})

	t.Run("missing root is ENOTFOUND", func(t *testing.T) {
		t.Parallel()

		w := fsnotify.NewWatcher(filepath.Join(t.TempDir(), "missing"), nil)

		err := w.Watch(context.Background(), func(context.Context, []string) {})

		require.Error(t, err)
		assert.Equal(t, docindex.ENOTFOUND, docindex.ErrorCode(err))
	})

	t.Run("returns when the context is cancelled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := fsnotify.NewWatcher(t.TempDir(), nil).Watch(ctx, func(context.Context, []string) {})

		assert.NoError(t, err)
	})
}
