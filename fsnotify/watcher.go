// Package fsnotify triggers index rebuilds when a source tree changes.
package fsnotify

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/fwojciec/docindex"
)

// DefaultDelay is how long the watcher waits for the tree to settle.
const DefaultDelay = 300 * time.Millisecond

// Watcher watches a directory tree and reports batches of changed files.
//
// Events are merged until no new event arrives for Delay, so saving many
// files at once results in a single rebuild. Directories created while
// watching are added to the watch set.
type Watcher struct {
	Root  string
	Delay time.Duration

	// Skip reports whether a slash-separated path relative to Root is
	// ignored. Hidden files and directories are always ignored.
	Skip func(rel string) bool

	Logger *slog.Logger
}

// NewWatcher creates a Watcher for root with the default delay.
func NewWatcher(root string, skip func(rel string) bool) *Watcher {
	return &Watcher{Root: root, Delay: DefaultDelay, Skip: skip}
}

// Watch blocks until ctx is cancelled, calling onChange with the sorted
// relative paths that changed in each batch. onChange runs on the watching
// goroutine, so events arriving during a rebuild are held for the next batch.
func (w *Watcher) Watch(ctx context.Context, onChange func(ctx context.Context, changed []string)) error {
	info, err := os.Stat(w.Root)
	if os.IsNotExist(err) {
		return docindex.Errorf(docindex.ENOTFOUND, "source directory %s does not exist", w.Root)
	} else if err != nil {
		return err
	} else if !info.IsDir() {
		return docindex.Errorf(docindex.EINVALID, "%s is not a directory", w.Root)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := w.addTree(fw, w.Root); err != nil {
		return err
	}

	pending := make(map[string]struct{})
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			rel, ok := w.relative(ev.Name)
			if !ok || ev.Op == fsnotify.Chmod {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.addTree(fw, ev.Name); err != nil {
						w.logger().Warn("watch directory", "path", ev.Name, "err", err)
					}
				}
			}
			pending[rel] = struct{}{}

			delay := w.Delay
			if delay <= 0 {
				delay = DefaultDelay
			}
			if timer == nil {
				timer = time.NewTimer(delay)
			} else {
				timer.Reset(delay)
			}
			fire = timer.C

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger().Warn("watch error", "root", w.Root, "err", err)

		case <-fire:
			fire = nil
			changed := make([]string, 0, len(pending))
			for rel := range pending {
				changed = append(changed, rel)
			}
			clear(pending)
			slices.Sort(changed)
			onChange(ctx, changed)
		}
	}
}

// addTree watches dir and every directory below it that is not skipped.
func (w *Watcher) addTree(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// The directory may disappear between the event and the walk.
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.Root {
			if _, ok := w.relative(path); !ok {
				return filepath.SkipDir
			}
		}
		return fw.Add(path)
	})
}

// relative converts an event path to a slash-separated path under Root.
// It reports false for paths that are ignored.
func (w *Watcher) relative(path string) (string, bool) {
	rel, err := filepath.Rel(w.Root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	for _, part := range strings.Split(rel, "/") {
		if strings.HasPrefix(part, ".") {
			return "", false
		}
	}
	if w.Skip != nil && w.Skip(rel) {
		return "", false
	}
	return rel, true
}

func (w *Watcher) logger() *slog.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return slog.New(slog.DiscardHandler)
}
