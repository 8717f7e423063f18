package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/docindex"
	"github.com/fwojciec/docindex/fsnotify"
)

// Run executes the watch command. It builds once, then rebuilds after
// every batch of source changes until interrupted. Failed rebuilds are
// reported and watching continues.
func (c *WatchCmd) Run(deps *Dependencies) error {
	cfg, err := c.BuildFlags.config()
	if err != nil {
		return err
	}
	if cfg.URL != "" {
		return docindex.Errorf(docindex.EINVALID, "watch requires a source directory, config sets url %s", cfg.URL)
	}
	if c.Debounce != 0 {
		cfg.Debounce = c.Debounce
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.setDefaults(); err != nil {
		return err
	}

	ix := newIndexer(deps, cfg, nil)
	record := !c.NoRecord
	if err := ix.run(deps, record); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", errorMessage(err))
	}

	output, inTree := ix.outputRel()
	w := fsnotify.NewWatcher(cfg.Source, func(rel string) bool {
		return ix.dir.Excluded(rel) || (inTree && rel == output)
	})
	if cfg.Debounce > 0 {
		w.Delay = cfg.Debounce
	}
	w.Logger = deps.Logger

	fmt.Fprintf(deps.Stdout, "Watching %s\n", cfg.Source)
	return w.Watch(deps.Ctx, func(ctx context.Context, changed []string) {
		fmt.Fprintf(deps.Stdout, "Changed: %s\n", strings.Join(changed, ", "))
		if err := ix.run(deps, record); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", errorMessage(err))
		}
	})
}
