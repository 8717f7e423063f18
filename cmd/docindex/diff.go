package main

import (
	"fmt"
	"io"

	"github.com/fwojciec/docindex"
)

// Run executes the diff command.
func (c *DiffCmd) Run(deps *Dependencies) error {
	oldIdx, err := loadValidIndex(deps, c.Old)
	if err != nil {
		return err
	}
	newIdx, err := loadValidIndex(deps, c.New)
	if err != nil {
		return err
	}

	d := docindex.Diff(oldIdx, newIdx)
	if d.Empty() {
		fmt.Fprintln(deps.Stdout, "Indexes are equivalent")
		return nil
	}

	w := deps.Stdout
	for _, name := range d.AddedDocs {
		fmt.Fprintf(w, "+ %s\n", name)
	}
	for _, name := range d.RemovedDocs {
		fmt.Fprintf(w, "- %s\n", name)
	}
	for _, t := range d.Retitled {
		fmt.Fprintf(w, "~ %s: %q -> %q\n", t.DocName, t.Old, t.New)
	}

	fmt.Fprintf(w, "terms: +%d -%d ~%d\n", len(d.AddedTerms), len(d.RemovedTerms), len(d.ChangedTerms))
	fmt.Fprintf(w, "title terms: +%d -%d ~%d\n", len(d.AddedTitleTerms), len(d.RemovedTitleTerms), len(d.ChangedTitleTerms))
	if c.Terms {
		printTerms(w, "terms", d.AddedTerms, d.RemovedTerms, d.ChangedTerms)
		printTerms(w, "title terms", d.AddedTitleTerms, d.RemovedTitleTerms, d.ChangedTitleTerms)
	}
	return nil
}

func printTerms(w io.Writer, label string, added, removed, changed []string) {
	if len(added)+len(removed)+len(changed) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s:\n", label)
	for _, t := range added {
		fmt.Fprintf(w, "  + %s\n", t)
	}
	for _, t := range removed {
		fmt.Fprintf(w, "  - %s\n", t)
	}
	for _, t := range changed {
		fmt.Fprintf(w, "  ~ %s\n", t)
	}
}
