package main

import (
	"fmt"
)

// Run executes the validate command.
func (c *ValidateCmd) Run(deps *Dependencies) error {
	idx, err := loadIndex(deps, c.Index)
	if err != nil {
		return err
	}

	stats := idx.Stats()
	weighted := "no"
	if stats.Weighted {
		weighted = "yes"
	}
	fmt.Fprintf(deps.Stdout, "documents:     %d\n", stats.Documents)
	fmt.Fprintf(deps.Stdout, "terms:         %d\n", stats.Terms)
	fmt.Fprintf(deps.Stdout, "title terms:   %d\n", stats.TitleTerms)
	fmt.Fprintf(deps.Stdout, "titles:        %d\n", stats.Titles)
	fmt.Fprintf(deps.Stdout, "postings:      %d\n", stats.Postings)
	fmt.Fprintf(deps.Stdout, "index entries: %d\n", stats.IndexEntries)
	fmt.Fprintf(deps.Stdout, "weighted:      %s\n", weighted)

	if err := idx.Validate(); err != nil {
		return err
	}
	fmt.Fprintln(deps.Stdout, "OK")
	return nil
}
