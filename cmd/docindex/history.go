package main

import (
	"fmt"

	"github.com/fwojciec/docindex"
)

// Run executes the history command.
func (c *HistoryCmd) Run(deps *Dependencies) error {
	filter := docindex.BuildFilter{Limit: c.Limit}
	if c.Project != "" {
		filter.Project = &c.Project
	}

	builds, err := deps.Builds.FindBuilds(deps.Ctx, filter)
	if err != nil {
		return err
	}

	if len(builds) == 0 {
		fmt.Fprintln(deps.Stdout, "No builds recorded. Use 'docindex build' to create one.")
		return nil
	}

	for _, b := range builds {
		fmt.Fprintf(deps.Stdout, "%s  %s  %s  %d docs  %d terms  %s\n",
			b.ID, b.CreatedAt.Local().Format("2006-01-02 15:04:05"), b.Project, b.Documents, b.Terms, b.ContentHash)
	}
	return nil
}
