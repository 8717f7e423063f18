package main

import (
	"fmt"

	"github.com/fwojciec/docindex"
)

// Run executes the delete command.
func (c *DeleteCmd) Run(deps *Dependencies) error {
	if !c.Force {
		return docindex.Errorf(docindex.EINVALID, "use --force to confirm deletion")
	}

	build, err := findBuild(deps, c.ID)
	if err != nil {
		return err
	}
	if err := deps.Builds.DeleteBuild(deps.Ctx, build.ID); err != nil {
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted build %s (%s)\n", build.ID, build.Project)
	return nil
}
