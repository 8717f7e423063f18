package main

import (
	"fmt"
)

// Run executes the export command.
func (c *ExportCmd) Run(deps *Dependencies) error {
	build, err := findBuild(deps, c.ID)
	if err != nil {
		return err
	}

	if c.Out == "" {
		_, err := deps.Stdout.Write(build.Payload)
		return err
	}

	idx, err := build.Index()
	if err != nil {
		return err
	}
	if err := deps.Writer.WriteIndex(deps.Ctx, c.Out, idx); err != nil {
		return err
	}
	fmt.Fprintf(deps.Stdout, "Exported build %s -> %s\n", build.ID, c.Out)
	return nil
}
