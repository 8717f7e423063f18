package main

import (
	"fmt"
	"strings"
)

// Run executes the lookup command.
//
// Each word is normalized the way the index was built, so "Installing"
// finds documents indexed under "instal".
func (c *LookupCmd) Run(deps *Dependencies) error {
	idx, err := loadValidIndex(deps, c.Index)
	if err != nil {
		return err
	}

	for _, arg := range c.Words {
		for _, word := range deps.Language.Split(arg) {
			term, ok := deps.Language.Term(word)
			if !ok {
				fmt.Fprintf(deps.Stdout, "%s: not indexed (stop word)\n", word)
				continue
			}

			res := idx.Lookup(term)
			fmt.Fprintf(deps.Stdout, "%s (%s): %d documents\n", word, term, len(res.Documents))
			for _, doc := range res.Body.Union(res.Title) {
				if doc < 0 || doc >= idx.Len() {
					continue
				}
				var marks []string
				if res.Title.Contains(doc) {
					marks = append(marks, "title")
				}
				if w, ok := res.Weights[doc]; ok {
					marks = append(marks, fmt.Sprintf("weight=%d", w))
				}
				line := fmt.Sprintf("  %s  %s", idx.DocNames[doc], idx.Titles[doc])
				if len(marks) > 0 {
					line += "  [" + strings.Join(marks, " ") + "]"
				}
				fmt.Fprintln(deps.Stdout, line)
			}
		}
	}
	return nil
}
