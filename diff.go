package docindex

import "slices"

// IndexDiff describes how one build's index differs from another's.
// Documents are compared by name, so a document that only moved position
// is not reported as changed.
type IndexDiff struct {
	AddedDocs   []string      `json:"addedDocs,omitempty"`
	RemovedDocs []string      `json:"removedDocs,omitempty"`
	Retitled    []TitleChange `json:"retitled,omitempty"`

	AddedTerms   []string `json:"addedTerms,omitempty"`
	RemovedTerms []string `json:"removedTerms,omitempty"`
	ChangedTerms []string `json:"changedTerms,omitempty"`

	AddedTitleTerms   []string `json:"addedTitleTerms,omitempty"`
	RemovedTitleTerms []string `json:"removedTitleTerms,omitempty"`
	ChangedTitleTerms []string `json:"changedTitleTerms,omitempty"`
}

// TitleChange records a document whose title differs between builds.
type TitleChange struct {
	DocName string `json:"docname"`
	Old     string `json:"old"`
	New     string `json:"new"`
}

// Empty reports whether the two indexes are equivalent.
func (d *IndexDiff) Empty() bool {
	return len(d.AddedDocs) == 0 && len(d.RemovedDocs) == 0 && len(d.Retitled) == 0 &&
		len(d.AddedTerms) == 0 && len(d.RemovedTerms) == 0 && len(d.ChangedTerms) == 0 &&
		len(d.AddedTitleTerms) == 0 && len(d.RemovedTitleTerms) == 0 && len(d.ChangedTitleTerms) == 0
}

// Diff compares two indexes. All reported lists are sorted.
func Diff(old, cur *Index) *IndexDiff {
	d := &IndexDiff{}

	oldTitles := titlesByName(old)
	newTitles := titlesByName(cur)
	for _, name := range sortedKeys(newTitles) {
		oldTitle, ok := oldTitles[name]
		if !ok {
			d.AddedDocs = append(d.AddedDocs, name)
			continue
		}
		if oldTitle != newTitles[name] {
			d.Retitled = append(d.Retitled, TitleChange{DocName: name, Old: oldTitle, New: newTitles[name]})
		}
	}
	for _, name := range sortedKeys(oldTitles) {
		if _, ok := newTitles[name]; !ok {
			d.RemovedDocs = append(d.RemovedDocs, name)
		}
	}

	d.AddedTerms, d.RemovedTerms, d.ChangedTerms = diffPostings(old, old.Terms, cur, cur.Terms)
	d.AddedTitleTerms, d.RemovedTitleTerms, d.ChangedTitleTerms = diffPostings(old, old.TitleTerms, cur, cur.TitleTerms)
	return d
}

func titlesByName(idx *Index) map[string]string {
	m := make(map[string]string, len(idx.DocNames))
	for i, name := range idx.DocNames {
		if i < len(idx.Titles) {
			m[name] = idx.Titles[i]
		} else {
			m[name] = ""
		}
	}
	return m
}

// diffPostings compares term mappings by the names of the documents they
// reference rather than by raw positions.
func diffPostings(oldIdx *Index, oldTerms map[string]Postings, newIdx *Index, newTerms map[string]Postings) (added, removed, changed []string) {
	for _, term := range sortedKeys(newTerms) {
		oldP, ok := oldTerms[term]
		if !ok {
			added = append(added, term)
			continue
		}
		if !slices.Equal(docNames(oldIdx, oldP), docNames(newIdx, newTerms[term])) {
			changed = append(changed, term)
		}
	}
	for _, term := range sortedKeys(oldTerms) {
		if _, ok := newTerms[term]; !ok {
			removed = append(removed, term)
		}
	}
	return added, removed, changed
}

func docNames(idx *Index, p Postings) []string {
	names := make([]string, 0, len(p))
	for _, doc := range p {
		if doc >= 0 && doc < len(idx.DocNames) {
			names = append(names, idx.DocNames[doc])
		}
	}
	slices.Sort(names)
	return names
}
