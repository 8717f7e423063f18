package docindex

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Index is the search payload for one documentation build.
//
// DocNames, Filenames and Titles are parallel lists: position i in each
// describes the same page, and every posting refers to such a position.
// Field order matches the key order of the published payload.
type Index struct {
	DocNames     []string                   `json:"docnames"`
	Filenames    []string                   `json:"filenames"`
	Titles       []string                   `json:"titles"`
	Terms        map[string]Postings        `json:"terms"`
	Objects      map[string]json.RawMessage `json:"objects"`
	ObjTypes     map[string]string          `json:"objtypes"`
	ObjNames     map[string][]string        `json:"objnames"`
	TitleTerms   map[string]Postings        `json:"titleterms"`
	EnvVersion   map[string]int             `json:"envversion"`
	AllTitles    map[string][]TitleRef      `json:"alltitles"`
	IndexEntries map[string][]TitleRef      `json:"indexentries"`

	// TermWeights is present only in the weighted variant of the payload.
	// It maps a term to the relevance weight of each document containing it.
	TermWeights map[string]map[int]int `json:"termweights,omitempty"`
}

// NewIndex returns an empty index with all maps allocated.
func NewIndex() *Index {
	idx := &Index{}
	idx.normalize()
	return idx
}

// normalize replaces nil collections so they serialize as [] and {}.
func (idx *Index) normalize() {
	if idx.DocNames == nil {
		idx.DocNames = []string{}
	}
	if idx.Filenames == nil {
		idx.Filenames = []string{}
	}
	if idx.Titles == nil {
		idx.Titles = []string{}
	}
	if idx.Terms == nil {
		idx.Terms = make(map[string]Postings)
	}
	if idx.Objects == nil {
		idx.Objects = make(map[string]json.RawMessage)
	}
	if idx.ObjTypes == nil {
		idx.ObjTypes = make(map[string]string)
	}
	if idx.ObjNames == nil {
		idx.ObjNames = make(map[string][]string)
	}
	if idx.TitleTerms == nil {
		idx.TitleTerms = make(map[string]Postings)
	}
	if idx.EnvVersion == nil {
		idx.EnvVersion = make(map[string]int)
	}
	if idx.AllTitles == nil {
		idx.AllTitles = make(map[string][]TitleRef)
	}
	if idx.IndexEntries == nil {
		idx.IndexEntries = make(map[string][]TitleRef)
	}
}

// Len returns the number of documents in the index.
func (idx *Index) Len() int {
	return len(idx.DocNames)
}

// DocIndex returns the position of the named document.
func (idx *Index) DocIndex(name string) (int, bool) {
	i := slices.Index(idx.DocNames, name)
	return i, i >= 0
}

// Weighted reports whether the index carries per-document term weights.
func (idx *Index) Weighted() bool {
	return len(idx.TermWeights) > 0
}

// maxProblems bounds the number of messages reported by Validate.
const maxProblems = 20

// Validate returns an EINVALID error describing every structural problem in
// the index: misaligned document lists, duplicate or empty document names,
// out-of-range or unsorted postings, and dangling term weights.
func (idx *Index) Validate() error {
	var problems []string
	addf := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	n := len(idx.DocNames)
	if len(idx.Titles) != n {
		addf("titles has %d entries, docnames has %d", len(idx.Titles), n)
	}
	if len(idx.Filenames) != n {
		addf("filenames has %d entries, docnames has %d", len(idx.Filenames), n)
	}

	seen := make(map[string]int, n)
	for i, name := range idx.DocNames {
		if name == "" {
			addf("docnames[%d] is empty", i)
			continue
		}
		if prev, ok := seen[name]; ok {
			addf("docnames[%d] %q duplicates docnames[%d]", i, name, prev)
			continue
		}
		seen[name] = i
	}

	checkPostings := func(field string, m map[string]Postings) {
		for _, term := range sortedKeys(m) {
			p := m[term]
			if len(p) == 0 {
				addf("%s[%q] has no postings", field, term)
				continue
			}
			for i, doc := range p {
				if doc < 0 || doc >= n {
					addf("%s[%q] references document %d, index has %d documents", field, term, doc, n)
				}
				if i > 0 && doc <= p[i-1] {
					addf("%s[%q] postings are not strictly increasing", field, term)
					break
				}
			}
		}
	}
	checkPostings("terms", idx.Terms)
	checkPostings("titleterms", idx.TitleTerms)

	checkRefs := func(field string, m map[string][]TitleRef) {
		for _, title := range sortedKeys(m) {
			for _, ref := range m[title] {
				if ref.Doc < 0 || ref.Doc >= n {
					addf("%s[%q] references document %d, index has %d documents", field, title, ref.Doc, n)
				}
			}
		}
	}
	checkRefs("alltitles", idx.AllTitles)
	checkRefs("indexentries", idx.IndexEntries)

	for _, term := range sortedKeys(idx.TermWeights) {
		body, inBody := idx.Terms[term]
		title, inTitle := idx.TitleTerms[term]
		if !inBody && !inTitle {
			addf("termweights[%q] has no matching term", term)
			continue
		}
		weights := idx.TermWeights[term]
		for _, doc := range sortedKeys(weights) {
			if doc < 0 || doc >= n {
				addf("termweights[%q] references document %d, index has %d documents", term, doc, n)
				continue
			}
			if !body.Contains(doc) && !title.Contains(doc) {
				addf("termweights[%q] weights document %d which does not contain the term", term, doc)
			}
			if weights[doc] <= 0 {
				addf("termweights[%q][%d] is not positive", term, doc)
			}
		}
	}

	if len(problems) == 0 {
		return nil
	}
	msg := strings.Join(problems[:min(len(problems), maxProblems)], "; ")
	if len(problems) > maxProblems {
		msg += fmt.Sprintf("; and %d more", len(problems)-maxProblems)
	}
	return Errorf(EINVALID, "invalid index: %s", msg)
}

// IndexStats summarizes the size of an index.
type IndexStats struct {
	Documents    int  `json:"documents"`
	Terms        int  `json:"terms"`
	TitleTerms   int  `json:"titleTerms"`
	Titles       int  `json:"titles"`
	Postings     int  `json:"postings"`
	IndexEntries int  `json:"indexEntries"`
	Weighted     bool `json:"weighted"`
}

// Stats returns size statistics for the index.
func (idx *Index) Stats() IndexStats {
	stats := IndexStats{
		Documents:    len(idx.DocNames),
		Terms:        len(idx.Terms),
		TitleTerms:   len(idx.TitleTerms),
		Titles:       len(idx.AllTitles),
		IndexEntries: len(idx.IndexEntries),
		Weighted:     idx.Weighted(),
	}
	for _, p := range idx.Terms {
		stats.Postings += len(p)
	}
	for _, p := range idx.TitleTerms {
		stats.Postings += len(p)
	}
	return stats
}

// LookupResult lists the documents containing a term.
type LookupResult struct {
	Term      string
	Body      Postings
	Title     Postings
	Weights   map[int]int
	Documents []string
}

// Lookup returns the documents that contain term in their body or titles.
// The term must already be normalized the way the index was built (stemmed).
// Documents lists the union of both postings by name, in index order.
func (idx *Index) Lookup(term string) LookupResult {
	res := LookupResult{
		Term:    term,
		Body:    idx.Terms[term],
		Title:   idx.TitleTerms[term],
		Weights: idx.TermWeights[term],
	}
	for _, doc := range res.Body.Union(res.Title) {
		if doc >= 0 && doc < len(idx.DocNames) {
			res.Documents = append(res.Documents, idx.DocNames[doc])
		}
	}
	return res
}

// Postings lists document positions in ascending order.
//
// A single posting is encoded as a bare JSON number and multiple postings as
// an array, which is how generators keep the payload small.
type Postings []int

// Contains reports whether doc is in the postings.
func (p Postings) Contains(doc int) bool {
	_, found := slices.BinarySearch(p, doc)
	return found
}

// Union returns the sorted union of two postings lists.
func (p Postings) Union(other Postings) Postings {
	out := make(Postings, 0, len(p)+len(other))
	out = append(out, p...)
	out = append(out, other...)
	slices.Sort(out)
	return slices.Compact(out)
}

// MarshalJSON implements json.Marshaler.
func (p Postings) MarshalJSON() ([]byte, error) {
	if len(p) == 1 {
		return json.Marshal(p[0])
	}
	if p == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]int(p))
}

// UnmarshalJSON implements json.Unmarshaler.
// A null decodes to empty postings, which Validate reports.
func (p *Postings) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = Postings{}
		return nil
	}
	if len(data) > 0 && data[0] == '[' {
		var docs []int
		if err := json.Unmarshal(data, &docs); err != nil {
			return err
		}
		*p = docs
		return nil
	}
	var doc int
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	*p = Postings{doc}
	return nil
}

// TitleRef points at a titled location inside a document.
// An empty Anchor means the title has no linkable id and encodes as null.
type TitleRef struct {
	Doc    int
	Anchor string
}

// MarshalJSON implements json.Marshaler.
func (r TitleRef) MarshalJSON() ([]byte, error) {
	var anchor any
	if r.Anchor != "" {
		anchor = r.Anchor
	}
	return json.Marshal([]any{r.Doc, anchor})
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *TitleRef) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}
	if len(parts) != 2 {
		return fmt.Errorf("title reference must have 2 elements, got %d", len(parts))
	}
	if err := json.Unmarshal(parts[0], &r.Doc); err != nil {
		return fmt.Errorf("title reference document: %w", err)
	}
	var anchor *string
	if err := json.Unmarshal(parts[1], &anchor); err != nil {
		return fmt.Errorf("title reference anchor: %w", err)
	}
	r.Anchor = ""
	if anchor != nil {
		r.Anchor = *anchor
	}
	return nil
}

// sortedKeys returns the keys of m in ascending order.
func sortedKeys[K interface{ ~int | ~string }, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
