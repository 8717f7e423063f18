// Package build turns parsed documentation pages into a search index.
package build

import (
	"slices"

	"github.com/fwojciec/docindex"
)

// TitleWeight is the weight a title occurrence contributes to a term in
// weighted indexes. Body occurrences contribute 1.
const TitleWeight = 5

// Builder accumulates documents and freezes them into an index.
// Builder is not safe for concurrent use.
type Builder struct {
	lang       *docindex.Language
	weights    bool
	envVersion map[string]int
	docs       map[string]*docindex.SourceDoc
}

// Option configures a Builder.
type Option func(*Builder)

// WithWeights makes the builder emit per-document term weights.
func WithWeights(enabled bool) Option {
	return func(b *Builder) {
		b.weights = enabled
	}
}

// WithEnvVersion adds entries to the index's envversion map.
func WithEnvVersion(versions map[string]int) Option {
	return func(b *Builder) {
		for k, v := range versions {
			b.envVersion[k] = v
		}
	}
}

// EnvVersion is the format version recorded in every index this package builds.
const EnvVersion = 1

// NewBuilder creates a Builder for the given language.
func NewBuilder(lang *docindex.Language, opts ...Option) *Builder {
	b := &Builder{
		lang:       lang,
		envVersion: map[string]int{"docindex": EnvVersion},
		docs:       make(map[string]*docindex.SourceDoc),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Feed adds a document. Returns EINVALID for incomplete documents and
// ECONFLICT if a document with the same name was already fed.
func (b *Builder) Feed(doc *docindex.SourceDoc) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	if prev, ok := b.docs[doc.DocName]; ok {
		return docindex.Errorf(docindex.ECONFLICT, "document %q from %s already provided by %s", doc.DocName, doc.Filename, prev.Filename)
	}
	b.docs[doc.DocName] = doc
	return nil
}

// Len returns the number of documents fed so far.
func (b *Builder) Len() int {
	return len(b.docs)
}

// Freeze builds the index from all documents fed so far. Documents are
// ordered by name so the same input always yields the same index.
func (b *Builder) Freeze() *docindex.Index {
	idx := docindex.NewIndex()
	for k, v := range b.envVersion {
		idx.EnvVersion[k] = v
	}

	names := make([]string, 0, len(b.docs))
	for name := range b.docs {
		names = append(names, name)
	}
	slices.Sort(names)

	titleMapping := make(map[string]map[int]struct{})
	mapping := make(map[string]map[int]struct{})
	weights := make(map[string]map[int]int)

	add := func(m map[string]map[int]struct{}, term string, doc int) {
		if m[term] == nil {
			m[term] = make(map[int]struct{})
		}
		m[term][doc] = struct{}{}
	}
	weigh := func(term string, doc, w int) {
		if !b.weights {
			return
		}
		if weights[term] == nil {
			weights[term] = make(map[int]int)
		}
		weights[term][doc] += w
	}

	for i, name := range names {
		doc := b.docs[name]
		idx.DocNames = append(idx.DocNames, doc.DocName)
		idx.Filenames = append(idx.Filenames, doc.Filename)
		idx.Titles = append(idx.Titles, doc.Title)

		for _, section := range titledSections(doc) {
			idx.AllTitles[section.Title] = append(idx.AllTitles[section.Title], docindex.TitleRef{Doc: i, Anchor: section.Anchor})

			for _, word := range b.lang.Split(section.Title) {
				term, ok := b.lang.Term(word)
				if !ok {
					continue
				}
				add(titleMapping, term, i)
				weigh(term, i, TitleWeight)
			}
		}

		for _, word := range b.lang.Split(doc.Text) {
			term, ok := b.lang.Term(word)
			if !ok {
				continue
			}
			weigh(term, i, 1)
			if _, inTitle := titleMapping[term][i]; inTitle {
				continue
			}
			add(mapping, term, i)
		}
	}

	for term, docs := range mapping {
		idx.Terms[term] = toPostings(docs)
	}
	for term, docs := range titleMapping {
		idx.TitleTerms[term] = toPostings(docs)
	}
	if b.weights {
		idx.TermWeights = weights
	}
	return idx
}

// titledSections returns the document's sections, falling back to the page
// title when the parser found no headings.
func titledSections(doc *docindex.SourceDoc) []docindex.Section {
	var out []docindex.Section
	for _, s := range doc.Sections {
		if s.Title != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 && doc.Title != "" {
		out = append(out, docindex.Section{Level: 1, Title: doc.Title, Anchor: docindex.GenerateAnchor(doc.Title)})
	}
	return out
}

func toPostings(docs map[int]struct{}) docindex.Postings {
	p := make(docindex.Postings, 0, len(docs))
	for doc := range docs {
		p = append(p, doc)
	}
	slices.Sort(p)
	return p
}
