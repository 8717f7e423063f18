package docindex

import (
	"context"
	"path"
	"strings"
)

// SourceFile is a raw documentation source waiting to be parsed.
type SourceFile struct {
	// DocName is the page slug, slash-separated and without extension.
	DocName string
	// Filename is the source path relative to the source root.
	Filename string
	Content  []byte
}

// Ext returns the lower-cased extension of the source filename.
func (f *SourceFile) Ext() string {
	return strings.ToLower(path.Ext(f.Filename))
}

// Validate returns an error if the source file contains invalid fields.
func (f *SourceFile) Validate() error {
	if f.DocName == "" {
		return Errorf(EINVALID, "source docname required")
	}
	if f.Filename == "" {
		return Errorf(EINVALID, "source filename required for %q", f.DocName)
	}
	return nil
}

// SourceDoc is a parsed documentation page ready to be indexed.
type SourceDoc struct {
	DocName  string
	Filename string
	Title    string

	// Sections lists every titled section in document order, including the
	// page title itself.
	Sections []Section

	// Text is the indexable body text, section titles excluded.
	Text string

	// Content is a markdown rendition of the page kept for build history.
	Content string
}

// Validate returns an error if the document contains invalid fields.
func (d *SourceDoc) Validate() error {
	if d.DocName == "" {
		return Errorf(EINVALID, "document docname required")
	}
	if d.Filename == "" {
		return Errorf(EINVALID, "document filename required for %q", d.DocName)
	}
	return nil
}

// DocNameFromPath derives a document name from a slash-separated relative
// path by dropping the extension: "guide/install.md" becomes "guide/install".
func DocNameFromPath(rel string) string {
	rel = strings.TrimPrefix(path.Clean("/"+rel), "/")
	return strings.TrimSuffix(rel, path.Ext(rel))
}

// Parser turns raw source files into indexable documents.
type Parser interface {
	// Parse extracts the title, sections and text of a source file.
	// Returns EINVALID if the content cannot be parsed.
	Parse(ctx context.Context, file *SourceFile) (*SourceDoc, error)
}

// ParserRegistry selects a parser by file extension.
type ParserRegistry interface {
	// Get returns the parser registered for ext (with leading dot), or nil.
	Get(ext string) Parser

	// Register adds a parser for one or more extensions.
	Register(parser Parser, exts ...string)

	// Extensions returns the registered extensions in sorted order.
	Extensions() []string
}

// SourceProvider lists the documentation sources of one build.
// Implementations hide local directory walking vs published-site discovery.
type SourceProvider interface {
	Sources(ctx context.Context) ([]*SourceFile, error)
}
