// Package goquery parses rendered HTML documentation pages using goquery.
package goquery

import (
	"bytes"
	"context"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/docindex"
)

// Ensure Parser implements docindex.Parser at compile time.
var _ docindex.Parser = (*Parser)(nil)

// Parser extracts titles, sections and body text from rendered HTML pages.
//
// The main content element is located with framework-specific selectors.
// Pages from unknown frameworks go through the optional Extractor before
// falling back to the whole body.
type Parser struct {
	detector  *Detector
	extractor docindex.Extractor
	converter docindex.Converter
}

// Option configures a Parser.
type Option func(*Parser)

// WithExtractor sets the extractor used when no content element is found.
func WithExtractor(e docindex.Extractor) Option {
	return func(p *Parser) {
		p.extractor = e
	}
}

// WithConverter sets the converter used to keep a markdown rendition of
// each page's content.
func WithConverter(c docindex.Converter) Option {
	return func(p *Parser) {
		p.converter = c
	}
}

// NewParser creates a new Parser.
func NewParser(opts ...Option) *Parser {
	p := &Parser{detector: NewDetector()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses a rendered HTML page.
func (p *Parser) Parse(ctx context.Context, file *docindex.SourceFile) (*docindex.SourceDoc, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(file.Content)) == 0 {
		return nil, docindex.Errorf(docindex.EINVALID, "%s: empty HTML input", file.Filename)
	}

	page, err := goquery.NewDocumentFromReader(bytes.NewReader(file.Content))
	if err != nil {
		return nil, docindex.Errorf(docindex.EINVALID, "%s: failed to parse HTML: %v", file.Filename, err)
	}

	framework := p.detector.DetectDocument(page)
	root := findContentRoot(page, framework)
	metaTitle := pageTitle(page)

	if root.Length() == 0 && p.extractor != nil {
		if extracted, err := p.extractor.Extract(string(file.Content)); err == nil && strings.TrimSpace(extracted.ContentHTML) != "" {
			if content, err := goquery.NewDocumentFromReader(strings.NewReader(extracted.ContentHTML)); err == nil {
				root = content.Find("body")
				if extracted.Title != "" {
					metaTitle = extracted.Title
				}
			}
		}
	}
	if root.Length() == 0 {
		root = page.Find("body")
	}

	root.Find(boilerplateSelector).Remove()

	doc := &docindex.SourceDoc{
		DocName:  file.DocName,
		Filename: file.Filename,
	}
	if p.converter != nil {
		if fragment, err := goquery.OuterHtml(root); err == nil {
			if md, err := p.converter.Convert(fragment); err == nil {
				doc.Content = md
			}
		}
	}

	doc.Sections = extractSections(root)
	root.Find("h1, h2, h3, h4, h5, h6, p.rubric").Remove()
	doc.Text = visibleText(root)

	doc.Title = firstTitle(doc.Sections, 1)
	if doc.Title == "" {
		doc.Title = metaTitle
	}
	if doc.Title == "" && len(doc.Sections) > 0 {
		doc.Title = doc.Sections[0].Title
	}
	if doc.Title == "" {
		doc.Title = file.DocName
	}

	return doc, nil
}

// extractSections returns every heading and rubric below root in document order.
//
// A heading takes its anchor from its own id, or from the id of the section
// element it titles. Rubrics are titles without a section and get no anchor.
func extractSections(root *goquery.Selection) []docindex.Section {
	anchors := docindex.NewAnchorSet()
	root.Find("[id]").Each(func(_ int, s *goquery.Selection) {
		if id, ok := s.Attr("id"); ok && id != "" {
			anchors.Reserve(id)
		}
	})

	var sections []docindex.Section
	root.Find("h1, h2, h3, h4, h5, h6, p.rubric").Each(func(_ int, s *goquery.Selection) {
		title := visibleText(s)
		if title == "" {
			return
		}

		if s.Is("p.rubric") {
			sections = append(sections, docindex.Section{Title: title})
			return
		}

		level, _ := strconv.Atoi(strings.TrimPrefix(goquery.NodeName(s), "h"))
		anchor, ok := s.Attr("id")
		if !ok || anchor == "" {
			anchor = sectionID(s)
		}
		if anchor == "" {
			anchor = anchors.Unique(title)
		}
		sections = append(sections, docindex.Section{Level: level, Title: title, Anchor: anchor})
	})
	return sections
}

// sectionID returns the id of the section element a heading titles.
func sectionID(heading *goquery.Selection) string {
	parent := heading.Parent()
	if parent.Is("section") || parent.Is("div.section") {
		id, _ := parent.Attr("id")
		return id
	}
	return ""
}

// titleSeparators join a page title and the site name in <title>.
var titleSeparators = []string{" — ", " – ", " | ", " · ", " - "}

// pageTitle returns the document's <title> without the site name suffix
// most generators append. Only the text after the last separator is
// dropped, and only when it names the site: it matches the og:site_name or
// application-name meta, or, without such meta, follows an unambiguous
// separator or reads like "<project> documentation". A plain hyphen is
// common inside real titles, so it needs that extra evidence.
func pageTitle(page *goquery.Document) string {
	title := strings.TrimSpace(page.Find("head title").First().Text())

	at, sep := -1, ""
	for _, s := range titleSeparators {
		if i := strings.LastIndex(title, s); i > at {
			at, sep = i, s
		}
	}
	if at <= 0 {
		return title
	}

	suffix := strings.ToLower(strings.TrimSpace(title[at+len(sep):]))
	if site := siteName(page); site != "" {
		if !strings.Contains(suffix, strings.ToLower(site)) {
			return title
		}
	} else if sep == " - " && !strings.Contains(suffix, "documentation") && !strings.Contains(suffix, "docs") {
		return title
	}
	return strings.TrimSpace(title[:at])
}

// siteName returns the site name a page declares in its meta tags.
func siteName(page *goquery.Document) string {
	for _, sel := range []string{`meta[property="og:site_name"]`, `meta[name="application-name"]`} {
		if name, ok := page.Find(sel).First().Attr("content"); ok && strings.TrimSpace(name) != "" {
			return strings.TrimSpace(name)
		}
	}
	return ""
}

// firstTitle returns the title of the first section at the given level.
func firstTitle(sections []docindex.Section, level int) string {
	for _, s := range sections {
		if s.Level == level {
			return s.Title
		}
	}
	return ""
}
