package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/docindex"
)

var _ docindex.FrameworkDetector = (*Detector)(nil)

// Detector identifies documentation frameworks from HTML content.
// It checks for framework-specific CSS classes, data attributes, meta tags,
// and structural markers that are unique to each documentation generator.
type Detector struct{}

// NewDetector creates a new Detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect analyzes HTML and returns the identified framework.
// Returns FrameworkUnknown if the framework cannot be determined.
func (d *Detector) Detect(html string) docindex.Framework {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return docindex.FrameworkUnknown
	}
	return d.DetectDocument(doc)
}

// DetectDocument is like Detect for an already parsed document.
func (d *Detector) DetectDocument(doc *goquery.Document) docindex.Framework {
	// Meta generator tags are the most reliable marker when present.
	if framework := d.detectFromMetaGenerator(doc); framework != docindex.FrameworkUnknown {
		return framework
	}

	if d.hasSelector(doc, "#__docusaurus_skipToContent_fallback") ||
		d.hasSelector(doc, ".theme-doc-sidebar-container") ||
		d.hasSelector(doc, "[data-rh]") && d.hasSelector(doc, "[data-theme]") {
		return docindex.FrameworkDocusaurus
	}

	// data-md-* attributes are unique to MkDocs Material.
	if d.hasSelector(doc, "[data-md-color-scheme]") ||
		d.hasSelector(doc, "[data-md-component]") ||
		d.hasSelector(doc, ".md-nav--primary") {
		return docindex.FrameworkMkDocs
	}

	// Sphinx, including the ReadTheDocs theme.
	if d.hasSelector(doc, ".toctree-wrapper") ||
		d.hasSelector(doc, ".wy-nav-side") ||
		d.hasSelector(doc, ".wy-menu-vertical") ||
		d.hasSelector(doc, ".sphinxsidebar") ||
		d.hasSelector(doc, "a.headerlink") {
		return docindex.FrameworkSphinx
	}

	// VitePress before VuePress since VitePress is its successor.
	if d.hasSelector(doc, "#VPContent") ||
		d.hasSelector(doc, ".VPDoc") ||
		d.hasSelector(doc, ".VPDocAsideOutline") {
		return docindex.FrameworkVitePress
	}

	if d.hasSelector(doc, ".theme-default-content") ||
		d.hasSelector(doc, ".sidebar-links") ||
		d.hasSelector(doc, ".vuepress-navbar") {
		return docindex.FrameworkVuePress
	}

	if d.hasSelector(doc, "[data-testid='space.sidebar']") ||
		d.hasSelector(doc, "[data-testid='page.desktopTableOfContents']") {
		return docindex.FrameworkGitBook
	}

	if d.hasSelector(doc, ".nextra-navbar") ||
		d.hasSelector(doc, ".nextra-sidebar") ||
		d.hasSelector(doc, ".nextra-toc") {
		return docindex.FrameworkNextra
	}

	return docindex.FrameworkUnknown
}

// detectFromMetaGenerator checks the meta generator tag for framework identification.
func (d *Detector) detectFromMetaGenerator(doc *goquery.Document) docindex.Framework {
	generator := ""
	doc.Find("meta[name='generator']").Each(func(_ int, s *goquery.Selection) {
		if content, exists := s.Attr("content"); exists {
			generator = strings.ToLower(content)
		}
	})

	if generator == "" {
		return docindex.FrameworkUnknown
	}

	switch {
	case strings.Contains(generator, "sphinx"), strings.Contains(generator, "docutils"):
		return docindex.FrameworkSphinx
	case strings.Contains(generator, "gitbook"):
		return docindex.FrameworkGitBook
	case strings.Contains(generator, "docusaurus"):
		return docindex.FrameworkDocusaurus
	case strings.Contains(generator, "mkdocs"):
		return docindex.FrameworkMkDocs
	case strings.Contains(generator, "vitepress"):
		return docindex.FrameworkVitePress
	case strings.Contains(generator, "vuepress"):
		return docindex.FrameworkVuePress
	case strings.Contains(generator, "nextra"):
		return docindex.FrameworkNextra
	}

	return docindex.FrameworkUnknown
}

// hasSelector checks if the document contains at least one element matching the selector.
func (d *Detector) hasSelector(doc *goquery.Document, selector string) bool {
	return doc.Find(selector).Length() > 0
}
