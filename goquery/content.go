package goquery

import (
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/docindex"
	"golang.org/x/net/html"
)

// contentSelectors lists, per framework, the selectors of the element that
// holds a page's main content, most specific first.
var contentSelectors = map[docindex.Framework][]string{
	docindex.FrameworkSphinx: {
		"div[role=main]",
		"article.bd-article",
		"div.body",
		"div.document",
	},
	docindex.FrameworkMkDocs: {
		".md-content article",
		".md-content",
		"div[role=main]",
	},
	docindex.FrameworkDocusaurus: {
		"article .markdown",
		"article",
	},
	docindex.FrameworkVitePress: {
		".vp-doc",
		"#VPContent",
	},
	docindex.FrameworkVuePress: {
		".theme-default-content",
	},
	docindex.FrameworkGitBook: {
		"main",
	},
	docindex.FrameworkNextra: {
		"article",
		"main",
	},
	docindex.FrameworkUnknown: {
		"main",
		"[role=main]",
		"article",
	},
}

// boilerplateSelector matches elements whose text is never indexed.
const boilerplateSelector = "script, style, noscript, template, nav, footer, header, " +
	"[role=navigation], [role=search], .headerlink, .sphinxsidebar, .related, " +
	".wy-nav-side, .md-sidebar, .theme-doc-sidebar-container, .toc, .toctree-wrapper .caption"

// findContentRoot returns the first element matching the framework's content
// selectors, or an empty selection.
func findContentRoot(doc *goquery.Document, framework docindex.Framework) *goquery.Selection {
	selectors := contentSelectors[framework]
	if framework != docindex.FrameworkUnknown {
		selectors = slices.Concat(selectors, contentSelectors[docindex.FrameworkUnknown])
	}
	for _, selector := range selectors {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			return sel
		}
	}
	return doc.Find("nonexistent-element")
}

// blockElements get whitespace around their text so words in adjacent blocks
// are not glued together.
var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true, "br": true,
	"dd": true, "div": true, "dl": true, "dt": true, "figcaption": true, "figure": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"hr": true, "li": true, "main": true, "ol": true, "p": true, "pre": true,
	"section": true, "table": true, "td": true, "th": true, "tr": true, "ul": true,
}

// visibleText renders the text below the selection, separating block-level
// elements with spaces and collapsing runs of whitespace.
func visibleText(sel *goquery.Selection) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(n.Data)
			return
		case html.ElementNode:
			if blockElements[n.Data] {
				sb.WriteByte(' ')
				defer sb.WriteByte(' ')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}
