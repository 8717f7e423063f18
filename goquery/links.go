package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/docindex"
)

var _ docindex.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor collects the documentation pages linked from a page.
// Links come from anchors anywhere in the page plus rel=next hints, which
// is where generators put their navigation.
type LinkExtractor struct {
	detector *Detector
}

// NewLinkExtractor creates a new LinkExtractor.
func NewLinkExtractor() *LinkExtractor {
	return &LinkExtractor{detector: NewDetector()}
}

// ExtractLinks implements docindex.LinkExtractor.
func (e *LinkExtractor) ExtractLinks(html string, pageURL string) ([]string, error) {
	base, err := url.Parse(pageURL)
	if err != nil || base.Host == "" {
		return nil, docindex.Errorf(docindex.EINVALID, "invalid page URL %q", pageURL)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, docindex.Errorf(docindex.EINVALID, "failed to parse HTML: %v", err)
	}

	// A <base href> changes how relative links resolve.
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if ref, err := url.Parse(href); err == nil {
			base = base.ResolveReference(ref)
		}
	}

	fw := e.detector.DetectDocument(doc)

	self := strip(base)
	seen := map[string]bool{self: true}
	var links []string
	doc.Find("a[href], link[rel=next][href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		resolved, ok := resolve(base, href)
		if !ok || seen[resolved] || docindex.GeneratedPage(fw, resolved) {
			return
		}
		seen[resolved] = true
		links = append(links, resolved)
	})
	return links, nil
}

// resolve turns href into an absolute same-host page URL without fragment
// or query.
func resolve(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || isNonHTTPLink(href) {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	u := base.ResolveReference(ref)
	if u.Host != base.Host || (u.Scheme != "http" && u.Scheme != "https") {
		return "", false
	}
	return strip(u), true
}

func strip(u *url.URL) string {
	c := *u
	c.Fragment = ""
	c.RawFragment = ""
	c.RawQuery = ""
	return c.String()
}

// isNonHTTPLink reports whether href uses a scheme that never names a page.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(href)
	for _, scheme := range []string{"javascript:", "mailto:", "tel:", "data:"} {
		if strings.HasPrefix(href, scheme) {
			return true
		}
	}
	return false
}
