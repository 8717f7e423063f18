package crawl

import (
	"net/url"
	"path"
	"strings"

	"github.com/fwojciec/docindex"
)

// PageName maps a page URL below base to the docname and filename the
// generator used for it: https://host/en/latest/install/ becomes
// install/index with filename install/index.html. Pages outside base are
// rejected.
func PageName(base *url.URL, pageURL string) (docname, filename string, ok bool) {
	u, err := url.Parse(pageURL)
	if err != nil || !strings.EqualFold(u.Host, base.Host) {
		return "", "", false
	}

	prefix := baseDir(base)
	p := u.Path
	if p == "" || p+"/" == prefix {
		p = prefix
	}
	rel, found := strings.CutPrefix(p, prefix)
	if !found {
		return "", "", false
	}

	switch {
	case rel == "" || strings.HasSuffix(rel, "/"):
		rel += "index.html"
	case path.Ext(rel) == "":
		rel += ".html"
	}
	return docindex.DocNameFromPath(rel), rel, true
}

// inScope reports whether pageURL lies below base.
func inScope(base *url.URL, pageURL string) bool {
	_, _, ok := PageName(base, pageURL)
	return ok
}

// baseDir returns the directory part of the base URL's path with a trailing
// slash. A base naming a page (…/index.html) resolves to its directory.
func baseDir(base *url.URL) string {
	p := base.Path
	switch {
	case p == "":
		return "/"
	case strings.HasSuffix(p, "/"):
		return p
	case path.Ext(p) != "":
		return strings.TrimSuffix(path.Dir(p), "/") + "/"
	default:
		return p + "/"
	}
}
