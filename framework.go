package docindex

import (
	"net/url"
	"path"
	"strings"
)

// Framework identifies the documentation generator that produced a page.
type Framework string

// Supported documentation frameworks.
const (
	FrameworkUnknown    Framework = ""
	FrameworkDocusaurus Framework = "docusaurus"
	FrameworkMkDocs     Framework = "mkdocs"
	FrameworkSphinx     Framework = "sphinx"
	FrameworkVuePress   Framework = "vuepress"
	FrameworkVitePress  Framework = "vitepress"
	FrameworkGitBook    Framework = "gitbook"
	FrameworkNextra     Framework = "nextra"
)

// FrameworkDetector identifies documentation frameworks from HTML.
type FrameworkDetector interface {
	// Detect analyzes HTML and returns the identified framework.
	// Returns FrameworkUnknown if the framework cannot be determined.
	Detect(html string) Framework
}

// generatedPaths lists path fragments of pages every generator writes that
// are not documentation: indexes, search pages, highlighted source listings.
var generatedPaths = []string{
	"/_sources/", "/_modules/", "/_static/", "/_images/", "/_downloads/",
	"/genindex", "/py-modindex", "/search.html", "/404.html",
}

// frameworkGeneratedPaths adds fragments that only mean generated output for
// one framework.
var frameworkGeneratedPaths = map[Framework][]string{
	FrameworkMkDocs:     {"/assets/"},
	FrameworkDocusaurus: {"/search", "/tags/", "/blog/"},
}

// assetExts are extensions of published resources that are never pages.
var assetExts = map[string]bool{
	".css": true, ".js": true, ".json": true, ".map": true, ".txt": true,
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".svg": true, ".ico": true, ".webp": true,
	".pdf": true, ".zip": true, ".gz": true, ".tar": true, ".epub": true,
	".woff": true, ".woff2": true, ".ttf": true, ".xml": true, ".inv": true,
}

// GeneratedPage reports whether pageURL names something a generator
// publishes besides documentation pages, such as a general index, a search
// page, a source listing or a static asset. Unparsable URLs count as
// generated.
func GeneratedPage(fw Framework, pageURL string) bool {
	u, err := url.Parse(pageURL)
	if err != nil {
		return true
	}
	p := u.Path
	if assetExts[strings.ToLower(path.Ext(p))] {
		return true
	}
	for _, s := range generatedPaths {
		if strings.Contains(p, s) {
			return true
		}
	}
	for _, s := range frameworkGeneratedPaths[fw] {
		if strings.Contains(p, s) {
			return true
		}
	}
	return false
}
