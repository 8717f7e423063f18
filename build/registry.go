package build

import (
	"slices"
	"strings"

	"github.com/fwojciec/docindex"
)

var _ docindex.ParserRegistry = (*Registry)(nil)

// Registry maps source file extensions to parsers.
type Registry struct {
	parsers map[string]docindex.Parser
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]docindex.Parser)}
}

// Get returns the parser for ext, or nil if none is registered.
// Extensions are matched case-insensitively and the leading dot is optional.
func (r *Registry) Get(ext string) docindex.Parser {
	return r.parsers[normalizeExt(ext)]
}

// Register adds a parser for one or more extensions, replacing any parser
// already registered for them.
func (r *Registry) Register(parser docindex.Parser, exts ...string) {
	for _, ext := range exts {
		r.parsers[normalizeExt(ext)] = parser
	}
}

// Extensions returns the registered extensions in sorted order.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.parsers))
	for ext := range r.parsers {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
