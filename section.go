package docindex

import (
	"strconv"
	"strings"
	"unicode"
)

// Section represents a titled section of a document.
// An empty Anchor means the title cannot be linked to (for example a rubric).
type Section struct {
	Level  int    `json:"level"`
	Title  string `json:"title"`
	Anchor string `json:"anchor"`
}

// GenerateAnchor creates a URL-safe anchor from a title the way docutils
// builds section ids: lowercase, runs of anything other than letters and
// digits collapse to a single hyphen, no leading or trailing hyphens.
func GenerateAnchor(title string) string {
	var sb strings.Builder
	pendingHyphen := false

	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingHyphen && sb.Len() > 0 {
				sb.WriteRune('-')
			}
			sb.WriteRune(r)
			pendingHyphen = false
		} else {
			pendingHyphen = true
		}
	}

	return sb.String()
}

// AnchorSet hands out anchors that are unique within one document.
// Duplicates get numeric suffixes: example, example-1, example-2.
type AnchorSet struct {
	counts map[string]int
	used   map[string]bool
}

// NewAnchorSet returns an empty AnchorSet.
func NewAnchorSet() *AnchorSet {
	return &AnchorSet{
		counts: make(map[string]int),
		used:   make(map[string]bool),
	}
}

// Reserve marks an explicit anchor (such as an HTML id) as taken and returns it.
func (s *AnchorSet) Reserve(anchor string) string {
	s.used[anchor] = true
	return anchor
}

// Unique returns a unique anchor for title, or "" if the title has no
// characters usable in an anchor.
func (s *AnchorSet) Unique(title string) string {
	base := GenerateAnchor(title)
	if base == "" {
		return ""
	}

	anchor := base
	for s.used[anchor] {
		s.counts[base]++
		anchor = base + "-" + strconv.Itoa(s.counts[base])
	}
	s.used[anchor] = true
	return anchor
}
