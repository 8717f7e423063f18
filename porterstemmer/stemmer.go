// Package porterstemmer provides the Porter stemming algorithm used to
// normalize English index terms.
package porterstemmer

import (
	porter "github.com/blevesearch/go-porterstemmer"
	"github.com/fwojciec/docindex"
)

// Ensure Stemmer implements docindex.Stemmer at compile time.
var _ docindex.Stemmer = (*Stemmer)(nil)

// Stemmer wraps go-porterstemmer.
type Stemmer struct{}

// NewStemmer creates a new Stemmer.
func NewStemmer() *Stemmer {
	return &Stemmer{}
}

// Stem returns the Porter stem of word. Words of one or two characters are
// returned unchanged.
func (s *Stemmer) Stem(word string) string {
	if word == "" {
		return ""
	}
	return porter.StemString(word)
}
