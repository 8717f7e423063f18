package mock

import "github.com/fwojciec/docindex"

var _ docindex.Stemmer = (*Stemmer)(nil)

// Stemmer is a mock implementation of docindex.Stemmer.
type Stemmer struct {
	StemFn func(word string) string
}

func (s *Stemmer) Stem(word string) string {
	return s.StemFn(word)
}
