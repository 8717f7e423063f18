package docindex

import (
	"strings"
	"unicode"
)

// Stemmer reduces a word to its stem.
type Stemmer interface {
	// Stem returns the stem of a lower-cased word.
	Stem(word string) string
}

// Language describes how text is split into index terms.
type Language struct {
	Name      string
	StopWords map[string]struct{}
	Stemmer   Stemmer
}

// englishStopWords is the stop-word list used by the search widget's
// English support. Words are matched after lower-casing and stemming.
var englishStopWords = []string{
	"a", "and", "are", "as", "at",
	"be", "but", "by",
	"for",
	"if", "in", "into", "is", "it",
	"near", "no", "not",
	"of", "on", "or",
	"such",
	"that", "the", "their", "then", "there", "these", "they", "this", "to",
	"was", "will", "with",
}

// English returns the English language using the given stemmer.
func English(stemmer Stemmer) *Language {
	stop := make(map[string]struct{}, len(englishStopWords))
	for _, w := range englishStopWords {
		stop[w] = struct{}{}
	}
	return &Language{Name: "en", StopWords: stop, Stemmer: stemmer}
}

// Split breaks text into words: maximal runs of letters, digits and
// underscores. Case is preserved.
func (l *Language) Split(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
}

// Stem lower-cases and stems a word.
func (l *Language) Stem(word string) string {
	word = strings.ToLower(word)
	if l.Stemmer == nil {
		return word
	}
	return l.Stemmer.Stem(word)
}

// Filter reports whether a word may be indexed: stop words and one- or
// two-character hiragana fragments are rejected.
func (l *Language) Filter(word string) bool {
	if word == "" {
		return false
	}
	first := []rune(word)[0]
	if len([]rune(word)) < 3 && first > 12353 && first < 12436 {
		return false
	}
	if first < 256 {
		if _, stop := l.StopWords[word]; stop {
			return false
		}
	}
	return true
}

// Term returns the index term for a word: its stem, or the word itself when
// the stem is rejected by Filter but the word is not. It reports false when
// neither may be indexed.
func (l *Language) Term(word string) (string, bool) {
	if stem := l.Stem(word); l.Filter(stem) {
		return stem, true
	}
	if l.Filter(word) {
		return word, true
	}
	return "", false
}
