// Package features turns raw post text into the binary feature space used
// by the classifier: a sorted vocabulary and presence/absence vectors over it.
package features

import (
	"sort"
	"strings"
)

// Vocabulary is the ordered term list that defines feature indices.
// Position i in every Vector refers to Vocabulary[i].
type Vocabulary []string

// Len returns the number of features
func (v Vocabulary) Len() int {
	return len(v)
}

// Index maps each term to its feature position
func (v Vocabulary) Index() map[string]int {
	idx := make(map[string]int, len(v))
	for i, term := range v {
		idx[term] = i
	}
	return idx
}

// Equal reports whether both vocabularies hold the same terms in the same order
func (v Vocabulary) Equal(other Vocabulary) bool {
	if len(v) != len(other) {
		return false
	}
	for i := range v {
		if v[i] != other[i] {
			return false
		}
	}
	return true
}

// Tokenize lower-cases text and splits it on whitespace
func Tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// BuildVocabulary returns the ascending-sorted union of all non stop-word
// tokens in corpus. A nil stop set disables stop-word filtering.
func BuildVocabulary(corpus []string, stop StopWords) Vocabulary {
	seen := make(map[string]struct{})
	for _, text := range corpus {
		for _, word := range Tokenize(text) {
			if stop.Contains(word) {
				continue
			}
			seen[word] = struct{}{}
		}
	}

	vocab := make(Vocabulary, 0, len(seen))
	for word := range seen {
		vocab = append(vocab, word)
	}
	sort.Strings(vocab)

	return vocab
}
