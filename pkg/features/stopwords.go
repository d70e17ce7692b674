package features

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// StopWords is a set of terms discarded when building a vocabulary
type StopWords map[string]struct{}

// englishStopWords is the standard English stop-word list (NLTK "english" corpus)
var englishStopWords = []string{
	"i", "me", "my", "myself", "we", "our", "ours", "ourselves", "you", "you're",
	"you've", "you'll", "you'd", "your", "yours", "yourself", "yourselves", "he", "him", "his",
	"himself", "she", "she's", "her", "hers", "herself", "it", "it's", "its", "itself",
	"they", "them", "their", "theirs", "themselves", "what", "which", "who", "whom", "this",
	"that", "that'll", "these", "those", "am", "is", "are", "was", "were", "be",
	"been", "being", "have", "has", "had", "having", "do", "does", "did", "doing",
	"a", "an", "the", "and", "but", "if", "or", "because", "as", "until",
	"while", "of", "at", "by", "for", "with", "about", "against", "between", "into",
	"through", "during", "before", "after", "above", "below", "to", "from", "up", "down",
	"in", "out", "on", "off", "over", "under", "again", "further", "then", "once",
	"here", "there", "when", "where", "why", "how", "all", "any", "both", "each",
	"few", "more", "most", "other", "some", "such", "no", "nor", "not", "only",
	"own", "same", "so", "than", "too", "very", "s", "t", "can", "will",
	"just", "don", "don't", "should", "should've", "now", "d", "ll", "m", "o",
	"re", "ve", "y", "ain", "aren", "aren't", "couldn", "couldn't", "didn", "didn't",
	"doesn", "doesn't", "hadn", "hadn't", "hasn", "hasn't", "haven", "haven't", "isn", "isn't",
	"ma", "mightn", "mightn't", "mustn", "mustn't", "needn", "needn't", "shan", "shan't", "shouldn",
	"shouldn't", "wasn", "wasn't", "weren", "weren't", "won", "won't", "wouldn", "wouldn't",
}

// EnglishStopWords returns a fresh copy of the standard English stop-word set
func EnglishStopWords() StopWords {
	return NewStopWords(englishStopWords...)
}

// NewStopWords builds a stop-word set; words are lower-cased
func NewStopWords(words ...string) StopWords {
	sw := make(StopWords, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			sw[w] = struct{}{}
		}
	}
	return sw
}

// Contains reports whether word is a stop word
func (sw StopWords) Contains(word string) bool {
	_, ok := sw[word]
	return ok
}

// With returns a copy of the set extended with words
func (sw StopWords) With(words ...string) StopWords {
	out := make(StopWords, len(sw)+len(words))
	for w := range sw {
		out[w] = struct{}{}
	}
	for w := range NewStopWords(words...) {
		out[w] = struct{}{}
	}
	return out
}

// LoadStopWords reads one stop word per line. Blank lines and lines
// starting with '#' are ignored.
func LoadStopWords(r io.Reader) (StopWords, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read stop words: %w", err)
	}
	return NewStopWords(words...), nil
}
