package features

import "fmt"

// Vector is a binary presence vector; element i is 1 when Vocabulary[i]
// occurs in the document and 0 otherwise.
type Vector []uint8

// Vectorize encodes each text as a presence vector over vocab
func Vectorize(texts []string, vocab Vocabulary) []Vector {
	vectors := make([]Vector, 0, len(texts))
	for _, text := range texts {
		vectors = append(vectors, vectorize(text, vocab))
	}
	return vectors
}

// VectorizeValues is Vectorize for loosely typed input; each value is
// converted with TextOf first.
func VectorizeValues(values []any, vocab Vocabulary) []Vector {
	texts := make([]string, len(values))
	for i, v := range values {
		texts[i] = TextOf(v)
	}
	return Vectorize(texts, vocab)
}

// TextOf returns the text form of a loosely typed value: strings as is,
// Stringers via String, nil as "", anything else via fmt.Sprint.
func TextOf(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprint(v)
	}
}

func vectorize(text string, vocab Vocabulary) Vector {
	words := make(map[string]struct{})
	for _, w := range Tokenize(text) {
		words[w] = struct{}{}
	}

	vec := make(Vector, len(vocab))
	for i, term := range vocab {
		if _, ok := words[term]; ok {
			vec[i] = 1
		}
	}
	return vec
}
