// Package corpus supplies the posts postmood trains on and classifies.
// Posts come from files, from the built-in sample set or from any other
// Source implementation.
package corpus

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnlabeled is returned when a labeled corpus is required but a post has no label
var ErrUnlabeled = errors.New("post has no label")

// Post is a single piece of text with an optional class label
type Post struct {
	Text  string `json:"text" yaml:"text"`
	Label *int   `json:"label,omitempty" yaml:"label,omitempty"`
}

// Labeled returns a post with the given label
func Labeled(text string, label int) Post {
	return Post{Text: text, Label: &label}
}

// Unlabeled returns a post without a label
func Unlabeled(text string) Post {
	return Post{Text: text}
}

// Source provides posts
type Source interface {
	Posts(ctx context.Context) ([]Post, error)
}

// Split separates texts and labels; every post must be labeled
func Split(posts []Post) ([]string, []int, error) {
	texts := make([]string, len(posts))
	labels := make([]int, len(posts))
	for i, p := range posts {
		if p.Label == nil {
			return nil, nil, fmt.Errorf("%w: post %d (%q)", ErrUnlabeled, i, p.Text)
		}
		texts[i] = p.Text
		labels[i] = *p.Label
	}
	return texts, labels, nil
}

// Texts returns the text of every post, in order
func Texts(posts []Post) []string {
	texts := make([]string, len(posts))
	for i, p := range posts {
		texts[i] = p.Text
	}
	return texts
}

// StaticSource serves a fixed set of posts
type StaticSource []Post

// Posts returns a copy of the posts
func (s StaticSource) Posts(ctx context.Context) ([]Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]Post(nil), s...), nil
}

// SampleCorpus returns the built-in demo training set
func SampleCorpus() StaticSource {
	return StaticSource{
		Labeled("I love pizza", 1),
		Labeled("I enjoy coding", 1),
		Labeled("I hate spam notifications", 0),
		Labeled("I dislike noisy alerts", 0),
		Labeled("I hate rainy days", 0),
		Labeled("I love machine learning", 1),
		Labeled("I hate sitting in traffic", 0),
	}
}

// Labels maps class labels to display names
type Labels map[int]string

// DefaultLabels returns the binary sentiment names
func DefaultLabels() Labels {
	return Labels{0: "Negative", 1: "Positive"}
}

// Name returns the display name of label, or "Class N" when unknown
func (l Labels) Name(label int) string {
	if name, ok := l[label]; ok && name != "" {
		return name
	}
	return fmt.Sprintf("Class %d", label)
}

var _ Source = StaticSource(nil)
var _ Source = (*FileSource)(nil)
