package corpus

import (
	"fmt"
	"math/rand"
	"strings"
)

// Generator produces synthetic labeled posts for benchmarking and testing
type Generator struct {
	rand *rand.Rand

	positiveVerbs []string
	negativeVerbs []string
	subjects      []string
	intensifiers  []string
	hashtags      []string
}

// NewGenerator creates a generator; equal seeds give equal output
func NewGenerator(seed int64) *Generator {
	return &Generator{
		rand: rand.New(rand.NewSource(seed)),

		positiveVerbs: []string{
			"love", "enjoy", "adore", "like", "appreciate", "am excited about",
		},
		negativeVerbs: []string{
			"hate", "dislike", "can't stand", "am tired of", "despise", "am annoyed by",
		},
		subjects: []string{
			"pizza", "coding", "rainy days", "traffic", "spam notifications",
			"machine learning", "noisy alerts", "weekend hikes", "morning coffee",
			"long meetings", "new music", "slow trains", "open source", "deadlines",
		},
		intensifiers: []string{
			"", "", "really", "truly", "honestly", "so much",
		},
		hashtags: []string{
			"", "", "", "#mood", "#today", "#life",
		},
	}
}

// Positive returns a post labeled 1
func (g *Generator) Positive() Post {
	return Labeled(g.sentence(g.positiveVerbs), 1)
}

// Negative returns a post labeled 0
func (g *Generator) Negative() Post {
	return Labeled(g.sentence(g.negativeVerbs), 0)
}

// Generate returns n posts of which roughly positiveRatio are positive,
// shuffled
func (g *Generator) Generate(n int, positiveRatio float64) ([]Post, error) {
	if n <= 0 {
		return nil, fmt.Errorf("count must be greater than 0")
	}
	if positiveRatio < 0 || positiveRatio > 1 {
		return nil, fmt.Errorf("positive ratio must be between 0 and 1")
	}

	positives := int(float64(n) * positiveRatio)
	posts := make([]Post, 0, n)
	for i := 0; i < positives; i++ {
		posts = append(posts, g.Positive())
	}
	for i := positives; i < n; i++ {
		posts = append(posts, g.Negative())
	}

	g.rand.Shuffle(len(posts), func(i, j int) {
		posts[i], posts[j] = posts[j], posts[i]
	})
	return posts, nil
}

func (g *Generator) sentence(verbs []string) string {
	parts := []string{"I"}
	if w := g.randomChoice(g.intensifiers); w != "" {
		parts = append(parts, w)
	}
	parts = append(parts, g.randomChoice(verbs), g.randomChoice(g.subjects))
	if tag := g.randomChoice(g.hashtags); tag != "" {
		parts = append(parts, tag)
	}
	return strings.Join(parts, " ")
}

func (g *Generator) randomChoice(items []string) string {
	return items[g.rand.Intn(len(items))]
}
