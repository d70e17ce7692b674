// Package pipeline ties vocabulary construction, vectorization and the
// classifier together so that training and inference always share the
// same feature space.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/postmood/postmood/pkg/features"
	"github.com/postmood/postmood/pkg/learning"
	"github.com/postmood/postmood/pkg/profiler"
)

var (
	// ErrVocabularyMismatch is returned when inference is attempted with a
	// vocabulary other than the one the model was trained on
	ErrVocabularyMismatch = errors.New("vocabulary does not match the model's training vocabulary")

	// ErrNoTexts is returned when there is nothing to classify
	ErrNoTexts = errors.New("no texts to analyse")
)

// Train builds the vocabulary from texts, vectorizes them and fits model.
// The returned vocabulary must be used for every later prediction.
func Train(model *learning.NaiveBayes, texts []string, labels []int, stop features.StopWords) (features.Vocabulary, error) {
	return train(nil, model, texts, labels, stop)
}

// Predict classifies texts with model. vocab must equal the model's
// training vocabulary term for term; this is checked before any work.
func Predict(model *learning.NaiveBayes, texts []string, vocab features.Vocabulary) ([]int, error) {
	return predict(nil, model, texts, vocab)
}

func train(p *profiler.Profiler, model *learning.NaiveBayes, texts []string, labels []int, stop features.StopWords) (features.Vocabulary, error) {
	if len(texts) != len(labels) {
		return nil, fmt.Errorf("%w: %d texts but %d labels", learning.ErrShapeMismatch, len(texts), len(labels))
	}

	timer := p.Start(profiler.StageVocabulary)
	vocab := features.BuildVocabulary(texts, stop)
	timer.Stop()

	timer = p.Start(profiler.StageVectorize)
	X := features.Vectorize(texts, vocab)
	timer.Stop()

	timer = p.Start(profiler.StageFit)
	err := model.Fit(X, labels, vocab)
	timer.Stop()
	if err != nil {
		return nil, fmt.Errorf("failed to fit model: %w", err)
	}

	return vocab, nil
}

func predict(p *profiler.Profiler, model *learning.NaiveBayes, texts []string, vocab features.Vocabulary) ([]int, error) {
	if !vocab.Equal(model.Vocabulary()) {
		return nil, fmt.Errorf("%w: got %d terms, model has %d",
			ErrVocabularyMismatch, len(vocab), len(model.Vocabulary()))
	}

	timer := p.Start(profiler.StageVectorize)
	X := features.Vectorize(texts, vocab)
	timer.Stop()

	timer = p.Start(profiler.StagePredict)
	labels, err := model.Predict(X)
	timer.Stop()
	if err != nil {
		return nil, err
	}

	return labels, nil
}
