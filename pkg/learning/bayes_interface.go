package learning

import (
	"errors"

	"github.com/postmood/postmood/pkg/features"
)

var (
	// ErrNotTrained is returned when a model is used before Fit or a successful load
	ErrNotTrained = errors.New("model is not trained: priors, likelihoods, vocabulary and classes must be populated; train or load the model first")

	// ErrShapeMismatch is returned when training vectors and labels do not line up
	ErrShapeMismatch = errors.New("training data shape mismatch")

	// ErrInvalidSmoothing is returned for a non-positive smoothing constant
	ErrInvalidSmoothing = errors.New("smoothing must be positive")

	// ErrInvalidParams is returned when restoring a model from inconsistent parameters
	ErrInvalidParams = errors.New("invalid model parameters")
)

// Classifier is a batch text classifier over binary feature vectors
type Classifier interface {
	Fit(X []features.Vector, y []int, vocab features.Vocabulary) error
	Predict(X []features.Vector) ([]int, error)
}

// Progress receives coarse progress notifications from long loops.
// Stage is "fit" or "predict"; done counts finished units out of total.
// Step is never called with the model lock held, so it may read the model.
type Progress interface {
	Step(stage string, done, total int)
}

// ProgressFunc adapts a plain function to the Progress interface
type ProgressFunc func(stage string, done, total int)

// Step calls f
func (f ProgressFunc) Step(stage string, done, total int) {
	f(stage, done, total)
}

type noProgress struct{}

func (noProgress) Step(string, int, int) {}

var _ Classifier = (*NaiveBayes)(nil)
var _ Progress = ProgressFunc(nil)
