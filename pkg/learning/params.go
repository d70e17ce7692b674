package learning

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/postmood/postmood/pkg/features"
)

// Params is the complete state of a trained model
type Params struct {
	Smoothing   float64
	Vocabulary  features.Vocabulary
	Classes     []int
	Priors      map[int]float64
	Likelihoods map[int]map[int]float64

	// Optional training metadata
	Documents int
	TrainedAt time.Time
}

// Params returns a deep copy of the model state
func (nb *NaiveBayes) Params() Params {
	nb.mu.RLock()
	defer nb.mu.RUnlock()

	priors := make(map[int]float64, len(nb.priors))
	for k, v := range nb.priors {
		priors[k] = v
	}

	return Params{
		Smoothing:   nb.config.Smoothing,
		Vocabulary:  append(features.Vocabulary(nil), nb.vocabulary...),
		Classes:     append([]int(nil), nb.classes...),
		Priors:      priors,
		Likelihoods: copyLikelihoods(nb.likelihoods),
		Documents:   nb.documents,
		TrainedAt:   nb.lastTrained,
	}
}

// FromParams rebuilds a trained model. It either returns a fully
// populated model or an error wrapping ErrInvalidParams.
func FromParams(p Params) (*NaiveBayes, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	classes := dedupeSorted(p.Classes)

	priors := make(map[int]float64, len(p.Priors))
	for k, v := range p.Priors {
		priors[k] = v
	}

	nb := NewNaiveBayes(&Config{Smoothing: p.Smoothing, Workers: 1})
	nb.priors = priors
	nb.likelihoods = copyLikelihoods(p.Likelihoods)
	nb.classes = classes
	nb.vocabulary = append(features.Vocabulary(nil), p.Vocabulary...)
	nb.documents = p.Documents
	nb.lastTrained = p.TrainedAt

	return nb, nil
}

func (p Params) validate() error {
	if p.Smoothing <= 0 || math.IsNaN(p.Smoothing) || math.IsInf(p.Smoothing, 0) {
		return fmt.Errorf("%w: smoothing must be positive, got %v", ErrInvalidParams, p.Smoothing)
	}
	if len(p.Vocabulary) == 0 {
		return fmt.Errorf("%w: empty vocabulary", ErrInvalidParams)
	}
	if len(p.Classes) == 0 {
		return fmt.Errorf("%w: empty class set", ErrInvalidParams)
	}
	if len(p.Priors) == 0 {
		return fmt.Errorf("%w: empty priors", ErrInvalidParams)
	}
	if len(p.Likelihoods) == 0 {
		return fmt.Errorf("%w: empty likelihoods", ErrInvalidParams)
	}

	known := make(map[int]bool, len(p.Classes))
	for _, c := range p.Classes {
		known[c] = true
	}

	var sum float64
	for label, prior := range p.Priors {
		if !known[label] {
			return fmt.Errorf("%w: prior for unknown class %d", ErrInvalidParams, label)
		}
		if !(prior > 0 && prior <= 1) {
			return fmt.Errorf("%w: prior for class %d out of range (0, 1]: %v", ErrInvalidParams, label, prior)
		}
		sum += prior
	}
	for _, c := range p.Classes {
		if _, ok := p.Priors[c]; !ok {
			return fmt.Errorf("%w: class %d has no prior", ErrInvalidParams, c)
		}
	}
	if math.Abs(sum-1) > 1e-6 {
		return fmt.Errorf("%w: priors sum to %v", ErrInvalidParams, sum)
	}

	for label, probs := range p.Likelihoods {
		if !known[label] {
			return fmt.Errorf("%w: likelihoods for unknown class %d", ErrInvalidParams, label)
		}
		for i, prob := range probs {
			if i < 0 || i >= len(p.Vocabulary) {
				return fmt.Errorf("%w: class %d likelihood index %d outside vocabulary of %d terms",
					ErrInvalidParams, label, i, len(p.Vocabulary))
			}
			if !(prob > 0 && prob < 1) {
				return fmt.Errorf("%w: class %d likelihood %d out of range (0, 1): %v",
					ErrInvalidParams, label, i, prob)
			}
		}
	}

	return nil
}

func dedupeSorted(in []int) []int {
	out := append([]int(nil), in...)
	sort.Ints(out)

	n := 0
	for i, v := range out {
		if i == 0 || v != out[n-1] {
			out[n] = v
			n++
		}
	}
	return out[:n]
}
