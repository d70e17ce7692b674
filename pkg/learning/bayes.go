// Package learning implements a Bernoulli Naive Bayes classifier over
// binary presence vectors, with add-α (Laplace) smoothing and
// log-probability scoring.
package learning

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/postmood/postmood/pkg/features"
	"github.com/postmood/postmood/pkg/logging"
)

// predictBatch is the number of documents between predict progress callbacks
const predictBatch = 100

// Config holds learning configuration
type Config struct {
	// Smoothing is the Laplace constant α used in every estimate
	Smoothing float64 `json:"smoothing" yaml:"smoothing"`

	// Workers bounds how many classes are counted in parallel during Fit
	Workers int `json:"workers" yaml:"workers"`
}

// DefaultConfig returns default learning configuration
func DefaultConfig() *Config {
	return &Config{
		Smoothing: 1.0,
		Workers:   1,
	}
}

// NaiveBayes is a two-outcome (present/absent) Naive Bayes model.
//
// A new model is untrained. Fit populates every parameter and replaces
// anything learned before; FromParams restores a trained model.
type NaiveBayes struct {
	mu sync.RWMutex

	// Parameters
	priors      map[int]float64
	likelihoods map[int]map[int]float64
	classes     []int // ascending
	vocabulary  features.Vocabulary

	// Configuration
	config   *Config
	progress Progress

	// Metadata
	documents   int
	lastTrained time.Time
}

// NewNaiveBayes creates an untrained model
func NewNaiveBayes(config *Config) *NaiveBayes {
	if config == nil {
		config = DefaultConfig()
	}

	return &NaiveBayes{
		priors:      make(map[int]float64),
		likelihoods: make(map[int]map[int]float64),
		config:      config,
		progress:    noProgress{},
	}
}

// SetProgress installs a progress callback; nil disables reporting
func (nb *NaiveBayes) SetProgress(p Progress) {
	nb.mu.Lock()
	defer nb.mu.Unlock()

	if p == nil {
		p = noProgress{}
	}
	nb.progress = p
}

// Fit trains the model on binary vectors X with labels y over vocab.
//
// prior(c) = n_c / N and likelihood(c, i) = (k_ci + α) / (n_c + 2α), where
// n_c is the number of documents labelled c and k_ci how many of them have
// feature i set. Empty input yields a degenerate model that Predict rejects.
func (nb *NaiveBayes) Fit(X []features.Vector, y []int, vocab features.Vocabulary) error {
	if len(X) != len(y) {
		return fmt.Errorf("%w: %d vectors but %d labels", ErrShapeMismatch, len(X), len(y))
	}
	for i, x := range X {
		if len(x) != len(vocab) {
			return fmt.Errorf("%w: vector %d has %d features, vocabulary has %d",
				ErrShapeMismatch, i, len(x), len(vocab))
		}
	}

	nb.mu.RLock()
	alpha := nb.config.Smoothing
	workers := nb.config.Workers
	progress := nb.progress
	nb.mu.RUnlock()

	if alpha <= 0 || math.IsNaN(alpha) || math.IsInf(alpha, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidSmoothing, alpha)
	}

	total := len(y)
	if total == 0 {
		logging.Warn().Msg("training data is empty, model will not be usable for prediction")
	}

	// Group documents per class once so each class is a single pass
	byClass := make(map[int][]features.Vector)
	for i, label := range y {
		byClass[label] = append(byClass[label], X[i])
	}

	classes := make([]int, 0, len(byClass))
	for label := range byClass {
		classes = append(classes, label)
	}
	sort.Ints(classes)

	priors := make(map[int]float64, len(classes))
	for _, label := range classes {
		priors[label] = float64(len(byClass[label])) / float64(total)
	}

	if workers < 1 {
		workers = 1
	}

	// No model lock is held while counting; progress callbacks may read the model
	perClass := make([]map[int]float64, len(classes))
	var (
		g      errgroup.Group
		stepMu sync.Mutex
		done   int
	)
	g.SetLimit(workers)

	for idx, label := range classes {
		g.Go(func() error {
			perClass[idx] = classLikelihoods(byClass[label], len(vocab), alpha)

			stepMu.Lock()
			done++
			progress.Step("fit", done, len(classes))
			stepMu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	likelihoods := make(map[int]map[int]float64, len(classes))
	for idx, label := range classes {
		likelihoods[label] = perClass[idx]
	}

	nb.mu.Lock()
	nb.priors = priors
	nb.likelihoods = likelihoods
	nb.classes = classes
	nb.vocabulary = append(features.Vocabulary(nil), vocab...)
	nb.documents = total
	nb.lastTrained = time.Now()
	nb.mu.Unlock()

	logging.Debug().
		Int("documents", total).
		Int("classes", len(classes)).
		Int("vocabulary", len(vocab)).
		Msg("model fitted")

	return nil
}

// classLikelihoods computes smoothed presence probabilities for one class
// from exact integer counts.
func classLikelihoods(docs []features.Vector, numFeatures int, alpha float64) map[int]float64 {
	counts := make([]int, numFeatures)
	for _, doc := range docs {
		for i, v := range doc {
			if v == 1 {
				counts[i]++
			}
		}
	}

	denom := float64(len(docs)) + 2*alpha
	probs := make(map[int]float64, numFeatures)
	for i, k := range counts {
		probs[i] = (float64(k) + alpha) / denom
	}
	return probs
}

// Predict returns the most probable class for each vector, in input order.
// Equal scores resolve to the lowest class label, and when every class
// scores -Inf the lowest label is returned as well.
func (nb *NaiveBayes) Predict(X []features.Vector) ([]int, error) {
	predictions, progress, err := nb.predict(X)
	if err != nil {
		return nil, err
	}

	for n := predictBatch; n < len(X); n += predictBatch {
		progress.Step("predict", n, len(X))
	}
	if len(X) > 0 {
		progress.Step("predict", len(X), len(X))
	}
	return predictions, nil
}

func (nb *NaiveBayes) predict(X []features.Vector) ([]int, Progress, error) {
	nb.mu.RLock()
	defer nb.mu.RUnlock()

	if !nb.trained() {
		return nil, nil, ErrNotTrained
	}

	var diag scoreDiagnostics
	predictions := make([]int, len(X))
	for n, x := range X {
		predictions[n] = nb.argmax(nb.scores(x, &diag), &diag)
	}

	diag.report()
	return predictions, nb.progress, nil
}

// Scores returns the per-class log score of a single vector
func (nb *NaiveBayes) Scores(x features.Vector) (map[int]float64, error) {
	nb.mu.RLock()
	defer nb.mu.RUnlock()

	if !nb.trained() {
		return nil, ErrNotTrained
	}

	var diag scoreDiagnostics
	scores := nb.scores(x, &diag)
	diag.report()

	out := make(map[int]float64, len(scores))
	for i, label := range nb.classes {
		out[label] = scores[i]
	}
	return out, nil
}

// scoreDiagnostics collects anomalies seen while scoring so that each kind
// is reported once per call instead of once per feature.
type scoreDiagnostics struct {
	missingLikelihoods int
	outOfRange         int
	missingClasses     map[int]bool
	allNegInf          int
}

func (d *scoreDiagnostics) report() {
	if d.outOfRange > 0 {
		logging.Warn().Int("features", d.outOfRange).Msg("feature positions beyond vocabulary size skipped")
	}
	if d.missingLikelihoods > 0 {
		logging.Warn().Int("features", d.missingLikelihoods).Msg("likelihoods missing, neutral smoothed value used")
	}
	for label := range d.missingClasses {
		logging.Warn().Int("class", label).Msg("likelihoods missing for class, assigning -Inf score")
	}
	if d.allNegInf > 0 {
		logging.Warn().Int("documents", d.allNegInf).Msg("all class scores are -Inf, falling back to lowest class label")
	}
}

// scores must be called with at least a read lock held. The result is
// aligned with nb.classes.
func (nb *NaiveBayes) scores(x features.Vector, diag *scoreDiagnostics) []float64 {
	alpha := nb.config.Smoothing
	neutral := alpha / (2 * alpha)
	numFeatures := len(nb.vocabulary)

	scores := make([]float64, len(nb.classes))
	for ci, label := range nb.classes {
		score := safeLog(nb.priors[label])

		probs, ok := nb.likelihoods[label]
		if !ok {
			if diag.missingClasses == nil {
				diag.missingClasses = make(map[int]bool)
			}
			diag.missingClasses[label] = true
			scores[ci] = math.Inf(-1)
			continue
		}

		for i, v := range x {
			if i >= numFeatures {
				diag.outOfRange++
				continue
			}

			p, ok := probs[i]
			if !ok {
				diag.missingLikelihoods++
				p = neutral
			}

			if v == 1 {
				score += safeLog(p)
			} else {
				score += safeLog(1 - p)
			}
		}

		scores[ci] = score
	}

	return scores
}

// argmax picks the class with the highest score. nb.classes is ascending
// and the comparison is strict, so ties go to the lowest label.
func (nb *NaiveBayes) argmax(scores []float64, diag *scoreDiagnostics) int {
	best := -1
	for i, s := range scores {
		if math.IsInf(s, -1) || math.IsNaN(s) {
			continue
		}
		if best == -1 || s > scores[best] {
			best = i
		}
	}

	if best == -1 {
		diag.allNegInf++
		return nb.classes[0]
	}
	return nb.classes[best]
}

func safeLog(p float64) float64 {
	if p <= 0 {
		return math.Inf(-1)
	}
	return math.Log(p)
}

// trained must be called with at least a read lock held
func (nb *NaiveBayes) trained() bool {
	return len(nb.priors) > 0 && len(nb.likelihoods) > 0 && len(nb.vocabulary) > 0 && len(nb.classes) > 0
}

// IsTrained reports whether the model can be used for prediction
func (nb *NaiveBayes) IsTrained() bool {
	nb.mu.RLock()
	defer nb.mu.RUnlock()
	return nb.trained()
}

// Smoothing returns the Laplace constant α
func (nb *NaiveBayes) Smoothing() float64 {
	nb.mu.RLock()
	defer nb.mu.RUnlock()
	return nb.config.Smoothing
}

// Vocabulary returns a copy of the vocabulary the model was trained on
func (nb *NaiveBayes) Vocabulary() features.Vocabulary {
	nb.mu.RLock()
	defer nb.mu.RUnlock()
	return append(features.Vocabulary(nil), nb.vocabulary...)
}

// Classes returns the class labels in ascending order
func (nb *NaiveBayes) Classes() []int {
	nb.mu.RLock()
	defer nb.mu.RUnlock()
	return append([]int(nil), nb.classes...)
}

// Priors returns a copy of the class priors
func (nb *NaiveBayes) Priors() map[int]float64 {
	nb.mu.RLock()
	defer nb.mu.RUnlock()

	out := make(map[int]float64, len(nb.priors))
	for k, v := range nb.priors {
		out[k] = v
	}
	return out
}

// Likelihoods returns a deep copy of P(feature=1 | class)
func (nb *NaiveBayes) Likelihoods() map[int]map[int]float64 {
	nb.mu.RLock()
	defer nb.mu.RUnlock()
	return copyLikelihoods(nb.likelihoods)
}

func copyLikelihoods(src map[int]map[int]float64) map[int]map[int]float64 {
	out := make(map[int]map[int]float64, len(src))
	for label, probs := range src {
		inner := make(map[int]float64, len(probs))
		for i, p := range probs {
			inner[i] = p
		}
		out[label] = inner
	}
	return out
}

// Reset returns the model to the untrained state
func (nb *NaiveBayes) Reset() {
	nb.mu.Lock()
	defer nb.mu.Unlock()

	nb.priors = make(map[int]float64)
	nb.likelihoods = make(map[int]map[int]float64)
	nb.classes = nil
	nb.vocabulary = nil
	nb.documents = 0
	nb.lastTrained = time.Time{}
}
