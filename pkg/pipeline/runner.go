package pipeline

import (
	"context"
	"fmt"
	"sort"

	"github.com/postmood/postmood/pkg/corpus"
	"github.com/postmood/postmood/pkg/features"
	"github.com/postmood/postmood/pkg/learning"
	"github.com/postmood/postmood/pkg/logging"
	"github.com/postmood/postmood/pkg/metrics"
	"github.com/postmood/postmood/pkg/profiler"
	"github.com/postmood/postmood/pkg/store"
)

// Options configures a Runner. Store is required; the rest have defaults.
type Options struct {
	Store     store.ModelStore
	StopWords features.StopWords
	Learning  *learning.Config
	Labels    corpus.Labels
	Profiler  *profiler.Profiler
	Metrics   *metrics.Metrics
	Progress  learning.Progress
}

// Runner drives the load-or-train, analyse and evaluate flows
type Runner struct {
	store    store.ModelStore
	stop     features.StopWords
	learning learning.Config
	labels   corpus.Labels
	profiler *profiler.Profiler
	metrics  *metrics.Metrics
	progress learning.Progress
}

// NewRunner creates a runner
func NewRunner(opts Options) *Runner {
	r := &Runner{
		store:    opts.Store,
		stop:     opts.StopWords,
		labels:   opts.Labels,
		profiler: opts.Profiler,
		metrics:  opts.Metrics,
		progress: opts.Progress,
	}

	if opts.Learning != nil {
		r.learning = *opts.Learning
	} else {
		r.learning = *learning.DefaultConfig()
	}
	if r.stop == nil {
		r.stop = features.EnglishStopWords()
	}
	if r.labels == nil {
		r.labels = corpus.DefaultLabels()
	}
	if r.profiler != nil && r.metrics != nil {
		r.profiler.SetObserver(r.metrics.ObserveStage)
	}

	return r
}

// Labels returns the class display names
func (r *Runner) Labels() corpus.Labels {
	return r.labels
}

// LoadOrTrain returns the stored model, or trains and saves a new one from
// src when none is stored or the stored one is unusable. The bool reports
// whether the model was freshly trained.
func (r *Runner) LoadOrTrain(ctx context.Context, src corpus.Source) (*learning.NaiveBayes, bool, error) {
	timer := r.profiler.Start(profiler.StageLoad)
	model, err := r.store.Load(ctx)
	timer.Stop()

	switch {
	case err != nil:
		logging.Warn().Err(err).Msg("stored model is unusable, training a new one")
	case model != nil:
		logging.Info().
			Int("vocabulary", len(model.Vocabulary())).
			Int("classes", len(model.Classes())).
			Msg("model loaded")
		if r.metrics != nil {
			r.metrics.RecordTraining(model.GetModelInfo().Documents, len(model.Vocabulary()))
		}
		return model, false, nil
	default:
		logging.Info().Msg("no stored model found, training a new one")
	}

	model, err = r.Retrain(ctx, src)
	if err != nil {
		return nil, false, err
	}
	return model, true, nil
}

// Retrain trains a new model from the labeled posts of src and saves it
func (r *Runner) Retrain(ctx context.Context, src corpus.Source) (*learning.NaiveBayes, error) {
	posts, err := src.Posts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read training corpus: %w", err)
	}

	texts, labels, err := corpus.Split(posts)
	if err != nil {
		return nil, fmt.Errorf("training corpus must be labeled: %w", err)
	}

	cfg := r.learning
	model := learning.NewNaiveBayes(&cfg)
	if r.progress != nil {
		model.SetProgress(r.progress)
	}

	vocab, err := train(r.profiler, model, texts, labels, r.stop)
	if err != nil {
		return nil, err
	}
	if !model.IsTrained() {
		return nil, fmt.Errorf("training corpus produced no usable model: %w", learning.ErrNotTrained)
	}

	timer := r.profiler.Start(profiler.StageSave)
	err = r.store.Save(ctx, model)
	timer.Stop()
	if err != nil {
		return nil, fmt.Errorf("failed to save model: %w", err)
	}

	if r.metrics != nil {
		r.metrics.RecordTraining(len(texts), len(vocab))
	}

	logging.Info().
		Int("documents", len(texts)).
		Int("vocabulary", len(vocab)).
		Msg("model trained")

	return model, nil
}

// Result is the classification of one text
type Result struct {
	Text      string `json:"text"`
	Class     int    `json:"class"`
	Sentiment string `json:"sentiment"`
}

// ClassCount is the number of texts assigned to one class
type ClassCount struct {
	Class     int    `json:"class"`
	Sentiment string `json:"sentiment"`
	Count     int    `json:"count"`
}

// Report is the outcome of Analyze
type Report struct {
	Results []Result     `json:"results"`
	Summary []ClassCount `json:"summary"`
}

// Analyze classifies texts with model, using the model's own vocabulary
func (r *Runner) Analyze(ctx context.Context, model *learning.NaiveBayes, texts []string) (*Report, error) {
	if len(texts) == 0 {
		return nil, ErrNoTexts
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if r.progress != nil {
		model.SetProgress(r.progress)
	}

	labels, err := predict(r.profiler, model, texts, model.Vocabulary())
	if err != nil {
		return nil, err
	}
	if r.metrics != nil {
		r.metrics.RecordPredictions(labels)
	}

	report := &Report{Results: make([]Result, len(texts))}
	counts := make(map[int]int)
	for i, label := range labels {
		report.Results[i] = Result{
			Text:      texts[i],
			Class:     label,
			Sentiment: r.labels.Name(label),
		}
		counts[label]++
	}

	for _, class := range model.Classes() {
		report.Summary = append(report.Summary, ClassCount{
			Class:     class,
			Sentiment: r.labels.Name(class),
			Count:     counts[class],
		})
	}

	return report, nil
}

// Evaluation holds accuracy figures on a labeled set
type Evaluation struct {
	Total    int     `json:"total"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
	Classes  []int   `json:"classes"`

	// Confusion[actual][predicted] counts documents
	Confusion map[int]map[int]int `json:"confusion"`
}

// Evaluate predicts every labeled post of src and compares with its label
func (r *Runner) Evaluate(ctx context.Context, model *learning.NaiveBayes, src corpus.Source) (*Evaluation, error) {
	posts, err := src.Posts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read evaluation corpus: %w", err)
	}
	if len(posts) == 0 {
		return nil, ErrNoTexts
	}

	texts, actual, err := corpus.Split(posts)
	if err != nil {
		return nil, fmt.Errorf("evaluation corpus must be labeled: %w", err)
	}

	predicted, err := predict(r.profiler, model, texts, model.Vocabulary())
	if err != nil {
		return nil, err
	}
	if r.metrics != nil {
		r.metrics.RecordPredictions(predicted)
	}

	eval := &Evaluation{
		Total:     len(texts),
		Confusion: make(map[int]map[int]int),
	}
	seen := make(map[int]bool)
	for i := range texts {
		a, p := actual[i], predicted[i]
		if a == p {
			eval.Correct++
		}
		if eval.Confusion[a] == nil {
			eval.Confusion[a] = make(map[int]int)
		}
		eval.Confusion[a][p]++
		seen[a], seen[p] = true, true
	}
	eval.Accuracy = float64(eval.Correct) / float64(eval.Total)

	for class := range seen {
		eval.Classes = append(eval.Classes, class)
	}
	sort.Ints(eval.Classes)

	return eval, nil
}
