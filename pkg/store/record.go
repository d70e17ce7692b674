// Package store persists trained models. Every backend stores the same
// self-describing JSON record and honours one load contract: an absent
// model is (nil, nil), an unusable one is (nil, error wrapping
// ErrInvalidRecord), and a partially restored model is never returned.
package store

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/postmood/postmood/pkg/features"
	"github.com/postmood/postmood/pkg/learning"
)

// ModelType is the format tag written into every record
const ModelType = "NaiveBayes"

// ErrInvalidRecord is wrapped by every error caused by unusable stored data
var ErrInvalidRecord = errors.New("invalid model record")

// MissingFieldError reports a required record field that is absent
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("model record is missing required field %q", e.Field)
}

// Unwrap makes errors.Is(err, ErrInvalidRecord) hold
func (e *MissingFieldError) Unwrap() error { return ErrInvalidRecord }

// KeyError reports a map key that is not a decimal integer
type KeyError struct {
	Field string
	Key   string
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("model record field %q has non-integer key %q", e.Field, e.Key)
}

// Unwrap makes errors.Is(err, ErrInvalidRecord) hold
func (e *KeyError) Unwrap() error { return ErrInvalidRecord }

// Record is the on-disk form of a trained model. Map keys are strings
// because JSON objects cannot have integer keys. Pointer and map fields
// stay nil when absent from the input so missing fields can be detected.
type Record struct {
	ModelType   string                        `json:"model_type"`
	Smoothing   *float64                      `json:"smoothing"`
	Vocabulary  *[]string                     `json:"vocabulary"`
	Classes     *[]int                        `json:"classes"`
	Priors      map[string]float64            `json:"priors"`
	Likelihoods map[string]map[string]float64 `json:"likelihoods"`

	// Training metadata, optional
	Documents int        `json:"documents,omitempty"`
	TrainedAt *time.Time `json:"trained_at,omitempty"`
}

// RecordFromParams converts model parameters to their stored form
func RecordFromParams(p learning.Params) Record {
	smoothing := p.Smoothing
	vocab := []string(append(features.Vocabulary(nil), p.Vocabulary...))
	classes := append([]int(nil), p.Classes...)
	sort.Ints(classes)

	priors := make(map[string]float64, len(p.Priors))
	for label, prior := range p.Priors {
		priors[strconv.Itoa(label)] = prior
	}

	likelihoods := make(map[string]map[string]float64, len(p.Likelihoods))
	for label, probs := range p.Likelihoods {
		inner := make(map[string]float64, len(probs))
		for i, prob := range probs {
			inner[strconv.Itoa(i)] = prob
		}
		likelihoods[strconv.Itoa(label)] = inner
	}

	rec := Record{
		ModelType:   ModelType,
		Smoothing:   &smoothing,
		Vocabulary:  &vocab,
		Classes:     &classes,
		Priors:      priors,
		Likelihoods: likelihoods,
		Documents:   p.Documents,
	}
	if !p.TrainedAt.IsZero() {
		trainedAt := p.TrainedAt.UTC()
		rec.TrainedAt = &trainedAt
	}
	return rec
}

// Params restores model parameters, converting string keys back to integers
func (r Record) Params() (learning.Params, error) {
	if err := r.checkRequired(); err != nil {
		return learning.Params{}, err
	}

	priors := make(map[int]float64, len(r.Priors))
	for key, prior := range r.Priors {
		label, err := strconv.Atoi(key)
		if err != nil {
			return learning.Params{}, &KeyError{Field: "priors", Key: key}
		}
		priors[label] = prior
	}

	likelihoods := make(map[int]map[int]float64, len(r.Likelihoods))
	for key, probs := range r.Likelihoods {
		label, err := strconv.Atoi(key)
		if err != nil {
			return learning.Params{}, &KeyError{Field: "likelihoods", Key: key}
		}

		inner := make(map[int]float64, len(probs))
		for fkey, prob := range probs {
			i, err := strconv.Atoi(fkey)
			if err != nil {
				return learning.Params{}, &KeyError{Field: "likelihoods." + key, Key: fkey}
			}
			inner[i] = prob
		}
		likelihoods[label] = inner
	}

	p := learning.Params{
		Smoothing:   *r.Smoothing,
		Vocabulary:  features.Vocabulary(append([]string(nil), (*r.Vocabulary)...)),
		Classes:     append([]int(nil), (*r.Classes)...),
		Priors:      priors,
		Likelihoods: likelihoods,
		Documents:   r.Documents,
	}
	if r.TrainedAt != nil {
		p.TrainedAt = *r.TrainedAt
	}
	return p, nil
}

func (r Record) checkRequired() error {
	switch {
	case r.Smoothing == nil:
		return &MissingFieldError{Field: "smoothing"}
	case r.Vocabulary == nil:
		return &MissingFieldError{Field: "vocabulary"}
	case r.Classes == nil:
		return &MissingFieldError{Field: "classes"}
	case r.Priors == nil:
		return &MissingFieldError{Field: "priors"}
	case r.Likelihoods == nil:
		return &MissingFieldError{Field: "likelihoods"}
	}
	return nil
}
