package learning

import (
	"fmt"
	"io"
	"math"
	"sort"
	"time"
)

// TermStats describes how strongly a vocabulary term indicates a class
type TermStats struct {
	Term       string  `json:"term"`
	Index      int     `json:"index"`
	Likelihood float64 `json:"likelihood"`
	// LogOdds is log P(term|class) minus the highest log P(term|other class)
	LogOdds float64 `json:"log_odds"`
}

// ClassInfo summarises one class
type ClassInfo struct {
	Label int     `json:"label"`
	Prior float64 `json:"prior"`
}

// ModelInfo contains model information
type ModelInfo struct {
	Trained        bool        `json:"trained"`
	Smoothing      float64     `json:"smoothing"`
	VocabularySize int         `json:"vocabulary_size"`
	Documents      int         `json:"documents"`
	Classes        []ClassInfo `json:"classes"`
	LastTrained    time.Time   `json:"last_trained"`
}

// GetModelInfo returns information about the model
func (nb *NaiveBayes) GetModelInfo() *ModelInfo {
	nb.mu.RLock()
	defer nb.mu.RUnlock()

	info := &ModelInfo{
		Trained:        nb.trained(),
		Smoothing:      nb.config.Smoothing,
		VocabularySize: len(nb.vocabulary),
		Documents:      nb.documents,
		LastTrained:    nb.lastTrained,
	}
	for _, label := range nb.classes {
		info.Classes = append(info.Classes, ClassInfo{Label: label, Prior: nb.priors[label]})
	}
	return info
}

// GetTopTerms returns the terms most indicative of class, strongest first
func (nb *NaiveBayes) GetTopTerms(class, limit int) []*TermStats {
	nb.mu.RLock()
	defer nb.mu.RUnlock()

	own, ok := nb.likelihoods[class]
	if !ok {
		return nil
	}

	var terms []*TermStats
	for i, term := range nb.vocabulary {
		p, ok := own[i]
		if !ok {
			continue
		}

		rival := math.Inf(-1)
		for _, other := range nb.classes {
			if other == class {
				continue
			}
			if q, ok := nb.likelihoods[other][i]; ok && math.Log(q) > rival {
				rival = math.Log(q)
			}
		}
		if math.IsInf(rival, -1) {
			rival = 0
		}

		terms = append(terms, &TermStats{
			Term:       term,
			Index:      i,
			Likelihood: p,
			LogOdds:    math.Log(p) - rival,
		})
	}

	sort.SliceStable(terms, func(i, j int) bool {
		return terms[i].LogOdds > terms[j].LogOdds
	})

	if limit > 0 && len(terms) > limit {
		terms = terms[:limit]
	}
	return terms
}

// PrintStats prints model statistics; names maps class labels to display names
func (nb *NaiveBayes) PrintStats(w io.Writer, names func(int) string) {
	info := nb.GetModelInfo()
	if names == nil {
		names = func(label int) string { return fmt.Sprintf("Class %d", label) }
	}

	fmt.Fprintf(w, "🧠 Naive Bayes Sentiment Model\n")
	fmt.Fprintf(w, "════════════════════════════════════════\n")
	if !info.Trained {
		fmt.Fprintf(w, "  Model is not trained\n\n")
		return
	}

	fmt.Fprintf(w, "Training Data:\n")
	if info.Documents > 0 {
		fmt.Fprintf(w, "  Documents: %d\n", info.Documents)
	}
	fmt.Fprintf(w, "  Vocabulary size: %d\n", info.VocabularySize)
	fmt.Fprintf(w, "  Smoothing: %.2f\n", info.Smoothing)
	if !info.LastTrained.IsZero() {
		fmt.Fprintf(w, "  Last trained: %s\n", info.LastTrained.Format("2006-01-02 15:04:05"))
	}

	fmt.Fprintf(w, "\nClasses:\n")
	for _, c := range info.Classes {
		fmt.Fprintf(w, "  %-12s (class %d) prior %.3f\n", names(c.Label), c.Label, c.Prior)
	}

	for _, c := range info.Classes {
		fmt.Fprintf(w, "\n📈 Top %s Terms:\n", names(c.Label))
		for i, term := range nb.GetTopTerms(c.Label, 10) {
			fmt.Fprintf(w, "  %2d. %-15s (%.3f likelihood, %+.3f log-odds)\n",
				i+1, term.Term, term.Likelihood, term.LogOdds)
		}
	}

	fmt.Fprintf(w, "\n")
}
