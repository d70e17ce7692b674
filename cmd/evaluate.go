package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/postmood/postmood/pkg/corpus"
	"github.com/postmood/postmood/pkg/pipeline"
)

var (
	evaluateCorpus      string
	evaluateTrainCorpus string
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Measure model accuracy on a labeled corpus",
	Long:  `Classify every post of a labeled corpus and compare the predictions with the labels`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if evaluateCorpus == "" {
			return fmt.Errorf("--corpus is required")
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		rt, err := newRuntime(cfg)
		if err != nil {
			return err
		}
		defer rt.close()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		var src corpus.Source = corpus.SampleCorpus()
		if evaluateTrainCorpus != "" {
			src = corpus.NewFileSource(evaluateTrainCorpus)
		}

		model, _, err := rt.runner.LoadOrTrain(ctx, src)
		if err != nil {
			return fmt.Errorf("failed to prepare model: %w", err)
		}

		fmt.Printf("🎯 postmood Evaluation\n")
		fmt.Printf("📁 Corpus: %s\n", evaluateCorpus)
		fmt.Printf("\n")

		start := time.Now()
		eval, err := rt.runner.Evaluate(ctx, model, corpus.NewFileSource(evaluateCorpus))
		if err != nil {
			return fmt.Errorf("evaluation failed: %w", err)
		}

		displayEvaluation(eval, rt.labels, time.Since(start))
		return nil
	},
}

func displayEvaluation(eval *pipeline.Evaluation, labels corpus.Labels, duration time.Duration) {
	fmt.Printf("📊 Evaluation Results\n")
	fmt.Printf("═══════════════════════════════════════\n\n")

	fmt.Printf("🎯 Accuracy: %.2f%% (%d/%d)\n", eval.Accuracy*100, eval.Correct, eval.Total)
	fmt.Printf("⏱️  Time taken: %v\n", duration)
	fmt.Printf("\n")

	fmt.Printf("📈 Confusion Matrix (rows: actual, columns: predicted):\n")
	fmt.Printf("  %-12s", "")
	for _, p := range eval.Classes {
		fmt.Printf(" %10s", truncateName(labels.Name(p), 10))
	}
	fmt.Printf("\n")
	for _, a := range eval.Classes {
		fmt.Printf("  %-12s", truncateName(labels.Name(a), 12))
		for _, p := range eval.Classes {
			fmt.Printf(" %10d", eval.Confusion[a][p])
		}
		fmt.Printf("\n")
	}
	fmt.Printf("\n")

	fmt.Printf("🏆 Per-class Recall:\n")
	for _, a := range eval.Classes {
		total := 0
		for _, n := range eval.Confusion[a] {
			total += n
		}
		if total == 0 {
			continue
		}
		fmt.Printf("  %-12s %.2f%% (%d/%d)\n",
			labels.Name(a), float64(eval.Confusion[a][a])*100/float64(total), eval.Confusion[a][a], total)
	}
	fmt.Printf("\n")
}

func truncateName(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-1] + "…"
}

func init() {
	evaluateCmd.Flags().StringVar(&evaluateCorpus, "corpus", "", "Labeled corpus to evaluate on (.jsonl, .ndjson, .yaml)")
	evaluateCmd.Flags().StringVar(&evaluateTrainCorpus, "train-corpus", "", "Labeled corpus used if a model must be trained")
}
