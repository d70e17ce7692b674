package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/postmood/postmood/pkg/config"
	"github.com/postmood/postmood/pkg/corpus"
	"github.com/postmood/postmood/pkg/learning"
	"github.com/postmood/postmood/pkg/store"
)

var (
	trainCorpus    string
	trainSample    bool
	trainModelPath string
	trainReset     bool
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the sentiment model",
	Long: `Train the Naive Bayes sentiment model from a labeled corpus and save it.

The corpus is a .jsonl/.ndjson file with {"text": ..., "label": ...} lines or
a .yaml list of posts. Without --corpus the built-in sample corpus is used.
An existing stored model is kept unless --reset is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		// Override model path if specified
		if trainModelPath != "" {
			cfg.Store.Backend = config.BackendFile
			cfg.Store.File.Path = trainModelPath
		}

		rt, err := newRuntime(cfg)
		if err != nil {
			return err
		}
		defer rt.close()

		src, name := trainingSource()

		fmt.Printf("🧠 postmood Training\n")
		fmt.Printf("═══════════════════════════════════════\n")
		fmt.Printf("📁 Corpus: %s\n", name)
		fmt.Printf("💾 Store: %s\n", describeStore(cfg.Store.Backend, rt.store))
		if trainReset {
			fmt.Printf("🔄 Reset mode: Starting fresh\n")
		}
		fmt.Printf("\n")

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		start := time.Now()
		var (
			model *learning.NaiveBayes
			fresh = true
		)
		if trainReset {
			if d, ok := rt.store.(store.Deleter); ok {
				if err := d.Delete(ctx); err != nil {
					return fmt.Errorf("failed to reset stored model: %w", err)
				}
			}
			model, err = rt.runner.Retrain(ctx, src)
		} else {
			model, fresh, err = rt.runner.LoadOrTrain(ctx, src)
		}
		if err != nil {
			return err
		}
		duration := time.Since(start)

		if fresh {
			info := model.GetModelInfo()
			fmt.Printf("🎉 Training Complete!\n")
			fmt.Printf("📊 Documents: %d\n", info.Documents)
			fmt.Printf("📖 Vocabulary: %d terms\n", info.VocabularySize)
			fmt.Printf("⏱️  Time taken: %v\n", duration)
		} else {
			fmt.Printf("📚 Existing model loaded, use --reset to retrain\n")
		}

		fmt.Printf("\n")
		model.PrintStats(os.Stdout, rt.labels.Name)

		return nil
	},
}

// trainingSource picks the corpus named by the train flags
func trainingSource() (corpus.Source, string) {
	if trainCorpus != "" && !trainSample {
		return corpus.NewFileSource(trainCorpus), trainCorpus
	}
	return corpus.SampleCorpus(), "built-in sample (7 posts)"
}

func describeStore(backend string, st store.ModelStore) string {
	if fs, ok := st.(*store.FileStore); ok {
		return fmt.Sprintf("file %s", fs.Path())
	}
	return backend
}

func init() {
	trainCmd.Flags().StringVar(&trainCorpus, "corpus", "", "Labeled corpus file (.jsonl, .ndjson, .yaml)")
	trainCmd.Flags().BoolVar(&trainSample, "sample", false, "Train on the built-in sample corpus")
	trainCmd.Flags().StringVarP(&trainModelPath, "model", "m", "", "Model file path (overrides store config)")
	trainCmd.Flags().BoolVarP(&trainReset, "reset", "r", false, "Discard the stored model and retrain")
}
