package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/postmood/postmood/pkg/corpus"
	"github.com/postmood/postmood/pkg/features"
	"github.com/postmood/postmood/pkg/learning"
	"github.com/postmood/postmood/pkg/pipeline"
)

var (
	predictInput   string
	predictCorpus  string
	predictScores  bool
	predictSummary bool
	predictJSON    bool
)

// demoTexts are classified when no text is given
var demoTexts = []string{"I love coding", "I hate pizza", "I love driving"}

var predictCmd = &cobra.Command{
	Use:   "predict [text...]",
	Short: "Classify posts",
	Long: `Classify posts with the stored model.

Texts come from the arguments or from --input (one post per line, or a
.jsonl/.yaml corpus). When no model is stored one is trained first from
--corpus or the built-in sample corpus.`,
	RunE: func(cmd *cobra.Command, args []string) error {
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

		texts, err := predictTexts(ctx, args)
		if err != nil {
			return err
		}

		var src corpus.Source = corpus.SampleCorpus()
		if predictCorpus != "" {
			src = corpus.NewFileSource(predictCorpus)
		}

		model, fresh, err := rt.runner.LoadOrTrain(ctx, src)
		if err != nil {
			return fmt.Errorf("failed to prepare model: %w", err)
		}
		if fresh && !predictJSON {
			fmt.Printf("🧠 No usable stored model, trained a new one\n\n")
		}

		report, err := rt.runner.Analyze(ctx, model, texts)
		if err != nil {
			return fmt.Errorf("failed to classify posts: %w", err)
		}

		if predictJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		for _, res := range report.Results {
			fmt.Printf("'%s' --> %s (Class %d)\n", res.Text, res.Sentiment, res.Class)
			if predictScores {
				printScores(model, res.Text, rt.labels)
			}
		}

		if predictSummary {
			fmt.Printf("\n📊 Summary (%d posts):\n", len(report.Results))
			for _, c := range report.Summary {
				fmt.Printf("  %-12s %d\n", c.Sentiment+":", c.Count)
			}
		}

		return nil
	},
}

// predictTexts collects the posts to classify
func predictTexts(ctx context.Context, args []string) ([]string, error) {
	texts := append([]string(nil), args...)

	if predictInput != "" {
		posts, err := corpus.NewFileSource(predictInput).Posts(ctx)
		if err != nil {
			return nil, err
		}
		texts = append(texts, corpus.Texts(posts)...)
		if len(texts) == 0 {
			return nil, pipeline.ErrNoTexts
		}
	}

	if len(texts) == 0 {
		texts = demoTexts
	}
	return texts, nil
}

func printScores(model *learning.NaiveBayes, text string, labels corpus.Labels) {
	vocab := model.Vocabulary()
	scores, err := model.Scores(features.Vectorize([]string{text}, vocab)[0])
	if err != nil {
		fmt.Printf("    ⚠️  %v\n", err)
		return
	}

	classes := make([]int, 0, len(scores))
	for class := range scores {
		classes = append(classes, class)
	}
	sort.Ints(classes)

	for _, class := range classes {
		fmt.Printf("    %-12s log score %.4f\n", labels.Name(class), scores[class])
	}
}

func init() {
	predictCmd.Flags().StringVarP(&predictInput, "input", "i", "", "File with posts to classify")
	predictCmd.Flags().StringVar(&predictCorpus, "corpus", "", "Labeled corpus used if a model must be trained")
	predictCmd.Flags().BoolVar(&predictScores, "scores", false, "Show per-class log scores")
	predictCmd.Flags().BoolVar(&predictSummary, "summary", false, "Show per-class counts")
	predictCmd.Flags().BoolVar(&predictJSON, "json", false, "Print the report as JSON")
}
