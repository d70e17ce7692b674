package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/postmood/postmood/pkg/corpus"
)

var (
	generateCount  int
	generateOutput string
	generateRatio  float64
	generateSeed   int64
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a synthetic labeled corpus",
	Long: `Generate synthetic labeled posts for benchmarking and testing.

The output format follows the file extension: .jsonl/.ndjson, .yaml/.yml,
or plain text (one unlabeled post per line).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if generateCount <= 0 {
			return fmt.Errorf("count must be greater than 0")
		}
		if generateRatio < 0 || generateRatio > 1 {
			return fmt.Errorf("positive-ratio must be between 0 and 1")
		}

		seed := generateSeed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}

		positives := int(float64(generateCount) * generateRatio)

		fmt.Printf("🧪 Generating posts...\n")
		fmt.Printf("📝 Total posts: %d\n", generateCount)
		fmt.Printf("😊 Positive posts: %d (%.1f%%)\n", positives, generateRatio*100)
		fmt.Printf("😞 Negative posts: %d (%.1f%%)\n", generateCount-positives, (1-generateRatio)*100)
		fmt.Printf("🎲 Seed: %d\n", seed)
		fmt.Printf("📂 Output file: %s\n\n", generateOutput)

		start := time.Now()

		posts, err := corpus.NewGenerator(seed).Generate(generateCount, generateRatio)
		if err != nil {
			return err
		}
		if err := corpus.Write(generateOutput, posts); err != nil {
			return fmt.Errorf("failed to write corpus: %w", err)
		}

		duration := time.Since(start)

		fmt.Printf("✅ Generation complete!\n")
		fmt.Printf("⏱️ Time taken: %v\n", duration)
		fmt.Printf("📈 Rate: %.0f posts/second\n", float64(generateCount)/duration.Seconds())

		return nil
	},
}

func init() {
	generateCmd.Flags().IntVarP(&generateCount, "count", "n", 100, "Number of posts to generate")
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "corpus.jsonl", "Output corpus file")
	generateCmd.Flags().Float64VarP(&generateRatio, "positive-ratio", "r", 0.5, "Share of positive posts (0.0-1.0)")
	generateCmd.Flags().Int64Var(&generateSeed, "seed", 0, "Random seed (0 picks one from the clock)")
}
