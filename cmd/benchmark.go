package cmd

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/postmood/postmood/pkg/corpus"
	"github.com/postmood/postmood/pkg/features"
	"github.com/postmood/postmood/pkg/learning"
)

var (
	benchmarkInput      string
	benchmarkRuns       int
	benchmarkConcurrent int
)

var benchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Measure classification throughput",
	Long: `Classify every post of a corpus repeatedly with the stored model and
report per-post latency and throughput. Labeled posts also yield accuracy.`,
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

		posts, err := corpus.NewFileSource(benchmarkInput).Posts(ctx)
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		if len(posts) == 0 {
			return fmt.Errorf("no posts found in %s", benchmarkInput)
		}

		model, _, err := rt.runner.LoadOrTrain(ctx, corpus.SampleCorpus())
		if err != nil {
			return fmt.Errorf("failed to prepare model: %w", err)
		}

		fmt.Printf("🚀 postmood Classification Benchmark\n")
		fmt.Printf("📁 Input: %s\n", benchmarkInput)
		fmt.Printf("📝 Posts: %d\n", len(posts))
		fmt.Printf("🔄 Runs: %d\n", benchmarkRuns)
		fmt.Printf("⚡ Concurrent workers: %d\n\n", benchmarkConcurrent)

		result, err := runBenchmark(ctx, model, posts, benchmarkRuns, benchmarkConcurrent)
		if err != nil {
			return err
		}
		displayBenchmarkResults(result)
		return nil
	},
}

// BenchmarkResult holds latency and accuracy figures for a benchmark run
type BenchmarkResult struct {
	TotalPosts     int
	TotalTime      time.Duration
	AvgTimePerPost float64
	MinTime        time.Duration
	MaxTime        time.Duration
	MedianTime     time.Duration
	P95Time        time.Duration
	P99Time        time.Duration
	PostsPerSecond float64

	Labeled int
	Correct int

	PostTimes []time.Duration
}

// runBenchmark classifies each post once per run, one post per call
func runBenchmark(ctx context.Context, model *learning.NaiveBayes, posts []corpus.Post, runs, concurrent int) (*BenchmarkResult, error) {
	if runs < 1 {
		runs = 1
	}
	if concurrent < 1 {
		concurrent = 1
	}

	vocab := model.Vocabulary()
	vectors := features.Vectorize(corpus.Texts(posts), vocab)

	result := &BenchmarkResult{
		TotalPosts: len(posts) * runs,
		PostTimes:  make([]time.Duration, 0, len(posts)*runs),
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrent)

	start := time.Now()
	for run := 0; run < runs; run++ {
		for i := range posts {
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}

				postStart := time.Now()
				pred, err := model.Predict([]features.Vector{vectors[i]})
				elapsed := time.Since(postStart)
				if err != nil {
					return fmt.Errorf("post %d: %w", i, err)
				}

				mu.Lock()
				defer mu.Unlock()
				result.PostTimes = append(result.PostTimes, elapsed)
				if posts[i].Label != nil {
					result.Labeled++
					if pred[0] == *posts[i].Label {
						result.Correct++
					}
				}
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	result.TotalTime = time.Since(start)

	calculateStatistics(result)
	return result, nil
}

// calculateStatistics fills the latency percentiles and throughput
func calculateStatistics(result *BenchmarkResult) {
	if len(result.PostTimes) == 0 {
		return
	}

	times := make([]time.Duration, len(result.PostTimes))
	copy(times, result.PostTimes)
	sort.Slice(times, func(i, j int) bool {
		return times[i] < times[j]
	})

	var totalNanos int64
	for _, t := range times {
		totalNanos += t.Nanoseconds()
	}

	result.AvgTimePerPost = float64(totalNanos) / float64(len(times)) / 1e6
	result.MinTime = times[0]
	result.MaxTime = times[len(times)-1]
	result.MedianTime = times[len(times)/2]
	result.P95Time = times[int(float64(len(times)-1)*0.95)]
	result.P99Time = times[int(float64(len(times)-1)*0.99)]

	if secs := result.TotalTime.Seconds(); secs > 0 {
		result.PostsPerSecond = float64(len(times)) / secs
	}
}

func displayBenchmarkResults(result *BenchmarkResult) {
	ms := func(d time.Duration) float64 { return float64(d.Nanoseconds()) / 1e6 }

	fmt.Printf("📊 Benchmark Results\n")
	fmt.Printf("═══════════════════════════════════════\n\n")

	fmt.Printf("⚡ Performance Metrics:\n")
	fmt.Printf("  Total posts classified: %d\n", result.TotalPosts)
	fmt.Printf("  Total time: %v\n", result.TotalTime)
	fmt.Printf("  Average time per post: %.3f ms\n", result.AvgTimePerPost)
	fmt.Printf("  Posts per second: %.0f\n\n", result.PostsPerSecond)

	fmt.Printf("📈 Time Distribution:\n")
	fmt.Printf("  Min time: %.3f ms\n", ms(result.MinTime))
	fmt.Printf("  Max time: %.3f ms\n", ms(result.MaxTime))
	fmt.Printf("  Median time: %.3f ms\n", ms(result.MedianTime))
	fmt.Printf("  95th percentile: %.3f ms\n", ms(result.P95Time))
	fmt.Printf("  99th percentile: %.3f ms\n\n", ms(result.P99Time))

	if result.Labeled > 0 {
		fmt.Printf("🎯 Accuracy on labeled posts: %.1f%% (%d/%d)\n\n",
			float64(result.Correct)/float64(result.Labeled)*100, result.Correct, result.Labeled)
	}
}

func init() {
	benchmarkCmd.Flags().StringVarP(&benchmarkInput, "input", "i", "", "Corpus file with posts to classify")
	benchmarkCmd.Flags().IntVarP(&benchmarkRuns, "runs", "r", 3, "Number of passes over the corpus")
	benchmarkCmd.Flags().IntVarP(&benchmarkConcurrent, "concurrent", "j", 1, "Number of concurrent workers")

	benchmarkCmd.MarkFlagRequired("input")
}
