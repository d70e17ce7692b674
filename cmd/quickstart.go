package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/postmood/postmood/pkg/config"
	"github.com/postmood/postmood/pkg/corpus"
	"github.com/postmood/postmood/pkg/logging"
	"github.com/postmood/postmood/pkg/store"
)

var (
	quickstartSkipDemo bool
	quickstartForce    bool
	quickstartOutput   string
)

var quickstartCmd = &cobra.Command{
	Use:   "quickstart",
	Short: "Set up postmood and run a demo",
	Long: `Get postmood running in one step.

This command will:
1. Detect whether a local Redis is available for the model store
2. Generate a configuration file
3. Train a model on the built-in sample corpus
4. Classify a few demo posts`,
	RunE: runQuickstart,
}

func runQuickstart(cmd *cobra.Command, args []string) error {
	fmt.Printf("🚀 postmood Quickstart\n")
	fmt.Printf("════════════════════════════════════════════════\n\n")

	if _, err := os.Stat(quickstartOutput); err == nil && !quickstartForce {
		fmt.Printf("✅ Found existing configuration (%s)\n", quickstartOutput)
		fmt.Printf("💡 Use --force to reconfigure\n")
		return nil
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	fmt.Printf("🔍 Step 1: Detecting model store...\n")
	cfg := config.DefaultConfig()
	fmt.Printf("  🔍 Checking Redis at %s...", cfg.Store.Redis.URL)
	if redisReachable(cfg.Store.Redis) {
		cfg.Store.Backend = config.BackendRedis
		cfg.Store.Redis.KeyPrefix = "postmood:quickstart"
		fmt.Printf(" ✅ Found\n")
	} else {
		cfg.Store.File.Path = "postmood-quickstart-model.json"
		fmt.Printf(" ❌ Not available, using %s\n", cfg.Store.File.Path)
	}

	fmt.Printf("\n⚙️ Step 2: Generating configuration...\n")
	if err := cfg.SaveConfig(quickstartOutput); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	fmt.Printf("✅ Configuration saved: %s\n", quickstartOutput)

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: os.Stderr,
	})

	rt, err := newRuntime(cfg)
	if err != nil {
		return err
	}
	defer rt.close()

	fmt.Printf("\n🧠 Step 3: Training on the sample corpus...\n")
	start := time.Now()
	model, err := rt.runner.Retrain(ctx, corpus.SampleCorpus())
	if err != nil {
		return fmt.Errorf("training failed: %w", err)
	}
	info := model.GetModelInfo()
	fmt.Printf("  ✅ %d documents, %d terms in %v\n", info.Documents, info.VocabularySize, time.Since(start))

	if !quickstartSkipDemo {
		fmt.Printf("\n🧪 Step 4: Classifying demo posts...\n")
		report, err := rt.runner.Analyze(ctx, model, demoTexts)
		if err != nil {
			fmt.Printf("⚠️  Demo failed: %v\n", err)
		} else {
			for _, res := range report.Results {
				fmt.Printf("  '%s' --> %s (Class %d)\n", res.Text, res.Sentiment, res.Class)
			}
		}
	}

	fmt.Printf("\n════════════════════════════════════════════════\n")
	fmt.Printf("🎉 postmood is configured and ready!\n\n")
	fmt.Printf("📝 Commands to try:\n")
	fmt.Printf("  postmood predict \"I love rainy days\" --config %s\n", quickstartOutput)
	fmt.Printf("  postmood generate -n 500 -o corpus.jsonl\n")
	fmt.Printf("  postmood train --corpus corpus.jsonl --reset --config %s\n", quickstartOutput)
	fmt.Printf("  postmood info --config %s\n", quickstartOutput)

	return nil
}

// redisReachable reports whether a Redis server answers at the configured URL
func redisReachable(cfg config.RedisStoreConfig) bool {
	cfg.Timeout = time.Second
	rs, err := store.NewRedisStore(&cfg)
	if err != nil {
		return false
	}
	rs.Close()
	return true
}

func init() {
	quickstartCmd.Flags().BoolVar(&quickstartSkipDemo, "skip-demo", false, "Skip the demo predictions")
	quickstartCmd.Flags().BoolVar(&quickstartForce, "force", false, "Overwrite existing configuration")
	quickstartCmd.Flags().StringVarP(&quickstartOutput, "output", "o", "postmood-quickstart.yaml", "Configuration file to write")
}
