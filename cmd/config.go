package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/postmood/postmood/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long:  `Generate and manage postmood configuration files`,
}

var configGenCmd = &cobra.Command{
	Use:   "generate [config-file]",
	Short: "Generate default configuration file",
	Long:  `Generate a configuration file holding every option at its default value`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := "postmood.yaml"
		if len(args) > 0 {
			configPath = args[0]
		}

		if _, err := os.Stat(configPath); err == nil {
			overwrite, _ := cmd.Flags().GetBool("force")
			if !overwrite {
				return fmt.Errorf("config file already exists: %s (use --force to overwrite)", configPath)
			}
		}

		if err := config.DefaultConfig().SaveConfig(configPath); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		fmt.Printf("✅ Configuration file generated: %s\n", configPath)
		fmt.Printf("📝 Edit the file to change smoothing, stop words, labels or the model store\n")
		fmt.Printf("🚀 Use 'postmood train --config %s' to use the configuration\n", configPath)

		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate [config-file]",
	Short: "Validate configuration file",
	Long:  `Validate a configuration file, with POSTMOOD_* environment overrides applied`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := args[0]

		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("❌ Configuration validation failed: %w", err)
		}

		warnings := validateConfigLogic(cfg)

		fmt.Printf("✅ Configuration is valid: %s\n", configPath)

		if len(warnings) > 0 {
			fmt.Printf("\n⚠️  Warnings:\n")
			for _, warning := range warnings {
				fmt.Printf("  - %s\n", warning)
			}
		}

		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show [config-file]",
	Short: "Show current configuration",
	Long:  `Display the effective configuration after defaults, file and environment are merged`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) > 0 {
			path = args[0]
		}

		cfg, err := config.LoadConfig(path)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if path != "" {
			fmt.Printf("Configuration: %s\n\n", path)
		} else {
			fmt.Printf("Default Configuration:\n\n")
		}

		fmt.Printf("🧠 Model:\n")
		fmt.Printf("  Smoothing: %.3f\n", cfg.Model.Smoothing)
		fmt.Printf("  Workers: %d\n", cfg.Model.Workers)

		fmt.Printf("\n📖 Text:\n")
		fmt.Printf("  Stop words: %s (+%d extra)\n", cfg.Text.StopWords, len(cfg.Text.ExtraStopWords))
		if cfg.Text.StopWordsFile != "" {
			fmt.Printf("  Stop words file: %s\n", cfg.Text.StopWordsFile)
		}

		fmt.Printf("\n🏷️  Labels:\n")
		names, _ := cfg.LabelNames()
		labels := make([]int, 0, len(names))
		for label := range names {
			labels = append(labels, label)
		}
		sort.Ints(labels)
		for _, label := range labels {
			fmt.Printf("  %d: %s\n", label, names[label])
		}

		fmt.Printf("\n💾 Store:\n")
		fmt.Printf("  Backend: %s\n", cfg.Store.Backend)
		switch cfg.Store.Backend {
		case config.BackendFile:
			fmt.Printf("  Path: %s\n", cfg.Store.File.Path)
		case config.BackendRedis:
			fmt.Printf("  URL: %s (db %d)\n", cfg.Store.Redis.URL, cfg.Store.Redis.DatabaseNum)
			fmt.Printf("  Key prefix: %s\n", cfg.Store.Redis.KeyPrefix)
		case config.BackendBadger:
			if cfg.Store.Badger.InMemory {
				fmt.Printf("  In memory\n")
			} else {
				fmt.Printf("  Dir: %s\n", cfg.Store.Badger.Dir)
			}
			fmt.Printf("  Name: %s\n", cfg.Store.Badger.Name)
		}

		fmt.Printf("\n📋 Logging:\n")
		fmt.Printf("  Level: %s\n", cfg.Logging.Level)
		fmt.Printf("  Format: %s\n", cfg.Logging.Format)

		if cfg.Metrics.Textfile != "" {
			fmt.Printf("\n📈 Metrics textfile: %s\n", cfg.Metrics.Textfile)
		}

		return nil
	},
}

// validateConfigLogic reports settings that are valid but likely unintended
func validateConfigLogic(cfg *config.Config) []string {
	var warnings []string

	if cfg.Model.Smoothing < 0.01 {
		warnings = append(warnings, "Very small smoothing makes unseen terms dominate scores")
	}
	if cfg.Model.Smoothing > 10 {
		warnings = append(warnings, "Large smoothing pushes every likelihood towards 0.5")
	}

	if cfg.Text.StopWords == config.StopWordsNone && len(cfg.Text.ExtraStopWords) == 0 && cfg.Text.StopWordsFile == "" {
		warnings = append(warnings, "No stop words configured, function words will enter the vocabulary")
	}

	if len(cfg.Labels) < 2 {
		warnings = append(warnings, "Fewer than two class labels have display names")
	}

	if cfg.Store.Backend == config.BackendBadger && cfg.Store.Badger.InMemory {
		warnings = append(warnings, "In-memory Badger store loses the model when the process exits")
	}

	return warnings
}

func init() {
	configCmd.AddCommand(configGenCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)

	configGenCmd.Flags().Bool("force", false, "Overwrite existing config file")
}
