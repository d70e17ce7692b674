package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/postmood/postmood/pkg/config"
	"github.com/postmood/postmood/pkg/corpus"
	"github.com/postmood/postmood/pkg/logging"
	"github.com/postmood/postmood/pkg/metrics"
	"github.com/postmood/postmood/pkg/pipeline"
	"github.com/postmood/postmood/pkg/profiler"
	"github.com/postmood/postmood/pkg/store"
)

var (
	configPath  string
	logLevel    string
	profileRun  bool
	metricsFile string
)

var rootCmd = &cobra.Command{
	Use:   "postmood",
	Short: "postmood - Naive Bayes sentiment for short posts",
	Long: `postmood classifies short social-media posts into sentiment classes
with a Bernoulli Naive Bayes model.

Train a model from a labeled corpus, then classify new posts with it. The
trained model is stored as a JSON record in a file, Redis or Badger.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("postmood - Naive Bayes sentiment analysis")
		fmt.Println("Use 'postmood --help' for usage information")
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// runtime is the state shared by commands that touch a model
type runtime struct {
	cfg      *config.Config
	store    store.ModelStore
	runner   *pipeline.Runner
	profiler *profiler.Profiler
	metrics  *metrics.Metrics
	labels   corpus.Labels
}

// loadConfig reads configuration and applies the logging flags
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if logLevel != "" {
		if !logging.ValidLevel(logLevel) {
			return nil, fmt.Errorf("invalid log level: %s", logLevel)
		}
		cfg.Logging.Level = logLevel
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: os.Stderr,
	})

	return cfg, nil
}

// newRuntime opens the configured store and builds a runner around it
func newRuntime(cfg *config.Config) (*runtime, error) {
	stop, err := cfg.StopWords()
	if err != nil {
		return nil, err
	}

	names, err := cfg.LabelNames()
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to open model store: %w", err)
	}

	rt := &runtime{
		cfg:      cfg,
		store:    st,
		profiler: profiler.NewProfiler(),
		metrics:  metrics.New(),
		labels:   corpus.Labels(names),
	}
	rt.runner = pipeline.NewRunner(pipeline.Options{
		Store:     st,
		StopWords: stop,
		Learning:  cfg.LearningConfig(),
		Labels:    rt.labels,
		Profiler:  rt.profiler,
		Metrics:   rt.metrics,
	})

	return rt, nil
}

// close releases the store and emits the profile report and metrics file.
// Failures are logged.
func (rt *runtime) close() {
	if profileRun {
		fmt.Println()
		rt.profiler.PrintReport(os.Stdout)
	}

	path := metricsFile
	if path == "" {
		path = rt.cfg.Metrics.Textfile
	}
	if path != "" {
		if err := rt.metrics.WriteTextfile(path); err != nil {
			logging.Warn().Err(err).Str("path", path).Msg("metrics not written")
		} else {
			logging.Debug().Str("path", path).Msg("metrics written")
		}
	}

	if err := rt.store.Close(); err != nil {
		logging.Warn().Err(err).Str("backend", rt.cfg.Store.Backend).Msg("model store not closed cleanly")
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&profileRun, "profile", false, "Print a stage timing report")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile")

	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(benchmarkCmd)
	rootCmd.AddCommand(quickstartCmd)
}
