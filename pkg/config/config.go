package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/postmood/postmood/pkg/features"
	"github.com/postmood/postmood/pkg/learning"
	"github.com/postmood/postmood/pkg/logging"
)

// Store backends
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendBadger = "badger"
)

// Stop word modes
const (
	StopWordsEnglish = "english"
	StopWordsNone    = "none"
)

var validate = validator.New()

// Config represents postmood configuration
type Config struct {
	// Model hyperparameters
	Model ModelConfig `yaml:"model" koanf:"model"`

	// Text preprocessing
	Text TextConfig `yaml:"text" koanf:"text"`

	// Display names per class label
	Labels map[string]string `yaml:"labels" koanf:"labels"`

	// Model persistence
	Store StoreConfig `yaml:"store" koanf:"store"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging" koanf:"logging"`

	// Metrics export
	Metrics MetricsConfig `yaml:"metrics" koanf:"metrics"`
}

// ModelConfig contains classifier hyperparameters
type ModelConfig struct {
	Smoothing float64 `yaml:"smoothing" koanf:"smoothing" validate:"gt=0"`
	Workers   int     `yaml:"workers" koanf:"workers" validate:"gte=1,lte=64"`
}

// TextConfig controls vocabulary construction
type TextConfig struct {
	StopWords      string   `yaml:"stop_words" koanf:"stop_words" validate:"oneof=english none"`
	ExtraStopWords []string `yaml:"extra_stop_words" koanf:"extra_stop_words"`
	StopWordsFile  string   `yaml:"stop_words_file" koanf:"stop_words_file"`
}

// StoreConfig selects and configures the model store backend
type StoreConfig struct {
	Backend string            `yaml:"backend" koanf:"backend" validate:"oneof=file redis badger"`
	File    FileStoreConfig   `yaml:"file" koanf:"file"`
	Redis   RedisStoreConfig  `yaml:"redis" koanf:"redis"`
	Badger  BadgerStoreConfig `yaml:"badger" koanf:"badger"`
}

// FileStoreConfig contains JSON file store settings
type FileStoreConfig struct {
	Path string `yaml:"path" koanf:"path"`
}

// RedisStoreConfig contains Redis store settings
type RedisStoreConfig struct {
	URL         string        `yaml:"url" koanf:"url"`
	KeyPrefix   string        `yaml:"key_prefix" koanf:"key_prefix"`
	DatabaseNum int           `yaml:"database_num" koanf:"database_num" validate:"gte=0,lte=15"`
	Timeout     time.Duration `yaml:"timeout" koanf:"timeout" validate:"gte=0"`
}

// BadgerStoreConfig contains embedded Badger store settings
type BadgerStoreConfig struct {
	Dir      string `yaml:"dir" koanf:"dir"`
	InMemory bool   `yaml:"in_memory" koanf:"in_memory"`
	Name     string `yaml:"name" koanf:"name" validate:"required"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `yaml:"level" koanf:"level"`
	Format string `yaml:"format" koanf:"format" validate:"oneof=console json"`
}

// MetricsConfig contains metrics export settings
type MetricsConfig struct {
	// Textfile is a node_exporter textfile path written after each command
	Textfile string `yaml:"textfile" koanf:"textfile"`
}

// DefaultConfig returns postmood default configuration
func DefaultConfig() *Config {
	return &Config{
		Model: ModelConfig{
			Smoothing: 1.0,
			Workers:   1,
		},
		Text: TextConfig{
			StopWords: StopWordsEnglish,
		},
		Labels: map[string]string{
			"0": "Negative",
			"1": "Positive",
		},
		Store: StoreConfig{
			Backend: BackendFile,
			File: FileStoreConfig{
				Path: "sentiment_analyser_model.json",
			},
			Redis: RedisStoreConfig{
				URL:         "redis://localhost:6379",
				KeyPrefix:   "postmood",
				DatabaseNum: 0,
				Timeout:     5 * time.Second,
			},
			Badger: BadgerStoreConfig{
				Dir:  "postmood.db",
				Name: "default",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from defaults, the optional file at
// configPath and POSTMOOD_* environment variables, in that order
func LoadConfig(configPath string) (*Config, error) {
	if configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}
	}

	config, err := loadLayered(configPath)
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

// SaveConfig saves configuration to file
func (c *Config) SaveConfig(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s: failed %q check (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return err
	}

	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("invalid logging level: %s", c.Logging.Level)
	}

	switch c.Store.Backend {
	case BackendFile:
		if c.Store.File.Path == "" {
			return fmt.Errorf("store.file.path cannot be empty for the file backend")
		}
	case BackendRedis:
		if c.Store.Redis.URL == "" {
			return fmt.Errorf("store.redis.url cannot be empty for the redis backend")
		}
		if c.Store.Redis.KeyPrefix == "" {
			return fmt.Errorf("store.redis.key_prefix cannot be empty for the redis backend")
		}
	case BackendBadger:
		if c.Store.Badger.Dir == "" && !c.Store.Badger.InMemory {
			return fmt.Errorf("store.badger.dir cannot be empty unless in_memory is set")
		}
	}

	if _, err := c.LabelNames(); err != nil {
		return err
	}

	return nil
}

// LearningConfig returns the classifier configuration
func (c *Config) LearningConfig() *learning.Config {
	return &learning.Config{
		Smoothing: c.Model.Smoothing,
		Workers:   c.Model.Workers,
	}
}

// StopWords builds the stop word set for vocabulary construction
func (c *Config) StopWords() (features.StopWords, error) {
	var stop features.StopWords
	if c.Text.StopWords == StopWordsEnglish {
		stop = features.EnglishStopWords()
	} else {
		stop = features.NewStopWords()
	}

	if len(c.Text.ExtraStopWords) > 0 {
		stop = stop.With(c.Text.ExtraStopWords...)
	}

	if c.Text.StopWordsFile != "" {
		f, err := os.Open(c.Text.StopWordsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open stop words file: %w", err)
		}
		defer f.Close()

		extra, err := features.LoadStopWords(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read stop words file: %w", err)
		}
		for word := range extra {
			stop[word] = struct{}{}
		}
	}

	return stop, nil
}

// LabelNames returns the class display names keyed by label
func (c *Config) LabelNames() (map[int]string, error) {
	names := make(map[int]string, len(c.Labels))
	for key, name := range c.Labels {
		label, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil {
			return nil, fmt.Errorf("labels: key %q is not an integer class label", key)
		}
		names[label] = name
	}
	return names, nil
}
