package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Model.Smoothing != 1.0 {
		t.Errorf("Model.Smoothing = %v, want 1.0", cfg.Model.Smoothing)
	}
	if cfg.Model.Workers != 1 {
		t.Errorf("Model.Workers = %d, want 1", cfg.Model.Workers)
	}
	if cfg.Text.StopWords != StopWordsEnglish {
		t.Errorf("Text.StopWords = %q, want english", cfg.Text.StopWords)
	}
	if cfg.Store.Backend != BackendFile {
		t.Errorf("Store.Backend = %q, want file", cfg.Store.Backend)
	}
	if cfg.Store.File.Path != "sentiment_analyser_model.json" {
		t.Errorf("Store.File.Path = %q", cfg.Store.File.Path)
	}
	if cfg.Store.Redis.Timeout != 5*time.Second {
		t.Errorf("Store.Redis.Timeout = %v, want 5s", cfg.Store.Redis.Timeout)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	names, err := cfg.LabelNames()
	if err != nil {
		t.Fatal(err)
	}
	if names[0] != "Negative" || names[1] != "Positive" {
		t.Errorf("LabelNames() = %v", names)
	}
	if cfg.Store.Redis.KeyPrefix != "postmood" {
		t.Errorf("Store.Redis.KeyPrefix = %q", cfg.Store.Redis.KeyPrefix)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "postmood.yaml")
	content := `
model:
  smoothing: 0.5
  workers: 4
store:
  backend: badger
  badger:
    in_memory: true
    dir: ""
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Model.Smoothing != 0.5 || cfg.Model.Workers != 4 {
		t.Errorf("model section = %+v", cfg.Model)
	}
	if cfg.Store.Backend != BackendBadger || !cfg.Store.Badger.InMemory {
		t.Errorf("store section = %+v", cfg.Store)
	}
	if cfg.Store.Badger.Name != "default" {
		t.Errorf("unset keys should keep defaults, Badger.Name = %q", cfg.Store.Badger.Name)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
	// untouched section keeps defaults
	if cfg.Text.StopWords != StopWordsEnglish {
		t.Errorf("Text.StopWords = %q", cfg.Text.StopWords)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil || !strings.Contains(err.Error(), "config file not found") {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "postmood.yaml")
	if err := os.WriteFile(path, []byte("model:\n  smoothing: 0.5\n"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("POSTMOOD_MODEL_SMOOTHING", "2.5")
	t.Setenv("POSTMOOD_STORE_REDIS_TIMEOUT", "10s")
	t.Setenv("POSTMOOD_TEXT_EXTRA_STOP_WORDS", "rt, via ,")
	t.Setenv("POSTMOOD_UNKNOWN_SETTING", "ignored")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Model.Smoothing != 2.5 {
		t.Errorf("env should override file, Smoothing = %v", cfg.Model.Smoothing)
	}
	if cfg.Store.Redis.Timeout != 10*time.Second {
		t.Errorf("Store.Redis.Timeout = %v", cfg.Store.Redis.Timeout)
	}
	if got := cfg.Text.ExtraStopWords; len(got) != 2 || got[0] != "rt" || got[1] != "via" {
		t.Errorf("ExtraStopWords = %v", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero smoothing", func(c *Config) { c.Model.Smoothing = 0 }, "Smoothing"},
		{"zero workers", func(c *Config) { c.Model.Workers = 0 }, "Workers"},
		{"stop word mode", func(c *Config) { c.Text.StopWords = "french" }, "StopWords"},
		{"unknown backend", func(c *Config) { c.Store.Backend = "s3" }, "Backend"},
		{"empty file path", func(c *Config) { c.Store.File.Path = "" }, "store.file.path"},
		{"empty redis url", func(c *Config) {
			c.Store.Backend = BackendRedis
			c.Store.Redis.URL = ""
		}, "store.redis.url"},
		{"badger without dir", func(c *Config) {
			c.Store.Backend = BackendBadger
			c.Store.Badger.Dir = ""
		}, "store.badger.dir"},
		{"log level", func(c *Config) { c.Logging.Level = "loud" }, "logging level"},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, "Format"},
		{"label key", func(c *Config) { c.Labels["pos"] = "Positive" }, "labels"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "postmood.yaml")

	cfg := DefaultConfig()
	cfg.Model.Smoothing = 0.25
	cfg.Labels["2"] = "Neutral"
	if err := cfg.SaveConfig(path); err != nil {
		t.Fatalf("SaveConfig() error = %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if loaded.Model.Smoothing != 0.25 {
		t.Errorf("Smoothing = %v, want 0.25", loaded.Model.Smoothing)
	}
	names, _ := loaded.LabelNames()
	if names[2] != "Neutral" {
		t.Errorf("LabelNames() = %v", names)
	}
}

func TestStopWords(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stop.txt")
	if err := os.WriteFile(path, []byte("# custom\nPizza\n\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	cfg.Text.ExtraStopWords = []string{"coding"}
	cfg.Text.StopWordsFile = path

	stop, err := cfg.StopWords()
	if err != nil {
		t.Fatalf("StopWords() error = %v", err)
	}
	for _, word := range []string{"i", "the", "coding", "pizza"} {
		if !stop.Contains(word) {
			t.Errorf("expected %q to be a stop word", word)
		}
	}

	cfg = DefaultConfig()
	cfg.Text.StopWords = StopWordsNone
	stop, err = cfg.StopWords()
	if err != nil {
		t.Fatal(err)
	}
	if stop.Contains("i") {
		t.Error("stop_words=none should not include the English list")
	}

	cfg.Text.StopWordsFile = filepath.Join(dir, "missing.txt")
	if _, err := cfg.StopWords(); err == nil {
		t.Error("expected error for missing stop words file")
	}
}

func TestLearningConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Model.Smoothing = 0.1
	cfg.Model.Workers = 3

	lc := cfg.LearningConfig()
	if lc.Smoothing != 0.1 || lc.Workers != 3 {
		t.Errorf("LearningConfig() = %+v", lc)
	}
}
