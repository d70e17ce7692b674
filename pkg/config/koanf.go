package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of every environment variable postmood reads
const EnvPrefix = "POSTMOOD_"

// envMappings maps lower-cased variable names, without EnvPrefix, to
// koanf paths. Section and key names both contain underscores, so the
// mapping is explicit.
var envMappings = map[string]string{
	"model_smoothing": "model.smoothing",
	"model_workers":   "model.workers",

	"text_stop_words":       "text.stop_words",
	"text_extra_stop_words": "text.extra_stop_words",
	"text_stop_words_file":  "text.stop_words_file",

	"store_backend":            "store.backend",
	"store_file_path":          "store.file.path",
	"store_redis_url":          "store.redis.url",
	"store_redis_key_prefix":   "store.redis.key_prefix",
	"store_redis_database_num": "store.redis.database_num",
	"store_redis_timeout":      "store.redis.timeout",
	"store_badger_dir":         "store.badger.dir",
	"store_badger_in_memory":   "store.badger.in_memory",
	"store_badger_name":        "store.badger.name",

	"logging_level":  "logging.level",
	"logging_format": "logging.format",

	"metrics_textfile": "metrics.textfile",
}

// sliceConfigPaths are parsed as comma-separated lists when set from the environment
var sliceConfigPaths = []string{
	"text.extra_stop_words",
}

func loadLayered(configPath string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults
	if err := k.Load(structs.Provider(DefaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Layer 3: environment
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// envTransformFunc turns POSTMOOD_STORE_REDIS_URL into store.redis.url.
// Unknown variables map to "" and are ignored.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	return envMappings[key]
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}

		var parts []string
		for _, p := range strings.Split(strVal, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}
