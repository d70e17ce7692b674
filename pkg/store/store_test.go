package store

import (
	"bytes"
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/postmood/postmood/pkg/config"
	"github.com/postmood/postmood/pkg/features"
	"github.com/postmood/postmood/pkg/learning"
	"github.com/postmood/postmood/pkg/logging"
)

var (
	sampleTexts = []string{
		"I love pizza",
		"I enjoy coding",
		"I hate spam notifications",
		"I dislike noisy alerts",
		"I hate rainy days",
		"I love machine learning",
		"I hate sitting in traffic",
	}
	sampleLabels = []int{1, 1, 0, 0, 0, 1, 0}
)

func trainedModel(t *testing.T) *learning.NaiveBayes {
	t.Helper()

	vocab := features.BuildVocabulary(sampleTexts, features.EnglishStopWords())
	nb := learning.NewNaiveBayes(nil)
	if err := nb.Fit(features.Vectorize(sampleTexts, vocab), sampleLabels, vocab); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	return nb
}

func assertSameModel(t *testing.T, want, got *learning.NaiveBayes) {
	t.Helper()

	if got == nil {
		t.Fatal("loaded model is nil")
	}
	if !got.Vocabulary().Equal(want.Vocabulary()) {
		t.Errorf("vocabulary mismatch: %v vs %v", got.Vocabulary(), want.Vocabulary())
	}
	if got.Smoothing() != want.Smoothing() {
		t.Errorf("smoothing = %v, want %v", got.Smoothing(), want.Smoothing())
	}

	gc, wc := got.Classes(), want.Classes()
	if len(gc) != len(wc) {
		t.Fatalf("classes = %v, want %v", gc, wc)
	}
	for i := range wc {
		if gc[i] != wc[i] {
			t.Errorf("classes = %v, want %v", gc, wc)
		}
	}

	for label, p := range want.Priors() {
		if got.Priors()[label] != p {
			t.Errorf("prior %d = %v, want %v", label, got.Priors()[label], p)
		}
	}
	gl := got.Likelihoods()
	for label, probs := range want.Likelihoods() {
		for i, p := range probs {
			if gl[label][i] != p {
				t.Errorf("likelihood %d/%d = %v, want %v", label, i, gl[label][i], p)
			}
		}
	}

	X := features.Vectorize([]string{"I love coding", "I hate pizza", ""}, want.Vocabulary())
	a, _ := want.Predict(X)
	b, err := got.Predict(X)
	if err != nil {
		t.Fatalf("Predict() on loaded model error = %v", err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("prediction %d: %d vs %d", i, b[i], a[i])
		}
	}
}

func TestRecordLayout(t *testing.T) {
	data, err := Marshal(trainedModel(t))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	for _, field := range []string{"model_type", "smoothing", "vocabulary", "classes", "priors", "likelihoods"} {
		if _, ok := raw[field]; !ok {
			t.Errorf("record missing %q", field)
		}
	}
	if raw["model_type"] != ModelType {
		t.Errorf("model_type = %v", raw["model_type"])
	}

	priors := raw["priors"].(map[string]any)
	if p, ok := priors["1"].(float64); !ok || math.Abs(p-3.0/7.0) > 1e-12 {
		t.Errorf("priors[\"1\"] = %v", priors["1"])
	}
	if !strings.Contains(string(data), "\n    \"model_type\"") {
		t.Error("record should be indented with four spaces")
	}
}

func TestMarshalUntrained(t *testing.T) {
	if _, err := Marshal(learning.NewNaiveBayes(nil)); !errors.Is(err, learning.ErrNotTrained) {
		t.Errorf("expected ErrNotTrained, got %v", err)
	}
}

func TestEncodeDecode(t *testing.T) {
	nb := trainedModel(t)
	before := nb.Params()

	var buf bytes.Buffer
	if err := Encode(&buf, nb); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	loaded, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	assertSameModel(t, nb, loaded)

	if !nb.Params().Vocabulary.Equal(before.Vocabulary) || nb.Params().Documents != before.Documents {
		t.Error("Encode mutated the model")
	}
	if loaded.GetModelInfo().Documents != 7 {
		t.Errorf("documents metadata lost: %d", loaded.GetModelInfo().Documents)
	}
}

func TestDecodeInvalid(t *testing.T) {
	valid, err := Marshal(trainedModel(t))
	if err != nil {
		t.Fatal(err)
	}

	without := func(field string) string {
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(valid, &raw); err != nil {
			t.Fatal(err)
		}
		delete(raw, field)
		out, _ := json.Marshal(raw)
		return string(out)
	}

	tests := []struct {
		name    string
		input   string
		missing string
		badKey  bool
	}{
		{name: "malformed", input: `{"model_type": "NaiveBayes", "smoothing": 1.0`},
		{name: "not an object", input: `[1, 2, 3]`},
		{name: "missing smoothing", input: without("smoothing"), missing: "smoothing"},
		{name: "missing vocabulary", input: without("vocabulary"), missing: "vocabulary"},
		{name: "missing classes", input: without("classes"), missing: "classes"},
		{name: "missing priors", input: without("priors"), missing: "priors"},
		{name: "missing likelihoods", input: without("likelihoods"), missing: "likelihoods"},
		{
			name:   "non-integer prior key",
			input:  `{"smoothing": 1, "vocabulary": ["a"], "classes": [0], "priors": {"zero": 1.0}, "likelihoods": {"0": {"0": 0.5}}}`,
			badKey: true,
		},
		{
			name:   "non-integer feature key",
			input:  `{"smoothing": 1, "vocabulary": ["a"], "classes": [0], "priors": {"0": 1.0}, "likelihoods": {"0": {"x": 0.5}}}`,
			badKey: true,
		},
		{
			name:  "class without prior",
			input: `{"smoothing": 1, "vocabulary": ["a"], "classes": [0, 1], "priors": {"0": 1.0}, "likelihoods": {"0": {"0": 0.5}, "1": {"0": 0.5}}}`,
		},
		{
			name:  "inconsistent values",
			input: `{"smoothing": 1, "vocabulary": ["a"], "classes": [0], "priors": {"0": 1.0}, "likelihoods": {"0": {"0": 1.5}}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Decode(strings.NewReader(tt.input))
			if m != nil {
				t.Error("invalid record must not produce a model")
			}
			if !errors.Is(err, ErrInvalidRecord) {
				t.Fatalf("expected ErrInvalidRecord, got %v", err)
			}

			var mfe *MissingFieldError
			if tt.missing != "" {
				if !errors.As(err, &mfe) || mfe.Field != tt.missing {
					t.Errorf("expected MissingFieldError for %q, got %v", tt.missing, err)
				}
			}

			var ke *KeyError
			if tt.badKey && !errors.As(err, &ke) {
				t.Errorf("expected KeyError, got %v", err)
			}
		})
	}
}

func TestDecodeModelTypeMismatchWarns(t *testing.T) {
	var logs bytes.Buffer
	prev := logging.Logger()
	logging.SetLogger(logging.NewTestLogger(&logs))
	defer logging.SetLogger(prev)

	input := `{"model_type": "Other", "smoothing": 1, "vocabulary": ["a"], "classes": [0, 1],
		"priors": {"0": 0.5, "1": 0.5}, "likelihoods": {"0": {"0": 0.25}, "1": {"0": 0.75}}}`

	m, err := Decode(strings.NewReader(input))
	if err != nil {
		t.Fatalf("model_type mismatch should only warn, got %v", err)
	}
	if m == nil || !m.IsTrained() {
		t.Fatal("expected a usable model")
	}
	if !strings.Contains(logs.String(), "model_type") {
		t.Errorf("expected a model_type warning, logs: %s", logs.String())
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models", "model.json")
	fs := NewFileStore(path)
	ctx := context.Background()

	nb := trainedModel(t)
	if err := fs.Save(ctx, nb); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the model file after save, found %d entries", len(entries))
	}

	loaded, err := fs.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	assertSameModel(t, nb, loaded)

	// saving again replaces the record
	if err := fs.Save(ctx, nb); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}

	if err := fs.Delete(ctx); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if m, err := fs.Load(ctx); m != nil || err != nil {
		t.Errorf("after Delete, Load() = %v, %v", m, err)
	}
}

func TestFileStoreAbsent(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "missing.json"))

	m, err := fs.Load(context.Background())
	if m != nil || err != nil {
		t.Errorf("Load() of absent file = %v, %v; want nil, nil", m, err)
	}
	if err := fs.Delete(context.Background()); err != nil {
		t.Errorf("Delete() of absent file error = %v", err)
	}
}

func TestFileStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := NewFileStore(path).Load(context.Background())
	if m != nil {
		t.Error("corrupt file must not produce a model")
	}
	if !errors.Is(err, ErrInvalidRecord) {
		t.Errorf("expected ErrInvalidRecord, got %v", err)
	}
}

func TestFileStoreSaveUntrained(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	err := NewFileStore(path).Save(context.Background(), learning.NewNaiveBayes(nil))
	if !errors.Is(err, learning.ErrNotTrained) {
		t.Errorf("expected ErrNotTrained, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("untrained save must not create a file")
	}
}

func TestBadgerStoreRoundTrip(t *testing.T) {
	s, err := NewBadgerStore(&config.BadgerStoreConfig{InMemory: true, Name: "test"})
	if err != nil {
		t.Fatalf("NewBadgerStore() error = %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	m, err := s.Load(ctx)
	if m != nil || err != nil {
		t.Fatalf("Load() on empty db = %v, %v; want nil, nil", m, err)
	}

	nb := trainedModel(t)
	if err := s.Save(ctx, nb); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	assertSameModel(t, nb, loaded)

	if err := s.Delete(ctx); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if m, err := s.Load(ctx); m != nil || err != nil {
		t.Errorf("after Delete, Load() = %v, %v", m, err)
	}
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.StoreConfig
		wantErr bool
	}{
		{
			name: "file",
			cfg:  config.StoreConfig{Backend: config.BackendFile, File: config.FileStoreConfig{Path: filepath.Join(t.TempDir(), "m.json")}},
		},
		{
			name: "badger in memory",
			cfg:  config.StoreConfig{Backend: config.BackendBadger, Badger: config.BadgerStoreConfig{InMemory: true}},
		},
		{
			name:    "unknown",
			cfg:     config.StoreConfig{Backend: "s3"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			defer s.Close()

			if m, err := s.Load(context.Background()); m != nil || err != nil {
				t.Errorf("fresh store Load() = %v, %v", m, err)
			}
		})
	}
}

var testRedisConfig = &config.RedisStoreConfig{
	URL:         "redis://localhost:6379",
	KeyPrefix:   "postmood:test",
	DatabaseNum: 1, // separate database for tests
	Timeout:     2 * time.Second,
}

func TestRedisStoreRoundTrip(t *testing.T) {
	if !isRedisAvailable() {
		t.Skip("Redis not available, skipping test")
	}

	rs, err := NewRedisStore(testRedisConfig)
	if err != nil {
		t.Fatalf("Failed to create Redis store: %v", err)
	}
	defer rs.Close()

	ctx := context.Background()
	if err := rs.Delete(ctx); err != nil {
		t.Fatal(err)
	}

	if m, err := rs.Load(ctx); m != nil || err != nil {
		t.Fatalf("Load() of absent key = %v, %v; want nil, nil", m, err)
	}

	nb := trainedModel(t)
	if err := rs.Save(ctx, nb); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := rs.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	assertSameModel(t, nb, loaded)

	meta, err := rs.Meta(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if meta["documents"] != 7 || meta["vocabulary_size"] != 16 {
		t.Errorf("unexpected metadata: %v", meta)
	}

	if err := rs.Delete(ctx); err != nil {
		t.Fatal(err)
	}
}

func TestRedisStoreCorrupt(t *testing.T) {
	if !isRedisAvailable() {
		t.Skip("Redis not available, skipping test")
	}

	rs, err := NewRedisStore(testRedisConfig)
	if err != nil {
		t.Fatalf("Failed to create Redis store: %v", err)
	}
	defer rs.Close()

	ctx := context.Background()
	if err := rs.client.Set(ctx, rs.modelKey(), "garbage", 0).Err(); err != nil {
		t.Fatal(err)
	}
	defer rs.Delete(ctx)

	m, err := rs.Load(ctx)
	if m != nil || !errors.Is(err, ErrInvalidRecord) {
		t.Errorf("Load() of corrupt value = %v, %v", m, err)
	}
}

func TestNewRedisStoreInvalidURL(t *testing.T) {
	if _, err := NewRedisStore(&config.RedisStoreConfig{URL: "not a url"}); err == nil {
		t.Error("expected error for invalid URL")
	}
}

// isRedisAvailable checks if Redis is running for tests
func isRedisAvailable() bool {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   1,
	})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	return client.Ping(ctx).Err() == nil
}
