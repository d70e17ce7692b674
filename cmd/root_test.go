package cmd

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/postmood/postmood/pkg/config"
	"github.com/postmood/postmood/pkg/learning"
	"github.com/postmood/postmood/pkg/logging"
	"github.com/postmood/postmood/pkg/metrics"
	"github.com/postmood/postmood/pkg/profiler"
)

type closeFailStore struct{}

func (closeFailStore) Save(context.Context, *learning.NaiveBayes) error { return nil }

func (closeFailStore) Load(context.Context) (*learning.NaiveBayes, error) { return nil, nil }

func (closeFailStore) Close() error { return errors.New("connection reset") }

func TestRuntimeCloseLogsStoreError(t *testing.T) {
	prev := logging.Logger()
	defer logging.SetLogger(prev)

	var buf bytes.Buffer
	logging.SetLogger(logging.NewTestLogger(&buf))

	cfg := config.DefaultConfig()
	cfg.Store.Backend = config.BackendRedis
	cfg.Metrics.Textfile = filepath.Join(t.TempDir(), "postmood.prom")

	rt := &runtime{
		cfg:      cfg,
		store:    closeFailStore{},
		profiler: profiler.NewProfiler(),
		metrics:  metrics.New(),
	}
	rt.close()

	out := buf.String()
	if !strings.Contains(out, "model store not closed cleanly") || !strings.Contains(out, "connection reset") {
		t.Errorf("expected store close error in log, got %q", out)
	}
	if strings.Contains(out, "metrics not written") {
		t.Errorf("metrics textfile should have been written, got %q", out)
	}
}
