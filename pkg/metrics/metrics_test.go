package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordPredictions(t *testing.T) {
	m := New()
	m.RecordPredictions([]int{1, 0, 1, 1})

	if got := testutil.ToFloat64(m.PredictionsTotal.WithLabelValues("1")); got != 3 {
		t.Errorf("class 1 predictions = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.PredictionsTotal.WithLabelValues("0")); got != 1 {
		t.Errorf("class 0 predictions = %v, want 1", got)
	}
}

func TestRecordTraining(t *testing.T) {
	m := New()
	m.RecordTraining(7, 16)

	if got := testutil.ToFloat64(m.TrainingDocuments); got != 7 {
		t.Errorf("training documents = %v", got)
	}
	if got := testutil.ToFloat64(m.VocabularySize); got != 16 {
		t.Errorf("vocabulary size = %v", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.RecordTraining(7, 16)
	m.ObserveStage("fit", 2*time.Millisecond)
	m.RecordPredictions([]int{0})

	path := filepath.Join(t.TempDir(), "textfile", "postmood.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	for _, want := range []string{
		"postmood_training_documents 7",
		"postmood_vocabulary_size 16",
		`postmood_predictions_total{class="0"} 1`,
		`postmood_stage_duration_seconds_count{stage="fit"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("textfile missing %q:\n%s", want, out)
		}
	}
}

func TestRegistriesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.RecordPredictions([]int{1})

	if got := testutil.ToFloat64(b.PredictionsTotal.WithLabelValues("1")); got != 0 {
		t.Errorf("second registry saw %v predictions", got)
	}
	if a.Registry() == b.Registry() {
		t.Error("registries should differ")
	}
}
