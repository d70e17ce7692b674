package store

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/postmood/postmood/pkg/learning"
	"github.com/postmood/postmood/pkg/logging"
)

const indent = "    "

// Marshal renders a trained model as an indented JSON record
func Marshal(m *learning.NaiveBayes) ([]byte, error) {
	if m == nil || !m.IsTrained() {
		return nil, learning.ErrNotTrained
	}

	data, err := json.MarshalIndent(RecordFromParams(m.Params()), "", indent)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal model: %w", err)
	}
	return data, nil
}

// Unmarshal rebuilds a model from a JSON record. Every failure wraps
// ErrInvalidRecord; on error the returned model is always nil.
func Unmarshal(data []byte) (*learning.NaiveBayes, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: malformed JSON: %v", ErrInvalidRecord, err)
	}

	if rec.ModelType != ModelType {
		logging.Warn().
			Str("model_type", rec.ModelType).
			Str("expected", ModelType).
			Msg("stored model has unexpected model_type, loading anyway")
	}

	params, err := rec.Params()
	if err != nil {
		return nil, err
	}

	m, err := learning.FromParams(params)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	return m, nil
}

// Encode writes the model record to w
func Encode(w io.Writer, m *learning.NaiveBayes) error {
	data, err := Marshal(m)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write model: %w", err)
	}
	return nil
}

// Decode reads a model record from r
func Decode(r io.Reader) (*learning.NaiveBayes, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read failed: %v", ErrInvalidRecord, err)
	}
	return Unmarshal(data)
}
