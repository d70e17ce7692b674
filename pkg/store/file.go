package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/postmood/postmood/pkg/learning"
	"github.com/postmood/postmood/pkg/logging"
)

// FileStore keeps the model as a JSON file
type FileStore struct {
	path string
}

// NewFileStore creates a store for the JSON file at path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the model file path
func (s *FileStore) Path() string {
	return s.path
}

// Save writes the model to a temporary file next to the target and renames
// it into place, so readers never observe a half-written record
func (s *FileStore) Save(ctx context.Context, m *learning.NaiveBayes) error {
	data, err := Marshal(m)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary model file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if tmp != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write model file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync model file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close model file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		tmp = nil
		return fmt.Errorf("failed to replace model file: %w", err)
	}
	tmp = nil

	logging.Info().Str("path", s.path).Int("bytes", len(data)).Msg("model saved")
	return nil
}

// Load reads the model file; a missing file is reported as (nil, nil)
func (s *FileStore) Load(ctx context.Context) (*learning.NaiveBayes, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		logging.Debug().Str("path", s.path).Msg("no stored model")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	defer f.Close()

	m, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("model file %s: %w", s.path, err)
	}

	logging.Debug().Str("path", s.path).Msg("model loaded")
	return m, nil
}

// Delete removes the model file; a missing file is not an error
func (s *FileStore) Delete(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete model file: %w", err)
	}
	return nil
}

// Close is a no-op for files
func (s *FileStore) Close() error {
	return nil
}
