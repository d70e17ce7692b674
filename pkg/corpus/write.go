package corpus

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Write stores posts at path in the format implied by its extension,
// the same formats FileSource reads
func Write(path string, posts []Post) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create corpus directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create corpus file: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		err = WriteJSONLines(f, posts)
	case ".yaml", ".yml":
		err = WriteYAML(f, posts)
	default:
		err = writePlain(f, posts)
	}
	if err != nil {
		return err
	}

	return f.Close()
}

// WriteJSONLines writes one JSON object per post
func WriteJSONLines(w io.Writer, posts []Post) error {
	enc := json.NewEncoder(w)
	for i, p := range posts {
		if err := enc.Encode(p); err != nil {
			return fmt.Errorf("failed to encode post %d: %w", i, err)
		}
	}
	return nil
}

// WriteYAML writes the posts as a YAML list
func WriteYAML(w io.Writer, posts []Post) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(posts); err != nil {
		return fmt.Errorf("failed to encode posts: %w", err)
	}
	return enc.Close()
}

// writePlain writes one text per line; labels are dropped
func writePlain(w io.Writer, posts []Post) error {
	for _, p := range posts {
		text := strings.ReplaceAll(p.Text, "\n", " ")
		if _, err := fmt.Fprintln(w, text); err != nil {
			return err
		}
	}
	return nil
}
