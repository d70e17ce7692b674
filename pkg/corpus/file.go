package corpus

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/postmood/postmood/pkg/features"
)

// maxLineSize bounds a single line in line-oriented corpus files
const maxLineSize = 1 << 20

// FileSource reads posts from a file. The format follows the extension:
// .jsonl/.ndjson hold one {"text": ..., "label": ...} object per line,
// .yaml/.yml a list of posts, and anything else one unlabeled post per line.
type FileSource struct {
	Path string
}

// NewFileSource creates a file-backed source
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Posts reads the whole file
func (s *FileSource) Posts(ctx context.Context) ([]Post, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus %s: %w", s.Path, err)
	}

	switch strings.ToLower(filepath.Ext(s.Path)) {
	case ".jsonl", ".ndjson":
		return parseJSONLines(ctx, data)
	case ".yaml", ".yml":
		return parseYAML(data)
	default:
		return parsePlain(ctx, data)
	}
}

type jsonPost struct {
	Text  any `json:"text"`
	Label any `json:"label"`
}

func parseJSONLines(ctx context.Context, data []byte) ([]Post, error) {
	var posts []Post
	err := scanLines(ctx, data, func(n int, line string) error {
		dec := json.NewDecoder(strings.NewReader(line))
		dec.UseNumber()

		var jp jsonPost
		if err := dec.Decode(&jp); err != nil {
			return fmt.Errorf("line %d: invalid JSON: %w", n, err)
		}

		label, err := parseLabel(jp.Label)
		if err != nil {
			return fmt.Errorf("line %d: %w", n, err)
		}

		posts = append(posts, Post{Text: features.TextOf(jp.Text), Label: label})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func parseYAML(data []byte) ([]Post, error) {
	var posts []Post
	if err := yaml.Unmarshal(data, &posts); err != nil {
		return nil, fmt.Errorf("failed to parse YAML corpus: %w", err)
	}
	return posts, nil
}

func parsePlain(ctx context.Context, data []byte) ([]Post, error) {
	var posts []Post
	err := scanLines(ctx, data, func(_ int, line string) error {
		posts = append(posts, Unlabeled(line))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// scanLines calls fn for every non-blank line with its 1-based number
func scanLines(ctx context.Context, data []byte, fn func(n int, line string) error) error {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	n := 0
	for scanner.Scan() {
		n++
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := fn(n, line); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// parseLabel accepts a JSON number, a numeric string or null
func parseLabel(v any) (*int, error) {
	var s string
	switch val := v.(type) {
	case nil:
		return nil, nil
	case json.Number:
		s = val.String()
	case string:
		s = strings.TrimSpace(val)
		if s == "" {
			return nil, nil
		}
	default:
		return nil, fmt.Errorf("label must be an integer, got %T", v)
	}

	label, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("label %q is not an integer", s)
	}
	return &label, nil
}
