package digest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Writer writes rendered digests to disk.
type Writer struct {
	OutputDir string
}

// NewWriter creates a Writer targeting the given output directory.
// If outputDir is empty, it defaults to the current working directory.
func NewWriter(outputDir string) (*Writer, error) {
	if outputDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		outputDir = wd
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return &Writer{OutputDir: outputDir}, nil
}

// Write writes one rendered digest and returns its path.
func (w *Writer) Write(title string, data []byte, ext string) (string, error) {
	path := filepath.Join(w.OutputDir, sanitize(title)+ext)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing file %s: %w", path, err)
	}
	return path, nil
}

// sanitize lowercases the title and replaces non-alphanumeric characters
// with underscores.
func sanitize(s string) string {
	var b strings.Builder
	for _, ch := range strings.ToLower(s) {
		if (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9') {
			b.WriteRune(ch)
		} else {
			b.WriteRune('_')
		}
	}
	name := strings.Trim(b.String(), "_")
	if name == "" {
		name = "digest"
	}
	return name
}
