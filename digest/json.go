package digest

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gaurav-prasanna/briefpipe/core"
)

// digestJSON is the complete JSON output for one digest.
type digestJSON struct {
	Title       string          `json:"title"`
	GeneratedAt string          `json:"generated_at"` // ISO8601
	Result      *core.RunResult `json:"result"`
}

// JSONRenderer renders a run result as indented JSON.
type JSONRenderer struct {
	// now is swappable for deterministic tests.
	now func() time.Time
}

// NewJSONRenderer creates a JSONRenderer.
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{now: time.Now}
}

// Render produces the JSON digest.
func (r *JSONRenderer) Render(title string, result *core.RunResult) ([]byte, error) {
	out := digestJSON{
		Title:       title,
		GeneratedAt: r.now().UTC().Format(time.RFC3339),
		Result:      result,
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling digest: %w", err)
	}
	return data, nil
}

// Extension returns the file extension for JSON output.
func (r *JSONRenderer) Extension() string {
	return ".json"
}
