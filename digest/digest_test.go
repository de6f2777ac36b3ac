package digest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/briefpipe/core"
)

func sampleResult() *core.RunResult {
	date := "2026-08-12"
	return &core.RunResult{
		Items: []core.ExtractedItem{
			{
				URL:         "https://news.example.com/go-125",
				Title:       "Go 1.25 Released",
				Content:     "The Go team released version 1.25 today.",
				PublishDate: &date,
				ContentType: "article",
				Metadata:    map[string]any{"word_count": 8},
			},
			{
				URL:         "https://news.example.com/pg-tips",
				Title:       "",
				Content:     "Indexes are not free.",
				ContentType: "blog_post",
				Metadata:    map[string]any{"word_count": 4},
			},
		},
		Warning: "extraction degraded: 1 of 3 candidates skipped",
		Metadata: core.RunMetadata{
			TotalLinksFound:   3,
			ArticlesExtracted: 2,
			PageType:          "listing",
		},
	}
}

func TestMarkdownRenderer(t *testing.T) {
	r := NewMarkdownRenderer()
	out, err := r.Render("Go runtime news", sampleResult())
	require.NoError(t, err)

	md := string(out)
	assert.Contains(t, md, "# Go runtime news")
	assert.Contains(t, md, "## Go 1.25 Released")
	assert.Contains(t, md, "*Published 2026-08-12*")
	// Untitled items fall back to their URL.
	assert.Contains(t, md, "## https://news.example.com/pg-tips")
	assert.Contains(t, md, "> extraction degraded")
	assert.Contains(t, md, "2 of 3 links extracted")
	assert.Equal(t, ".md", r.Extension())
}

func TestMarkdownRenderer_EmptyResult(t *testing.T) {
	r := NewMarkdownRenderer()
	out, err := r.Render("Quiet day", &core.RunResult{Items: []core.ExtractedItem{}})
	require.NoError(t, err)
	assert.Contains(t, string(out), "Nothing matched this briefing.")
}

func TestJSONRenderer(t *testing.T) {
	r := NewJSONRenderer()
	r.now = func() time.Time { return time.Date(2026, 8, 29, 7, 0, 0, 0, time.UTC) }

	out, err := r.Render("Go runtime news", sampleResult())
	require.NoError(t, err)

	s := string(out)
	assert.Contains(t, s, `"generated_at": "2026-08-29T07:00:00Z"`)
	assert.Contains(t, s, `"total_links_found": 3`)
	assert.Contains(t, s, `"publish_date": "2026-08-12"`)
	assert.Equal(t, ".json", r.Extension())
}

func TestPDFRenderer(t *testing.T) {
	r := NewPDFRenderer()
	out, err := r.Render("Go runtime news", sampleResult())
	require.NoError(t, err)
	// %PDF magic header.
	require.Greater(t, len(out), 4)
	assert.Equal(t, "%PDF", string(out[:4]))
	assert.Equal(t, ".pdf", r.Extension())
}

func TestWriter(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir)
	require.NoError(t, err)

	path, err := w.Write("Go Runtime News!", []byte("content"), ".md")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "go_runtime_news.md"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "go_1_25_digest", sanitize("Go 1.25 Digest"))
	assert.Equal(t, "digest", sanitize("???"))
}
