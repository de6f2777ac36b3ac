package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articleHTML = `<html>
<head><title>Test</title><script>var x = 1;</script></head>
<body>
  <nav><a href="/">Home</a><a href="/about">About</a></nav>
  <main>
    <h1>Go 1.25 Released</h1>
    <p>The Go team has released version 1.25 with improved garbage collection.</p>
    <p>Benchmarks show a 10 percent reduction in pause times.</p>
  </main>
  <footer>Copyright 2026 Example Corp. All rights reserved worldwide.</footer>
</body>
</html>`

func TestNormalize_StripsNoise(t *testing.T) {
	n := New(0)
	doc, err := n.Normalize("https://example.com/go125", articleHTML)
	require.NoError(t, err)

	assert.Contains(t, doc.CleanedText, "garbage collection")
	assert.Contains(t, doc.Markdown, "Go 1.25 Released")
	assert.NotContains(t, doc.CleanedText, "About")
	assert.NotContains(t, doc.CleanedText, "var x = 1")
	assert.NotContains(t, doc.CleanedText, "Copyright")
	assert.False(t, doc.Empty())
	assert.Greater(t, doc.EstimatedTokens, 0)
}

func TestNormalize_Deterministic(t *testing.T) {
	n := New(0)
	a, err := n.Normalize("https://example.com", articleHTML)
	require.NoError(t, err)
	b, err := n.Normalize("https://example.com", articleHTML)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestNormalize_TokenBudget(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("<html><body><main>")
	for i := 0; i < 500; i++ {
		sb.WriteString("<p>This paragraph pads the document well past the configured token budget.</p>")
	}
	sb.WriteString("</main></body></html>")

	const budget = 100
	n := New(budget)
	doc, err := n.Normalize("https://example.com/long", sb.String())
	require.NoError(t, err)

	assert.LessOrEqual(t, doc.EstimatedTokens, budget)
	// Earliest content survives truncation.
	assert.True(t, strings.HasPrefix(doc.Markdown, "This paragraph"))
}

func TestNormalize_EmptyDocument(t *testing.T) {
	n := New(0)
	doc, err := n.Normalize("https://example.com/empty", "<html><body><script>only();</script></body></html>")
	require.NoError(t, err)

	assert.True(t, doc.Empty())
	assert.Zero(t, doc.EstimatedTokens)
}

func TestNormalize_RepeatedBoilerplateRemoved(t *testing.T) {
	block := `<div>Subscribe to our newsletter for weekly updates and exclusive offers today.</div>`
	html := "<html><body><main>" + block + "<p>Real article body with unique information.</p>" + block + "</main></body></html>"

	n := New(0)
	doc, err := n.Normalize("https://example.com", html)
	require.NoError(t, err)

	assert.Contains(t, doc.CleanedText, "unique information")
	assert.Equal(t, 1, strings.Count(doc.CleanedText, "Subscribe to our newsletter"))
}

func TestNormalize_NestedWrappersSurvive(t *testing.T) {
	// A wrapper div around a content div collapses to the same text as its
	// child. That must read as nesting, not boilerplate repetition.
	html := `<html><body>
	  <div class="wrapper"><div class="content">
	    <p>Go 1.25 ships a new garbage collector with much shorter pause times.</p>
	  </div></div>
	</body></html>`

	n := New(0)
	doc, err := n.Normalize("https://example.com/nested", html)
	require.NoError(t, err)

	assert.False(t, doc.Empty())
	assert.Contains(t, doc.CleanedText, "garbage collector")
	assert.Equal(t, 1, strings.Count(doc.CleanedText, "garbage collector"))
}

func TestNormalize_NestedDuplicateStillRemovedOnce(t *testing.T) {
	// Nested wrappers plus a genuine sibling duplicate: only the sibling
	// copy goes, the nested original stays intact.
	inner := `<div><p>Subscribe to our newsletter for weekly updates and exclusive offers.</p></div>`
	html := `<html><body><div class="wrap">` + inner + `</div>` + inner +
		`<p>Real article body with unique information.</p></body></html>`

	n := New(0)
	doc, err := n.Normalize("https://example.com/mixed", html)
	require.NoError(t, err)

	assert.Contains(t, doc.CleanedText, "unique information")
	assert.Equal(t, 1, strings.Count(doc.CleanedText, "Subscribe to our newsletter"))
}

func TestNormalize_PrefersMainOverBody(t *testing.T) {
	html := `<html><body><p>outside</p><main><p>inside main</p></main></body></html>`
	n := New(0)
	doc, err := n.Normalize("https://example.com", html)
	require.NoError(t, err)

	assert.Contains(t, doc.CleanedText, "inside main")
	assert.NotContains(t, doc.CleanedText, "outside")
}

func TestCountTokens(t *testing.T) {
	count, err := CountTokens("hello world")
	require.NoError(t, err)
	assert.Greater(t, count, 0)
	assert.Less(t, count, 10)
}
