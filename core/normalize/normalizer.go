// Package normalize implements the Normalizer interface.
// It reduces raw HTML to a NormalizedDocument by:
//  1. Removing noise elements (nav, footer, scripts, ads, etc.)
//  2. Finding the best content container (<main>, <article>, or <body>)
//  3. Converting the remaining HTML to Markdown
//  4. Truncating to the token budget, keeping earliest content first
//
// The whole step is deterministic: the same input HTML always yields a
// byte-identical NormalizedDocument, and no model call is involved.
package normalize

import (
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"

	"github.com/gaurav-prasanna/briefpipe/core"
)

// DefaultTokenBudget bounds how much normalized content is handed to a
// single model call.
const DefaultTokenBudget = 8000

// noiseSelectors are HTML elements removed before extraction.
// These contribute no meaningful content to the page text.
var noiseSelectors = []string{
	"script", "style", "noscript",
	"nav", "footer", "header", "aside",
	"img", "picture", "figure", "figcaption",
	"iframe", "video", "audio",
	"svg", "canvas",
	"form", "button", "input", "select", "textarea",
	".sidebar", ".menu", ".navigation", ".ads", ".advertisement",
	".cookie-banner", ".newsletter-signup", ".social-share",
}

// DocumentNormalizer strips noise from HTML and produces a budgeted
// NormalizedDocument.
type DocumentNormalizer struct {
	tokenBudget int
}

// New creates a DocumentNormalizer with the given per-call token budget.
// Defaults to DefaultTokenBudget if budget <= 0.
func New(budget int) *DocumentNormalizer {
	if budget <= 0 {
		budget = DefaultTokenBudget
	}
	return &DocumentNormalizer{tokenBudget: budget}
}

// Normalize reduces raw HTML to a NormalizedDocument. A document with no
// extractable text block yields an empty NormalizedDocument, not an error;
// downstream extractors treat empty content as "no items".
func (n *DocumentNormalizer) Normalize(url, rawHTML string) (*core.NormalizedDocument, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	// Remove noise elements first (operates on the whole document).
	for _, sel := range noiseSelectors {
		doc.Find(sel).Remove()
	}

	// Remove repeated boilerplate blocks (identical text appearing in
	// several places, e.g. footers duplicated per section).
	removeRepeatedBlocks(doc)

	// Find the best content container in priority order.
	// <main> is the most semantically correct, then <article>, then <body>.
	var content *goquery.Selection
	for _, tag := range []string{"main", "article", "body"} {
		sel := doc.Find(tag)
		if sel.Length() > 0 {
			content = sel.First()
			break
		}
	}

	empty := &core.NormalizedDocument{URL: url}
	if content == nil {
		return empty, nil
	}

	text := collapseWhitespace(content.Text())
	if text == "" {
		return empty, nil
	}

	cleanedHTML, err := goquery.OuterHtml(content)
	if err != nil {
		return nil, fmt.Errorf("serializing content: %w", err)
	}

	markdown, err := htmltomarkdown.ConvertString(cleanedHTML)
	if err != nil {
		return nil, fmt.Errorf("converting HTML to markdown: %w", err)
	}
	markdown = strings.TrimSpace(markdown)

	// Truncate to the budget, keeping earliest content. The Markdown form
	// is what model calls consume, so it carries the budget invariant.
	markdown, tokens, err := truncateTokens(markdown, n.tokenBudget)
	if err != nil {
		return nil, fmt.Errorf("counting tokens: %w", err)
	}

	text, _, err = truncateTokens(text, n.tokenBudget)
	if err != nil {
		return nil, fmt.Errorf("counting tokens: %w", err)
	}

	return &core.NormalizedDocument{
		URL:             url,
		CleanedText:     text,
		CleanedHTML:     cleanedHTML,
		Markdown:        markdown,
		EstimatedTokens: tokens,
	}, nil
}

// removeRepeatedBlocks drops elements whose normalized text appears more
// than once among sizeable blocks. Repetition across a page is a strong
// boilerplate signal.
func removeRepeatedBlocks(doc *goquery.Document) {
	const minBlockLen = 40

	counts := make(map[string]int)
	doc.Find("div, section, ul").Each(func(_ int, s *goquery.Selection) {
		text := collapseWhitespace(s.Text())
		if len(text) >= minBlockLen {
			counts[text]++
		}
	})

	// Keep the earliest occurrence, drop the rest. A wrapper element
	// collapses to the same text as its only child; that is nesting, not
	// repetition, so a block inside the kept occurrence is never removed.
	kept := make(map[string]*goquery.Selection)
	doc.Find("div, section, ul").Each(func(_ int, s *goquery.Selection) {
		text := collapseWhitespace(s.Text())
		if len(text) < minBlockLen || counts[text] < 2 {
			return
		}
		first, ok := kept[text]
		if !ok {
			kept[text] = s
			return
		}
		if len(s.Nodes) > 0 && first.Contains(s.Nodes[0]) {
			return
		}
		s.Remove()
	})
}

// collapseWhitespace folds runs of whitespace into single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
