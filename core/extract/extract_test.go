package extract

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/briefpipe/core"
)

type fakeGateway struct {
	response string
	err      error
	tiers    []core.ModelTier
	prompts  []core.Prompt
}

func (f *fakeGateway) Complete(_ context.Context, prompt core.Prompt, tier core.ModelTier) (string, error) {
	f.tiers = append(f.tiers, tier)
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func listingDoc() *core.NormalizedDocument {
	return &core.NormalizedDocument{
		URL:             "https://news.example.com/",
		CleanedText:     "Latest posts about Go and infrastructure",
		Markdown:        "- [Go 1.25](/go-125)\n- [Postgres tips](/pg-tips)",
		EstimatedTokens: 20,
	}
}

func articleDoc() *core.NormalizedDocument {
	return &core.NormalizedDocument{
		URL:             "https://news.example.com/go-125",
		CleanedText:     "The Go team released version 1.25 today.",
		Markdown:        "# Go 1.25\n\nThe Go team released version 1.25 today.",
		EstimatedTokens: 15,
	}
}

func TestBuildLinkPrompt(t *testing.T) {
	instr := core.ExtractionInstruction{Prompt: "Go runtime news", MaxItems: 5, RecencyWindowDays: 7}
	p := BuildLinkPrompt(listingDoc(), instr)

	assert.NotEmpty(t, p.System)
	assert.Contains(t, p.User, "Go runtime news")
	assert.Contains(t, p.User, "up to 5 links")
	assert.Contains(t, p.User, "last 7 days")
	assert.Contains(t, p.User, "Go 1.25")

	// Recency clause is omitted when no window is set.
	p = BuildLinkPrompt(listingDoc(), core.ExtractionInstruction{Prompt: "x", MaxItems: 3})
	assert.NotContains(t, p.User, "days")
}

func TestBuildLinkPrompt_Deterministic(t *testing.T) {
	instr := core.ExtractionInstruction{Prompt: "Go news", MaxItems: 5}
	assert.Equal(t, BuildLinkPrompt(listingDoc(), instr), BuildLinkPrompt(listingDoc(), instr))
}

func TestExtractLinks_ParsesRankedList(t *testing.T) {
	gw := &fakeGateway{response: `[
		{"url": "https://news.example.com/go-125", "title": "Go 1.25", "reason": "runtime release"},
		{"url": "/pg-tips", "title": "Postgres tips", "reason": "infra"}
	]`}
	e := NewLinkExtractor(gw, zerolog.Nop())

	links, err := e.ExtractLinks(context.Background(), listingDoc(), core.ExtractionInstruction{Prompt: "go", MaxItems: 10})
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, "https://news.example.com/go-125", links[0].URL)
	// Relative URLs resolve against the listing page.
	assert.Equal(t, "https://news.example.com/pg-tips", links[1].URL)
	// Link filtering is a simple-tier task.
	assert.Equal(t, []core.ModelTier{core.TierSimple}, gw.tiers)
}

func TestExtractLinks_FencedResponse(t *testing.T) {
	gw := &fakeGateway{response: "```json\n[{\"url\": \"https://news.example.com/a\", \"title\": \"A\"}]\n```"}
	e := NewLinkExtractor(gw, zerolog.Nop())

	links, err := e.ExtractLinks(context.Background(), listingDoc(), core.ExtractionInstruction{MaxItems: 5})
	require.NoError(t, err)
	require.Len(t, links, 1)
}

func TestExtractLinks_MalformedResponseFailsSoft(t *testing.T) {
	gw := &fakeGateway{response: "Sorry, I can't find any links on this page."}
	e := NewLinkExtractor(gw, zerolog.Nop())

	links, err := e.ExtractLinks(context.Background(), listingDoc(), core.ExtractionInstruction{MaxItems: 5})
	require.ErrorIs(t, err, core.ErrUnparseableLinks)
	assert.Empty(t, links)
}

func TestExtractLinks_GatewayErrorPropagates(t *testing.T) {
	gw := &fakeGateway{err: &core.ModelError{Kind: core.ModelRateLimited, Provider: "primary"}}
	e := NewLinkExtractor(gw, zerolog.Nop())

	_, err := e.ExtractLinks(context.Background(), listingDoc(), core.ExtractionInstruction{MaxItems: 5})
	var modelErr *core.ModelError
	require.ErrorAs(t, err, &modelErr)
}

func TestExtractLinks_DedupeFirstSeenWins(t *testing.T) {
	gw := &fakeGateway{response: `[
		{"url": "https://news.example.com/a", "title": "first"},
		{"url": "https://news.example.com/a/", "title": "duplicate, trailing slash"},
		{"url": "https://news.example.com/a#section", "title": "duplicate, fragment"},
		{"url": "https://news.example.com/b", "title": "second"}
	]`}
	e := NewLinkExtractor(gw, zerolog.Nop())

	links, err := e.ExtractLinks(context.Background(), listingDoc(), core.ExtractionInstruction{MaxItems: 10})
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, "first", links[0].TitleHint)
	assert.Equal(t, "second", links[1].TitleHint)
}

func TestExtractLinks_CapsAtMaxItemsPreservingOrder(t *testing.T) {
	gw := &fakeGateway{response: `[
		{"url": "https://news.example.com/1", "title": "1"},
		{"url": "https://news.example.com/2", "title": "2"},
		{"url": "https://news.example.com/3", "title": "3"},
		{"url": "https://news.example.com/4", "title": "4"}
	]`}
	e := NewLinkExtractor(gw, zerolog.Nop())

	links, err := e.ExtractLinks(context.Background(), listingDoc(), core.ExtractionInstruction{MaxItems: 2})
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, "1", links[0].TitleHint)
	assert.Equal(t, "2", links[1].TitleHint)
}

func TestExtractLinks_FiltersJunkURLs(t *testing.T) {
	gw := &fakeGateway{response: `[
		{"url": "mailto:editor@example.com", "title": "contact"},
		{"url": "javascript:void(0)", "title": "widget"},
		{"url": "https://news.example.com/logo.png", "title": "logo"},
		{"url": "https://news.example.com/real-post", "title": "real"}
	]`}
	e := NewLinkExtractor(gw, zerolog.Nop())

	links, err := e.ExtractLinks(context.Background(), listingDoc(), core.ExtractionInstruction{MaxItems: 10})
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "https://news.example.com/real-post", links[0].URL)
}

func TestExtractLinks_EmptyDocument(t *testing.T) {
	gw := &fakeGateway{response: "[]"}
	e := NewLinkExtractor(gw, zerolog.Nop())

	links, err := e.ExtractLinks(context.Background(), &core.NormalizedDocument{URL: "https://x.example"}, core.ExtractionInstruction{MaxItems: 5})
	require.NoError(t, err)
	assert.Empty(t, links)
	// No model call is made for an empty document.
	assert.Empty(t, gw.tiers)
}

func TestExtractContent_Success(t *testing.T) {
	gw := &fakeGateway{response: `{
		"title": "Go 1.25",
		"content": "The Go team released version 1.25 today with runtime improvements.",
		"publish_date": "2026-08-12",
		"content_type": "article",
		"has_quotations": false
	}`}
	e := NewContentExtractor(gw, zerolog.Nop())

	item, err := e.ExtractContent(context.Background(), articleDoc())
	require.NoError(t, err)
	assert.Equal(t, "Go 1.25", item.Title)
	require.NotNil(t, item.PublishDate)
	assert.Equal(t, "2026-08-12", *item.PublishDate)
	assert.Equal(t, "article", item.ContentType)
	// Content structuring is a complex-tier task.
	assert.Equal(t, []core.ModelTier{core.TierComplex}, gw.tiers)
}

func TestExtractContent_WordCountRecomputed(t *testing.T) {
	gw := &fakeGateway{response: `{
		"title": "T",
		"content": "one two three four five",
		"publish_date": null,
		"content_type": "article",
		"word_count": 9999
	}`}
	e := NewContentExtractor(gw, zerolog.Nop())

	item, err := e.ExtractContent(context.Background(), articleDoc())
	require.NoError(t, err)
	assert.Equal(t, 5, item.Metadata["word_count"])
	assert.Equal(t, countWords(item.Content), item.Metadata["word_count"])
}

func TestExtractContent_NullPublishDate(t *testing.T) {
	gw := &fakeGateway{response: `{"title": "T", "content": "body text here", "publish_date": null, "content_type": "other"}`}
	e := NewContentExtractor(gw, zerolog.Nop())

	item, err := e.ExtractContent(context.Background(), articleDoc())
	require.NoError(t, err)
	assert.Nil(t, item.PublishDate)
}

func TestExtractContent_EmptyBodyFails(t *testing.T) {
	gw := &fakeGateway{response: `{"title": "T", "content": "  ", "publish_date": null, "content_type": "article"}`}
	e := NewContentExtractor(gw, zerolog.Nop())

	_, err := e.ExtractContent(context.Background(), articleDoc())
	var extErr *core.ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, core.ExtractionEmptyContent, extErr.Kind)
}

func TestExtractContent_UnparseableResponse(t *testing.T) {
	gw := &fakeGateway{response: "I could not process this page."}
	e := NewContentExtractor(gw, zerolog.Nop())

	_, err := e.ExtractContent(context.Background(), articleDoc())
	var extErr *core.ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, core.ExtractionUnparseable, extErr.Kind)
}

func TestExtractContent_EmptyDocument(t *testing.T) {
	gw := &fakeGateway{}
	e := NewContentExtractor(gw, zerolog.Nop())

	_, err := e.ExtractContent(context.Background(), &core.NormalizedDocument{URL: "https://x.example"})
	var extErr *core.ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, core.ExtractionEmptyContent, extErr.Kind)
	assert.Empty(t, gw.tiers)
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence(`{"a":1}`))
	assert.Equal(t, `[1,2]`, stripCodeFence("  ```\n[1,2]\n```  "))
}

func TestCountWords(t *testing.T) {
	assert.Equal(t, 0, countWords(""))
	assert.Equal(t, 0, countWords("   \n\t"))
	assert.Equal(t, 3, countWords("one  two\nthree"))
}
