package extract

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gaurav-prasanna/briefpipe/core"
)

// contentResponse is the fixed response shape the content prompt asks for.
type contentResponse struct {
	Title         string  `json:"title"`
	Content       string  `json:"content"`
	PublishDate   *string `json:"publish_date"`
	ContentType   string  `json:"content_type"`
	HasQuotations bool    `json:"has_quotations"`
}

// ModelContentExtractor asks the model gateway for structured page content.
type ModelContentExtractor struct {
	gateway core.ModelGateway
	log     zerolog.Logger
}

// NewContentExtractor creates a ModelContentExtractor.
func NewContentExtractor(gateway core.ModelGateway, log zerolog.Logger) *ModelContentExtractor {
	return &ModelContentExtractor{
		gateway: gateway,
		log:     log.With().Str("component", "content_extractor").Logger(),
	}
}

// ExtractContent returns the structured content of one page. The word
// count in the item metadata is recomputed from the returned body text;
// the invariant metadata["word_count"] == countWords(content) always holds.
func (e *ModelContentExtractor) ExtractContent(ctx context.Context, doc *core.NormalizedDocument) (*core.ExtractedItem, error) {
	if doc.Empty() {
		return nil, &core.ExtractionError{Kind: core.ExtractionEmptyContent, URL: doc.URL}
	}

	prompt := BuildContentPrompt(doc)
	raw, err := e.gateway.Complete(ctx, prompt, core.TierComplex)
	if err != nil {
		return nil, err
	}

	var resp contentResponse
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &resp); err != nil {
		return nil, &core.ExtractionError{Kind: core.ExtractionUnparseable, URL: doc.URL, Err: err}
	}

	content := strings.TrimSpace(resp.Content)
	if content == "" {
		return nil, &core.ExtractionError{Kind: core.ExtractionEmptyContent, URL: doc.URL}
	}

	contentType := resp.ContentType
	if contentType == "" {
		contentType = "other"
	}

	publishDate := resp.PublishDate
	if publishDate != nil && strings.TrimSpace(*publishDate) == "" {
		publishDate = nil
	}

	return &core.ExtractedItem{
		URL:         doc.URL,
		Title:       strings.TrimSpace(resp.Title),
		Content:     content,
		PublishDate: publishDate,
		ContentType: contentType,
		Metadata: map[string]any{
			"word_count":     countWords(content),
			"has_quotations": resp.HasQuotations,
			"source_tokens":  doc.EstimatedTokens,
		},
	}, nil
}
