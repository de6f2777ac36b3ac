// Package core defines the pipeline interfaces and data model for BriefPipe.
// Each stage of the pipeline is a clean, testable interface.
package core

import "context"

// FetchRequest describes a single page fetch.
type FetchRequest struct {
	URL    string
	Render bool // page needs JS execution before its content is usable
}

// FetchResult holds the raw content and response metadata from a fetch.
// Immutable once returned.
type FetchResult struct {
	URL         string
	FinalURL    string
	StatusCode  int
	RawContent  string
	ContentType string
}

// NormalizedDocument is the deterministic reduction of a FetchResult:
// boilerplate stripped, converted to text and Markdown, and truncated so
// EstimatedTokens never exceeds the configured per-call budget.
type NormalizedDocument struct {
	URL             string
	CleanedText     string
	CleanedHTML     string
	Markdown        string
	EstimatedTokens int
}

// Empty reports whether the document carries no extractable content.
// Downstream extractors treat an empty document as "no items".
func (d *NormalizedDocument) Empty() bool {
	return d.CleanedText == ""
}

// ExtractionInstruction is the user-supplied steering for one run.
// Immutable for the duration of the run.
type ExtractionInstruction struct {
	Prompt            string
	MaxItems          int
	RecencyWindowDays int // 0 means no recency filter
}

// CandidateLink is a URL proposed by the link extractor, prior to being
// fetched. Candidate sets are de-duplicated by URL, first seen wins.
type CandidateLink struct {
	URL       string `json:"url"`
	TitleHint string `json:"title"`
	Reason    string `json:"reason,omitempty"`
}

// ExtractedItem is the terminal artifact for one successfully processed
// page. Fields the model could not determine are explicit nulls.
type ExtractedItem struct {
	URL         string         `json:"url"`
	Title       string         `json:"title"`
	Content     string         `json:"content"`
	PublishDate *string        `json:"publish_date"` // ISO8601 date, nil if undeterminable
	ContentType string         `json:"content_type"`
	Metadata    map[string]any `json:"metadata"`
}

// SkipRecord notes a candidate that was dropped from a run, and why.
// Skips never abort the run; they are surfaced in RunMetadata only.
type SkipRecord struct {
	URL    string `json:"url"`
	Stage  string `json:"stage"` // "fetch" or "extract"
	Reason string `json:"reason"`
}

// RunMetadata summarizes what happened during one run.
type RunMetadata struct {
	TotalLinksFound   int          `json:"total_links_found"`
	ArticlesExtracted int          `json:"articles_extracted"`
	PageType          string       `json:"page_type"`
	Skipped           []SkipRecord `json:"skipped,omitempty"`
	Anomalies         []string     `json:"anomalies,omitempty"`
}

// RunResult is the aggregate output of one run. Items preserve the
// candidate ranking order produced by the link extractor; nothing
// downstream re-sorts them.
type RunResult struct {
	Items    []ExtractedItem `json:"items"`
	Summary  *string         `json:"summary"`
	Warning  string          `json:"warning,omitempty"`
	Metadata RunMetadata     `json:"metadata"`
}

// RunRequest is the external invocation shape for one run.
type RunRequest struct {
	URL               string `json:"url"`
	Prompt            string `json:"prompt"`
	PageType          string `json:"page_type"`
	MaxItems          int    `json:"max_items,omitempty"`
	RecencyWindowDays int    `json:"time_range_days,omitempty"`
}

// Instruction derives the per-run extraction instruction from the request,
// applying the default item cap when the caller left it unset.
func (r *RunRequest) Instruction(defaultMaxItems int) ExtractionInstruction {
	maxItems := r.MaxItems
	if maxItems <= 0 {
		maxItems = defaultMaxItems
	}
	return ExtractionInstruction{
		Prompt:            r.Prompt,
		MaxItems:          maxItems,
		RecencyWindowDays: r.RecencyWindowDays,
	}
}

// Fetcher retrieves page content for a URL. Implementations do not retry;
// the caller decides what a failed fetch means for the run.
type Fetcher interface {
	Fetch(ctx context.Context, req FetchRequest) (*FetchResult, error)
}

// Normalizer reduces raw HTML to a NormalizedDocument. Deterministic:
// the same input always yields the same output, with no model calls.
type Normalizer interface {
	Normalize(url, rawHTML string) (*NormalizedDocument, error)
}

// LinkExtractor asks the model for candidate links from a listing page.
type LinkExtractor interface {
	ExtractLinks(ctx context.Context, doc *NormalizedDocument, instr ExtractionInstruction) ([]CandidateLink, error)
}

// ContentExtractor asks the model for the structured content of one page.
type ContentExtractor interface {
	ExtractContent(ctx context.Context, doc *NormalizedDocument) (*ExtractedItem, error)
}

// ModelTier selects which model variant handles a task, traded off by
// cost/capability. Link filtering is simple; content structuring is complex.
type ModelTier string

const (
	TierSimple  ModelTier = "simple"
	TierComplex ModelTier = "complex"
)

// Prompt is a fully templated model request. Construction is a pure
// function of the instruction and document, independent of the model call.
type Prompt struct {
	System string
	User   string
}

// ModelGateway is the single chokepoint for all language-model calls.
type ModelGateway interface {
	Complete(ctx context.Context, prompt Prompt, tier ModelTier) (string, error)
}
