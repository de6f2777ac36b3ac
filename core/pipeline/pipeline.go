// Package pipeline implements the page-type router and aggregator.
// A Runner holds a registry of page-type sequences; each page type is a
// fixed fetch→extract sequence registered independently, so adding a page
// type means registering a new sequence, not growing a shared conditional.
//
// Runs are stateless and independent: nothing is shared between concurrent
// runs, and all per-run accumulation is owned by the sequence for the
// lifetime of that run.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/gaurav-prasanna/briefpipe/core"
)

// DefaultMaxItems caps candidate links when the caller does not set one.
const DefaultMaxItems = 10

// DefaultConcurrency bounds how many per-item fetch+extract steps run at
// once within a single run, to respect provider rate limits.
const DefaultConcurrency = 4

// ErrUnknownPageType reports a page type with no registered sequence.
var ErrUnknownPageType = errors.New("unknown page type")

// Deps bundles the pipeline stages a sequence runs over.
type Deps struct {
	Fetcher    core.Fetcher
	Normalizer core.Normalizer
	Links      core.LinkExtractor
	Content    core.ContentExtractor

	// Concurrency bounds per-item work inside one run.
	Concurrency int
	// RenderPages asks the fetch provider for JS rendering on every fetch.
	RenderPages bool

	Log zerolog.Logger
}

// Sequence executes the fixed step order for one page type.
type Sequence interface {
	Run(ctx context.Context, req core.RunRequest, instr core.ExtractionInstruction, d *Deps) (*core.RunResult, error)
}

// Runner routes run requests to the sequence registered for their page type.
type Runner struct {
	deps            Deps
	sequences       map[string]Sequence
	defaultMaxItems int
}

// NewRunner creates a Runner with the built-in page types registered:
// "listing" (link discovery plus per-item extraction), and "thread" and
// "article" (single-document extraction).
func NewRunner(deps Deps) *Runner {
	if deps.Concurrency <= 0 {
		deps.Concurrency = DefaultConcurrency
	}
	deps.Log = deps.Log.With().Str("component", "pipeline").Logger()

	r := &Runner{
		deps:            deps,
		sequences:       make(map[string]Sequence),
		defaultMaxItems: DefaultMaxItems,
	}
	r.Register("listing", &ListingSequence{})
	r.Register("thread", &SingleDocumentSequence{ContentType: "forum_thread"})
	r.Register("article", &SingleDocumentSequence{})
	return r
}

// Register adds or replaces the sequence for a page type.
func (r *Runner) Register(pageType string, seq Sequence) {
	r.sequences[pageType] = seq
}

// Run executes one end-to-end pipeline run. Root failures surface as
// errors; per-item failures are folded into the result's metadata.
func (r *Runner) Run(ctx context.Context, req core.RunRequest) (*core.RunResult, error) {
	seq, ok := r.sequences[req.PageType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPageType, req.PageType)
	}

	instr := req.Instruction(r.defaultMaxItems)

	r.deps.Log.Info().
		Str("url", req.URL).
		Str("page_type", req.PageType).
		Int("max_items", instr.MaxItems).
		Msg("run started")

	result, err := seq.Run(ctx, req, instr, &r.deps)
	if err != nil {
		r.deps.Log.Error().Err(err).Str("url", req.URL).Msg("run failed")
		return nil, err
	}

	result.Metadata.PageType = req.PageType
	if len(result.Metadata.Skipped) > 0 && result.Warning == "" {
		result.Warning = fmt.Sprintf("extraction degraded: %d of %d candidates skipped",
			len(result.Metadata.Skipped), result.Metadata.TotalLinksFound)
	}

	r.deps.Log.Info().
		Str("url", req.URL).
		Int("links_found", result.Metadata.TotalLinksFound).
		Int("articles_extracted", result.Metadata.ArticlesExtracted).
		Int("skipped", len(result.Metadata.Skipped)).
		Msg("run finished")

	return result, nil
}

// fetchAndNormalize runs the fetch and normalize steps for one URL.
func fetchAndNormalize(ctx context.Context, url string, d *Deps) (*core.NormalizedDocument, error) {
	res, err := d.Fetcher.Fetch(ctx, core.FetchRequest{URL: url, Render: d.RenderPages})
	if err != nil {
		return nil, err
	}
	return d.Normalizer.Normalize(res.FinalURL, res.RawContent)
}
