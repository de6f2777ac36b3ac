package pipeline

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/gaurav-prasanna/briefpipe/core"
)

// ListingSequence handles pages whose primary content is a set of links:
// FETCH_ROOT → EXTRACT_LINKS → FOR_EACH(FETCH_ITEM → EXTRACT_CONTENT) →
// AGGREGATE. Root fetch and link extraction failures fail the run;
// per-item failures are recorded and skipped.
type ListingSequence struct{}

// itemResult is one per-candidate slot. Exactly one of item or skip is set.
type itemResult struct {
	item *core.ExtractedItem
	skip *core.SkipRecord
}

func (s *ListingSequence) Run(ctx context.Context, req core.RunRequest, instr core.ExtractionInstruction, d *Deps) (*core.RunResult, error) {
	result := &core.RunResult{Items: []core.ExtractedItem{}}

	rootDoc, err := fetchAndNormalize(ctx, req.URL, d)
	if err != nil {
		// Root failure is fatal for the whole run.
		return nil, err
	}

	links, err := d.Links.ExtractLinks(ctx, rootDoc, instr)
	if err != nil {
		if !errors.Is(err, core.ErrUnparseableLinks) {
			// No item list to proceed with; the run fails.
			return nil, err
		}
		result.Metadata.Anomalies = append(result.Metadata.Anomalies, err.Error())
		links = nil
	}

	result.Metadata.TotalLinksFound = len(links)
	if len(links) == 0 {
		return result, nil
	}

	// Per-item work runs concurrently under a bounded limit. Results land
	// in indexed slots so the final order reflects the candidate ranking,
	// not completion order. Workers never return errors: a failed item
	// becomes a skip record, not an aborted run.
	slots := make([]itemResult, len(links))
	g := &errgroup.Group{}
	g.SetLimit(d.Concurrency)
	for i, link := range links {
		g.Go(func() error {
			slots[i] = processCandidate(ctx, link, d)
			return nil
		})
	}
	_ = g.Wait()

	for _, slot := range slots {
		if slot.skip != nil {
			result.Metadata.Skipped = append(result.Metadata.Skipped, *slot.skip)
			continue
		}
		if slot.item != nil {
			result.Items = append(result.Items, *slot.item)
		}
	}
	result.Metadata.ArticlesExtracted = len(result.Items)
	return result, nil
}

// processCandidate fetches and extracts one candidate link. All failures
// fold into a skip record.
func processCandidate(ctx context.Context, link core.CandidateLink, d *Deps) itemResult {
	doc, err := fetchAndNormalize(ctx, link.URL, d)
	if err != nil {
		d.Log.Warn().Err(err).Str("url", link.URL).Msg("candidate fetch failed, skipping")
		return itemResult{skip: &core.SkipRecord{URL: link.URL, Stage: "fetch", Reason: err.Error()}}
	}

	item, err := d.Content.ExtractContent(ctx, doc)
	if err != nil {
		d.Log.Warn().Err(err).Str("url", link.URL).Msg("candidate extraction failed, skipping")
		return itemResult{skip: &core.SkipRecord{URL: link.URL, Stage: "extract", Reason: err.Error()}}
	}

	if item.Title == "" {
		item.Title = link.TitleHint
	}
	return itemResult{item: item}
}

// SingleDocumentSequence handles page types whose content is one document
// (an article, a forum thread): FETCH_ROOT → EXTRACT_CONTENT → AGGREGATE.
type SingleDocumentSequence struct {
	// ContentType overrides the model's classification when set.
	ContentType string
}

func (s *SingleDocumentSequence) Run(ctx context.Context, req core.RunRequest, _ core.ExtractionInstruction, d *Deps) (*core.RunResult, error) {
	result := &core.RunResult{Items: []core.ExtractedItem{}}

	doc, err := fetchAndNormalize(ctx, req.URL, d)
	if err != nil {
		return nil, err
	}

	item, err := d.Content.ExtractContent(ctx, doc)
	if err != nil {
		var extErr *core.ExtractionError
		if errors.As(err, &extErr) && extErr.Kind == core.ExtractionEmptyContent {
			// A page with nothing to extract is a valid empty result.
			result.Metadata.Anomalies = append(result.Metadata.Anomalies, err.Error())
			return result, nil
		}
		return nil, err
	}

	if s.ContentType != "" {
		item.ContentType = s.ContentType
	}
	result.Items = append(result.Items, *item)
	result.Metadata.TotalLinksFound = 1
	result.Metadata.ArticlesExtracted = 1
	return result, nil
}
