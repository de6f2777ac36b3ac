package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gaurav-prasanna/briefpipe/core"
)

// staticExtensions are file extensions never worth extracting.
var staticExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".svg": true, ".webp": true, ".ico": true, ".bmp": true,
	".css": true, ".js": true, ".mjs": true,
	".woff": true, ".woff2": true, ".ttf": true, ".eot": true,
	".mp4": true, ".webm": true, ".mp3": true, ".wav": true,
	".zip": true, ".tar": true, ".gz": true,
}

// ModelLinkExtractor asks the model gateway for candidate links.
type ModelLinkExtractor struct {
	gateway core.ModelGateway
	log     zerolog.Logger
}

// NewLinkExtractor creates a ModelLinkExtractor.
func NewLinkExtractor(gateway core.ModelGateway, log zerolog.Logger) *ModelLinkExtractor {
	return &ModelLinkExtractor{
		gateway: gateway,
		log:     log.With().Str("component", "link_extractor").Logger(),
	}
}

// ExtractLinks returns up to instr.MaxItems candidate links from a listing
// page, in the order the model ranked them. The model defines the ranking;
// no independent re-ranking happens here. A malformed model response
// returns core.ErrUnparseableLinks, which the pipeline treats as zero
// candidates and records as an anomaly. Gateway errors propagate so the
// run can fail when there is no item list to proceed with.
func (e *ModelLinkExtractor) ExtractLinks(ctx context.Context, doc *core.NormalizedDocument, instr core.ExtractionInstruction) ([]core.CandidateLink, error) {
	if doc.Empty() {
		return nil, nil
	}

	prompt := BuildLinkPrompt(doc, instr)
	raw, err := e.gateway.Complete(ctx, prompt, core.TierSimple)
	if err != nil {
		return nil, err
	}

	var candidates []core.CandidateLink
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &candidates); err != nil {
		e.log.Warn().Err(err).Str("url", doc.URL).Msg("unparseable link response, treating as zero candidates")
		return nil, fmt.Errorf("%w: %v", core.ErrUnparseableLinks, err)
	}

	return sanitizeCandidates(candidates, doc.URL, instr.MaxItems), nil
}

// sanitizeCandidates resolves relative URLs against the listing page,
// drops static assets and non-HTTP schemes, de-duplicates by normalized
// URL (first seen wins), and caps the result at maxItems preserving
// model order.
func sanitizeCandidates(candidates []core.CandidateLink, baseURL string, maxItems int) []core.CandidateLink {
	base, _ := url.Parse(baseURL)

	seen := make(map[string]bool)
	var out []core.CandidateLink
	for _, c := range candidates {
		resolved := resolveCandidateURL(c.URL, base)
		if resolved == "" || isStaticAsset(resolved) {
			continue
		}
		key := normalizeURL(resolved)
		if seen[key] {
			continue
		}
		seen[key] = true

		c.URL = resolved
		out = append(out, c)
		if maxItems > 0 && len(out) >= maxItems {
			break
		}
	}
	return out
}

// resolveCandidateURL resolves a possibly relative URL against the listing
// page, rejecting anything that is not plain HTTP(S) content.
func resolveCandidateURL(href string, base *url.URL) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "tel:") || strings.HasPrefix(href, "#") {
		return ""
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base != nil {
		parsed = base.ResolveReference(parsed)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ""
	}
	parsed.Fragment = ""
	return parsed.String()
}

// isStaticAsset checks if a URL points to a static asset.
func isStaticAsset(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	ext := strings.ToLower(path.Ext(parsed.Path))
	return staticExtensions[ext]
}

// normalizeURL strips fragments and trailing slashes for deduplication.
func normalizeURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	parsed.Fragment = ""
	if parsed.Path != "/" {
		parsed.Path = strings.TrimSuffix(parsed.Path, "/")
	}
	return parsed.String()
}
