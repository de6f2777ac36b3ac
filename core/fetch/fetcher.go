// Package fetch implements the Fetcher interface.
// Two providers are available: HTTPFetcher performs direct HTTP GET
// requests, and ScrapeFetcher delegates to a hosted scraping API that
// can render JS-heavy pages. Neither retries; the pipeline decides what
// a failed fetch means for the run.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gaurav-prasanna/briefpipe/core"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "BriefPipe/1.0 (https://github.com/gaurav-prasanna/briefpipe)"

	// maxBodyBytes caps how much of a response we read. Pages larger than
	// this are truncated; the normalizer prunes far below it anyway.
	maxBodyBytes = 4 << 20
)

// HTTPFetcher fetches web pages via direct HTTP. It cannot execute JS;
// requests with Render set are served as plain GETs.
type HTTPFetcher struct {
	client *http.Client
}

// New creates an HTTPFetcher with a sensible timeout.
func New() *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{Timeout: defaultTimeout},
	}
}

// Fetch retrieves the content of the given URL.
func (f *HTTPFetcher) Fetch(ctx context.Context, req core.FetchRequest) (*core.FetchResult, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("User-Agent", defaultUserAgent)
	httpReq.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, &core.FetchError{Kind: core.FetchTransient, URL: req.URL, Err: err}
	}
	defer resp.Body.Close()

	if err := ClassifyStatus(req.URL, resp.StatusCode); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &core.FetchError{Kind: core.FetchTransient, URL: req.URL, Err: fmt.Errorf("reading response body: %w", err)}
	}

	finalURL := req.URL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &core.FetchResult{
		URL:         req.URL,
		FinalURL:    finalURL,
		StatusCode:  resp.StatusCode,
		RawContent:  string(body),
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

// ClassifyStatus maps an HTTP status code onto the fetch error taxonomy.
// Returns nil for 2xx.
func ClassifyStatus(url string, status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusNotFound || status == http.StatusGone:
		return &core.FetchError{Kind: core.FetchNotFound, URL: url, StatusCode: status}
	case status == http.StatusUnauthorized || status == http.StatusForbidden ||
		status == http.StatusUnavailableForLegalReasons:
		return &core.FetchError{Kind: core.FetchBlocked, URL: url, StatusCode: status}
	default:
		return &core.FetchError{Kind: core.FetchTransient, URL: url, StatusCode: status}
	}
}
