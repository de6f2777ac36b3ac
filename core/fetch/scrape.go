package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gaurav-prasanna/briefpipe/core"
)

const scrapeTimeout = 90 * time.Second

// ScrapeConfig configures the hosted scrape provider.
type ScrapeConfig struct {
	BaseURL string
	APIKey  string
}

// ScrapeFetcher fetches pages through a hosted scraping API. The provider
// is treated as a black box: URL in, rendered body out. Anti-bot evasion
// and JS rendering are its responsibility, not ours.
type ScrapeFetcher struct {
	cfg    ScrapeConfig
	client *http.Client
}

// NewScrape creates a ScrapeFetcher for the given provider endpoint.
func NewScrape(cfg ScrapeConfig) *ScrapeFetcher {
	return &ScrapeFetcher{
		cfg:    cfg,
		client: &http.Client{Timeout: scrapeTimeout},
	}
}

// scrapeRequest is the request body for the provider's scrape endpoint.
type scrapeRequest struct {
	URL    string `json:"url"`
	Render bool   `json:"render"`
}

// scrapeResponse is the provider's response envelope. Status reflects the
// upstream page response, not the provider call itself.
type scrapeResponse struct {
	Status      int    `json:"status"`
	Body        string `json:"body"`
	FinalURL    string `json:"final_url"`
	ContentType string `json:"content_type"`
}

// Fetch asks the provider for the rendered content of the given URL.
func (f *ScrapeFetcher) Fetch(ctx context.Context, req core.FetchRequest) (*core.FetchResult, error) {
	reqBody, err := json.Marshal(scrapeRequest{URL: req.URL, Render: req.Render})
	if err != nil {
		return nil, fmt.Errorf("marshaling scrape request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, f.cfg.BaseURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("creating scrape request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if f.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+f.cfg.APIKey)
	}

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, &core.FetchError{Kind: core.FetchTransient, URL: req.URL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, &core.FetchError{
			Kind:       core.FetchTransient,
			URL:        req.URL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("scrape provider returned %d: %s", resp.StatusCode, string(body)),
		}
	}

	var scraped scrapeResponse
	if err := json.NewDecoder(resp.Body).Decode(&scraped); err != nil {
		return nil, &core.FetchError{Kind: core.FetchTransient, URL: req.URL, Err: fmt.Errorf("decoding scrape response: %w", err)}
	}

	if err := ClassifyStatus(req.URL, scraped.Status); err != nil {
		return nil, err
	}

	finalURL := scraped.FinalURL
	if finalURL == "" {
		finalURL = req.URL
	}

	return &core.FetchResult{
		URL:         req.URL,
		FinalURL:    finalURL,
		StatusCode:  scraped.Status,
		RawContent:  scraped.Body,
		ContentType: scraped.ContentType,
	}, nil
}
