package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/briefpipe/core"
)

func TestHTTPFetcher_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body><p>hello</p></body></html>"))
	}))
	defer srv.Close()

	f := New()
	res, err := f.Fetch(context.Background(), core.FetchRequest{URL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.RawContent, "hello")
	assert.Contains(t, res.ContentType, "text/html")
}

func TestHTTPFetcher_StatusClassification(t *testing.T) {
	tests := []struct {
		status int
		kind   core.FetchErrorKind
	}{
		{http.StatusNotFound, core.FetchNotFound},
		{http.StatusGone, core.FetchNotFound},
		{http.StatusForbidden, core.FetchBlocked},
		{http.StatusUnauthorized, core.FetchBlocked},
		{http.StatusInternalServerError, core.FetchTransient},
		{http.StatusTooManyRequests, core.FetchTransient},
	}

	for _, tt := range tests {
		status := tt.status
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		f := New()
		_, err := f.Fetch(context.Background(), core.FetchRequest{URL: srv.URL})
		srv.Close()

		var fetchErr *core.FetchError
		require.ErrorAs(t, err, &fetchErr, "status %d", tt.status)
		assert.Equal(t, tt.kind, fetchErr.Kind, "status %d", tt.status)
		assert.Equal(t, tt.status, fetchErr.StatusCode)
	}
}

func TestHTTPFetcher_ConnectionError(t *testing.T) {
	f := New()
	_, err := f.Fetch(context.Background(), core.FetchRequest{URL: "http://127.0.0.1:1/unreachable"})

	var fetchErr *core.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, core.FetchTransient, fetchErr.Kind)
}

func TestScrapeFetcher_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":200,"body":"<html><body>rendered</body></html>","final_url":"https://example.com/article","content_type":"text/html"}`))
	}))
	defer srv.Close()

	f := NewScrape(ScrapeConfig{BaseURL: srv.URL, APIKey: "test-key"})
	res, err := f.Fetch(context.Background(), core.FetchRequest{URL: "https://example.com/article", Render: true})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/article", res.FinalURL)
	assert.Contains(t, res.RawContent, "rendered")
}

func TestScrapeFetcher_UpstreamNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":404,"body":"","final_url":""}`))
	}))
	defer srv.Close()

	f := NewScrape(ScrapeConfig{BaseURL: srv.URL})
	_, err := f.Fetch(context.Background(), core.FetchRequest{URL: "https://example.com/missing"})

	var fetchErr *core.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, core.FetchNotFound, fetchErr.Kind)
}

func TestScrapeFetcher_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusPaymentRequired)
	}))
	defer srv.Close()

	f := NewScrape(ScrapeConfig{BaseURL: srv.URL})
	_, err := f.Fetch(context.Background(), core.FetchRequest{URL: "https://example.com"})

	var fetchErr *core.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, core.FetchTransient, fetchErr.Kind)
	assert.True(t, errors.Unwrap(fetchErr) != nil)
}
