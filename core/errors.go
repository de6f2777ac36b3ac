package core

import (
	"errors"
	"fmt"
)

// Every failure in the pipeline maps onto one of three error families:
// fetch, extraction, and model. Callers branch on the family and kind
// with errors.As, never on error strings.

// ErrUnparseableLinks marks a link-extraction response that could not be
// parsed. It is a soft failure: the run proceeds with zero candidates and
// the anomaly is surfaced only in run metadata.
var ErrUnparseableLinks = errors.New("unparseable link-extraction response")

// FetchErrorKind classifies why a fetch failed.
type FetchErrorKind string

const (
	FetchTransient FetchErrorKind = "transient"
	FetchBlocked   FetchErrorKind = "blocked"
	FetchNotFound  FetchErrorKind = "not_found"
)

// FetchError reports a non-success response from the fetch provider.
type FetchError struct {
	Kind       FetchErrorKind
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch %s: %s (status %d)", e.URL, e.Kind, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ExtractionErrorKind classifies why content extraction failed.
type ExtractionErrorKind string

const (
	ExtractionEmptyContent ExtractionErrorKind = "empty_content"
	ExtractionUnparseable  ExtractionErrorKind = "unparseable_response"
)

// ExtractionError reports a per-document extraction failure.
type ExtractionError struct {
	Kind ExtractionErrorKind
	URL  string
	Err  error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extract %s: %s: %v", e.URL, e.Kind, e.Err)
	}
	return fmt.Sprintf("extract %s: %s", e.URL, e.Kind)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// ModelErrorKind classifies why a model call failed.
type ModelErrorKind string

const (
	ModelRateLimited         ModelErrorKind = "rate_limited"
	ModelProviderUnavailable ModelErrorKind = "provider_unavailable"
	ModelAuthFailed          ModelErrorKind = "auth_failed"
)

// ModelError reports a model-provider failure, surfaced only after the
// gateway's single fallback attempt has also failed.
type ModelError struct {
	Kind     ModelErrorKind
	Provider string
	Err      error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("model %s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *ModelError) Unwrap() error { return e.Err }
