package model

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrSourceUnavailable marks an adapter that cannot produce postings:
	// missing credentials, transport failure, timeout, non-2xx, bad body.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrExtractionFailed marks a description that could not be turned into
	// a schema-conforming Summary.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrAlreadyEnriched is returned by LinkSummary when the posting already
	// has a summary. It is an expected race outcome.
	ErrAlreadyEnriched = errors.New("posting already enriched")

	// ErrDuplicateIdentity is returned by Add when a posting with the same
	// identity key is already stored.
	ErrDuplicateIdentity = errors.New("duplicate posting identity")

	ErrNotFound     = errors.New("not found")
	ErrNoSources    = errors.New("no sources enabled")
	ErrInvalidQuery = errors.New("invalid search query")
)

// HTTPError wraps an HTTP status code so retry logic can inspect it.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// SourceError reports why a named source produced no postings.
// It matches ErrSourceUnavailable and also unwraps to its cause.
type SourceError struct {
	Source string
	Err    error
}

// Unavailable wraps err as a SourceError for source. A nil err stays nil.
func Unavailable(source string, err error) error {
	if err == nil {
		return nil
	}
	var se *SourceError
	if errors.As(err, &se) {
		return err
	}
	return &SourceError{Source: source, Err: err}
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Source, ErrSourceUnavailable, e.Err)
}

func (e *SourceError) Unwrap() []error {
	return []error{ErrSourceUnavailable, e.Err}
}

// ExtractionError reports a failed structured extraction.
// It matches ErrExtractionFailed and also unwraps to its cause.
type ExtractionError struct {
	Err error
}

// ExtractionFailed wraps err as an ExtractionError. A nil err stays nil.
func ExtractionFailed(err error) error {
	if err == nil {
		return nil
	}
	var ee *ExtractionError
	if errors.As(err, &ee) {
		return err
	}
	return &ExtractionError{Err: err}
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%v: %v", ErrExtractionFailed, e.Err)
}

func (e *ExtractionError) Unwrap() []error {
	return []error{ErrExtractionFailed, e.Err}
}
