package models

import (
	"errors"
	"fmt"
)

// ErrorKind tags every failure the pipeline can produce. Callers branch on
// the kind instead of unwrapping error chains.
type ErrorKind string

const (
	ErrMissingInput      ErrorKind = "missing_input"
	ErrInvalidFormat     ErrorKind = "invalid_format"
	ErrUnsupportedSource ErrorKind = "unsupported_source"
	ErrSourceMismatch    ErrorKind = "source_mismatch"
	ErrFetchFailed       ErrorKind = "fetch_failed"
	ErrTimeout           ErrorKind = "timeout"
	ErrParseFailed       ErrorKind = "parse_failed"
	ErrCancelled         ErrorKind = "cancelled"
	ErrInternal          ErrorKind = "internal"
)

// ScrapeError is the tagged error variant carried through the pipeline.
// Field is set for parse_failed and names the missing mandatory field.
type ScrapeError struct {
	Kind  ErrorKind
	URL   string
	Field string
	Err   error
}

func (e *ScrapeError) Error() string {
	msg := string(e.Kind)
	if e.Field != "" {
		msg = fmt.Sprintf("%s: missing field %q", msg, e.Field)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// NewError builds a ScrapeError for a URL.
func NewError(kind ErrorKind, url string, err error) *ScrapeError {
	return &ScrapeError{Kind: kind, URL: url, Err: err}
}

// NewParseError reports a missing mandatory field after extraction.
func NewParseError(url, field string) *ScrapeError {
	return &ScrapeError{Kind: ErrParseFailed, URL: url, Field: field}
}

// KindOf classifies any error into an ErrorKind. Errors that are not
// ScrapeErrors are reported as internal.
func KindOf(err error) ErrorKind {
	var se *ScrapeError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ErrInternal
}
