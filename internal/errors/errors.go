// Package errors defines the geocoder's typed error hierarchy. It
// shadows the standard library package name deliberately: callers that
// need the standard library's errors.Is/errors.As should import it as
// stderrors.
package errors

import (
	"fmt"
	"time"
)

// ParseError reports a failure while parsing a query string into
// components.
type ParseError struct {
	Query     string
	Reason    string
	Cause     error
	Timestamp time.Time
}

func NewParseError(query, reason string) *ParseError {
	return &ParseError{Query: query, Reason: reason, Timestamp: time.Now()}
}

func (e *ParseError) WithCause(cause error) *ParseError {
	e.Cause = cause
	return e
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error for query %q: %s: %v", e.Query, e.Reason, e.Cause)
	}
	return fmt.Sprintf("parse error for query %q: %s", e.Query, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// IndexError reports a failure in the import pipeline or full-text
// index.
type IndexError struct {
	Stage     string
	Reason    string
	Cause     error
	Timestamp time.Time
}

func NewIndexError(stage, reason string) *IndexError {
	return &IndexError{Stage: stage, Reason: reason, Timestamp: time.Now()}
}

func (e *IndexError) WithCause(cause error) *IndexError {
	e.Cause = cause
	return e
}

func (e *IndexError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("index error in stage %q: %s: %v", e.Stage, e.Reason, e.Cause)
	}
	return fmt.Sprintf("index error in stage %q: %s", e.Stage, e.Reason)
}

func (e *IndexError) Unwrap() error { return e.Cause }

// SearchError reports a failure while executing a search query against
// the index.
type SearchError struct {
	Query     string
	Reason    string
	Cause     error
	Timestamp time.Time
}

func NewSearchError(query, reason string) *SearchError {
	return &SearchError{Query: query, Reason: reason, Timestamp: time.Now()}
}

func (e *SearchError) WithCause(cause error) *SearchError {
	e.Cause = cause
	return e
}

func (e *SearchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("search error for query %q: %s: %v", e.Query, e.Reason, e.Cause)
	}
	return fmt.Sprintf("search error for query %q: %s", e.Query, e.Reason)
}

func (e *SearchError) Unwrap() error { return e.Cause }

// DirectoryError reports a failure fetching or paging a remote index
// file.
type DirectoryError struct {
	Path      string
	Reason    string
	Cause     error
	Timestamp time.Time
}

func NewDirectoryError(path, reason string) *DirectoryError {
	return &DirectoryError{Path: path, Reason: reason, Timestamp: time.Now()}
}

func (e *DirectoryError) WithCause(cause error) *DirectoryError {
	e.Cause = cause
	return e
}

func (e *DirectoryError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("directory error for %q: %s: %v", e.Path, e.Reason, e.Cause)
	}
	return fmt.Sprintf("directory error for %q: %s", e.Path, e.Reason)
}

func (e *DirectoryError) Unwrap() error { return e.Cause }

// AdminError reports a failure resolving administrative areas for a
// POI.
type AdminError struct {
	S2Cell    uint64
	Reason    string
	Cause     error
	Timestamp time.Time
}

func NewAdminError(s2cell uint64, reason string) *AdminError {
	return &AdminError{S2Cell: s2cell, Reason: reason, Timestamp: time.Now()}
}

func (e *AdminError) WithCause(cause error) *AdminError {
	e.Cause = cause
	return e
}

func (e *AdminError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("admin resolution error for cell %d: %s: %v", e.S2Cell, e.Reason, e.Cause)
	}
	return fmt.Sprintf("admin resolution error for cell %d: %s", e.S2Cell, e.Reason)
}

func (e *AdminError) Unwrap() error { return e.Cause }

// ConfigError reports an invalid configuration value.
type ConfigError struct {
	Field     string
	Reason    string
	Timestamp time.Time
}

func NewConfigError(field, reason string) *ConfigError {
	return &ConfigError{Field: field, Reason: reason, Timestamp: time.Now()}
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %q: %s", e.Field, e.Reason)
}

// MultiError aggregates multiple errors encountered during a single
// operation (e.g. validating every field of a Config).
type MultiError struct {
	Errors []error
}

func (e *MultiError) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

func (e *MultiError) HasErrors() bool { return len(e.Errors) > 0 }

func (e *MultiError) ErrorOrNil() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

func (e *MultiError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d errors occurred:", len(e.Errors))
	for _, err := range e.Errors {
		msg += "\n\t* " + err.Error()
	}
	return msg
}
