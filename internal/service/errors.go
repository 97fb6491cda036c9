package service

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the resolution and auth services. Handlers map
// these onto HTTP statuses; everything else is treated as an internal error.
var (
	// ErrInvalidID means the movie identifier failed the syntax check.
	// Returned before any I/O happens.
	ErrInvalidID = errors.New("invalid movie ID format")

	// ErrNotFound means the slug lookup produced nothing and no cached
	// fallback exists.
	ErrNotFound = errors.New("movie not found")

	// ErrUpstream means the scrape failed and no cached fallback exists.
	// Distinct from ErrNotFound: the entity may well exist.
	ErrUpstream = errors.New("upstream fetch failed")

	// ErrUnauthenticated means the presented key is missing, unknown, or
	// inactive.
	ErrUnauthenticated = errors.New("invalid or inactive API key")

	// ErrRateLimited means the key is valid but its hourly quota is spent.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrUnsupportedURL means a list URL classified as neither editorial
	// nor browse.
	ErrUnsupportedURL = errors.New("unsupported list URL")

	// ErrBatchSize means a batch request was outside the 1..50 range.
	ErrBatchSize = fmt.Errorf("batch must contain between 1 and %d ids", MaxBatchSize)
)

// InvalidFilterError reports a browse filter parameter with an unrecognized
// value, naming the offending parameter.
type InvalidFilterError struct {
	Param string
	Value string
	Valid []string
}

func (e *InvalidFilterError) Error() string {
	return fmt.Sprintf("invalid %s: %q (valid: %v)", e.Param, e.Value, e.Valid)
}
