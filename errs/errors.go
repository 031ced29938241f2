// Package errs defines the sentinel errors shared across fluxline packages.
//
// Errors are wrapped with fmt.Errorf("%w: ...") at the failure site so
// callers can match them with errors.Is while still seeing the context
// of the specific failure.
package errs

import "errors"

var (
	// ErrBadSample indicates a metric sample that cannot be decoded from
	// its wire representation.
	ErrBadSample = errors.New("bad metric sample")

	// ErrInvalidConfig indicates an invalid client or spool configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidCompression indicates an unknown or unsupported compression type.
	ErrInvalidCompression = errors.New("invalid compression type")

	// ErrBadStatus indicates a non-retryable HTTP status from the write endpoint.
	ErrBadStatus = errors.New("bad response status")

	// ErrWriteFailed indicates a write that failed after exhausting retries.
	ErrWriteFailed = errors.New("write failed")

	// ErrSpoolCorrupt indicates a spool segment with a bad header or checksum.
	ErrSpoolCorrupt = errors.New("corrupt spool segment")

	// ErrSpoolClosed indicates an operation on a closed spool.
	ErrSpoolClosed = errors.New("spool closed")
)
