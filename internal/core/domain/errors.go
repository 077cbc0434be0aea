package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown card, facet or interaction type.
	ErrUnsupportedType = errors.New("unsupported type")

	// Feed Errors.

	// ErrSessionClosed indicates the feed session was closed (topic navigated away).
	ErrSessionClosed = errors.New("feed session closed")

	// ErrStaleResult indicates a fetch completed after the filter generation changed.
	// The result is discarded; callers treat it as a silent no-op.
	ErrStaleResult = errors.New("stale fetch result")

	// ErrRetryExhausted indicates the bounded retry counter for a failed page was used up.
	ErrRetryExhausted = errors.New("retry limit reached")

	// ErrNothingToRetry indicates Retry was called without a failed page.
	ErrNothingToRetry = errors.New("no failed page to retry")

	// Data Errors.

	// ErrMalformedSource indicates a story's source URL could not be parsed.
	// Logged and suppressed during facet extraction, never surfaced to readers.
	ErrMalformedSource = errors.New("malformed source url")

	// ErrSlotConfig indicates an invalid slot table entry.
	ErrSlotConfig = errors.New("invalid slot configuration")
)
