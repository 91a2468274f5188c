package store

import "errors"

// Sentinel errors for the request store and the layers above it. Callers
// match these with errors.Is; the wrapped message carries the operation and
// identifier involved.
var (
	// ErrValidation reports a missing required field or an out-of-range enum.
	// Caller's fault, never retried.
	ErrValidation = errors.New("validation failed")

	// ErrDuplicateIdentifier reports an insert that collided on request_id.
	ErrDuplicateIdentifier = errors.New("duplicate request identifier")

	// ErrNotFound reports a lookup for a request that does not exist.
	ErrNotFound = errors.New("request not found")

	// ErrStaleState reports a compare-and-swap update that found the record
	// in a different state than the caller expected.
	ErrStaleState = errors.New("request state changed concurrently")

	// ErrStoreUnavailable reports an infrastructure-level storage failure.
	// Retryable by the caller with backoff.
	ErrStoreUnavailable = errors.New("request store unavailable")

	// ErrAllocationExhausted reports that identifier allocation gave up after
	// its bounded retries. Requires operator attention, not automatic retry.
	ErrAllocationExhausted = errors.New("request identifier allocation exhausted")

	// ErrCorruptSequence reports that a previously issued identifier could
	// not be parsed while establishing the sequence position. Fatal for the
	// request: restarting the numbering would risk reissuing history.
	ErrCorruptSequence = errors.New("request sequence state corrupt")

	// ErrInvalidTransition reports a status change the lifecycle forbids,
	// including assigning an already assigned request.
	ErrInvalidTransition = errors.New("invalid status transition")
)
