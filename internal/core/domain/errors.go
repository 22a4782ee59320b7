package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyContent indicates the raw markup held no parseable
	// content at all. The page is aborted; the run continues.
	ErrEmptyContent = errors.New("empty page content")

	// ErrEmptyDocument indicates assembly produced nothing indexable:
	// no sections, no text, no metadata.
	ErrEmptyDocument = errors.New("document has no indexable content")

	// ErrTransient marks a retryable upstream failure (timeout, rate
	// limit, 5xx). Adapters wrap transport errors with it; the
	// orchestrator retries with bounded backoff before giving up on the
	// page.
	ErrTransient = errors.New("transient upstream error")
)
