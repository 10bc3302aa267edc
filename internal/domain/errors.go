package domain

import "errors"

// Sentinel errors shared across repositories and services.
var (
	// ErrNotFound means the requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput means the input failed validation at a boundary.
	ErrInvalidInput = errors.New("invalid input")
	// ErrConflict means a concurrent status mutation won the race; the caller
	// should refetch and retry.
	ErrConflict = errors.New("concurrent modification conflict")
	// ErrDuplicateEvent means an interview row already exists for the external
	// event identifier. Callers treat it as an already-applied success.
	ErrDuplicateEvent = errors.New("duplicate calendar event")
	// ErrUpstreamUnavailable means a call to the scheduling provider failed.
	ErrUpstreamUnavailable = errors.New("scheduling provider unavailable")
)
