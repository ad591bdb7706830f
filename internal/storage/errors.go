package storage

import (
	"errors"

	"solana-pop/internal/domain"
)

// Storage errors. Events and claims are append-only.
var (
	// ErrNotFound is returned when a requested record does not exist.
	// Malformed identifiers are reported the same way.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when an event reuses a token mint address.
	ErrDuplicateKey = errors.New("duplicate key: append-only store does not allow updates")

	// ErrDuplicateClaim is returned when a wallet already claimed the event.
	ErrDuplicateClaim = errors.New("wallet already claimed this event")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = domain.ErrInvalidInput

	// ErrInvalidReference is returned when a claim references an event ID
	// that is not well-formed for the backend.
	ErrInvalidReference = errors.New("invalid event reference")

	// ErrBackendUnavailable is returned when the backend cannot be reached.
	ErrBackendUnavailable = errors.New("storage backend unavailable")
)
