package storage

import (
	"context"

	"solana-pop/internal/domain"
)

// EventStore provides access to events.
type EventStore interface {
	// CreateEvent stores a new event and assigns its ID and CreatedAt.
	// Returns ErrDuplicateKey if the token mint address is already used.
	CreateEvent(ctx context.Context, e *domain.NewEvent) (*domain.Event, error)

	// GetEvent retrieves an event by ID. Returns ErrNotFound if not exists,
	// including when the ID is not well-formed for the backend.
	GetEvent(ctx context.Context, id string) (*domain.Event, error)

	// GetEventByMintAddress retrieves the event minted under the given address.
	// Returns ErrNotFound if not exists.
	GetEventByMintAddress(ctx context.Context, mint string) (*domain.Event, error)

	// GetEvents retrieves all events, ordered by created_at DESC.
	GetEvents(ctx context.Context) ([]*domain.Event, error)

	// GetEventsByCreator retrieves events of one creator, ordered by created_at DESC.
	GetEventsByCreator(ctx context.Context, creator string) ([]*domain.Event, error)
}

// TokenClaimStore provides access to token claims.
type TokenClaimStore interface {
	// CreateTokenClaim stores a new claim and assigns its ID and ClaimedAt.
	// Insert-if-absent on (event_id, wallet_address): returns ErrDuplicateClaim
	// if the wallet already claimed the event. Returns ErrInvalidReference if
	// the event ID is not well-formed for the backend.
	CreateTokenClaim(ctx context.Context, c *domain.NewTokenClaim) (*domain.TokenClaim, error)

	// GetTokenClaim retrieves a claim by ID. Returns ErrNotFound if not exists.
	GetTokenClaim(ctx context.Context, id string) (*domain.TokenClaim, error)

	// GetTokenClaimsByEvent retrieves claims of one event, ordered by claimed_at DESC.
	GetTokenClaimsByEvent(ctx context.Context, eventID string) ([]*domain.TokenClaim, error)

	// GetTokenClaimsByWallet retrieves claims of one wallet, ordered by claimed_at DESC.
	GetTokenClaimsByWallet(ctx context.Context, wallet string) ([]*domain.TokenClaim, error)

	// HasWalletClaimedToken reports whether a claim exists for exactly (eventID, wallet).
	HasWalletClaimedToken(ctx context.Context, eventID, wallet string) (bool, error)
}

// Storage is the full contract every backend implements.
// Exactly one backend is active per process.
type Storage interface {
	EventStore
	TokenClaimStore

	// Ping verifies the backend is reachable. Returns ErrBackendUnavailable if not.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// ClaimActivityStore provides access to the append-only claim analytics log.
type ClaimActivityStore interface {
	// Record appends one activity row.
	Record(ctx context.Context, a *domain.ClaimActivity) error

	// CountByEvent returns the number of recorded claims for an event.
	CountByEvent(ctx context.Context, eventID string) (int, error)

	// DailyCounts returns per-day claim counts for an event, ordered by day ASC.
	DailyCounts(ctx context.Context, eventID string) ([]domain.DailyClaimCount, error)
}
