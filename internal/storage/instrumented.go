package storage

import (
	"context"
	"errors"
	"time"

	"solana-pop/internal/domain"
	"solana-pop/internal/observability"
)

// Instrumented wraps a Storage and records per-operation latency and errors.
// ErrNotFound and ErrDuplicateClaim are expected outcomes and not counted as errors.
type Instrumented struct {
	next    Storage
	backend string
}

// NewInstrumented wraps next, labelling metrics with backend.
func NewInstrumented(next Storage, backend string) *Instrumented {
	return &Instrumented{next: next, backend: backend}
}

var _ Storage = (*Instrumented)(nil)

func (s *Instrumented) observe(op string, start time.Time, err error) {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrDuplicateClaim) {
		err = nil
	}
	observability.RecordDBQuery(s.backend, op, time.Since(start).Seconds(), err)
}

func (s *Instrumented) CreateEvent(ctx context.Context, e *domain.NewEvent) (*domain.Event, error) {
	start := time.Now()
	out, err := s.next.CreateEvent(ctx, e)
	s.observe("create_event", start, err)
	return out, err
}

func (s *Instrumented) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	start := time.Now()
	out, err := s.next.GetEvent(ctx, id)
	s.observe("get_event", start, err)
	return out, err
}

func (s *Instrumented) GetEventByMintAddress(ctx context.Context, mint string) (*domain.Event, error) {
	start := time.Now()
	out, err := s.next.GetEventByMintAddress(ctx, mint)
	s.observe("get_event_by_mint", start, err)
	return out, err
}

func (s *Instrumented) GetEvents(ctx context.Context) ([]*domain.Event, error) {
	start := time.Now()
	out, err := s.next.GetEvents(ctx)
	s.observe("get_events", start, err)
	return out, err
}

func (s *Instrumented) GetEventsByCreator(ctx context.Context, creator string) ([]*domain.Event, error) {
	start := time.Now()
	out, err := s.next.GetEventsByCreator(ctx, creator)
	s.observe("get_events_by_creator", start, err)
	return out, err
}

func (s *Instrumented) CreateTokenClaim(ctx context.Context, c *domain.NewTokenClaim) (*domain.TokenClaim, error) {
	start := time.Now()
	out, err := s.next.CreateTokenClaim(ctx, c)
	s.observe("create_token_claim", start, err)
	return out, err
}

func (s *Instrumented) GetTokenClaim(ctx context.Context, id string) (*domain.TokenClaim, error) {
	start := time.Now()
	out, err := s.next.GetTokenClaim(ctx, id)
	s.observe("get_token_claim", start, err)
	return out, err
}

func (s *Instrumented) GetTokenClaimsByEvent(ctx context.Context, eventID string) ([]*domain.TokenClaim, error) {
	start := time.Now()
	out, err := s.next.GetTokenClaimsByEvent(ctx, eventID)
	s.observe("get_token_claims_by_event", start, err)
	return out, err
}

func (s *Instrumented) GetTokenClaimsByWallet(ctx context.Context, wallet string) ([]*domain.TokenClaim, error) {
	start := time.Now()
	out, err := s.next.GetTokenClaimsByWallet(ctx, wallet)
	s.observe("get_token_claims_by_wallet", start, err)
	return out, err
}

func (s *Instrumented) HasWalletClaimedToken(ctx context.Context, eventID, wallet string) (bool, error) {
	start := time.Now()
	out, err := s.next.HasWalletClaimedToken(ctx, eventID, wallet)
	s.observe("has_wallet_claimed_token", start, err)
	return out, err
}

func (s *Instrumented) Ping(ctx context.Context) error {
	start := time.Now()
	err := s.next.Ping(ctx)
	s.observe("ping", start, err)
	return err
}

func (s *Instrumented) Close() error {
	return s.next.Close()
}
