// Package claims implements event issuance and token claiming on top of a storage backend.
package claims

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"solana-pop/internal/claimlink"
	"solana-pop/internal/domain"
	"solana-pop/internal/observability"
	"solana-pop/internal/solana"
	"solana-pop/internal/storage"
)

var (
	// ErrEventFull is returned when an event's MaxAttendees cap is reached.
	ErrEventFull = errors.New("event is full")

	// ErrMintFailed wraps minter failures.
	ErrMintFailed = errors.New("mint failed")
)

// Rejection reasons reported to metrics.
const (
	rejectDuplicate = "duplicate"
	rejectFull      = "full"
	rejectNotFound  = "event_not_found"
	rejectInvalid   = "invalid"
)

// Publisher receives every stored claim.
type Publisher interface {
	Publish(c domain.TokenClaim)
}

// Service coordinates storage, minting, the activity log and the live feed.
type Service struct {
	store     storage.Storage
	minter    solana.Minter
	activity  storage.ClaimActivityStore
	publisher Publisher
	log       logrus.FieldLogger
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher sets the live feed. Defaults to none.
func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// NewService creates a Service. activity receives a row per stored claim and
// backs the daily counts in Stats.
func NewService(store storage.Storage, activity storage.ClaimActivityStore, minter solana.Minter, opts ...Option) *Service {
	s := &Service{
		store:    store,
		minter:   minter,
		activity: activity,
		log:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateEvent stores a new event. A missing TokenMintAddress is minted and a
// missing QRCodeData is generated.
func (s *Service) CreateEvent(ctx context.Context, in domain.NewEvent) (*domain.Event, error) {
	// Mint and QR data are generated below when absent.
	check := in
	if check.TokenMintAddress == "" {
		check.TokenMintAddress = "pending"
	}
	if check.QRCodeData == "" {
		check.QRCodeData = "pending"
	}
	if err := check.Validate(); err != nil {
		return nil, err
	}

	if in.QRCodeData == "" {
		qr, err := claimlink.NewQRCodeData()
		if err != nil {
			return nil, err
		}
		in.QRCodeData = qr
	}

	if in.TokenMintAddress == "" {
		start := time.Now()
		res, err := s.minter.MintEventToken(ctx, solana.MintRequest{
			EventName:    in.Name,
			Creator:      in.Creator,
			MaxAttendees: in.MaxAttendees,
		})
		observability.RecordMintCall("mint_event_token", time.Since(start).Seconds(), err)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMintFailed, err)
		}
		in.TokenMintAddress = res.MintAddress
	}

	e, err := s.store.CreateEvent(ctx, &in)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	observability.RecordEventCreated()
	s.log.WithFields(logrus.Fields{
		"event_id": e.ID,
		"creator":  e.Creator,
		"mint":     e.TokenMintAddress,
	}).Info("event created")

	return e, nil
}

// Claim issues an event's token to a wallet. An empty TransactionSignature is
// filled by the minter. Each wallet may claim an event once.
func (s *Service) Claim(ctx context.Context, in domain.NewTokenClaim) (*domain.TokenClaim, error) {
	switch {
	case in.EventID == "":
		observability.RecordClaimRejected(rejectInvalid)
		return nil, fmt.Errorf("%w: eventId must not be empty", domain.ErrInvalidInput)
	case in.WalletAddress == "":
		observability.RecordClaimRejected(rejectInvalid)
		return nil, fmt.Errorf("%w: walletAddress must not be empty", domain.ErrInvalidInput)
	}

	event, err := s.store.GetEvent(ctx, in.EventID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			observability.RecordClaimRejected(rejectNotFound)
		}
		return nil, err
	}

	claimed, err := s.store.HasWalletClaimedToken(ctx, event.ID, in.WalletAddress)
	if err != nil {
		return nil, err
	}
	if claimed {
		observability.RecordClaimRejected(rejectDuplicate)
		return nil, storage.ErrDuplicateClaim
	}

	if event.MaxAttendees != nil {
		existing, err := s.store.GetTokenClaimsByEvent(ctx, event.ID)
		if err != nil {
			return nil, err
		}
		if len(existing) >= *event.MaxAttendees {
			observability.RecordClaimRejected(rejectFull)
			return nil, ErrEventFull
		}
	}

	if in.TransactionSignature == "" {
		start := time.Now()
		sig, err := s.minter.ClaimToken(ctx, solana.ClaimRequest{
			MintAddress:   event.TokenMintAddress,
			WalletAddress: in.WalletAddress,
		})
		observability.RecordMintCall("claim_token", time.Since(start).Seconds(), err)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMintFailed, err)
		}
		in.TransactionSignature = sig
	}

	in.EventID = event.ID
	claim, err := s.store.CreateTokenClaim(ctx, &in)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateClaim) {
			// Lost a race with a concurrent claim for the same wallet.
			observability.RecordClaimRejected(rejectDuplicate)
		}
		return nil, err
	}

	observability.RecordClaimCreated(claim.ClaimedAt.Unix())

	logger := s.log.WithFields(logrus.Fields{
		"event_id": claim.EventID,
		"claim_id": claim.ID,
		"wallet":   claim.WalletAddress,
	})

	if err := s.activity.Record(ctx, &domain.ClaimActivity{
		EventID:              claim.EventID,
		ClaimID:              claim.ID,
		WalletAddress:        claim.WalletAddress,
		TransactionSignature: claim.TransactionSignature,
		Creator:              event.Creator,
		ClaimedAt:            claim.ClaimedAt,
	}); err != nil {
		observability.RecordActivityError()
		logger.WithError(err).Warn("record claim activity")
	}

	if s.publisher != nil {
		s.publisher.Publish(*claim)
	}

	logger.Info("token claimed")
	return claim, nil
}

// Event returns one event. Returns storage.ErrNotFound if not exists.
func (s *Service) Event(ctx context.Context, id string) (*domain.Event, error) {
	return s.store.GetEvent(ctx, id)
}

// EventByMint returns the event owning a mint address. Returns storage.ErrNotFound if not exists.
func (s *Service) EventByMint(ctx context.Context, mint string) (*domain.Event, error) {
	return s.store.GetEventByMintAddress(ctx, mint)
}

// Events returns all events, newest first.
func (s *Service) Events(ctx context.Context) ([]*domain.Event, error) {
	return s.store.GetEvents(ctx)
}

// EventsByCreator returns one creator's events, newest first.
func (s *Service) EventsByCreator(ctx context.Context, creator string) ([]*domain.Event, error) {
	return s.store.GetEventsByCreator(ctx, creator)
}

// ClaimByID returns one claim. Returns storage.ErrNotFound if not exists.
func (s *Service) ClaimByID(ctx context.Context, id string) (*domain.TokenClaim, error) {
	return s.store.GetTokenClaim(ctx, id)
}

// ClaimsByEvent returns an event's claims, newest first.
func (s *Service) ClaimsByEvent(ctx context.Context, eventID string) ([]*domain.TokenClaim, error) {
	return s.store.GetTokenClaimsByEvent(ctx, eventID)
}

// HasClaimed reports whether wallet holds the event's token.
func (s *Service) HasClaimed(ctx context.Context, eventID, wallet string) (bool, error) {
	return s.store.HasWalletClaimedToken(ctx, eventID, wallet)
}

// WalletClaims returns a wallet's claims, newest first, each with its event.
// A claim whose event cannot be found is returned with a nil Event.
func (s *Service) WalletClaims(ctx context.Context, wallet string) ([]domain.WalletClaim, error) {
	claims, err := s.store.GetTokenClaimsByWallet(ctx, wallet)
	if err != nil {
		return nil, err
	}

	events := make(map[string]*domain.Event)
	result := make([]domain.WalletClaim, 0, len(claims))
	for _, c := range claims {
		e, seen := events[c.EventID]
		if !seen {
			e, err = s.store.GetEvent(ctx, c.EventID)
			switch {
			case errors.Is(err, storage.ErrNotFound):
				e = nil
			case err != nil:
				return nil, err
			}
			events[c.EventID] = e
		}
		result = append(result, domain.WalletClaim{Claim: c, Event: e})
	}
	return result, nil
}

// EventStats summarizes claiming for one event.
type EventStats struct {
	EventID      string
	Claims       int  // stored claims
	Recorded     int  // rows in the activity log; trails Claims when recording failed
	MaxAttendees *int // nil when uncapped
	Remaining    *int // nil when uncapped
	Daily        []domain.DailyClaimCount
}

// Stats returns claim counts for an event. Returns storage.ErrNotFound if not exists.
func (s *Service) Stats(ctx context.Context, eventID string) (*EventStats, error) {
	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	claims, err := s.store.GetTokenClaimsByEvent(ctx, event.ID)
	if err != nil {
		return nil, err
	}

	recorded, err := s.activity.CountByEvent(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("activity count: %w", err)
	}

	daily, err := s.activity.DailyCounts(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("daily counts: %w", err)
	}

	stats := &EventStats{
		EventID:      event.ID,
		Claims:       len(claims),
		Recorded:     recorded,
		MaxAttendees: event.MaxAttendees,
		Daily:        daily,
	}
	if event.MaxAttendees != nil {
		remaining := *event.MaxAttendees - len(claims)
		if remaining < 0 {
			remaining = 0
		}
		stats.Remaining = &remaining
	}
	return stats, nil
}

// Ping checks the primary store.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
