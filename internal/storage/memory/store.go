package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"solana-pop/internal/clock"
	"solana-pop/internal/domain"
	"solana-pop/internal/storage"
)

// Store is the volatile implementation of storage.Storage.
// It owns both record maps and their ID counters; data lives for the process lifetime only.
type Store struct {
	clock clock.Clock

	mu          sync.RWMutex
	events      map[int64]*domain.Event      // keyed by event id
	claims      map[int64]*domain.TokenClaim // keyed by claim id
	nextEventID int64
	nextClaimID int64

	eventByMint map[string]int64    // token_mint_address -> event id (unique)
	claimByPair map[claimPair]int64 // (event id, wallet) -> claim id (unique)
}

type claimPair struct {
	eventID int64
	wallet  string
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used for CreatedAt / ClaimedAt.
func WithClock(c clock.Clock) Option {
	return func(s *Store) {
		if c != nil {
			s.clock = c
		}
	}
}

// NewStore creates an empty in-memory store. Counters start at 1.
func NewStore(opts ...Option) *Store {
	s := &Store{
		clock:       clock.NewSystem(),
		events:      make(map[int64]*domain.Event),
		claims:      make(map[int64]*domain.TokenClaim),
		nextEventID: 1,
		nextClaimID: 1,
		eventByMint: make(map[string]int64),
		claimByPair: make(map[claimPair]int64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Verify interface compliance at compile time.
var _ storage.Storage = (*Store)(nil)

// CreateEvent stores a new event under the next event ID.
func (s *Store) CreateEvent(_ context.Context, in *domain.NewEvent) (*domain.Event, error) {
	if in == nil {
		return nil, storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.eventByMint[in.TokenMintAddress]; exists {
		return nil, storage.ErrDuplicateKey
	}

	id := s.nextEventID
	s.nextEventID++

	e := in.Build(formatID(id), s.clock.Now())
	s.events[id] = e
	s.eventByMint[e.TokenMintAddress] = id

	return e.Clone(), nil
}

// GetEvent retrieves an event by ID. Returns ErrNotFound if not exists.
func (s *Store) GetEvent(_ context.Context, id string) (*domain.Event, error) {
	key, ok := parseID(id)
	if !ok {
		return nil, storage.ErrNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.events[key]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return e.Clone(), nil
}

// GetEventByMintAddress retrieves an event by mint address. Returns ErrNotFound if not exists.
func (s *Store) GetEventByMintAddress(_ context.Context, mint string) (*domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.eventByMint[mint]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return s.events[id].Clone(), nil
}

// GetEvents retrieves all events, ordered by created_at DESC.
func (s *Store) GetEvents(_ context.Context) ([]*domain.Event, error) {
	return s.filterEvents(func(*domain.Event) bool { return true }), nil
}

// GetEventsByCreator retrieves events of one creator, ordered by created_at DESC.
func (s *Store) GetEventsByCreator(_ context.Context, creator string) ([]*domain.Event, error) {
	return s.filterEvents(func(e *domain.Event) bool { return e.Creator == creator }), nil
}

// CreateTokenClaim stores a new claim unless the wallet already claimed the event.
func (s *Store) CreateTokenClaim(_ context.Context, in *domain.NewTokenClaim) (*domain.TokenClaim, error) {
	if in == nil {
		return nil, storage.ErrInvalidInput
	}
	eventID, ok := parseID(in.EventID)
	if !ok {
		return nil, storage.ErrInvalidReference
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pair := claimPair{eventID: eventID, wallet: in.WalletAddress}
	if _, exists := s.claimByPair[pair]; exists {
		return nil, storage.ErrDuplicateClaim
	}

	id := s.nextClaimID
	s.nextClaimID++

	c := in.Build(formatID(id), s.clock.Now())
	s.claims[id] = c
	s.claimByPair[pair] = id

	claimCopy := *c
	return &claimCopy, nil
}

// GetTokenClaim retrieves a claim by ID. Returns ErrNotFound if not exists.
func (s *Store) GetTokenClaim(_ context.Context, id string) (*domain.TokenClaim, error) {
	key, ok := parseID(id)
	if !ok {
		return nil, storage.ErrNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	c, exists := s.claims[key]
	if !exists {
		return nil, storage.ErrNotFound
	}
	claimCopy := *c
	return &claimCopy, nil
}

// GetTokenClaimsByEvent retrieves claims of one event, ordered by claimed_at DESC.
func (s *Store) GetTokenClaimsByEvent(_ context.Context, eventID string) ([]*domain.TokenClaim, error) {
	if _, ok := parseID(eventID); !ok {
		return []*domain.TokenClaim{}, nil
	}
	return s.filterClaims(func(c *domain.TokenClaim) bool { return c.EventID == eventID }), nil
}

// GetTokenClaimsByWallet retrieves claims of one wallet, ordered by claimed_at DESC.
func (s *Store) GetTokenClaimsByWallet(_ context.Context, wallet string) ([]*domain.TokenClaim, error) {
	return s.filterClaims(func(c *domain.TokenClaim) bool { return c.WalletAddress == wallet }), nil
}

// HasWalletClaimedToken reports whether a claim exists for exactly (eventID, wallet).
func (s *Store) HasWalletClaimedToken(_ context.Context, eventID, wallet string) (bool, error) {
	key, ok := parseID(eventID)
	if !ok {
		return false, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.claimByPair[claimPair{eventID: key, wallet: wallet}]
	return exists, nil
}

// Ping always succeeds.
func (s *Store) Ping(_ context.Context) error {
	return nil
}

// Close is a no-op; data is dropped with the process.
func (s *Store) Close() error {
	return nil
}

// filterEvents scans all events. Newest first; equal timestamps fall back to
// descending ID, which is insertion order.
func (s *Store) filterEvents(keep func(*domain.Event) bool) []*domain.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0, len(s.events))
	for id, e := range s.events {
		if keep(e) {
			ids = append(ids, id)
		}
	}

	sort.Slice(ids, func(i, j int) bool {
		a, b := s.events[ids[i]], s.events[ids[j]]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return ids[i] > ids[j]
	})

	result := make([]*domain.Event, 0, len(ids))
	for _, id := range ids {
		result = append(result, s.events[id].Clone())
	}
	return result
}

// filterClaims scans all claims, newest first.
func (s *Store) filterClaims(keep func(*domain.TokenClaim) bool) []*domain.TokenClaim {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0)
	for id, c := range s.claims {
		if keep(c) {
			ids = append(ids, id)
		}
	}

	sort.Slice(ids, func(i, j int) bool {
		a, b := s.claims[ids[i]], s.claims[ids[j]]
		if !a.ClaimedAt.Equal(b.ClaimedAt) {
			return a.ClaimedAt.After(b.ClaimedAt)
		}
		return ids[i] > ids[j]
	})

	result := make([]*domain.TokenClaim, 0, len(ids))
	for _, id := range ids {
		claimCopy := *s.claims[id]
		result = append(result, &claimCopy)
	}
	return result
}

// parseID accepts only the canonical decimal form produced by formatID.
func parseID(id string) (int64, bool) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 || strconv.FormatInt(n, 10) != id {
		return 0, false
	}
	return n, true
}

func formatID(n int64) string {
	return strconv.FormatInt(n, 10)
}
