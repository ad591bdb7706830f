package couchdb

import (
	"context"
	"fmt"
	"sort"

	"github.com/go-kivik/kivik/v4"

	"solana-pop/internal/clock"
	"solana-pop/internal/domain"
	"solana-pop/internal/idhash"
	"solana-pop/internal/storage"
)

// findLimit caps Mango result sets. CouchDB defaults to 25 when no limit is given.
const findLimit = 100000

// Store implements storage.Storage on two CouchDB databases.
// Event ids are CouchDB-generated; claim ids are claim keys, so the
// (event, wallet) pair is unique by construction.
type Store struct {
	client *Client
	events *kivik.DB
	claims *kivik.DB
	clock  clock.Clock
	seq    sequencer
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

// NewStore creates a Store over <prefix>events and <prefix>token_claims.
// The databases must exist; see EnsureDatabases. The store takes ownership of client.
func NewStore(client *Client, prefix string, opts ...Option) *Store {
	s := &Store{
		client: client,
		events: client.DB(prefix + eventsDB),
		claims: client.DB(prefix + claimsDB),
		clock:  clock.NewSystem(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Compile-time interface check.
var _ storage.Storage = (*Store)(nil)

// CreateEvent reserves the mint address, then stores the event document.
// Returns ErrDuplicateKey if the mint address is taken.
func (s *Store) CreateEvent(ctx context.Context, in *domain.NewEvent) (*domain.Event, error) {
	if in == nil {
		return nil, storage.ErrInvalidInput
	}

	guardID := mintGuardID(in.TokenMintAddress)
	guardRev, err := s.events.Put(ctx, guardID, mintGuardDoc{
		Type:             typeMintGuard,
		TokenMintAddress: in.TokenMintAddress,
	})
	if err != nil {
		if isConflict(err) {
			return nil, storage.ErrDuplicateKey
		}
		return nil, wrapError("reserve mint address", err)
	}

	doc := newEventDoc(in, s.clock.Now(), s.seq.next())
	id, _, err := s.events.CreateDoc(ctx, doc)
	if err != nil {
		// Release the reservation so the mint address can be retried.
		_, _ = s.events.Delete(ctx, guardID, guardRev)
		return nil, wrapError("insert event", err)
	}

	doc.ID = id
	return doc.event(), nil
}

// GetEvent retrieves an event by ID. Returns ErrNotFound if not exists.
func (s *Store) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	if !isEventID(id) {
		return nil, storage.ErrNotFound
	}

	var doc eventDoc
	if err := s.events.Get(ctx, id).ScanDoc(&doc); err != nil {
		if isNotFound(err) {
			return nil, storage.ErrNotFound
		}
		return nil, wrapError("get event", err)
	}
	if doc.Type != typeEvent {
		return nil, storage.ErrNotFound
	}
	return doc.event(), nil
}

// GetEventByMintAddress retrieves an event by token mint address. Returns ErrNotFound if not exists.
func (s *Store) GetEventByMintAddress(ctx context.Context, mint string) (*domain.Event, error) {
	events, err := s.findEvents(ctx, map[string]interface{}{
		"type":             typeEvent,
		"tokenMintAddress": mint,
	})
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, storage.ErrNotFound
	}
	return events[0], nil
}

// GetEvents retrieves all events, newest first.
func (s *Store) GetEvents(ctx context.Context) ([]*domain.Event, error) {
	return s.findEvents(ctx, map[string]interface{}{"type": typeEvent})
}

// GetEventsByCreator retrieves events of one creator, newest first.
func (s *Store) GetEventsByCreator(ctx context.Context, creator string) ([]*domain.Event, error) {
	return s.findEvents(ctx, map[string]interface{}{
		"type":    typeEvent,
		"creator": creator,
	})
}

// CreateTokenClaim stores a claim under its claim key.
// Returns ErrInvalidReference for a malformed event id and ErrDuplicateClaim
// if the wallet already claimed the event.
func (s *Store) CreateTokenClaim(ctx context.Context, in *domain.NewTokenClaim) (*domain.TokenClaim, error) {
	if in == nil {
		return nil, storage.ErrInvalidInput
	}
	if !isEventID(in.EventID) {
		return nil, storage.ErrInvalidReference
	}

	doc := claimDoc{
		ID:                   idhash.ComputeClaimKey(in.EventID, in.WalletAddress),
		Type:                 typeClaim,
		EventID:              in.EventID,
		WalletAddress:        in.WalletAddress,
		TransactionSignature: in.TransactionSignature,
		ClaimedAt:            s.clock.Now().UnixMicro(),
		Seq:                  s.seq.next(),
	}

	// Creating a document without _rev fails with 409 if the id exists.
	if _, err := s.claims.Put(ctx, doc.ID, doc); err != nil {
		if isConflict(err) {
			return nil, storage.ErrDuplicateClaim
		}
		return nil, wrapError("insert claim", err)
	}
	return doc.claim(), nil
}

// GetTokenClaim retrieves a claim by ID. Returns ErrNotFound if not exists.
func (s *Store) GetTokenClaim(ctx context.Context, id string) (*domain.TokenClaim, error) {
	if !isClaimID(id) {
		return nil, storage.ErrNotFound
	}

	var doc claimDoc
	if err := s.claims.Get(ctx, id).ScanDoc(&doc); err != nil {
		if isNotFound(err) {
			return nil, storage.ErrNotFound
		}
		return nil, wrapError("get claim", err)
	}
	return doc.claim(), nil
}

// GetTokenClaimsByEvent retrieves claims of one event, newest first.
func (s *Store) GetTokenClaimsByEvent(ctx context.Context, eventID string) ([]*domain.TokenClaim, error) {
	if !isEventID(eventID) {
		return []*domain.TokenClaim{}, nil
	}
	return s.findClaims(ctx, map[string]interface{}{
		"type":    typeClaim,
		"eventId": eventID,
	})
}

// GetTokenClaimsByWallet retrieves claims of one wallet, newest first.
func (s *Store) GetTokenClaimsByWallet(ctx context.Context, wallet string) ([]*domain.TokenClaim, error) {
	return s.findClaims(ctx, map[string]interface{}{
		"type":          typeClaim,
		"walletAddress": wallet,
	})
}

// HasWalletClaimedToken reports whether a claim exists for exactly (eventID, wallet).
// The claim key is derived, so this is a single document lookup.
func (s *Store) HasWalletClaimedToken(ctx context.Context, eventID, wallet string) (bool, error) {
	if !isEventID(eventID) {
		return false, nil
	}

	err := s.claims.Get(ctx, idhash.ComputeClaimKey(eventID, wallet)).Err()
	switch {
	case err == nil:
		return true, nil
	case isNotFound(err):
		return false, nil
	default:
		return false, wrapError("check wallet claim", err)
	}
}

// Ping verifies the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	up, err := s.client.Ping(ctx)
	if err != nil {
		return fmt.Errorf("ping couchdb: %w: %w", storage.ErrBackendUnavailable, err)
	}
	if !up {
		return fmt.Errorf("ping couchdb: %w", storage.ErrBackendUnavailable)
	}
	return nil
}

// Close releases the client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) findEvents(ctx context.Context, selector map[string]interface{}) ([]*domain.Event, error) {
	rows := s.events.Find(ctx, map[string]interface{}{"selector": selector}, kivik.Params(map[string]interface{}{
		"limit": findLimit,
	}))
	defer rows.Close()

	var docs []eventDoc
	for rows.Next() {
		var doc eventDoc
		if err := rows.ScanDoc(&doc); err != nil {
			return nil, fmt.Errorf("scan event document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError("find events", err)
	}

	sort.Slice(docs, func(i, j int) bool {
		return newerFirst(docs[i].CreatedAt, docs[j].CreatedAt, docs[i].Seq, docs[j].Seq, docs[i].ID, docs[j].ID)
	})

	events := make([]*domain.Event, 0, len(docs))
	for i := range docs {
		events = append(events, docs[i].event())
	}
	return events, nil
}

func (s *Store) findClaims(ctx context.Context, selector map[string]interface{}) ([]*domain.TokenClaim, error) {
	rows := s.claims.Find(ctx, map[string]interface{}{"selector": selector}, kivik.Params(map[string]interface{}{
		"limit": findLimit,
	}))
	defer rows.Close()

	var docs []claimDoc
	for rows.Next() {
		var doc claimDoc
		if err := rows.ScanDoc(&doc); err != nil {
			return nil, fmt.Errorf("scan claim document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError("find claims", err)
	}

	sort.Slice(docs, func(i, j int) bool {
		return newerFirst(docs[i].ClaimedAt, docs[j].ClaimedAt, docs[i].Seq, docs[j].Seq, docs[i].ID, docs[j].ID)
	})

	claims := make([]*domain.TokenClaim, 0, len(docs))
	for i := range docs {
		claims = append(claims, docs[i].claim())
	}
	return claims, nil
}

func mintGuardID(mint string) string {
	return "mint-" + idhash.ComputeMintKey(mint)
}

// isEventID matches CouchDB-generated ids: 32 lowercase hex characters.
func isEventID(id string) bool {
	return isLowerHex(id, 32)
}

// isClaimID matches claim keys: 64 lowercase hex characters.
func isClaimID(id string) bool {
	return isLowerHex(id, 64)
}

func isLowerHex(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
