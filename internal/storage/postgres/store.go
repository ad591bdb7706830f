package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"solana-pop/internal/domain"
	"solana-pop/internal/storage"
)

// Store implements storage.Storage on PostgreSQL JSONB documents.
// Identifiers are server-generated UUIDs.
type Store struct {
	pool *Pool
}

// NewStore creates a new Store. The store takes ownership of pool.
func NewStore(pool *Pool) *Store {
	return &Store{pool: pool}
}

// Compile-time interface check.
var _ storage.Storage = (*Store)(nil)

const (
	eventColumns = `id::text, doc, created_at`
	claimColumns = `id::text, event_id::text, wallet_address, doc, claimed_at`
)

// CreateEvent inserts a new event document. Returns ErrDuplicateKey if the mint address is taken.
func (s *Store) CreateEvent(ctx context.Context, in *domain.NewEvent) (*domain.Event, error) {
	if in == nil {
		return nil, storage.ErrInvalidInput
	}

	doc := newEventDoc(in)
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}

	query := `
		INSERT INTO pop_events (doc)
		VALUES ($1)
		RETURNING id::text, created_at
	`

	var (
		id        string
		createdAt time.Time
	)
	err = s.pool.QueryRow(ctx, query, raw).Scan(&id, &createdAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, storage.ErrDuplicateKey
		}
		return nil, wrapError("insert event", err)
	}
	return doc.event(id, createdAt), nil
}

// GetEvent retrieves an event by ID. Returns ErrNotFound if not exists.
func (s *Store) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	key, ok := parseID(id)
	if !ok {
		return nil, storage.ErrNotFound
	}

	query := `SELECT ` + eventColumns + ` FROM pop_events WHERE id = $1`

	e, err := scanEvent(s.pool.QueryRow(ctx, query, key))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, wrapError("get event", err)
	}
	return e, nil
}

// GetEventByMintAddress retrieves an event by token mint address. Returns ErrNotFound if not exists.
func (s *Store) GetEventByMintAddress(ctx context.Context, mint string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM pop_events WHERE doc->>'tokenMintAddress' = $1`

	e, err := scanEvent(s.pool.QueryRow(ctx, query, mint))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, wrapError("get event by mint", err)
	}
	return e, nil
}

// GetEvents retrieves all events, newest first.
func (s *Store) GetEvents(ctx context.Context) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM pop_events
		ORDER BY created_at DESC, seq DESC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, wrapError("get events", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// GetEventsByCreator retrieves events of one creator, newest first.
func (s *Store) GetEventsByCreator(ctx context.Context, creator string) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM pop_events
		WHERE doc->>'creator' = $1
		ORDER BY created_at DESC, seq DESC
	`

	rows, err := s.pool.Query(ctx, query, creator)
	if err != nil {
		return nil, wrapError("get events by creator", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// CreateTokenClaim inserts a claim document.
// Returns ErrInvalidReference for a malformed event id and ErrDuplicateClaim
// if the wallet already claimed the event.
func (s *Store) CreateTokenClaim(ctx context.Context, in *domain.NewTokenClaim) (*domain.TokenClaim, error) {
	if in == nil {
		return nil, storage.ErrInvalidInput
	}
	eventID, ok := parseID(in.EventID)
	if !ok {
		return nil, storage.ErrInvalidReference
	}

	doc := claimDoc{
		EventID:              eventID,
		WalletAddress:        in.WalletAddress,
		TransactionSignature: in.TransactionSignature,
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode claim: %w", err)
	}

	// The (event_id, wallet_address) constraint makes this an atomic insert-if-absent.
	query := `
		INSERT INTO pop_token_claims (event_id, wallet_address, doc)
		VALUES ($1, $2, $3)
		RETURNING id::text, claimed_at
	`

	var (
		id        string
		claimedAt time.Time
	)
	err = s.pool.QueryRow(ctx, query, eventID, in.WalletAddress, raw).Scan(&id, &claimedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, storage.ErrDuplicateClaim
		}
		return nil, wrapError("insert claim", err)
	}
	return doc.claim(id, claimedAt), nil
}

// GetTokenClaim retrieves a claim by ID. Returns ErrNotFound if not exists.
func (s *Store) GetTokenClaim(ctx context.Context, id string) (*domain.TokenClaim, error) {
	key, ok := parseID(id)
	if !ok {
		return nil, storage.ErrNotFound
	}

	query := `SELECT ` + claimColumns + ` FROM pop_token_claims WHERE id = $1`

	c, err := scanClaim(s.pool.QueryRow(ctx, query, key))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, wrapError("get claim", err)
	}
	return c, nil
}

// GetTokenClaimsByEvent retrieves claims of one event, newest first.
func (s *Store) GetTokenClaimsByEvent(ctx context.Context, eventID string) ([]*domain.TokenClaim, error) {
	key, ok := parseID(eventID)
	if !ok {
		return []*domain.TokenClaim{}, nil
	}

	query := `
		SELECT ` + claimColumns + `
		FROM pop_token_claims
		WHERE event_id = $1
		ORDER BY claimed_at DESC, seq DESC
	`

	rows, err := s.pool.Query(ctx, query, key)
	if err != nil {
		return nil, wrapError("get claims by event", err)
	}
	defer rows.Close()

	return scanClaims(rows)
}

// GetTokenClaimsByWallet retrieves claims of one wallet, newest first.
func (s *Store) GetTokenClaimsByWallet(ctx context.Context, wallet string) ([]*domain.TokenClaim, error) {
	query := `
		SELECT ` + claimColumns + `
		FROM pop_token_claims
		WHERE wallet_address = $1
		ORDER BY claimed_at DESC, seq DESC
	`

	rows, err := s.pool.Query(ctx, query, wallet)
	if err != nil {
		return nil, wrapError("get claims by wallet", err)
	}
	defer rows.Close()

	return scanClaims(rows)
}

// HasWalletClaimedToken reports whether a claim exists for exactly (eventID, wallet).
func (s *Store) HasWalletClaimedToken(ctx context.Context, eventID, wallet string) (bool, error) {
	key, ok := parseID(eventID)
	if !ok {
		return false, nil
	}

	query := `
		SELECT EXISTS (
			SELECT 1 FROM pop_token_claims WHERE event_id = $1 AND wallet_address = $2
		)
	`

	var exists bool
	if err := s.pool.QueryRow(ctx, query, key, wallet).Scan(&exists); err != nil {
		return false, wrapError("check wallet claim", err)
	}
	return exists, nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w: %w", storage.ErrBackendUnavailable, err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// parseID accepts any textual UUID form and returns it in canonical form.
func parseID(id string) (string, bool) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return u.String(), true
}

// scanEvent scans a single row into an Event.
func scanEvent(row pgx.Row) (*domain.Event, error) {
	var (
		id        string
		raw       []byte
		createdAt time.Time
	)
	if err := row.Scan(&id, &raw, &createdAt); err != nil {
		return nil, err
	}

	var doc eventDoc
	if err := decodeDoc(raw, &doc); err != nil {
		return nil, err
	}
	return doc.event(id, createdAt), nil
}

// scanEvents scans multiple rows into a slice of Event.
func scanEvents(rows pgx.Rows) ([]*domain.Event, error) {
	events := make([]*domain.Event, 0)

	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapError("iterate event rows", err)
	}

	return events, nil
}

// scanClaim scans a single row into a TokenClaim.
func scanClaim(row pgx.Row) (*domain.TokenClaim, error) {
	var (
		id        string
		eventID   string
		wallet    string
		raw       []byte
		claimedAt time.Time
	)
	if err := row.Scan(&id, &eventID, &wallet, &raw, &claimedAt); err != nil {
		return nil, err
	}

	var doc claimDoc
	if err := decodeDoc(raw, &doc); err != nil {
		return nil, err
	}

	// Columns are authoritative for the lifted fields.
	doc.EventID = eventID
	doc.WalletAddress = wallet
	return doc.claim(id, claimedAt), nil
}

// scanClaims scans multiple rows into a slice of TokenClaim.
func scanClaims(rows pgx.Rows) ([]*domain.TokenClaim, error) {
	claims := make([]*domain.TokenClaim, 0)

	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("scan claim row: %w", err)
		}
		claims = append(claims, c)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapError("iterate claim rows", err)
	}

	return claims, nil
}
