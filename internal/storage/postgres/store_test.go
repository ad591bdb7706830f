package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-pop/internal/domain"
	"solana-pop/internal/storage"
	"solana-pop/internal/storage/storagetest"
)

func TestStore_Conformance(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	storagetest.Run(t, storagetest.Harness{
		NewStore: func(t *testing.T) storage.Storage {
			truncateAll(t, pool)
			return NewStore(pool)
		},
		AbsentID:     uuid.NewString(),
		MalformedIDs: []string{"3f2504e0-4f89-11d3-9a0c", "1", "zzzzzzzz-zzzz-zzzz-zzzz-zzzzzzzzzzzz"},
	})
}

func TestStore_CanonicalIDs(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewStore(pool)
	ctx := context.Background()

	e, err := store.CreateEvent(ctx, storagetest.NewEventFixture("Hack Night", "Wallet-A"))
	require.NoError(t, err)

	parsed, err := uuid.Parse(e.ID)
	require.NoError(t, err)
	assert.Equal(t, parsed.String(), e.ID)

	// Upper-case form resolves to the same event
	got, err := store.GetEvent(ctx, fmt.Sprintf("%X", parsed[:]))
	require.NoError(t, err)
	assert.Equal(t, e.ID, got.ID)

	c, err := store.CreateTokenClaim(ctx, &domain.NewTokenClaim{
		EventID:              "urn:uuid:" + e.ID,
		WalletAddress:        "Wallet-C",
		TransactionSignature: "sig1",
	})
	require.NoError(t, err)
	assert.Equal(t, e.ID, c.EventID)

	claimed, err := store.HasWalletClaimedToken(ctx, e.ID, "Wallet-C")
	require.NoError(t, err)
	assert.True(t, claimed)
}

func TestStore_DocumentShape(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewStore(pool)
	ctx := context.Background()

	in := storagetest.NewEventFixture("Hack Night", "Wallet-A")
	in.MaxAttendees = nil
	e, err := store.CreateEvent(ctx, in)
	require.NoError(t, err)

	var name, mint string
	var hasMax bool
	err = pool.QueryRow(ctx, `
		SELECT doc->>'name', doc->>'tokenMintAddress', doc ? 'maxAttendees'
		FROM pop_events WHERE id = $1
	`, e.ID).Scan(&name, &mint, &hasMax)
	require.NoError(t, err)

	assert.Equal(t, "Hack Night", name)
	assert.Equal(t, in.TokenMintAddress, mint)
	assert.False(t, hasMax, "absent optional fields are omitted from the document")

	got, err := store.GetEvent(ctx, e.ID)
	require.NoError(t, err)
	assert.Nil(t, got.MaxAttendees)
}

func TestStore_PingAfterClose(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Ping(ctx))
	require.NoError(t, store.Close())

	err := store.Ping(ctx)
	assert.ErrorIs(t, err, storage.ErrBackendUnavailable)
}

func TestIsUnavailableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"unique violation", &pgconn.PgError{Code: pgErrUniqueViolation}, false},
		{"connection failure", &pgconn.PgError{Code: "08006"}, true},
		{"admin shutdown", &pgconn.PgError{Code: pgErrAdminShutdown}, true},
		{"cancelled", context.Canceled, false},
		{"plain", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUnavailableError(tt.err))
		})
	}
}

func TestWrapError(t *testing.T) {
	err := wrapError("get event", &pgconn.PgError{Code: "08001"})
	assert.ErrorIs(t, err, storage.ErrBackendUnavailable)

	err = wrapError("get event", &pgconn.PgError{Code: "42P01"})
	assert.NotErrorIs(t, err, storage.ErrBackendUnavailable)
	assert.Contains(t, err.Error(), "get event")
}
