// Package storagetest holds the behaviour every storage.Storage backend must share.
// Backend test files call Run with a harness that hands out empty stores.
package storagetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-pop/internal/domain"
	"solana-pop/internal/storage"
)

// Harness adapts one backend to the suite.
type Harness struct {
	// NewStore returns an empty store. Called once per subtest.
	NewStore func(t *testing.T) storage.Storage

	// AbsentID is well-formed for the backend but never assigned.
	AbsentID string

	// MalformedIDs are identifiers the backend cannot parse.
	MalformedIDs []string
}

// Run executes the full suite against the harness.
func Run(t *testing.T, h Harness) {
	t.Helper()

	tests := []struct {
		name string
		fn   func(t *testing.T, h Harness)
	}{
		{"CreateAndGetEvent", testCreateAndGetEvent},
		{"GetEventsByCreator", testGetEventsByCreator},
		{"GetEventsOrdering", testGetEventsOrdering},
		{"GetEventByMintAddress", testGetEventByMintAddress},
		{"DuplicateMintAddress", testDuplicateMintAddress},
		{"EmptyLists", testEmptyLists},
		{"AbsentIdentifiers", testAbsentIdentifiers},
		{"MalformedIdentifiers", testMalformedIdentifiers},
		{"ClaimLifecycle", testClaimLifecycle},
		{"DuplicateClaim", testDuplicateClaim},
		{"ConcurrentClaims", testConcurrentClaims},
		{"ClaimsByEventOrdering", testClaimsByEventOrdering},
		{"ClaimInvalidReference", testClaimInvalidReference},
		{"ReturnedRecordsAreCopies", testReturnedRecordsAreCopies},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.fn(t, h)
		})
	}
}

// NewEventFixture returns a valid event input with a unique mint address.
func NewEventFixture(name, creator string) *domain.NewEvent {
	maxAttendees := 100
	imageURL := "https://example.com/" + name + ".png"
	return &domain.NewEvent{
		Name:             name,
		Description:      name + " description",
		Date:             time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC),
		Creator:          creator,
		TokenMintAddress: "mint-" + name + "-" + creator,
		QRCodeData:       "pop-" + name,
		MaxAttendees:     &maxAttendees,
		ImageURL:         &imageURL,
	}
}

// AssertEventMatches checks that got carries the input fields of want.
func AssertEventMatches(t *testing.T, want *domain.NewEvent, got *domain.Event) {
	t.Helper()

	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.Description, got.Description)
	assert.True(t, want.Date.Equal(got.Date), "date mismatch: got %v, want %v", got.Date, want.Date)
	assert.Equal(t, want.Creator, got.Creator)
	assert.Equal(t, want.TokenMintAddress, got.TokenMintAddress)
	assert.Equal(t, want.QRCodeData, got.QRCodeData)
	assert.Equal(t, want.MaxAttendees, got.MaxAttendees)
	assert.Equal(t, want.ImageURL, got.ImageURL)
}

func assertSameEvent(t *testing.T, want, got *domain.Event) {
	t.Helper()

	assert.Equal(t, want.ID, got.ID)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt), "created_at mismatch: got %v, want %v", got.CreatedAt, want.CreatedAt)
	AssertEventMatches(t, &domain.NewEvent{
		Name:             want.Name,
		Description:      want.Description,
		Date:             want.Date,
		Creator:          want.Creator,
		TokenMintAddress: want.TokenMintAddress,
		QRCodeData:       want.QRCodeData,
		MaxAttendees:     want.MaxAttendees,
		ImageURL:         want.ImageURL,
	}, got)
}

func assertSameClaim(t *testing.T, want, got *domain.TokenClaim) {
	t.Helper()

	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.EventID, got.EventID)
	assert.Equal(t, want.WalletAddress, got.WalletAddress)
	assert.Equal(t, want.TransactionSignature, got.TransactionSignature)
	assert.True(t, want.ClaimedAt.Equal(got.ClaimedAt), "claimed_at mismatch: got %v, want %v", got.ClaimedAt, want.ClaimedAt)
}

func createEvent(t *testing.T, s storage.Storage, name, creator string) *domain.Event {
	t.Helper()

	e, err := s.CreateEvent(context.Background(), NewEventFixture(name, creator))
	require.NoError(t, err)
	return e
}

// pause keeps backend timestamps distinct between consecutive writes.
func pause() {
	time.Sleep(5 * time.Millisecond)
}

func testCreateAndGetEvent(t *testing.T, h Harness) {
	s := h.NewStore(t)
	ctx := context.Background()

	in := NewEventFixture("Hack Night", "Wallet-A")
	before := time.Now().Add(-time.Minute)

	created, err := s.CreateEvent(ctx, in)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.True(t, created.CreatedAt.After(before), "created_at %v is too old", created.CreatedAt)
	AssertEventMatches(t, in, created)

	got, err := s.GetEvent(ctx, created.ID)
	require.NoError(t, err)
	assertSameEvent(t, created, got)
}

func testGetEventsByCreator(t *testing.T, h Harness) {
	s := h.NewStore(t)
	ctx := context.Background()

	e1 := createEvent(t, s, "Hack Night", "Wallet-A")

	byA, err := s.GetEventsByCreator(ctx, "Wallet-A")
	require.NoError(t, err)
	require.Len(t, byA, 1)
	assertSameEvent(t, e1, byA[0])

	byB, err := s.GetEventsByCreator(ctx, "Wallet-B")
	require.NoError(t, err)
	assert.NotNil(t, byB)
	assert.Empty(t, byB)

	pause()
	e2 := createEvent(t, s, "Demo Day", "Wallet-A")
	createEvent(t, s, "Meetup", "Wallet-B")

	byA, err = s.GetEventsByCreator(ctx, "Wallet-A")
	require.NoError(t, err)
	require.Len(t, byA, 2)
	assert.Equal(t, e2.ID, byA[0].ID)
	assert.Equal(t, e1.ID, byA[1].ID)
}

func testGetEventsOrdering(t *testing.T, h Harness) {
	s := h.NewStore(t)
	ctx := context.Background()

	var created []*domain.Event
	for i := 0; i < 4; i++ {
		created = append(created, createEvent(t, s, fmt.Sprintf("event-%d", i), "Wallet-A"))
		pause()
	}

	all, err := s.GetEvents(ctx)
	require.NoError(t, err)
	require.Len(t, all, len(created))

	for i := range all {
		want := created[len(created)-1-i]
		assert.Equal(t, want.ID, all[i].ID, "position %d", i)
	}
	for i := 1; i < len(all); i++ {
		assert.True(t, all[i-1].CreatedAt.After(all[i].CreatedAt),
			"events not strictly descending at %d: %v then %v", i, all[i-1].CreatedAt, all[i].CreatedAt)
	}
}

func testGetEventByMintAddress(t *testing.T, h Harness) {
	s := h.NewStore(t)
	ctx := context.Background()

	_, err := s.GetEventByMintAddress(ctx, "never-used-mint")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	e1 := createEvent(t, s, "Hack Night", "Wallet-A")
	createEvent(t, s, "Demo Day", "Wallet-A")

	got, err := s.GetEventByMintAddress(ctx, e1.TokenMintAddress)
	require.NoError(t, err)
	assertSameEvent(t, e1, got)

	_, err = s.GetEventByMintAddress(ctx, "never-used-mint")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testDuplicateMintAddress(t *testing.T, h Harness) {
	s := h.NewStore(t)
	ctx := context.Background()

	in := NewEventFixture("Hack Night", "Wallet-A")
	_, err := s.CreateEvent(ctx, in)
	require.NoError(t, err)

	again := NewEventFixture("Hack Night Rerun", "Wallet-B")
	again.TokenMintAddress = in.TokenMintAddress
	_, err = s.CreateEvent(ctx, again)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	all, err := s.GetEvents(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func testEmptyLists(t *testing.T, h Harness) {
	s := h.NewStore(t)
	ctx := context.Background()

	events, err := s.GetEvents(ctx)
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)

	claims, err := s.GetTokenClaimsByWallet(ctx, "Wallet-Z")
	require.NoError(t, err)
	assert.NotNil(t, claims)
	assert.Empty(t, claims)
}

func testAbsentIdentifiers(t *testing.T, h Harness) {
	s := h.NewStore(t)
	ctx := context.Background()

	createEvent(t, s, "Hack Night", "Wallet-A")

	_, err := s.GetEvent(ctx, h.AbsentID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = s.GetTokenClaim(ctx, h.AbsentID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	claimed, err := s.HasWalletClaimedToken(ctx, h.AbsentID, "Wallet-C")
	require.NoError(t, err)
	assert.False(t, claimed)
}

func testMalformedIdentifiers(t *testing.T, h Harness) {
	s := h.NewStore(t)
	ctx := context.Background()

	e := createEvent(t, s, "Hack Night", "Wallet-A")
	_, err := s.CreateTokenClaim(ctx, &domain.NewTokenClaim{
		EventID:              e.ID,
		WalletAddress:        "Wallet-C",
		TransactionSignature: "sig1",
	})
	require.NoError(t, err)

	ids := append([]string{"", "not-an-id", "12abc", "../../etc"}, h.MalformedIDs...)
	for _, id := range ids {
		t.Run(fmt.Sprintf("id=%q", id), func(t *testing.T) {
			_, err := s.GetEvent(ctx, id)
			assert.ErrorIs(t, err, storage.ErrNotFound)

			_, err = s.GetTokenClaim(ctx, id)
			assert.ErrorIs(t, err, storage.ErrNotFound)

			claims, err := s.GetTokenClaimsByEvent(ctx, id)
			require.NoError(t, err)
			assert.Empty(t, claims)

			claimed, err := s.HasWalletClaimedToken(ctx, id, "Wallet-C")
			require.NoError(t, err)
			assert.False(t, claimed)
		})
	}
}

func testClaimLifecycle(t *testing.T, h Harness) {
	s := h.NewStore(t)
	ctx := context.Background()

	e1 := createEvent(t, s, "Hack Night", "Wallet-A")

	claimed, err := s.HasWalletClaimedToken(ctx, e1.ID, "Wallet-C")
	require.NoError(t, err)
	assert.False(t, claimed)

	claim, err := s.CreateTokenClaim(ctx, &domain.NewTokenClaim{
		EventID:              e1.ID,
		WalletAddress:        "Wallet-C",
		TransactionSignature: "sig1",
	})
	require.NoError(t, err)
	require.NotEmpty(t, claim.ID)
	assert.Equal(t, e1.ID, claim.EventID)
	assert.Equal(t, "Wallet-C", claim.WalletAddress)
	assert.Equal(t, "sig1", claim.TransactionSignature)
	assert.False(t, claim.ClaimedAt.IsZero())

	claimed, err = s.HasWalletClaimedToken(ctx, e1.ID, "Wallet-C")
	require.NoError(t, err)
	assert.True(t, claimed)

	// Other wallets and other events are unaffected.
	claimed, err = s.HasWalletClaimedToken(ctx, e1.ID, "Wallet-D")
	require.NoError(t, err)
	assert.False(t, claimed)

	got, err := s.GetTokenClaim(ctx, claim.ID)
	require.NoError(t, err)
	assertSameClaim(t, claim, got)

	byWallet, err := s.GetTokenClaimsByWallet(ctx, "Wallet-C")
	require.NoError(t, err)
	require.Len(t, byWallet, 1)
	assertSameClaim(t, claim, byWallet[0])

	byEvent, err := s.GetTokenClaimsByEvent(ctx, e1.ID)
	require.NoError(t, err)
	require.Len(t, byEvent, 1)
	assertSameClaim(t, claim, byEvent[0])
}

func testDuplicateClaim(t *testing.T, h Harness) {
	s := h.NewStore(t)
	ctx := context.Background()

	e1 := createEvent(t, s, "Hack Night", "Wallet-A")
	in := &domain.NewTokenClaim{EventID: e1.ID, WalletAddress: "Wallet-C", TransactionSignature: "sig1"}

	_, err := s.CreateTokenClaim(ctx, in)
	require.NoError(t, err)

	in.TransactionSignature = "sig2"
	_, err = s.CreateTokenClaim(ctx, in)
	assert.ErrorIs(t, err, storage.ErrDuplicateClaim)

	claimed, err := s.HasWalletClaimedToken(ctx, e1.ID, "Wallet-C")
	require.NoError(t, err)
	assert.True(t, claimed)

	byWallet, err := s.GetTokenClaimsByWallet(ctx, "Wallet-C")
	require.NoError(t, err)
	require.Len(t, byWallet, 1)
	assert.Equal(t, "sig1", byWallet[0].TransactionSignature)

	// Same wallet may claim a different event.
	e2 := createEvent(t, s, "Demo Day", "Wallet-A")
	_, err = s.CreateTokenClaim(ctx, &domain.NewTokenClaim{EventID: e2.ID, WalletAddress: "Wallet-C", TransactionSignature: "sig3"})
	require.NoError(t, err)
}

func testConcurrentClaims(t *testing.T, h Harness) {
	s := h.NewStore(t)
	ctx := context.Background()

	e1 := createEvent(t, s, "Hack Night", "Wallet-A")

	const attempts = 20
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		successes  int
		duplicates int
		others     []error
	)

	start := make(chan struct{})
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, err := s.CreateTokenClaim(ctx, &domain.NewTokenClaim{
				EventID:              e1.ID,
				WalletAddress:        "Wallet-D",
				TransactionSignature: fmt.Sprintf("sig-%d", i),
			})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, storage.ErrDuplicateClaim):
				duplicates++
			default:
				others = append(others, err)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	require.Empty(t, others)
	assert.Equal(t, 1, successes, "exactly one concurrent claim must win")
	assert.Equal(t, attempts-1, duplicates)

	byWallet, err := s.GetTokenClaimsByWallet(ctx, "Wallet-D")
	require.NoError(t, err)
	assert.Len(t, byWallet, 1)
}

func testClaimsByEventOrdering(t *testing.T, h Harness) {
	s := h.NewStore(t)
	ctx := context.Background()

	e1 := createEvent(t, s, "Hack Night", "Wallet-A")
	e2 := createEvent(t, s, "Demo Day", "Wallet-A")

	var created []*domain.TokenClaim
	for i := 0; i < 3; i++ {
		c, err := s.CreateTokenClaim(ctx, &domain.NewTokenClaim{
			EventID:              e1.ID,
			WalletAddress:        fmt.Sprintf("Wallet-%d", i),
			TransactionSignature: fmt.Sprintf("sig-%d", i),
		})
		require.NoError(t, err)
		created = append(created, c)
		pause()
	}
	_, err := s.CreateTokenClaim(ctx, &domain.NewTokenClaim{EventID: e2.ID, WalletAddress: "Wallet-0", TransactionSignature: "sig-e2"})
	require.NoError(t, err)

	byEvent, err := s.GetTokenClaimsByEvent(ctx, e1.ID)
	require.NoError(t, err)
	require.Len(t, byEvent, 3)
	for i := range byEvent {
		assert.Equal(t, created[len(created)-1-i].ID, byEvent[i].ID, "position %d", i)
		assert.Equal(t, e1.ID, byEvent[i].EventID)
	}

	byWallet, err := s.GetTokenClaimsByWallet(ctx, "Wallet-0")
	require.NoError(t, err)
	require.Len(t, byWallet, 2)
	assert.Equal(t, e2.ID, byWallet[0].EventID)
	assert.Equal(t, e1.ID, byWallet[1].EventID)
}

func testClaimInvalidReference(t *testing.T, h Harness) {
	s := h.NewStore(t)
	ctx := context.Background()

	_, err := s.CreateTokenClaim(ctx, &domain.NewTokenClaim{
		EventID:              "not-an-id",
		WalletAddress:        "Wallet-C",
		TransactionSignature: "sig1",
	})
	assert.ErrorIs(t, err, storage.ErrInvalidReference)

	claims, err := s.GetTokenClaimsByWallet(ctx, "Wallet-C")
	require.NoError(t, err)
	assert.Empty(t, claims)
}

func testReturnedRecordsAreCopies(t *testing.T, h Harness) {
	s := h.NewStore(t)
	ctx := context.Background()

	e := createEvent(t, s, "Hack Night", "Wallet-A")
	*e.MaxAttendees = 1
	e.Name = "mutated"

	got, err := s.GetEvent(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hack Night", got.Name)
	require.NotNil(t, got.MaxAttendees)
	assert.Equal(t, 100, *got.MaxAttendees)
}
