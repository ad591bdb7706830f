package claims

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-pop/internal/clock"
	"solana-pop/internal/domain"
	"solana-pop/internal/logging"
	"solana-pop/internal/solana"
	"solana-pop/internal/solana/stub"
	"solana-pop/internal/storage"
	"solana-pop/internal/storage/memory"
)

type recordingPublisher struct {
	mu     sync.Mutex
	claims []domain.TokenClaim
}

func (p *recordingPublisher) Publish(c domain.TokenClaim) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.claims = append(p.claims, c)
}

// failingActivity drops every Record but still answers reads.
type failingActivity struct {
	*memory.ClaimActivityStore
}

func (failingActivity) Record(context.Context, *domain.ClaimActivity) error {
	return errors.New("clickhouse down")
}

type failingMinter struct{}

func (failingMinter) MintEventToken(context.Context, solana.MintRequest) (*solana.MintResult, error) {
	return nil, errors.New("rpc unavailable")
}

func (failingMinter) ClaimToken(context.Context, solana.ClaimRequest) (string, error) {
	return "", errors.New("rpc unavailable")
}

type fixture struct {
	svc       *Service
	store     *memory.Store
	minter    *stub.Minter
	activity  *memory.ClaimActivityStore
	publisher *recordingPublisher
	clock     *clock.Manual
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		minter:    stub.NewMinter(stub.WithDelay(0)),
		activity:  memory.NewClaimActivityStore(),
		publisher: &recordingPublisher{},
		clock:     clock.NewManual(time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC)),
	}
	f.store = memory.NewStore(memory.WithClock(f.clock))
	f.svc = NewService(f.store, f.activity, f.minter,
		WithPublisher(f.publisher),
		WithLogger(logging.Discard()),
	)
	return f
}

func hackNight() domain.NewEvent {
	return domain.NewEvent{
		Name:        "Hack Night",
		Description: "Monthly hacking session",
		Date:        time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC),
		Creator:     "Wallet-A",
	}
}

func TestCreateEvent_MintsAndGeneratesQR(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	e, err := f.svc.CreateEvent(ctx, hackNight())
	require.NoError(t, err)

	assert.Equal(t, "1", e.ID)
	raw, err := base58.Decode(e.TokenMintAddress)
	require.NoError(t, err)
	assert.Len(t, raw, solana.AddressSize)
	assert.Regexp(t, `^pop-[0-9a-z]{8}$`, e.QRCodeData)

	mints := f.minter.Mints()
	require.Len(t, mints, 1)
	assert.Equal(t, "Hack Night", mints[0].EventName)
	assert.Equal(t, "Wallet-A", mints[0].Creator)
}

func TestCreateEvent_KeepsSuppliedValues(t *testing.T) {
	f := newFixture(t)

	in := hackNight()
	in.TokenMintAddress = "MintSupplied"
	in.QRCodeData = "pop-supplied"

	e, err := f.svc.CreateEvent(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "MintSupplied", e.TokenMintAddress)
	assert.Equal(t, "pop-supplied", e.QRCodeData)
	assert.Empty(t, f.minter.Mints(), "minter must not be called when a mint is supplied")
}

func TestCreateEvent_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.NewEvent)
	}{
		{"missing name", func(e *domain.NewEvent) { e.Name = "" }},
		{"missing creator", func(e *domain.NewEvent) { e.Creator = "" }},
		{"missing date", func(e *domain.NewEvent) { e.Date = time.Time{} }},
		{"zero cap", func(e *domain.NewEvent) { zero := 0; e.MaxAttendees = &zero }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			in := hackNight()
			tt.mutate(&in)

			_, err := f.svc.CreateEvent(context.Background(), in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Empty(t, f.minter.Mints(), "invalid input must not reach the minter")
		})
	}
}

func TestCreateEvent_DuplicateMint(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := hackNight()
	in.TokenMintAddress = "MintX"
	_, err := f.svc.CreateEvent(ctx, in)
	require.NoError(t, err)

	_, err = f.svc.CreateEvent(ctx, in)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestCreateEvent_MintFailure(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store, memory.NewClaimActivityStore(), failingMinter{}, WithLogger(logging.Discard()))

	_, err := svc.CreateEvent(context.Background(), hackNight())
	assert.ErrorIs(t, err, ErrMintFailed)

	events, err := store.GetEvents(context.Background())
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestClaim_Lifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	e, err := f.svc.CreateEvent(ctx, hackNight())
	require.NoError(t, err)

	has, err := f.svc.HasClaimed(ctx, e.ID, "Wallet-C")
	require.NoError(t, err)
	assert.False(t, has)

	f.clock.Advance(time.Minute)
	c, err := f.svc.Claim(ctx, domain.NewTokenClaim{EventID: e.ID, WalletAddress: "Wallet-C", TransactionSignature: "sig1"})
	require.NoError(t, err)
	assert.Equal(t, "sig1", c.TransactionSignature)
	assert.Empty(t, f.minter.Claims(), "supplied signature skips the minter")

	has, err = f.svc.HasClaimed(ctx, e.ID, "Wallet-C")
	require.NoError(t, err)
	assert.True(t, has)

	// Activity log and feed see the claim.
	n, err := f.activity.CountByEvent(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, f.publisher.claims, 1)
	assert.Equal(t, c.ID, f.publisher.claims[0].ID)

	got, err := f.svc.ClaimByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.WalletAddress, got.WalletAddress)
}

func TestClaim_SignatureFromMinter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	e, err := f.svc.CreateEvent(ctx, hackNight())
	require.NoError(t, err)

	c, err := f.svc.Claim(ctx, domain.NewTokenClaim{EventID: e.ID, WalletAddress: "Wallet-C"})
	require.NoError(t, err)
	raw, err := base58.Decode(c.TransactionSignature)
	require.NoError(t, err)
	assert.Len(t, raw, solana.SignatureSize)

	reqs := f.minter.Claims()
	require.Len(t, reqs, 1)
	assert.Equal(t, e.TokenMintAddress, reqs[0].MintAddress)
	assert.Equal(t, "Wallet-C", reqs[0].WalletAddress)
}

func TestClaim_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	capped := hackNight()
	one := 1
	capped.MaxAttendees = &one
	e, err := f.svc.CreateEvent(ctx, capped)
	require.NoError(t, err)

	_, err = f.svc.Claim(ctx, domain.NewTokenClaim{EventID: e.ID, WalletAddress: "Wallet-C", TransactionSignature: "sig1"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		in      domain.NewTokenClaim
		wantErr error
	}{
		{"duplicate", domain.NewTokenClaim{EventID: e.ID, WalletAddress: "Wallet-C"}, storage.ErrDuplicateClaim},
		{"full", domain.NewTokenClaim{EventID: e.ID, WalletAddress: "Wallet-D"}, ErrEventFull},
		{"unknown event", domain.NewTokenClaim{EventID: "999", WalletAddress: "Wallet-D"}, storage.ErrNotFound},
		{"malformed event", domain.NewTokenClaim{EventID: "abc", WalletAddress: "Wallet-D"}, storage.ErrNotFound},
		{"missing wallet", domain.NewTokenClaim{EventID: e.ID}, domain.ErrInvalidInput},
		{"missing event", domain.NewTokenClaim{WalletAddress: "Wallet-D"}, domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Claim(ctx, tt.in)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.Empty(t, f.minter.Claims(), "rejected claims must not reach the minter")
	assert.Len(t, f.publisher.claims, 1)
}

func TestClaim_ConcurrentSameWallet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	e, err := f.svc.CreateEvent(ctx, hackNight())
	require.NoError(t, err)

	const attempts = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.svc.Claim(ctx, domain.NewTokenClaim{
				EventID:              e.ID,
				WalletAddress:        "Wallet-D",
				TransactionSignature: fmt.Sprintf("sig-%d", i),
			})
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, storage.ErrDuplicateClaim)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	claims, err := f.svc.ClaimsByEvent(ctx, e.ID)
	require.NoError(t, err)
	assert.Len(t, claims, 1)
}

func TestClaim_ActivityFailureIsNotFatal(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store, failingActivity{memory.NewClaimActivityStore()}, stub.NewMinter(stub.WithDelay(0)),
		WithLogger(logging.Discard()),
	)
	ctx := context.Background()

	e, err := svc.CreateEvent(ctx, hackNight())
	require.NoError(t, err)

	_, err = svc.Claim(ctx, domain.NewTokenClaim{EventID: e.ID, WalletAddress: "Wallet-C", TransactionSignature: "sig1"})
	require.NoError(t, err)

	stats, err := svc.Stats(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Claims)
	assert.Equal(t, 0, stats.Recorded, "dropped activity rows show as a gap")
}

func TestClaim_MintFailure(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store, memory.NewClaimActivityStore(), failingMinter{}, WithLogger(logging.Discard()))
	ctx := context.Background()

	in := hackNight()
	in.TokenMintAddress = "MintX"
	e, err := svc.CreateEvent(ctx, in)
	require.NoError(t, err)

	_, err = svc.Claim(ctx, domain.NewTokenClaim{EventID: e.ID, WalletAddress: "Wallet-C"})
	assert.ErrorIs(t, err, ErrMintFailed)

	has, err := svc.HasClaimed(ctx, e.ID, "Wallet-C")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestWalletClaims(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	e1, err := f.svc.CreateEvent(ctx, hackNight())
	require.NoError(t, err)

	demo := hackNight()
	demo.Name = "Demo Day"
	f.clock.Advance(time.Hour)
	e2, err := f.svc.CreateEvent(ctx, demo)
	require.NoError(t, err)

	f.clock.Advance(time.Minute)
	_, err = f.svc.Claim(ctx, domain.NewTokenClaim{EventID: e1.ID, WalletAddress: "Wallet-C", TransactionSignature: "sig1"})
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	_, err = f.svc.Claim(ctx, domain.NewTokenClaim{EventID: e2.ID, WalletAddress: "Wallet-C", TransactionSignature: "sig2"})
	require.NoError(t, err)

	got, err := f.svc.WalletClaims(ctx, "Wallet-C")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, e2.ID, got[0].Event.ID)
	assert.Equal(t, "Demo Day", got[0].Event.Name)
	assert.Equal(t, e1.ID, got[1].Event.ID)

	empty, err := f.svc.WalletClaims(ctx, "Wallet-Z")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestWalletClaims_DanglingEvent(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store, memory.NewClaimActivityStore(), stub.NewMinter(stub.WithDelay(0)), WithLogger(logging.Discard()))
	ctx := context.Background()

	// Written directly: the store does not check that the event exists.
	_, err := store.CreateTokenClaim(ctx, &domain.NewTokenClaim{EventID: "42", WalletAddress: "Wallet-C", TransactionSignature: "sig"})
	require.NoError(t, err)

	got, err := svc.WalletClaims(ctx, "Wallet-C")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].Event)
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := hackNight()
	three := 3
	in.MaxAttendees = &three
	e, err := f.svc.CreateEvent(ctx, in)
	require.NoError(t, err)

	_, err = f.svc.Claim(ctx, domain.NewTokenClaim{EventID: e.ID, WalletAddress: "Wallet-C", TransactionSignature: "s1"})
	require.NoError(t, err)
	f.clock.Advance(24 * time.Hour)
	_, err = f.svc.Claim(ctx, domain.NewTokenClaim{EventID: e.ID, WalletAddress: "Wallet-D", TransactionSignature: "s2"})
	require.NoError(t, err)

	stats, err := f.svc.Stats(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Claims)
	assert.Equal(t, 2, stats.Recorded)
	require.NotNil(t, stats.Remaining)
	assert.Equal(t, 1, *stats.Remaining)
	require.Len(t, stats.Daily, 2)
	assert.Equal(t, 1, stats.Daily[0].Claims)
	assert.True(t, stats.Daily[0].Day.Before(stats.Daily[1].Day))

	_, err = f.svc.Stats(ctx, "999")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestWalletStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Wallet-A creates two events and attends one created by someone else.
	e1, err := f.svc.CreateEvent(ctx, hackNight())
	require.NoError(t, err)
	_, err = f.svc.CreateEvent(ctx, hackNight())
	require.NoError(t, err)

	other := hackNight()
	other.Creator = "Wallet-B"
	e3, err := f.svc.CreateEvent(ctx, other)
	require.NoError(t, err)

	_, err = f.svc.Claim(ctx, domain.NewTokenClaim{EventID: e3.ID, WalletAddress: "Wallet-A", TransactionSignature: "s1"})
	require.NoError(t, err)
	_, err = f.svc.Claim(ctx, domain.NewTokenClaim{EventID: e1.ID, WalletAddress: "Wallet-C", TransactionSignature: "s2"})
	require.NoError(t, err)

	ws, err := f.svc.WalletStats(ctx, "Wallet-A")
	require.NoError(t, err)
	assert.Equal(t, "Wallet-A", ws.WalletAddress)
	assert.Equal(t, 2, ws.EventsCreated)
	assert.Equal(t, 1, ws.EventsAttended)
	assert.Equal(t, 1, ws.TokensCollected)
	// 2*10 + 1*5 + first-event 50 + first-claim 25
	assert.Equal(t, 100, ws.TotalPoints)
	assert.Equal(t, 2, ws.Level)
	assert.Equal(t, 2, ws.AchievementsEarned)
	require.Len(t, ws.Earned, 2)
	assert.Equal(t, "first-event", ws.Earned[0].ID)
	assert.Equal(t, "first-claim", ws.Earned[1].ID)
	assert.Len(t, ws.Available, len(Achievements())-2)
}

func TestWalletStats_UnknownWallet(t *testing.T) {
	f := newFixture(t)

	ws, err := f.svc.WalletStats(context.Background(), "Wallet-Z")
	require.NoError(t, err)
	assert.Zero(t, ws.TotalPoints)
	assert.Equal(t, 1, ws.Level)
	assert.Empty(t, ws.Earned)
	assert.Len(t, ws.Available, len(Achievements()))

	_, err = f.svc.WalletStats(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNewWalletStats_Levels(t *testing.T) {
	tests := []struct {
		name                      string
		created, attended, tokens int
		wantPoints, wantLevel     int
		wantEarned                int
	}{
		{"nothing", 0, 0, 0, 0, 1, 0},
		{"one claim", 0, 1, 1, 30, 1, 1},
		{"five claims", 0, 5, 5, 150, 2, 2},
		{"five events", 5, 0, 0, 250, 3, 2},
		{"veteran", 0, 25, 25, 500, 6, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := newWalletStats("w", tt.created, tt.attended, tt.tokens)
			assert.Equal(t, tt.wantPoints, ws.TotalPoints)
			assert.Equal(t, tt.wantLevel, ws.Level)
			assert.Equal(t, tt.wantEarned, ws.AchievementsEarned)
			assert.Equal(t, len(Achievements()), len(ws.Earned)+len(ws.Available))
		})
	}
}
