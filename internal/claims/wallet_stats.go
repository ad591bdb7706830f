package claims

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"solana-pop/internal/domain"
)

// Role says which side of an event an achievement counts.
type Role string

const (
	RoleCreator     Role = "creator"
	RoleParticipant Role = "participant"
)

// Points awarded per activity, on top of earned achievements.
const (
	pointsPerEventCreated = 10
	pointsPerTokenClaimed = 5
	pointsPerLevel        = 100
)

// Achievement is earned once a wallet's count for Role reaches Threshold.
type Achievement struct {
	ID          string
	Title       string
	Description string
	Role        Role
	Threshold   int
	Points      int
}

// achievements is ordered by role, then threshold.
var achievements = []Achievement{
	{ID: "first-event", Title: "First Event", Description: "Create your first event", Role: RoleCreator, Threshold: 1, Points: 50},
	{ID: "organizer", Title: "Organizer", Description: "Create five events", Role: RoleCreator, Threshold: 5, Points: 150},
	{ID: "first-claim", Title: "First Claim", Description: "Claim your first attendance token", Role: RoleParticipant, Threshold: 1, Points: 25},
	{ID: "regular", Title: "Regular", Description: "Attend five events", Role: RoleParticipant, Threshold: 5, Points: 100},
	{ID: "veteran", Title: "Veteran", Description: "Attend twenty-five events", Role: RoleParticipant, Threshold: 25, Points: 250},
}

// Achievements returns the full catalogue.
func Achievements() []Achievement {
	out := make([]Achievement, len(achievements))
	copy(out, achievements)
	return out
}

// WalletStats summarizes a wallet as creator and attendee.
type WalletStats struct {
	WalletAddress      string
	EventsCreated      int
	EventsAttended     int // distinct events claimed
	TokensCollected    int // stored claims
	TotalPoints        int
	Level              int // starts at 1, one more per pointsPerLevel points
	AchievementsEarned int
	Earned             []Achievement
	Available          []Achievement
}

// WalletStats derives points, level and achievements from the wallet's
// created events and claims. Nothing is stored; every call recomputes.
func (s *Service) WalletStats(ctx context.Context, wallet string) (*WalletStats, error) {
	if wallet == "" {
		return nil, fmt.Errorf("%w: wallet must not be empty", domain.ErrInvalidInput)
	}

	var (
		created []*domain.Event
		claimed []*domain.TokenClaim
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		created, err = s.store.GetEventsByCreator(gctx, wallet)
		return err
	})
	g.Go(func() error {
		var err error
		claimed, err = s.store.GetTokenClaimsByWallet(gctx, wallet)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	attended := make(map[string]struct{}, len(claimed))
	for _, c := range claimed {
		attended[c.EventID] = struct{}{}
	}

	return newWalletStats(wallet, len(created), len(attended), len(claimed)), nil
}

func newWalletStats(wallet string, created, attended, tokens int) *WalletStats {
	ws := &WalletStats{
		WalletAddress:   wallet,
		EventsCreated:   created,
		EventsAttended:  attended,
		TokensCollected: tokens,
		TotalPoints:     created*pointsPerEventCreated + tokens*pointsPerTokenClaimed,
		Earned:          []Achievement{},
		Available:       []Achievement{},
	}

	for _, a := range achievements {
		count := attended
		if a.Role == RoleCreator {
			count = created
		}
		if count >= a.Threshold {
			ws.Earned = append(ws.Earned, a)
			ws.TotalPoints += a.Points
		} else {
			ws.Available = append(ws.Available, a)
		}
	}

	ws.AchievementsEarned = len(ws.Earned)
	ws.Level = ws.TotalPoints/pointsPerLevel + 1
	return ws
}
