package reporting

import (
	"context"
	"sort"
	"time"

	"solana-pop/internal/claims"
	"solana-pop/internal/clock"
	"solana-pop/internal/domain"
)

// Source is the read side the generator needs; *claims.Service satisfies it.
type Source interface {
	Event(ctx context.Context, id string) (*domain.Event, error)
	ClaimsByEvent(ctx context.Context, eventID string) ([]*domain.TokenClaim, error)
	Stats(ctx context.Context, eventID string) (*claims.EventStats, error)
}

// Generator produces reports from stored data.
type Generator struct {
	source Source
	clock  clock.Clock // injectable for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(source Source) *Generator {
	return &Generator{
		source: source,
		clock:  clock.NewSystem(),
	}
}

// WithClock sets a custom clock for deterministic output.
func (g *Generator) WithClock(c clock.Clock) *Generator {
	g.clock = c
	return g
}

// Generate produces the attendance report of one event.
// Returns storage.ErrNotFound if the event does not exist.
func (g *Generator) Generate(ctx context.Context, eventID string) (*Report, error) {
	event, err := g.source.Event(ctx, eventID)
	if err != nil {
		return nil, err
	}

	stats, err := g.source.Stats(ctx, event.ID)
	if err != nil {
		return nil, err
	}

	tokenClaims, err := g.source.ClaimsByEvent(ctx, event.ID)
	if err != nil {
		return nil, err
	}

	// Storage returns newest first; attendance reads oldest first.
	ordered := make([]*domain.TokenClaim, len(tokenClaims))
	copy(ordered, tokenClaims)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ClaimedAt.Before(ordered[j].ClaimedAt)
	})

	rows := make([]AttendeeRow, 0, len(ordered))
	for i, c := range ordered {
		rows = append(rows, AttendeeRow{
			Position:             i + 1,
			WalletAddress:        c.WalletAddress,
			TransactionSignature: c.TransactionSignature,
			ClaimID:              c.ID,
			ClaimedAt:            c.ClaimedAt,
		})
	}

	summary := Summary{
		TotalClaims:  len(rows),
		MaxAttendees: stats.MaxAttendees,
		Remaining:    stats.Remaining,
	}
	if len(rows) > 0 {
		summary.FirstClaimAt = rows[0].ClaimedAt
		summary.LastClaimAt = rows[len(rows)-1].ClaimedAt
	}

	return &Report{
		GeneratedAt: g.clock.Now().UTC().Truncate(time.Second),
		Event:       event,
		Summary:     summary,
		Attendees:   rows,
		Daily:       stats.Daily,
	}, nil
}
