package reporting

import (
	"time"

	"solana-pop/internal/domain"
)

// Report is an event's attendance report.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	Event       *domain.Event

	// Summary
	Summary Summary

	// Attendees in claim order (claimed_at ASC)
	Attendees []AttendeeRow

	// Per-day claim counts, day ASC
	Daily []domain.DailyClaimCount
}

// Summary contains headline attendance numbers.
type Summary struct {
	TotalClaims  int
	MaxAttendees *int // nil when uncapped
	Remaining    *int // nil when uncapped
	FirstClaimAt time.Time
	LastClaimAt  time.Time
}

// AttendeeRow represents one row in the attendee table.
type AttendeeRow struct {
	Position             int // 1-based claim order
	WalletAddress        string
	TransactionSignature string
	ClaimID              string
	ClaimedAt            time.Time
}
