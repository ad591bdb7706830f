package domain

import "time"

// ClaimActivity is the analytics copy of a successful claim.
// Corresponds to pop_claim_activity table in ClickHouse.
type ClaimActivity struct {
	EventID              string
	ClaimID              string
	WalletAddress        string
	TransactionSignature string
	Creator              string // event creator at claim time
	ClaimedAt            time.Time
}

// DailyClaimCount is the number of claims for an event on one UTC day.
type DailyClaimCount struct {
	Day    time.Time // midnight UTC
	Claims int
}

// DayOf truncates t to midnight UTC.
func DayOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
