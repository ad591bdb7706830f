package domain

import "time"

// TokenClaim records one wallet's successful claim of an event's token.
type TokenClaim struct {
	ID                   string    // backend-assigned, opaque
	EventID              string    // reference to Event.ID
	WalletAddress        string    // attendee wallet
	TransactionSignature string    // audit only, not verified
	ClaimedAt            time.Time // set by the backend at creation
}

// NewTokenClaim holds the caller-supplied fields of a TokenClaim.
type NewTokenClaim struct {
	EventID              string
	WalletAddress        string
	TransactionSignature string
}

// Validate checks the basic shape of the input.
func (c *NewTokenClaim) Validate() error {
	if c == nil {
		return invalid("claim", "is required")
	}
	switch {
	case c.EventID == "":
		return invalid("eventId", "must not be empty")
	case c.WalletAddress == "":
		return invalid("walletAddress", "must not be empty")
	case c.TransactionSignature == "":
		return invalid("transactionSignature", "must not be empty")
	}
	return nil
}

// Build returns the TokenClaim for the given identity and claim time.
func (c *NewTokenClaim) Build(id string, claimedAt time.Time) *TokenClaim {
	return &TokenClaim{
		ID:                   id,
		EventID:              c.EventID,
		WalletAddress:        c.WalletAddress,
		TransactionSignature: c.TransactionSignature,
		ClaimedAt:            claimedAt,
	}
}

// WalletClaim is a claim joined with the event it belongs to.
type WalletClaim struct {
	Claim *TokenClaim
	Event *Event // nil when the event no longer resolves
}
