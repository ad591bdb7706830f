package solana

import "context"

// Minter creates event token families and delivers tokens to attendees.
// Implementations own the chain interaction; callers only see addresses and signatures.
type Minter interface {
	// MintEventToken creates the token family for a new event.
	MintEventToken(ctx context.Context, req MintRequest) (*MintResult, error)

	// ClaimToken delivers one token of the family to a wallet and returns the transaction signature.
	ClaimToken(ctx context.Context, req ClaimRequest) (string, error)
}

// MintRequest describes the token family to create.
type MintRequest struct {
	EventName    string
	Creator      string // wallet paying for and owning the mint
	MaxAttendees *int   // supply cap, nil for unlimited
}

// MintResult is the outcome of a successful mint.
type MintResult struct {
	MintAddress string // base58 public key of the new mint
	Signature   string // base58 transaction signature
}

// ClaimRequest describes one token delivery.
type ClaimRequest struct {
	MintAddress   string
	WalletAddress string
}
