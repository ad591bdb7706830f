package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"solana-pop/internal/domain"
)

// eventDoc is the JSONB body of a pop_events row. Identity and creation time
// live in their own columns.
type eventDoc struct {
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Date             time.Time `json:"date"`
	Creator          string    `json:"creator"`
	TokenMintAddress string    `json:"tokenMintAddress"`
	QRCodeData       string    `json:"qrCodeData"`
	MaxAttendees     *int      `json:"maxAttendees,omitempty"`
	ImageURL         *string   `json:"imageUrl,omitempty"`
}

func newEventDoc(in *domain.NewEvent) eventDoc {
	return eventDoc{
		Name:             in.Name,
		Description:      in.Description,
		Date:             in.Date.UTC(),
		Creator:          in.Creator,
		TokenMintAddress: in.TokenMintAddress,
		QRCodeData:       in.QRCodeData,
		MaxAttendees:     in.MaxAttendees,
		ImageURL:         in.ImageURL,
	}
}

func (d eventDoc) event(id string, createdAt time.Time) *domain.Event {
	in := domain.NewEvent{
		Name:             d.Name,
		Description:      d.Description,
		Date:             d.Date,
		Creator:          d.Creator,
		TokenMintAddress: d.TokenMintAddress,
		QRCodeData:       d.QRCodeData,
		MaxAttendees:     d.MaxAttendees,
		ImageURL:         d.ImageURL,
	}
	return in.Build(id, createdAt.UTC())
}

// claimDoc is the JSONB body of a pop_token_claims row.
type claimDoc struct {
	EventID              string `json:"eventId"`
	WalletAddress        string `json:"walletAddress"`
	TransactionSignature string `json:"transactionSignature"`
}

func (d claimDoc) claim(id string, claimedAt time.Time) *domain.TokenClaim {
	in := domain.NewTokenClaim{
		EventID:              d.EventID,
		WalletAddress:        d.WalletAddress,
		TransactionSignature: d.TransactionSignature,
	}
	return in.Build(id, claimedAt.UTC())
}

func decodeDoc(raw []byte, dst any) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}
