package couchdb

import (
	"sync"
	"time"

	"solana-pop/internal/domain"
)

// Document types stored in the "type" field.
const (
	typeEvent     = "event"
	typeMintGuard = "mint"
	typeClaim     = "claim"
)

// sequencer hands out strictly increasing insertion stamps. Stamps start from
// the wall clock in nanoseconds so they keep rising across restarts.
type sequencer struct {
	mu   sync.Mutex
	last int64
}

func (q *sequencer) next() int64 {
	now := time.Now().UnixNano()

	q.mu.Lock()
	defer q.mu.Unlock()
	if now <= q.last {
		now = q.last + 1
	}
	q.last = now
	return now
}

// eventDoc is an event as stored in CouchDB. Creation time is Unix microseconds.
// Seq orders events created within the same microsecond.
type eventDoc struct {
	ID               string    `json:"_id,omitempty"`
	Rev              string    `json:"_rev,omitempty"`
	Type             string    `json:"type"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Date             time.Time `json:"date"`
	Creator          string    `json:"creator"`
	TokenMintAddress string    `json:"tokenMintAddress"`
	QRCodeData       string    `json:"qrCodeData"`
	MaxAttendees     *int      `json:"maxAttendees,omitempty"`
	ImageURL         *string   `json:"imageUrl,omitempty"`
	CreatedAt        int64     `json:"createdAt"`
	Seq              int64     `json:"seq"`
}

func newEventDoc(in *domain.NewEvent, createdAt time.Time, seq int64) eventDoc {
	return eventDoc{
		Type:             typeEvent,
		Name:             in.Name,
		Description:      in.Description,
		Date:             in.Date.UTC(),
		Creator:          in.Creator,
		TokenMintAddress: in.TokenMintAddress,
		QRCodeData:       in.QRCodeData,
		MaxAttendees:     in.MaxAttendees,
		ImageURL:         in.ImageURL,
		CreatedAt:        createdAt.UnixMicro(),
		Seq:              seq,
	}
}

func (d *eventDoc) event() *domain.Event {
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
	return in.Build(d.ID, time.UnixMicro(d.CreatedAt).UTC())
}

// mintGuardDoc reserves a token mint address in the events database.
type mintGuardDoc struct {
	Type             string `json:"type"`
	TokenMintAddress string `json:"tokenMintAddress"`
}

// claimDoc is a token claim as stored in CouchDB. Its _id is the claim key.
type claimDoc struct {
	ID                   string `json:"_id,omitempty"`
	Rev                  string `json:"_rev,omitempty"`
	Type                 string `json:"type"`
	EventID              string `json:"eventId"`
	WalletAddress        string `json:"walletAddress"`
	TransactionSignature string `json:"transactionSignature"`
	ClaimedAt            int64  `json:"claimedAt"`
	Seq                  int64  `json:"seq"`
}

func (d *claimDoc) claim() *domain.TokenClaim {
	return &domain.TokenClaim{
		ID:                   d.ID,
		EventID:              d.EventID,
		WalletAddress:        d.WalletAddress,
		TransactionSignature: d.TransactionSignature,
		ClaimedAt:            time.UnixMicro(d.ClaimedAt).UTC(),
	}
}

// newerFirst orders by timestamp, then insertion stamp, then id, all descending.
// Documents written before stamps existed carry Seq 0 and fall through to id.
func newerFirst(atI, atJ, seqI, seqJ int64, idI, idJ string) bool {
	if atI != atJ {
		return atI > atJ
	}
	if seqI != seqJ {
		return seqI > seqJ
	}
	return idI > idJ
}
