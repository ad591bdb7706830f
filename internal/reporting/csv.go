package reporting

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"
)

var csvHeader = []string{"position", "wallet_address", "transaction_signature", "claim_id", "claimed_at"}

// WriteCSV writes the attendee list as CSV.
func WriteCSV(w io.Writer, r *Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, a := range r.Attendees {
		if err := cw.Write([]string{
			strconv.Itoa(a.Position),
			a.WalletAddress,
			a.TransactionSignature,
			a.ClaimID,
			a.ClaimedAt.UTC().Format(time.RFC3339Nano),
		}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
