package http

import (
	"context"
	"net/http"

	"solana-pop/internal/claims"
)

type WalletStatsReader interface {
	WalletStats(ctx context.Context, wallet string) (*claims.WalletStats, error)
}

// HandleWalletStats reports a wallet's points, level and achievements.
// Unknown wallets get zero counts at level 1.
func HandleWalletStats(svc WalletStatsReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := svc.WalletStats(r.Context(), r.PathValue("wallet"))
		if err != nil {
			writeServiceError(w, err, codeNotFound)
			return
		}
		writeJSON(w, http.StatusOK, newWalletStatsResponse(ws))
	}
}
