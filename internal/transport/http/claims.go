package http

import (
	"context"
	"encoding/json"
	"net/http"

	"solana-pop/internal/domain"
)

type Claimer interface {
	Claim(ctx context.Context, in domain.NewTokenClaim) (*domain.TokenClaim, error)
}

type ClaimGetter interface {
	ClaimByID(ctx context.Context, id string) (*domain.TokenClaim, error)
}

type EventClaimLister interface {
	ClaimsByEvent(ctx context.Context, eventID string) ([]*domain.TokenClaim, error)
}

type ClaimChecker interface {
	HasClaimed(ctx context.Context, eventID, wallet string) (bool, error)
}

type WalletClaimLister interface {
	WalletClaims(ctx context.Context, wallet string) ([]domain.WalletClaim, error)
}

func HandleCreateClaim(svc Claimer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createClaimRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid JSON body")
			return
		}

		claim, err := svc.Claim(r.Context(), req.toDomain())
		if err != nil {
			writeServiceError(w, err, codeEventNotFound)
			return
		}

		writeJSON(w, http.StatusCreated, newClaimResponse(claim))
	}
}

func HandleGetClaim(svc ClaimGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claim, err := svc.ClaimByID(r.Context(), r.PathValue("id"))
		if err != nil {
			writeServiceError(w, err, codeNotFound)
			return
		}
		writeJSON(w, http.StatusOK, newClaimResponse(claim))
	}
}

// HandleEventClaims lists an event's claims, newest first. Unknown events yield an empty list.
func HandleEventClaims(svc EventClaimLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := svc.ClaimsByEvent(r.Context(), r.PathValue("id"))
		if err != nil {
			writeServiceError(w, err, codeNotFound)
			return
		}
		writeJSON(w, http.StatusOK, newClaimsResponse(claims))
	}
}

type hasClaimedResponse struct {
	HasClaimed bool `json:"hasClaimed"`
}

func HandleHasClaimed(svc ClaimChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claimed, err := svc.HasClaimed(r.Context(), r.PathValue("id"), r.PathValue("wallet"))
		if err != nil {
			writeServiceError(w, err, codeNotFound)
			return
		}
		writeJSON(w, http.StatusOK, hasClaimedResponse{HasClaimed: claimed})
	}
}

func HandleWalletClaims(svc WalletClaimLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wcs, err := svc.WalletClaims(r.Context(), r.PathValue("wallet"))
		if err != nil {
			writeServiceError(w, err, codeNotFound)
			return
		}
		writeJSON(w, http.StatusOK, newWalletClaimsResponse(wcs))
	}
}
