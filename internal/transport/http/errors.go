package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"solana-pop/internal/claims"
	"solana-pop/internal/domain"
	"solana-pop/internal/storage"
)

const (
	codeInvalidRequestBody = "invalid_request_body"
	codeInvalidInput       = "invalid_input"
	codeInvalidReference   = "invalid_reference"
	codeNotFound           = "not_found"
	codeEventNotFound      = "event_not_found"
	codeAlreadyClaimed     = "already_claimed"
	codeEventFull          = "event_full"
	codeDuplicateMint      = "duplicate_mint_address"
	codeMintFailed         = "mint_failed"
	codeBackendUnavailable = "backend_unavailable"
	codeInternalError      = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeServiceError maps service and storage errors to HTTP responses.
// notFoundCode distinguishes "the thing you asked for" from "the event you referenced".
func writeServiceError(w http.ResponseWriter, err error, notFoundCode string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, codeInvalidInput, err.Error())
	case errors.Is(err, storage.ErrInvalidReference):
		writeError(w, http.StatusBadRequest, codeInvalidReference, "event id is malformed")
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, notFoundCode, "not found")
	case errors.Is(err, storage.ErrDuplicateClaim):
		writeError(w, http.StatusConflict, codeAlreadyClaimed, "wallet has already claimed this event's token")
	case errors.Is(err, claims.ErrEventFull):
		writeError(w, http.StatusConflict, codeEventFull, "event has reached its attendee limit")
	case errors.Is(err, storage.ErrDuplicateKey):
		writeError(w, http.StatusConflict, codeDuplicateMint, "token mint address is already in use")
	case errors.Is(err, claims.ErrMintFailed):
		writeError(w, http.StatusBadGateway, codeMintFailed, "minting failed")
	case errors.Is(err, storage.ErrBackendUnavailable):
		writeError(w, http.StatusServiceUnavailable, codeBackendUnavailable, "storage backend unavailable")
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
