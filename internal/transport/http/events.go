package http

import (
	"context"
	"encoding/json"
	"net/http"

	"solana-pop/internal/claimlink"
	"solana-pop/internal/claims"
	"solana-pop/internal/domain"
)

type EventCreator interface {
	CreateEvent(ctx context.Context, in domain.NewEvent) (*domain.Event, error)
}

type EventGetter interface {
	Event(ctx context.Context, id string) (*domain.Event, error)
}

type EventByMintGetter interface {
	EventByMint(ctx context.Context, mint string) (*domain.Event, error)
}

type EventLister interface {
	Events(ctx context.Context) ([]*domain.Event, error)
}

type CreatorEventLister interface {
	EventsByCreator(ctx context.Context, creator string) ([]*domain.Event, error)
}

type StatsReader interface {
	Stats(ctx context.Context, eventID string) (*claims.EventStats, error)
}

func HandleCreateEvent(svc EventCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createEventRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid JSON body")
			return
		}

		event, err := svc.CreateEvent(r.Context(), req.toDomain())
		if err != nil {
			writeServiceError(w, err, codeNotFound)
			return
		}

		writeJSON(w, http.StatusCreated, newEventResponse(event))
	}
}

func HandleListEvents(svc EventLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := svc.Events(r.Context())
		if err != nil {
			writeServiceError(w, err, codeNotFound)
			return
		}
		writeJSON(w, http.StatusOK, newEventsResponse(events))
	}
}

func HandleGetEvent(svc EventGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		event, err := svc.Event(r.Context(), r.PathValue("id"))
		if err != nil {
			writeServiceError(w, err, codeEventNotFound)
			return
		}
		writeJSON(w, http.StatusOK, newEventResponse(event))
	}
}

func HandleGetEventByMint(svc EventByMintGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		event, err := svc.EventByMint(r.Context(), r.PathValue("address"))
		if err != nil {
			writeServiceError(w, err, codeEventNotFound)
			return
		}
		writeJSON(w, http.StatusOK, newEventResponse(event))
	}
}

func HandleCreatorEvents(svc CreatorEventLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := svc.EventsByCreator(r.Context(), r.PathValue("address"))
		if err != nil {
			writeServiceError(w, err, codeNotFound)
			return
		}
		writeJSON(w, http.StatusOK, newEventsResponse(events))
	}
}

func HandleEventStats(svc StatsReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.Stats(r.Context(), r.PathValue("id"))
		if err != nil {
			writeServiceError(w, err, codeEventNotFound)
			return
		}
		writeJSON(w, http.StatusOK, newStatsResponse(stats))
	}
}

type claimLinkResponse struct {
	EventID    string `json:"eventId"`
	QRCodeData string `json:"qrCodeData"`
	ClaimURL   string `json:"claimUrl"`
}

// HandleClaimLink returns the shareable claim URL an event's QR code should encode.
func HandleClaimLink(svc EventGetter, publicURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		event, err := svc.Event(r.Context(), r.PathValue("id"))
		if err != nil {
			writeServiceError(w, err, codeEventNotFound)
			return
		}
		writeJSON(w, http.StatusOK, claimLinkResponse{
			EventID:    event.ID,
			QRCodeData: event.QRCodeData,
			ClaimURL:   claimlink.ClaimURL(publicURL, event.ID),
		})
	}
}
