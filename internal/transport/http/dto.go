package http

import (
	"time"

	"solana-pop/internal/claims"
	"solana-pop/internal/domain"
)

type eventResponse struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Date             time.Time `json:"date"`
	Creator          string    `json:"creator"`
	TokenMintAddress string    `json:"tokenMintAddress"`
	QRCodeData       string    `json:"qrCodeData"`
	MaxAttendees     *int      `json:"maxAttendees"`
	ImageURL         *string   `json:"imageUrl"`
	CreatedAt        time.Time `json:"createdAt"`
}

func newEventResponse(e *domain.Event) *eventResponse {
	if e == nil {
		return nil
	}
	return &eventResponse{
		ID:               e.ID,
		Name:             e.Name,
		Description:      e.Description,
		Date:             e.Date,
		Creator:          e.Creator,
		TokenMintAddress: e.TokenMintAddress,
		QRCodeData:       e.QRCodeData,
		MaxAttendees:     e.MaxAttendees,
		ImageURL:         e.ImageURL,
		CreatedAt:        e.CreatedAt,
	}
}

func newEventsResponse(events []*domain.Event) []*eventResponse {
	out := make([]*eventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, newEventResponse(e))
	}
	return out
}

type claimResponse struct {
	ID                   string    `json:"id"`
	EventID              string    `json:"eventId"`
	WalletAddress        string    `json:"walletAddress"`
	TransactionSignature string    `json:"transactionSignature"`
	ClaimedAt            time.Time `json:"claimedAt"`
}

func newClaimResponse(c *domain.TokenClaim) *claimResponse {
	return &claimResponse{
		ID:                   c.ID,
		EventID:              c.EventID,
		WalletAddress:        c.WalletAddress,
		TransactionSignature: c.TransactionSignature,
		ClaimedAt:            c.ClaimedAt,
	}
}

func newClaimsResponse(claims []*domain.TokenClaim) []*claimResponse {
	out := make([]*claimResponse, 0, len(claims))
	for _, c := range claims {
		out = append(out, newClaimResponse(c))
	}
	return out
}

// walletClaimResponse is a claim with its event embedded; event is null when it no longer resolves.
type walletClaimResponse struct {
	claimResponse
	Event *eventResponse `json:"event"`
}

func newWalletClaimsResponse(wcs []domain.WalletClaim) []walletClaimResponse {
	out := make([]walletClaimResponse, 0, len(wcs))
	for _, wc := range wcs {
		out = append(out, walletClaimResponse{
			claimResponse: *newClaimResponse(wc.Claim),
			Event:         newEventResponse(wc.Event),
		})
	}
	return out
}

type dailyCountResponse struct {
	Day    string `json:"day"` // YYYY-MM-DD, UTC
	Claims int    `json:"claims"`
}

type statsResponse struct {
	EventID      string               `json:"eventId"`
	Claims       int                  `json:"claims"`
	Recorded     int                  `json:"recorded"`
	MaxAttendees *int                 `json:"maxAttendees"`
	Remaining    *int                 `json:"remaining"`
	Daily        []dailyCountResponse `json:"daily"`
}

func newStatsResponse(s *claims.EventStats) statsResponse {
	daily := make([]dailyCountResponse, 0, len(s.Daily))
	for _, d := range s.Daily {
		daily = append(daily, dailyCountResponse{Day: d.Day.Format("2006-01-02"), Claims: d.Claims})
	}
	return statsResponse{
		EventID:      s.EventID,
		Claims:       s.Claims,
		Recorded:     s.Recorded,
		MaxAttendees: s.MaxAttendees,
		Remaining:    s.Remaining,
		Daily:        daily,
	}
}

type createEventRequest struct {
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Date             time.Time `json:"date"`
	Creator          string    `json:"creator"`
	TokenMintAddress string    `json:"tokenMintAddress"`
	QRCodeData       string    `json:"qrCodeData"`
	MaxAttendees     *int      `json:"maxAttendees"`
	ImageURL         *string   `json:"imageUrl"`
}

func (r createEventRequest) toDomain() domain.NewEvent {
	return domain.NewEvent{
		Name:             r.Name,
		Description:      r.Description,
		Date:             r.Date,
		Creator:          r.Creator,
		TokenMintAddress: r.TokenMintAddress,
		QRCodeData:       r.QRCodeData,
		MaxAttendees:     r.MaxAttendees,
		ImageURL:         r.ImageURL,
	}
}

type createClaimRequest struct {
	EventID              string `json:"eventId"`
	WalletAddress        string `json:"walletAddress"`
	TransactionSignature string `json:"transactionSignature"`
}

func (r createClaimRequest) toDomain() domain.NewTokenClaim {
	return domain.NewTokenClaim{
		EventID:              r.EventID,
		WalletAddress:        r.WalletAddress,
		TransactionSignature: r.TransactionSignature,
	}
}

type achievementResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Role        string `json:"role"`
	Threshold   int    `json:"threshold"`
	Points      int    `json:"points"`
}

func newAchievementsResponse(as []claims.Achievement) []achievementResponse {
	out := make([]achievementResponse, 0, len(as))
	for _, a := range as {
		out = append(out, achievementResponse{
			ID:          a.ID,
			Title:       a.Title,
			Description: a.Description,
			Role:        string(a.Role),
			Threshold:   a.Threshold,
			Points:      a.Points,
		})
	}
	return out
}

type walletStatsResponse struct {
	WalletAddress      string                `json:"walletAddress"`
	EventsCreated      int                   `json:"eventsCreated"`
	EventsAttended     int                   `json:"eventsAttended"`
	TokensCollected    int                   `json:"tokensCollected"`
	TotalPoints        int                   `json:"totalPoints"`
	Level              int                   `json:"level"`
	AchievementsEarned int                   `json:"achievementsEarned"`
	Earned             []achievementResponse `json:"earned"`
	Available          []achievementResponse `json:"available"`
}

func newWalletStatsResponse(ws *claims.WalletStats) walletStatsResponse {
	return walletStatsResponse{
		WalletAddress:      ws.WalletAddress,
		EventsCreated:      ws.EventsCreated,
		EventsAttended:     ws.EventsAttended,
		TokensCollected:    ws.TokensCollected,
		TotalPoints:        ws.TotalPoints,
		Level:              ws.Level,
		AchievementsEarned: ws.AchievementsEarned,
		Earned:             newAchievementsResponse(ws.Earned),
		Available:          newAchievementsResponse(ws.Available),
	}
}
