package http

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"solana-pop/internal/observability"
	"solana-pop/internal/reporting"
)

// Service is everything the API needs from the claims service.
type Service interface {
	EventCreator
	EventGetter
	EventByMintGetter
	EventLister
	CreatorEventLister
	StatsReader
	Claimer
	ClaimGetter
	EventClaimLister
	ClaimChecker
	WalletClaimLister
	WalletStatsReader
	Pinger
}

// RouterConfig wires the API routes.
type RouterConfig struct {
	Service      Service
	Feed         FeedSubscriber
	PublicURL    string
	PingInterval time.Duration
	Logger       logrus.FieldLogger
}

// NewRouter builds the HTTP API, wrapped in request logging.
func NewRouter(cfg RouterConfig) http.Handler {
	svc := cfg.Service
	mux := http.NewServeMux()

	mux.Handle("POST /api/events", HandleCreateEvent(svc))
	mux.Handle("GET /api/events", HandleListEvents(svc))
	mux.Handle("GET /api/events/{id}", HandleGetEvent(svc))
	mux.Handle("GET /api/mints/{address}/event", HandleGetEventByMint(svc))
	mux.Handle("GET /api/events/{id}/stats", HandleEventStats(svc))
	mux.Handle("GET /api/events/{id}/link", HandleClaimLink(svc, cfg.PublicURL))
	mux.Handle("GET /api/events/{id}/report", HandleEventReport(reporting.NewGenerator(svc)))
	mux.Handle("GET /api/events/{id}/claims", HandleEventClaims(svc))
	mux.Handle("GET /api/events/{id}/claims/{wallet}", HandleHasClaimed(svc))
	mux.Handle("GET /api/creators/{address}/events", HandleCreatorEvents(svc))

	mux.Handle("POST /api/claims", HandleCreateClaim(svc))
	mux.Handle("GET /api/claims/{id}", HandleGetClaim(svc))
	mux.Handle("GET /api/wallets/{wallet}/claims", HandleWalletClaims(svc))
	mux.Handle("GET /api/wallets/{wallet}/stats", HandleWalletStats(svc))

	if cfg.Feed != nil {
		mux.Handle("GET /api/events/{id}/claims/live", HandleClaimFeed(svc, cfg.Feed, cfg.PingInterval, cfg.Logger))
	}

	mux.Handle("GET /health", HandleHealth(svc))
	mux.Handle("GET /metrics", observability.Handler())

	return RequestLogger(mux, cfg.Logger)
}
