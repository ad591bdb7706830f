package http

import (
	"context"
	"net/http"
	"time"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

const healthTimeout = 2 * time.Second

type healthResponse struct {
	Status string `json:"status"`
}

// HandleHealth reports whether the storage backend answers.
func HandleHealth(svc Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		if err := svc.Ping(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, codeBackendUnavailable, "storage backend unavailable")
			return
		}
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
	}
}
