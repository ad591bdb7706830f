package http

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"solana-pop/internal/domain"
)

const (
	// DefaultPingInterval is used when the feed is mounted without an explicit interval.
	DefaultPingInterval = 30 * time.Second

	writeTimeout = 10 * time.Second
	maxReadSize  = 512
)

// FeedSubscriber hands out per-event claim streams.
type FeedSubscriber interface {
	Subscribe(eventID string) (<-chan domain.TokenClaim, func())
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// HandleClaimFeed streams an event's new claims over a websocket as JSON messages.
// The event must exist before the connection is upgraded.
func HandleClaimFeed(events EventGetter, feed FeedSubscriber, pingInterval time.Duration, logger logrus.FieldLogger) http.HandlerFunc {
	if pingInterval <= 0 {
		pingInterval = DefaultPingInterval
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		event, err := events.Event(r.Context(), r.PathValue("id"))
		if err != nil {
			writeServiceError(w, err, codeEventNotFound)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade has already replied to the client.
			logger.WithError(err).Debug("websocket upgrade")
			return
		}
		defer conn.Close()

		claims, cancel := feed.Subscribe(event.ID)
		defer cancel()

		log := logger.WithField("event_id", event.ID)
		log.Debug("feed subscriber connected")

		closed := readLoop(conn, pingInterval)
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()

		for {
			select {
			case <-closed:
				log.Debug("feed subscriber disconnected")
				return
			case c, ok := <-claims:
				if !ok {
					deadline := time.Now().Add(writeTimeout)
					_ = conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseGoingAway, "feed closed"), deadline)
					return
				}
				_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := conn.WriteJSON(newClaimResponse(&c)); err != nil {
					log.WithError(err).Debug("feed write")
					return
				}
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
					log.WithError(err).Debug("feed ping")
					return
				}
			}
		}
	}
}

// readLoop drains client frames so control messages are processed and
// closes the returned channel once the peer goes away or stops answering pings.
func readLoop(conn *websocket.Conn, pingInterval time.Duration) <-chan struct{} {
	done := make(chan struct{})
	conn.SetReadLimit(maxReadSize)
	_ = conn.SetReadDeadline(time.Now().Add(2 * pingInterval))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(2 * pingInterval))
	})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	return done
}
