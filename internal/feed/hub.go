// Package feed fans out new token claims to live subscribers of an event.
package feed

import (
	"sync"

	"solana-pop/internal/domain"
	"solana-pop/internal/observability"
)

// DefaultBuffer is the per-subscriber queue length.
const DefaultBuffer = 16

// Hub delivers published claims to the subscribers of the claim's event.
// Publish never blocks: a subscriber whose queue is full misses the claim.
type Hub struct {
	buffer int

	mu     sync.Mutex
	subs   map[string]map[*subscriber]struct{} // keyed by event id
	count  int
	closed bool
}

type subscriber struct {
	ch chan domain.TokenClaim
}

// NewHub creates a hub with the given per-subscriber buffer (DefaultBuffer if <= 0).
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{
		buffer: buffer,
		subs:   make(map[string]map[*subscriber]struct{}),
	}
}

// Subscribe registers interest in one event's claims.
// The returned channel is closed by cancel or by Close; cancel is idempotent.
func (h *Hub) Subscribe(eventID string) (<-chan domain.TokenClaim, func()) {
	sub := &subscriber{ch: make(chan domain.TokenClaim, h.buffer)}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		close(sub.ch)
		return sub.ch, func() {}
	}

	set, ok := h.subs[eventID]
	if !ok {
		set = make(map[*subscriber]struct{})
		h.subs[eventID] = set
	}
	set[sub] = struct{}{}
	h.count++
	observability.UpdateFeedSubscribers(h.count)

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.remove(eventID, sub)
		})
	}
	return sub.ch, cancel
}

// Publish delivers c to every subscriber of c.EventID.
func (h *Hub) Publish(c domain.TokenClaim) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs[c.EventID] {
		select {
		case sub.ch <- c:
		default:
			observability.RecordFeedDropped()
		}
	}
}

// Subscribers returns the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

// Close ends every subscription. Later Subscribe calls get a closed channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true

	for eventID, set := range h.subs {
		for sub := range set {
			close(sub.ch)
		}
		delete(h.subs, eventID)
	}
	h.count = 0
	observability.UpdateFeedSubscribers(0)
}

func (h *Hub) remove(eventID string, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.subs[eventID]
	if !ok {
		return
	}
	if _, ok := set[sub]; !ok {
		// Already closed by Close.
		return
	}

	delete(set, sub)
	if len(set) == 0 {
		delete(h.subs, eventID)
	}
	close(sub.ch)
	h.count--
	observability.UpdateFeedSubscribers(h.count)
}
