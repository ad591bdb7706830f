package feed

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-pop/internal/domain"
)

func claimFor(eventID, wallet string) domain.TokenClaim {
	return domain.TokenClaim{ID: wallet, EventID: eventID, WalletAddress: wallet, TransactionSignature: "sig"}
}

func receive(t *testing.T, ch <-chan domain.TokenClaim) domain.TokenClaim {
	t.Helper()
	select {
	case c, ok := <-ch:
		require.True(t, ok, "channel closed")
		return c
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for claim")
	}
	return domain.TokenClaim{}
}

func TestHub_PublishToEventSubscribers(t *testing.T) {
	h := NewHub(4)
	defer h.Close()

	e1a, cancelA := h.Subscribe("E1")
	defer cancelA()
	e1b, cancelB := h.Subscribe("E1")
	defer cancelB()
	e2, cancelC := h.Subscribe("E2")
	defer cancelC()

	assert.Equal(t, 3, h.Subscribers())

	h.Publish(claimFor("E1", "Wallet-C"))

	assert.Equal(t, "Wallet-C", receive(t, e1a).WalletAddress)
	assert.Equal(t, "Wallet-C", receive(t, e1b).WalletAddress)

	select {
	case c := <-e2:
		t.Fatalf("E2 subscriber received claim for %s", c.EventID)
	default:
	}
}

func TestHub_DropOnFull(t *testing.T) {
	h := NewHub(2)
	defer h.Close()

	ch, cancel := h.Subscribe("E1")
	defer cancel()

	for _, w := range []string{"W1", "W2", "W3"} {
		h.Publish(claimFor("E1", w))
	}

	assert.Equal(t, "W1", receive(t, ch).WalletAddress)
	assert.Equal(t, "W2", receive(t, ch).WalletAddress)

	select {
	case c := <-ch:
		t.Fatalf("expected W3 to be dropped, got %s", c.WalletAddress)
	default:
	}
}

func TestHub_CancelClosesChannel(t *testing.T) {
	h := NewHub(1)
	defer h.Close()

	ch, cancel := h.Subscribe("E1")
	cancel()
	cancel() // idempotent

	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 0, h.Subscribers())

	// Publishing to an event with no subscribers is a no-op.
	h.Publish(claimFor("E1", "W1"))
}

func TestHub_Close(t *testing.T) {
	h := NewHub(1)

	ch, cancel := h.Subscribe("E1")
	h.Close()

	_, ok := <-ch
	assert.False(t, ok)

	// cancel after Close must not double-close.
	cancel()

	late, _ := h.Subscribe("E1")
	_, ok = <-late
	assert.False(t, ok, "subscriptions after Close are closed immediately")
}

func TestHub_ConcurrentPublishAndSubscribe(t *testing.T) {
	h := NewHub(DefaultBuffer)
	defer h.Close()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			ch, cancel := h.Subscribe("E1")
			defer cancel()
			select {
			case <-ch:
			case <-time.After(10 * time.Millisecond):
			}
		}()
		go func() {
			defer wg.Done()
			h.Publish(claimFor("E1", "W"))
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, h.Subscribers())
}
