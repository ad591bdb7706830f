package stub

import (
	"context"
	"crypto/rand"
	"io"
	"sync"
	"time"

	"solana-pop/internal/solana"
)

// DefaultDelay simulates network confirmation time.
const DefaultDelay = 1500 * time.Millisecond

// Minter implements solana.Minter without touching a chain.
// It waits for the configured delay, then returns freshly generated addresses and signatures.
type Minter struct {
	delay   time.Duration
	entropy io.Reader

	mu     sync.Mutex
	mints  []solana.MintRequest
	claims []solana.ClaimRequest
}

// Option configures a Minter.
type Option func(*Minter)

// WithDelay sets the simulated confirmation time. Zero disables waiting.
func WithDelay(d time.Duration) Option {
	return func(m *Minter) {
		if d >= 0 {
			m.delay = d
		}
	}
}

// WithEntropy replaces crypto/rand as the source for generated keys.
func WithEntropy(r io.Reader) Option {
	return func(m *Minter) {
		if r != nil {
			m.entropy = r
		}
	}
}

// NewMinter creates a stub minter.
func NewMinter(opts ...Option) *Minter {
	m := &Minter{
		delay:   DefaultDelay,
		entropy: rand.Reader,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

var _ solana.Minter = (*Minter)(nil)

// MintEventToken returns a new mint address and creation signature.
func (m *Minter) MintEventToken(ctx context.Context, req solana.MintRequest) (*solana.MintResult, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	addr, err := solana.NewAddress(m.entropy)
	if err != nil {
		return nil, err
	}
	sig, err := solana.NewSignature(m.entropy)
	if err != nil {
		return nil, err
	}

	m.mints = append(m.mints, req)
	return &solana.MintResult{MintAddress: addr, Signature: sig}, nil
}

// ClaimToken returns a new transfer signature.
func (m *Minter) ClaimToken(ctx context.Context, req solana.ClaimRequest) (string, error) {
	if err := m.wait(ctx); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	sig, err := solana.NewSignature(m.entropy)
	if err != nil {
		return "", err
	}

	m.claims = append(m.claims, req)
	return sig, nil
}

// Mints returns the requests served so far.
func (m *Minter) Mints() []solana.MintRequest {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]solana.MintRequest, len(m.mints))
	copy(out, m.mints)
	return out
}

// Claims returns the requests served so far.
func (m *Minter) Claims() []solana.ClaimRequest {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]solana.ClaimRequest, len(m.claims))
	copy(out, m.claims)
	return out
}

func (m *Minter) wait(ctx context.Context) error {
	if m.delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(m.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
