package solana

import (
	"fmt"
	"io"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// Sizes of decoded Solana values.
const (
	AddressSize   = 32
	SignatureSize = 64
)

// NewAddress derives a fresh ed25519 public key from entropy read from r
// and returns it base58-encoded, the way Solana renders account addresses.
func NewAddress(r io.Reader) (string, error) {
	var seed [64]byte
	if _, err := io.ReadFull(r, seed[:]); err != nil {
		return "", fmt.Errorf("read entropy: %w", err)
	}

	scalar, err := edwards25519.NewScalar().SetUniformBytes(seed[:])
	if err != nil {
		return "", fmt.Errorf("derive scalar: %w", err)
	}

	point := new(edwards25519.Point).ScalarBaseMult(scalar)
	return base58.Encode(point.Bytes()), nil
}

// NewSignature returns a base58 64-byte value shaped like an ed25519
// signature: a curve point R followed by a scalar S. It signs nothing.
func NewSignature(r io.Reader) (string, error) {
	var seed [128]byte
	if _, err := io.ReadFull(r, seed[:]); err != nil {
		return "", fmt.Errorf("read entropy: %w", err)
	}

	rScalar, err := edwards25519.NewScalar().SetUniformBytes(seed[:64])
	if err != nil {
		return "", fmt.Errorf("derive nonce: %w", err)
	}
	s, err := edwards25519.NewScalar().SetUniformBytes(seed[64:])
	if err != nil {
		return "", fmt.Errorf("derive scalar: %w", err)
	}

	sig := make([]byte, 0, SignatureSize)
	sig = append(sig, new(edwards25519.Point).ScalarBaseMult(rScalar).Bytes()...)
	sig = append(sig, s.Bytes()...)
	return base58.Encode(sig), nil
}
