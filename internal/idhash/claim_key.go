package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeClaimKey computes a deterministic key for one (event, wallet) claim using SHA256.
// Formula: SHA256(event_id|wallet_address)
// Returns hex-encoded hash (64 characters).
//
// Document backends use the key as the claim's primary key, so a second claim
// for the same pair collides on insert.
func ComputeClaimKey(eventID, walletAddress string) string {
	data := fmt.Sprintf("%s|%s", eventID, walletAddress)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// ComputeMintKey computes the guard key reserving one token mint address.
// Formula: SHA256("mint:"+token_mint_address)
func ComputeMintKey(tokenMintAddress string) string {
	data := fmt.Sprintf("mint:%s", tokenMintAddress)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
