package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeLaunchID computes a deterministic launch_id using SHA256.
// Formula: SHA256(creator|mint)
// Returns hex-encoded hash (64 characters).
//
// A launch is identified by its (creator, token) pair, so creating the
// same launch twice yields the same ID and the store rejects the
// duplicate.
func ComputeLaunchID(creator, mint string) string {
	data := fmt.Sprintf("%s|%s", creator, mint)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
