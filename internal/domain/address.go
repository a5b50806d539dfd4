package domain

import (
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// AddressLen is the raw byte length of a Solana-style identity.
const AddressLen = 32

// DecodeAddress validates a base58-encoded 32-byte identity and returns
// its raw bytes.
func DecodeAddress(s string) ([]byte, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("decode address %q: %w", s, err)
	}
	if len(raw) != AddressLen {
		return nil, fmt.Errorf("address %q: expected %d bytes, got %d", s, AddressLen, len(raw))
	}
	return raw, nil
}

// ValidAddress reports whether s is a well-formed base58 32-byte identity.
func ValidAddress(s string) bool {
	_, err := DecodeAddress(s)
	return err == nil
}

// OnCurve reports whether the address is a valid ed25519 point.
// Wallet identities sit on the curve; program-derived addresses do not.
func OnCurve(s string) (bool, error) {
	raw, err := DecodeAddress(s)
	if err != nil {
		return false, err
	}
	if _, err := new(edwards25519.Point).SetBytes(raw); err != nil {
		return false, nil
	}
	return true, nil
}
