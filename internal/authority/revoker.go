// Package authority handles token authority revocation and on-chain
// verification. Revocation is irreversible and runs outside the engine;
// the launchpad only transitions phase after the revoker reports
// success.
package authority

import "context"

// Result describes which authorities were revoked.
type Result struct {
	MintRevoked   bool
	FreezeRevoked bool
}

// Revoker permanently removes mint and freeze authorities from a token.
type Revoker interface {
	// Revoke revokes the authorities the flags ask for. Partial failure
	// is an error; callers treat the result as all-or-nothing.
	Revoke(ctx context.Context, tokenMint string, revokeMint, revokeFreeze bool) (*Result, error)
}

// Static is a Revoker that always succeeds, for in-memory deployments
// and tests where the chain is out of scope.
type Static struct{}

// NewStatic creates a Static revoker.
func NewStatic() *Static {
	return &Static{}
}

// Revoke reports the requested flags as revoked.
func (s *Static) Revoke(_ context.Context, _ string, revokeMint, revokeFreeze bool) (*Result, error) {
	return &Result{
		MintRevoked:   revokeMint,
		FreezeRevoked: revokeFreeze,
	}, nil
}

var _ Revoker = (*Static)(nil)
