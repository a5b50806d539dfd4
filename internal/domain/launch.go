package domain

// Phase is the launch lifecycle stage controlling which operations are valid.
// Phases only move forward; Finalized is terminal.
type Phase string

const (
	PhaseInitialized       Phase = "INITIALIZED"
	PhaseTradingRestricted Phase = "TRADING_RESTRICTED"
	PhaseTradingOpen       Phase = "TRADING_OPEN"
	PhaseFinalized         Phase = "FINALIZED"
)

// Valid reports whether p is one of the four known phases.
func (p Phase) Valid() bool {
	switch p {
	case PhaseInitialized, PhaseTradingRestricted, PhaseTradingOpen, PhaseFinalized:
		return true
	}
	return false
}

// Trading reports whether purchases are admissible in this phase.
func (p Phase) Trading() bool {
	return p == PhaseTradingRestricted || p == PhaseTradingOpen
}

// Launch is one configured token-distribution event.
// Corresponds to the launches table in PostgreSQL.
// Identified by (creator, token_mint); LaunchID is the deterministic hash.
type Launch struct {
	LaunchID  string       // PRIMARY KEY, deterministic hash of creator|mint
	Creator   string       // base58 creator identity
	TokenMint string       // base58 token mint address
	Config    LaunchConfig // immutable after creation
	Phase     Phase

	CreatedAt   int64  // Unix timestamp in seconds
	LaunchedAt  *int64 // set exactly once, on authority revocation
	FinalizedAt *int64 // set exactly once, on finalize

	TotalPurchased   uint64 // monotonically non-decreasing, across all wallets
	ParticipantCount uint64 // distinct wallets with >= 1 admitted purchase
}
