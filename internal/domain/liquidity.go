package domain

// LiquidityRecord is a per-launch registration of a liquidity pool
// and its optional time lock. Corresponds to liquidity_records in PostgreSQL.
type LiquidityRecord struct {
	LaunchID    string
	LPMint      string // base58 LP mint address
	LPAmount    uint64
	CreatedAt   int64  // Unix seconds
	LockedUntil *int64 // created_at + lp_lock_duration when configured, else unset (unlocked)
}

// Locked reports whether the LP is still time-locked at the given time.
// Lock enforcement happens in the withdrawal collaborator; this engine
// only computes and stores the timestamp.
func (r *LiquidityRecord) Locked(now int64) bool {
	return r.LockedUntil != nil && now < *r.LockedUntil
}
