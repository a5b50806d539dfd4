package guard

import "github.com/rthefinder/USDG/internal/domain"

// Lifecycle transitions for the launch phase state machine:
//
//	Initialized -> TradingRestricted -> TradingOpen -> Finalized
//
// Phases only move forward. Every transition validates its
// preconditions before touching the launch, so a failed call leaves the
// record unchanged. Finalized is absorbing: both trading states can
// finalize, and nothing leaves Finalized.

// CheckRevokeAuthorities validates the revoke-authorities transition.
// Split from MarkAuthoritiesRevoked because the irreversible external
// revocation runs between precondition and effect; if it fails, the
// phase must not change.
func CheckRevokeAuthorities(l *domain.Launch) error {
	if l.Phase != domain.PhaseInitialized {
		return ErrTradingAlreadyOpen
	}
	return nil
}

// MarkAuthoritiesRevoked records a completed authority revocation:
// the launch enters TradingRestricted and launched_at is set, once.
func MarkAuthoritiesRevoked(l *domain.Launch, now int64) {
	l.Phase = domain.PhaseTradingRestricted
	ts := now
	l.LaunchedAt = &ts
}

// EnableTrading opens public trading. Requires TradingRestricted and,
// when a fair-launch delay is configured, that the delay has elapsed
// since authority revocation.
func EnableTrading(l *domain.Launch, now int64) error {
	if l.Phase != domain.PhaseTradingRestricted {
		return ErrTradingAlreadyOpen
	}
	if delay := l.Config.AntiSnipe.FairLaunchDelay; delay != nil {
		if l.LaunchedAt == nil {
			// Unreachable given the phase guard; kept as a hard stop.
			return ErrAuthoritiesNotRevoked
		}
		if now-*l.LaunchedAt < *delay {
			return ErrFairLaunchDelayNotElapsed
		}
	}
	l.Phase = domain.PhaseTradingOpen
	return nil
}

// RegisterLiquidity creates the launch's liquidity record, computing
// locked_until from lp_lock_duration when configured. Valid in either
// trading phase; never after finalization.
func RegisterLiquidity(l *domain.Launch, lpMint string, lpAmount uint64, now int64) (*domain.LiquidityRecord, error) {
	if l.Phase == domain.PhaseFinalized {
		return nil, ErrLaunchFinalized
	}
	if !l.Phase.Trading() {
		return nil, ErrTradingNotEnabled
	}

	rec := &domain.LiquidityRecord{
		LaunchID:  l.LaunchID,
		LPMint:    lpMint,
		LPAmount:  lpAmount,
		CreatedAt: now,
	}
	if dur := l.Config.AntiRug.LPLockDuration; dur != nil {
		until := now + *dur
		rec.LockedUntil = &until
	}
	return rec, nil
}

// Finalize makes the launch immutable. A second call always fails with
// ErrLaunchFinalized and never re-finalizes.
func Finalize(l *domain.Launch, now int64) error {
	if l.Phase == domain.PhaseFinalized {
		return ErrLaunchFinalized
	}
	l.Phase = domain.PhaseFinalized
	ts := now
	l.FinalizedAt = &ts
	return nil
}
