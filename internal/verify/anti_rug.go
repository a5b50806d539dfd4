package verify

import (
	"fmt"
	"time"

	"github.com/rthefinder/USDG/internal/domain"
)

const (
	// minLPLockDuration is seven days, the shortest lock the verifier
	// considers meaningful.
	minLPLockDuration = 7 * 24 * 60 * 60

	antiRugWarnRatio = 0.7
)

// LPLockSufficient reports whether the configured lock duration meets
// the seven-day minimum.
func LPLockSufficient(lockDuration *int64) bool {
	return lockDuration != nil && *lockDuration >= minLPLockDuration
}

// VerifyAntiRug grades the anti-rug configuration against the observed
// on-chain authority state.
func VerifyAntiRug(cfg domain.AntiRugConfig, authorities Authorities) CheckGroup {
	var checks []Check

	msg := "Supply is not fixed"
	if cfg.FixedSupply {
		msg = "Supply is fixed"
	}
	checks = append(checks, Check{Name: "Fixed Supply", Passed: cfg.FixedSupply, Message: msg})

	msg = "Mint authority not required to be revoked"
	if cfg.RevokeMintAuthority {
		msg = "Mint authority revocation required"
	}
	checks = append(checks, Check{Name: "Mint Authority Revocation Required", Passed: cfg.RevokeMintAuthority, Message: msg})

	msg = "Freeze authority not required to be revoked"
	if cfg.RevokeFreezeAuthority {
		msg = "Freeze authority revocation required"
	}
	checks = append(checks, Check{Name: "Freeze Authority Revocation Required", Passed: cfg.RevokeFreezeAuthority, Message: msg})

	mintRevoked := authorities.MintAuthority == nil
	msg = "Mint authority still exists"
	if mintRevoked {
		msg = "Mint authority is null"
	}
	checks = append(checks, Check{Name: "Mint Authority Actually Revoked", Passed: mintRevoked, Message: msg})

	freezeRevoked := authorities.FreezeAuthority == nil
	msg = "Freeze authority still exists"
	if freezeRevoked {
		msg = "Freeze authority is null"
	}
	checks = append(checks, Check{Name: "Freeze Authority Actually Revoked", Passed: freezeRevoked, Message: msg})

	hasLock := cfg.LPLockDuration != nil
	msg = "No LP lock configured"
	if hasLock {
		msg = fmt.Sprintf("LP lock duration: %d days", *cfg.LPLockDuration/(24*60*60))
	}
	checks = append(checks, Check{Name: "LP Lock Configured", Passed: hasLock, Message: msg})

	if hasLock {
		sufficient := LPLockSufficient(cfg.LPLockDuration)
		msg = "LP lock duration is too short"
		if sufficient {
			msg = "LP lock duration is sufficient (>= 7 days)"
		}
		checks = append(checks, Check{Name: "LP Lock Sufficient Duration", Passed: sufficient, Message: msg})
	}

	msg = "Authorities not yet verified on-chain"
	if authorities.Verified {
		msg = fmt.Sprintf("Verified at %s", time.Unix(authorities.CheckedAt, 0).UTC().Format(time.RFC3339))
	}
	checks = append(checks, Check{Name: "Authorities Verified On-Chain", Passed: authorities.Verified, Message: msg})

	return CheckGroup{
		Status: statusFor(countPassed(checks), len(checks), antiRugWarnRatio),
		Checks: checks,
	}
}
